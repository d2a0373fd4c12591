package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"chrono-matchmaking-client/models"
	"chrono-matchmaking-client/storage"
	"go.uber.org/zap"
)

// Gateway граница с внешним сервисом матчмейкинга
type Gateway interface {
	StatusFetcher
	Submit(ctx context.Context, req models.MatchRequest) (models.RequestHandle, error)
	Trigger(ctx context.Context, gameID string) (models.TriggerBatch, error)
}

// Snapshot состояние попытки для слоя отображения
type Snapshot struct {
	Mode      string              `json:"mode"`
	State     models.AttemptState `json:"state"`
	Status    string              `json:"status"`
	PlayerID  string              `json:"player_id,omitempty"`
	RequestID string              `json:"request_id,omitempty"`
	Attempt   int                 `json:"attempt"`
	Match     *models.MatchView   `json:"match,omitempty"`
	Session   *models.SessionInfo `json:"session,omitempty"`
	Err       error               `json:"-"`
	UpdatedAt time.Time           `json:"updated_at"`
}

func (s Snapshot) clone() Snapshot {
	c := s
	c.Match = s.Match.Clone()
	if s.Session != nil {
		session := *s.Session
		c.Session = &session
	}
	return c
}

// Coordinator управляет попытками присоединиться к матчу для одного режима игры
type Coordinator struct {
	mode       models.GameModeConfig
	identities storage.IdentityStore
	builder    *RequestBuilder
	gateway    Gateway
	poller     *PollScheduler
	logger     *zap.Logger

	// OnTransition вызывается после каждого изменения состояния
	OnTransition func(Snapshot)

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	snap       Snapshot
}

// NewCoordinator создает координатор для режима
func NewCoordinator(mode models.GameModeConfig, identities storage.IdentityStore, builder *RequestBuilder, gateway Gateway, poller *PollScheduler, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		mode:       mode,
		identities: identities,
		builder:    builder,
		gateway:    gateway,
		poller:     poller,
		logger:     logger.With(zap.String("game_mode", mode.Key)),
		snap: Snapshot{
			Mode:      mode.Key,
			State:     models.StateIdle,
			UpdatedAt: time.Now(),
		},
	}
}

// Snapshot возвращает копию текущего состояния
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap.clone()
}

// Join выполняет одну попытку до конечного состояния.
// Новый вызов отменяет предыдущую попытку этого режима.
func (c *Coordinator) Join(ctx context.Context) (Snapshot, error) {
	attemptCtx, gen := c.begin(ctx)
	return c.run(attemptCtx, gen)
}

// begin переводит Idle -> Requesting и сбрасывает данные прошлой попытки
func (c *Coordinator) begin(ctx context.Context) (context.Context, uint64) {
	attemptCtx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.generation++
	gen := c.generation
	c.cancel = cancel
	c.snap = Snapshot{
		Mode:      c.mode.Key,
		State:     models.StateRequesting,
		Status:    fmt.Sprintf("Joining %s...", c.mode.Name),
		UpdatedAt: time.Now(),
	}
	snap := c.snap.clone()
	listener := c.OnTransition
	c.mu.Unlock()

	if listener != nil {
		listener(snap)
	}
	return attemptCtx, gen
}

// finish освобождает контекст попытки, если она все еще активна
func (c *Coordinator) finish(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen == c.generation && c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// isCurrent сообщает, что попытка gen не была заменена новой
func (c *Coordinator) isCurrent(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return gen == c.generation
}

func (c *Coordinator) run(ctx context.Context, gen uint64) (Snapshot, error) {
	defer c.finish(gen)

	identity, err := c.identities.Resolve(ctx, c.mode.Key)
	if err != nil {
		return c.fail(gen, "Error: ", fmt.Errorf("failed to resolve player identity: %w", err))
	}

	req := c.builder.Build(c.mode, identity)
	c.update(gen, "", func(s *Snapshot) {
		s.PlayerID = identity.String()
	})

	handle, err := c.gateway.Submit(ctx, req)
	if err != nil {
		return c.fail(gen, "Error: ", &NetworkError{Op: "submit", Err: err})
	}
	if !handle.Valid() {
		return c.fail(gen, "Error: ", ErrMissingRequestID)
	}

	c.update(gen, "", func(s *Snapshot) {
		s.State = models.StateAwaitingFirstMatch
		s.RequestID = handle.RequestID
		s.Status = fmt.Sprintf("Waiting for %s match...", c.mode.Name)
	})

	c.logger.Info("Match request submitted",
		zap.String("player_id", identity.String()),
		zap.String("request_id", handle.RequestID),
	)

	batch, err := c.gateway.Trigger(ctx, c.mode.GameID)
	if err != nil {
		return c.fail(gen, "Error: ", &NetworkError{Op: "trigger", Err: err})
	}

	c.update(gen, handle.RequestID, func(s *Snapshot) {
		view, err := Reconcile(s.Match, identity, c.mode.Key, batch)
		if err != nil {
			c.logger.Warn("Ignoring conflicting trigger result", zap.Error(err))
		}
		switch {
		case view != nil:
			s.Match = view
			s.Status = fmt.Sprintf("Match found! %s", c.mode.Name)
		case len(batch.Matches) > 0:
			s.Status = "Match created but player not found in any match"
		}
		s.State = models.StatePolling
	})

	outcome, err := c.poller.Run(ctx, handle, func(attempt int, res models.PollResult) bool {
		return c.onPoll(gen, identity, handle, attempt, res)
	})

	switch outcome {
	case PollCompleted:
		return c.Snapshot(), nil
	case PollTimedOut:
		c.update(gen, handle.RequestID, func(s *Snapshot) {
			s.State = models.StateTimedOut
			s.Status = "Timed out waiting for match."
			s.Err = ErrTimeout
		})
		c.logger.Info("Matchmaking attempt timed out",
			zap.String("request_id", handle.RequestID),
		)
		return c.Snapshot(), ErrTimeout
	case PollFailed:
		return c.fail(gen, "Error polling status: ", &NetworkError{Op: "status", Err: err})
	default:
		c.logger.Debug("Matchmaking attempt cancelled",
			zap.String("request_id", handle.RequestID),
		)
		return c.Snapshot(), err
	}
}

// onPoll обрабатывает один опрос статуса; true завершает опрос
func (c *Coordinator) onPoll(gen uint64, identity models.PlayerIdentity, handle models.RequestHandle, attempt int, res models.PollResult) bool {
	done := false
	applied := c.update(gen, handle.RequestID, func(s *Snapshot) {
		s.Attempt = attempt

		view, err := Reconcile(s.Match, identity, c.mode.Key, res)
		if err != nil {
			c.logger.Warn("Ignoring conflicting poll result",
				zap.String("request_id", handle.RequestID),
				zap.Error(err),
			)
			return
		}
		s.Match = view

		if !res.IsTerminalStatus() {
			if s.State != models.StateFound {
				s.State = models.StatePolling
				s.Status = fmt.Sprintf("Waiting for %s match...", c.mode.Name)
			}
			return
		}

		// Матч уже найден: для перехода в Running достаточно сессии
		if s.State == models.StateFound {
			if session := ReconcileSession(s.Session, s.Match, res); session != nil {
				s.Session = session
				s.State = models.StateRunning
				s.Status = "Match is running!"
				done = true
				return
			}
		}

		if !res.HasCompleteMatch() {
			// Статус уже matched, но запись неполная: ждем следующий опрос
			c.logger.Warn("Incomplete match record in status response",
				zap.String("request_id", handle.RequestID),
				zap.String("status", string(res.Status)),
				zap.Int("attempt", attempt),
			)
			return
		}

		s.State = models.StateFound
		s.Status = "Match found!"

		if session := ReconcileSession(s.Session, s.Match, res); session != nil {
			s.Session = session
			s.State = models.StateRunning
			s.Status = "Match is running!"
			done = true
		}
	})
	if !applied {
		return true
	}

	if done {
		c.logger.Info("Match is running",
			zap.String("request_id", handle.RequestID),
			zap.String("match_id", res.MatchID),
		)
	}
	return done
}

// update применяет изменение, если попытка и запрос все еще активны
func (c *Coordinator) update(gen uint64, requestID string, fn func(s *Snapshot)) bool {
	c.mu.Lock()
	if gen != c.generation || (requestID != "" && c.snap.RequestID != requestID) {
		c.mu.Unlock()
		return false
	}
	fn(&c.snap)
	c.snap.UpdatedAt = time.Now()
	snap := c.snap.clone()
	listener := c.OnTransition
	c.mu.Unlock()

	if listener != nil {
		listener(snap)
	}
	return true
}

// fail переводит попытку в Failed и прекращает дальнейшие шаги
func (c *Coordinator) fail(gen uint64, prefix string, err error) (Snapshot, error) {
	applied := c.update(gen, "", func(s *Snapshot) {
		s.State = models.StateFailed
		s.Status = prefix + err.Error()
		s.Err = err
	})

	if applied {
		var netErr *NetworkError
		if errors.As(err, &netErr) {
			c.logger.Warn("Matchmaking request failed", zap.String("op", netErr.Op), zap.Error(netErr.Err))
		} else {
			c.logger.Error("Matchmaking attempt failed", zap.Error(err))
		}
	}

	return c.Snapshot(), err
}
