package service

import (
	"context"
	"sync"

	"chrono-matchmaking-client/models"
	"chrono-matchmaking-client/storage"
	"go.uber.org/zap"
)

// Manager держит по одному координатору на каждый режим игры
type Manager struct {
	modes        models.GameModes
	coordinators map[string]*Coordinator
	logger       *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewManager создает менеджер попыток для всех режимов
func NewManager(modes models.GameModes, identities storage.IdentityStore, builder *RequestBuilder, gateway Gateway, poller *PollScheduler, logger *zap.Logger) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		modes:        modes,
		coordinators: make(map[string]*Coordinator, len(modes)),
		logger:       logger,
		ctx:          ctx,
		cancel:       cancel,
	}
	for key, mode := range modes {
		m.coordinators[key] = NewCoordinator(mode, identities, builder, gateway, poller, logger)
	}
	return m
}

// Modes возвращает таблицу режимов
func (m *Manager) Modes() models.GameModes {
	return m.modes
}

// Join запускает новую попытку в фоне и сразу возвращает ее начальное состояние
func (m *Manager) Join(mode string) (Snapshot, error) {
	coord, ok := m.coordinators[mode]
	if !ok {
		return Snapshot{Mode: mode, State: models.StateIdle, Status: "Invalid game mode"}, ErrUnknownGameMode
	}

	ctx, gen := coord.begin(m.ctx)
	snap := coord.Snapshot()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		final, err := coord.run(ctx, gen)
		if !coord.isCurrent(gen) {
			// Снимок уже принадлежит новой попытке
			m.logger.Debug("Matchmaking attempt superseded",
				zap.String("game_mode", mode),
				zap.NamedError("reason", err),
			)
			return
		}
		m.logger.Info("Matchmaking attempt finished",
			zap.String("game_mode", mode),
			zap.String("state", string(final.State)),
			zap.String("status", final.Status),
			zap.NamedError("reason", err),
		)
	}()

	return snap, nil
}

// Snapshot возвращает текущее состояние попытки для режима
func (m *Manager) Snapshot(mode string) (Snapshot, error) {
	coord, ok := m.coordinators[mode]
	if !ok {
		return Snapshot{}, ErrUnknownGameMode
	}
	return coord.Snapshot(), nil
}

// Close отменяет все активные попытки и ждет их завершения
func (m *Manager) Close() {
	m.cancel()
	m.wg.Wait()
}
