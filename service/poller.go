package service

import (
	"context"
	"time"

	"chrono-matchmaking-client/models"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// StatusFetcher запрашивает статус запроса на матч
type StatusFetcher interface {
	Status(ctx context.Context, requestID string) (models.PollResult, error)
}

// Sleeper задержка между опросами
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// ClockSleeper реализует Sleeper поверх clockwork.Clock
type ClockSleeper struct {
	Clock clockwork.Clock
}

// Sleep ждет d или отмены контекста
func (s ClockSleeper) Sleep(ctx context.Context, d time.Duration) error {
	clock := s.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	timer := clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.Chan():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PollConfig конфигурация опроса статуса
type PollConfig struct {
	Interval    time.Duration // Пауза между опросами
	MaxAttempts int           // Потолок счетчика опросов
}

// DefaultPollConfig возвращает конфигурацию по умолчанию
func DefaultPollConfig() *PollConfig {
	return &PollConfig{
		Interval:    time.Second, // Раз в секунду
		MaxAttempts: 30,          // ~30 секунд ожидания
	}
}

// PollOutcome итог цикла опроса
type PollOutcome string

const (
	PollCompleted PollOutcome = "completed"
	PollTimedOut  PollOutcome = "timed_out"
	PollCancelled PollOutcome = "cancelled"
	PollFailed    PollOutcome = "failed"
)

// TickFunc обрабатывает результат одного опроса; true завершает цикл
type TickFunc func(attempt int, res models.PollResult) bool

// PollScheduler последовательно опрашивает статус запроса
type PollScheduler struct {
	fetcher StatusFetcher
	sleeper Sleeper
	config  *PollConfig
	logger  *zap.Logger
}

// NewPollScheduler создает планировщик опроса
func NewPollScheduler(fetcher StatusFetcher, sleeper Sleeper, config *PollConfig, logger *zap.Logger) *PollScheduler {
	if config == nil {
		config = DefaultPollConfig()
	}
	if sleeper == nil {
		sleeper = ClockSleeper{Clock: clockwork.NewRealClock()}
	}
	return &PollScheduler{
		fetcher: fetcher,
		sleeper: sleeper,
		config:  config,
		logger:  logger,
	}
}

// Run опрашивает статус до завершения, таймаута, ошибки или отмены.
// Следующий опрос начинается только после обработки предыдущего.
func (p *PollScheduler) Run(ctx context.Context, handle models.RequestHandle, onTick TickFunc) (PollOutcome, error) {
	for attempt := 0; ; attempt++ {
		if attempt > p.config.MaxAttempts {
			p.logger.Info("Polling attempts exhausted",
				zap.String("request_id", handle.RequestID),
				zap.Int("attempts", attempt),
			)
			return PollTimedOut, nil
		}

		if err := ctx.Err(); err != nil {
			return PollCancelled, err
		}

		res, err := p.fetcher.Status(ctx, handle.RequestID)

		// Результат после отмены относится к устаревшей попытке
		if ctxErr := ctx.Err(); ctxErr != nil {
			p.logger.Debug("Discarding poll result for cancelled attempt",
				zap.String("request_id", handle.RequestID),
			)
			return PollCancelled, ctxErr
		}
		if err != nil {
			return PollFailed, err
		}

		if onTick(attempt, res) {
			return PollCompleted, nil
		}

		if err := p.sleeper.Sleep(ctx, p.config.Interval); err != nil {
			return PollCancelled, err
		}
	}
}
