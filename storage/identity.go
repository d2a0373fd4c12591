package storage

import (
	"context"
	"sync"

	"chrono-matchmaking-client/models"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// IdentityStore выдает стабильный идентификатор игрока для режима игры
type IdentityStore interface {
	Resolve(ctx context.Context, gameMode string) (models.PlayerIdentity, error)
}

// MemoryIdentityStore хранит идентификаторы в памяти на время сессии клиента
type MemoryIdentityStore struct {
	mu         sync.Mutex
	identities map[string]models.PlayerIdentity
	clock      clockwork.Clock
	logger     *zap.Logger
}

// NewMemoryIdentityStore создает хранилище в памяти
func NewMemoryIdentityStore(clock clockwork.Clock, logger *zap.Logger) *MemoryIdentityStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MemoryIdentityStore{
		identities: make(map[string]models.PlayerIdentity),
		clock:      clock,
		logger:     logger,
	}
}

// Resolve возвращает сохраненный идентификатор или создает новый при первом обращении
func (s *MemoryIdentityStore) Resolve(_ context.Context, gameMode string) (models.PlayerIdentity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.identities[gameMode]; ok {
		return id, nil
	}

	id := models.NewPlayerIdentity(gameMode, s.clock.Now())
	s.identities[gameMode] = id

	s.logger.Info("Player identity created",
		zap.String("game_mode", gameMode),
		zap.String("player_id", id.String()),
	)

	return id, nil
}

// Reset сбрасывает все идентификаторы (полный сброс сессии)
func (s *MemoryIdentityStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identities = make(map[string]models.PlayerIdentity)
}
