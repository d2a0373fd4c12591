package storage

import (
	"context"
	"fmt"
	"time"

	"chrono-matchmaking-client/models"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// DefaultIdentityTTL время жизни идентификатора в Redis
const DefaultIdentityTTL = 24 * time.Hour

// RedisIdentityStore хранит идентификаторы игроков в Redis в пределах одной сессии клиента
type RedisIdentityStore struct {
	client    *redis.Client
	logger    *zap.Logger
	clock     clockwork.Clock
	sessionID string
	ttl       time.Duration
}

// NewRedisIdentityStore создает новое хранилище Redis
func NewRedisIdentityStore(addr string, password string, db int, ttl time.Duration, logger *zap.Logger) (*RedisIdentityStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisIdentityStoreFromClient(client, ttl, clockwork.NewRealClock(), logger), nil
}

// NewRedisIdentityStoreFromClient создает хранилище поверх готового клиента.
// Каждый вызов открывает новую сессию клиента.
func NewRedisIdentityStoreFromClient(client *redis.Client, ttl time.Duration, clock clockwork.Clock, logger *zap.Logger) *RedisIdentityStore {
	if ttl <= 0 {
		ttl = DefaultIdentityTTL
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &RedisIdentityStore{
		client:    client,
		logger:    logger,
		clock:     clock,
		sessionID: uuid.New().String(),
		ttl:       ttl,
	}
}

// Close закрывает соединение с Redis
func (s *RedisIdentityStore) Close() error {
	return s.client.Close()
}

// SessionID возвращает идентификатор текущей сессии клиента
func (s *RedisIdentityStore) SessionID() string {
	return s.sessionID
}

// Resolve возвращает идентификатор игрока для режима, создавая его при первом обращении
func (s *RedisIdentityStore) Resolve(ctx context.Context, gameMode string) (models.PlayerIdentity, error) {
	key := s.identityKey(gameMode)

	candidate := models.NewPlayerIdentity(gameMode, s.clock.Now())

	// SETNX гарантирует одно значение даже при параллельных вызовах
	created, err := s.client.SetNX(ctx, key, candidate.String(), s.ttl).Result()
	if err != nil {
		return "", fmt.Errorf("failed to store player identity: %w", err)
	}
	if created {
		s.logger.Info("Player identity created",
			zap.String("game_mode", gameMode),
			zap.String("player_id", candidate.String()),
			zap.String("session_id", s.sessionID),
		)
		return candidate, nil
	}

	stored, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", fmt.Errorf("player identity expired for game mode %s", gameMode)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get player identity: %w", err)
	}

	// Каждое обращение продлевает TTL, пока сессия клиента активна
	if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to refresh player identity: %w", err)
	}

	return models.PlayerIdentity(stored), nil
}

// identityKey возвращает ключ идентификатора для режима
func (s *RedisIdentityStore) identityKey(gameMode string) string {
	return fmt.Sprintf("identity:%s:%s", s.sessionID, gameMode)
}
