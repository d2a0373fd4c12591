package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"chrono-matchmaking-client/client"
	"chrono-matchmaking-client/handler"
	"chrono-matchmaking-client/models"
	"chrono-matchmaking-client/service"
	"chrono-matchmaking-client/storage"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

const (
	defaultMatchmakerURL = "http://localhost:8080"
	defaultListenAddr    = ":8090"
	defaultRedisAddr     = "localhost:6379"
	defaultRedisDB       = 0
)

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDuration читает длительность из окружения
func getDuration(key string, defaultValue time.Duration, logger *zap.Logger) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		logger.Warn("Invalid duration, using default", zap.String("key", key), zap.String("value", raw))
		return defaultValue
	}
	return d
}

// getInt читает целое число из окружения
func getInt(key string, defaultValue int, logger *zap.Logger) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		logger.Warn("Invalid integer, using default", zap.String("key", key), zap.String("value", raw))
		return defaultValue
	}
	return n
}

// newIdentityStore выбирает хранилище идентификаторов по IDENTITY_STORE
func newIdentityStore(logger *zap.Logger) (storage.IdentityStore, func(), error) {
	if getEnv("IDENTITY_STORE", "memory") != "redis" {
		return storage.NewMemoryIdentityStore(clockwork.NewRealClock(), logger), func() {}, nil
	}

	redisAddr := getEnv("REDIS_ADDR", defaultRedisAddr)
	redisPassword := getEnv("REDIS_PASSWORD", "")
	redisDB := getInt("REDIS_DB", defaultRedisDB, logger)
	ttl := getDuration("IDENTITY_TTL", storage.DefaultIdentityTTL, logger)

	redisStore, err := storage.NewRedisIdentityStore(redisAddr, redisPassword, redisDB, ttl, logger)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("Connected to Redis",
		zap.String("addr", redisAddr),
		zap.String("session_id", redisStore.SessionID()),
	)

	return redisStore, func() { redisStore.Close() }, nil
}

func main() {
	// Инициализация логгера
	logger, err := zap.NewProduction()
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, reading environment variables directly")
	}

	logger.Info("Starting Chrono Matchmaking Client")

	identities, closeIdentities, err := newIdentityStore(logger)
	if err != nil {
		logger.Fatal("Failed to initialize identity store", zap.Error(err))
	}
	defer closeIdentities()

	// Клиент внешнего сервиса матчмейкинга
	matchmakerURL := getEnv("MATCHMAKER_URL", defaultMatchmakerURL)
	gateway := client.NewClient(client.Config{
		BaseURL: matchmakerURL,
		Timeout: getDuration("GATEWAY_TIMEOUT", client.DefaultTimeout, logger),
	}, logger)

	pollConfig := service.DefaultPollConfig()
	pollConfig.Interval = getDuration("POLL_INTERVAL", pollConfig.Interval, logger)
	pollConfig.MaxAttempts = getInt("POLL_MAX_ATTEMPTS", pollConfig.MaxAttempts, logger)
	poller := service.NewPollScheduler(gateway, service.ClockSleeper{Clock: clockwork.NewRealClock()}, pollConfig, logger)

	builder := service.NewRequestBuilder(getEnv("PLAYER_REGION", service.DefaultRegion), nil)

	manager := service.NewManager(models.DefaultGameModes(), identities, builder, gateway, poller, logger)
	defer manager.Close()

	// Настройка маршрутов
	router := mux.NewRouter()
	handler.NewAttemptHandler(manager, logger).Register(router)

	listenAddr := getEnv("LISTEN_ADDR", defaultListenAddr)
	srv := &http.Server{
		Addr:         listenAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Запуск сервера в горутине
	go func() {
		logger.Info("Starting HTTP server",
			zap.String("addr", listenAddr),
			zap.String("matchmaker_url", matchmakerURL),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Ожидание сигнала для graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down client...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Client exited")
}
