package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"chrono-matchmaking-client/models"
	"go.uber.org/zap"
)

// DefaultTimeout таймаут одного обращения к сервису матчмейкинга
const DefaultTimeout = 10 * time.Second

// Config настройки клиента сервиса матчмейкинга
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client обращается к внешнему сервису матчмейкинга по HTTP
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient создает новый клиент
func NewClient(config Config, logger *zap.Logger) *Client {
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger,
	}
}

// Submit отправляет запрос на поиск матча: POST /api/v1/match-request
func (c *Client) Submit(ctx context.Context, req models.MatchRequest) (models.RequestHandle, error) {
	var handle models.RequestHandle
	if err := c.do(ctx, http.MethodPost, "/api/v1/match-request", req, &handle); err != nil {
		return models.RequestHandle{}, err
	}

	c.logger.Debug("Match request submitted",
		zap.String("player_id", req.PlayerID.String()),
		zap.String("game_id", req.GameID),
		zap.String("request_id", handle.RequestID),
	)

	return handle, nil
}

// Trigger запускает один раунд обработки: POST /api/v1/process-matchmaking/{game_id}
func (c *Client) Trigger(ctx context.Context, gameID string) (models.TriggerBatch, error) {
	var batch models.TriggerBatch
	path := "/api/v1/process-matchmaking/" + url.PathEscape(gameID)
	if err := c.do(ctx, http.MethodPost, path, nil, &batch); err != nil {
		return models.TriggerBatch{}, err
	}

	c.logger.Debug("Matchmaking processing triggered",
		zap.String("game_id", gameID),
		zap.Int("matches", len(batch.Matches)),
	)

	return batch, nil
}

// Status запрашивает статус запроса: GET /api/v1/match-status/{request_id}
func (c *Client) Status(ctx context.Context, requestID string) (models.PollResult, error) {
	var result models.PollResult
	path := "/api/v1/match-status/" + url.PathEscape(requestID)
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return models.PollResult{}, err
	}
	return result, nil
}

// do выполняет запрос и декодирует JSON ответ
func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call matchmaking service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("matchmaking service returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(excerpt)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
