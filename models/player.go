package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PlayerIdentity идентификатор игрока, привязанный к одному режиму игры
type PlayerIdentity string

// NewPlayerIdentity создает новый идентификатор: тег режима + случайный суффикс + время создания
func NewPlayerIdentity(modeKey string, createdAt time.Time) PlayerIdentity {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return PlayerIdentity(fmt.Sprintf("player-%s-%s-%d", modeKey, suffix, createdAt.UnixMilli()))
}

// String возвращает строковое представление идентификатора
func (id PlayerIdentity) String() string {
	return string(id)
}

// AttemptMetadata набор атрибутов игрока для одной попытки
type AttemptMetadata map[string]interface{}

// MatchRequest представляет запрос на поиск матча
type MatchRequest struct {
	PlayerID PlayerIdentity  `json:"player_id"`
	GameID   string          `json:"game_id"`
	Metadata AttemptMetadata `json:"metadata"`
}

// RequestHandle ключ запроса, выданный сервисом матчмейкинга
type RequestHandle struct {
	RequestID string `json:"request_id"`
}

// Valid проверяет, что сервис вернул идентификатор запроса
func (h RequestHandle) Valid() bool {
	return h.RequestID != ""
}
