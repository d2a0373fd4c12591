package service

import (
	"math/rand"
	"sync"
	"time"

	"chrono-matchmaking-client/models"
)

// DefaultRegion регион игрока по умолчанию
const DefaultRegion = "us-west"

// RequestBuilder формирует запрос на поиск матча со случайными атрибутами игрока
type RequestBuilder struct {
	region string

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRequestBuilder создает построитель запросов
func NewRequestBuilder(region string, rnd *rand.Rand) *RequestBuilder {
	if region == "" {
		region = DefaultRegion
	}
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &RequestBuilder{
		region: region,
		rnd:    rnd,
	}
}

// Build создает запрос для режима; атрибуты генерируются заново для каждой попытки
func (b *RequestBuilder) Build(mode models.GameModeConfig, identity models.PlayerIdentity) models.MatchRequest {
	return models.MatchRequest{
		PlayerID: identity,
		GameID:   mode.GameID,
		Metadata: b.metadata(mode.Kind),
	}
}

// metadata генерирует атрибуты согласно схеме режима
func (b *RequestBuilder) metadata(kind models.ModeKind) models.AttemptMetadata {
	b.mu.Lock()
	defer b.mu.Unlock()

	meta := models.AttemptMetadata{
		"level":  b.rnd.Intn(50) + 10, // 10-59
		"region": b.region,
	}

	switch kind {
	case models.KindHeadToHead:
		meta["skill_rating"] = b.rnd.Intn(1000) + 1000 // 1000-1999
		meta["preferred_role"] = pick(b.rnd, "attacker", "defender")
	case models.KindGroup:
		meta["team_experience"] = b.rnd.Intn(5) + 1 // 1-5
		meta["communication"] = []string{"voice", "text"}
		meta["preferred_role"] = pick(b.rnd, "leader", "support", "attacker", "defender")
	}

	return meta
}

func pick(rnd *rand.Rand, options ...string) string {
	return options[rnd.Intn(len(options))]
}
