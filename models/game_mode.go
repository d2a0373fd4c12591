package models

import "sort"

// ModeKind определяет схему атрибутов запроса для режима
type ModeKind string

const (
	KindHeadToHead ModeKind = "head_to_head"
	KindGroup      ModeKind = "group"
)

// GameModeConfig статическое описание режима игры
type GameModeConfig struct {
	Key         string         `json:"key"`         // Ключ режима (например, "1v1")
	GameID      string         `json:"game_id"`     // Идентификатор игры в сервисе матчмейкинга
	Name        string         `json:"name"`        // Отображаемое имя
	Description string         `json:"description"` // Краткое описание
	Kind        ModeKind       `json:"kind"`
	Teams       []string       `json:"teams"`      // Названия команд
	TeamSizes   map[string]int `json:"team_sizes"` // Размер каждой команды
}

// TeamSize возвращает размер команды, по умолчанию 1
func (c GameModeConfig) TeamSize(team string) int {
	if size, ok := c.TeamSizes[team]; ok {
		return size
	}
	return 1
}

// TeamDisplayName возвращает имя команды для отображения игроку
func (c GameModeConfig) TeamDisplayName(team string) string {
	switch c.Key {
	case "1v1":
		if team == "Player1" {
			return "Team A"
		}
		return "Team B"
	case "1v3":
		if team == "Solo" {
			return "Solo Player"
		}
		return "Trio Team"
	default:
		return team
	}
}

// GameModes таблица режимов, доступная только для чтения
type GameModes map[string]GameModeConfig

// DefaultGameModes возвращает режимы по умолчанию
func DefaultGameModes() GameModes {
	return GameModes{
		"1v1": {
			Key:         "1v1",
			GameID:      "game-1v1",
			Name:        "1v1 Competitive",
			Description: "Head-to-head competitive matches",
			Kind:        KindHeadToHead,
			Teams:       []string{"Player1", "Player2"},
			TeamSizes:   map[string]int{"Player1": 1, "Player2": 1},
		},
		"1v3": {
			Key:         "1v3",
			GameID:      "game-1v3",
			Name:        "1v3 Team Battle",
			Description: "Solo player vs trio team",
			Kind:        KindGroup,
			Teams:       []string{"Solo", "Trio"},
			TeamSizes:   map[string]int{"Solo": 1, "Trio": 3},
		},
	}
}

// Keys возвращает отсортированные ключи режимов
func (m GameModes) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
