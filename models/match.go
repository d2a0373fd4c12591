package models

import "time"

// MatchStatus статус запроса в сервисе матчмейкинга
type MatchStatus string

const (
	StatusPending   MatchStatus = "pending"
	StatusMatched   MatchStatus = "matched"
	StatusAllocated MatchStatus = "allocated"
)

// MatchView согласованное представление найденного матча
type MatchView struct {
	MatchID    string    `json:"match_id"`
	GameMode   string    `json:"game_mode"`
	PlayerID   string    `json:"player_id"`
	TeamName   string    `json:"team_name,omitempty"`
	Teammates  []string  `json:"teammates"`
	AllPlayers []string  `json:"all_players,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	// Confirmed выставляется, когда данные пришли из полного ответа статуса
	Confirmed bool `json:"confirmed"`
}

// Clone возвращает глубокую копию
func (v *MatchView) Clone() *MatchView {
	if v == nil {
		return nil
	}
	c := *v
	c.Teammates = cloneStrings(v.Teammates)
	c.AllPlayers = cloneStrings(v.AllPlayers)
	return &c
}

// Opponents вычисляет соперников как AllPlayers без Teammates.
// Возвращает nil, если полный состав неизвестен.
func (v *MatchView) Opponents() []string {
	if v == nil || v.AllPlayers == nil {
		return nil
	}
	own := make(map[string]struct{}, len(v.Teammates))
	for _, p := range v.Teammates {
		own[p] = struct{}{}
	}
	opponents := make([]string, 0, len(v.AllPlayers))
	for _, p := range v.AllPlayers {
		if _, ok := own[p]; !ok {
			opponents = append(opponents, p)
		}
	}
	return opponents
}

// SessionInfo адрес выделенной игровой сессии
type SessionInfo struct {
	ServerAddress string `json:"ip"`
	Port          int    `json:"port"`
	SessionID     string `json:"id"`
}

// MatchSource источник данных о матче: TriggerBatch или PollResult
type MatchSource interface {
	matchSource()
}

func (TriggerBatch) matchSource() {}
func (PollResult) matchSource()   {}

// TriggerMatch матч из ответа на запуск обработки
type TriggerMatch struct {
	MatchID   string    `json:"match_id"`
	Players   []string  `json:"players"`
	TeamName  string    `json:"team_name"`
	CreatedAt time.Time `json:"created_at"`
}

// TriggerBatch ответ POST /api/v1/process-matchmaking/{game_id}
type TriggerBatch struct {
	Matches []TriggerMatch `json:"matches"`
}

// PollResult ответ GET /api/v1/match-status/{request_id}
type PollResult struct {
	Status     MatchStatus  `json:"status"`
	MatchID    string       `json:"match_id,omitempty"`
	Players    []string     `json:"players,omitempty"`
	TeamName   string       `json:"team_name,omitempty"`
	CreatedAt  *time.Time   `json:"created_at,omitempty"`
	AllPlayers []string     `json:"all_players,omitempty"`
	Session    *SessionInfo `json:"session,omitempty"`
}

// IsTerminalStatus сообщает, завершен ли подбор (matched или allocated)
func (r PollResult) IsTerminalStatus() bool {
	return r.Status == StatusMatched || r.Status == StatusAllocated
}

// HasCompleteMatch проверяет наличие полной записи о матче
func (r PollResult) HasCompleteMatch() bool {
	return r.MatchID != "" &&
		len(r.Players) > 0 &&
		r.TeamName != "" &&
		r.CreatedAt != nil && !r.CreatedAt.IsZero()
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
