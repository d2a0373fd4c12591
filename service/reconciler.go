package service

import (
	"fmt"

	"chrono-matchmaking-client/models"
)

// Reconcile объединяет новые данные о матче с уже известными.
// Не изменяет existing; поля, отсутствующие в источнике, сохраняются.
// Возвращает nil, если матч для игрока пока неизвестен.
func Reconcile(existing *models.MatchView, player models.PlayerIdentity, gameMode string, src models.MatchSource) (*models.MatchView, error) {
	switch s := src.(type) {
	case models.TriggerBatch:
		return reconcileTrigger(existing, player, gameMode, s)
	case models.PollResult:
		return reconcilePoll(existing, player, gameMode, s)
	default:
		return existing.Clone(), fmt.Errorf("unsupported match source %T", src)
	}
}

// reconcileTrigger ищет в пакете новых матчей тот, в котором есть игрок
func reconcileTrigger(existing *models.MatchView, player models.PlayerIdentity, gameMode string, batch models.TriggerBatch) (*models.MatchView, error) {
	var found *models.TriggerMatch
	for i := range batch.Matches {
		if containsPlayer(batch.Matches[i].Players, player.String()) {
			found = &batch.Matches[i]
			break
		}
	}
	if found == nil {
		// Игрок мог еще не попасть в группу
		return existing.Clone(), nil
	}

	if err := checkStable(existing, player, found.MatchID); err != nil {
		return existing.Clone(), err
	}

	view := baseView(replaceable(existing, found.MatchID), player, gameMode)
	if found.MatchID != "" {
		view.MatchID = found.MatchID
	}
	if len(found.Players) > 0 {
		view.Teammates = append([]string(nil), found.Players...)
	}
	if found.TeamName != "" {
		view.TeamName = found.TeamName
	}
	if !found.CreatedAt.IsZero() {
		view.CreatedAt = found.CreatedAt
	}

	return view, nil
}

// reconcilePoll применяет полную запись о матче из ответа статуса
func reconcilePoll(existing *models.MatchView, player models.PlayerIdentity, gameMode string, res models.PollResult) (*models.MatchView, error) {
	if !res.HasCompleteMatch() {
		return existing.Clone(), nil
	}

	if err := checkStable(existing, player, res.MatchID); err != nil {
		return existing.Clone(), err
	}

	view := baseView(replaceable(existing, res.MatchID), player, gameMode)
	view.MatchID = res.MatchID
	view.Teammates = append([]string(nil), res.Players...)
	view.TeamName = res.TeamName
	view.CreatedAt = *res.CreatedAt
	view.Confirmed = true

	if broaderRoster(res.AllPlayers, res.Players) {
		view.AllPlayers = append([]string(nil), res.AllPlayers...)
	}

	return view, nil
}

// ReconcileSession фиксирует сессию один раз и только при наличии матча
func ReconcileSession(existing *models.SessionInfo, view *models.MatchView, res models.PollResult) *models.SessionInfo {
	if existing != nil {
		return existing
	}
	if view == nil || res.Session == nil {
		return nil
	}
	session := *res.Session
	return &session
}

// checkStable запрещает менять match_id и player_id подтвержденного матча
func checkStable(existing *models.MatchView, player models.PlayerIdentity, matchID string) error {
	if existing == nil || !existing.Confirmed {
		return nil
	}
	if existing.PlayerID != "" && existing.PlayerID != player.String() {
		return fmt.Errorf("%w: player %s, got %s", ErrMatchConflict, existing.PlayerID, player)
	}
	if matchID != "" && existing.MatchID != "" && existing.MatchID != matchID {
		return fmt.Errorf("%w: match %s, got %s", ErrMatchConflict, existing.MatchID, matchID)
	}
	return nil
}

// replaceable отбрасывает предварительный матч, если источник сообщает другой match_id
func replaceable(existing *models.MatchView, matchID string) *models.MatchView {
	if existing == nil || existing.Confirmed || matchID == "" || existing.MatchID == matchID {
		return existing
	}
	return nil
}

func baseView(existing *models.MatchView, player models.PlayerIdentity, gameMode string) *models.MatchView {
	view := existing.Clone()
	if view == nil {
		view = &models.MatchView{}
	}
	view.GameMode = gameMode
	view.PlayerID = player.String()
	return view
}

// broaderRoster сообщает, есть ли в all игроки вне собственной команды
func broaderRoster(all, own []string) bool {
	if len(all) == 0 {
		return false
	}
	for _, p := range all {
		if !containsPlayer(own, p) {
			return true
		}
	}
	return false
}

func containsPlayer(players []string, id string) bool {
	for _, p := range players {
		if p == id {
			return true
		}
	}
	return false
}
