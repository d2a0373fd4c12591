package models

// AttemptState состояние попытки присоединиться к матчу
type AttemptState string

const (
	StateIdle               AttemptState = "idle"
	StateRequesting         AttemptState = "requesting"
	StateAwaitingFirstMatch AttemptState = "awaiting_first_match"
	StatePolling            AttemptState = "polling"
	StateFound              AttemptState = "found"
	StateRunning            AttemptState = "running"
	StateTimedOut           AttemptState = "timed_out"
	StateFailed             AttemptState = "failed"
)

// IsTerminal сообщает, является ли состояние конечным
func (s AttemptState) IsTerminal() bool {
	switch s {
	case StateRunning, StateTimedOut, StateFailed:
		return true
	default:
		return false
	}
}
