package service

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingRequestID сервис не вернул request_id (нарушение протокола, без повтора)
	ErrMissingRequestID = errors.New("no request_id returned")
	// ErrTimeout превышено число опросов статуса
	ErrTimeout = errors.New("timed out waiting for match")
	// ErrMatchConflict новые данные противоречат уже подтвержденному матчу
	ErrMatchConflict = errors.New("match data conflicts with confirmed match")
	// ErrUnknownGameMode режим игры не найден
	ErrUnknownGameMode = errors.New("invalid game mode")
)

// NetworkError ошибка транспорта или разбора ответа сервиса матчмейкинга
type NetworkError struct {
	Op  string // submit, trigger или status
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s request failed: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
