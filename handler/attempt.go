package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"chrono-matchmaking-client/models"
	"chrono-matchmaking-client/service"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// AttemptHandler обрабатывает HTTP запросы слоя отображения
type AttemptHandler struct {
	manager *service.Manager
	logger  *zap.Logger
}

// NewAttemptHandler создает новый обработчик попыток
func NewAttemptHandler(manager *service.Manager, logger *zap.Logger) *AttemptHandler {
	return &AttemptHandler{
		manager: manager,
		logger:  logger,
	}
}

// Register регистрирует маршруты обработчика
func (h *AttemptHandler) Register(router *mux.Router) {
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/modes", h.ListModes).Methods("GET")
	api.HandleFunc("/attempts/{mode}/join", h.JoinMode).Methods("POST")
	api.HandleFunc("/attempts/{mode}", h.GetAttempt).Methods("GET")

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")
}

// modeResponse описание режима для клиента
type modeResponse struct {
	models.GameModeConfig
	TeamDisplayNames map[string]string `json:"team_display_names"`
}

// matchResponse матч с производными полями
type matchResponse struct {
	*models.MatchView
	Opponents       []string `json:"opponents,omitempty"`
	TeamDisplayName string   `json:"team_display_name,omitempty"`
	TeamSize        int      `json:"team_size,omitempty"`
}

// attemptResponse состояние попытки для клиента
type attemptResponse struct {
	service.Snapshot
	Match *matchResponse `json:"match,omitempty"`
	Error string         `json:"error,omitempty"`
}

// ListModes возвращает доступные режимы игры
func (h *AttemptHandler) ListModes(w http.ResponseWriter, r *http.Request) {
	modes := h.manager.Modes()

	resp := make([]modeResponse, 0, len(modes))
	for _, key := range modes.Keys() {
		mode := modes[key]
		names := make(map[string]string, len(mode.Teams))
		for _, team := range mode.Teams {
			names[team] = mode.TeamDisplayName(team)
		}
		resp = append(resp, modeResponse{GameModeConfig: mode, TeamDisplayNames: names})
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"modes":     resp,
		"timestamp": time.Now().Unix(),
	})
}

// JoinMode запускает новую попытку для режима
func (h *AttemptHandler) JoinMode(w http.ResponseWriter, r *http.Request) {
	mode := mux.Vars(r)["mode"]

	snap, err := h.manager.Join(mode)
	if errors.Is(err, service.ErrUnknownGameMode) {
		h.respondError(w, http.StatusNotFound, "Invalid game mode", err)
		return
	}
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "Failed to join game mode", err)
		return
	}

	h.respondJSON(w, http.StatusAccepted, h.attemptResponse(mode, snap))

	h.logger.Info("Player joined game mode",
		zap.String("game_mode", mode),
	)
}

// GetAttempt возвращает текущее состояние попытки
func (h *AttemptHandler) GetAttempt(w http.ResponseWriter, r *http.Request) {
	mode := mux.Vars(r)["mode"]

	snap, err := h.manager.Snapshot(mode)
	if err != nil {
		h.respondError(w, http.StatusNotFound, "Invalid game mode", err)
		return
	}

	h.respondJSON(w, http.StatusOK, h.attemptResponse(mode, snap))
}

// attemptResponse добавляет к снимку производные поля
func (h *AttemptHandler) attemptResponse(mode string, snap service.Snapshot) attemptResponse {
	resp := attemptResponse{Snapshot: snap}
	if snap.Err != nil {
		resp.Error = snap.Err.Error()
	}
	if snap.Match != nil {
		config := h.manager.Modes()[mode]
		resp.Match = &matchResponse{
			MatchView: snap.Match,
			Opponents: snap.Match.Opponents(),
		}
		if snap.Match.TeamName != "" {
			resp.Match.TeamDisplayName = config.TeamDisplayName(snap.Match.TeamName)
			resp.Match.TeamSize = config.TeamSize(snap.Match.TeamName)
		}
	}
	return resp
}

// respondJSON отправляет JSON ответ
func (h *AttemptHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", zap.Error(err))
	}
}

// respondError отправляет ошибку в формате JSON
func (h *AttemptHandler) respondError(w http.ResponseWriter, status int, message string, err error) {
	h.logger.Warn("Request error",
		zap.Int("status", status),
		zap.String("message", message),
		zap.Error(err),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	errorResp := map[string]interface{}{
		"error": message,
	}
	if err != nil {
		errorResp["details"] = err.Error()
	}
	json.NewEncoder(w).Encode(errorResp)
}
