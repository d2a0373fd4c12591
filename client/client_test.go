package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"chrono-matchmaking-client/models"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeService эмулирует маршруты внешнего сервиса матчмейкинга
type fakeService struct {
	submitted []models.MatchRequest
	requestID string
	batch     map[string]interface{}
	status    map[string]interface{}
}

func (f *fakeService) router() *mux.Router {
	router := mux.NewRouter()
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/match-request", func(w http.ResponseWriter, r *http.Request) {
		var req models.MatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.submitted = append(f.submitted, req)
		resp := map[string]interface{}{"status": "pending"}
		if f.requestID != "" {
			resp["request_id"] = f.requestID
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(resp)
	}).Methods("POST")

	api.HandleFunc("/process-matchmaking/{game_id}", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(f.batch)
	}).Methods("POST")

	api.HandleFunc("/match-status/{request_id}", func(w http.ResponseWriter, r *http.Request) {
		if mux.Vars(r)["request_id"] != f.requestID {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "Match request not found"})
			return
		}
		json.NewEncoder(w).Encode(f.status)
	}).Methods("GET")

	return router
}

func newTestClient(t *testing.T, f *fakeService) *Client {
	t.Helper()
	srv := httptest.NewServer(f.router())
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL + "/"}, zap.NewNop())
}

func TestSubmit(t *testing.T) {
	f := &fakeService{requestID: "r1"}
	c := newTestClient(t, f)

	handle, err := c.Submit(context.Background(), models.MatchRequest{
		PlayerID: "p1",
		GameID:   "game-1v1",
		Metadata: models.AttemptMetadata{"level": 12},
	})
	require.NoError(t, err)
	assert.Equal(t, "r1", handle.RequestID)

	require.Len(t, f.submitted, 1)
	assert.Equal(t, models.PlayerIdentity("p1"), f.submitted[0].PlayerID)
	assert.Equal(t, "game-1v1", f.submitted[0].GameID)
	assert.EqualValues(t, 12, f.submitted[0].Metadata["level"])
}

func TestSubmitWithoutRequestID(t *testing.T) {
	c := newTestClient(t, &fakeService{})

	handle, err := c.Submit(context.Background(), models.MatchRequest{PlayerID: "p1", GameID: "game-1v1"})
	require.NoError(t, err)
	assert.False(t, handle.Valid())
}

func TestTrigger(t *testing.T) {
	f := &fakeService{batch: map[string]interface{}{
		"message": "Matchmaking processed successfully",
		"matches": []map[string]interface{}{{
			"match_id":   "m1",
			"team_name":  "Player1",
			"players":    []string{"p1", "p2"},
			"created_at": "2025-01-02T03:04:05Z",
		}},
	}}
	c := newTestClient(t, f)

	batch, err := c.Trigger(context.Background(), "game-1v1")
	require.NoError(t, err)
	require.Len(t, batch.Matches, 1)
	assert.Equal(t, "m1", batch.Matches[0].MatchID)
	assert.Equal(t, []string{"p1", "p2"}, batch.Matches[0].Players)
	assert.Equal(t, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), batch.Matches[0].CreatedAt.UTC())
}

func TestStatus(t *testing.T) {
	f := &fakeService{
		requestID: "r1",
		status: map[string]interface{}{
			"status":  "allocated",
			"session": map[string]interface{}{"ip": "10.0.0.5", "port": 7777, "id": "s1"},
		},
	}
	c := newTestClient(t, f)

	res, err := c.Status(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusAllocated, res.Status)
	require.NotNil(t, res.Session)
	assert.Equal(t, 7777, res.Session.Port)
}

func TestStatusNotFound(t *testing.T) {
	c := newTestClient(t, &fakeService{requestID: "r1"})

	_, err := c.Status(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
	assert.Contains(t, err.Error(), "Match request not found")
}

func TestStatusMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, zap.NewNop())
	_, err := c.Status(context.Background(), "r1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode response")
}

func TestPerCallTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Timeout: 20 * time.Millisecond}, zap.NewNop())
	_, err := c.Status(context.Background(), "r1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to call matchmaking service")
}
