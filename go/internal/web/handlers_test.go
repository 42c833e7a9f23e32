package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/triviahub/go/internal/trivia"
)

type nopBroadcaster struct{}

func (nopBroadcaster) AddToGroup(sessionID, connID string)            {}
func (nopBroadcaster) RemoveFromGroup(sessionID, connID string)       {}
func (nopBroadcaster) ToGroup(sessionID string, event trivia.Event)   {}
func (nopBroadcaster) ToConnection(connID string, event trivia.Event) {}
func (nopBroadcaster) ToAll(event trivia.Event)                       {}

func newTestServer(t *testing.T) (*http.ServeMux, *trivia.Engine) {
	t.Helper()
	engine := trivia.NewEngine(nopBroadcaster{}, clockwork.NewFakeClock(), trivia.DefaultConfig())
	mux := http.NewServeMux()
	NewHandler(engine).RegisterRoutes(mux)
	return mux, engine
}

func TestListSessions(t *testing.T) {
	mux, engine := newTestServer(t)
	_, err := engine.Join("abc", "Ann", "c1")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var sums []trivia.SessionSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sums))
	require.Len(t, sums, 1)
	require.Equal(t, "abc", sums[0].ID)
	require.Equal(t, "Ann", sums[0].MasterName)
	require.Equal(t, 1, sums[0].PlayersCount)
}

func TestSessionInfo(t *testing.T) {
	mux, engine := newTestServer(t)
	_, err := engine.Join("abc", "Ann", "c1")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/abc", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var state trivia.GameState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	require.Equal(t, "abc", state.SessionID)
	require.Equal(t, trivia.StatusWaiting, state.GameState)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/nope", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionExists(t *testing.T) {
	mux, engine := newTestServer(t)
	_, err := engine.Join("abc", "Ann", "c1")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/abc/exists", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"exists":true}`, rec.Body.String())

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/nope/exists", nil))
	require.JSONEq(t, `{"exists":false}`, rec.Body.String())
}

func TestCreateSessionRedirects(t *testing.T) {
	mux, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sessions", nil))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Contains(t, rec.Header().Get("Location"), "/session/")
}
