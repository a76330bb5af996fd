package randomfill

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	NewService(newFixture(squadPlayers("Arsenal", "a")).app).RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, body string, dst any) int {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
	return resp.StatusCode
}

func TestHandleRandomFill(t *testing.T) {
	srv := newTestServer(t)
	url := srv.URL + "/api/draft/random-fill"

	var filled Response
	status := postJSON(t, url, `{"selected_teams":["Arsenal"],"squads":[{"id":"s1","name":"Ann","formation":"4-4-2"}]}`, &filled)
	assert.Equal(t, http.StatusOK, status)
	require.Len(t, filled.Squads, 1)
	assert.Equal(t, "s1", filled.Squads[0].ID)
	assert.Len(t, filled.Squads[0].Players, 11)

	var errResp ErrorResponse
	assert.Equal(t, http.StatusBadRequest, postJSON(t, url, `{"selected_teams":`, &errResp))
	assert.Equal(t, "INVALID_CONFIG", errResp.Reason)

	errResp = ErrorResponse{}
	assert.Equal(t, http.StatusBadRequest, postJSON(t, url, `{"selected_teams":[],"squads":[{"id":"s1"}]}`, &errResp))
	assert.Equal(t, "selected teams cannot be empty", errResp.Message)

	errResp = ErrorResponse{}
	body := `{"selected_teams":["Arsenal"],"squads":[{"id":"s1"}],"room_id":"` + uuid.NewString() + `"}`
	assert.Equal(t, http.StatusNotFound, postJSON(t, url, body, &errResp))
	assert.Equal(t, "ROOM_NOT_FOUND", errResp.Reason)
}

func TestRandomFillRejectsGet(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/draft/random-fill")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
