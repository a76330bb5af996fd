package player

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mcdev12/roulettedraft/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	NewService(NewApp(NewMemoryRepository(testPlayers(t)))).RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, dst any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
	return resp.StatusCode
}

func TestServiceRoutes(t *testing.T) {
	srv := newTestServer(t)

	var players []models.Player
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/players", &players))
	assert.Len(t, players, 4)

	players = nil
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/players?page=0&size=2", &players))
	assert.Len(t, players, 2)

	var p models.Player
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/players/p2", &p))
	assert.Equal(t, "Jude Bellingham", p.Name)

	players = nil
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/players/search?position=MF&nationality=spain", &players))
	require.Len(t, players, 1)
	assert.Equal(t, "Rodri", players[0].Name)

	players = nil
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/teams/Real%20Madrid/players", &players))
	assert.Len(t, players, 1)

	var teams []models.Team
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/teams?league=La%20Liga", &teams))
	assert.Equal(t, []models.Team{{Name: "Real Madrid", League: "La Liga"}}, teams)
}

func TestServiceErrors(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		path   string
		status int
		reason string
	}{
		{"unknown player", "/api/players/p99", http.StatusNotFound, "PLAYER_NOT_FOUND"},
		{"negative page", "/api/players?page=-1&size=2", http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"zero size", "/api/players?page=0&size=0", http.StatusBadRequest, "INVALID_ARGUMENT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body ErrorResponse
			status := getJSON(t, srv.URL+tt.path, &body)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.status, body.Status)
			assert.Equal(t, tt.reason, body.Reason)
			assert.NotEmpty(t, body.Message)
		})
	}
}
