package player

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/mcdev12/roulettedraft/go/internal/models"
	"github.com/rs/zerolog/log"
)

// PlayerApp defines what the service layer needs from the player application
type PlayerApp interface {
	GetPlayer(ctx context.Context, id string) (*models.Player, error)
	ListPlayers(ctx context.Context, page, size int) ([]models.Player, error)
	SearchPlayers(ctx context.Context, filter models.PlayerFilter) ([]models.Player, error)
	Teams(ctx context.Context, league string) ([]models.Team, error)
}

// ErrorResponse is the body of every failed catalog request.
type ErrorResponse struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
	Reason  string `json:"reason"`
}

// Service serves the catalog over plain HTTP.
type Service struct {
	app PlayerApp
}

func NewService(app PlayerApp) *Service {
	return &Service{app: app}
}

func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/players", s.HandleListPlayers)
	mux.HandleFunc("GET /api/players/search", s.HandleSearchPlayers)
	mux.HandleFunc("GET /api/players/team/{team}", s.HandlePlayersByTeam)
	mux.HandleFunc("GET /api/players/{id}", s.HandleGetPlayer)
	mux.HandleFunc("GET /api/teams", s.HandleListTeams)
	mux.HandleFunc("GET /api/teams/{team}/players", s.HandlePlayersByTeam)
}

// HandleListPlayers pages only when both page and size are given.
func (s *Service) HandleListPlayers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, size := 0, 0
	if q.Has("page") && q.Has("size") {
		var err error
		if page, err = strconv.Atoi(q.Get("page")); err != nil || page < 0 {
			writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "page must be a non-negative integer")
			return
		}
		if size, err = strconv.Atoi(q.Get("size")); err != nil || size < 1 {
			writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "size must be a positive integer")
			return
		}
	}

	players, err := s.app.ListPlayers(r.Context(), page, size)
	if err != nil {
		s.internalError(w, err, "failed to list players")
		return
	}
	writeJSON(w, http.StatusOK, players)
}

func (s *Service) HandleGetPlayer(w http.ResponseWriter, r *http.Request) {
	p, err := s.app.GetPlayer(r.Context(), r.PathValue("id"))
	if err != nil {
		if IsNotFound(err) {
			writeError(w, http.StatusNotFound, "PLAYER_NOT_FOUND", err.Error())
			return
		}
		s.internalError(w, err, "failed to get player")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Service) HandleSearchPlayers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	players, err := s.app.SearchPlayers(r.Context(), models.PlayerFilter{
		Team:        q.Get("team"),
		Position:    q.Get("position"),
		Nationality: q.Get("nationality"),
	})
	if err != nil {
		s.internalError(w, err, "failed to search players")
		return
	}
	writeJSON(w, http.StatusOK, players)
}

func (s *Service) HandlePlayersByTeam(w http.ResponseWriter, r *http.Request) {
	players, err := s.app.SearchPlayers(r.Context(), models.PlayerFilter{Team: r.PathValue("team")})
	if err != nil {
		s.internalError(w, err, "failed to list team players")
		return
	}
	writeJSON(w, http.StatusOK, players)
}

func (s *Service) HandleListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := s.app.Teams(r.Context(), r.URL.Query().Get("league"))
	if err != nil {
		s.internalError(w, err, "failed to list teams")
		return
	}
	writeJSON(w, http.StatusOK, teams)
}

func (s *Service) internalError(w http.ResponseWriter, err error, msg string) {
	log.Error().Err(err).Msg(msg)
	writeError(w, http.StatusInternalServerError, "INTERNAL", msg)
}

func writeError(w http.ResponseWriter, status int, reason, message string) {
	writeJSON(w, status, ErrorResponse{Message: message, Status: status, Reason: reason})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
