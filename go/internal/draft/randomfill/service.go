package randomfill

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/mcdev12/roulettedraft/go/internal/draft/drafterr"
	"github.com/rs/zerolog/log"
)

const maxRequestBytes = 1 << 20

// FillApp defines what the service layer needs from the random fill application
type FillApp interface {
	Fill(ctx context.Context, req Request) (*Response, error)
}

// ErrorResponse is the body of every failed random fill request.
type ErrorResponse struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
	Reason  string `json:"reason"`
}

type Service struct {
	app FillApp
}

func NewService(app FillApp) *Service {
	return &Service{app: app}
}

func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/draft/random-fill", s.HandleRandomFill)
}

func (s *Service) HandleRandomFill(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, string(drafterr.CodeInvalidConfig), "malformed random fill request")
		return
	}

	resp, err := s.app.Fill(r.Context(), req)
	if err != nil {
		derr := drafterr.From(err)
		status := httpStatus(derr.Code)
		if status == http.StatusInternalServerError {
			log.Error().Err(err).Msg("failed to random fill squads")
		}
		writeError(w, status, string(derr.Code), derr.Message)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func httpStatus(code drafterr.Code) int {
	switch code {
	case drafterr.CodeInvalidConfig:
		return http.StatusBadRequest
	case drafterr.CodeRoomNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
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
