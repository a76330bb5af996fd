package pick

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/mcdev12/roulettedraft/go/internal/models"
	"github.com/mcdev12/roulettedraft/go/internal/rpc"
)

const PickServiceName = "roulettedraft.pick.v1.PickService"

const (
	PickServiceMakePickProcedure  = "/" + PickServiceName + "/MakePick"
	PickServiceListPicksProcedure = "/" + PickServiceName + "/ListPicks"
)

// PickApp defines what the service layer needs from the pick application
type PickApp interface {
	MakePick(ctx context.Context, roomID uuid.UUID, userID string, playerID string) (*models.DraftPick, error)
	ListPicks(ctx context.Context, roomID uuid.UUID) ([]models.DraftPick, error)
}

// Service exposes picks over connect
type Service struct {
	app PickApp
}

// NewService creates a new pick connect service
func NewService(app PickApp) *Service {
	return &Service{app: app}
}

// MakePick commits a pick for the caller
func (s *Service) MakePick(ctx context.Context, req *connect.Request[MakePickRequest]) (*connect.Response[models.DraftPick], error) {
	pick, err := s.app.MakePick(ctx, req.Msg.RoomID, req.Msg.UserID, req.Msg.PlayerID)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}
	return connect.NewResponse(pick), nil
}

// ListPicks returns a room's pick history
func (s *Service) ListPicks(ctx context.Context, req *connect.Request[ListPicksRequest]) (*connect.Response[ListPicksResponse], error) {
	picks, err := s.app.ListPicks(ctx, req.Msg.RoomID)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}
	if picks == nil {
		picks = []models.DraftPick{}
	}
	return connect.NewResponse(&ListPicksResponse{Picks: picks}), nil
}

// NewPickServiceHandler builds an HTTP handler serving every PickService procedure. It returns
// the path prefix to mount it on.
func NewPickServiceHandler(svc *Service, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{rpc.WithJSON()}, opts...)

	makePick := connect.NewUnaryHandler(PickServiceMakePickProcedure, svc.MakePick, opts...)
	listPicks := connect.NewUnaryHandler(PickServiceListPicksProcedure, svc.ListPicks, opts...)

	return "/" + PickServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case PickServiceMakePickProcedure:
			makePick.ServeHTTP(w, r)
		case PickServiceListPicksProcedure:
			listPicks.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}
