package room

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/mcdev12/roulettedraft/go/internal/models"
	"github.com/mcdev12/roulettedraft/go/internal/rpc"
)

const RoomServiceName = "roulettedraft.room.v1.RoomService"

const (
	RoomServiceCreateRoomProcedure          = "/" + RoomServiceName + "/CreateRoom"
	RoomServiceJoinRoomProcedure            = "/" + RoomServiceName + "/JoinRoom"
	RoomServiceStartDraftProcedure          = "/" + RoomServiceName + "/StartDraft"
	RoomServiceGetRoomProcedure             = "/" + RoomServiceName + "/GetRoom"
	RoomServiceUpdateSelectedTeamsProcedure = "/" + RoomServiceName + "/UpdateSelectedTeams"
)

// RoomRequest addresses a single room.
type RoomRequest struct {
	RoomID uuid.UUID `json:"room_id"`
}

// RoomApp defines what the service layer needs from the room application
type RoomApp interface {
	CreateRoom(ctx context.Context, req CreateRoomRequest) (*models.RoomSnapshot, error)
	JoinRoom(ctx context.Context, req JoinRoomRequest) (*models.RoomSnapshot, error)
	StartDraft(ctx context.Context, roomID uuid.UUID) (*models.RoomSnapshot, error)
	GetRoomSnapshot(ctx context.Context, roomID uuid.UUID) (*models.RoomSnapshot, error)
	UpdateSelectedTeams(ctx context.Context, req UpdateSelectedTeamsRequest) (*models.RoomSnapshot, error)
}

// Service exposes the room lifecycle over connect
type Service struct {
	app RoomApp
}

// NewService creates a new room connect service
func NewService(app RoomApp) *Service {
	return &Service{app: app}
}

// CreateRoom creates a new room
func (s *Service) CreateRoom(ctx context.Context, req *connect.Request[CreateRoomRequest]) (*connect.Response[models.RoomSnapshot], error) {
	snapshot, err := s.app.CreateRoom(ctx, *req.Msg)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}
	return connect.NewResponse(snapshot), nil
}

// JoinRoom seats the caller in a room
func (s *Service) JoinRoom(ctx context.Context, req *connect.Request[JoinRoomRequest]) (*connect.Response[models.RoomSnapshot], error) {
	snapshot, err := s.app.JoinRoom(ctx, *req.Msg)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}
	return connect.NewResponse(snapshot), nil
}

// StartDraft starts the draft of a WAITING room
func (s *Service) StartDraft(ctx context.Context, req *connect.Request[RoomRequest]) (*connect.Response[models.RoomSnapshot], error) {
	snapshot, err := s.app.StartDraft(ctx, req.Msg.RoomID)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}
	return connect.NewResponse(snapshot), nil
}

// GetRoom returns the current snapshot of a room
func (s *Service) GetRoom(ctx context.Context, req *connect.Request[RoomRequest]) (*connect.Response[models.RoomSnapshot], error) {
	snapshot, err := s.app.GetRoomSnapshot(ctx, req.Msg.RoomID)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}
	return connect.NewResponse(snapshot), nil
}

// UpdateSelectedTeams replaces a participant's preferred clubs
func (s *Service) UpdateSelectedTeams(ctx context.Context, req *connect.Request[UpdateSelectedTeamsRequest]) (*connect.Response[models.RoomSnapshot], error) {
	snapshot, err := s.app.UpdateSelectedTeams(ctx, *req.Msg)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}
	return connect.NewResponse(snapshot), nil
}

// NewRoomServiceHandler builds an HTTP handler serving every RoomService procedure. It returns
// the path prefix to mount it on.
func NewRoomServiceHandler(svc *Service, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{rpc.WithJSON()}, opts...)

	createRoom := connect.NewUnaryHandler(RoomServiceCreateRoomProcedure, svc.CreateRoom, opts...)
	joinRoom := connect.NewUnaryHandler(RoomServiceJoinRoomProcedure, svc.JoinRoom, opts...)
	startDraft := connect.NewUnaryHandler(RoomServiceStartDraftProcedure, svc.StartDraft, opts...)
	getRoom := connect.NewUnaryHandler(RoomServiceGetRoomProcedure, svc.GetRoom, opts...)
	updateSelectedTeams := connect.NewUnaryHandler(RoomServiceUpdateSelectedTeamsProcedure, svc.UpdateSelectedTeams, opts...)

	return "/" + RoomServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case RoomServiceCreateRoomProcedure:
			createRoom.ServeHTTP(w, r)
		case RoomServiceJoinRoomProcedure:
			joinRoom.ServeHTTP(w, r)
		case RoomServiceStartDraftProcedure:
			startDraft.ServeHTTP(w, r)
		case RoomServiceGetRoomProcedure:
			getRoom.ServeHTTP(w, r)
		case RoomServiceUpdateSelectedTeamsProcedure:
			updateSelectedTeams.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}
