package room

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/mcdev12/roulettedraft/go/internal/draft/drafterr"
	"github.com/mcdev12/roulettedraft/go/internal/models"
	"github.com/mcdev12/roulettedraft/go/internal/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoomServer(t *testing.T) (*fixture, string) {
	t.Helper()
	f := newFixture()
	mux := http.NewServeMux()
	mux.Handle(NewRoomServiceHandler(NewService(f.app)))
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return f, server.URL
}

func TestRoomServiceOverConnect(t *testing.T) {
	_, baseURL := newRoomServer(t)
	ctx := context.Background()

	create := connect.NewClient[CreateRoomRequest, models.RoomSnapshot](
		http.DefaultClient, baseURL+RoomServiceCreateRoomProcedure, rpc.WithJSON())
	join := connect.NewClient[JoinRoomRequest, models.RoomSnapshot](
		http.DefaultClient, baseURL+RoomServiceJoinRoomProcedure, rpc.WithJSON())
	start := connect.NewClient[RoomRequest, models.RoomSnapshot](
		http.DefaultClient, baseURL+RoomServiceStartDraftProcedure, rpc.WithJSON())
	get := connect.NewClient[RoomRequest, models.RoomSnapshot](
		http.DefaultClient, baseURL+RoomServiceGetRoomProcedure, rpc.WithJSON())

	created, err := create.CallUnary(ctx, connect.NewRequest(&CreateRoomRequest{Name: "rpc", MaxParticipants: intPtr(2)}))
	require.NoError(t, err)
	roomID := created.Msg.Room.ID

	for _, userID := range []string{"u1", "u2"} {
		_, err := join.CallUnary(ctx, connect.NewRequest(&JoinRoomRequest{RoomID: roomID, UserID: userID}))
		require.NoError(t, err)
	}

	_, err = join.CallUnary(ctx, connect.NewRequest(&JoinRoomRequest{RoomID: roomID, UserID: "u3"}))
	require.Error(t, err)
	assert.Equal(t, connect.CodeFailedPrecondition, connect.CodeOf(err))
	assert.Equal(t, drafterr.CodeRoomFull, rpc.ReasonOf(err))

	started, err := start.CallUnary(ctx, connect.NewRequest(&RoomRequest{RoomID: roomID}))
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusDrafting, started.Msg.Room.Status)

	got, err := get.CallUnary(ctx, connect.NewRequest(&RoomRequest{RoomID: roomID}))
	require.NoError(t, err)
	assert.Len(t, got.Msg.Participants, 2)

	_, err = get.CallUnary(ctx, connect.NewRequest(&RoomRequest{RoomID: uuid.New()}))
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))
	assert.Equal(t, drafterr.CodeRoomNotFound, rpc.ReasonOf(err))
}

func TestRoomServiceUnknownProcedure(t *testing.T) {
	_, baseURL := newRoomServer(t)

	resp, err := http.Post(baseURL+"/"+RoomServiceName+"/DeleteRoom", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
