package rpc

import (
	"errors"

	"connectrpc.com/connect"
	"github.com/mcdev12/roulettedraft/go/internal/draft/drafterr"
)

// ReasonHeader carries the draft failure code alongside the connect status.
const ReasonHeader = "Draft-Error-Reason"

// ConnectCode maps a draft failure code to the closest connect status.
func ConnectCode(code drafterr.Code) connect.Code {
	switch code {
	case drafterr.CodeRoomNotFound, drafterr.CodeParticipantNotFound, drafterr.CodePlayerNotFound:
		return connect.CodeNotFound
	case drafterr.CodeInvalidConfig, drafterr.CodeProcessingError:
		return connect.CodeInvalidArgument
	case drafterr.CodeInvalidRoomState, drafterr.CodeRoomFull, drafterr.CodeInsufficientParticipants,
		drafterr.CodeDraftComplete, drafterr.CodeNotYourTurn, drafterr.CodeRosterLimitReached:
		return connect.CodeFailedPrecondition
	case drafterr.CodePlayerAlreadyPicked:
		return connect.CodeAlreadyExists
	case drafterr.CodeConcurrentModification:
		return connect.CodeAborted
	default:
		return connect.CodeInternal
	}
}

// ToConnectError converts any error returned by the draft apps into a connect error. Internal
// faults keep their generic message so store details never reach clients.
func ToConnectError(err error) *connect.Error {
	derr := drafterr.From(err)
	cerr := connect.NewError(ConnectCode(derr.Code), errors.New(derr.Message))
	cerr.Meta().Set(ReasonHeader, string(derr.Code))
	return cerr
}

// ReasonOf recovers the draft failure code from an error returned by a connect client.
func ReasonOf(err error) drafterr.Code {
	var cerr *connect.Error
	if errors.As(err, &cerr) {
		if reason := cerr.Meta().Get(ReasonHeader); reason != "" {
			return drafterr.Code(reason)
		}
	}
	return drafterr.CodeOf(err)
}
