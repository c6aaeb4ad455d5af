package apperrors

import "errors"

// Kind classifies a failed game action.
type Kind string

const (
	KindNotFound             Kind = "not_found"
	KindInvalidState         Kind = "invalid_state"
	KindInsufficientResource Kind = "insufficient_resource"
	KindPreconditionFailed   Kind = "precondition_failed"
)

// GameError is a recoverable, request-level failure. The session is never
// modified when one is returned.
type GameError struct {
	Kind    Kind
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

// 预定义错误
var (
	ErrSessionNotFound = &GameError{Kind: KindNotFound, Message: "session not found"}
	ErrPlayerNotFound  = &GameError{Kind: KindNotFound, Message: "player not found"}
	ErrRoomNotFound    = &GameError{Kind: KindNotFound, Message: "room not found"}
	ErrDoorNotFound    = &GameError{Kind: KindNotFound, Message: "door not found"}
	ErrCardNotFound    = &GameError{Kind: KindNotFound, Message: "card not found"}

	ErrSessionNotWaiting = &GameError{Kind: KindInvalidState, Message: "session has already started or is finished"}
	ErrSessionNotPlaying = &GameError{Kind: KindInvalidState, Message: "session is not in progress"}
	ErrDoorAlreadyOpen   = &GameError{Kind: KindInvalidState, Message: "door is already open"}
	ErrDoorNotOpen       = &GameError{Kind: KindInvalidState, Message: "door is not open"}
	ErrPlayerCannotAct   = &GameError{Kind: KindInvalidState, Message: "player is dead, blocked or has already won"}
	ErrPlayerNotBlocked  = &GameError{Kind: KindInvalidState, Message: "player is not blocked"}
	ErrAlreadyMoved      = &GameError{Kind: KindInvalidState, Message: "player has already moved this turn"}
	ErrCardAlreadyUsed   = &GameError{Kind: KindInvalidState, Message: "card has already been used"}
	ErrCardNotUsed       = &GameError{Kind: KindInvalidState, Message: "card has not been used"}

	ErrNotEnoughPoints = &GameError{Kind: KindInsufficientResource, Message: "player does not have enough points to open this door"}

	ErrInvalidRoster    = &GameError{Kind: KindPreconditionFailed, Message: "a session needs between 3 and 8 players"}
	ErrInvalidOptions   = &GameError{Kind: KindPreconditionFailed, Message: "invalid session options"}
	ErrDoorNotInRoom    = &GameError{Kind: KindPreconditionFailed, Message: "door does not belong to the player's room"}
	ErrNotSameRoom      = &GameError{Kind: KindPreconditionFailed, Message: "players are not in the same room"}
	ErrNobodyAtExit     = &GameError{Kind: KindPreconditionFailed, Message: "nobody has reached the exit yet, giving up is not allowed"}
	ErrDoorFull         = &GameError{Kind: KindPreconditionFailed, Message: "door is full, player is blocked"}
	ErrCardNotUsableNow = &GameError{Kind: KindPreconditionFailed, Message: "card cannot be used right now"}
)

// KindOf returns the kind of a game error, or "" for anything else
// (storage failures, cancelled contexts).
func KindOf(err error) Kind {
	var gameErr *GameError
	if errors.As(err, &gameErr) {
		return gameErr.Kind
	}
	return ""
}

// IsKind reports whether err is a game error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
