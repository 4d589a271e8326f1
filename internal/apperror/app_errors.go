package apperror

import "errors"

var (
	ErrMalformedResponse = errors.New("malformed move authority response")
	ErrTransportFailure  = errors.New("move authority request failed")
	ErrStaleResponse     = errors.New("response belongs to a previous session")

	ErrIllegalMove      = errors.New("move is not among the current options")
	ErrRequestPending   = errors.New("a request is already in flight")
	ErrGameIsNotStarted = errors.New("game is not started")
	ErrGameFinished     = errors.New("game is already finished")
	ErrNotYourTurn      = errors.New("it's not your turn")
	ErrSideLocked       = errors.New("side can't be changed while a game is running")
	ErrInvalidSide      = errors.New("invalid side")
	ErrOutOfBoard       = errors.New("coordinate is outside the board")

	ErrSessionNotFound = errors.New("session not found")
)

// IsSilent reports whether err is a rejected input that the UI should ignore.
func IsSilent(err error) bool {
	return errors.Is(err, ErrIllegalMove) ||
		errors.Is(err, ErrRequestPending) ||
		errors.Is(err, ErrGameIsNotStarted) ||
		errors.Is(err, ErrGameFinished) ||
		errors.Is(err, ErrNotYourTurn) ||
		errors.Is(err, ErrOutOfBoard) ||
		errors.Is(err, ErrStaleResponse)
}
