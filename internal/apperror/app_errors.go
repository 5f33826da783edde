package apperror

import "errors"

var (
	ErrMatchAlreadyOver = errors.New("match is already over")
	ErrNotYourTurn      = errors.New("it's not your turn")
	ErrNotParticipant   = errors.New("player is not a participant of this match")
	ErrColumnFull       = errors.New("column is full")
	ErrInvalidColumn    = errors.New("invalid column index")
	ErrInvalidGrid      = errors.New("grid does not describe a single valid move")
	ErrMatchNotFound    = errors.New("match not found")
	ErrPlayerNotFound   = errors.New("player not found")
)
