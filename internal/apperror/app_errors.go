package apperror

import "errors"

var (
	ErrInvalidColumn = errors.New("invalid column index")
	ErrInvalidPlayer = errors.New("invalid player")
	ErrColumnFull    = errors.New("column is full")
	ErrGameFinished  = errors.New("game is already finished")
	ErrNotYourTurn   = errors.New("it's not your turn")
	ErrGameNotFound  = errors.New("game not found")

	// ErrStoreUnavailable marks a session store that could not be reached.
	ErrStoreUnavailable = errors.New("game store is unavailable")

	// ErrPersistenceUnavailable marks a move log write that failed after the move was accepted.
	ErrPersistenceUnavailable = errors.New("move log is unavailable")
)
