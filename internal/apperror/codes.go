package apperror

import "errors"

const (
	CodeInvalidColumn = "invalid_column"
	CodeInvalidPlayer = "invalid_player"
	CodeColumnFull    = "column_full"
	CodeGameFinished  = "game_finished"
	CodeNotYourTurn   = "not_your_turn"
	CodeGameNotFound  = "game_not_found"
	CodeUnavailable   = "unavailable"
	CodeInternal      = "internal"
)

var codes = []struct {
	err  error
	code string
}{
	{ErrInvalidColumn, CodeInvalidColumn},
	{ErrInvalidPlayer, CodeInvalidPlayer},
	{ErrColumnFull, CodeColumnFull},
	{ErrGameFinished, CodeGameFinished},
	{ErrNotYourTurn, CodeNotYourTurn},
	{ErrGameNotFound, CodeGameNotFound},
	{ErrStoreUnavailable, CodeUnavailable},
}

// Code returns a stable machine readable code for err, CodeInternal when err is not a known rejection.
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}

	return CodeInternal
}
