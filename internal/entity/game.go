package entity

import (
	"fmt"
	"time"

	"github.com/rocketscienceinc/connect4-backend/internal/apperror"
)

const (
	StatusOngoing = "ongoing"
	StatusWon     = "won"
	StatusDraw    = "draw"
)

// Game is the authoritative state of a single match.
type Game struct {
	ID        string    `json:"id"`
	Board     Board     `json:"board"`
	Turn      Cell      `json:"turn"`
	Winner    Cell      `json:"winner"`
	Status    string    `json:"status"`
	MoveCount int       `json:"move_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewGame(id string, now time.Time) Game {
	return Game{
		ID:        id,
		Turn:      PlayerRed,
		Status:    StatusOngoing,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (that Game) IsOngoing() bool {
	return that.Status == StatusOngoing
}

// IsFinished reports whether the game reached a terminal status.
func (that Game) IsFinished() bool {
	return that.Status == StatusWon || that.Status == StatusDraw
}

func (that Game) ConfirmOngoingState() error {
	if that.IsFinished() {
		return apperror.ErrGameFinished
	}

	return nil
}

// ApplyMove drops player's piece into column and returns the next state together with the accepted move.
// The receiver is left untouched; on error the returned game equals the receiver.
func (that Game) ApplyMove(player Cell, column int, now time.Time) (Game, Move, error) {
	if err := that.ConfirmOngoingState(); err != nil {
		return that, Move{}, err
	}

	if !player.IsPlayer() {
		return that, Move{}, fmt.Errorf("%w: %q", apperror.ErrInvalidPlayer, player)
	}

	if that.Turn != player {
		return that, Move{}, apperror.ErrNotYourTurn
	}

	row, board, err := DropPiece(that.Board, column, player)
	if err != nil {
		return that, Move{}, err
	}

	next := that
	next.Board = board
	next.UpdatedAt = now

	// MoveCount only counts moves that kept the game going, so a won game keeps its last count.
	if CheckWin(board, row, column, player) {
		next.Winner = player
		next.Status = StatusWon
		next.Turn = EmptyCell
	} else {
		next.MoveCount++
		next.Turn = player.Opponent()

		if next.MoveCount == Rows*Columns || IsFull(board) {
			next.Status = StatusDraw
			next.Turn = EmptyCell
		}
	}

	move := Move{
		GameID:    that.ID,
		Seq:       that.MoveCount + 1,
		Row:       row,
		Column:    column,
		Player:    player,
		CreatedAt: now,
	}

	return next, move, nil
}
