package entity

import (
	"fmt"

	"github.com/rocketscienceinc/connect4-backend/internal/apperror"
)

const (
	Rows    = 6
	Columns = 7

	// WinLength is the number of contiguous pieces needed to win.
	WinLength = 4
)

type Cell string

const (
	EmptyCell    Cell = ""
	PlayerRed    Cell = "red"
	PlayerYellow Cell = "yellow"
)

// axes are the four line directions a run can follow: horizontal, vertical, diagonal ↘ and diagonal ↙.
var axes = [4][2]int{
	{0, 1},
	{1, 0},
	{1, 1},
	{1, -1},
}

// Board is indexed [row][column]; row 0 is the top, row Rows-1 the bottom.
type Board [Rows][Columns]Cell

func (that Cell) IsPlayer() bool {
	return that == PlayerRed || that == PlayerYellow
}

// Opponent returns the other player, or EmptyCell for a non-player cell.
func (that Cell) Opponent() Cell {
	switch that {
	case PlayerRed:
		return PlayerYellow
	case PlayerYellow:
		return PlayerRed
	default:
		return EmptyCell
	}
}

func inBounds(row, col int) bool {
	return row >= 0 && row < Rows && col >= 0 && col < Columns
}

// DropPiece lets player's piece fall into column and returns the landing row with the resulting board.
// The given board is never modified.
func DropPiece(board Board, column int, player Cell) (int, Board, error) {
	if column < 0 || column >= Columns {
		return -1, board, fmt.Errorf("%w: column %d", apperror.ErrInvalidColumn, column)
	}

	if !player.IsPlayer() {
		return -1, board, fmt.Errorf("%w: %q", apperror.ErrInvalidPlayer, player)
	}

	for row := Rows - 1; row >= 0; row-- {
		if board[row][column] == EmptyCell {
			next := board
			next[row][column] = player

			return row, next, nil
		}
	}

	return -1, board, fmt.Errorf("%w: column %d", apperror.ErrColumnFull, column)
}

// CheckWin reports whether the piece at (row, col) is part of a run of at least WinLength pieces of player.
func CheckWin(board Board, row, col int, player Cell) bool {
	if !inBounds(row, col) || !player.IsPlayer() || board[row][col] != player {
		return false
	}

	for _, axis := range axes {
		count := 1 + countRun(board, row, col, axis[0], axis[1], player) + countRun(board, row, col, -axis[0], -axis[1], player)
		if count >= WinLength {
			return true
		}
	}

	return false
}

// countRun counts player's pieces from (row, col) exclusive in the direction (dRow, dCol).
func countRun(board Board, row, col, dRow, dCol int, player Cell) int {
	count := 0
	for r, c := row+dRow, col+dCol; inBounds(r, c) && board[r][c] == player; r, c = r+dRow, c+dCol {
		count++
	}

	return count
}

func IsFull(board Board) bool {
	for _, row := range board {
		for _, cell := range row {
			if cell == EmptyCell {
				return false
			}
		}
	}

	return true
}
