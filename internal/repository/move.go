package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/rocketscienceinc/connect4-backend/internal/entity"
	"github.com/rocketscienceinc/connect4-backend/internal/repository/storage"
)

// MoveRepository is the append-only move log together with the games it belongs to.
type MoveRepository interface {
	CreateGame(ctx context.Context, game *entity.Game) error
	SaveMove(ctx context.Context, move *entity.Move) error
	FinishGame(ctx context.Context, game *entity.Game) error
	ListMoves(ctx context.Context, gameID string) ([]*entity.Move, error)
}

type dbMove struct {
	storage *storage.SQLStorage
}

func NewMoveRepository(st *storage.SQLStorage) MoveRepository {
	return &dbMove{
		storage: st,
	}
}

// CreateGame records game in the log; recording the same game again is a no-op.
func (that *dbMove) CreateGame(ctx context.Context, game *entity.Game) error {
	query := that.storage.Rebind(`INSERT INTO games (id, created_at, status, winner) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`)

	_, err := that.storage.Connection.ExecContext(ctx, query, game.ID, game.CreatedAt.UTC(), game.Status, string(game.Winner))
	if err != nil {
		return fmt.Errorf("failed to insert game: %w", err)
	}

	return nil
}

// SaveMove appends move to the log and sets its ID.
// A games row missing because CreateGame failed earlier is created on the way.
func (that *dbMove) SaveMove(ctx context.Context, move *entity.Move) error {
	tx, err := that.storage.Connection.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	ensureGame := that.storage.Rebind(`INSERT INTO games (id, created_at, status, winner) VALUES (?, ?, ?, '')
		ON CONFLICT (id) DO NOTHING`)

	if _, err = tx.ExecContext(ctx, ensureGame, move.GameID, move.CreatedAt.UTC(), entity.StatusOngoing); err != nil {
		return fmt.Errorf("failed to ensure game: %w", err)
	}

	query := that.storage.Rebind(`INSERT INTO moves (game_id, seq, row_num, col_num, player, created_at)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id`)

	err = tx.QueryRowContext(ctx, query,
		move.GameID, move.Seq, move.Row, move.Column, string(move.Player), move.CreatedAt.UTC(),
	).Scan(&move.ID)
	if err != nil {
		return fmt.Errorf("failed to insert move: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit move: %w", err)
	}

	return nil
}

// FinishGame records the final status and winner of game, creating its games row when missing.
func (that *dbMove) FinishGame(ctx context.Context, game *entity.Game) error {
	query := that.storage.Rebind(`INSERT INTO games (id, created_at, status, winner) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET status = excluded.status, winner = excluded.winner`)

	_, err := that.storage.Connection.ExecContext(ctx, query,
		game.ID, game.CreatedAt.UTC(), game.Status, string(game.Winner))
	if err != nil {
		return fmt.Errorf("failed to update game result: %w", err)
	}

	return nil
}

func (that *dbMove) ListMoves(ctx context.Context, gameID string) ([]*entity.Move, error) {
	query := that.storage.Rebind(`SELECT id, game_id, seq, row_num, col_num, player, created_at
		FROM moves WHERE game_id = ? ORDER BY seq`)

	rows, err := that.storage.Connection.QueryContext(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to query moves: %w", err)
	}
	defer rows.Close()

	moves := make([]*entity.Move, 0)
	for rows.Next() {
		var (
			move      entity.Move
			player    string
			createdAt time.Time
		)

		if err = rows.Scan(&move.ID, &move.GameID, &move.Seq, &move.Row, &move.Column, &player, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan move: %w", err)
		}

		move.Player = entity.Cell(player)
		move.CreatedAt = createdAt.UTC()
		moves = append(moves, &move)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read moves: %w", err)
	}

	return moves, nil
}
