package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/connect4-backend/internal/apperror"
	"github.com/rocketscienceinc/connect4-backend/internal/entity"
	"github.com/rocketscienceinc/connect4-backend/internal/publisher"
)

const defaultWriteTimeout = 3 * time.Second

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
}

type moveRepo interface {
	CreateGame(ctx context.Context, game *entity.Game) error
	SaveMove(ctx context.Context, move *entity.Move) error
	FinishGame(ctx context.Context, game *entity.Game) error
	ListMoves(ctx context.Context, gameID string) ([]*entity.Move, error)
}

type eventPublisher interface {
	Enqueue(event publisher.Event) bool
}

// Result is what a caller gets back for an accepted game action.
type Result struct {
	Game *entity.Game
	// Move is nil for a freshly created game.
	Move *entity.Move
	// Warning wraps apperror.ErrPersistenceUnavailable when the move log could not be written.
	Warning error
}

func (that *Result) Degraded() bool {
	return that.Warning != nil
}

// GameManager owns the game lifecycle. Moves for one game id are applied one at a time.
type GameManager struct {
	logger *slog.Logger

	gameRepo  gameRepo
	moveRepo  moveRepo
	publisher eventPublisher

	locks        *keyedLocker
	writeTimeout time.Duration
	now          func() time.Time
	newID        func() string
}

func NewGameManager(logger *slog.Logger, gameRepo gameRepo, moveRepo moveRepo, publisher eventPublisher, writeTimeout time.Duration) *GameManager {
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}

	return &GameManager{
		logger: logger.With("component", "game_manager"),

		gameRepo:  gameRepo,
		moveRepo:  moveRepo,
		publisher: publisher,

		locks:        newKeyedLocker(),
		writeTimeout: writeTimeout,
		now:          func() time.Time { return time.Now().UTC() },
		newID:        uuid.NewString,
	}
}

// NewGame starts a game with an empty board and red to move.
func (that *GameManager) NewGame(ctx context.Context) (*Result, error) {
	log := that.logger.With("method", "NewGame")

	game := entity.NewGame(that.newID(), that.now())

	if err := that.gameRepo.CreateOrUpdate(ctx, &game); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	result := &Result{Game: &game}

	writeCtx, cancel := that.writeContext(ctx)
	defer cancel()

	if err := that.moveRepo.CreateGame(writeCtx, &game); err != nil {
		log.Warn("failed to record game in move log", "gameID", game.ID, "error", err)
		result.Warning = fmt.Errorf("%w: %w", apperror.ErrPersistenceUnavailable, err)
	}

	log.Info("game created", "gameID", game.ID)

	return result, nil
}

func (that *GameManager) GetGame(ctx context.Context, id string) (*entity.Game, error) {
	game, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

// MakeMove drops player's piece into column of game id.
// Engine rejections are returned as errors; a failed move log write only sets Result.Warning.
func (that *GameManager) MakeMove(ctx context.Context, id string, player entity.Cell, column int) (*Result, error) {
	log := that.logger.With("method", "MakeMove", "gameID", id)

	unlock := that.locks.Lock(id)
	defer unlock()

	game, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	next, move, err := game.ApplyMove(player, column, that.now())
	if err != nil {
		return nil, fmt.Errorf("failed to make move: %w", err)
	}

	if err = that.gameRepo.CreateOrUpdate(ctx, &next); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	result := &Result{
		Game: &next,
		Move: &move,
	}

	if err = that.recordMove(ctx, &next, &move); err != nil {
		log.Warn("move accepted but not logged", "seq", move.Seq, "error", err)
		result.Warning = fmt.Errorf("%w: %w", apperror.ErrPersistenceUnavailable, err)
	}

	that.publisher.Enqueue(publisher.NewMoveEvent(&next, &move))

	log.Info("move accepted", "player", player, "row", move.Row, "col", move.Column, "status", next.Status)

	return result, nil
}

// ListMoves returns the logged moves of game id in play order.
func (that *GameManager) ListMoves(ctx context.Context, id string) ([]*entity.Move, error) {
	moves, err := that.moveRepo.ListMoves(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list moves: %w", err)
	}

	return moves, nil
}

func (that *GameManager) recordMove(ctx context.Context, game *entity.Game, move *entity.Move) error {
	writeCtx, cancel := that.writeContext(ctx)
	defer cancel()

	var errs []error
	if err := that.moveRepo.SaveMove(writeCtx, move); err != nil {
		errs = append(errs, err)
	}

	if game.IsFinished() {
		if err := that.moveRepo.FinishGame(writeCtx, game); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// writeContext outlives the caller's cancellation so an accepted move still reaches the log.
func (that *GameManager) writeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), that.writeTimeout)
}
