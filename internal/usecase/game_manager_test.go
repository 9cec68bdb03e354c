package usecase

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/connect4-backend/internal/apperror"
	"github.com/rocketscienceinc/connect4-backend/internal/entity"
	"github.com/rocketscienceinc/connect4-backend/internal/publisher"
)

var (
	errRedisDown = errors.New("redis down")
	errDBDown    = errors.New("database down")
	testNow      = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
)

type gameRepoMock struct {
	mock.Mock
}

func (that *gameRepoMock) CreateOrUpdate(ctx context.Context, game *entity.Game) error {
	args := that.Called(ctx, game)
	return args.Error(0)
}

func (that *gameRepoMock) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	args := that.Called(ctx, id)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

type moveRepoMock struct {
	mock.Mock
}

func (that *moveRepoMock) CreateGame(ctx context.Context, game *entity.Game) error {
	args := that.Called(ctx, game)
	return args.Error(0)
}

func (that *moveRepoMock) SaveMove(ctx context.Context, move *entity.Move) error {
	args := that.Called(ctx, move)
	return args.Error(0)
}

func (that *moveRepoMock) FinishGame(ctx context.Context, game *entity.Game) error {
	args := that.Called(ctx, game)
	return args.Error(0)
}

func (that *moveRepoMock) ListMoves(ctx context.Context, gameID string) ([]*entity.Move, error) {
	args := that.Called(ctx, gameID)
	moves, _ := args.Get(0).([]*entity.Move)
	return moves, args.Error(1)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publisher.Event
}

func (that *recordingPublisher) Enqueue(event publisher.Event) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.events = append(that.events, event)
	return true
}

func (that *recordingPublisher) published() []publisher.Event {
	that.mu.Lock()
	defer that.mu.Unlock()

	return append([]publisher.Event(nil), that.events...)
}

// memoryGameRepo keeps copies of games so callers never share state.
type memoryGameRepo struct {
	mu    sync.Mutex
	games map[string]entity.Game
}

func newMemoryGameRepo() *memoryGameRepo {
	return &memoryGameRepo{games: make(map[string]entity.Game)}
}

func (that *memoryGameRepo) CreateOrUpdate(_ context.Context, game *entity.Game) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.games[game.ID] = *game
	return nil
}

func (that *memoryGameRepo) GetByID(_ context.Context, id string) (*entity.Game, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	game, ok := that.games[id]
	if !ok {
		return nil, apperror.ErrGameNotFound
	}
	return &game, nil
}

func newTestManager(gameRepo gameRepo, moveRepo moveRepo, pub eventPublisher) *GameManager {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	manager := NewGameManager(logger, gameRepo, moveRepo, pub, time.Second)
	manager.now = func() time.Time { return testNow }
	manager.newID = func() string { return "game-1" }

	return manager
}

func TestGameManager_NewGame(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates a game in both stores", func(t *testing.T) {
		// Given: healthy stores
		mockGameRepo := &gameRepoMock{}
		mockMoveRepo := &moveRepoMock{}
		manager := newTestManager(mockGameRepo, mockMoveRepo, &recordingPublisher{})

		mockGameRepo.On("CreateOrUpdate", ctx, mock.AnythingOfType("*entity.Game")).Return(nil).Once()
		mockMoveRepo.On("CreateGame", mock.Anything, mock.AnythingOfType("*entity.Game")).Return(nil).Once()

		// When: a new game is requested
		result, err := manager.NewGame(ctx)

		// Then: the game starts empty with red to move
		require.NoError(t, err)
		assert.False(t, result.Degraded())
		assert.Nil(t, result.Move)
		assert.Equal(t, entity.NewGame("game-1", testNow), *result.Game)

		mockGameRepo.AssertExpectations(t)
		mockMoveRepo.AssertExpectations(t)
	})

	t.Run("Move log failure is only a warning", func(t *testing.T) {
		mockGameRepo := &gameRepoMock{}
		mockMoveRepo := &moveRepoMock{}
		manager := newTestManager(mockGameRepo, mockMoveRepo, &recordingPublisher{})

		mockGameRepo.On("CreateOrUpdate", ctx, mock.AnythingOfType("*entity.Game")).Return(nil).Once()
		mockMoveRepo.On("CreateGame", mock.Anything, mock.AnythingOfType("*entity.Game")).Return(errDBDown).Once()

		result, err := manager.NewGame(ctx)

		require.NoError(t, err)
		assert.True(t, result.Degraded())
		assert.ErrorIs(t, result.Warning, apperror.ErrPersistenceUnavailable)
		assert.ErrorIs(t, result.Warning, errDBDown)
		assert.Equal(t, "game-1", result.Game.ID)
	})

	t.Run("Session store failure fails the request", func(t *testing.T) {
		mockGameRepo := &gameRepoMock{}
		mockMoveRepo := &moveRepoMock{}
		manager := newTestManager(mockGameRepo, mockMoveRepo, &recordingPublisher{})

		mockGameRepo.On("CreateOrUpdate", ctx, mock.AnythingOfType("*entity.Game")).Return(errRedisDown).Once()

		result, err := manager.NewGame(ctx)

		require.ErrorIs(t, err, errRedisDown)
		assert.Nil(t, result)
		mockMoveRepo.AssertNotCalled(t, "CreateGame", mock.Anything, mock.Anything)
	})
}

func TestGameManager_MakeMove(t *testing.T) {
	ctx := context.Background()

	t.Run("Accepted move is stored, logged and published", func(t *testing.T) {
		// Given: an ongoing game
		game := entity.NewGame("game-1", testNow)
		mockGameRepo := &gameRepoMock{}
		mockMoveRepo := &moveRepoMock{}
		pub := &recordingPublisher{}
		manager := newTestManager(mockGameRepo, mockMoveRepo, pub)

		mockGameRepo.On("GetByID", ctx, "game-1").Return(&game, nil).Once()
		mockGameRepo.On("CreateOrUpdate", ctx, mock.MatchedBy(func(g *entity.Game) bool {
			return g.MoveCount == 1 && g.Board[5][3] == entity.PlayerRed
		})).Return(nil).Once()
		mockMoveRepo.On("SaveMove", mock.Anything, mock.MatchedBy(func(m *entity.Move) bool {
			return m.Seq == 1 && m.Row == 5 && m.Column == 3
		})).Return(nil).Once()

		// When: red drops into column 3
		result, err := manager.MakeMove(ctx, "game-1", entity.PlayerRed, 3)

		// Then: the result carries the landing row and the next turn
		require.NoError(t, err)
		assert.False(t, result.Degraded())
		assert.Equal(t, 5, result.Move.Row)
		assert.Equal(t, entity.PlayerYellow, result.Game.Turn)
		assert.Equal(t, entity.StatusOngoing, result.Game.Status)

		// Then: one event is published
		events := pub.published()
		require.Len(t, events, 1)
		assert.Equal(t, "game-1", events[0].GameID)
		assert.Equal(t, 3, events[0].Column)

		mockGameRepo.AssertExpectations(t)
		mockMoveRepo.AssertExpectations(t)
		mockMoveRepo.AssertNotCalled(t, "FinishGame", mock.Anything, mock.Anything)
	})

	t.Run("Winning move records the result", func(t *testing.T) {
		// Given: red holds (5,0), (5,1) and (5,2) and it is red's turn
		game := entity.NewGame("game-1", testNow)
		game.Board[5][0], game.Board[5][1], game.Board[5][2] = entity.PlayerRed, entity.PlayerRed, entity.PlayerRed
		game.Board[4][0], game.Board[4][1], game.Board[4][2] = entity.PlayerYellow, entity.PlayerYellow, entity.PlayerYellow
		game.MoveCount = 6

		mockGameRepo := &gameRepoMock{}
		mockMoveRepo := &moveRepoMock{}
		manager := newTestManager(mockGameRepo, mockMoveRepo, &recordingPublisher{})

		mockGameRepo.On("GetByID", ctx, "game-1").Return(&game, nil).Once()
		mockGameRepo.On("CreateOrUpdate", ctx, mock.AnythingOfType("*entity.Game")).Return(nil).Once()
		mockMoveRepo.On("SaveMove", mock.Anything, mock.AnythingOfType("*entity.Move")).Return(nil).Once()
		mockMoveRepo.On("FinishGame", mock.Anything, mock.MatchedBy(func(g *entity.Game) bool {
			return g.Status == entity.StatusWon && g.Winner == entity.PlayerRed
		})).Return(nil).Once()

		// When: red drops into column 3
		result, err := manager.MakeMove(ctx, "game-1", entity.PlayerRed, 3)

		// Then: red has won
		require.NoError(t, err)
		assert.Equal(t, entity.PlayerRed, result.Game.Winner)
		assert.Equal(t, entity.StatusWon, result.Game.Status)
		mockMoveRepo.AssertExpectations(t)
	})

	t.Run("Engine rejections leave every store untouched", func(t *testing.T) {
		full := entity.NewGame("game-1", testNow)
		for range entity.Rows {
			var err error
			full, _, err = full.ApplyMove(full.Turn, 0, testNow)
			require.NoError(t, err)
		}

		finished := entity.NewGame("game-1", testNow)
		finished.Status = entity.StatusWon
		finished.Winner = entity.PlayerRed

		fresh := entity.NewGame("game-1", testNow)

		cases := []struct {
			name   string
			game   entity.Game
			player entity.Cell
			column int
			want   error
		}{
			{name: "column full", game: full, player: entity.PlayerRed, column: 0, want: apperror.ErrColumnFull},
			{name: "game finished", game: finished, player: entity.PlayerYellow, column: 1, want: apperror.ErrGameFinished},
			{name: "not your turn", game: fresh, player: entity.PlayerYellow, column: 1, want: apperror.ErrNotYourTurn},
			{name: "invalid column", game: fresh, player: entity.PlayerRed, column: 9, want: apperror.ErrInvalidColumn},
			{name: "invalid player", game: fresh, player: "blue", column: 1, want: apperror.ErrInvalidPlayer},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				game := tc.game
				mockGameRepo := &gameRepoMock{}
				mockMoveRepo := &moveRepoMock{}
				pub := &recordingPublisher{}
				manager := newTestManager(mockGameRepo, mockMoveRepo, pub)

				mockGameRepo.On("GetByID", ctx, "game-1").Return(&game, nil).Once()

				result, err := manager.MakeMove(ctx, "game-1", tc.player, tc.column)

				require.ErrorIs(t, err, tc.want)
				assert.Nil(t, result)
				assert.Equal(t, tc.game, game)
				assert.Empty(t, pub.published())
				mockGameRepo.AssertNotCalled(t, "CreateOrUpdate", mock.Anything, mock.Anything)
				mockMoveRepo.AssertNotCalled(t, "SaveMove", mock.Anything, mock.Anything)
			})
		}
	})

	t.Run("Unknown game", func(t *testing.T) {
		mockGameRepo := &gameRepoMock{}
		manager := newTestManager(mockGameRepo, &moveRepoMock{}, &recordingPublisher{})

		mockGameRepo.On("GetByID", ctx, "missing").Return(nil, apperror.ErrGameNotFound).Once()

		_, err := manager.MakeMove(ctx, "missing", entity.PlayerRed, 0)

		require.ErrorIs(t, err, apperror.ErrGameNotFound)
	})

	t.Run("Move log failure degrades but keeps the move", func(t *testing.T) {
		// Given: a move log that is down
		game := entity.NewGame("game-1", testNow)
		mockGameRepo := &gameRepoMock{}
		mockMoveRepo := &moveRepoMock{}
		pub := &recordingPublisher{}
		manager := newTestManager(mockGameRepo, mockMoveRepo, pub)

		mockGameRepo.On("GetByID", ctx, "game-1").Return(&game, nil).Once()
		mockGameRepo.On("CreateOrUpdate", ctx, mock.AnythingOfType("*entity.Game")).Return(nil).Once()
		mockMoveRepo.On("SaveMove", mock.Anything, mock.AnythingOfType("*entity.Move")).Return(errDBDown).Once()

		// When: red plays
		result, err := manager.MakeMove(ctx, "game-1", entity.PlayerRed, 2)

		// Then: the move stands with a warning and is still published
		require.NoError(t, err)
		assert.True(t, result.Degraded())
		assert.ErrorIs(t, result.Warning, apperror.ErrPersistenceUnavailable)
		assert.Equal(t, 5, result.Move.Row)
		assert.Equal(t, entity.PlayerYellow, result.Game.Turn)
		assert.Len(t, pub.published(), 1)
	})

	t.Run("Session store failure rejects the move", func(t *testing.T) {
		game := entity.NewGame("game-1", testNow)
		mockGameRepo := &gameRepoMock{}
		mockMoveRepo := &moveRepoMock{}
		pub := &recordingPublisher{}
		manager := newTestManager(mockGameRepo, mockMoveRepo, pub)

		mockGameRepo.On("GetByID", ctx, "game-1").Return(&game, nil).Once()
		mockGameRepo.On("CreateOrUpdate", ctx, mock.AnythingOfType("*entity.Game")).Return(errRedisDown).Once()

		_, err := manager.MakeMove(ctx, "game-1", entity.PlayerRed, 2)

		require.ErrorIs(t, err, errRedisDown)
		assert.Empty(t, pub.published())
		mockMoveRepo.AssertNotCalled(t, "SaveMove", mock.Anything, mock.Anything)
	})

	t.Run("Concurrent drops into one game are serialized", func(t *testing.T) {
		// Given: a fresh game in a shared store
		gameRepo := newMemoryGameRepo()
		mockMoveRepo := &moveRepoMock{}
		mockMoveRepo.On("SaveMove", mock.Anything, mock.AnythingOfType("*entity.Move")).Return(nil)
		pub := &recordingPublisher{}
		manager := newTestManager(gameRepo, mockMoveRepo, pub)

		game := entity.NewGame("game-1", testNow)
		require.NoError(t, gameRepo.CreateOrUpdate(ctx, &game))

		// When: many red drops into column 0 race each other
		const attempts = 20
		var wg sync.WaitGroup
		errs := make(chan error, attempts)
		for range attempts {
			wg.Add(1)
			go func() {
				defer wg.Done()

				_, err := manager.MakeMove(ctx, "game-1", entity.PlayerRed, 0)
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		// Then: exactly one is accepted, the rest see that it is yellow's turn
		accepted := 0
		for err := range errs {
			if err == nil {
				accepted++
				continue
			}
			require.ErrorIs(t, err, apperror.ErrNotYourTurn)
		}
		assert.Equal(t, 1, accepted)

		stored, err := manager.GetGame(ctx, "game-1")
		require.NoError(t, err)
		assert.Equal(t, 1, stored.MoveCount)
		assert.Equal(t, entity.PlayerRed, stored.Board[5][0])
		assert.Equal(t, entity.EmptyCell, stored.Board[4][0])
		assert.Len(t, pub.published(), 1)
		assert.Zero(t, manager.locks.size())
	})
}

func TestGameManager_ListMoves(t *testing.T) {
	ctx := context.Background()

	t.Run("Returns the logged moves", func(t *testing.T) {
		mockMoveRepo := &moveRepoMock{}
		manager := newTestManager(&gameRepoMock{}, mockMoveRepo, &recordingPublisher{})

		moves := []*entity.Move{{GameID: "game-1", Seq: 1, Row: 5, Column: 3, Player: entity.PlayerRed}}
		mockMoveRepo.On("ListMoves", ctx, "game-1").Return(moves, nil).Once()

		result, err := manager.ListMoves(ctx, "game-1")

		require.NoError(t, err)
		assert.Equal(t, moves, result)
	})

	t.Run("Returns error if the move log fails", func(t *testing.T) {
		mockMoveRepo := &moveRepoMock{}
		manager := newTestManager(&gameRepoMock{}, mockMoveRepo, &recordingPublisher{})

		mockMoveRepo.On("ListMoves", ctx, "game-1").Return(nil, errDBDown).Once()

		result, err := manager.ListMoves(ctx, "game-1")

		require.ErrorIs(t, err, errDBDown)
		assert.Nil(t, result)
	})
}
