package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/connect4-backend/internal/config"
	"github.com/rocketscienceinc/connect4-backend/internal/publisher"
	"github.com/rocketscienceinc/connect4-backend/internal/repository"
	"github.com/rocketscienceinc/connect4-backend/internal/repository/storage"
	"github.com/rocketscienceinc/connect4-backend/internal/usecase"
	"github.com/rocketscienceinc/connect4-backend/transport/rest"
	"github.com/rocketscienceinc/connect4-backend/transport/websocket"
)

const (
	publishTimeout = 2 * time.Second
	connectTimeout = 10 * time.Second
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application until SIGINT or SIGTERM.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if conf.Redis.Host == "" || conf.Redis.Port == "" {
		return ErrAddrNotFound
	}

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	redisStorage, err := storage.NewRedisStorage(connectCtx, conf.Redis.GetRedisAddr(), conf.Redis.Password, conf.Redis.DB)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	sqlStorage, err := storage.NewSQLStorage(connectCtx, conf.Storage.Driver, conf.Storage.DSN)
	if err != nil {
		return fmt.Errorf("could not open move log storage: %w", err)
	}

	defer func() {
		if err = sqlStorage.Close(); err != nil {
			log.Error("could not close move log storage", "error", err)
		}
	}()

	if err = sqlStorage.Init(connectCtx); err != nil {
		return fmt.Errorf("could not init move log schema: %w", err)
	}

	gameRepo := repository.NewGameRepository(redisStorage.Connection, conf.Redis.GameTTL)
	moveRepo := repository.NewMoveRepository(sqlStorage)

	group, ctx := errgroup.WithContext(ctx)

	var events publisher.Enqueuer = publisher.Nop{}

	if conf.Publisher.Enabled {
		sink := publisher.NewRedisStream(redisStorage.Connection, conf.Publisher.Topic, conf.Publisher.MaxLen)
		queue := publisher.NewQueue(logger, sink, publisher.Options{
			QueueSize:       conf.Publisher.QueueSize,
			MaxRetries:      conf.Publisher.MaxRetries,
			InitialInterval: conf.Publisher.InitialInterval,
			PublishTimeout:  publishTimeout,
		})
		events = queue

		group.Go(func() error {
			return queue.Run(ctx)
		})
	}

	gameUseCase := usecase.NewGameManager(logger, gameRepo, moveRepo, events, conf.Storage.WriteTimeout)

	health := rest.NewHealthChecker(map[string]rest.Pinger{
		"redis":    redisStorage,
		"database": sqlStorage,
	}, conf.Publisher.Enabled)

	// run HTTP server
	group.Go(func() error {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.New(logger, gameUseCase, health).Start(ctx, conf.HTTPPort, conf.ShutdownTimeout); httpErr != nil {
			return fmt.Errorf("HTTP server error: %w", httpErr)
		}
		return nil
	})

	// run Websocket server
	group.Go(func() error {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		if wsErr := websocket.New(logger, gameUseCase).Start(ctx, conf.SocketPort, conf.ShutdownTimeout); wsErr != nil {
			return fmt.Errorf("WebSocket server error: %w", wsErr)
		}
		return nil
	})

	err = group.Wait()
	log.Info("Application stopped")

	return err
}
