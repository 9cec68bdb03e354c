package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/connect4-backend/internal/entity"
	"github.com/rocketscienceinc/connect4-backend/internal/server"
	"github.com/rocketscienceinc/connect4-backend/internal/usecase"
)

const (
	maxMessageSize = 4096
	writeWait      = 5 * time.Second
)

type gameUseCase interface {
	NewGame(ctx context.Context) (*usecase.Result, error)
	GetGame(ctx context.Context, id string) (*entity.Game, error)
	MakeMove(ctx context.Context, id string, player entity.Cell, column int) (*usecase.Result, error)
	ListMoves(ctx context.Context, id string) ([]*entity.Move, error)
}

type handlerFunc func(ctx context.Context, message *Message, conn *websocket.Conn) error

type Server struct {
	logger      *slog.Logger
	gameUseCase gameUseCase

	upgrader websocket.Upgrader
	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, gameUseCase gameUseCase) *Server {
	s := &Server{
		logger:      logger.With("component", "websocket"),
		gameUseCase: gameUseCase,

		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		handlers: make(map[string]handlerFunc),
	}

	s.handlers[actionGameNew] = s.handleNewGame
	s.handlers[actionGameState] = s.handleGameState
	s.handlers[actionGameMove] = s.handleGameMove
	s.handlers[actionGameMoves] = s.handleGameMoves

	return s
}

func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", that.upgradeToWebSocket)

	return mux
}

// Start - starts WebSocket server and shuts it down once ctx is canceled.
func (that *Server) Start(ctx context.Context, port string, shutdownTimeout time.Duration) error {
	srv := server.NewHTTPServer(port, that.Handler())
	srv.BaseContext = func(_ net.Listener) context.Context { return ctx }

	return server.Serve(ctx, srv, shutdownTimeout)
}

// upgradeToWebSocket - upgrades the connection to WebSocket.
func (that *Server) upgradeToWebSocket(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	defer conn.Close()

	// hijacked connections are not closed by http.Server.Shutdown
	stop := context.AfterFunc(r.Context(), func() { _ = conn.Close() })
	defer stop()

	log.Debug("WebSocket connection established", "remote", r.RemoteAddr)

	if err = that.handleMessages(r.Context(), conn); err != nil {
		log.Error("error handling messages", "error", err)
	}
}

// handleMessages - processes messages from the client until it disconnects.
func (that *Server) handleMessages(ctx context.Context, conn *websocket.Conn) error {
	log := that.logger.With("method", "handleMessages")

	conn.SetReadLimit(maxMessageSize)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return fmt.Errorf("failed to read message: %w", err)
			}
			return nil
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Info("failed to unmarshal message", "error", err)
			if err = that.sendErrorResponse(conn, "", "invalid message", codeInvalidMessage); err != nil {
				return err
			}
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Info("unknown action", "action", message.Action)
			if err = that.sendErrorResponse(conn, message.Action, "unknown action", codeUnknownAction); err != nil {
				return err
			}
			continue
		}

		if err = handler(ctx, &message, conn); err != nil {
			return err
		}
	}
}
