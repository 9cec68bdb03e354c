package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/rocketscienceinc/connect4-backend/internal/entity"
	"github.com/rocketscienceinc/connect4-backend/internal/server"
	"github.com/rocketscienceinc/connect4-backend/internal/usecase"
	"github.com/rocketscienceinc/connect4-backend/pkg/handlers"
)

type gameUseCase interface {
	NewGame(ctx context.Context) (*usecase.Result, error)
	GetGame(ctx context.Context, id string) (*entity.Game, error)
	MakeMove(ctx context.Context, id string, player entity.Cell, column int) (*usecase.Result, error)
	ListMoves(ctx context.Context, id string) ([]*entity.Move, error)
}

type Server struct {
	logger *slog.Logger

	gameUseCase gameUseCase
	health      *HealthChecker

	router *mux.Router
}

func New(logger *slog.Logger, gameUseCase gameUseCase, health *HealthChecker) *Server {
	s := &Server{
		logger:      logger.With("component", "rest"),
		gameUseCase: gameUseCase,
		health:      health,
		router:      mux.NewRouter(),
	}

	s.routes()

	return s
}

func (that *Server) routes() {
	that.router.HandleFunc("/ping", handlers.PingHandler).Methods(http.MethodGet)

	api := that.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", that.handleHealth).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/game/new", that.handleNewGame).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/game/{id}", that.handleGetGame).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/game/{id}/moves", that.handleListMoves).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/move", that.handleMove).Methods(http.MethodPost, http.MethodOptions)

	api.Use(mux.CORSMethodMiddleware(api))
	api.Use(corsMiddleware)
	that.router.Use(that.loggingMiddleware)
}

func (that *Server) Handler() http.Handler {
	return that.router
}

// Start - starts HTTP server and shuts it down once ctx is canceled.
func (that *Server) Start(ctx context.Context, port string, shutdownTimeout time.Duration) error {
	return server.Serve(ctx, server.NewHTTPServer(port, that.router), shutdownTimeout)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (that *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		that.logger.Debug("request served", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
