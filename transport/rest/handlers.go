package rest

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rocketscienceinc/connect4-backend/internal/entity"
	"github.com/rocketscienceinc/connect4-backend/internal/usecase"
)

type MoveRequest struct {
	GameID string      `json:"gameId"`
	Column *int        `json:"column"`
	Col    *int        `json:"col,omitempty"`
	Player entity.Cell `json:"player"`
}

type NewGameResponse struct {
	GameID   string       `json:"gameId"`
	Game     *entity.Game `json:"game"`
	Degraded bool         `json:"degraded,omitempty"`
	Warning  string       `json:"warning,omitempty"`
}

type MoveResponse struct {
	MoveID   int64        `json:"moveId,omitempty"`
	Row      int          `json:"row"`
	Column   int          `json:"column"`
	Player   entity.Cell  `json:"player"`
	Winner   entity.Cell  `json:"winner,omitempty"`
	Status   string       `json:"status"`
	Game     *entity.Game `json:"game"`
	Degraded bool         `json:"degraded,omitempty"`
	Warning  string       `json:"warning,omitempty"`
}

func warningOf(result *usecase.Result) string {
	if result.Warning == nil {
		return ""
	}
	return result.Warning.Error()
}

func (that *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleNewGame")

	result, err := that.gameUseCase.NewGame(r.Context())
	if err != nil {
		log.Error("failed to create game", "error", err)
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, NewGameResponse{
		GameID:   result.Game.ID,
		Game:     result.Game,
		Degraded: result.Degraded(),
		Warning:  warningOf(result),
	})
}

func (that *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.gameUseCase.GetGame(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, game)
}

func (that *Server) handleListMoves(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleListMoves")

	moves, err := that.gameUseCase.ListMoves(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		log.Error("failed to fetch moves", "error", err)
		respondWithError(w, http.StatusInternalServerError, "failed to fetch moves", "")
		return
	}

	respondWithJSON(w, http.StatusOK, moves)
}

func (that *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleMove")

	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload", "")
		return
	}

	column := req.Column
	if column == nil {
		column = req.Col
	}

	if req.GameID == "" || column == nil {
		respondWithError(w, http.StatusBadRequest, "gameId and column are required", "")
		return
	}

	result, err := that.gameUseCase.MakeMove(r.Context(), req.GameID, req.Player, *column)
	if err != nil {
		log.Info("move rejected", "gameID", req.GameID, "error", err)
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, MoveResponse{
		MoveID:   result.Move.ID,
		Row:      result.Move.Row,
		Column:   result.Move.Column,
		Player:   result.Move.Player,
		Winner:   result.Game.Winner,
		Status:   result.Game.Status,
		Game:     result.Game,
		Degraded: result.Degraded(),
		Warning:  warningOf(result),
	})
}
