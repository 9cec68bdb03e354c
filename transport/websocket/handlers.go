package websocket

import (
	"context"
	"encoding/json"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/connect4-backend/internal/apperror"
	"github.com/rocketscienceinc/connect4-backend/internal/usecase"
)

func (that *Server) handleNewGame(ctx context.Context, msg *Message, conn *websocket.Conn) error {
	log := that.logger.With("method", "handleNewGame")

	result, err := that.gameUseCase.NewGame(ctx)
	if err != nil {
		log.Error("failed to create game", "error", err)
		return that.sendAppError(conn, msg.Action, err)
	}

	return that.sendMessage(conn, msg.Action, resultPayload(result))
}

func (that *Server) handleGameState(ctx context.Context, msg *Message, conn *websocket.Conn) error {
	payloadReq, ok, err := that.decodePayload(conn, msg)
	if !ok {
		return err
	}

	if payloadReq.GameID == "" {
		return that.sendErrorResponse(conn, msg.Action, "gameId is required", codeBadRequest)
	}

	game, err := that.gameUseCase.GetGame(ctx, payloadReq.GameID)
	if err != nil {
		return that.sendAppError(conn, msg.Action, err)
	}

	return that.sendMessage(conn, msg.Action, Payload{GameID: game.ID, Game: game})
}

func (that *Server) handleGameMove(ctx context.Context, msg *Message, conn *websocket.Conn) error {
	log := that.logger.With("method", "handleGameMove")

	payloadReq, ok, err := that.decodePayload(conn, msg)
	if !ok {
		return err
	}

	if payloadReq.GameID == "" || payloadReq.Column == nil {
		return that.sendErrorResponse(conn, msg.Action, "gameId and column are required", codeBadRequest)
	}

	log = log.With("gameID", payloadReq.GameID)

	result, err := that.gameUseCase.MakeMove(ctx, payloadReq.GameID, payloadReq.Player, *payloadReq.Column)
	if err != nil {
		log.Info("move rejected", "error", err)
		return that.sendAppError(conn, msg.Action, err)
	}

	return that.sendMessage(conn, msg.Action, resultPayload(result))
}

func (that *Server) handleGameMoves(ctx context.Context, msg *Message, conn *websocket.Conn) error {
	log := that.logger.With("method", "handleGameMoves")

	payloadReq, ok, err := that.decodePayload(conn, msg)
	if !ok {
		return err
	}

	if payloadReq.GameID == "" {
		return that.sendErrorResponse(conn, msg.Action, "gameId is required", codeBadRequest)
	}

	moves, err := that.gameUseCase.ListMoves(ctx, payloadReq.GameID)
	if err != nil {
		log.Error("failed to fetch moves", "gameID", payloadReq.GameID, "error", err)
		return that.sendErrorResponse(conn, msg.Action, "failed to fetch moves", apperror.CodeInternal)
	}

	return that.sendMessage(conn, msg.Action, Payload{GameID: payloadReq.GameID, Moves: moves})
}

// decodePayload reports false when the payload was rejected; err is then the result of sending the rejection.
func (that *Server) decodePayload(conn *websocket.Conn, msg *Message) (Payload, bool, error) {
	var payloadReq Payload

	if len(msg.Payload) == 0 {
		return payloadReq, false, that.sendErrorResponse(conn, msg.Action, "payload is required", codeBadRequest)
	}

	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return payloadReq, false, that.sendErrorResponse(conn, msg.Action, "invalid payload", codeBadRequest)
	}

	return payloadReq, true, nil
}

func (that *Server) sendAppError(conn *websocket.Conn, action string, err error) error {
	code := apperror.Code(err)

	switch code {
	case apperror.CodeUnavailable:
		return that.sendErrorResponse(conn, action, "game state is unavailable", code)
	case apperror.CodeInternal:
		return that.sendErrorResponse(conn, action, "internal error", code)
	case apperror.CodeGameNotFound:
		return that.sendErrorResponse(conn, action, "game not found", code)
	default:
		return that.sendErrorResponse(conn, action, err.Error(), code)
	}
}

func resultPayload(result *usecase.Result) Payload {
	payload := Payload{
		GameID:   result.Game.ID,
		Game:     result.Game,
		Move:     result.Move,
		Degraded: result.Degraded(),
	}

	if result.Warning != nil {
		payload.Warning = result.Warning.Error()
	}

	return payload
}
