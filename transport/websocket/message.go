package websocket

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/connect4-backend/internal/entity"
)

const (
	actionGameNew   = "game:new"
	actionGameState = "game:state"
	actionGameMove  = "game:move"
	actionGameMoves = "game:moves"
)

const (
	codeInvalidMessage = "invalid_message"
	codeUnknownAction  = "unknown_action"
	codeBadRequest     = "bad_request"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Payload is read from requests and written in replies; each action uses a subset of it.
type Payload struct {
	GameID string         `json:"gameId,omitempty"`
	Player entity.Cell    `json:"player,omitempty"`
	Column *int           `json:"column,omitempty"`
	Game   *entity.Game   `json:"game,omitempty"`
	Move   *entity.Move   `json:"move,omitempty"`
	Moves  []*entity.Move `json:"moves,omitempty"`

	Degraded bool   `json:"degraded,omitempty"`
	Warning  string `json:"warning,omitempty"`
	Error    string `json:"error,omitempty"`
	Code     string `json:"code,omitempty"`
}

func (that *Server) sendMessage(conn *websocket.Conn, action string, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	response, err := json.Marshal(Message{
		Action:  action,
		Payload: body,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	if err = conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	if err = conn.WriteMessage(websocket.TextMessage, response); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *Server) sendErrorResponse(conn *websocket.Conn, action, errorMsg, code string) error {
	if err := that.sendMessage(conn, action, Payload{Error: errorMsg, Code: code}); err != nil {
		return fmt.Errorf("failed to send error response: %w", err)
	}

	return nil
}
