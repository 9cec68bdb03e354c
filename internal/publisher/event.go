package publisher

import (
	"time"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/connect4-backend/internal/entity"
)

// Event is the notification published for every accepted move.
type Event struct {
	ID        string    `json:"id"`
	GameID    string    `json:"game_id"`
	Seq       int       `json:"seq"`
	Row       int       `json:"row"`
	Column    int       `json:"col"`
	Player    string    `json:"player"`
	Status    string    `json:"status"`
	Winner    string    `json:"winner,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewMoveEvent(game *entity.Game, move *entity.Move) Event {
	return Event{
		ID:        uuid.NewString(),
		GameID:    move.GameID,
		Seq:       move.Seq,
		Row:       move.Row,
		Column:    move.Column,
		Player:    string(move.Player),
		Status:    game.Status,
		Winner:    string(game.Winner),
		Timestamp: move.CreatedAt,
	}
}
