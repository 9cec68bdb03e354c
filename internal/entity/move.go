package entity

import "time"

type Move struct {
	ID        int64     `json:"id,omitempty"`
	GameID    string    `json:"game_id"`
	Seq       int       `json:"seq"`
	Row       int       `json:"row"`
	Column    int       `json:"col"`
	Player    Cell      `json:"player"`
	CreatedAt time.Time `json:"created_at"`
}
