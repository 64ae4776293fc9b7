package models

import (
	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// Player is a user seated at a Bezique table. The player id is the user id,
// so a returning connection finds its seat again.
type Player struct {
	ID        uuid.UUID       `json:"id"`
	Seat      int             `json:"seat"`
	Connected bool            `json:"connected"`
	Conn      *websocket.Conn `json:"-"`
	User      *User           `json:"-"`
}

// NewPlayer returns an unseated, connected player for user.
func NewPlayer(user *User, conn *websocket.Conn) *Player {
	return &Player{
		ID:        user.ID,
		Seat:      -1,
		Connected: true,
		Conn:      conn,
		User:      user,
	}
}
