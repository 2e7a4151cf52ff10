package dto

import (
	"time"

	"wizard-game/entities"
)

type RoomInfo struct {
	RoomID    string              `json:"roomID"`
	Players   []string            `json:"players"`
	Round     int                 `json:"round"`
	MaxRounds int                 `json:"maxRounds"`
	Phase     string              `json:"phase"`
	Status    entities.RoomStatus `json:"status"`
	CreatedAt time.Time           `json:"createdAt"`
}

type CreateRoomRequest struct {
	Players []string `json:"players" binding:"required,min=3,max=6"`
	Seed    *uint64  `json:"seed"`
}

// CreateRoomResponse carries one room-bound token per seated player.
type CreateRoomResponse struct {
	RoomID string            `json:"roomID"`
	Tokens map[string]string `json:"tokens"`
}

type GetRoomList struct {
	Rooms []RoomInfo `json:"rooms"`
}

type GuestResponse struct {
	UserID string `json:"userID"`
	Token  string `json:"token"`
}
