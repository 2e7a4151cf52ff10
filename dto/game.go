package dto

import (
	"time"

	"github.com/gorilla/websocket"

	"wizard-game/engine"
	"wizard-game/entities"
)

type ConnInterface interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type RealConn struct {
	*websocket.Conn
}

// WriteWait bounds a single websocket write.
const WriteWait = 10 * time.Second

func (r *RealConn) WriteMessage(messageType int, data []byte) error {
	if err := r.Conn.SetWriteDeadline(time.Now().Add(WriteWait)); err != nil {
		return err
	}
	return r.Conn.WriteMessage(messageType, data)
}

func (r *RealConn) Close() error {
	return r.Conn.Close()
}

// PlayerConn is one open connection at a table.
type PlayerConn struct {
	PlayerID string
	Conn     ConnInterface
}

// Inbound table messages. Type selects the handler; the rest depends on it.
type BidMessage struct {
	Value int `json:"value"`
}

type ChooseTrumpMessage struct {
	Suit string `json:"suit"`
}

type PlayCardMessage struct {
	Card string `json:"card"`
}

// HTTP bodies for the same moves.
type BidRequest struct {
	Value *int `json:"value" binding:"required"`
}

type ChooseTrumpRequest struct {
	Suit string `json:"suit" binding:"required"`
}

type PlayCardRequest struct {
	Card string `json:"card" binding:"required"`
}

// Outbound table messages.
type StateMessage struct {
	Type  string          `json:"type"`
	State engine.Snapshot `json:"state"`
	Hand  []entities.Card `json:"hand"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ClosedMessage struct {
	Type   string `json:"type"`
	RoomID string `json:"roomID"`
}
