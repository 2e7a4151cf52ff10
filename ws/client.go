package ws

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/gorilla/websocket"

	"wizard-game/dto"
)

// sendBuffer is how many messages may wait for a slow connection before it
// is dropped.
const sendBuffer = 32

var errSlowClient = errors.New("client send buffer full")

// client is one open connection. Only its writer goroutine touches the
// network; everyone else queues on out.
type client struct {
	dto.PlayerConn

	mu     sync.Mutex
	out    chan []byte
	closed bool
}

func newClient(playerID string, conn dto.ConnInterface) *client {
	c := &client{
		PlayerConn: dto.PlayerConn{PlayerID: playerID, Conn: conn},
		out:        make(chan []byte, sendBuffer),
	}
	go c.writePump()
	return c
}

func (c *client) writePump() {
	for msg := range c.out {
		if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			c.drop()
			break
		}
	}
	// drain whatever is left after a failed write
	for range c.out {
	}
	c.Conn.Close()
}

// send queues v without blocking.
func (c *client) send(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errSlowClient
	}
	select {
	case c.out <- data:
		return nil
	default:
		return errSlowClient
	}
}

// shutdown stops accepting messages; the writer flushes the queue and then
// closes the connection.
func (c *client) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.out)
	}
}

// drop closes the connection at once, interrupting a stuck write.
func (c *client) drop() {
	c.shutdown()
	c.Conn.Close()
}
