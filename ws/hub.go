package ws

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	"wizard-game/dto"
	"wizard-game/service"
	"wizard-game/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub fans table changes out to the connections at each table.
type Hub struct {
	rooms  *service.Manager
	secret []byte
	log    *zap.Logger

	mu    sync.Mutex
	conns map[string][]*client
}

func NewHub(rooms *service.Manager, secret []byte, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	h := &Hub{
		rooms:  rooms,
		secret: secret,
		log:    log,
		conns:  make(map[string][]*client),
	}
	rooms.OnChange(h.broadcast)
	return h
}

// stateFor builds playerID's view of the table: the public snapshot plus
// their own hand and nobody else's.
func (h *Hub) stateFor(roomID, playerID string) (dto.StateMessage, error) {
	snap, err := h.rooms.State(roomID)
	if err != nil {
		return dto.StateMessage{}, err
	}
	hand, err := h.rooms.Hand(roomID, playerID)
	if err != nil {
		return dto.StateMessage{}, err
	}
	return dto.StateMessage{Type: "state", State: snap, Hand: hand}, nil
}

// broadcast queues every connection at roomID its view of the table, or
// tells them the table is gone. Nothing here waits on the network; a
// connection whose queue is full is dropped.
func (h *Hub) broadcast(roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.conns[roomID]
	if len(clients) == 0 {
		return
	}
	if _, err := h.rooms.State(roomID); errors.Is(err, service.ErrRoomNotFound) {
		for _, c := range clients {
			_ = c.send(dto.ClosedMessage{Type: "closed", RoomID: roomID})
			c.shutdown()
		}
		delete(h.conns, roomID)
		return
	}

	alive := clients[:0]
	for _, c := range clients {
		msg, err := h.stateFor(roomID, c.PlayerID)
		if err == nil {
			err = c.send(msg)
		}
		if err != nil {
			h.log.Warn("broadcast failed, dropping connection",
				zap.String("room_id", roomID), zap.String("player_id", c.PlayerID), zap.Error(err))
			c.drop()
			continue
		}
		alive = append(alive, c)
	}
	h.conns[roomID] = alive
}

// join registers c and queues it the current state under the same lock, so
// it cannot miss a change that lands in between.
func (h *Hub) join(roomID string, c *client) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	msg, err := h.stateFor(roomID, c.PlayerID)
	if err != nil {
		return err
	}
	if err := c.send(msg); err != nil {
		return err
	}
	h.conns[roomID] = append(h.conns[roomID], c)
	return nil
}

func (h *Hub) leave(roomID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	list := h.conns[roomID]
	for i, other := range list {
		if other == c {
			h.conns[roomID] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(h.conns[roomID]) == 0 {
		delete(h.conns, roomID)
	}
}

// Connections counts the open connections at roomID.
func (h *Hub) Connections(roomID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns[roomID])
}

// HandleWebSocket serves GET /ws?roomID=&token=. Only players seated at the
// table may connect.
func (h *Hub) HandleWebSocket(c *gin.Context) {
	roomID := c.Query("roomID")
	claims, err := utils.ParseAccessToken(h.secret, c.Query("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"status_code": http.StatusUnauthorized, "msg": "invalid token"})
		return
	}
	if claims.RoomID != roomID {
		c.JSON(http.StatusForbidden, gin.H{"status_code": http.StatusForbidden, "msg": "token is not for this room"})
		return
	}
	playerID := claims.UserID
	snap, err := h.rooms.State(roomID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status_code": http.StatusNotFound, "msg": "room not found"})
		return
	}
	if !slices.Contains(snap.Players, playerID) {
		c.JSON(http.StatusForbidden, gin.H{"status_code": http.StatusForbidden, "msg": "not seated at this table"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	cl := newClient(playerID, &dto.RealConn{Conn: conn})
	defer cl.shutdown()
	if err := h.join(roomID, cl); err != nil {
		h.log.Warn("join failed", zap.String("room_id", roomID), zap.String("player_id", playerID), zap.Error(err))
		return
	}
	defer h.leave(roomID, cl)
	h.log.Info("player connected", zap.String("room_id", roomID), zap.String("player_id", playerID))

	h.listen(conn, roomID, cl)
	h.log.Info("player disconnected", zap.String("room_id", roomID), zap.String("player_id", playerID))
}

func (h *Hub) listen(conn *websocket.Conn, roomID string, cl *client) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		msgMap := make(map[string]interface{})
		if err := json.Unmarshal(raw, &msgMap); err != nil {
			_ = cl.send(dto.ErrorMessage{Type: "error", Code: "bad_message", Message: err.Error()})
			continue
		}
		msgType, _ := msgMap["type"].(string)
		handler, found := messageHandlers[msgType]
		if !found {
			_ = cl.send(dto.ErrorMessage{Type: "error", Code: "unknown_message", Message: "unknown message type " + msgType})
			continue
		}
		if err := handler(h, roomID, cl, msgMap); err != nil {
			_ = cl.send(dto.ErrorMessage{Type: "error", Code: errorCode(err), Message: err.Error()})
		}
	}
}
