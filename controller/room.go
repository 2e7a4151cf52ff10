package controller

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	"wizard-game/dto"
	"wizard-game/engine"
	"wizard-game/utils"
)

func (h *Handler) CreateRoom(c *gin.Context) {
	var req dto.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	roomID, err := h.rooms.CreateRoom(c.Request.Context(), req.Players, req.Seed)
	if err != nil {
		failWith(c, err)
		return
	}
	tokens := make(map[string]string, len(req.Players))
	for _, p := range req.Players {
		token, err := utils.GenerateAccessToken(h.secret, p, roomID, h.tokenTTL)
		if err != nil {
			h.log.Error("sign token failed", zap.String("roomID", roomID), zap.Error(err))
			fail(c, http.StatusInternalServerError, "internal", "could not sign token")
			return
		}
		tokens[p] = token
	}
	ok(c, "room created", dto.CreateRoomResponse{RoomID: roomID, Tokens: tokens})
}

func (h *Handler) GetRoomList(c *gin.Context) {
	ok(c, "ok", dto.GetRoomList{Rooms: h.rooms.ListRooms()})
}

// GetRoomInfo returns the public snapshot; hands are never part of it.
func (h *Handler) GetRoomInfo(c *gin.Context) {
	snap, err := h.rooms.State(c.Param("roomID"))
	if err != nil {
		failWith(c, err)
		return
	}
	ok(c, "ok", snap)
}

// DeleteRoom closes the table. Only a seated player may do it.
func (h *Handler) DeleteRoom(c *gin.Context) {
	roomID := c.Param("roomID")
	snap, err := h.rooms.State(roomID)
	if err != nil {
		failWith(c, err)
		return
	}
	if !slices.Contains(snap.Players, userID(c)) {
		failWith(c, fmt.Errorf("%w: %s", engine.ErrUnknownPlayer, userID(c)))
		return
	}
	if err := h.rooms.DeleteRoom(c.Request.Context(), roomID); err != nil {
		failWith(c, err)
		return
	}
	ok(c, "room deleted", nil)
}
