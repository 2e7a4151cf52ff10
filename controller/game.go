package controller

import (
	"github.com/gin-gonic/gin"

	"wizard-game/dto"
	"wizard-game/entities"
)

// GetHand returns the caller's own cards.
func (h *Handler) GetHand(c *gin.Context) {
	hand, err := h.rooms.Hand(c.Param("roomID"), userID(c))
	if err != nil {
		failWith(c, err)
		return
	}
	ok(c, "ok", gin.H{"hand": hand})
}

func (h *Handler) Bid(c *gin.Context) {
	var req dto.BidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.rooms.SubmitBid(c.Request.Context(), c.Param("roomID"), userID(c), *req.Value); err != nil {
		failWith(c, err)
		return
	}
	h.state(c, "bid accepted")
}

func (h *Handler) ChooseTrump(c *gin.Context) {
	var req dto.ChooseTrumpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	suit, err := entities.ParseSuit(req.Suit)
	if err != nil {
		badRequest(c, err)
		return
	}
	if err := h.rooms.ChooseTrump(c.Request.Context(), c.Param("roomID"), userID(c), suit); err != nil {
		failWith(c, err)
		return
	}
	h.state(c, "trump chosen")
}

func (h *Handler) PlayCard(c *gin.Context) {
	var req dto.PlayCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	card, err := entities.ParseCard(req.Card)
	if err != nil {
		badRequest(c, err)
		return
	}
	if err := h.rooms.PlayCard(c.Request.Context(), c.Param("roomID"), userID(c), card); err != nil {
		failWith(c, err)
		return
	}
	h.state(c, "card played")
}

// Forfeit makes the default move for the caller.
func (h *Handler) Forfeit(c *gin.Context) {
	action, err := h.rooms.ForfeitTurn(c.Request.Context(), c.Param("roomID"), userID(c))
	if err != nil {
		failWith(c, err)
		return
	}
	ok(c, "turn forfeited", gin.H{"action": action})
}

func (h *Handler) state(c *gin.Context, msg string) {
	snap, err := h.rooms.State(c.Param("roomID"))
	if err != nil {
		failWith(c, err)
		return
	}
	ok(c, msg, snap)
}
