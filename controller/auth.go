package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"wizard-game/dto"
	"wizard-game/utils"
)

// GuestToken issues a token for a freshly minted id. It is not bound to any
// room, so it cannot act at a table.
func (h *Handler) GuestToken(c *gin.Context) {
	id := uuid.New().String()
	token, err := utils.GenerateAccessToken(h.secret, id, "", h.tokenTTL)
	if err != nil {
		h.log.Error("sign token failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "internal", "could not sign token")
		return
	}
	ok(c, "token issued", dto.GuestResponse{UserID: id, Token: token})
}
