package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wizard-game/engine"
	"wizard-game/middleware"
	"wizard-game/service"
)

// Handler serves the HTTP side of the game server.
type Handler struct {
	rooms    *service.Manager
	secret   []byte
	tokenTTL time.Duration
	log      *zap.Logger
}

func NewHandler(rooms *service.Manager, secret []byte, tokenTTL time.Duration, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{rooms: rooms, secret: secret, tokenTTL: tokenTTL, log: log}
}

func ok(c *gin.Context, msg string, data any) {
	body := gin.H{
		"status_code": http.StatusOK,
		"msg":         msg,
	}
	if data != nil {
		body["data"] = data
	}
	c.JSON(http.StatusOK, body)
}

func fail(c *gin.Context, status int, code, msg string) {
	c.JSON(status, gin.H{
		"status_code": status,
		"code":        code,
		"msg":         msg,
	})
}

func badRequest(c *gin.Context, err error) {
	fail(c, http.StatusBadRequest, "bad_request", err.Error())
}

// failWith maps a rejection to its HTTP status.
func failWith(c *gin.Context, err error) {
	fail(c, statusFor(err), service.ErrorCode(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrRoomNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrUnknownPlayer):
		return http.StatusForbidden
	case errors.Is(err, engine.ErrInvalidRoster):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrInvalidBid),
		errors.Is(err, engine.ErrBidRuleViolation),
		errors.Is(err, engine.ErrIllegalCard),
		errors.Is(err, engine.ErrInvalidTrump):
		return http.StatusUnprocessableEntity
	case errors.Is(err, engine.ErrWrongPhase),
		errors.Is(err, engine.ErrNotPlayersTurn),
		errors.Is(err, engine.ErrSessionClosed):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func userID(c *gin.Context) string {
	return c.GetString(middleware.UserIDKey)
}
