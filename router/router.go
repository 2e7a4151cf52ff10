package router

import (
	"github.com/gin-gonic/gin"

	"wizard-game/controller"
	"wizard-game/middleware"
	"wizard-game/ws"
)

func InitRouter(r *gin.Engine, h *controller.Handler, hub *ws.Hub, secret []byte) {
	r.POST("/auth/guest", h.GuestToken)

	api := r.Group("/room")
	{
		api.POST("/create", h.CreateRoom)
		api.GET("/list", h.GetRoomList)
		api.GET("/:roomID", h.GetRoomInfo)
	}

	player := r.Group("/room/:roomID", middleware.AuthMiddleware(secret))
	{
		player.DELETE("", h.DeleteRoom)
		player.GET("/hand", h.GetHand)
		player.POST("/bid", h.Bid)
		player.POST("/trump", h.ChooseTrump)
		player.POST("/play", h.PlayCard)
		player.POST("/forfeit", h.Forfeit)
	}

	r.GET("/ws", hub.HandleWebSocket)
}
