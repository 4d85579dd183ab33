package routes

import (
	"github.com/Kariqs/amexan-store/controllers"
	"github.com/gin-gonic/gin"
)

func CartRoutes(server *gin.Engine, requireAuth gin.HandlerFunc, cart *controllers.CartController) {
	group := server.Group("/cart", requireAuth)
	{
		group.POST("", cart.AddCartItem)
		group.GET("", cart.GetCart)
	}
}
