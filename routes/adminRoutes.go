package routes

import (
	"github.com/Kariqs/amexan-store/controllers"
	"github.com/Kariqs/amexan-store/middlewares"
	"github.com/gin-gonic/gin"
)

func AdminRoutes(server *gin.Engine, requireAuth gin.HandlerFunc, admin *controllers.AdminController) {
	group := server.Group("/admin", requireAuth, middlewares.RequireAdmin())
	{
		group.POST("/product/:productId/stock", admin.RestockProduct)
	}
}
