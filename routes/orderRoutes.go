package routes

import (
	"github.com/Kariqs/amexan-store/controllers"
	"github.com/gin-gonic/gin"
)

func OrderRoutes(server *gin.Engine, requireAuth gin.HandlerFunc, checkout *controllers.CheckoutController, orders *controllers.OrderController) {
	server.POST("/checkout", requireAuth, checkout.PlaceOrder)
	server.GET("/orders", requireAuth, orders.GetCustomerOrders)
	server.GET("/order/:orderId", requireAuth, orders.GetOrderById)
}
