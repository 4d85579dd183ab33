package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func GetHome(ctx *gin.Context) {
	message := `Welcome to Amexan Store API.

CART
- POST "/cart" - Add a product to your cart
- GET "/cart" - View your cart

CHECKOUT
- POST "/checkout" - Place an order for everything in your cart

ORDER
- GET "/orders" - List your orders
- GET "/order/:orderId" - Get one of your orders

ADMIN
- POST "/admin/product/:productId/stock" - Restock a product`

	ctx.JSON(http.StatusOK, gin.H{
		"message": message,
	})
}

func HealthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
			defer cancel()
			err = sqlDB.PingContext(pingCtx)
		}
		if err != nil {
			respondWithError(ctx, http.StatusServiceUnavailable, "Database unavailable", err)
			return
		}
		sendJSONResponse(ctx, http.StatusOK, gin.H{"status": "ok"})
	}
}
