package controllers

import (
	"errors"
	"net/http"

	"github.com/Kariqs/amexan-store/initializers"
	"github.com/Kariqs/amexan-store/middlewares"
	"github.com/Kariqs/amexan-store/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type OrderController struct {
	DB *gorm.DB
}

func (c *OrderController) GetCustomerOrders(ctx *gin.Context) {
	customerID, ok := middlewares.CustomerID(ctx)
	if !ok {
		sendErrorResponse(ctx, http.StatusUnauthorized, "Login required")
		return
	}

	sortOrder := ctx.DefaultQuery("sort", "desc")
	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	var orders []models.Order
	result := c.DB.WithContext(ctx.Request.Context()).
		Preload("Lines").
		Preload("Delivery").
		Where("customer_id = ?", customerID).
		Order("created_at " + sortOrder).
		Find(&orders)
	if result.Error != nil {
		initializers.Logger.Error().Err(result.Error).Uint("customer_id", customerID).Msg("list orders")
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch orders.")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"orders": orders})
}

func (c *OrderController) GetOrderById(ctx *gin.Context) {
	customerID, ok := middlewares.CustomerID(ctx)
	if !ok {
		sendErrorResponse(ctx, http.StatusUnauthorized, "Login required")
		return
	}
	orderID, ok := parseIDParam(ctx, "orderId")
	if !ok {
		sendErrorResponse(ctx, http.StatusBadRequest, "Failed to parse orderId")
		return
	}

	var order models.Order
	err := c.DB.WithContext(ctx.Request.Context()).
		Preload("Lines").
		Preload("Delivery").
		Where("id = ? AND customer_id = ?", orderID, customerID).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		sendErrorResponse(ctx, http.StatusNotFound, "Order not found")
		return
	}
	if err != nil {
		initializers.Logger.Error().Err(err).Uint("order_id", orderID).Msg("get order")
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch order.")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"order": order})
}
