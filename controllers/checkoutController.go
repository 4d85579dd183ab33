package controllers

import (
	"errors"
	"net/http"

	"github.com/Kariqs/amexan-store/checkout"
	"github.com/Kariqs/amexan-store/middlewares"
	"github.com/gin-gonic/gin"
)

const IdempotencyKeyHeader = "Idempotency-Key"

type CheckoutController struct {
	Checkout *checkout.Service
}

type checkoutRequest struct {
	Address string `json:"address"`
}

func (c *CheckoutController) PlaceOrder(ctx *gin.Context) {
	customerID, ok := middlewares.CustomerID(ctx)
	if !ok {
		sendErrorResponse(ctx, http.StatusUnauthorized, "Login required")
		return
	}

	var req checkoutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	result, err := c.Checkout.Place(ctx.Request.Context(), checkout.Request{
		CustomerID:     customerID,
		Address:        req.Address,
		IdempotencyKey: ctx.GetHeader(IdempotencyKeyHeader),
	})
	if err != nil {
		sendCheckoutError(ctx, err)
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	sendJSONResponse(ctx, status, gin.H{
		"message":  "Order placed successfully.",
		"orderId":  result.OrderID,
		"total":    result.Total,
		"replayed": result.Replayed,
	})
}

func sendCheckoutError(ctx *gin.Context, err error) {
	kind := checkout.Kind(err)
	switch kind {
	case checkout.KindEmptyCart:
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "Your cart is empty.", "error": kind})
	case checkout.KindMissingAddress:
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"message": "A delivery address is required.", "error": kind})
	case checkout.KindInsufficientStock:
		var stockErr *checkout.InsufficientStockError
		errors.As(err, &stockErr)
		ctx.JSON(http.StatusConflict, gin.H{
			"message":   "Not enough stock for " + stockErr.Name,
			"error":     kind,
			"productId": stockErr.ProductID,
			"requested": stockErr.Requested,
			"available": stockErr.Available,
		})
	default:
		ctx.JSON(http.StatusServiceUnavailable, gin.H{
			"message":   "Checkout could not be completed. Please try again.",
			"error":     kind,
			"retryable": true,
		})
	}
}
