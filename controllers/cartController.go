package controllers

import (
	"errors"
	"net/http"

	"github.com/Kariqs/amexan-store/cart"
	"github.com/Kariqs/amexan-store/initializers"
	"github.com/Kariqs/amexan-store/middlewares"
	"github.com/gin-gonic/gin"
)

type CartController struct {
	Carts *cart.Store
}

type addCartItemRequest struct {
	ProductID uint `json:"productId" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

func (c *CartController) AddCartItem(ctx *gin.Context) {
	customerID, ok := middlewares.CustomerID(ctx)
	if !ok {
		sendErrorResponse(ctx, http.StatusUnauthorized, "Login required")
		return
	}

	var req addCartItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid input", err)
		return
	}

	err := c.Carts.AddItem(ctx.Request.Context(), customerID, req.ProductID, req.Quantity)
	switch {
	case errors.Is(err, cart.ErrInvalidQuantity):
		sendErrorResponse(ctx, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, cart.ErrProductNotFound):
		sendErrorResponse(ctx, http.StatusNotFound, "Product not found")
		return
	case err != nil:
		initializers.Logger.Error().Err(err).Uint("customer_id", customerID).Msg("add cart item")
		sendErrorResponse(ctx, http.StatusInternalServerError, "Unable to update cart")
		return
	}

	sendJSONResponse(ctx, http.StatusCreated, gin.H{
		"message":   "Item added to cart",
		"productId": req.ProductID,
	})
}

func (c *CartController) GetCart(ctx *gin.Context) {
	customerID, ok := middlewares.CustomerID(ctx)
	if !ok {
		sendErrorResponse(ctx, http.StatusUnauthorized, "Login required")
		return
	}

	lines, err := c.Carts.Snapshot(ctx.Request.Context(), customerID)
	if err != nil {
		initializers.Logger.Error().Err(err).Uint("customer_id", customerID).Msg("read cart")
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch cart")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"items": lines,
		"total": cart.Total(lines),
	})
}
