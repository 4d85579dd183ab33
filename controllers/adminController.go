package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/Kariqs/amexan-store/initializers"
	"github.com/Kariqs/amexan-store/inventory"
	"github.com/Kariqs/amexan-store/store"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AdminController struct {
	Gateway *store.Gateway
	Ledger  *inventory.Ledger
}

type restockRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

func (c *AdminController) RestockProduct(ctx *gin.Context) {
	productID, ok := parseIDParam(ctx, "productId")
	if !ok {
		sendErrorResponse(ctx, http.StatusBadRequest, "Failed to parse productId")
		return
	}

	var req restockRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var stock int
	err := c.Gateway.WithinTx(ctx.Request.Context(), func(txCtx context.Context, tx *gorm.DB) error {
		ledger := c.Ledger.WithTx(tx)
		if err := ledger.Release(txCtx, productID, req.Quantity); err != nil {
			return err
		}
		var err error
		stock, err = ledger.Available(txCtx, productID)
		return err
	})
	if errors.Is(err, inventory.ErrProductNotFound) {
		sendErrorResponse(ctx, http.StatusNotFound, "Product not found")
		return
	}
	if err != nil {
		initializers.Logger.Error().Err(err).Uint("product_id", productID).Msg("restock product")
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to restock product")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"productId":     productID,
		"stockQuantity": stock,
	})
}
