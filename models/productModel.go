package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product rows are read by the catalog and cart snapshot. StockQuantity is
// only ever changed through the inventory ledger.
type Product struct {
	gorm.Model
	Name          string          `json:"name" binding:"required"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	StockQuantity int             `json:"stockQuantity" gorm:"not null;default:0;check:chk_products_stock_non_negative,stock_quantity >= 0"`
}
