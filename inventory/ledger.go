// Package inventory owns product stock counters. It is the only code that
// changes products.stock_quantity.
package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/Kariqs/amexan-store/models"
	"gorm.io/gorm"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrProductNotFound = errors.New("product not found")
)

type InsufficientStockError struct {
	ProductID uint
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock for %s (product %d): requested %d, available %d",
		e.Name, e.ProductID, e.Requested, e.Available)
}

type Ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// WithTx returns a ledger whose statements run on tx.
func (l *Ledger) WithTx(tx *gorm.DB) *Ledger {
	return &Ledger{db: tx}
}

// Reserve checks and decrements stock in a single conditional UPDATE, so
// two concurrent reservations cannot both see enough stock. The row stays
// locked until the surrounding transaction ends.
func (l *Ledger) Reserve(ctx context.Context, productID uint, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	result := l.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock_quantity >= ?", productID, quantity).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", quantity))
	if result.Error != nil {
		return fmt.Errorf("reserve product %d: %w", productID, result.Error)
	}
	if result.RowsAffected == 1 {
		return nil
	}

	var product models.Product
	if err := l.db.WithContext(ctx).Select("id", "name", "stock_quantity").First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("read stock of product %d: %w", productID, err)
	}
	return &InsufficientStockError{
		ProductID: productID,
		Name:      product.Name,
		Requested: quantity,
		Available: product.StockQuantity,
	}
}

// Release adds quantity back to a product's stock. It undoes a Reserve
// made earlier in the same checkout and also serves restocking.
func (l *Ledger) Release(ctx context.Context, productID uint, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	result := l.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", quantity))
	if result.Error != nil {
		return fmt.Errorf("release product %d: %w", productID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (l *Ledger) Available(ctx context.Context, productID uint) (int, error) {
	var product models.Product
	err := l.db.WithContext(ctx).Select("id", "stock_quantity").First(&product, productID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrProductNotFound
		}
		return 0, err
	}
	return product.StockQuantity, nil
}
