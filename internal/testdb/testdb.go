// Package testdb opens throwaway SQLite databases for package tests.
package testdb

import (
	"path/filepath"
	"testing"

	"github.com/Kariqs/amexan-store/initializers"
	"github.com/Kariqs/amexan-store/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Open returns a migrated database in t's temp dir. The pool holds one
// connection, so concurrent transactions run one after another.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := initializers.OpenDB("sqlite", filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, initializers.SyncDatabase(db))
	return db
}

func SeedProduct(t testing.TB, db *gorm.DB, name, price string, stock int) models.Product {
	t.Helper()

	product := models.Product{
		Name:          name,
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
	}
	require.NoError(t, db.Create(&product).Error)
	return product
}

func SeedCartItem(t testing.TB, db *gorm.DB, customerID, productID uint, quantity int) {
	t.Helper()

	cart := models.Cart{CustomerID: customerID}
	require.NoError(t, db.Where(models.Cart{CustomerID: customerID}).FirstOrCreate(&cart).Error)
	require.NoError(t, db.Create(&models.CartItem{CartID: cart.ID, ProductID: productID, Quantity: quantity}).Error)
}

func Stock(t testing.TB, db *gorm.DB, productID uint) int {
	t.Helper()

	var product models.Product
	require.NoError(t, db.Unscoped().Select("id", "stock_quantity").First(&product, productID).Error)
	return product.StockQuantity
}

func CartItemCount(t testing.TB, db *gorm.DB, customerID uint) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(&models.CartItem{}).
		Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Where("carts.customer_id = ?", customerID).
		Count(&count).Error)
	return count
}
