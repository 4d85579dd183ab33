package models

import (
	"time"

	"gorm.io/gorm"
)

type Cart struct {
	gorm.Model
	CustomerID uint       `json:"customerId" gorm:"not null;uniqueIndex"`
	Items      []CartItem `json:"items" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
}

// CartItem has no soft delete: a cleared line must free the
// (cart, product) unique index for the next add.
type CartItem struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	CartID    uint      `json:"cartId" gorm:"not null;uniqueIndex:idx_cart_items_cart_product"`
	ProductID uint      `json:"productId" gorm:"not null;uniqueIndex:idx_cart_items_cart_product"`
	Quantity  int       `json:"quantity" gorm:"not null;check:chk_cart_items_quantity_positive,quantity > 0"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
