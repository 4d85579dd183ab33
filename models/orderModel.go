package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusConfirmed OrderStatus = "Confirmed"
	OrderStatusShipped   OrderStatus = "Shipped"
	OrderStatusCompleted OrderStatus = "Completed"
)

type DeliveryStatus string

const (
	DeliveryStatusPending   DeliveryStatus = "Pending"
	DeliveryStatusInTransit DeliveryStatus = "InTransit"
	DeliveryStatusDelivered DeliveryStatus = "Delivered"
)

type Order struct {
	gorm.Model
	CustomerID     uint            `json:"customerId" gorm:"not null;index;uniqueIndex:idx_orders_customer_idempotency"`
	IdempotencyKey *string         `json:"-" gorm:"size:128;uniqueIndex:idx_orders_customer_idempotency"`
	TotalAmount    decimal.Decimal `json:"totalAmount" gorm:"type:decimal(12,2);not null"`
	Status         OrderStatus     `json:"status" gorm:"size:32;not null;default:'Pending'"`
	Lines          []OrderLine     `json:"lines" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Delivery       *Delivery       `json:"delivery,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// OrderLine is written once at checkout and never updated.
// Subtotal is UnitPrice * Quantity at the time of purchase.
type OrderLine struct {
	ID          uint            `json:"id" gorm:"primarykey"`
	OrderID     uint            `json:"orderId" gorm:"not null;index"`
	ProductID   uint            `json:"productId" gorm:"not null;index"`
	ProductName string          `json:"productName"`
	UnitPrice   decimal.Decimal `json:"unitPrice" gorm:"type:decimal(12,2);not null"`
	Quantity    int             `json:"quantity" gorm:"not null"`
	Subtotal    decimal.Decimal `json:"subtotal" gorm:"type:decimal(12,2);not null"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type Delivery struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	OrderID   uint           `json:"orderId" gorm:"not null;uniqueIndex"`
	Address   string         `json:"address" gorm:"not null"`
	Status    DeliveryStatus `json:"deliveryStatus" gorm:"size:32;not null;default:'Pending'"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}
