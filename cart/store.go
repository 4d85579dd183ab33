// Package cart owns customer carts and their lines.
package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/Kariqs/amexan-store/models"
	"github.com/Kariqs/amexan-store/store"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrProductNotFound = errors.New("product not found")
)

// Line is one cart row joined with its product as read at snapshot time.
type Line struct {
	ProductID      uint            `json:"productId"`
	ProductName    string          `json:"productName"`
	UnitPrice      decimal.Decimal `json:"unitPrice"`
	Quantity       int             `json:"quantity"`
	AvailableStock int             `json:"availableStock"`
}

func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func Total(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

type Store struct {
	db   *gorm.DB
	inTx bool
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// WithTx returns a store whose statements run on tx.
func (s *Store) WithTx(tx *gorm.DB) *Store {
	return &Store{db: tx, inTx: true}
}

// GetOrCreateCart returns the customer's cart, creating it on first use.
// Two callers racing to create the same cart both end up with the winner's row.
func (s *Store) GetOrCreateCart(ctx context.Context, customerID uint) (*models.Cart, error) {
	db := s.db.WithContext(ctx)

	var cart models.Cart
	err := db.Where("customer_id = ?", customerID).First(&cart).Error
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find cart: %w", err)
	}

	cart = models.Cart{CustomerID: customerID}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&cart).Error; err != nil && !store.IsDuplicateKey(err) {
		return nil, fmt.Errorf("create cart: %w", err)
	}
	if cart.ID != 0 {
		return &cart, nil
	}

	// lost the race; the conflicting insert created nothing
	if err := db.Where("customer_id = ?", customerID).First(&cart).Error; err != nil {
		return nil, fmt.Errorf("find cart: %w", err)
	}
	return &cart, nil
}

// AddItem merges quantity into the customer's existing line for the product,
// or inserts a new line.
func (s *Store) AddItem(ctx context.Context, customerID, productID uint, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if s.inTx {
		return s.addItem(ctx, customerID, productID, quantity)
	}
	return store.New(s.db).WithinTx(ctx, func(ctx context.Context, tx *gorm.DB) error {
		return s.WithTx(tx).addItem(ctx, customerID, productID, quantity)
	})
}

func (s *Store) addItem(ctx context.Context, customerID, productID uint, quantity int) error {
	db := s.db.WithContext(ctx)

	var product models.Product
	if err := db.Select("id").First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("find product: %w", err)
	}

	if _, err := s.GetOrCreateCart(ctx, customerID); err != nil {
		return err
	}
	cart, err := s.lockCart(ctx, customerID)
	if err != nil {
		return err
	}

	result := db.Model(&models.CartItem{}).
		Where("cart_id = ? AND product_id = ?", cart.ID, productID).
		Update("quantity", gorm.Expr("quantity + ?", quantity))
	if result.Error != nil {
		return fmt.Errorf("merge cart item: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	item := models.CartItem{CartID: cart.ID, ProductID: productID, Quantity: quantity}
	if err := db.Create(&item).Error; err != nil {
		return fmt.Errorf("create cart item: %w", err)
	}
	return nil
}

// lockCart reads the cart row FOR UPDATE. Checkout and add-to-cart both take
// this lock first, so a cart is never checked out while a line is merged.
func (s *Store) lockCart(ctx context.Context, customerID uint) (*models.Cart, error) {
	var cart models.Cart
	err := store.ForUpdate(s.db.WithContext(ctx)).
		Where("customer_id = ?", customerID).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// Snapshot returns the customer's cart lines ordered by product id. Called
// on a transaction-bound store it locks the cart row for the rest of the
// transaction. A customer without a cart has an empty snapshot. A line
// whose product was removed stays in the snapshot with no available stock.
func (s *Store) Snapshot(ctx context.Context, customerID uint) ([]Line, error) {
	cart, err := s.lockCart(ctx, customerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []Line{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lock cart: %w", err)
	}

	lines := []Line{}
	err = s.db.WithContext(ctx).
		Table("cart_items").
		Select("cart_items.product_id, products.name AS product_name, products.price AS unit_price, cart_items.quantity, CASE WHEN products.deleted_at IS NULL THEN products.stock_quantity ELSE 0 END AS available_stock").
		Joins("JOIN products ON products.id = cart_items.product_id").
		Where("cart_items.cart_id = ?", cart.ID).
		Order("cart_items.product_id ASC").
		Scan(&lines).Error
	if err != nil {
		return nil, fmt.Errorf("read cart lines: %w", err)
	}
	return lines, nil
}

// Clear removes every line from the customer's cart. The cart row itself
// is kept for the next purchase.
func (s *Store) Clear(ctx context.Context, customerID uint) error {
	err := s.db.WithContext(ctx).
		Where("cart_id IN (?)", s.db.Model(&models.Cart{}).Select("id").Where("customer_id = ?", customerID)).
		Delete(&models.CartItem{}).Error
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
