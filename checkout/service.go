// Package checkout turns a customer's cart into an order. One checkout is
// one transaction: cart snapshot, stock reservations, the order with its
// lines and delivery, and the cart clear either all commit or none do.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Kariqs/amexan-store/cart"
	"github.com/Kariqs/amexan-store/inventory"
	"github.com/Kariqs/amexan-store/models"
	"github.com/Kariqs/amexan-store/store"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Stage string

const (
	StageValidating Stage = "validating"
	StageReserving  Stage = "reserving"
	StageCommitting Stage = "committing"
	StageCleared    Stage = "cleared"
	StageFailed     Stage = "failed"
)

// Recorder receives one observation per checkout attempt.
type Recorder interface {
	ObserveCheckout(outcome string, elapsed time.Duration)
}

type Request struct {
	CustomerID uint
	Address    string
	// IdempotencyKey is optional. A repeated key for the same customer
	// returns the order created by the first attempt.
	IdempotencyKey string
}

type Result struct {
	OrderID  uint
	Total    decimal.Decimal
	Lines    []cart.Line
	Replayed bool
}

type Service struct {
	gateway  *store.Gateway
	carts    *cart.Store
	ledger   *inventory.Ledger
	logger   zerolog.Logger
	recorder Recorder
	now      func() time.Time
}

type Option func(*Service)

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithRecorder(recorder Recorder) Option {
	return func(s *Service) { s.recorder = recorder }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(gateway *store.Gateway, carts *cart.Store, ledger *inventory.Ledger, opts ...Option) *Service {
	s := &Service{
		gateway: gateway,
		carts:   carts,
		ledger:  ledger,
		logger:  zerolog.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Checkout places an order for everything in the customer's cart and
// returns its id. On error the cart and all stock levels are unchanged.
func (s *Service) Checkout(ctx context.Context, customerID uint, address string) (uint, error) {
	result, err := s.Place(ctx, Request{CustomerID: customerID, Address: address})
	if err != nil {
		return 0, err
	}
	return result.OrderID, nil
}

type attempt struct {
	stage Stage
}

func (s *Service) Place(ctx context.Context, req Request) (*Result, error) {
	started := s.now()
	att := &attempt{stage: StageValidating}

	result, err := s.place(ctx, req, att)
	s.observe(req, att, result, err, s.now().Sub(started))
	return result, err
}

func (s *Service) place(ctx context.Context, req Request, att *attempt) (*Result, error) {
	key := strings.TrimSpace(req.IdempotencyKey)
	if key != "" {
		existing, err := findByKey(ctx, s.gateway.DB(), req.CustomerID, key)
		if err != nil {
			return nil, &PersistenceError{Err: err}
		}
		if existing != nil {
			return replayed(existing), nil
		}
	}

	var result *Result
	err := s.gateway.WithinTx(ctx, func(ctx context.Context, tx *gorm.DB) error {
		r, err := s.run(ctx, tx, req, key, att)
		result = r
		return err
	})
	if err == nil {
		return result, nil
	}

	if key != "" && store.IsDuplicateKey(err) {
		// a concurrent attempt with the same key committed first
		existing, lookupErr := findByKey(ctx, s.gateway.DB(), req.CustomerID, key)
		if lookupErr == nil && existing != nil {
			return replayed(existing), nil
		}
	}
	return nil, classify(err)
}

func (s *Service) run(ctx context.Context, tx *gorm.DB, req Request, key string, att *attempt) (*Result, error) {
	carts := s.carts.WithTx(tx)
	ledger := s.ledger.WithTx(tx)

	lines, err := carts.Snapshot(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if key != "" {
		// the cart lock serialises attempts of one customer; an attempt
		// that waited on it may find its key already used
		existing, err := findByKey(ctx, tx, req.CustomerID, key)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return replayed(existing), nil
		}
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	address := strings.TrimSpace(req.Address)
	if address == "" {
		return nil, ErrMissingAddress
	}

	att.stage = StageReserving
	// ascending product id is the lock order shared by every checkout
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })
	if err := s.reserve(ctx, ledger, lines); err != nil {
		return nil, err
	}

	att.stage = StageCommitting
	total := cart.Total(lines)
	order := models.Order{
		CustomerID:  req.CustomerID,
		TotalAmount: total,
		Status:      models.OrderStatusPending,
	}
	if key != "" {
		order.IdempotencyKey = &key
	}
	db := tx.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(&order).Error; err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	orderLines := make([]models.OrderLine, 0, len(lines))
	for _, line := range lines {
		orderLines = append(orderLines, models.OrderLine{
			OrderID:     order.ID,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			UnitPrice:   line.UnitPrice,
			Quantity:    line.Quantity,
			Subtotal:    line.Subtotal(),
		})
	}
	if err := db.Create(&orderLines).Error; err != nil {
		return nil, fmt.Errorf("create order lines: %w", err)
	}

	delivery := models.Delivery{
		OrderID: order.ID,
		Address: address,
		Status:  models.DeliveryStatusPending,
	}
	if err := db.Create(&delivery).Error; err != nil {
		return nil, fmt.Errorf("create delivery: %w", err)
	}

	att.stage = StageCleared
	if err := carts.Clear(ctx, req.CustomerID); err != nil {
		return nil, err
	}

	return &Result{OrderID: order.ID, Total: total, Lines: lines}, nil
}

// reserve takes stock for every line in order. When a line cannot be
// reserved the lines already reserved are released before its error is
// returned.
func (s *Service) reserve(ctx context.Context, ledger *inventory.Ledger, lines []cart.Line) error {
	for i, line := range lines {
		err := ledger.Reserve(ctx, line.ProductID, line.Quantity)
		if err == nil {
			continue
		}
		if errors.Is(err, inventory.ErrProductNotFound) {
			err = &InsufficientStockError{
				ProductID: line.ProductID,
				Name:      line.ProductName,
				Requested: line.Quantity,
				Available: 0,
			}
		}
		for _, done := range lines[:i] {
			if relErr := ledger.Release(ctx, done.ProductID, done.Quantity); relErr != nil {
				return fmt.Errorf("release product %d after failed reservation: %w", done.ProductID, relErr)
			}
		}
		return err
	}
	return nil
}

func findByKey(ctx context.Context, db *gorm.DB, customerID uint, key string) (*models.Order, error) {
	var order models.Order
	err := db.WithContext(ctx).
		Where("customer_id = ? AND idempotency_key = ?", customerID, key).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find order by idempotency key: %w", err)
	}
	return &order, nil
}

func replayed(order *models.Order) *Result {
	return &Result{OrderID: order.ID, Total: order.TotalAmount, Replayed: true}
}

func (s *Service) observe(req Request, att *attempt, result *Result, err error, elapsed time.Duration) {
	outcome := "ok"
	switch {
	case err != nil:
		outcome = Kind(err)
	case result.Replayed:
		outcome = "replayed"
	}
	if s.recorder != nil {
		s.recorder.ObserveCheckout(outcome, elapsed)
	}

	var ev *zerolog.Event
	switch outcome {
	case "ok", "replayed":
		ev = s.logger.Info().Uint("order_id", result.OrderID).Str("stage", string(att.stage))
	case KindPersistenceFailure:
		ev = s.logger.Error().Err(err).Str("stage", string(StageFailed)).Str("failed_at", string(att.stage))
	default:
		ev = s.logger.Warn().Err(err).Str("stage", string(StageFailed)).Str("failed_at", string(att.stage))
	}
	ev.Uint("customer_id", req.CustomerID).
		Str("outcome", outcome).
		Dur("duration", elapsed).
		Msg("checkout")
}
