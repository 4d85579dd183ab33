package checkout

import (
	"errors"

	"github.com/Kariqs/amexan-store/inventory"
)

var (
	ErrEmptyCart      = errors.New("cart is empty")
	ErrMissingAddress = errors.New("delivery address is required")
)

// InsufficientStockError names the one cart line that could not be reserved.
type InsufficientStockError = inventory.InsufficientStockError

// PersistenceError means the checkout transaction did not commit: a
// conflict, a deadlock victim, a timeout or a lost connection. Nothing of
// the attempt survives, so the caller may retry it as a fresh checkout.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return "checkout could not be completed, please retry: " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func IsRetryable(err error) bool {
	var persistenceErr *PersistenceError
	return errors.As(err, &persistenceErr)
}

const (
	KindEmptyCart          = "empty_cart"
	KindMissingAddress     = "missing_address"
	KindInsufficientStock  = "insufficient_stock"
	KindPersistenceFailure = "persistence_failure"
)

// Kind maps an error returned by the service to its error kind. Anything
// outside the closed set counts as a persistence failure.
func Kind(err error) string {
	var stockErr *InsufficientStockError
	switch {
	case errors.Is(err, ErrEmptyCart):
		return KindEmptyCart
	case errors.Is(err, ErrMissingAddress):
		return KindMissingAddress
	case errors.As(err, &stockErr):
		return KindInsufficientStock
	default:
		return KindPersistenceFailure
	}
}

// classify keeps the business errors as they are and wraps everything else.
func classify(err error) error {
	if Kind(err) == KindPersistenceFailure && !IsRetryable(err) {
		return &PersistenceError{Err: err}
	}
	return err
}
