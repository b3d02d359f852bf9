// Package apperr defines the error taxonomy shared by all use cases.
// Handlers map these onto HTTP status codes; nothing below the handler
// layer knows about HTTP.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrInvalidName     = errors.New("name must not be empty")
	ErrInvalidPrice    = errors.New("price must be greater than zero")
	ErrConflict        = errors.New("version conflict")
	ErrSKUExists       = errors.New("sku already exists")
	ErrCategoryExists  = errors.New("category name already exists")
	ErrCategoryInUse   = errors.New("category still has products")
)

// InsufficientStockError reports which product could not cover the requested
// quantity so the client can adjust and retry.
type InsufficientStockError struct {
	ProductID string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s", e.ProductID)
}

// IsInsufficientStock reports whether err is an InsufficientStockError and
// returns the offending product id.
func IsInsufficientStock(err error) (string, bool) {
	var ise *InsufficientStockError
	if errors.As(err, &ise) {
		return ise.ProductID, true
	}
	return "", false
}

// TransientError wraps failures that are safe for the caller to retry:
// lock timeouts, connection drops. The use cases never retry internally to
// avoid duplicating side effects on ambiguous failures.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient store error: %v", e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
