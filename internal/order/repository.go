package order

import (
	"context"

	"github.com/storelabs/storefront-service/internal/model"
)

// Line is one requested (product, quantity) pair, already validated and
// de-duplicated by the use case.
type Line struct {
	ProductID string
	Quantity  int64
}

type Repository interface {
	// PlaceOrder runs the whole checkout as one atomic unit: locks every
	// product row in ascending product-id order, verifies stock, computes
	// the total from the locked prices, creates the order and its items,
	// decrements stock with a SALE ledger row per line, and purges the
	// user's cart. Either everything commits or nothing is visible.
	PlaceOrder(ctx context.Context, userID string, lines []Line) (*model.Order, error)

	FindByID(ctx context.Context, id string) (*model.Order, error)
	FindByUser(ctx context.Context, userID string, page, limit int) ([]model.Order, int, error)
}
