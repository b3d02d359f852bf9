package cart

import (
	"context"

	"github.com/storelabs/storefront-service/internal/model"
)

// Repository rows are per-user and never contended across users, so none of
// these methods take row locks.
type Repository interface {
	// GetByUser returns the cart with its items and joined products, or nil
	// when the user has no cart yet.
	GetByUser(ctx context.Context, userID string) (*model.Cart, error)

	// UpsertCart creates the user's cart on first use.
	UpsertCart(ctx context.Context, userID string) (*model.Cart, error)

	GetItem(ctx context.Context, cartID, productID string) (*model.CartItem, error)
	UpsertItem(ctx context.Context, item *model.CartItem) error
	DeleteItem(ctx context.Context, cartID, productID string) error
}
