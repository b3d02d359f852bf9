package cart

import (
	"context"

	"github.com/storelabs/storefront-service/internal/model"
)

type UseCase interface {
	GetCart(ctx context.Context, userID string) (*model.Cart, error)
	AddToCart(ctx context.Context, userID, productID string, qty int64) (*model.Cart, error)
	// UpdateItem sets the stored quantity; zero deletes the row so a stored
	// CartItem always has quantity >= 1.
	UpdateItem(ctx context.Context, userID, productID string, qty int64) error
	RemoveItem(ctx context.Context, userID, productID string) error
}
