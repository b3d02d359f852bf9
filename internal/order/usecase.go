package order

import (
	"context"

	"github.com/storelabs/storefront-service/internal/model"
	"github.com/storelabs/storefront-service/internal/order/dto"
)

type UseCase interface {
	Checkout(ctx context.Context, userID string, items []dto.CheckoutItem) (*model.Order, error)
	GetOrder(ctx context.Context, userID, orderID string) (*model.Order, error)
	ListOrders(ctx context.Context, userID string, page, limit int) ([]model.Order, int, error)
}
