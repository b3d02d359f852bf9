package usecase

import (
	"context"

	"github.com/storelabs/storefront-service/internal/apperr"
	"github.com/storelabs/storefront-service/internal/model"
	"github.com/storelabs/storefront-service/internal/order"
	"github.com/storelabs/storefront-service/internal/order/dto"
	"github.com/storelabs/storefront-service/internal/pkg/broker"
	"github.com/storelabs/storefront-service/internal/pkg/cache"
	"github.com/storelabs/storefront-service/internal/pkg/logger"
	"go.uber.org/zap"
)

type orderUseCase struct {
	repo     order.Repository
	cache    cache.Store
	producer *broker.Producer
	logger   logger.Logger
}

func NewOrderUseCase(repo order.Repository, store cache.Store, producer *broker.Producer, log logger.Logger) order.UseCase {
	return &orderUseCase{
		repo:     repo,
		cache:    store,
		producer: producer,
		logger:   log,
	}
}

func (uc *orderUseCase) Checkout(ctx context.Context, userID string, items []dto.CheckoutItem) (*model.Order, error) {
	if len(items) == 0 {
		return nil, apperr.ErrEmptyCart
	}

	// Merge duplicate lines so each product row is locked exactly once.
	merged := make(map[string]int64, len(items))
	lines := make([]order.Line, 0, len(items))
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, apperr.ErrInvalidQuantity
		}
		if _, seen := merged[item.ProductID]; !seen {
			lines = append(lines, order.Line{ProductID: item.ProductID})
		}
		merged[item.ProductID] += item.Quantity
	}
	for i := range lines {
		lines[i].Quantity = merged[lines[i].ProductID]
	}

	o, err := uc.repo.PlaceOrder(ctx, userID, lines)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("checkout committed",
		zap.String("order_id", o.ID),
		zap.String("user_id", userID),
		zap.Int("lines", len(lines)),
		zap.String("total", o.Total.String()))

	// Checkout is the highest-frequency mutation, so invalidation is
	// targeted: exact product keys plus the listing key space.
	keys := make([]string, 0, len(lines))
	for _, line := range lines {
		keys = append(keys, "product:"+line.ProductID)
	}
	if err := uc.cache.Del(ctx, keys...); err != nil {
		uc.logger.Warn("checkout cache invalidation failed", zap.Error(err), zap.Strings("keys", keys))
	}
	if err := uc.cache.DelPattern(ctx, "products:list:*"); err != nil {
		uc.logger.Warn("checkout cache invalidation failed", zap.Error(err))
	}

	for _, line := range lines {
		if err := uc.producer.PublishStockChanged(ctx, line.ProductID, -line.Quantity, string(model.LedgerSale), o.ID); err != nil {
			uc.logger.Warn("stock event publish failed", zap.Error(err), zap.String("product_id", line.ProductID))
		}
	}

	return o, nil
}

func (uc *orderUseCase) GetOrder(ctx context.Context, userID, orderID string) (*model.Order, error) {
	o, err := uc.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	// An order belonging to someone else is indistinguishable from a
	// missing one.
	if o == nil || o.UserID != userID {
		return nil, apperr.ErrNotFound
	}
	return o, nil
}

func (uc *orderUseCase) ListOrders(ctx context.Context, userID string, page, limit int) ([]model.Order, int, error) {
	return uc.repo.FindByUser(ctx, userID, page, limit)
}
