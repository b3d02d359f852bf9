package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/storelabs/storefront-service/internal/apperr"
	"github.com/storelabs/storefront-service/internal/cart"
	"github.com/storelabs/storefront-service/internal/model"
	"github.com/storelabs/storefront-service/internal/pkg/logger"
	"github.com/storelabs/storefront-service/internal/product"
)

type cartUseCase struct {
	repo     cart.Repository
	prodRepo product.Repository
	logger   logger.Logger
}

func NewCartUseCase(repo cart.Repository, prodRepo product.Repository, log logger.Logger) cart.UseCase {
	return &cartUseCase{
		repo:     repo,
		prodRepo: prodRepo,
		logger:   log,
	}
}

func (uc *cartUseCase) GetCart(ctx context.Context, userID string) (*model.Cart, error) {
	c, err := uc.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		// No cart yet: an empty one, not an error.
		return &model.Cart{UserID: userID, Items: []model.CartItem{}}, nil
	}
	return c, nil
}

func (uc *cartUseCase) AddToCart(ctx context.Context, userID, productID string, qty int64) (*model.Cart, error) {
	if qty < 1 {
		return nil, apperr.ErrInvalidQuantity
	}

	p, err := uc.prodRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.ErrNotFound
	}

	c, err := uc.repo.UpsertCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	existing, err := uc.repo.GetItem(ctx, c.ID, productID)
	if err != nil {
		return nil, err
	}

	newQty := qty
	if existing != nil {
		newQty += existing.Quantity
	}

	// Advisory check against current stock. The authoritative check happens
	// under row locks at checkout; this one only keeps carts sane.
	if p.Stock < newQty {
		return nil, &apperr.InsufficientStockError{ProductID: productID}
	}

	item := &model.CartItem{
		ID:        uuid.New().String(),
		CartID:    c.ID,
		ProductID: productID,
		Quantity:  newQty,
	}
	if existing != nil {
		item.ID = existing.ID
	}

	if err := uc.repo.UpsertItem(ctx, item); err != nil {
		return nil, err
	}

	return uc.repo.GetByUser(ctx, userID)
}

func (uc *cartUseCase) UpdateItem(ctx context.Context, userID, productID string, qty int64) error {
	if qty < 0 {
		return apperr.ErrInvalidQuantity
	}

	c, err := uc.repo.GetByUser(ctx, userID)
	if err != nil {
		return err
	}
	if c == nil {
		return apperr.ErrNotFound
	}

	existing, err := uc.repo.GetItem(ctx, c.ID, productID)
	if err != nil {
		return err
	}
	if existing == nil {
		return apperr.ErrNotFound
	}

	if qty == 0 {
		return uc.repo.DeleteItem(ctx, c.ID, productID)
	}

	existing.Quantity = qty
	return uc.repo.UpsertItem(ctx, existing)
}

func (uc *cartUseCase) RemoveItem(ctx context.Context, userID, productID string) error {
	c, err := uc.repo.GetByUser(ctx, userID)
	if err != nil {
		return err
	}
	if c == nil {
		return apperr.ErrNotFound
	}
	return uc.repo.DeleteItem(ctx, c.ID, productID)
}
