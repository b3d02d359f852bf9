package usecase

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storelabs/storefront-service/internal/apperr"
	"github.com/storelabs/storefront-service/internal/category"
	"github.com/storelabs/storefront-service/internal/model"
	"github.com/storelabs/storefront-service/internal/pkg/broker"
	"github.com/storelabs/storefront-service/internal/pkg/cache"
	"github.com/storelabs/storefront-service/internal/pkg/logger"
	"github.com/storelabs/storefront-service/internal/product"
	"github.com/storelabs/storefront-service/internal/product/dto"
	"go.uber.org/zap"
)

const (
	productCacheTTL = time.Minute
	listCacheTTL    = 30 * time.Second
)

type productUseCase struct {
	repo     product.Repository
	catRepo  category.Repository
	cache    cache.Store
	producer *broker.Producer
	logger   logger.Logger
}

func NewProductUseCase(repo product.Repository, catRepo category.Repository, store cache.Store, producer *broker.Producer, log logger.Logger) product.UseCase {
	return &productUseCase{
		repo:     repo,
		catRepo:  catRepo,
		cache:    store,
		producer: producer,
		logger:   log,
	}
}

func (uc *productUseCase) CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error) {
	if !input.Price.IsPositive() {
		return nil, apperr.ErrInvalidPrice
	}
	if input.Stock < 0 {
		return nil, apperr.ErrInvalidQuantity
	}

	cat, err := uc.catRepo.FindByID(ctx, input.CategoryID)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, apperr.ErrNotFound
	}

	unique, err := uc.repo.IsSKUUnique(ctx, input.SKU)
	if err != nil {
		return nil, err
	}
	if !unique {
		return nil, apperr.ErrSKUExists
	}

	now := time.Now()
	p := &model.Product{
		BaseModel:   model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		SKU:         input.SKU,
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		CategoryID:  input.CategoryID,
		Version:     0,
	}

	// Opening stock goes through the ledger too, so reconciliation holds
	// from the first row: 0 + sum(entries) == stock.
	var initial *model.StockLedgerEntry
	if input.Stock > 0 {
		initial = newEntry(p.ID, input.Stock, model.LedgerRestock, "initial stock")
	}

	if err := uc.repo.Create(ctx, p, initial); err != nil {
		return nil, err
	}

	// Low-frequency admin write: coarse flush of the product key space.
	uc.invalidate(ctx, "products:*", "product:"+p.ID)
	return p, nil
}

func (uc *productUseCase) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	key := "product:" + id
	if data, err := uc.cache.Get(ctx, key); err == nil {
		var p model.Product
		if err := json.Unmarshal(data, &p); err == nil {
			return &p, nil
		}
	}

	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.ErrNotFound
	}

	if data, err := json.Marshal(p); err == nil {
		if err := uc.cache.Set(ctx, key, data, productCacheTTL); err != nil {
			uc.logger.Warn("product cache set failed", zap.Error(err))
		}
	}
	return p, nil
}

func (uc *productUseCase) ListProducts(ctx context.Context, f *dto.ProductFilters) ([]model.Product, int, error) {
	type cached struct {
		Products []model.Product
		Count    int
	}

	key := listCacheKey(f)
	if data, err := uc.cache.Get(ctx, key); err == nil {
		var result cached
		if err := json.Unmarshal(data, &result); err == nil {
			return result.Products, result.Count, nil
		}
	}

	products, count, err := uc.repo.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	if data, err := json.Marshal(cached{Products: products, Count: count}); err == nil {
		if err := uc.cache.Set(ctx, key, data, listCacheTTL); err != nil {
			uc.logger.Warn("product list cache set failed", zap.Error(err))
		}
	}
	return products, count, nil
}

func (uc *productUseCase) Restock(ctx context.Context, productID string, qty int64, reference string) (*model.Product, error) {
	if qty < 1 {
		return nil, apperr.ErrInvalidQuantity
	}

	entry := newEntry(productID, qty, model.LedgerRestock, reference)
	p, err := uc.repo.AdjustStockWithLedger(ctx, productID, qty, nil, entry)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("product restocked",
		zap.String("product_id", productID),
		zap.Int64("qty", qty),
		zap.Int64("stock", p.Stock))

	uc.invalidate(ctx, "products:list:*", "product:"+productID)
	uc.publish(ctx, entry)
	return p, nil
}

func (uc *productUseCase) AdjustStock(ctx context.Context, input *dto.AdjustStockInput) (*model.Product, error) {
	if input.Delta == 0 {
		return nil, apperr.ErrInvalidQuantity
	}

	entry := newEntry(input.ProductID, input.Delta, model.LedgerAdjustment, input.Reference)
	p, err := uc.repo.AdjustStockWithLedger(ctx, input.ProductID, input.Delta, input.ExpectedVersion, entry)
	if err != nil {
		return nil, err
	}

	uc.invalidate(ctx, "products:list:*", "product:"+input.ProductID)
	uc.publish(ctx, entry)
	return p, nil
}

func (uc *productUseCase) AdjustPrice(ctx context.Context, productID string, price decimal.Decimal) (*model.Product, error) {
	if !price.IsPositive() {
		return nil, apperr.ErrInvalidPrice
	}

	// Zero-quantity entry marks the price change in the audit trail.
	entry := newEntry(productID, 0, model.LedgerAdjustment, "price adjustment")
	p, err := uc.repo.SetPriceWithLedger(ctx, productID, price, entry)
	if err != nil {
		return nil, err
	}

	uc.invalidate(ctx, "products:list:*", "product:"+productID)
	return p, nil
}

func (uc *productUseCase) ListLedger(ctx context.Context, productID string, page, limit int) ([]model.StockLedgerEntry, int, error) {
	p, err := uc.repo.FindByID(ctx, productID)
	if err != nil {
		return nil, 0, err
	}
	if p == nil {
		return nil, 0, apperr.ErrNotFound
	}
	return uc.repo.ListLedger(ctx, productID, page, limit)
}

func (uc *productUseCase) invalidate(ctx context.Context, pattern string, keys ...string) {
	if len(keys) > 0 {
		if err := uc.cache.Del(ctx, keys...); err != nil {
			uc.logger.Warn("cache invalidation failed", zap.Error(err), zap.Strings("keys", keys))
		}
	}
	if pattern != "" {
		if err := uc.cache.DelPattern(ctx, pattern); err != nil {
			uc.logger.Warn("cache invalidation failed", zap.Error(err), zap.String("pattern", pattern))
		}
	}
}

func (uc *productUseCase) publish(ctx context.Context, entry *model.StockLedgerEntry) {
	if err := uc.producer.PublishStockChanged(ctx, entry.ProductID, entry.ChangeQty, string(entry.Type), entry.Reference); err != nil {
		uc.logger.Warn("stock event publish failed", zap.Error(err), zap.String("product_id", entry.ProductID))
	}
}

func newEntry(productID string, changeQty int64, entryType model.LedgerEntryType, reference string) *model.StockLedgerEntry {
	return &model.StockLedgerEntry{
		ID:        uuid.New().String(),
		ProductID: productID,
		ChangeQty: changeQty,
		Type:      entryType,
		Reference: reference,
		CreatedAt: time.Now(),
	}
}

func listCacheKey(f *dto.ProductFilters) string {
	data, _ := json.Marshal(f)
	return fmt.Sprintf("products:list:%x", md5.Sum(data))
}
