package product

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/storelabs/storefront-service/internal/model"
	"github.com/storelabs/storefront-service/internal/product/dto"
)

type UseCase interface {
	CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	ListProducts(ctx context.Context, f *dto.ProductFilters) ([]model.Product, int, error)

	// Admin stock operations. Each routes its delta through the stock
	// ledger inside the same atomic unit as the product mutation.
	Restock(ctx context.Context, productID string, qty int64, reference string) (*model.Product, error)
	AdjustStock(ctx context.Context, input *dto.AdjustStockInput) (*model.Product, error)
	AdjustPrice(ctx context.Context, productID string, price decimal.Decimal) (*model.Product, error)

	ListLedger(ctx context.Context, productID string, page, limit int) ([]model.StockLedgerEntry, int, error)
}
