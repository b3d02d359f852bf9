package product

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/storelabs/storefront-service/internal/model"
	"github.com/storelabs/storefront-service/internal/product/dto"
)

// Repository is the only write path to product rows and the stock ledger.
// The transactional methods guarantee joint atomicity: a ledger row and the
// product mutation it describes are visible together or not at all.
type Repository interface {
	// Create inserts the product and, when initialEntry is non-nil, the
	// ledger row recording its opening stock in the same transaction.
	Create(ctx context.Context, p *model.Product, initialEntry *model.StockLedgerEntry) error
	FindByID(ctx context.Context, id string) (*model.Product, error)
	FindAll(ctx context.Context, f *dto.ProductFilters) ([]model.Product, int, error)
	IsSKUUnique(ctx context.Context, sku string) (bool, error)

	// AdjustStockWithLedger atomically applies stock += delta and
	// version += 1, guarded so stock never goes negative. A non-nil
	// expectedVersion adds an optimistic concurrency check. The ledger
	// entry is written in the same transaction.
	AdjustStockWithLedger(ctx context.Context, productID string, delta int64, expectedVersion *int64, entry *model.StockLedgerEntry) (*model.Product, error)

	// SetPriceWithLedger atomically sets the price, bumps the version and
	// records a zero-quantity ADJUSTMENT ledger entry.
	SetPriceWithLedger(ctx context.Context, productID string, price decimal.Decimal, entry *model.StockLedgerEntry) (*model.Product, error)

	ListLedger(ctx context.Context, productID string, page, limit int) ([]model.StockLedgerEntry, int, error)

	// SumLedger returns the sum of all ledger deltas for a product. At any
	// quiescent point it equals current stock minus initial stock.
	SumLedger(ctx context.Context, productID string) (int64, error)
}
