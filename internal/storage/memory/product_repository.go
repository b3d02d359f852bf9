package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storelabs/storefront-service/internal/apperr"
	"github.com/storelabs/storefront-service/internal/model"
	"github.com/storelabs/storefront-service/internal/product/dto"
)

type ProductRepository struct {
	store *Store
}

func NewProductRepository(store *Store) *ProductRepository {
	return &ProductRepository{store: store}
}

func (r *ProductRepository) Create(ctx context.Context, p *model.Product, initialEntry *model.StockLedgerEntry) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products[p.ID] = copyProduct(p)
	if initialEntry != nil {
		s.ledger = append(s.ledger, *initialEntry)
	}
	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, nil
	}
	return copyProduct(p), nil
}

func (r *ProductRepository) FindAll(ctx context.Context, f *dto.ProductFilters) ([]model.Product, int, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]model.Product, 0)
	for _, p := range s.products {
		if f.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Search)) {
			continue
		}
		if f.CategoryID != "" && p.CategoryID != f.CategoryID {
			continue
		}
		matched = append(matched, *p)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	count := len(matched)
	if f.Limit > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		start := (page - 1) * f.Limit
		if start > count {
			start = count
		}
		end := start + f.Limit
		if end > count {
			end = count
		}
		matched = matched[start:end]
	}
	return matched, count, nil
}

func (r *ProductRepository) IsSKUUnique(ctx context.Context, sku string) (bool, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.products {
		if p.SKU == sku {
			return false, nil
		}
	}
	return true, nil
}

func (r *ProductRepository) AdjustStockWithLedger(ctx context.Context, productID string, delta int64, expectedVersion *int64, entry *model.StockLedgerEntry) (*model.Product, error) {
	release := r.store.lockRows([]string{productID})
	defer release()

	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[productID]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	if expectedVersion != nil && p.Version != *expectedVersion {
		return nil, apperr.ErrConflict
	}
	if p.Stock+delta < 0 {
		return nil, &apperr.InsufficientStockError{ProductID: productID}
	}

	p.Stock += delta
	p.Version++
	p.UpdatedAt = time.Now()
	s.ledger = append(s.ledger, *entry)
	return copyProduct(p), nil
}

func (r *ProductRepository) SetPriceWithLedger(ctx context.Context, productID string, price decimal.Decimal, entry *model.StockLedgerEntry) (*model.Product, error) {
	release := r.store.lockRows([]string{productID})
	defer release()

	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[productID]
	if !ok {
		return nil, apperr.ErrNotFound
	}

	p.Price = price
	p.Version++
	p.UpdatedAt = time.Now()
	s.ledger = append(s.ledger, *entry)
	return copyProduct(p), nil
}

func (r *ProductRepository) ListLedger(ctx context.Context, productID string, page, limit int) ([]model.StockLedgerEntry, int, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]model.StockLedgerEntry, 0)
	for _, e := range s.ledger {
		if e.ProductID == productID {
			entries = append(entries, e)
		}
	}

	count := len(entries)
	if limit > 0 {
		if page < 1 {
			page = 1
		}
		start := (page - 1) * limit
		if start > count {
			start = count
		}
		end := start + limit
		if end > count {
			end = count
		}
		entries = entries[start:end]
	}
	return entries, count, nil
}

func (r *ProductRepository) SumLedger(ctx context.Context, productID string) (int64, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum int64
	for _, e := range s.ledger {
		if e.ProductID == productID {
			sum += e.ChangeQty
		}
	}
	return sum, nil
}
