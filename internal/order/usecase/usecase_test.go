package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/storelabs/storefront-service/internal/apperr"
	"github.com/storelabs/storefront-service/internal/model"
	"github.com/storelabs/storefront-service/internal/order/dto"
	"github.com/storelabs/storefront-service/internal/pkg/cache"
	"github.com/storelabs/storefront-service/internal/pkg/logger"
	"github.com/storelabs/storefront-service/internal/storage/memory"
)

// spyCache records invalidations so tests can assert which keys a commit
// touched.
type spyCache struct {
	mu       sync.Mutex
	data     map[string][]byte
	deleted  []string
	patterns []string
}

func newSpyCache() *spyCache {
	return &spyCache{data: make(map[string][]byte)}
}

func (c *spyCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.data[key]; ok {
		return v, nil
	}
	return nil, cache.ErrMiss
}

func (c *spyCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *spyCache) Del(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
		c.deleted = append(c.deleted, k)
	}
	return nil
}

func (c *spyCache) DelPattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.patterns = append(c.patterns, pattern)
	return nil
}

func (c *spyCache) Close() error { return nil }

func seedProduct(t *testing.T, store *memory.Store, price string, stock int64) *model.Product {
	t.Helper()

	now := time.Now()
	p := &model.Product{
		BaseModel:  model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		SKU:        "SKU-" + uuid.New().String()[:8],
		Name:       "test product",
		Price:      decimal.RequireFromString(price),
		Stock:      stock,
		CategoryID: uuid.New().String(),
	}

	var initial *model.StockLedgerEntry
	if stock > 0 {
		initial = &model.StockLedgerEntry{
			ID:        uuid.New().String(),
			ProductID: p.ID,
			ChangeQty: stock,
			Type:      model.LedgerRestock,
			Reference: "initial stock",
			CreatedAt: now,
		}
	}

	repo := memory.NewProductRepository(store)
	require.NoError(t, repo.Create(context.Background(), p, initial))
	return p
}

func newCheckoutFixture(t *testing.T) (*memory.Store, *spyCache, *orderUseCase) {
	t.Helper()
	store := memory.NewStore()
	spy := newSpyCache()
	uc := NewOrderUseCase(memory.NewOrderRepository(store), spy, nil, logger.NewNop())
	return store, spy, uc.(*orderUseCase)
}

func TestCheckoutComputesTotalAndWritesLedger(t *testing.T) {
	ctx := context.Background()
	store, _, uc := newCheckoutFixture(t)
	p := seedProduct(t, store, "10.00", 5)

	o, err := uc.Checkout(ctx, "user-1", []dto.CheckoutItem{{ProductID: p.ID, Quantity: 3}})
	require.NoError(t, err)
	require.Equal(t, model.OrderStatusPaid, o.Status)
	require.True(t, o.Total.Equal(decimal.RequireFromString("30.00")), "total = %s", o.Total)
	require.Len(t, o.Items, 1)
	require.Equal(t, int64(3), o.Items[0].Quantity)
	require.True(t, o.Items[0].Price.Equal(decimal.RequireFromString("10.00")))

	prodRepo := memory.NewProductRepository(store)
	got, err := prodRepo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), got.Stock)

	entries, _, err := prodRepo.ListLedger(ctx, p.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	sale := entries[1]
	require.Equal(t, model.LedgerSale, sale.Type)
	require.Equal(t, int64(-3), sale.ChangeQty)
	require.Equal(t, o.ID, sale.Reference)

	// A second checkout of 3 cannot be covered by the remaining 2.
	_, err = uc.Checkout(ctx, "user-1", []dto.CheckoutItem{{ProductID: p.ID, Quantity: 3}})
	productID, ok := apperr.IsInsufficientStock(err)
	require.True(t, ok)
	require.Equal(t, p.ID, productID)

	got, err = prodRepo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), got.Stock)
}

func TestCheckoutFreezesPriceAtPurchase(t *testing.T) {
	ctx := context.Background()
	store, _, uc := newCheckoutFixture(t)
	p := seedProduct(t, store, "10.00", 10)

	o, err := uc.Checkout(ctx, "user-1", []dto.CheckoutItem{{ProductID: p.ID, Quantity: 1}})
	require.NoError(t, err)

	prodRepo := memory.NewProductRepository(store)
	_, err = prodRepo.SetPriceWithLedger(ctx, p.ID, decimal.RequireFromString("99.99"), &model.StockLedgerEntry{
		ID:        uuid.New().String(),
		ProductID: p.ID,
		Type:      model.LedgerAdjustment,
		Reference: "price adjustment",
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)

	got, err := uc.GetOrder(ctx, "user-1", o.ID)
	require.NoError(t, err)
	require.True(t, got.Items[0].Price.Equal(decimal.RequireFromString("10.00")))
	require.True(t, got.Total.Equal(decimal.RequireFromString("10.00")))
}

func TestCheckoutConcurrentNeverOversells(t *testing.T) {
	ctx := context.Background()
	store, _, uc := newCheckoutFixture(t)
	p := seedProduct(t, store, "10.00", 5)

	const buyers = 20
	var succeeded, rejected atomic.Int64
	var wg sync.WaitGroup
	wg.Add(buyers)
	for i := 0; i < buyers; i++ {
		go func(i int) {
			defer wg.Done()
			_, err := uc.Checkout(ctx, fmt.Sprintf("user-%d", i), []dto.CheckoutItem{{ProductID: p.ID, Quantity: 1}})
			if err == nil {
				succeeded.Add(1)
				return
			}
			if _, ok := apperr.IsInsufficientStock(err); ok {
				rejected.Add(1)
				return
			}
			t.Errorf("unexpected checkout error: %v", err)
		}(i)
	}
	wg.Wait()

	require.Equal(t, int64(5), succeeded.Load())
	require.Equal(t, int64(15), rejected.Load())

	prodRepo := memory.NewProductRepository(store)
	got, err := prodRepo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, int64(0), got.Stock)

	// Reconciliation invariant: starting from zero, the ledger fully explains
	// the current stock level.
	sum, err := prodRepo.SumLedger(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, got.Stock, sum)
}

func TestCheckoutOpposingLineOrdersDoNotDeadlock(t *testing.T) {
	ctx := context.Background()
	store, _, uc := newCheckoutFixture(t)
	a := seedProduct(t, store, "5.00", 20)
	b := seedProduct(t, store, "7.00", 20)

	const buyers = 20
	var wg sync.WaitGroup
	wg.Add(buyers)
	for i := 0; i < buyers; i++ {
		go func(i int) {
			defer wg.Done()
			items := []dto.CheckoutItem{
				{ProductID: a.ID, Quantity: 1},
				{ProductID: b.ID, Quantity: 1},
			}
			if i%2 == 1 {
				items[0], items[1] = items[1], items[0]
			}
			if _, err := uc.Checkout(ctx, fmt.Sprintf("user-%d", i), items); err != nil {
				t.Errorf("checkout %d failed: %v", i, err)
			}
		}(i)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("checkouts did not complete, likely deadlocked")
	}

	prodRepo := memory.NewProductRepository(store)
	for _, p := range []*model.Product{a, b} {
		got, err := prodRepo.FindByID(ctx, p.ID)
		require.NoError(t, err)
		require.Equal(t, int64(0), got.Stock)
	}
}

func TestCheckoutInsufficientLineRollsBackEverything(t *testing.T) {
	ctx := context.Background()
	store, _, uc := newCheckoutFixture(t)
	a := seedProduct(t, store, "5.00", 10)
	b := seedProduct(t, store, "7.00", 1)

	_, err := uc.Checkout(ctx, "user-1", []dto.CheckoutItem{
		{ProductID: a.ID, Quantity: 2},
		{ProductID: b.ID, Quantity: 5},
	})
	productID, ok := apperr.IsInsufficientStock(err)
	require.True(t, ok)
	require.Equal(t, b.ID, productID)

	// Neither product moved and no SALE entry was written.
	prodRepo := memory.NewProductRepository(store)
	gotA, err := prodRepo.FindByID(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, int64(10), gotA.Stock)
	gotB, err := prodRepo.FindByID(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), gotB.Stock)

	entries, _, err := prodRepo.ListLedger(ctx, a.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, model.LedgerRestock, entries[0].Type)

	orders, count, err := uc.ListOrders(ctx, "user-1", 1, 10)
	require.NoError(t, err)
	require.Zero(t, count)
	require.Empty(t, orders)
}

func TestCheckoutMergesDuplicateLines(t *testing.T) {
	ctx := context.Background()
	store, _, uc := newCheckoutFixture(t)
	p := seedProduct(t, store, "10.00", 10)

	o, err := uc.Checkout(ctx, "user-1", []dto.CheckoutItem{
		{ProductID: p.ID, Quantity: 2},
		{ProductID: p.ID, Quantity: 3},
	})
	require.NoError(t, err)
	require.Len(t, o.Items, 1)
	require.Equal(t, int64(5), o.Items[0].Quantity)
	require.True(t, o.Total.Equal(decimal.RequireFromString("50.00")))

	got, err := memory.NewProductRepository(store).FindByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, int64(5), got.Stock)
}

func TestCheckoutRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	store, _, uc := newCheckoutFixture(t)
	p := seedProduct(t, store, "10.00", 10)

	_, err := uc.Checkout(ctx, "user-1", nil)
	require.ErrorIs(t, err, apperr.ErrEmptyCart)

	_, err = uc.Checkout(ctx, "user-1", []dto.CheckoutItem{{ProductID: p.ID, Quantity: 0}})
	require.ErrorIs(t, err, apperr.ErrInvalidQuantity)

	_, err = uc.Checkout(ctx, "user-1", []dto.CheckoutItem{{ProductID: uuid.New().String(), Quantity: 1}})
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCheckoutInvalidatesProductCache(t *testing.T) {
	ctx := context.Background()
	store, spy, uc := newCheckoutFixture(t)
	p := seedProduct(t, store, "10.00", 10)

	_, err := uc.Checkout(ctx, "user-1", []dto.CheckoutItem{{ProductID: p.ID, Quantity: 1}})
	require.NoError(t, err)

	require.Contains(t, spy.deleted, "product:"+p.ID)
	require.Contains(t, spy.patterns, "products:list:*")
}

func TestCheckoutClearsCart(t *testing.T) {
	ctx := context.Background()
	store, _, uc := newCheckoutFixture(t)
	p := seedProduct(t, store, "10.00", 10)

	cartRepo := memory.NewCartRepository(store)
	c, err := cartRepo.UpsertCart(ctx, "user-1")
	require.NoError(t, err)
	require.NoError(t, cartRepo.UpsertItem(ctx, &model.CartItem{
		ID:        uuid.New().String(),
		CartID:    c.ID,
		ProductID: p.ID,
		Quantity:  2,
	}))

	_, err = uc.Checkout(ctx, "user-1", []dto.CheckoutItem{{ProductID: p.ID, Quantity: 2}})
	require.NoError(t, err)

	got, err := cartRepo.GetByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Empty(t, got.Items)
}

func TestGetOrderEnforcesOwnership(t *testing.T) {
	ctx := context.Background()
	store, _, uc := newCheckoutFixture(t)
	p := seedProduct(t, store, "10.00", 10)

	o, err := uc.Checkout(ctx, "user-1", []dto.CheckoutItem{{ProductID: p.ID, Quantity: 1}})
	require.NoError(t, err)

	got, err := uc.GetOrder(ctx, "user-1", o.ID)
	require.NoError(t, err)
	require.Equal(t, o.ID, got.ID)

	_, err = uc.GetOrder(ctx, "user-2", o.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = uc.GetOrder(ctx, "user-1", uuid.New().String())
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestListOrdersScopedToUser(t *testing.T) {
	ctx := context.Background()
	store, _, uc := newCheckoutFixture(t)
	p := seedProduct(t, store, "10.00", 10)

	_, err := uc.Checkout(ctx, "user-1", []dto.CheckoutItem{{ProductID: p.ID, Quantity: 1}})
	require.NoError(t, err)
	_, err = uc.Checkout(ctx, "user-2", []dto.CheckoutItem{{ProductID: p.ID, Quantity: 1}})
	require.NoError(t, err)

	orders, count, err := uc.ListOrders(ctx, "user-1", 1, 10)
	require.NoError(t, err)
	require.Equal(t, 1, count)
	require.Len(t, orders, 1)
	require.Equal(t, "user-1", orders[0].UserID)
}
