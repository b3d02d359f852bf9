package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/storelabs/storefront-service/internal/apperr"
	"github.com/storelabs/storefront-service/internal/category/dto"
	"github.com/storelabs/storefront-service/internal/model"
	"github.com/storelabs/storefront-service/internal/pkg/cache"
	"github.com/storelabs/storefront-service/internal/pkg/logger"
	"github.com/storelabs/storefront-service/internal/storage/memory"
)

type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMapCache() *mapCache { return &mapCache{data: make(map[string][]byte)} }

func (c *mapCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.data[key]; ok {
		return v, nil
	}
	return nil, cache.ErrMiss
}

func (c *mapCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *mapCache) Del(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *mapCache) DelPattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := pattern
	if n := len(pattern); n > 0 && pattern[n-1] == '*' {
		prefix = pattern[:n-1]
	}
	for k := range c.data {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(c.data, k)
		}
	}
	return nil
}

func (c *mapCache) Close() error { return nil }

func newCategoryFixture(t *testing.T) (*memory.Store, *categoryUseCase) {
	t.Helper()
	store := memory.NewStore()
	uc := NewCategoryUseCase(memory.NewCategoryRepository(store), newMapCache(), logger.NewNop())
	return store, uc.(*categoryUseCase)
}

func TestCreateCategory(t *testing.T) {
	ctx := context.Background()
	_, uc := newCategoryFixture(t)

	_, err := uc.CreateCategory(ctx, &dto.CreateCategoryInput{Name: "   "})
	require.ErrorIs(t, err, apperr.ErrInvalidName)

	cat, err := uc.CreateCategory(ctx, &dto.CreateCategoryInput{Name: "  Electronics  "})
	require.NoError(t, err)
	require.Equal(t, "Electronics", cat.Name)

	_, err = uc.CreateCategory(ctx, &dto.CreateCategoryInput{Name: "Electronics"})
	require.ErrorIs(t, err, apperr.ErrCategoryExists)
}

func TestDeleteCategoryBlockedWhileInUse(t *testing.T) {
	ctx := context.Background()
	store, uc := newCategoryFixture(t)

	cat, err := uc.CreateCategory(ctx, &dto.CreateCategoryInput{Name: "Electronics"})
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, memory.NewProductRepository(store).Create(ctx, &model.Product{
		BaseModel:  model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		SKU:        "SKU-1",
		Name:       "widget",
		Price:      decimal.RequireFromString("10.00"),
		Stock:      1,
		CategoryID: cat.ID,
	}, nil))

	require.ErrorIs(t, uc.DeleteCategory(ctx, cat.ID), apperr.ErrCategoryInUse)

	_, err = uc.GetCategory(ctx, cat.ID)
	require.NoError(t, err)
}

func TestDeleteCategory(t *testing.T) {
	ctx := context.Background()
	_, uc := newCategoryFixture(t)

	require.ErrorIs(t, uc.DeleteCategory(ctx, uuid.New().String()), apperr.ErrNotFound)

	cat, err := uc.CreateCategory(ctx, &dto.CreateCategoryInput{Name: "Empty"})
	require.NoError(t, err)
	require.NoError(t, uc.DeleteCategory(ctx, cat.ID))

	_, err = uc.GetCategory(ctx, cat.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestListCategoriesCachesAndInvalidates(t *testing.T) {
	ctx := context.Background()
	store, uc := newCategoryFixture(t)

	_, err := uc.CreateCategory(ctx, &dto.CreateCategoryInput{Name: "Electronics"})
	require.NoError(t, err)

	_, count, err := uc.ListCategories(ctx, &dto.CategoryFilters{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, 1, count)

	// A row inserted behind the use case's back stays invisible while the
	// listing is cached.
	now := time.Now()
	require.NoError(t, memory.NewCategoryRepository(store).Create(ctx, &model.Category{
		BaseModel: model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		Name:      "Books",
	}))
	_, count, err = uc.ListCategories(ctx, &dto.CategoryFilters{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, 1, count)

	// A create through the use case flushes the listing keys.
	_, err = uc.CreateCategory(ctx, &dto.CreateCategoryInput{Name: "Garden"})
	require.NoError(t, err)
	_, count, err = uc.ListCategories(ctx, &dto.CategoryFilters{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, 3, count)
}
