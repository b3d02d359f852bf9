package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storelabs/storefront-service/internal/apperr"
	"github.com/storelabs/storefront-service/internal/category"
	"github.com/storelabs/storefront-service/internal/category/dto"
	"github.com/storelabs/storefront-service/internal/model"
	"github.com/storelabs/storefront-service/internal/pkg/cache"
	"github.com/storelabs/storefront-service/internal/pkg/logger"
	"go.uber.org/zap"
)

const (
	listCacheTTL    = time.Minute
	listCachePrefix = "categories:all"
)

type categoryUseCase struct {
	repo   category.Repository
	cache  cache.Store
	logger logger.Logger
}

func NewCategoryUseCase(repo category.Repository, store cache.Store, log logger.Logger) category.UseCase {
	return &categoryUseCase{
		repo:   repo,
		cache:  store,
		logger: log,
	}
}

func (uc *categoryUseCase) CreateCategory(ctx context.Context, input *dto.CreateCategoryInput) (*model.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperr.ErrInvalidName
	}

	unique, err := uc.repo.IsNameUnique(ctx, name)
	if err != nil {
		return nil, err
	}
	if !unique {
		return nil, apperr.ErrCategoryExists
	}

	now := time.Now()
	cat := &model.Category{
		BaseModel: model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		Name:      name,
	}

	if err := uc.repo.Create(ctx, cat); err != nil {
		return nil, err
	}

	uc.invalidateList(ctx)
	return cat, nil
}

func (uc *categoryUseCase) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	cat, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, apperr.ErrNotFound
	}
	return cat, nil
}

func (uc *categoryUseCase) ListCategories(ctx context.Context, f *dto.CategoryFilters) ([]model.Category, int, error) {
	type cached struct {
		Categories []model.Category
		Count      int
	}

	key := fmt.Sprintf("%s:%d:%d", listCachePrefix, f.Page, f.Limit)
	if data, err := uc.cache.Get(ctx, key); err == nil {
		var result cached
		if err := json.Unmarshal(data, &result); err == nil {
			return result.Categories, result.Count, nil
		}
	}

	categories, count, err := uc.repo.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	if data, err := json.Marshal(cached{Categories: categories, Count: count}); err == nil {
		if err := uc.cache.Set(ctx, key, data, listCacheTTL); err != nil {
			uc.logger.Warn("category list cache set failed", zap.Error(err))
		}
	}
	return categories, count, nil
}

func (uc *categoryUseCase) DeleteCategory(ctx context.Context, id string) error {
	cat, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if cat == nil {
		return apperr.ErrNotFound
	}

	// Deleting a category that products still reference would leave the
	// product rows pointing nowhere. Deletion is blocked instead.
	count, err := uc.repo.CountProducts(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperr.ErrCategoryInUse
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}

	uc.invalidateList(ctx)
	return nil
}

func (uc *categoryUseCase) invalidateList(ctx context.Context) {
	if err := uc.cache.DelPattern(ctx, listCachePrefix+":*"); err != nil {
		uc.logger.Warn("category cache invalidation failed", zap.Error(err))
	}
}
