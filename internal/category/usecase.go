package category

import (
	"context"

	"github.com/storelabs/storefront-service/internal/category/dto"
	"github.com/storelabs/storefront-service/internal/model"
)

type UseCase interface {
	CreateCategory(ctx context.Context, input *dto.CreateCategoryInput) (*model.Category, error)
	GetCategory(ctx context.Context, id string) (*model.Category, error)
	ListCategories(ctx context.Context, f *dto.CategoryFilters) ([]model.Category, int, error)
	DeleteCategory(ctx context.Context, id string) error
}
