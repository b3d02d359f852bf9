package category

import (
	"context"

	"github.com/storelabs/storefront-service/internal/category/dto"
	"github.com/storelabs/storefront-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, c *model.Category) error
	FindByID(ctx context.Context, id string) (*model.Category, error)
	FindAll(ctx context.Context, f *dto.CategoryFilters) ([]model.Category, int, error)
	Delete(ctx context.Context, id string) error

	IsNameUnique(ctx context.Context, name string) (bool, error)

	// CountProducts guards deletion: a category with products cannot go away.
	CountProducts(ctx context.Context, categoryID string) (int, error)
}
