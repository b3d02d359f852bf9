package memory

import (
	"context"
	"sort"

	"github.com/storelabs/storefront-service/internal/category/dto"
	"github.com/storelabs/storefront-service/internal/model"
)

type CategoryRepository struct {
	store *Store
}

func NewCategoryRepository(store *Store) *CategoryRepository {
	return &CategoryRepository{store: store}
}

func (r *CategoryRepository) Create(ctx context.Context, c *model.Category) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *c
	s.categories[c.ID] = &cp
	return nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id string) (*model.Category, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.categories[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *CategoryRepository) FindAll(ctx context.Context, f *dto.CategoryFilters) ([]model.Category, int, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	categories := make([]model.Category, 0, len(s.categories))
	for _, c := range s.categories {
		categories = append(categories, *c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })

	count := len(categories)
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
		categories = categories[start:end]
	}
	return categories, count, nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.categories, id)
	return nil
}

func (r *CategoryRepository) IsNameUnique(ctx context.Context, name string) (bool, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.categories {
		if c.Name == name {
			return false, nil
		}
	}
	return true, nil
}

func (r *CategoryRepository) CountProducts(ctx context.Context, categoryID string) (int, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, p := range s.products {
		if p.CategoryID == categoryID {
			count++
		}
	}
	return count, nil
}
