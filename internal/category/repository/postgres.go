package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/storelabs/storefront-service/internal/category/dto"
	"github.com/storelabs/storefront-service/internal/model"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, c *model.Category) error {
	query := `
        INSERT INTO categories (id, name, created_at, updated_at)
        VALUES (:id, :name, :created_at, :updated_at)
    `
	_, err := r.DB.NamedExecContext(ctx, query, c)
	return err
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Category, error) {
	var category model.Category
	query := `SELECT * FROM categories WHERE id = $1 LIMIT 1`
	err := r.DB.GetContext(ctx, &category, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.CategoryFilters) ([]model.Category, int, error) {
	var categories []model.Category
	var count int

	if err := r.DB.GetContext(ctx, &count, "SELECT count(*) FROM categories"); err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM categories ORDER BY name ASC"
	if f.Limit > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.Limit, (page-1)*f.Limit)
	}

	if err := r.DB.SelectContext(ctx, &categories, query); err != nil {
		return nil, 0, err
	}
	return categories, count, nil
}

func (r *PGRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM categories WHERE id = $1", id)
	return err
}

func (r *PGRepository) IsNameUnique(ctx context.Context, name string) (bool, error) {
	var count int
	err := r.DB.GetContext(ctx, &count, "SELECT count(*) FROM categories WHERE name = $1", name)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

func (r *PGRepository) CountProducts(ctx context.Context, categoryID string) (int, error) {
	var count int
	err := r.DB.GetContext(ctx, &count, "SELECT count(*) FROM products WHERE category_id = $1", categoryID)
	return count, err
}
