package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/storelabs/storefront-service/internal/apperr"
	"github.com/storelabs/storefront-service/internal/model"
	"github.com/storelabs/storefront-service/internal/pkg/database"
	"github.com/storelabs/storefront-service/internal/product/dto"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

const insertLedgerQuery = `
    INSERT INTO stock_ledger (id, product_id, change_qty, type, reference, created_at)
    VALUES (:id, :product_id, :change_qty, :type, :reference, :created_at)
`

func (r *PGRepository) Create(ctx context.Context, p *model.Product, initialEntry *model.StockLedgerEntry) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
        INSERT INTO products (id, sku, name, description, price, stock, category_id, version, created_at, updated_at)
        VALUES (:id, :sku, :name, :description, :price, :stock, :category_id, :version, :created_at, :updated_at)
    `
	if _, err := tx.NamedExecContext(ctx, query, p); err != nil {
		return err
	}

	if initialEntry != nil {
		if _, err := tx.NamedExecContext(ctx, insertLedgerQuery, initialEntry); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	var product model.Product
	query := `SELECT * FROM products WHERE id = $1 LIMIT 1`
	err := r.DB.GetContext(ctx, &product, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.ProductFilters) ([]model.Product, int, error) {
	var products []model.Product
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.Search != "" {
		conditions = append(conditions, "name ILIKE :search")
		args["search"] = "%" + f.Search + "%"
	}
	if f.CategoryID != "" {
		conditions = append(conditions, "category_id = :category_id")
		args["category_id"] = f.CategoryID
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT count(*) FROM products" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&count)
	}

	query := "SELECT * FROM products" + whereClause + " ORDER BY created_at DESC"
	if f.Limit > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.Limit, (page-1)*f.Limit)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	if err := nstmt.SelectContext(ctx, &products, args); err != nil {
		return nil, 0, err
	}
	return products, count, nil
}

func (r *PGRepository) IsSKUUnique(ctx context.Context, sku string) (bool, error) {
	var count int
	err := r.DB.GetContext(ctx, &count, "SELECT count(*) FROM products WHERE sku = $1", sku)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

func (r *PGRepository) AdjustStockWithLedger(ctx context.Context, productID string, delta int64, expectedVersion *int64, entry *model.StockLedgerEntry) (*model.Product, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, translate(err)
	}
	defer tx.Rollback()

	// Single guarded statement: the WHERE clause makes concurrent deltas
	// commutative and keeps stock non-negative without a read-modify-write.
	query := `
        UPDATE products
        SET stock = stock + $1, version = version + 1, updated_at = now()
        WHERE id = $2 AND stock + $1 >= 0
    `
	args := []interface{}{delta, productID}
	if expectedVersion != nil {
		query += ` AND version = $3`
		args = append(args, *expectedVersion)
	}
	query += ` RETURNING *`

	var updated model.Product
	err = tx.QueryRowxContext(ctx, query, args...).StructScan(&updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, r.classifyMiss(ctx, tx, productID, delta, expectedVersion)
	}
	if err != nil {
		return nil, translate(err)
	}

	if _, err := tx.NamedExecContext(ctx, insertLedgerQuery, entry); err != nil {
		return nil, translate(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, translate(err)
	}
	return &updated, nil
}

// classifyMiss decides why the guarded update matched nothing. The row is
// re-read inside the same transaction so the verdict is consistent.
func (r *PGRepository) classifyMiss(ctx context.Context, tx *sqlx.Tx, productID string, delta int64, expectedVersion *int64) error {
	var current struct {
		Stock   int64 `db:"stock"`
		Version int64 `db:"version"`
	}
	err := tx.GetContext(ctx, &current, "SELECT stock, version FROM products WHERE id = $1", productID)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.ErrNotFound
	}
	if err != nil {
		return translate(err)
	}
	if expectedVersion != nil && current.Version != *expectedVersion {
		return apperr.ErrConflict
	}
	if current.Stock+delta < 0 {
		return &apperr.InsufficientStockError{ProductID: productID}
	}
	return apperr.ErrConflict
}

func (r *PGRepository) SetPriceWithLedger(ctx context.Context, productID string, price decimal.Decimal, entry *model.StockLedgerEntry) (*model.Product, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, translate(err)
	}
	defer tx.Rollback()

	var updated model.Product
	err = tx.QueryRowxContext(ctx, `
        UPDATE products
        SET price = $1, version = version + 1, updated_at = now()
        WHERE id = $2
        RETURNING *
    `, price, productID).StructScan(&updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, translate(err)
	}

	if _, err := tx.NamedExecContext(ctx, insertLedgerQuery, entry); err != nil {
		return nil, translate(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, translate(err)
	}
	return &updated, nil
}

func (r *PGRepository) ListLedger(ctx context.Context, productID string, page, limit int) ([]model.StockLedgerEntry, int, error) {
	var entries []model.StockLedgerEntry
	var count int

	err := r.DB.GetContext(ctx, &count, "SELECT count(*) FROM stock_ledger WHERE product_id = $1", productID)
	if err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM stock_ledger WHERE product_id = $1 ORDER BY created_at ASC, id ASC"
	if limit > 0 {
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, (page-1)*limit)
	}

	if err := r.DB.SelectContext(ctx, &entries, query, productID); err != nil {
		return nil, 0, err
	}
	return entries, count, nil
}

func (r *PGRepository) SumLedger(ctx context.Context, productID string) (int64, error) {
	var sum int64
	err := r.DB.GetContext(ctx, &sum, "SELECT COALESCE(SUM(change_qty), 0) FROM stock_ledger WHERE product_id = $1", productID)
	return sum, err
}

func translate(err error) error {
	if database.IsTransient(err) {
		return &apperr.TransientError{Err: err}
	}
	return err
}
