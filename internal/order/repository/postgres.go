package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/storelabs/storefront-service/internal/apperr"
	"github.com/storelabs/storefront-service/internal/model"
	"github.com/storelabs/storefront-service/internal/order"
	"github.com/storelabs/storefront-service/internal/pkg/database"
)

type PGRepository struct {
	DB *sqlx.DB

	// LockTimeout bounds how long a checkout waits for contended rows
	// before aborting with a retryable error.
	LockTimeout time.Duration
}

func NewPGRepository(db *sqlx.DB, lockTimeout time.Duration) *PGRepository {
	if lockTimeout <= 0 {
		lockTimeout = 3 * time.Second
	}
	return &PGRepository{DB: db, LockTimeout: lockTimeout}
}

func (r *PGRepository) PlaceOrder(ctx context.Context, userID string, lines []order.Line) (*model.Order, error) {
	// Deterministic lock order: two checkouts sharing products always lock
	// them in the same sequence, so they cannot deadlock each other.
	sorted := make([]order.Line, len(lines))
	copy(sorted, lines)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ProductID < sorted[j].ProductID })

	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, translate(err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.LockTimeout.Milliseconds())); err != nil {
		return nil, translate(err)
	}

	type locked struct {
		ID    string          `db:"id"`
		Stock int64           `db:"stock"`
		Price decimal.Decimal `db:"price"`
	}

	total := decimal.Zero
	prices := make(map[string]decimal.Decimal, len(sorted))
	for _, line := range sorted {
		var row locked
		err := tx.GetContext(ctx, &row,
			"SELECT id, stock, price FROM products WHERE id = $1 FOR UPDATE", line.ProductID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		if err != nil {
			return nil, translate(err)
		}
		if row.Stock < line.Quantity {
			return nil, &apperr.InsufficientStockError{ProductID: line.ProductID}
		}
		prices[line.ProductID] = row.Price
		total = total.Add(row.Price.Mul(decimal.NewFromInt(line.Quantity)))
	}

	now := time.Now()
	o := &model.Order{
		ID:        uuid.New().String(),
		UserID:    userID,
		Total:     total,
		Status:    model.OrderStatusPaid,
		CreatedAt: now,
	}
	if _, err := tx.ExecContext(ctx, `
        INSERT INTO orders (id, user_id, total, status, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `, o.ID, o.UserID, o.Total, o.Status, o.CreatedAt); err != nil {
		return nil, translate(err)
	}

	for _, line := range sorted {
		item := model.OrderItem{
			ID:        uuid.New().String(),
			OrderID:   o.ID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     prices[line.ProductID],
		}
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO order_items (id, order_id, product_id, quantity, price)
            VALUES ($1, $2, $3, $4, $5)
        `, item.ID, item.OrderID, item.ProductID, item.Quantity, item.Price); err != nil {
			return nil, translate(err)
		}

		// The rows are held FOR UPDATE, so the decrement cannot interleave
		// with another writer; the guard is belt and braces.
		res, err := tx.ExecContext(ctx, `
            UPDATE products
            SET stock = stock - $1, version = version + 1, updated_at = now()
            WHERE id = $2 AND stock >= $1
        `, line.Quantity, line.ProductID)
		if err != nil {
			return nil, translate(err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil, &apperr.InsufficientStockError{ProductID: line.ProductID}
		}

		if _, err := tx.ExecContext(ctx, `
            INSERT INTO stock_ledger (id, product_id, change_qty, type, reference, created_at)
            VALUES ($1, $2, $3, $4, $5, $6)
        `, uuid.New().String(), line.ProductID, -line.Quantity, model.LedgerSale, o.ID, now); err != nil {
			return nil, translate(err)
		}

		o.Items = append(o.Items, item)
	}

	// Cart purge belongs to the same atomic unit: a crash can only be
	// observed as "nothing happened" or "everything happened".
	if _, err := tx.ExecContext(ctx, `
        DELETE FROM cart_items
        WHERE cart_id IN (SELECT id FROM carts WHERE user_id = $1)
    `, userID); err != nil {
		return nil, translate(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, translate(err)
	}
	return o, nil
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Order, error) {
	var o model.Order
	err := r.DB.GetContext(ctx, &o, "SELECT * FROM orders WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := r.DB.SelectContext(ctx, &o.Items,
		"SELECT * FROM order_items WHERE order_id = $1 ORDER BY id", id); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *PGRepository) FindByUser(ctx context.Context, userID string, page, limit int) ([]model.Order, int, error) {
	var orders []model.Order
	var count int

	if err := r.DB.GetContext(ctx, &count,
		"SELECT count(*) FROM orders WHERE user_id = $1", userID); err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM orders WHERE user_id = $1 ORDER BY created_at DESC"
	if limit > 0 {
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, (page-1)*limit)
	}

	if err := r.DB.SelectContext(ctx, &orders, query, userID); err != nil {
		return nil, 0, err
	}
	return orders, count, nil
}

func translate(err error) error {
	if database.IsTransient(err) {
		return &apperr.TransientError{Err: err}
	}
	return err
}
