package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/storelabs/storefront-service/internal/model"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) GetByUser(ctx context.Context, userID string) (*model.Cart, error) {
	var cart model.Cart
	err := r.DB.GetContext(ctx, &cart, "SELECT * FROM carts WHERE user_id = $1", userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var items []model.CartItem
	err = r.DB.SelectContext(ctx, &items,
		"SELECT id, cart_id, product_id, quantity FROM cart_items WHERE cart_id = $1 ORDER BY id", cart.ID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		cart.Items = []model.CartItem{}
		return &cart, nil
	}

	productIDs := make([]string, 0, len(items))
	for _, item := range items {
		productIDs = append(productIDs, item.ProductID)
	}

	query, args, err := sqlx.In("SELECT * FROM products WHERE id IN (?)", productIDs)
	if err != nil {
		return nil, err
	}
	query = r.DB.Rebind(query)

	var products []model.Product
	if err := r.DB.SelectContext(ctx, &products, query, args...); err != nil {
		return nil, err
	}

	byID := make(map[string]*model.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	for i := range items {
		items[i].Product = byID[items[i].ProductID]
	}

	cart.Items = items
	return &cart, nil
}

func (r *PGRepository) UpsertCart(ctx context.Context, userID string) (*model.Cart, error) {
	var cart model.Cart
	err := r.DB.QueryRowxContext(ctx, `
        INSERT INTO carts (id, user_id, created_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
        RETURNING id, user_id, created_at
    `, uuid.New().String(), userID, time.Now()).StructScan(&cart)
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *PGRepository) GetItem(ctx context.Context, cartID, productID string) (*model.CartItem, error) {
	var item model.CartItem
	err := r.DB.GetContext(ctx, &item,
		"SELECT id, cart_id, product_id, quantity FROM cart_items WHERE cart_id = $1 AND product_id = $2",
		cartID, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *PGRepository) UpsertItem(ctx context.Context, item *model.CartItem) error {
	_, err := r.DB.ExecContext(ctx, `
        INSERT INTO cart_items (id, cart_id, product_id, quantity)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (cart_id, product_id) DO UPDATE SET quantity = EXCLUDED.quantity
    `, item.ID, item.CartID, item.ProductID, item.Quantity)
	return err
}

func (r *PGRepository) DeleteItem(ctx context.Context, cartID, productID string) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2", cartID, productID)
	return err
}
