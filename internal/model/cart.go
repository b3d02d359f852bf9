package model

import "time"

// Cart is created lazily on the first add. One active cart per user.
type Cart struct {
	ID        string     `db:"id" json:"id"`
	UserID    string     `db:"user_id" json:"user_id"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	Items     []CartItem `db:"-" json:"items"`
}

// CartItem holds one (cart, product) pair. Stored quantity is always >= 1;
// an update to zero deletes the row.
type CartItem struct {
	ID        string   `db:"id" json:"id"`
	CartID    string   `db:"cart_id" json:"cart_id"`
	ProductID string   `db:"product_id" json:"product_id"`
	Quantity  int64    `db:"quantity" json:"quantity"`
	Product   *Product `db:"-" json:"product,omitempty"`
}
