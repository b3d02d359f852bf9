package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

// Checkout is all-or-nothing, so there is no persisted pending or failed
// state: an order row exists only once everything committed.
const OrderStatusPaid OrderStatus = "PAID"

type Order struct {
	ID        string          `db:"id" json:"id"`
	UserID    string          `db:"user_id" json:"user_id"`
	Total     decimal.Decimal `db:"total" json:"total"`
	Status    OrderStatus     `db:"status" json:"status"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	Items     []OrderItem     `db:"-" json:"items"`
}

// OrderItem freezes the unit price read during the locked phase of checkout.
// Later price changes never touch historical orders.
type OrderItem struct {
	ID        string          `db:"id" json:"id"`
	OrderID   string          `db:"order_id" json:"order_id"`
	ProductID string          `db:"product_id" json:"product_id"`
	Quantity  int64           `db:"quantity" json:"quantity"`
	Price     decimal.Decimal `db:"price" json:"price"`
}
