package model

import "time"

type LedgerEntryType string

const (
	LedgerRestock    LedgerEntryType = "RESTOCK"
	LedgerSale       LedgerEntryType = "SALE"
	LedgerAdjustment LedgerEntryType = "ADJUSTMENT"
)

// StockLedgerEntry is an append-only audit record of one inventory delta.
// Rows are written in the same transaction as the product mutation they
// describe; for any product, initial stock plus the sum of ChangeQty equals
// the current stock at every quiescent point.
type StockLedgerEntry struct {
	ID        string          `db:"id" json:"id"`
	ProductID string          `db:"product_id" json:"product_id"`
	ChangeQty int64           `db:"change_qty" json:"change_qty"`
	Type      LedgerEntryType `db:"type" json:"type"`
	Reference string          `db:"reference" json:"reference"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}
