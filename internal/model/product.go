package model

import "github.com/shopspring/decimal"

// Product is the authoritative record for one sellable item. Stock and price
// are mutated only through the product repository's transactional methods;
// every committed mutation bumps Version by exactly one.
type Product struct {
	BaseModel
	SKU         string          `db:"sku" json:"sku"`
	Name        string          `db:"name" json:"name"`
	Description string          `db:"description" json:"description"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Stock       int64           `db:"stock" json:"stock"`
	CategoryID  string          `db:"category_id" json:"category_id"`
	Version     int64           `db:"version" json:"version"`
}

type Category struct {
	BaseModel
	Name string `db:"name" json:"name"`
}
