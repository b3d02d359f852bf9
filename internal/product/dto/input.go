package dto

import "github.com/shopspring/decimal"

type CreateProductInput struct {
	SKU         string          `json:"sku" binding:"required,min=1"`
	Name        string          `json:"name" binding:"required,min=1"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Stock       int64           `json:"stock" binding:"min=0"`
	CategoryID  string          `json:"category_id" binding:"required"`
}

// AdjustStockInput is the manual-correction path. Delta may be negative;
// ExpectedVersion, when set, turns the write into a compare-and-set.
type AdjustStockInput struct {
	ProductID       string
	Delta           int64  `json:"delta" binding:"required"`
	ExpectedVersion *int64 `json:"expected_version"`
	Reference       string `json:"reference"`
}

type RestockInput struct {
	Qty       int64  `json:"qty" binding:"required"`
	Reference string `json:"reference"`
}

type AdjustPriceInput struct {
	Price decimal.Decimal `json:"price" binding:"required"`
}

type ProductFilters struct {
	Search     string `form:"search"`
	CategoryID string `form:"category"`
	Page       int    `form:"page"`
	Limit      int    `form:"limit"`
}
