package dto

type CheckoutItem struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int64  `json:"quantity" binding:"required"`
}

type CheckoutInput struct {
	Items []CheckoutItem `json:"items"`
}
