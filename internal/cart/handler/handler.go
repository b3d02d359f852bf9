package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/storelabs/storefront-service/internal/auth"
	"github.com/storelabs/storefront-service/internal/cart"
	"github.com/storelabs/storefront-service/internal/pkg/httpx"
	"github.com/storelabs/storefront-service/internal/pkg/logger"
	"go.uber.org/zap"
)

type CartHandler struct {
	uc     cart.UseCase
	logger logger.Logger
}

func NewCartHandler(uc cart.UseCase, log logger.Logger) *CartHandler {
	return &CartHandler{uc: uc, logger: log}
}

type cartItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int64  `json:"quantity"`
}

func (h *CartHandler) Get(c *gin.Context) {
	userID := auth.UserID(c.Request.Context())
	result, err := h.uc.GetCart(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("get cart failed", zap.Error(err), zap.String("user_id", userID))
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *CartHandler) Add(c *gin.Context) {
	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := auth.UserID(c.Request.Context())
	result, err := h.uc.AddToCart(c.Request.Context(), userID, req.ProductID, req.Quantity)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *CartHandler) Update(c *gin.Context) {
	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := auth.UserID(c.Request.Context())
	if err := h.uc.UpdateItem(c.Request.Context(), userID, req.ProductID, req.Quantity); err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "updated"})
}

func (h *CartHandler) Remove(c *gin.Context) {
	userID := auth.UserID(c.Request.Context())
	if err := h.uc.RemoveItem(c.Request.Context(), userID, c.Param("productId")); err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "removed"})
}
