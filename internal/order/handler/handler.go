package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/storelabs/storefront-service/internal/auth"
	"github.com/storelabs/storefront-service/internal/order"
	"github.com/storelabs/storefront-service/internal/order/dto"
	"github.com/storelabs/storefront-service/internal/pkg/httpx"
	"github.com/storelabs/storefront-service/internal/pkg/logger"
	"go.uber.org/zap"
)

type OrderHandler struct {
	uc     order.UseCase
	logger logger.Logger
}

func NewOrderHandler(uc order.UseCase, log logger.Logger) *OrderHandler {
	return &OrderHandler{uc: uc, logger: log}
}

func (h *OrderHandler) Checkout(c *gin.Context) {
	var input dto.CheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := auth.UserID(c.Request.Context())
	o, err := h.uc.Checkout(c.Request.Context(), userID, input.Items)
	if err != nil {
		h.logger.Warn("checkout rejected", zap.Error(err), zap.String("user_id", userID))
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "order created", "order": o})
}

func (h *OrderHandler) Get(c *gin.Context) {
	userID := auth.UserID(c.Request.Context())
	o, err := h.uc.GetOrder(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	userID := auth.UserID(c.Request.Context())
	orders, count, err := h.uc.ListOrders(c.Request.Context(), userID, page, limit)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": orders, "total": count})
}
