package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/storelabs/storefront-service/internal/pkg/httpx"
	"github.com/storelabs/storefront-service/internal/pkg/logger"
	"github.com/storelabs/storefront-service/internal/product"
	"github.com/storelabs/storefront-service/internal/product/dto"
	"go.uber.org/zap"
)

type ProductHandler struct {
	uc     product.UseCase
	logger logger.Logger
}

func NewProductHandler(uc product.UseCase, log logger.Logger) *ProductHandler {
	return &ProductHandler{uc: uc, logger: log}
}

func (h *ProductHandler) List(c *gin.Context) {
	var filters dto.ProductFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if filters.Limit <= 0 {
		filters.Limit = 20
	}

	products, count, err := h.uc.ListProducts(c.Request.Context(), &filters)
	if err != nil {
		h.logger.Error("list products failed", zap.Error(err))
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": products, "total": count})
}

func (h *ProductHandler) Get(c *gin.Context) {
	p, err := h.uc.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) Create(c *gin.Context) {
	var input dto.CreateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.uc.CreateProduct(c.Request.Context(), &input)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *ProductHandler) Restock(c *gin.Context) {
	var input dto.RestockInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.uc.Restock(c.Request.Context(), c.Param("id"), input.Qty, input.Reference)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) AdjustStock(c *gin.Context) {
	var input dto.AdjustStockInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input.ProductID = c.Param("id")

	p, err := h.uc.AdjustStock(c.Request.Context(), &input)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) AdjustPrice(c *gin.Context) {
	var input dto.AdjustPriceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.uc.AdjustPrice(c.Request.Context(), c.Param("id"), input.Price)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) ListLedger(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	entries, count, err := h.uc.ListLedger(c.Request.Context(), c.Param("id"), page, limit)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entries, "total": count})
}
