package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/storelabs/storefront-service/internal/category"
	"github.com/storelabs/storefront-service/internal/category/dto"
	"github.com/storelabs/storefront-service/internal/pkg/httpx"
	"github.com/storelabs/storefront-service/internal/pkg/logger"
	"go.uber.org/zap"
)

type CategoryHandler struct {
	uc     category.UseCase
	logger logger.Logger
}

func NewCategoryHandler(uc category.UseCase, log logger.Logger) *CategoryHandler {
	return &CategoryHandler{uc: uc, logger: log}
}

func (h *CategoryHandler) List(c *gin.Context) {
	var filters dto.CategoryFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	categories, count, err := h.uc.ListCategories(c.Request.Context(), &filters)
	if err != nil {
		h.logger.Error("list categories failed", zap.Error(err))
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": categories, "total": count})
}

func (h *CategoryHandler) Create(c *gin.Context) {
	var input dto.CreateCategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cat, err := h.uc.CreateCategory(c.Request.Context(), &input)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	if err := h.uc.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}
