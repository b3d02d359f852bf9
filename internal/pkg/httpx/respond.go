// Package httpx maps use-case errors onto HTTP responses. It is the only
// place that knows both the error taxonomy and status codes.
package httpx

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/storelabs/storefront-service/internal/apperr"
)

func Error(c *gin.Context, err error) {
	if productID, ok := apperr.IsInsufficientStock(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      err.Error(),
			"product_id": productID,
		})
		return
	}

	switch {
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrEmptyCart),
		errors.Is(err, apperr.ErrInvalidQuantity),
		errors.Is(err, apperr.ErrInvalidPrice),
		errors.Is(err, apperr.ErrInvalidName),
		errors.Is(err, apperr.ErrConflict),
		errors.Is(err, apperr.ErrSKUExists),
		errors.Is(err, apperr.ErrCategoryExists),
		errors.Is(err, apperr.ErrCategoryInUse):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case apperr.IsTransient(err):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "temporarily unavailable, retry"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
