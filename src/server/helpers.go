package server

import (
	"fmt"
	"net/http"

	"token-pulse/src/helpers"
	"token-pulse/src/models"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------

// categoryParam reads :category, answering 400 when it is not a column
func categoryParam(c *gin.Context) (models.TokenCategory, bool) {
	category := models.TokenCategory(c.Param("category"))
	if !category.IsValid() {
		abortWithError(c, http.StatusBadRequest, fmt.Errorf("%q: %w", category, helpers.ErrInvalidCategory))
		return "", false
	}
	return category, true
}

// -----------------------------------------------------------------------------

func bindJSON(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		abortWithError(c, http.StatusBadRequest, helpers.NewValidationError("malformed request body", err))
		return false
	}
	return true
}

// -----------------------------------------------------------------------------

func abortWithError(c *gin.Context, code int, err error) {
	c.AbortWithStatusJSON(code, gin.H{"error": err.Error()})
}
