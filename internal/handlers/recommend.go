// Package handlers adapts the engine's two operations to HTTP (spec.md
// §6).
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/kopikita/cafereco/internal/engine"
)

type RecommendHandler struct {
	recommender *engine.Recommender
	validator   *validator.Validate
}

func NewRecommendHandler(recommender *engine.Recommender) *RecommendHandler {
	return &RecommendHandler{recommender: recommender, validator: validator.New()}
}

type recommendParams struct {
	UserID int `uri:"user_id" validate:"gte=0"`
}

// Get handles GET /recommend/:user_id. A non-integer user id is an
// InvalidInputError per spec.md §7, surfaced as 400.
func (h *RecommendHandler) Get(c *gin.Context) {
	var params recommendParams
	if err := c.ShouldBindUri(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "INVALID_USER_ID", "message": "user_id must be an integer"},
		})
		return
	}
	if err := h.validator.Struct(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "INVALID_USER_ID", "message": "user_id must be an integer"},
		})
		return
	}

	resp := h.recommender.Recommend(c.Request.Context(), params.UserID)
	c.JSON(http.StatusOK, resp)
}
