package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/kopikita/cafereco/internal/engine"
)

type EvaluateHandler struct {
	evaluator    *engine.Evaluator
	validator    *validator.Validate
	defaultM     int
	defaultFolds int
}

func NewEvaluateHandler(evaluator *engine.Evaluator, defaultM, defaultFolds int) *EvaluateHandler {
	return &EvaluateHandler{
		evaluator:    evaluator,
		validator:    validator.New(),
		defaultM:     defaultM,
		defaultFolds: defaultFolds,
	}
}

type evaluateQuery struct {
	M     int `form:"m" validate:"gte=1"`
	Folds int `form:"folds" validate:"gte=1"`
}

// Get handles GET /evaluate?m=&folds=, applying configured defaults when
// either query parameter is absent (spec.md §6).
func (h *EvaluateHandler) Get(c *gin.Context) {
	req := evaluateQuery{M: h.defaultM, Folds: h.defaultFolds}
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "INVALID_QUERY_PARAMS", "message": err.Error()},
		})
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "INVALID_QUERY_PARAMS", "message": err.Error()},
		})
		return
	}

	report := h.evaluator.Evaluate(c.Request.Context(), req.M, req.Folds)
	c.JSON(http.StatusOK, report)
}
