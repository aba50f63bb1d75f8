package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-adp-scoring/internal/dto"
	"github.com/noah-isme/sma-adp-scoring/internal/middleware"
	"github.com/noah-isme/sma-adp-scoring/internal/models"
	appErrors "github.com/noah-isme/sma-adp-scoring/pkg/errors"
	"github.com/noah-isme/sma-adp-scoring/pkg/response"
)

type termResultService interface {
	Get(ctx context.Context, schoolID, studentID, termID string, publishedOnly bool) (*dto.TermResultResponse, bool, error)
}

// TermResultHandler exposes term summaries.
type TermResultHandler struct {
	results termResultService
}

// NewTermResultHandler constructs handler.
func NewTermResultHandler(results termResultService) *TermResultHandler {
	return &TermResultHandler{results: results}
}

// Get godoc
// @Summary Get a student's term result
// @Description Parents and students only see published subject scores.
// @Tags Term Results
// @Produce json
// @Param studentId path string true "Student ID"
// @Param termId path string true "Term ID"
// @Success 200 {object} response.Envelope
// @Router /students/{studentId}/term-results/{termId} [get]
func (h *TermResultHandler) Get(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	studentID := c.Param("studentId")
	if !claims.CanViewStudent(studentID) {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "student not accessible"))
		return
	}
	publishedOnly := claims.Role == models.RoleParent || claims.Role == models.RoleStudent

	result, hit, err := h.results.Get(c.Request.Context(), claims.SchoolID, studentID, c.Param("termId"), publishedOnly)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, result, nil, middleware.ExtractMeta(c))
}
