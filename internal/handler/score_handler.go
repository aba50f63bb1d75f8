package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-adp-scoring/internal/dto"
	"github.com/noah-isme/sma-adp-scoring/internal/models"
	appErrors "github.com/noah-isme/sma-adp-scoring/pkg/errors"
	"github.com/noah-isme/sma-adp-scoring/pkg/response"
)

type scoreService interface {
	Preview(ctx context.Context, schoolID string, req dto.PreviewScoreRequest) (*dto.ScorePreviewResponse, error)
	Submit(ctx context.Context, schoolID, recordedBy string, req dto.SubmitScoreRequest) (*models.ScoreRecord, error)
	BulkSubmit(ctx context.Context, schoolID, recordedBy string, req dto.BulkScoreRequest) (*dto.BulkScoreResult, error)
	List(ctx context.Context, filter models.ScoreFilter) ([]models.ScoreRecord, error)
	Publish(ctx context.Context, schoolID, id string, published bool) (*models.ScoreRecord, error)
}

// ScoreHandler exposes score entry endpoints.
type ScoreHandler struct {
	scores scoreService
}

// NewScoreHandler constructs handler.
func NewScoreHandler(scores scoreService) *ScoreHandler {
	return &ScoreHandler{scores: scores}
}

// Preview godoc
// @Summary Preview score calculation
// @Description Runs validation, calculation and grading without saving. Invalid sheets still report totals.
// @Tags Scores
// @Accept json
// @Produce json
// @Param payload body dto.PreviewScoreRequest true "Score sheet"
// @Success 200 {object} response.Envelope
// @Router /scores/preview [post]
func (h *ScoreHandler) Preview(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.PreviewScoreRequest
	if !bindJSON(c, &req) {
		return
	}
	preview, err := h.scores.Preview(c.Request.Context(), claims.SchoolID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, preview, nil)
}

// Submit godoc
// @Summary Submit a student's scores
// @Tags Scores
// @Accept json
// @Produce json
// @Param payload body dto.SubmitScoreRequest true "Score sheet"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /scores [post]
func (h *ScoreHandler) Submit(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.SubmitScoreRequest
	if !bindJSON(c, &req) {
		return
	}
	record, err := h.scores.Submit(c.Request.Context(), claims.SchoolID, claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// BulkSubmit godoc
// @Summary Submit scores for many students
// @Tags Scores
// @Accept json
// @Produce json
// @Param payload body dto.BulkScoreRequest true "Bulk score sheets"
// @Success 200 {object} response.Envelope
// @Router /scores/bulk [post]
func (h *ScoreHandler) BulkSubmit(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.BulkScoreRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.scores.BulkSubmit(c.Request.Context(), claims.SchoolID, claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// List godoc
// @Summary List stored scores
// @Tags Scores
// @Produce json
// @Param schemeId query string false "Filter by scheme"
// @Param studentId query string false "Filter by student"
// @Param classId query string false "Filter by class"
// @Param subjectId query string false "Filter by subject"
// @Param termId query string false "Filter by term"
// @Success 200 {object} response.Envelope
// @Router /scores [get]
func (h *ScoreHandler) List(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	filter := models.ScoreFilter{
		SchoolID:  claims.SchoolID,
		SchemeID:  c.Query("schemeId"),
		StudentID: c.Query("studentId"),
		ClassID:   c.Query("classId"),
		SubjectID: c.Query("subjectId"),
		TermID:    c.Query("termId"),
	}
	records, err := h.scores.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// Publish godoc
// @Summary Publish or withdraw a score record
// @Tags Scores
// @Accept json
// @Produce json
// @Param id path string true "Score record ID"
// @Param payload body dto.PublishScoreRequest true "Publication flag"
// @Success 200 {object} response.Envelope
// @Router /scores/{id}/publish [put]
func (h *ScoreHandler) Publish(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.PublishScoreRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Published == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "published is required"))
		return
	}
	record, err := h.scores.Publish(c.Request.Context(), claims.SchoolID, c.Param("id"), *req.Published)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}
