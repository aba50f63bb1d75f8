package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-adp-scoring/internal/dto"
	"github.com/noah-isme/sma-adp-scoring/internal/models"
	"github.com/noah-isme/sma-adp-scoring/pkg/response"
)

type assessmentSchemeService interface {
	List(ctx context.Context, filter models.SchemeFilter) ([]models.AssessmentScheme, error)
	Get(ctx context.Context, schoolID, id string) (*models.AssessmentScheme, error)
	Create(ctx context.Context, schoolID string, req dto.CreateAssessmentSchemeRequest) (*models.AssessmentScheme, error)
	Update(ctx context.Context, schoolID, id string, req dto.UpdateAssessmentSchemeRequest) (*models.AssessmentScheme, error)
	Finalize(ctx context.Context, schoolID, id string) (*models.AssessmentScheme, error)
}

type recalculationScheduler interface {
	Enqueue(ctx context.Context, schoolID, schemeID string) (*dto.RecalculationStatus, error)
	Status(jobID string) (*dto.RecalculationStatus, error)
}

// AssessmentSchemeHandler exposes assessment scheme endpoints.
type AssessmentSchemeHandler struct {
	schemes assessmentSchemeService
	recalcs recalculationScheduler
}

// NewAssessmentSchemeHandler constructs handler.
func NewAssessmentSchemeHandler(schemes assessmentSchemeService, recalcs recalculationScheduler) *AssessmentSchemeHandler {
	return &AssessmentSchemeHandler{schemes: schemes, recalcs: recalcs}
}

// List godoc
// @Summary List assessment schemes
// @Tags Assessment Schemes
// @Produce json
// @Param classId query string false "Filter by class"
// @Param subjectId query string false "Filter by subject"
// @Param termId query string false "Filter by term"
// @Success 200 {object} response.Envelope
// @Router /assessment-schemes [get]
func (h *AssessmentSchemeHandler) List(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	filter := models.SchemeFilter{SchoolID: claims.SchoolID, ClassID: c.Query("classId"), SubjectID: c.Query("subjectId"), TermID: c.Query("termId")}
	schemes, err := h.schemes.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schemes, nil)
}

// Get godoc
// @Summary Get assessment scheme
// @Tags Assessment Schemes
// @Produce json
// @Param id path string true "Scheme ID"
// @Success 200 {object} response.Envelope
// @Router /assessment-schemes/{id} [get]
func (h *AssessmentSchemeHandler) Get(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	scheme, err := h.schemes.Get(c.Request.Context(), claims.SchoolID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, scheme, nil)
}

// Create godoc
// @Summary Create assessment scheme
// @Tags Assessment Schemes
// @Accept json
// @Produce json
// @Param payload body dto.CreateAssessmentSchemeRequest true "Scheme payload"
// @Success 201 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /assessment-schemes [post]
func (h *AssessmentSchemeHandler) Create(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.CreateAssessmentSchemeRequest
	if !bindJSON(c, &req) {
		return
	}
	scheme, err := h.schemes.Create(c.Request.Context(), claims.SchoolID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, scheme)
}

// Update godoc
// @Summary Update assessment scheme
// @Tags Assessment Schemes
// @Accept json
// @Produce json
// @Param id path string true "Scheme ID"
// @Param payload body dto.UpdateAssessmentSchemeRequest true "Scheme payload"
// @Success 200 {object} response.Envelope
// @Router /assessment-schemes/{id} [put]
func (h *AssessmentSchemeHandler) Update(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.UpdateAssessmentSchemeRequest
	if !bindJSON(c, &req) {
		return
	}
	scheme, err := h.schemes.Update(c.Request.Context(), claims.SchoolID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, scheme, nil)
}

// Finalize godoc
// @Summary Finalize assessment scheme
// @Tags Assessment Schemes
// @Produce json
// @Param id path string true "Scheme ID"
// @Success 200 {object} response.Envelope
// @Router /assessment-schemes/{id}/finalize [post]
func (h *AssessmentSchemeHandler) Finalize(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	scheme, err := h.schemes.Finalize(c.Request.Context(), claims.SchoolID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, scheme, nil)
}

// Recalculate godoc
// @Summary Recalculate stored scores of a scheme
// @Tags Assessment Schemes
// @Produce json
// @Param id path string true "Scheme ID"
// @Success 202 {object} response.Envelope
// @Router /assessment-schemes/{id}/recalculate [post]
func (h *AssessmentSchemeHandler) Recalculate(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	scheme, err := h.schemes.Get(c.Request.Context(), claims.SchoolID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	status, err := h.recalcs.Enqueue(c.Request.Context(), claims.SchoolID, scheme.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, status, nil)
}

// RecalculationStatus godoc
// @Summary Get recalculation job status
// @Tags Assessment Schemes
// @Produce json
// @Param jobId path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /recalculations/{jobId} [get]
func (h *AssessmentSchemeHandler) RecalculationStatus(c *gin.Context) {
	if requireClaims(c) == nil {
		return
	}
	status, err := h.recalcs.Status(c.Param("jobId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}
