package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-adp-scoring/internal/dto"
	"github.com/noah-isme/sma-adp-scoring/internal/models"
	"github.com/noah-isme/sma-adp-scoring/pkg/response"
)

type gradingSchemeService interface {
	List(ctx context.Context, schoolID, termID string) ([]models.GradingScheme, error)
	Get(ctx context.Context, schoolID, id string) (*models.GradingScheme, error)
	Create(ctx context.Context, schoolID string, req dto.CreateGradingSchemeRequest) (*models.GradingScheme, error)
	Update(ctx context.Context, schoolID, id string, req dto.UpdateGradingSchemeRequest) (*models.GradingScheme, error)
}

// GradingSchemeHandler exposes grade boundary table endpoints.
type GradingSchemeHandler struct {
	schemes gradingSchemeService
}

// NewGradingSchemeHandler constructs handler.
func NewGradingSchemeHandler(schemes gradingSchemeService) *GradingSchemeHandler {
	return &GradingSchemeHandler{schemes: schemes}
}

// List godoc
// @Summary List grading schemes
// @Tags Grading Schemes
// @Produce json
// @Param termId query string false "Filter by term"
// @Success 200 {object} response.Envelope
// @Router /grading-schemes [get]
func (h *GradingSchemeHandler) List(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	schemes, err := h.schemes.List(c.Request.Context(), claims.SchoolID, c.Query("termId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schemes, nil)
}

// Get godoc
// @Summary Get grading scheme
// @Tags Grading Schemes
// @Produce json
// @Param id path string true "Grading scheme ID"
// @Success 200 {object} response.Envelope
// @Router /grading-schemes/{id} [get]
func (h *GradingSchemeHandler) Get(c *gin.Context) {
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
// @Summary Create grading scheme
// @Tags Grading Schemes
// @Accept json
// @Produce json
// @Param payload body dto.CreateGradingSchemeRequest true "Grading scheme payload"
// @Success 201 {object} response.Envelope
// @Router /grading-schemes [post]
func (h *GradingSchemeHandler) Create(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.CreateGradingSchemeRequest
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
// @Summary Update grading scheme
// @Tags Grading Schemes
// @Accept json
// @Produce json
// @Param id path string true "Grading scheme ID"
// @Param payload body dto.UpdateGradingSchemeRequest true "Grading scheme payload"
// @Success 200 {object} response.Envelope
// @Router /grading-schemes/{id} [put]
func (h *GradingSchemeHandler) Update(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.UpdateGradingSchemeRequest
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
