package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-adp-scoring/internal/dto"
	"github.com/noah-isme/sma-adp-scoring/internal/models"
	"github.com/noah-isme/sma-adp-scoring/internal/scoring"
	appErrors "github.com/noah-isme/sma-adp-scoring/pkg/errors"
)

type schemeServiceMock struct {
	schemes    map[string]*models.AssessmentScheme
	createErr  error
	lastFilter models.SchemeFilter
}

func (m *schemeServiceMock) List(ctx context.Context, filter models.SchemeFilter) ([]models.AssessmentScheme, error) {
	m.lastFilter = filter
	return nil, nil
}

func (m *schemeServiceMock) Get(ctx context.Context, schoolID, id string) (*models.AssessmentScheme, error) {
	scheme, ok := m.schemes[id]
	if !ok || scheme.SchoolID != schoolID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "assessment scheme not found")
	}
	return scheme, nil
}

func (m *schemeServiceMock) Create(ctx context.Context, schoolID string, req dto.CreateAssessmentSchemeRequest) (*models.AssessmentScheme, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	return &models.AssessmentScheme{ID: "scheme-new", SchoolID: schoolID, ClassID: req.ClassID}, nil
}

func (m *schemeServiceMock) Update(ctx context.Context, schoolID, id string, req dto.UpdateAssessmentSchemeRequest) (*models.AssessmentScheme, error) {
	return nil, appErrors.Clone(appErrors.ErrFinalized, "assessment scheme is finalized")
}

func (m *schemeServiceMock) Finalize(ctx context.Context, schoolID, id string) (*models.AssessmentScheme, error) {
	scheme, err := m.Get(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	scheme.Finalized = true
	return scheme, nil
}

type recalcSchedulerMock struct {
	enqueued []string
}

func (m *recalcSchedulerMock) Enqueue(ctx context.Context, schoolID, schemeID string) (*dto.RecalculationStatus, error) {
	m.enqueued = append(m.enqueued, schemeID)
	return &dto.RecalculationStatus{JobID: "job-1", SchemeID: schemeID, State: "queued"}, nil
}

func (m *recalcSchedulerMock) Status(jobID string) (*dto.RecalculationStatus, error) {
	if jobID != "job-1" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "recalculation job not found")
	}
	return &dto.RecalculationStatus{JobID: jobID, State: "completed", Updated: 3}, nil
}

func newSchemeHandlerFixture() (*AssessmentSchemeHandler, *schemeServiceMock, *recalcSchedulerMock) {
	svc := &schemeServiceMock{schemes: map[string]*models.AssessmentScheme{
		"scheme-1": {ID: "scheme-1", SchoolID: "school-1"},
	}}
	recalcs := &recalcSchedulerMock{}
	return NewAssessmentSchemeHandler(svc, recalcs), svc, recalcs
}

func TestAssessmentSchemeHandlerCreate(t *testing.T) {
	h, _, _ := newSchemeHandlerFixture()
	req := dto.CreateAssessmentSchemeRequest{ClassID: "class-1", SubjectID: "math", TermID: "term-1", Config: scoring.AssessmentConfig{NumberOfCAs: 2}}
	c, w := newTestContext(http.MethodPost, "/assessment-schemes", req, adminClaims())

	h.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"class_id":"class-1"`)
}

func TestAssessmentSchemeHandlerCreateConfigurationError(t *testing.T) {
	h, svc, _ := newSchemeHandlerFixture()
	svc.createErr = appErrors.WithDetails(appErrors.ErrConfiguration, "invalid assessment configuration", []string{"weights must sum to 100, got 90"})
	c, w := newTestContext(http.MethodPost, "/assessment-schemes", dto.CreateAssessmentSchemeRequest{}, adminClaims())

	h.Create(c)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "CONFIGURATION_ERROR", env.Error.Code)
}

func TestAssessmentSchemeHandlerUpdateFinalized(t *testing.T) {
	h, _, _ := newSchemeHandlerFixture()
	c, w := newTestContext(http.MethodPut, "/assessment-schemes/scheme-1", dto.UpdateAssessmentSchemeRequest{}, adminClaims())
	c.Params = gin.Params{{Key: "id", Value: "scheme-1"}}

	h.Update(c)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAssessmentSchemeHandlerListFilters(t *testing.T) {
	h, svc, _ := newSchemeHandlerFixture()
	c, w := newTestContext(http.MethodGet, "/assessment-schemes?classId=class-1&termId=term-1", nil, adminClaims())

	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.SchemeFilter{SchoolID: "school-1", ClassID: "class-1", TermID: "term-1"}, svc.lastFilter)
}

func TestAssessmentSchemeHandlerFinalize(t *testing.T) {
	h, _, _ := newSchemeHandlerFixture()
	c, w := newTestContext(http.MethodPost, "/assessment-schemes/scheme-1/finalize", nil, adminClaims())
	c.Params = gin.Params{{Key: "id", Value: "scheme-1"}}

	h.Finalize(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"finalized":true`)
}

func TestAssessmentSchemeHandlerRecalculate(t *testing.T) {
	h, _, recalcs := newSchemeHandlerFixture()

	c, w := newTestContext(http.MethodPost, "/assessment-schemes/scheme-1/recalculate", nil, adminClaims())
	c.Params = gin.Params{{Key: "id", Value: "scheme-1"}}
	h.Recalculate(c)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, []string{"scheme-1"}, recalcs.enqueued)

	other := &models.JWTClaims{UserID: "admin-2", SchoolID: "school-2", Role: models.RoleAdmin}
	c, w = newTestContext(http.MethodPost, "/assessment-schemes/scheme-1/recalculate", nil, other)
	c.Params = gin.Params{{Key: "id", Value: "scheme-1"}}
	h.Recalculate(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Len(t, recalcs.enqueued, 1)
}

func TestAssessmentSchemeHandlerRecalculationStatus(t *testing.T) {
	h, _, _ := newSchemeHandlerFixture()

	c, w := newTestContext(http.MethodGet, "/recalculations/job-1", nil, adminClaims())
	c.Params = gin.Params{{Key: "jobId", Value: "job-1"}}
	h.RecalculationStatus(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"state":"completed"`)

	c, w = newTestContext(http.MethodGet, "/recalculations/missing", nil, adminClaims())
	c.Params = gin.Params{{Key: "jobId", Value: "missing"}}
	h.RecalculationStatus(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
