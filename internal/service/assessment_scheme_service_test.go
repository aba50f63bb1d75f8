package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-scoring/internal/dto"
	"github.com/noah-isme/sma-adp-scoring/internal/models"
	"github.com/noah-isme/sma-adp-scoring/internal/scoring"
	appErrors "github.com/noah-isme/sma-adp-scoring/pkg/errors"
)

type mockSchemeRepo struct {
	schemes   map[string]*models.AssessmentScheme
	exists    bool
	finalized map[string]bool
}

func (m *mockSchemeRepo) List(ctx context.Context, filter models.SchemeFilter) ([]models.AssessmentScheme, error) {
	var out []models.AssessmentScheme
	for _, s := range m.schemes {
		if s.SchoolID == filter.SchoolID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *mockSchemeRepo) FindByID(ctx context.Context, schoolID, id string) (*models.AssessmentScheme, error) {
	if s, ok := m.schemes[id]; ok && s.SchoolID == schoolID {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSchemeRepo) Exists(ctx context.Context, schoolID, classID, subjectID, termID, excludeID string) (bool, error) {
	return m.exists, nil
}

func (m *mockSchemeRepo) Create(ctx context.Context, scheme *models.AssessmentScheme) error {
	if m.schemes == nil {
		m.schemes = make(map[string]*models.AssessmentScheme)
	}
	scheme.ID = "scheme-1"
	m.schemes[scheme.ID] = scheme
	return nil
}

func (m *mockSchemeRepo) Update(ctx context.Context, scheme *models.AssessmentScheme) error {
	m.schemes[scheme.ID] = scheme
	return nil
}

func (m *mockSchemeRepo) Finalize(ctx context.Context, schoolID, id string, finalized bool) error {
	if m.finalized == nil {
		m.finalized = make(map[string]bool)
	}
	m.finalized[id] = finalized
	return nil
}

func fp(v float64) *float64 { return &v }

func sumConfig() scoring.AssessmentConfig {
	return scoring.AssessmentConfig{
		NumberOfCAs: 2,
		CAConfigs: []scoring.AssessmentComponentConfig{
			{Name: "CA1", MaxScore: 15},
			{Name: "CA2", MaxScore: 15, IsOptional: true},
		},
		Exam:              scoring.ExamConfig{Enabled: true, Name: "Exam", MaxScore: 70},
		CalculationMethod: scoring.MethodSum,
		TotalMaxScore:     100,
	}
}

func TestAssessmentSchemeServiceCreatePinsKeys(t *testing.T) {
	repo := &mockSchemeRepo{}
	svc := NewAssessmentSchemeService(repo, validator.New(), zap.NewNop())

	cfg := sumConfig()
	cfg.TotalMaxScore = 0
	cfg.CAConfigs[1].ComponentKey = "test-1"
	scheme, err := svc.Create(context.Background(), "school-1", dto.CreateAssessmentSchemeRequest{
		ClassID: "class-1", SubjectID: "math", TermID: "term-1", Config: cfg,
	})
	require.NoError(t, err)
	assert.Equal(t, "school-1", scheme.SchoolID)
	assert.Equal(t, "ca1", scheme.Config.CAConfigs[0].ComponentKey)
	assert.Equal(t, "test-1", scheme.Config.CAConfigs[1].ComponentKey)
	assert.Equal(t, 100.0, scheme.Config.TotalMaxScore)
}

func TestAssessmentSchemeServiceCreateSlugsCustomNames(t *testing.T) {
	svc := NewAssessmentSchemeService(&mockSchemeRepo{}, validator.New(), zap.NewNop())

	cfg := sumConfig()
	cfg.CAConfigs[1].Name = "Test 1"
	scheme, err := svc.Create(context.Background(), "school-1", dto.CreateAssessmentSchemeRequest{
		ClassID: "class-1", SubjectID: "math", TermID: "term-1", Config: cfg,
	})
	require.NoError(t, err)
	assert.Equal(t, "ca1", scheme.Config.CAConfigs[0].ComponentKey)
	assert.Equal(t, "test-1", scheme.Config.CAConfigs[1].ComponentKey)
}

func TestAssessmentSchemeServiceUpdateKeepsKeys(t *testing.T) {
	stored := sumConfig()
	stored.CAConfigs[0].ComponentKey = "ca1"
	stored.CAConfigs[1].ComponentKey = "ca2"
	repo := &mockSchemeRepo{schemes: map[string]*models.AssessmentScheme{
		"scheme-1": {ID: "scheme-1", SchoolID: "school-1", Config: models.AssessmentConfigColumn{AssessmentConfig: stored}},
	}}
	svc := NewAssessmentSchemeService(repo, validator.New(), zap.NewNop())

	reordered := sumConfig()
	reordered.CAConfigs[0], reordered.CAConfigs[1] = reordered.CAConfigs[1], reordered.CAConfigs[0]
	scheme, err := svc.Update(context.Background(), "school-1", "scheme-1", dto.UpdateAssessmentSchemeRequest{Config: reordered})
	require.NoError(t, err)
	assert.Equal(t, "CA2", scheme.Config.CAConfigs[0].Name)
	assert.Equal(t, "ca2", scheme.Config.CAConfigs[0].ComponentKey)
	assert.Equal(t, "ca1", scheme.Config.CAConfigs[1].ComponentKey)

	renamed := scheme.Config.AssessmentConfig
	renamed.CAConfigs = []scoring.AssessmentComponentConfig{
		{Name: "Quiz", MaxScore: 15, IsOptional: true},
		{Name: "CA1", MaxScore: 15},
	}
	scheme, err = svc.Update(context.Background(), "school-1", "scheme-1", dto.UpdateAssessmentSchemeRequest{Config: renamed})
	require.NoError(t, err)
	assert.Equal(t, "ca2", scheme.Config.CAConfigs[0].ComponentKey)
	assert.Equal(t, "ca1", scheme.Config.CAConfigs[1].ComponentKey)
}

func TestAssessmentSchemeServiceCreateRejectsWeights(t *testing.T) {
	svc := NewAssessmentSchemeService(&mockSchemeRepo{}, validator.New(), zap.NewNop())

	cfg := sumConfig()
	cfg.CalculationMethod = scoring.MethodWeightedAverage
	cfg.CAConfigs[0].Weight = fp(20)
	cfg.CAConfigs[1].Weight = fp(20)
	cfg.Exam.Weight = fp(50)

	_, err := svc.Create(context.Background(), "school-1", dto.CreateAssessmentSchemeRequest{
		ClassID: "class-1", SubjectID: "math", TermID: "term-1", Config: cfg,
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConfiguration.Code, appErr.Code)
	assert.Contains(t, appErr.Details, "weights must sum to 100 (got 90)")
}

func TestAssessmentSchemeServiceCreateConflict(t *testing.T) {
	svc := NewAssessmentSchemeService(&mockSchemeRepo{exists: true}, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), "school-1", dto.CreateAssessmentSchemeRequest{
		ClassID: "class-1", SubjectID: "math", TermID: "term-1", Config: sumConfig(),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestAssessmentSchemeServiceUpdateFinalized(t *testing.T) {
	repo := &mockSchemeRepo{schemes: map[string]*models.AssessmentScheme{
		"scheme-1": {ID: "scheme-1", SchoolID: "school-1", Finalized: true, Config: models.AssessmentConfigColumn{AssessmentConfig: sumConfig()}},
	}}
	svc := NewAssessmentSchemeService(repo, validator.New(), zap.NewNop())

	_, err := svc.Update(context.Background(), "school-1", "scheme-1", dto.UpdateAssessmentSchemeRequest{Config: sumConfig()})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrFinalized.Code, appErrors.FromError(err).Code)
}

func TestAssessmentSchemeServiceGetOtherSchool(t *testing.T) {
	repo := &mockSchemeRepo{schemes: map[string]*models.AssessmentScheme{
		"scheme-1": {ID: "scheme-1", SchoolID: "school-1"},
	}}
	svc := NewAssessmentSchemeService(repo, validator.New(), zap.NewNop())

	_, err := svc.Get(context.Background(), "school-2", "scheme-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAssessmentSchemeServiceFinalize(t *testing.T) {
	repo := &mockSchemeRepo{schemes: map[string]*models.AssessmentScheme{
		"scheme-1": {ID: "scheme-1", SchoolID: "school-1"},
	}}
	svc := NewAssessmentSchemeService(repo, validator.New(), zap.NewNop())

	scheme, err := svc.Finalize(context.Background(), "school-1", "scheme-1")
	require.NoError(t, err)
	assert.True(t, scheme.Finalized)
	assert.True(t, repo.finalized["scheme-1"])
}
