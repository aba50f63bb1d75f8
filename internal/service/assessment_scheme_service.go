package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-scoring/internal/dto"
	"github.com/noah-isme/sma-adp-scoring/internal/models"
	"github.com/noah-isme/sma-adp-scoring/internal/scoring"
	appErrors "github.com/noah-isme/sma-adp-scoring/pkg/errors"
	"github.com/noah-isme/sma-adp-scoring/pkg/logger"
)

type assessmentSchemeRepository interface {
	List(ctx context.Context, filter models.SchemeFilter) ([]models.AssessmentScheme, error)
	FindByID(ctx context.Context, schoolID, id string) (*models.AssessmentScheme, error)
	Exists(ctx context.Context, schoolID, classID, subjectID, termID, excludeID string) (bool, error)
	Create(ctx context.Context, scheme *models.AssessmentScheme) error
	Update(ctx context.Context, scheme *models.AssessmentScheme) error
	Finalize(ctx context.Context, schoolID, id string, finalized bool) error
}

// AssessmentSchemeService manages assessment configuration authoring.
type AssessmentSchemeService struct {
	repo      assessmentSchemeRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAssessmentSchemeService constructs service.
func NewAssessmentSchemeService(repo assessmentSchemeRepository, validate *validator.Validate, logger *zap.Logger) *AssessmentSchemeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssessmentSchemeService{repo: repo, validator: validate, logger: logger}
}

// List returns the school's schemes matching filter.
func (s *AssessmentSchemeService) List(ctx context.Context, filter models.SchemeFilter) ([]models.AssessmentScheme, error) {
	schemes, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assessment schemes")
	}
	return schemes, nil
}

// Get returns a scheme by ID.
func (s *AssessmentSchemeService) Get(ctx context.Context, schoolID, id string) (*models.AssessmentScheme, error) {
	scheme, err := s.repo.FindByID(ctx, schoolID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assessment scheme not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assessment scheme")
	}
	return scheme, nil
}

// Create validates and stores a new scheme. Only one scheme may exist per scope.
func (s *AssessmentSchemeService) Create(ctx context.Context, schoolID string, req dto.CreateAssessmentSchemeRequest) (*models.AssessmentScheme, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assessment scheme payload")
	}
	cfg, err := s.prepareConfig(ctx, req.Config, nil)
	if err != nil {
		return nil, err
	}
	exists, err := s.repo.Exists(ctx, schoolID, req.ClassID, req.SubjectID, req.TermID, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate assessment scheme")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "assessment scheme already exists for scope")
	}
	scheme := &models.AssessmentScheme{
		SchoolID:  schoolID,
		ClassID:   req.ClassID,
		SubjectID: req.SubjectID,
		TermID:    req.TermID,
		Config:    models.AssessmentConfigColumn{AssessmentConfig: cfg},
	}
	if err := s.repo.Create(ctx, scheme); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assessment scheme")
	}
	return scheme, nil
}

// Update replaces the configuration of a scheme that is not finalized. Stored scores
// keep their previous calculation until an explicit recalculation is requested.
func (s *AssessmentSchemeService) Update(ctx context.Context, schoolID, id string, req dto.UpdateAssessmentSchemeRequest) (*models.AssessmentScheme, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assessment scheme payload")
	}
	scheme, err := s.Get(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	if scheme.Finalized {
		return nil, appErrors.Clone(appErrors.ErrFinalized, "assessment scheme finalized")
	}
	cfg, err := s.prepareConfig(ctx, req.Config, scheme.Config.CAConfigs)
	if err != nil {
		return nil, err
	}
	scheme.Config = models.AssessmentConfigColumn{AssessmentConfig: cfg}
	if err := s.repo.Update(ctx, scheme); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assessment scheme not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update assessment scheme")
	}
	return scheme, nil
}

// Finalize locks the scheme structure.
func (s *AssessmentSchemeService) Finalize(ctx context.Context, schoolID, id string) (*models.AssessmentScheme, error) {
	scheme, err := s.Get(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	if scheme.Finalized {
		return scheme, nil
	}
	if err := s.repo.Finalize(ctx, schoolID, id, true); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to finalize assessment scheme")
	}
	scheme.Finalized = true
	return scheme, nil
}

// prepareConfig pins component keys, derives the sum total when omitted and runs the
// authoring checks. stored holds the components of the scheme being updated.
func (s *AssessmentSchemeService) prepareConfig(ctx context.Context, cfg scoring.AssessmentConfig, stored []scoring.AssessmentComponentConfig) (scoring.AssessmentConfig, error) {
	cfg.CAConfigs = pinComponentKeys(cfg.CAConfigs, stored)

	if cfg.CalculationMethod == scoring.MethodSum && cfg.TotalMaxScore == 0 {
		cfg.TotalMaxScore = componentMaxTotal(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, configurationError(ctx, s.logger, err, "invalid assessment configuration")
	}
	return cfg, nil
}

// pinComponentKeys fills in missing component keys. A component keeps the key of the
// stored component with the same name, then of the stored component at its position
// (a rename); anything left is derived from its name. Stored scores stay attached to
// their component when CAs are reordered or renamed.
func pinComponentKeys(cas, stored []scoring.AssessmentComponentConfig) []scoring.AssessmentComponentConfig {
	byName := make(map[string]string, len(stored))
	for i, ca := range stored {
		if _, ok := byName[ca.Name]; !ok {
			byName[ca.Name] = ca.Key(i)
		}
	}

	out := make([]scoring.AssessmentComponentConfig, len(cas))
	claimed := make(map[string]bool, len(cas))
	for i, ca := range cas {
		if ca.ComponentKey == "" {
			if key, ok := byName[ca.Name]; ok && !claimed[key] {
				ca.ComponentKey = key
			}
		}
		if ca.ComponentKey != "" {
			claimed[ca.ComponentKey] = true
		}
		out[i] = ca
	}
	for i := range out {
		if out[i].ComponentKey != "" {
			continue
		}
		if i < len(stored) {
			if key := stored[i].Key(i); !claimed[key] {
				out[i].ComponentKey = key
				claimed[key] = true
				continue
			}
		}
		out[i].ComponentKey = out[i].DerivedKey(i)
		claimed[out[i].ComponentKey] = true
	}
	return out
}

func componentMaxTotal(cfg scoring.AssessmentConfig) float64 {
	var total float64
	for _, ca := range cfg.CAConfigs {
		total += ca.MaxScore
	}
	if cfg.Exam.Enabled {
		total += cfg.Exam.MaxScore
	}
	if cfg.Project.Enabled {
		total += cfg.Project.MaxScore
	}
	return total
}

// configurationError maps an engine ConfigurationError to the API error carrying
// every problem as a detail.
func configurationError(ctx context.Context, log *zap.Logger, err error, message string) error {
	var cfgErr *scoring.ConfigurationError
	if errors.As(err, &cfgErr) {
		logger.WithContext(ctx, log).Info("configuration rejected", zap.Strings("problems", cfgErr.Problems))
		return appErrors.WithDetails(appErrors.ErrConfiguration, message, cfgErr.Problems)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}
