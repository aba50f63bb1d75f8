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
)

type gradingSchemeRepository interface {
	List(ctx context.Context, schoolID, termID string) ([]models.GradingScheme, error)
	FindByID(ctx context.Context, schoolID, id string) (*models.GradingScheme, error)
	FindByTerm(ctx context.Context, schoolID, termID string) (*models.GradingScheme, error)
	Create(ctx context.Context, scheme *models.GradingScheme) error
	Update(ctx context.Context, scheme *models.GradingScheme) error
}

// GradingSchemeService manages grade boundary tables and resolves the table in force
// for a term.
type GradingSchemeService struct {
	repo      gradingSchemeRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGradingSchemeService constructs service.
func NewGradingSchemeService(repo gradingSchemeRepository, validate *validator.Validate, logger *zap.Logger) *GradingSchemeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradingSchemeService{repo: repo, validator: validate, logger: logger}
}

// List returns grading schemes, optionally for one term.
func (s *GradingSchemeService) List(ctx context.Context, schoolID, termID string) ([]models.GradingScheme, error) {
	schemes, err := s.repo.List(ctx, schoolID, termID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grading schemes")
	}
	return schemes, nil
}

// Get returns a grading scheme by ID.
func (s *GradingSchemeService) Get(ctx context.Context, schoolID, id string) (*models.GradingScheme, error) {
	scheme, err := s.repo.FindByID(ctx, schoolID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grading scheme not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grading scheme")
	}
	return scheme, nil
}

// Create stores a grading scheme. One scheme is in force per term.
func (s *GradingSchemeService) Create(ctx context.Context, schoolID string, req dto.CreateGradingSchemeRequest) (*models.GradingScheme, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grading scheme payload")
	}
	cfg := req.Config
	if req.Preset == "waec" {
		cfg = scoring.WAECGradingConfig()
	} else if err := s.validator.Struct(cfg); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grading configuration payload")
	}
	if err := cfg.Validate(); err != nil {
		return nil, configurationError(ctx, s.logger, err, "invalid grading configuration")
	}

	_, err := s.repo.FindByTerm(ctx, schoolID, req.TermID)
	switch {
	case err == nil:
		return nil, appErrors.Clone(appErrors.ErrConflict, "grading scheme already exists for term")
	case !errors.Is(err, sql.ErrNoRows):
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate grading scheme")
	}

	scheme := &models.GradingScheme{
		SchoolID: schoolID,
		TermID:   req.TermID,
		Name:     req.Name,
		Config:   models.GradingConfigColumn{GradingConfig: cfg},
	}
	if err := s.repo.Create(ctx, scheme); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create grading scheme")
	}
	return scheme, nil
}

// Update replaces the boundaries of a grading scheme.
func (s *GradingSchemeService) Update(ctx context.Context, schoolID, id string, req dto.UpdateGradingSchemeRequest) (*models.GradingScheme, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grading scheme payload")
	}
	if err := s.validator.Struct(req.Config); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grading configuration payload")
	}
	if err := req.Config.Validate(); err != nil {
		return nil, configurationError(ctx, s.logger, err, "invalid grading configuration")
	}
	scheme, err := s.Get(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	scheme.Name = req.Name
	scheme.Config = models.GradingConfigColumn{GradingConfig: req.Config}
	if err := s.repo.Update(ctx, scheme); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grading scheme not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update grading scheme")
	}
	return scheme, nil
}

// ResolveForTerm returns the grading config in force for a term. When the school has
// not authored one the WAEC table is returned and authored is false.
func (s *GradingSchemeService) ResolveForTerm(ctx context.Context, schoolID, termID string) (cfg scoring.GradingConfig, authored bool, err error) {
	scheme, err := s.repo.FindByTerm(ctx, schoolID, termID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return scoring.WAECGradingConfig(), false, nil
		}
		return scoring.GradingConfig{}, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grading scheme")
	}
	return scheme.Config.GradingConfig, true, nil
}
