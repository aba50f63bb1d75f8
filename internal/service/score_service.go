package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-scoring/internal/dto"
	"github.com/noah-isme/sma-adp-scoring/internal/models"
	"github.com/noah-isme/sma-adp-scoring/internal/scoring"
	appErrors "github.com/noah-isme/sma-adp-scoring/pkg/errors"
	"github.com/noah-isme/sma-adp-scoring/pkg/logger"
)

type scoreRepository interface {
	Upsert(ctx context.Context, record *models.ScoreRecord) error
	BulkUpsert(ctx context.Context, records []models.ScoreRecord) error
	List(ctx context.Context, filter models.ScoreFilter) ([]models.ScoreRecord, error)
	FindByID(ctx context.Context, schoolID, id string) (*models.ScoreRecord, error)
	SetPublished(ctx context.Context, schoolID, id string, published bool) error
}

type schemeReader interface {
	FindByID(ctx context.Context, schoolID, id string) (*models.AssessmentScheme, error)
}

type gradingResolver interface {
	ResolveForTerm(ctx context.Context, schoolID, termID string) (scoring.GradingConfig, bool, error)
}

// ScoreService runs score sheets through the scoring engine and persists the outcome.
type ScoreService struct {
	scores    scoreRepository
	schemes   schemeReader
	grading   gradingResolver
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewScoreService constructs service.
func NewScoreService(scores scoreRepository, schemes schemeReader, grading gradingResolver, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *ScoreService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScoreService{
		scores:    scores,
		schemes:   schemes,
		grading:   grading,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Preview evaluates a sheet without persisting it. Invalid sheets still report totals.
func (s *ScoreService) Preview(ctx context.Context, schoolID string, req dto.PreviewScoreRequest) (*dto.ScorePreviewResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid score preview payload")
	}
	scheme, grading, err := s.loadScheme(ctx, schoolID, req.SchemeID)
	if err != nil {
		return nil, err
	}
	eval, err := s.evaluate(scheme, grading, req.Scores, false)
	if err != nil {
		return nil, gradeError(ctx, s.logger, err)
	}
	return &dto.ScorePreviewResponse{
		Validation: eval.Validation,
		Totals:     eval.Totals,
		Grade:      eval.Grade,
		MaxScore:   scoring.EffectiveMaxScore(scheme.Config.AssessmentConfig),
	}, nil
}

// Submit validates, calculates and grades one student's sheet and stores the result,
// replacing any earlier calculation for the same scheme and student.
func (s *ScoreService) Submit(ctx context.Context, schoolID, recordedBy string, req dto.SubmitScoreRequest) (*models.ScoreRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid score payload")
	}
	scheme, grading, err := s.loadScheme(ctx, schoolID, req.SchemeID)
	if err != nil {
		return nil, err
	}
	entry := dto.BulkScoreEntry{StudentID: req.StudentID, Scores: req.Scores, IsAbsent: req.IsAbsent, IsExempted: req.IsExempted}
	record, err := s.buildRecord(ctx, scheme, grading, entry, recordedBy)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	err = s.scores.Upsert(ctx, record)
	s.metrics.ObserveDBQuery("score_upsert", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save score")
	}
	s.invalidateTermResult(ctx, schoolID, record.StudentID, record.TermID)
	return record, nil
}

// BulkSubmit stores many sheets of one scheme. In atomic mode any failing row rejects
// the whole batch; in partialOnError mode valid rows are saved and failures reported.
func (s *ScoreService) BulkSubmit(ctx context.Context, schoolID, recordedBy string, req dto.BulkScoreRequest) (*dto.BulkScoreResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk score payload")
	}
	mode := req.Mode
	if mode == "" {
		mode = dto.BulkModeAtomic
	}
	scheme, grading, err := s.loadScheme(ctx, schoolID, req.SchemeID)
	if err != nil {
		return nil, err
	}

	result := &dto.BulkScoreResult{Mode: mode, Records: []models.ScoreRecord{}, Failures: []dto.BulkScoreFailure{}}
	seen := make(map[string]struct{}, len(req.Entries))
	for _, entry := range req.Entries {
		if _, dup := seen[entry.StudentID]; dup {
			result.Failures = append(result.Failures, dto.BulkScoreFailure{StudentID: entry.StudentID, Errors: []string{"duplicate entry for student"}})
			continue
		}
		seen[entry.StudentID] = struct{}{}

		record, err := s.buildRecord(ctx, scheme, grading, entry, recordedBy)
		if err != nil {
			result.Failures = append(result.Failures, dto.BulkScoreFailure{StudentID: entry.StudentID, Errors: failureMessages(err)})
			continue
		}
		result.Records = append(result.Records, *record)
	}

	if mode == dto.BulkModeAtomic && len(result.Failures) > 0 {
		details := make([]string, 0, len(result.Failures))
		for _, f := range result.Failures {
			for _, msg := range f.Errors {
				details = append(details, fmt.Sprintf("%s: %s", f.StudentID, msg))
			}
		}
		return nil, appErrors.WithDetails(appErrors.ErrValidation, "bulk score submission rejected", details)
	}

	start := time.Now()
	err = s.scores.BulkUpsert(ctx, result.Records)
	s.metrics.ObserveDBQuery("score_bulk_upsert", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save scores")
	}
	result.Saved = len(result.Records)
	for _, record := range result.Records {
		s.invalidateTermResult(ctx, schoolID, record.StudentID, record.TermID)
	}
	logger.WithContext(ctx, s.logger).Info("bulk scores saved",
		zap.String("scheme_id", scheme.ID),
		zap.String("mode", mode),
		zap.Int("saved", result.Saved),
		zap.Int("failed", len(result.Failures)),
	)
	return result, nil
}

// List returns stored records.
func (s *ScoreService) List(ctx context.Context, filter models.ScoreFilter) ([]models.ScoreRecord, error) {
	start := time.Now()
	records, err := s.scores.List(ctx, filter)
	s.metrics.ObserveDBQuery("score_list", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list scores")
	}
	return records, nil
}

// Publish toggles parent visibility of a record. The engine never reads the flag.
func (s *ScoreService) Publish(ctx context.Context, schoolID, id string, published bool) (*models.ScoreRecord, error) {
	if err := s.scores.SetPublished(ctx, schoolID, id, published); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "score record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to publish score")
	}
	record, err := s.scores.FindByID(ctx, schoolID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "score record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load score")
	}
	s.invalidateTermResult(ctx, schoolID, record.StudentID, record.TermID)
	return record, nil
}

// RecalculateScheme re-runs the engine over every stored record of a scheme with the
// scheme's current configuration. Records that no longer pass validation keep their
// recomputed totals but lose their grade.
func (s *ScoreService) RecalculateScheme(ctx context.Context, schoolID, schemeID string) (updated, invalid int, err error) {
	scheme, grading, err := s.loadScheme(ctx, schoolID, schemeID)
	if err != nil {
		return 0, 0, err
	}
	start := time.Now()
	records, err := s.scores.List(ctx, models.ScoreFilter{SchoolID: schoolID, SchemeID: schemeID})
	s.metrics.ObserveDBQuery("score_list", time.Since(start))
	if err != nil {
		return 0, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scores")
	}
	if len(records) == 0 {
		return 0, 0, nil
	}

	now := s.now()
	maxScore := scoring.EffectiveMaxScore(scheme.Config.AssessmentConfig)
	for i := range records {
		rec := &records[i]
		eval, evalErr := s.evaluate(scheme, grading, rec.Scores.Input(), rec.IsAbsent || rec.IsExempted)
		if evalErr != nil || !eval.Validation.Valid {
			invalid++
		}
		rec.TotalCA = eval.Totals.TotalCA
		rec.Total = eval.Totals.Total
		rec.Percentage = eval.Totals.Percentage
		rec.Grade = eval.Grade
		rec.MaxScore = maxScore
		rec.CalculatedAt = now
	}
	start = time.Now()
	err = s.scores.BulkUpsert(ctx, records)
	s.metrics.ObserveDBQuery("score_bulk_upsert", time.Since(start))
	if err != nil {
		return 0, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save recalculated scores")
	}
	for _, rec := range records {
		s.invalidateTermResult(ctx, schoolID, rec.StudentID, rec.TermID)
	}
	return len(records), invalid, nil
}

func (s *ScoreService) loadScheme(ctx context.Context, schoolID, schemeID string) (*models.AssessmentScheme, scoring.GradingConfig, error) {
	scheme, err := s.schemes.FindByID(ctx, schoolID, schemeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, scoring.GradingConfig{}, appErrors.Clone(appErrors.ErrNotFound, "assessment scheme not found")
		}
		return nil, scoring.GradingConfig{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assessment scheme")
	}
	grading, _, err := s.grading.ResolveForTerm(ctx, schoolID, scheme.TermID)
	if err != nil {
		return nil, scoring.GradingConfig{}, err
	}
	return scheme, grading, nil
}

// evaluate runs the engine. Absent and exempted entries skip the required-score gate
// since no sheet is expected for them.
func (s *ScoreService) evaluate(scheme *models.AssessmentScheme, grading scoring.GradingConfig, scores scoring.ScoreInput, skipGate bool) (scoring.Evaluation, error) {
	cfg := scheme.Config.AssessmentConfig
	var (
		eval scoring.Evaluation
		err  error
	)
	if skipGate {
		eval = scoring.Evaluation{
			Validation: scoring.ValidationResult{Valid: true, Errors: []string{}},
			Totals:     scoring.CalculateTotalScore(scores, cfg),
		}
		eval.Grade, err = scoring.CalculateGrade(eval.Totals.Percentage, grading)
	} else {
		eval, err = scoring.Evaluate(scores, cfg, grading)
	}

	outcome := OutcomeGraded
	switch {
	case err != nil:
		outcome = OutcomeGradeUnresolved
	case !eval.Validation.Valid:
		outcome = OutcomeInvalid
	}
	s.metrics.ObserveScoreEvaluation(string(cfg.CalculationMethod), outcome)
	return eval, err
}

func (s *ScoreService) buildRecord(ctx context.Context, scheme *models.AssessmentScheme, grading scoring.GradingConfig, entry dto.BulkScoreEntry, recordedBy string) (*models.ScoreRecord, error) {
	eval, err := s.evaluate(scheme, grading, entry.Scores, entry.IsAbsent || entry.IsExempted)
	if err != nil {
		return nil, gradeError(ctx, s.logger, err)
	}
	if !eval.Validation.Valid {
		return nil, appErrors.WithDetails(appErrors.ErrValidation, "score entry failed validation", eval.Validation.Errors)
	}
	scores := models.ScoreInputColumn(entry.Scores)
	if scores == nil {
		scores = models.ScoreInputColumn{}
	}
	return &models.ScoreRecord{
		SchoolID:     scheme.SchoolID,
		SchemeID:     scheme.ID,
		StudentID:    entry.StudentID,
		ClassID:      scheme.ClassID,
		SubjectID:    scheme.SubjectID,
		TermID:       scheme.TermID,
		Scores:       scores,
		TotalCA:      eval.Totals.TotalCA,
		Total:        eval.Totals.Total,
		Percentage:   eval.Totals.Percentage,
		Grade:        eval.Grade,
		MaxScore:     scoring.EffectiveMaxScore(scheme.Config.AssessmentConfig),
		IsAbsent:     entry.IsAbsent,
		IsExempted:   entry.IsExempted,
		RecordedBy:   recordedBy,
		CalculatedAt: s.now(),
	}, nil
}

func (s *ScoreService) invalidateTermResult(ctx context.Context, schoolID, studentID, termID string) {
	if err := s.cache.Invalidate(ctx, TermResultPattern(schoolID, studentID, termID)); err != nil {
		logger.WithContext(ctx, s.logger).Warn("term result cache not invalidated",
			zap.String("student_id", studentID), zap.String("term_id", termID), zap.Error(err))
	}
}

// gradeError maps a boundary miss to the API error; grading tables with gaps are a
// configuration bug the school must fix.
func gradeError(ctx context.Context, log *zap.Logger, err error) error {
	var gradeErr *scoring.GradeResolutionError
	if errors.As(err, &gradeErr) {
		logger.WithContext(ctx, log).Warn("grade not resolved", zap.Float64("percentage", gradeErr.Percentage))
		appErr := appErrors.Wrap(err, appErrors.ErrGradeResolution.Code, appErrors.ErrGradeResolution.Status, "grade could not be resolved")
		appErr.Details = []string{gradeErr.Error()}
		return appErr
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to grade score")
}

func failureMessages(err error) []string {
	appErr := appErrors.FromError(err)
	if len(appErr.Details) > 0 {
		return appErr.Details
	}
	return []string{appErr.Message}
}
