package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-scoring/internal/dto"
	"github.com/noah-isme/sma-adp-scoring/internal/models"
	"github.com/noah-isme/sma-adp-scoring/internal/scoring"
	appErrors "github.com/noah-isme/sma-adp-scoring/pkg/errors"
	"github.com/noah-isme/sma-adp-scoring/pkg/logger"
)

const defaultPassMark = 40

type scoreLister interface {
	List(ctx context.Context, filter models.ScoreFilter) ([]models.ScoreRecord, error)
}

// TermResultOptions configures term aggregation.
type TermResultOptions struct {
	Attendance      scoring.AttendancePolicy
	DefaultPassMark float64
	CacheTTL        time.Duration
	Metrics         *MetricsService
}

// TermResultService aggregates a student's stored subject scores into a term summary.
type TermResultService struct {
	scores  scoreLister
	grading gradingResolver
	cache   *CacheService
	opts    TermResultOptions
	logger  *zap.Logger
}

// NewTermResultService constructs service.
func NewTermResultService(scores scoreLister, grading gradingResolver, cache *CacheService, opts TermResultOptions, logger *zap.Logger) *TermResultService {
	if opts.Attendance == "" {
		opts.Attendance = scoring.AttendanceIncludeAll
	}
	if opts.DefaultPassMark <= 0 {
		opts.DefaultPassMark = defaultPassMark
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TermResultService{scores: scores, grading: grading, cache: cache, opts: opts, logger: logger}
}

// Get returns the student's term summary. publishedOnly restricts aggregation to
// records released to parents. The boolean reports a cache hit.
func (s *TermResultService) Get(ctx context.Context, schoolID, studentID, termID string, publishedOnly bool) (*dto.TermResultResponse, bool, error) {
	if studentID == "" || termID == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "student and term are required")
	}
	variant := "all"
	if publishedOnly {
		variant = "published"
	}
	key := TermResultKey(schoolID, studentID, termID, variant)

	var cached dto.TermResultResponse
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, true, nil
	}

	start := time.Now()
	records, err := s.scores.List(ctx, models.ScoreFilter{SchoolID: schoolID, StudentID: studentID, TermID: termID})
	s.opts.Metrics.ObserveDBQuery("term_result_scores", time.Since(start))
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scores")
	}

	passMark := s.opts.DefaultPassMark
	grading, authored, err := s.grading.ResolveForTerm(ctx, schoolID, termID)
	if err != nil {
		return nil, false, err
	}
	if authored {
		passMark = grading.PassMark
	}

	subjects := make([]scoring.SubjectScore, 0, len(records))
	for _, rec := range records {
		if publishedOnly && !rec.Published {
			continue
		}
		subjects = append(subjects, rec.SubjectScore())
	}

	result := scoring.CalculateTermResult(subjects, scoring.TermOptions{PassMark: passMark, Attendance: s.opts.Attendance})
	resp := &dto.TermResultResponse{
		StudentID:        studentID,
		TermID:           termID,
		Result:           result,
		OverallGrade:     scoring.OverallGrade(result.AverageScore),
		PassMark:         passMark,
		AttendancePolicy: s.opts.Attendance,
		Subjects:         subjects,
	}

	if err := s.cache.Set(ctx, key, resp, s.opts.CacheTTL); err != nil {
		logger.WithContext(ctx, s.logger).Warn("term result not cached", zap.String("key", key), zap.Error(err))
	}
	return resp, false, nil
}
