package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-scoring/internal/dto"
	"github.com/noah-isme/sma-adp-scoring/internal/models"
	"github.com/noah-isme/sma-adp-scoring/internal/scoring"
	appErrors "github.com/noah-isme/sma-adp-scoring/pkg/errors"
)

type memoryCacheRepo struct {
	values  map[string]interface{}
	deleted []string
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	v, ok := m.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	resp, ok := v.(*dto.TermResultResponse)
	if !ok {
		return errors.New("unexpected cache value")
	}
	*(dest.(*dto.TermResultResponse)) = *resp
	return nil
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.values == nil {
		m.values = make(map[string]interface{})
	}
	m.values[key] = value
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.deleted = append(m.deleted, pattern)
	m.values = nil
	return nil
}

func termRecords() *mockScoreRepo {
	return &mockScoreRepo{records: map[string]models.ScoreRecord{
		"math/stu-1": {ID: "r1", SchoolID: "school-1", SchemeID: "math", StudentID: "stu-1", TermID: "term-1", SubjectID: "math", Total: 80, Percentage: 80, Grade: "A1", MaxScore: 100, Published: true},
		"eng/stu-1":  {ID: "r2", SchoolID: "school-1", SchemeID: "eng", StudentID: "stu-1", TermID: "term-1", SubjectID: "eng", Total: 30, Percentage: 30, Grade: "F9", MaxScore: 100},
		"bio/stu-1":  {ID: "r3", SchoolID: "school-1", SchemeID: "bio", StudentID: "stu-1", TermID: "term-1", SubjectID: "bio", IsAbsent: true, MaxScore: 100, Published: true},
	}}
}

func TestTermResultServiceIncludeAll(t *testing.T) {
	svc := NewTermResultService(termRecords(), &mockGradingResolver{}, nil, TermResultOptions{}, zap.NewNop())

	resp, hit, err := svc.Get(context.Background(), "school-1", "stu-1", "term-1", false)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 3, resp.Result.NumberOfSubjects)
	assert.Equal(t, 110.0, resp.Result.TotalScore)
	assert.InDelta(t, 36.6667, resp.Result.AverageScore, 0.001)
	assert.Equal(t, 1, resp.Result.SubjectsPassed)
	assert.Equal(t, 2, resp.Result.SubjectsFailed)
	assert.Equal(t, "F9", resp.OverallGrade)
	assert.Equal(t, 40.0, resp.PassMark)
	assert.Equal(t, scoring.AttendanceIncludeAll, resp.AttendancePolicy)
}

func TestTermResultServiceExcludeAbsentWithAuthoredPassMark(t *testing.T) {
	grading := &mockGradingResolver{authored: true, cfg: scoring.GradingConfig{PassMark: 25}}
	svc := NewTermResultService(termRecords(), grading, nil, TermResultOptions{Attendance: scoring.AttendanceExcludeAbsent}, zap.NewNop())

	resp, _, err := svc.Get(context.Background(), "school-1", "stu-1", "term-1", false)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Result.NumberOfSubjects)
	assert.Equal(t, 55.0, resp.Result.AverageScore)
	assert.Equal(t, 2, resp.Result.SubjectsPassed)
	assert.Equal(t, "C6", resp.OverallGrade)
	assert.Equal(t, 25.0, resp.PassMark)
}

func TestTermResultServicePublishedOnly(t *testing.T) {
	svc := NewTermResultService(termRecords(), &mockGradingResolver{}, nil, TermResultOptions{}, zap.NewNop())

	resp, _, err := svc.Get(context.Background(), "school-1", "stu-1", "term-1", true)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Result.NumberOfSubjects)
	assert.Len(t, resp.Subjects, 2)
}

func TestTermResultServiceEmpty(t *testing.T) {
	svc := NewTermResultService(&mockScoreRepo{}, &mockGradingResolver{}, nil, TermResultOptions{}, zap.NewNop())

	resp, _, err := svc.Get(context.Background(), "school-1", "stu-9", "term-1", false)
	require.NoError(t, err)
	assert.Equal(t, scoring.TermResult{}, resp.Result)
	assert.Empty(t, resp.Subjects)
}

func TestTermResultServiceCachesAndInvalidates(t *testing.T) {
	cacheRepo := &memoryCacheRepo{}
	cache := NewCacheService(cacheRepo, NewMetricsService(), time.Minute, zap.NewNop(), true)
	records := termRecords()
	terms := NewTermResultService(records, &mockGradingResolver{}, cache, TermResultOptions{}, zap.NewNop())

	_, hit, err := terms.Get(context.Background(), "school-1", "stu-1", "term-1", false)
	require.NoError(t, err)
	assert.False(t, hit)

	_, hit, err = terms.Get(context.Background(), "school-1", "stu-1", "term-1", false)
	require.NoError(t, err)
	assert.True(t, hit)

	scores := NewScoreService(records, nil, nil, cache, nil, nil, zap.NewNop())
	_, err = scores.Publish(context.Background(), "school-1", "r2", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"term-results:school-1:stu-1:term-1:*"}, cacheRepo.deleted)

	_, hit, err = terms.Get(context.Background(), "school-1", "stu-1", "term-1", false)
	require.NoError(t, err)
	assert.False(t, hit)
}
