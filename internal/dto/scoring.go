package dto

import (
	"github.com/noah-isme/sma-adp-scoring/internal/models"
	"github.com/noah-isme/sma-adp-scoring/internal/scoring"
)

// Bulk submission modes.
const (
	BulkModeAtomic         = "atomic"
	BulkModePartialOnError = "partialOnError"
)

// CreateAssessmentSchemeRequest defines the scoring scheme of a class+subject+term.
type CreateAssessmentSchemeRequest struct {
	ClassID   string                   `json:"class_id" validate:"required"`
	SubjectID string                   `json:"subject_id" validate:"required"`
	TermID    string                   `json:"term_id" validate:"required"`
	Config    scoring.AssessmentConfig `json:"config" validate:"required"`
}

// UpdateAssessmentSchemeRequest replaces an unfinalized scheme's configuration.
type UpdateAssessmentSchemeRequest struct {
	Config scoring.AssessmentConfig `json:"config" validate:"required"`
}

// CreateGradingSchemeRequest registers the grade boundary table of a term.
// When Preset is "waec" the config may be omitted.
type CreateGradingSchemeRequest struct {
	TermID string                `json:"term_id" validate:"required"`
	Name   string                `json:"name" validate:"required"`
	Preset string                `json:"preset" validate:"omitempty,oneof=waec"`
	Config scoring.GradingConfig `json:"config" validate:"-"`
}

// UpdateGradingSchemeRequest replaces name and boundaries.
type UpdateGradingSchemeRequest struct {
	Name   string                `json:"name" validate:"required"`
	Config scoring.GradingConfig `json:"config" validate:"-"`
}

// PreviewScoreRequest evaluates scores against a scheme without persisting them.
type PreviewScoreRequest struct {
	SchemeID string             `json:"scheme_id" validate:"required"`
	Scores   scoring.ScoreInput `json:"scores"`
}

// ScorePreviewResponse carries the engine output for a score sheet.
type ScorePreviewResponse struct {
	Validation scoring.ValidationResult `json:"validation"`
	Totals     scoring.ScoreTotals      `json:"totals"`
	Grade      string                   `json:"grade,omitempty"`
	MaxScore   float64                  `json:"max_score"`
}

// SubmitScoreRequest records one student's scores for a scheme.
type SubmitScoreRequest struct {
	SchemeID   string             `json:"scheme_id" validate:"required"`
	StudentID  string             `json:"student_id" validate:"required"`
	Scores     scoring.ScoreInput `json:"scores"`
	IsAbsent   bool               `json:"is_absent"`
	IsExempted bool               `json:"is_exempted"`
}

// BulkScoreEntry is one row of a bulk submission.
type BulkScoreEntry struct {
	StudentID  string             `json:"student_id" validate:"required"`
	Scores     scoring.ScoreInput `json:"scores"`
	IsAbsent   bool               `json:"is_absent"`
	IsExempted bool               `json:"is_exempted"`
}

// BulkScoreRequest submits scores for many students of one scheme.
type BulkScoreRequest struct {
	SchemeID string           `json:"scheme_id" validate:"required"`
	Mode     string           `json:"mode" validate:"omitempty,oneof=atomic partialOnError"`
	Entries  []BulkScoreEntry `json:"entries" validate:"required,min=1,dive"`
}

// BulkScoreFailure reports why a row was not saved.
type BulkScoreFailure struct {
	StudentID string   `json:"student_id"`
	Errors    []string `json:"errors"`
}

// BulkScoreResult summarises a bulk submission.
type BulkScoreResult struct {
	Mode     string               `json:"mode"`
	Saved    int                  `json:"saved"`
	Records  []models.ScoreRecord `json:"records"`
	Failures []BulkScoreFailure   `json:"failures"`
}

// PublishScoreRequest toggles parent visibility of a record.
type PublishScoreRequest struct {
	Published *bool `json:"published" validate:"required"`
}

// TermResultResponse is a student's aggregated term outcome.
type TermResultResponse struct {
	StudentID        string                   `json:"student_id"`
	TermID           string                   `json:"term_id"`
	Result           scoring.TermResult       `json:"result"`
	OverallGrade     string                   `json:"overall_grade"`
	PassMark         float64                  `json:"pass_mark"`
	AttendancePolicy scoring.AttendancePolicy `json:"attendance_policy"`
	Subjects         []scoring.SubjectScore   `json:"subjects"`
}

// RecalculationStatus tracks a scheme recalculation job.
type RecalculationStatus struct {
	JobID    string `json:"job_id"`
	SchemeID string `json:"scheme_id"`
	State    string `json:"state"`
	Updated  int    `json:"updated"`
	Invalid  int    `json:"invalid"`
	Error    string `json:"error,omitempty"`
}
