package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/noah-isme/sma-adp-scoring/internal/scoring"
)

// AssessmentScheme stores the assessment configuration of a class+subject+term.
type AssessmentScheme struct {
	ID        string                 `db:"id" json:"id"`
	SchoolID  string                 `db:"school_id" json:"school_id"`
	ClassID   string                 `db:"class_id" json:"class_id"`
	SubjectID string                 `db:"subject_id" json:"subject_id"`
	TermID    string                 `db:"term_id" json:"term_id"`
	Config    AssessmentConfigColumn `db:"config" json:"config"`
	Finalized bool                   `db:"finalized" json:"finalized"`
	CreatedAt time.Time              `db:"created_at" json:"created_at"`
	UpdatedAt time.Time              `db:"updated_at" json:"updated_at"`
}

// GradingScheme stores a grade boundary table for a school term.
type GradingScheme struct {
	ID        string              `db:"id" json:"id"`
	SchoolID  string              `db:"school_id" json:"school_id"`
	TermID    string              `db:"term_id" json:"term_id"`
	Name      string              `db:"name" json:"name"`
	Config    GradingConfigColumn `db:"config" json:"config"`
	CreatedAt time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt time.Time           `db:"updated_at" json:"updated_at"`
}

// ScoreRecord is the persisted outcome of one score entry: the raw inputs plus the
// values derived from them.
type ScoreRecord struct {
	ID           string           `db:"id" json:"id"`
	SchoolID     string           `db:"school_id" json:"school_id"`
	SchemeID     string           `db:"scheme_id" json:"scheme_id"`
	StudentID    string           `db:"student_id" json:"student_id"`
	ClassID      string           `db:"class_id" json:"class_id"`
	SubjectID    string           `db:"subject_id" json:"subject_id"`
	TermID       string           `db:"term_id" json:"term_id"`
	Scores       ScoreInputColumn `db:"scores" json:"scores"`
	TotalCA      float64          `db:"total_ca" json:"total_ca"`
	Total        float64          `db:"total" json:"total"`
	Percentage   float64          `db:"percentage" json:"percentage"`
	Grade        string           `db:"grade" json:"grade"`
	MaxScore     float64          `db:"max_score" json:"max_score"`
	IsAbsent     bool             `db:"is_absent" json:"is_absent"`
	IsExempted   bool             `db:"is_exempted" json:"is_exempted"`
	Published    bool             `db:"published" json:"published"`
	RecordedBy   string           `db:"recorded_by" json:"recorded_by"`
	CalculatedAt time.Time        `db:"calculated_at" json:"calculated_at"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time        `db:"updated_at" json:"updated_at"`
}

// SubjectScore projects the record onto the aggregator's input shape.
func (r ScoreRecord) SubjectScore() scoring.SubjectScore {
	return scoring.SubjectScore{
		SubjectID:  r.SubjectID,
		Total:      r.Total,
		Percentage: r.Percentage,
		Grade:      r.Grade,
		MaxScore:   r.MaxScore,
		IsAbsent:   r.IsAbsent,
		IsExempted: r.IsExempted,
	}
}

// SchemeFilter scopes assessment scheme listings.
type SchemeFilter struct {
	SchoolID  string
	ClassID   string
	SubjectID string
	TermID    string
}

// ScoreFilter scopes score record listings.
type ScoreFilter struct {
	SchoolID  string
	SchemeID  string
	StudentID string
	ClassID   string
	SubjectID string
	TermID    string
}

// AssessmentConfigColumn persists an assessment config as JSONB.
type AssessmentConfigColumn struct {
	scoring.AssessmentConfig
}

// Value implements driver.Valuer.
func (c AssessmentConfigColumn) Value() (driver.Value, error) {
	return json.Marshal(c.AssessmentConfig)
}

// Scan implements sql.Scanner.
func (c *AssessmentConfigColumn) Scan(src interface{}) error {
	return scanJSON(src, &c.AssessmentConfig)
}

// GradingConfigColumn persists a grading config as JSONB.
type GradingConfigColumn struct {
	scoring.GradingConfig
}

// Value implements driver.Valuer.
func (c GradingConfigColumn) Value() (driver.Value, error) {
	return json.Marshal(c.GradingConfig)
}

// Scan implements sql.Scanner.
func (c *GradingConfigColumn) Scan(src interface{}) error {
	return scanJSON(src, &c.GradingConfig)
}

// ScoreInputColumn persists raw component scores as JSONB; null entries survive the round trip.
type ScoreInputColumn map[string]*float64

// Input converts the column to the engine's input type.
func (c ScoreInputColumn) Input() scoring.ScoreInput {
	return scoring.ScoreInput(c)
}

// Value implements driver.Valuer.
func (c ScoreInputColumn) Value() (driver.Value, error) {
	if c == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]*float64(c))
}

// Scan implements sql.Scanner.
func (c *ScoreInputColumn) Scan(src interface{}) error {
	m := map[string]*float64{}
	if err := scanJSON(src, &m); err != nil {
		return err
	}
	*c = m
	return nil
}

func scanJSON(src interface{}, dest interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("unsupported json column type %T", src)
	}
}
