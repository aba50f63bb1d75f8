package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-adp-scoring/internal/models"
)

const assessmentSchemeColumns = `id, school_id, class_id, subject_id, term_id, config, finalized, created_at, updated_at`

// AssessmentSchemeRepository manages assessment scheme persistence.
type AssessmentSchemeRepository struct {
	db *sqlx.DB
}

// NewAssessmentSchemeRepository creates a new repository instance.
func NewAssessmentSchemeRepository(db *sqlx.DB) *AssessmentSchemeRepository {
	return &AssessmentSchemeRepository{db: db}
}

// List returns schemes matching the provided filters.
func (r *AssessmentSchemeRepository) List(ctx context.Context, filter models.SchemeFilter) ([]models.AssessmentScheme, error) {
	query := `SELECT ` + assessmentSchemeColumns + ` FROM assessment_schemes WHERE school_id = $1`
	args := []interface{}{filter.SchoolID}
	if filter.ClassID != "" {
		query += fmt.Sprintf(" AND class_id = $%d", len(args)+1)
		args = append(args, filter.ClassID)
	}
	if filter.SubjectID != "" {
		query += fmt.Sprintf(" AND subject_id = $%d", len(args)+1)
		args = append(args, filter.SubjectID)
	}
	if filter.TermID != "" {
		query += fmt.Sprintf(" AND term_id = $%d", len(args)+1)
		args = append(args, filter.TermID)
	}
	query += " ORDER BY created_at DESC"

	var schemes []models.AssessmentScheme
	if err := r.db.SelectContext(ctx, &schemes, query, args...); err != nil {
		return nil, fmt.Errorf("list assessment schemes: %w", err)
	}
	return schemes, nil
}

// FindByID returns a scheme by ID within a school.
func (r *AssessmentSchemeRepository) FindByID(ctx context.Context, schoolID, id string) (*models.AssessmentScheme, error) {
	const query = `SELECT ` + assessmentSchemeColumns + ` FROM assessment_schemes WHERE school_id = $1 AND id = $2`
	var scheme models.AssessmentScheme
	if err := r.db.GetContext(ctx, &scheme, query, schoolID, id); err != nil {
		return nil, err
	}
	return &scheme, nil
}

// Exists checks if a scheme exists for the scope, excluding an optional ID.
func (r *AssessmentSchemeRepository) Exists(ctx context.Context, schoolID, classID, subjectID, termID, excludeID string) (bool, error) {
	query := "SELECT 1 FROM assessment_schemes WHERE school_id = $1 AND class_id = $2 AND subject_id = $3 AND term_id = $4"
	args := []interface{}{schoolID, classID, subjectID, termID}
	if excludeID != "" {
		query += " AND id <> $5"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check assessment scheme: %w", err)
	}
	return true, nil
}

// Create inserts a scheme.
func (r *AssessmentSchemeRepository) Create(ctx context.Context, scheme *models.AssessmentScheme) error {
	if scheme.ID == "" {
		scheme.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if scheme.CreatedAt.IsZero() {
		scheme.CreatedAt = now
	}
	scheme.UpdatedAt = now
	const query = `INSERT INTO assessment_schemes (` + assessmentSchemeColumns + `)
        VALUES (:id, :school_id, :class_id, :subject_id, :term_id, :config, :finalized, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, scheme); err != nil {
		return fmt.Errorf("insert assessment scheme: %w", err)
	}
	return nil
}

// Update replaces the scheme configuration.
func (r *AssessmentSchemeRepository) Update(ctx context.Context, scheme *models.AssessmentScheme) error {
	scheme.UpdatedAt = time.Now().UTC()
	const query = `UPDATE assessment_schemes SET config = :config, finalized = :finalized, updated_at = :updated_at
        WHERE id = :id AND school_id = :school_id`
	res, err := r.db.NamedExecContext(ctx, query, scheme)
	if err != nil {
		return fmt.Errorf("update assessment scheme: %w", err)
	}
	return expectAffected(res)
}

// Finalize toggles the finalized flag.
func (r *AssessmentSchemeRepository) Finalize(ctx context.Context, schoolID, id string, finalized bool) error {
	const query = `UPDATE assessment_schemes SET finalized = $1, updated_at = $2 WHERE school_id = $3 AND id = $4`
	res, err := r.db.ExecContext(ctx, query, finalized, time.Now().UTC(), schoolID, id)
	if err != nil {
		return fmt.Errorf("finalize assessment scheme: %w", err)
	}
	return expectAffected(res)
}

func expectAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
