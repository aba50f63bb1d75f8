package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-adp-scoring/internal/models"
)

const gradingSchemeColumns = `id, school_id, term_id, name, config, created_at, updated_at`

// GradingSchemeRepository persists grade boundary tables.
type GradingSchemeRepository struct {
	db *sqlx.DB
}

// NewGradingSchemeRepository constructs the repository.
func NewGradingSchemeRepository(db *sqlx.DB) *GradingSchemeRepository {
	return &GradingSchemeRepository{db: db}
}

// List returns a school's grading schemes, optionally for one term.
func (r *GradingSchemeRepository) List(ctx context.Context, schoolID, termID string) ([]models.GradingScheme, error) {
	query := `SELECT ` + gradingSchemeColumns + ` FROM grading_schemes WHERE school_id = $1`
	args := []interface{}{schoolID}
	if termID != "" {
		query += " AND term_id = $2"
		args = append(args, termID)
	}
	query += " ORDER BY created_at DESC"
	var schemes []models.GradingScheme
	if err := r.db.SelectContext(ctx, &schemes, query, args...); err != nil {
		return nil, fmt.Errorf("list grading schemes: %w", err)
	}
	return schemes, nil
}

// FindByID loads a grading scheme.
func (r *GradingSchemeRepository) FindByID(ctx context.Context, schoolID, id string) (*models.GradingScheme, error) {
	const query = `SELECT ` + gradingSchemeColumns + ` FROM grading_schemes WHERE school_id = $1 AND id = $2`
	var scheme models.GradingScheme
	if err := r.db.GetContext(ctx, &scheme, query, schoolID, id); err != nil {
		return nil, err
	}
	return &scheme, nil
}

// FindByTerm loads the grading scheme in force for a term.
func (r *GradingSchemeRepository) FindByTerm(ctx context.Context, schoolID, termID string) (*models.GradingScheme, error) {
	const query = `SELECT ` + gradingSchemeColumns + ` FROM grading_schemes WHERE school_id = $1 AND term_id = $2`
	var scheme models.GradingScheme
	if err := r.db.GetContext(ctx, &scheme, query, schoolID, termID); err != nil {
		return nil, err
	}
	return &scheme, nil
}

// Create inserts a grading scheme.
func (r *GradingSchemeRepository) Create(ctx context.Context, scheme *models.GradingScheme) error {
	if scheme.ID == "" {
		scheme.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if scheme.CreatedAt.IsZero() {
		scheme.CreatedAt = now
	}
	scheme.UpdatedAt = now
	const query = `INSERT INTO grading_schemes (` + gradingSchemeColumns + `)
        VALUES (:id, :school_id, :term_id, :name, :config, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, scheme); err != nil {
		return fmt.Errorf("insert grading scheme: %w", err)
	}
	return nil
}

// Update replaces name and boundaries.
func (r *GradingSchemeRepository) Update(ctx context.Context, scheme *models.GradingScheme) error {
	scheme.UpdatedAt = time.Now().UTC()
	const query = `UPDATE grading_schemes SET name = :name, config = :config, updated_at = :updated_at
        WHERE id = :id AND school_id = :school_id`
	res, err := r.db.NamedExecContext(ctx, query, scheme)
	if err != nil {
		return fmt.Errorf("update grading scheme: %w", err)
	}
	return expectAffected(res)
}
