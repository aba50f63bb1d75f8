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

const scoreColumns = `id, school_id, scheme_id, student_id, class_id, subject_id, term_id, scores,
        total_ca, total, percentage, grade, max_score, is_absent, is_exempted, published, recorded_by,
        calculated_at, created_at, updated_at`

const upsertScoreQuery = `INSERT INTO score_records (` + scoreColumns + `)
        VALUES (:id, :school_id, :scheme_id, :student_id, :class_id, :subject_id, :term_id, :scores,
        :total_ca, :total, :percentage, :grade, :max_score, :is_absent, :is_exempted, :published, :recorded_by,
        :calculated_at, :created_at, :updated_at)
        ON CONFLICT (scheme_id, student_id)
        DO UPDATE SET scores = EXCLUDED.scores, total_ca = EXCLUDED.total_ca, total = EXCLUDED.total,
        percentage = EXCLUDED.percentage, grade = EXCLUDED.grade, max_score = EXCLUDED.max_score,
        is_absent = EXCLUDED.is_absent, is_exempted = EXCLUDED.is_exempted, recorded_by = EXCLUDED.recorded_by,
        calculated_at = EXCLUDED.calculated_at, updated_at = EXCLUDED.updated_at
        RETURNING id, created_at, published`

// ScoreRepository persists computed score records.
type ScoreRepository struct {
	db *sqlx.DB
}

// NewScoreRepository constructs repository.
func NewScoreRepository(db *sqlx.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

// Upsert stores a single record, replacing the previous calculation for the
// same scheme and student. The stored id, created_at and published flag are
// read back, so a resubmission keeps its original identity.
func (r *ScoreRepository) Upsert(ctx context.Context, record *models.ScoreRecord) error {
	prepareScore(record, time.Now().UTC())
	return upsertScore(ctx, r.db, record)
}

// BulkUpsert stores all records in one transaction.
func (r *ScoreRepository) BulkUpsert(ctx context.Context, records []models.ScoreRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	for i := range records {
		prepareScore(&records[i], now)
		if err := upsertScore(ctx, tx, &records[i]); err != nil {
			tx.Rollback() //nolint:errcheck
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit score records: %w", err)
	}
	return nil
}

// List returns records matching the filter.
func (r *ScoreRepository) List(ctx context.Context, filter models.ScoreFilter) ([]models.ScoreRecord, error) {
	query := `SELECT ` + scoreColumns + ` FROM score_records WHERE school_id = $1`
	args := []interface{}{filter.SchoolID}
	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		query += fmt.Sprintf(" AND %s = $%d", column, len(args))
	}
	add("scheme_id", filter.SchemeID)
	add("student_id", filter.StudentID)
	add("class_id", filter.ClassID)
	add("subject_id", filter.SubjectID)
	add("term_id", filter.TermID)
	query += " ORDER BY subject_id, student_id"

	var records []models.ScoreRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("list score records: %w", err)
	}
	return records, nil
}

// FindByID loads one record.
func (r *ScoreRepository) FindByID(ctx context.Context, schoolID, id string) (*models.ScoreRecord, error) {
	const query = `SELECT ` + scoreColumns + ` FROM score_records WHERE school_id = $1 AND id = $2`
	var record models.ScoreRecord
	if err := r.db.GetContext(ctx, &record, query, schoolID, id); err != nil {
		return nil, err
	}
	return &record, nil
}

// SetPublished toggles the parent-visibility flag.
func (r *ScoreRepository) SetPublished(ctx context.Context, schoolID, id string, published bool) error {
	const query = `UPDATE score_records SET published = $1, updated_at = $2 WHERE school_id = $3 AND id = $4`
	res, err := r.db.ExecContext(ctx, query, published, time.Now().UTC(), schoolID, id)
	if err != nil {
		return fmt.Errorf("publish score record: %w", err)
	}
	return expectAffected(res)
}

func upsertScore(ctx context.Context, ext sqlx.ExtContext, record *models.ScoreRecord) error {
	rows, err := sqlx.NamedQueryContext(ctx, ext, upsertScoreQuery, record)
	if err != nil {
		return fmt.Errorf("upsert score record: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return fmt.Errorf("upsert score record: %w", err)
		}
		return fmt.Errorf("upsert score record: %w", sql.ErrNoRows)
	}
	if err := rows.Scan(&record.ID, &record.CreatedAt, &record.Published); err != nil {
		return fmt.Errorf("scan upserted score record: %w", err)
	}
	return rows.Close()
}

func prepareScore(record *models.ScoreRecord, now time.Time) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	if record.CalculatedAt.IsZero() {
		record.CalculatedAt = now
	}
	record.UpdatedAt = now
}
