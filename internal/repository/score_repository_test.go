package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-adp-scoring/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func ptr(v float64) *float64 { return &v }

var scoreRowColumns = []string{
	"id", "school_id", "scheme_id", "student_id", "class_id", "subject_id", "term_id", "scores",
	"total_ca", "total", "percentage", "grade", "max_score", "is_absent", "is_exempted", "published", "recorded_by",
	"calculated_at", "created_at", "updated_at",
}

func upsertedRow(id string, created time.Time, published bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "created_at", "published"}).AddRow(id, created, published)
}

func TestScoreRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScoreRepository(db)

	mock.ExpectQuery("INSERT INTO score_records (.+) RETURNING id, created_at, published").
		WillReturnRows(upsertedRow("rec-new", time.Now(), false))

	record := &models.ScoreRecord{SchoolID: "school-1", SchemeID: "scheme-1", StudentID: "stu-1",
		Scores: models.ScoreInputColumn{"ca1": ptr(8), "ca3": nil}, Total: 92, Percentage: 92, Grade: "A1"}
	require.NoError(t, repo.Upsert(context.Background(), record))
	assert.Equal(t, "rec-new", record.ID)
	assert.False(t, record.CalculatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScoreRepositoryUpsertConflictKeepsStoredIdentity(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScoreRepository(db)

	created := time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO score_records (.+) ON CONFLICT").
		WillReturnRows(upsertedRow("rec-original", created, true))

	record := &models.ScoreRecord{SchoolID: "school-1", SchemeID: "scheme-1", StudentID: "stu-1", Total: 80, Percentage: 80}
	require.NoError(t, repo.Upsert(context.Background(), record))
	assert.Equal(t, "rec-original", record.ID)
	assert.Equal(t, created, record.CreatedAt)
	assert.True(t, record.Published)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScoreRepositoryBulkUpsertReadsBackIDs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScoreRepository(db)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO score_records").WillReturnRows(upsertedRow("rec-1", now, false))
	mock.ExpectQuery("INSERT INTO score_records").WillReturnRows(upsertedRow("rec-2", now, true))
	mock.ExpectCommit()

	records := []models.ScoreRecord{
		{SchoolID: "school-1", SchemeID: "scheme-1", StudentID: "stu-1"},
		{SchoolID: "school-1", SchemeID: "scheme-1", StudentID: "stu-2"},
	}
	require.NoError(t, repo.BulkUpsert(context.Background(), records))
	assert.Equal(t, "rec-1", records[0].ID)
	assert.Equal(t, "rec-2", records[1].ID)
	assert.True(t, records[1].Published)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScoreRepositoryBulkUpsertRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScoreRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO score_records").WillReturnRows(upsertedRow("rec-1", time.Now(), false))
	mock.ExpectQuery("INSERT INTO score_records").WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	err := repo.BulkUpsert(context.Background(), []models.ScoreRecord{
		{SchoolID: "school-1", SchemeID: "scheme-1", StudentID: "stu-1"},
		{SchoolID: "school-1", SchemeID: "scheme-1", StudentID: "stu-2"},
	})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScoreRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScoreRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(scoreRowColumns).
		AddRow("rec-1", "school-1", "scheme-1", "stu-1", "class-1", "math", "term-1", []byte(`{"ca1":8,"ca3":null}`),
			17.0, 82.0, 82.0, "A1", 100.0, false, false, true, "teacher-1", now, now, now)
	mock.ExpectQuery("SELECT (.+) FROM score_records WHERE school_id = \\$1 AND student_id = \\$2 AND term_id = \\$3").
		WithArgs("school-1", "stu-1", "term-1").
		WillReturnRows(rows)

	records, err := repo.List(context.Background(), models.ScoreFilter{SchoolID: "school-1", StudentID: "stu-1", TermID: "term-1"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "A1", records[0].Grade)
	require.Contains(t, records[0].Scores, "ca3")
	assert.Nil(t, records[0].Scores["ca3"])
	assert.Equal(t, 8.0, *records[0].Scores["ca1"])
	assert.Equal(t, 82.0, records[0].SubjectScore().Percentage)
}

func TestScoreRepositorySetPublishedNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScoreRepository(db)

	mock.ExpectExec("UPDATE score_records SET published").
		WithArgs(true, sqlmock.AnyArg(), "school-1", "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetPublished(context.Background(), "school-1", "missing", true)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
