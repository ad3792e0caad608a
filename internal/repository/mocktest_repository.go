package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shikshaprep/mocktest-backend/internal/model"
)

// ErrStaleStatus is returned by a conditional status update when the record
// was not in the expected state (already terminal, already graded against a
// concurrent writer, or deleted). The caller must treat the write as not
// applied.
var ErrStaleStatus = errors.New("record not in expected status")

// MockTestRepository handles mock test data access. Every owner-facing query
// is scoped by user_id so another owner's record is indistinguishable from a
// missing one.
type MockTestRepository struct {
	pool *pgxpool.Pool
}

// NewMockTestRepository creates a new MockTestRepository.
func NewMockTestRepository(pool *pgxpool.Pool) *MockTestRepository {
	return &MockTestRepository{pool: pool}
}

// Create inserts a new mock test in processing state with no questions.
func (r *MockTestRepository) Create(ctx context.Context, t *model.MockTest) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO mock_tests (user_id, name, original_file_name, file_path, status, questions)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		t.UserID, t.Name, t.OriginalFileName, t.FilePath, t.Status, t.Questions,
	).Scan(&t.ID, &t.CreatedAt)
}

// GetByID retrieves a mock test by id, scoped to its owner.
func (r *MockTestRepository) GetByID(ctx context.Context, id uuid.UUID, userID int) (*model.MockTest, error) {
	t := &model.MockTest{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, name, original_file_name, file_path, status,
		        questions, duration, last_taken_at, score, processing_error, created_at
		 FROM mock_tests WHERE id = $1 AND user_id = $2`, id, userID,
	).Scan(&t.ID, &t.UserID, &t.Name, &t.OriginalFileName, &t.FilePath, &t.Status,
		&t.Questions, &t.Duration, &t.LastTakenAt, &t.Score, &t.ProcessingError, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// GetForProcessing retrieves a mock test by id without owner scoping.
// Used only by the ingestion worker, which acts on behalf of the system.
func (r *MockTestRepository) GetForProcessing(ctx context.Context, id uuid.UUID) (*model.MockTest, error) {
	t := &model.MockTest{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, name, original_file_name, file_path, status,
		        questions, duration, last_taken_at, score, processing_error, created_at
		 FROM mock_tests WHERE id = $1`, id,
	).Scan(&t.ID, &t.UserID, &t.Name, &t.OriginalFileName, &t.FilePath, &t.Status,
		&t.Questions, &t.Duration, &t.LastTakenAt, &t.Score, &t.ProcessingError, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListByUser retrieves dashboard summaries for one owner, newest first.
func (r *MockTestRepository) ListByUser(ctx context.Context, userID int) ([]model.TestSummary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, original_file_name, jsonb_array_length(questions),
		        status, created_at, last_taken_at, score, processing_error
		 FROM mock_tests WHERE user_id = $1
		 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tests []model.TestSummary
	for rows.Next() {
		var t model.TestSummary
		if err := rows.Scan(&t.ID, &t.Name, &t.OriginalFileName, &t.QuestionCount,
			&t.Status, &t.CreatedAt, &t.LastTakenAt, &t.Score, &t.ProcessingError); err != nil {
			return nil, err
		}
		tests = append(tests, t)
	}
	return tests, rows.Err()
}

// MarkCompleted transitions a processing test to completed with its generated
// questions and duration. The status predicate makes the update a compare-and-
// set: a test that already reached a terminal state is never overwritten.
func (r *MockTestRepository) MarkCompleted(ctx context.Context, id uuid.UUID, questions []model.Question, duration string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE mock_tests
		 SET status = $1, questions = $2, duration = $3, processing_error = NULL
		 WHERE id = $4 AND status = $5`,
		model.TestStatusCompleted, questions, duration, id, model.TestStatusProcessing)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStaleStatus
	}
	return nil
}

// MarkFailed transitions a processing test to failed with a human-readable
// reason. Same compare-and-set semantics as MarkCompleted.
func (r *MockTestRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE mock_tests
		 SET status = $1, processing_error = $2
		 WHERE id = $3 AND status = $4`,
		model.TestStatusFailed, reason, id, model.TestStatusProcessing)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStaleStatus
	}
	return nil
}

// RecordSubmission persists a graded attempt's score and marks the take time.
// The status predicate rejects a submission racing a delete or a test that
// somehow left the completed state.
func (r *MockTestRepository) RecordSubmission(ctx context.Context, id uuid.UUID, userID, score int) (time.Time, error) {
	var takenAt time.Time
	err := r.pool.QueryRow(ctx,
		`UPDATE mock_tests
		 SET score = $1, last_taken_at = NOW()
		 WHERE id = $2 AND user_id = $3 AND status = $4
		 RETURNING last_taken_at`,
		score, id, userID, model.TestStatusCompleted,
	).Scan(&takenAt)
	if err != nil {
		return time.Time{}, err
	}
	return takenAt, nil
}

// Delete removes a mock test owned by userID and returns the backing file
// path so the caller can remove it from storage.
func (r *MockTestRepository) Delete(ctx context.Context, id uuid.UUID, userID int) (string, error) {
	var filePath string
	err := r.pool.QueryRow(ctx,
		`DELETE FROM mock_tests WHERE id = $1 AND user_id = $2
		 RETURNING file_path`, id, userID,
	).Scan(&filePath)
	if err != nil {
		return "", err
	}
	return filePath, nil
}

// CountByStatus returns the number of tests in each lifecycle state.
func (r *MockTestRepository) CountByStatus(ctx context.Context) (map[model.TestStatus]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT status, COUNT(*) FROM mock_tests GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[model.TestStatus]int)
	for rows.Next() {
		var status model.TestStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
