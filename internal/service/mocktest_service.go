package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shikshaprep/mocktest-backend/internal/config"
	"github.com/shikshaprep/mocktest-backend/internal/model"
)

// Domain errors. A record that is missing and a record owned by someone else
// are both ErrTestNotFound — existence must not leak across owners.
var (
	ErrTestNotFound = errors.New("test not found")
	ErrTestNotReady = errors.New("test is not completed yet")
	ErrFileMissing  = errors.New("backing file is missing from storage")
)

// MockTestStore is the slice of the repository the service needs.
// *repository.MockTestRepository satisfies it.
type MockTestStore interface {
	GetByID(ctx context.Context, id uuid.UUID, userID int) (*model.MockTest, error)
	ListByUser(ctx context.Context, userID int) ([]model.TestSummary, error)
	RecordSubmission(ctx context.Context, id uuid.UUID, userID, score int) (time.Time, error)
	Delete(ctx context.Context, id uuid.UUID, userID int) (string, error)
	CountByStatus(ctx context.Context) (map[model.TestStatus]int, error)
}

// MockTestService handles mock test business logic and the Redis payload
// cache for completed tests.
type MockTestService struct {
	testRepo MockTestStore
	rdb      *redis.Client
	log      zerolog.Logger
}

// NewMockTestService creates a new MockTestService.
func NewMockTestService(testRepo MockTestStore, rdb *redis.Client, log zerolog.Logger) *MockTestService {
	return &MockTestService{
		testRepo: testRepo,
		rdb:      rdb,
		log:      log.With().Str("component", "mocktest_service").Logger(),
	}
}

// ListByOwner retrieves the dashboard summaries for one user, newest first.
func (s *MockTestService) ListByOwner(ctx context.Context, userID int) ([]model.TestSummary, error) {
	tests, err := s.testRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if tests == nil {
		tests = []model.TestSummary{}
	}
	return tests, nil
}

// GetByOwner retrieves one mock test, scoped to its owner.
func (s *MockTestService) GetByOwner(ctx context.Context, id uuid.UUID, userID int) (*model.MockTest, error) {
	test, err := s.testRepo.GetByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("get test: %w", err)
	}
	return test, nil
}

// GetPayload returns the test-taking payload for a completed test, serving
// from the Redis cache warmed by the ingestion worker and falling back to
// PostgreSQL on a miss.
func (s *MockTestService) GetPayload(ctx context.Context, id uuid.UUID, userID int) (*model.TestPayload, error) {
	test, err := s.GetByOwner(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if test.Status == model.TestStatusCompleted {
		if cached, err := s.cachedPayload(ctx, id); err == nil {
			return cached, nil
		}
	}

	payload := &model.TestPayload{
		ID:        test.ID,
		Name:      test.Name,
		Duration:  test.Duration,
		Status:    test.Status,
		Questions: test.Questions,
	}
	if payload.Questions == nil {
		payload.Questions = []model.Question{}
	}
	return payload, nil
}

// Submit grades a positional answer list against a completed test and
// persists score + last_taken_at. A non-completed test is rejected with
// ErrTestNotReady and no mutation occurs.
func (s *MockTestService) Submit(ctx context.Context, id uuid.UUID, userID int, answers []string) (*model.SubmissionResult, error) {
	test, err := s.GetByOwner(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if test.Status != model.TestStatusCompleted {
		return nil, ErrTestNotReady
	}

	result := GradeAnswers(test.Questions, answers)

	if _, err := s.testRepo.RecordSubmission(ctx, id, userID, result.Score); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// The record left the completed state under us (e.g. a racing
			// delete). The attempt is not persisted.
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("record submission: %w", err)
	}

	s.log.Info().
		Str("test_id", id.String()).
		Int("user_id", userID).
		Int("score", result.Score).
		Int("correct", result.CorrectAnswers).
		Int("total", result.TotalQuestions).
		Msg("Test submitted and graded")

	return &result, nil
}

// Delete removes a mock test, its backing file, and its cached payload.
func (s *MockTestService) Delete(ctx context.Context, id uuid.UUID, userID int) error {
	filePath, err := s.testRepo.Delete(ctx, id, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTestNotFound
		}
		return fmt.Errorf("delete test: %w", err)
	}

	if filePath != "" {
		if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
			// The row is gone; an orphaned file is a log line, not a failure.
			s.log.Warn().Err(err).Str("path", filePath).Msg("Failed to remove backing file")
		}
	}

	if err := s.rdb.Del(ctx, config.CacheKey.TestPayloadKey(id.String())).Err(); err != nil {
		s.log.Warn().Err(err).Str("test_id", id.String()).Msg("Failed to drop payload cache")
	}

	return nil
}

// ResolveDownload returns the stored PDF path for a completed test.
func (s *MockTestService) ResolveDownload(ctx context.Context, id uuid.UUID, userID int) (path, fileName string, err error) {
	test, err := s.GetByOwner(ctx, id, userID)
	if err != nil {
		return "", "", err
	}
	if test.Status != model.TestStatusCompleted {
		return "", "", ErrTestNotReady
	}
	if _, err := os.Stat(test.FilePath); err != nil {
		return "", "", ErrFileMissing
	}
	return test.FilePath, test.OriginalFileName, nil
}

// WarmPayloadCache stores a completed test's payload in Redis. Called by the
// ingestion worker right after the completed transition.
func (s *MockTestService) WarmPayloadCache(ctx context.Context, test *model.MockTest) error {
	payload := model.TestPayload{
		ID:        test.ID,
		Name:      test.Name,
		Duration:  test.Duration,
		Status:    test.Status,
		Questions: test.Questions,
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	key := config.CacheKey.TestPayloadKey(test.ID.String())
	if err := s.rdb.Set(ctx, key, raw, 0).Err(); err != nil {
		return fmt.Errorf("cache payload: %w", err)
	}

	s.log.Debug().
		Str("test_id", test.ID.String()).
		Int("questions", len(test.Questions)).
		Msg("Payload cache warmed")
	return nil
}

// CountByStatus exposes lifecycle counts for the admin stats endpoint.
func (s *MockTestService) CountByStatus(ctx context.Context) (map[model.TestStatus]int, error) {
	return s.testRepo.CountByStatus(ctx)
}

func (s *MockTestService) cachedPayload(ctx context.Context, id uuid.UUID) (*model.TestPayload, error) {
	data, err := s.rdb.Get(ctx, config.CacheKey.TestPayloadKey(id.String())).Bytes()
	if err != nil {
		return nil, err
	}
	var payload model.TestPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("unmarshal cached payload: %w", err)
	}
	return &payload, nil
}
