package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shikshaprep/mocktest-backend/internal/config"
	"github.com/shikshaprep/mocktest-backend/internal/model"
)

type fakeTestStore struct {
	tests       map[uuid.UUID]*model.MockTest
	submissions map[uuid.UUID]int
}

func newFakeTestStore() *fakeTestStore {
	return &fakeTestStore{
		tests:       make(map[uuid.UUID]*model.MockTest),
		submissions: make(map[uuid.UUID]int),
	}
}

func (s *fakeTestStore) GetByID(_ context.Context, id uuid.UUID, userID int) (*model.MockTest, error) {
	t, ok := s.tests[id]
	if !ok || t.UserID != userID {
		return nil, pgx.ErrNoRows
	}
	copied := *t
	return &copied, nil
}

func (s *fakeTestStore) ListByUser(_ context.Context, userID int) ([]model.TestSummary, error) {
	var out []model.TestSummary
	for _, t := range s.tests {
		if t.UserID == userID {
			out = append(out, model.TestSummary{ID: t.ID, Name: t.Name, Status: t.Status})
		}
	}
	return out, nil
}

func (s *fakeTestStore) RecordSubmission(_ context.Context, id uuid.UUID, userID, score int) (time.Time, error) {
	t, ok := s.tests[id]
	if !ok || t.UserID != userID || t.Status != model.TestStatusCompleted {
		return time.Time{}, pgx.ErrNoRows
	}
	s.submissions[id] = score
	return time.Now(), nil
}

func (s *fakeTestStore) Delete(_ context.Context, id uuid.UUID, userID int) (string, error) {
	t, ok := s.tests[id]
	if !ok || t.UserID != userID {
		return "", pgx.ErrNoRows
	}
	delete(s.tests, id)
	return t.FilePath, nil
}

func (s *fakeTestStore) CountByStatus(_ context.Context) (map[model.TestStatus]int, error) {
	counts := make(map[model.TestStatus]int)
	for _, t := range s.tests {
		counts[t.Status]++
	}
	return counts, nil
}

func testMockTestService(t *testing.T) (*MockTestService, *fakeTestStore, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := newFakeTestStore()
	return NewMockTestService(store, rdb, zerolog.Nop()), store, rdb
}

func seedMockTest(store *fakeTestStore, status model.TestStatus) *model.MockTest {
	test := &model.MockTest{
		ID:     uuid.New(),
		UserID: 1,
		Name:   "Test from doc.pdf",
		Status: status,
		Questions: []model.Question{
			{Question: "Q1", Type: model.QuestionTypeMCQ, Options: []string{"A", "B"}, CorrectAnswer: "A"},
			{Question: "Q2", Type: model.QuestionTypeTrueFalse, Options: []string{"True", "False"}, CorrectAnswer: "True"},
		},
	}
	store.tests[test.ID] = test
	return test
}

func TestSubmitGradesCompletedTest(t *testing.T) {
	svc, store, _ := testMockTestService(t)
	test := seedMockTest(store, model.TestStatusCompleted)

	result, err := svc.Submit(context.Background(), test.ID, 1, []string{"A", "False"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Score != 50 {
		t.Errorf("expected score 50, got %d", result.Score)
	}
	if result.CorrectAnswers != 1 || result.TotalQuestions != 2 {
		t.Errorf("expected 1/2 correct, got %d/%d", result.CorrectAnswers, result.TotalQuestions)
	}
	if score, ok := store.submissions[test.ID]; !ok || score != 50 {
		t.Errorf("submission was not recorded with score 50, got %v %v", score, ok)
	}
}

func TestSubmitRejectsProcessingTest(t *testing.T) {
	svc, store, _ := testMockTestService(t)
	test := seedMockTest(store, model.TestStatusProcessing)

	if _, err := svc.Submit(context.Background(), test.ID, 1, []string{"A", "True"}); !errors.Is(err, ErrTestNotReady) {
		t.Fatalf("expected ErrTestNotReady, got %v", err)
	}
	if len(store.submissions) != 0 {
		t.Error("a rejected submission must not be recorded")
	}
}

func TestSubmitScopesToOwner(t *testing.T) {
	svc, store, _ := testMockTestService(t)
	test := seedMockTest(store, model.TestStatusCompleted)

	if _, err := svc.Submit(context.Background(), test.ID, 2, []string{"A"}); !errors.Is(err, ErrTestNotFound) {
		t.Fatalf("expected ErrTestNotFound for another user's test, got %v", err)
	}
	if _, err := svc.Submit(context.Background(), uuid.New(), 1, []string{"A"}); !errors.Is(err, ErrTestNotFound) {
		t.Fatalf("expected ErrTestNotFound for unknown id, got %v", err)
	}
}

func TestDeleteRemovesFileAndCache(t *testing.T) {
	svc, store, rdb := testMockTestService(t)
	test := seedMockTest(store, model.TestStatusCompleted)

	path := filepath.Join(t.TempDir(), "doc.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.7 test bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	store.tests[test.ID].FilePath = path

	ctx := context.Background()
	cacheKey := config.CacheKey.TestPayloadKey(test.ID.String())
	if err := rdb.Set(ctx, cacheKey, `{"id":"x"}`, 0).Err(); err != nil {
		t.Fatal(err)
	}

	if err := svc.Delete(ctx, test.ID, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("backing file should be removed")
	}
	if err := rdb.Get(ctx, cacheKey).Err(); !errors.Is(err, redis.Nil) {
		t.Errorf("cached payload should be dropped, got %v", err)
	}
	if _, err := svc.GetByOwner(ctx, test.ID, 1); !errors.Is(err, ErrTestNotFound) {
		t.Errorf("deleted test should be gone, got %v", err)
	}
}

func TestDeleteUnknownTest(t *testing.T) {
	svc, _, _ := testMockTestService(t)
	if err := svc.Delete(context.Background(), uuid.New(), 1); !errors.Is(err, ErrTestNotFound) {
		t.Fatalf("expected ErrTestNotFound, got %v", err)
	}
}

func TestGetPayloadPrefersCache(t *testing.T) {
	svc, store, _ := testMockTestService(t)
	test := seedMockTest(store, model.TestStatusCompleted)

	ctx := context.Background()
	if err := svc.WarmPayloadCache(ctx, store.tests[test.ID]); err != nil {
		t.Fatalf("warm cache: %v", err)
	}
	// Mutate the store copy; a cache hit still serves the warmed payload.
	store.tests[test.ID].Name = "renamed"

	payload, err := svc.GetPayload(ctx, test.ID, 1)
	if err != nil {
		t.Fatalf("get payload: %v", err)
	}
	if payload.Name != "Test from doc.pdf" {
		t.Errorf("expected cached payload, got name %q", payload.Name)
	}
	if len(payload.Questions) != 2 {
		t.Errorf("expected 2 questions, got %d", len(payload.Questions))
	}
}
