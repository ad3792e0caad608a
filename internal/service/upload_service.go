package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shikshaprep/mocktest-backend/internal/config"
	"github.com/shikshaprep/mocktest-backend/internal/model"
	"github.com/shikshaprep/mocktest-backend/internal/repository"
)

// Sentinel errors for uploads.
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
)

type ingestJob struct {
	TestID string `json:"test_id"`
}

// UploadService accepts a PDF upload, creates the processing record, and
// enqueues the ingestion job. The HTTP response never waits for the pipeline.
type UploadService struct {
	cfg      *config.Config
	testRepo *repository.MockTestRepository
	rdb      *redis.Client
	log      zerolog.Logger
}

// NewUploadService creates a new UploadService.
func NewUploadService(cfg *config.Config, testRepo *repository.MockTestRepository, rdb *redis.Client, log zerolog.Logger) *UploadService {
	return &UploadService{
		cfg:      cfg,
		testRepo: testRepo,
		rdb:      rdb,
		log:      log.With().Str("component", "upload_service").Logger(),
	}
}

// AcceptPDF validates and stores the uploaded PDF, creates the mock test in
// processing state, and pushes an ingestion job onto the Redis queue.
func (s *UploadService) AcceptPDF(ctx context.Context, userID int, file multipart.File, header *multipart.FileHeader) (*model.MockTest, error) {
	if err := s.validate(header); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	// UUID filename so concurrent uploads of the same document never collide.
	storedName := uuid.New().String() + ".pdf"
	destPath := filepath.Join(s.cfg.UploadDir, storedName)

	dst, err := os.Create(destPath)
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(destPath)
		return nil, fmt.Errorf("write file: %w", err)
	}

	test := &model.MockTest{
		UserID:           userID,
		Name:             "Test from " + header.Filename,
		OriginalFileName: header.Filename,
		FilePath:         destPath,
		Status:           model.TestStatusProcessing,
		Questions:        []model.Question{},
	}

	if err := s.testRepo.Create(ctx, test); err != nil {
		os.Remove(destPath)
		return nil, fmt.Errorf("create test record: %w", err)
	}

	job, _ := json.Marshal(ingestJob{TestID: test.ID.String()})
	if err := s.rdb.RPush(ctx, config.WorkerKey.IngestQueue, job).Err(); err != nil {
		// The record exists but will never be picked up; fail it right away
		// so the dashboard does not show an eternal "processing".
		if markErr := s.testRepo.MarkFailed(ctx, test.ID, "could not schedule processing"); markErr != nil {
			s.log.Error().Err(markErr).Str("test_id", test.ID.String()).Msg("Failed to mark unscheduled test")
		}
		return nil, fmt.Errorf("enqueue ingestion job: %w", err)
	}

	s.log.Info().
		Str("test_id", test.ID.String()).
		Int("user_id", userID).
		Str("file", header.Filename).
		Msg("Upload accepted, ingestion queued")

	return test, nil
}

func (s *UploadService) validate(header *multipart.FileHeader) error {
	contentType := header.Header.Get("Content-Type")
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if contentType != "application/pdf" && ext != ".pdf" {
		return fmt.Errorf("%w: %s", ErrUnsupportedFileType, contentType)
	}
	if header.Size > s.cfg.MaxUploadBytes {
		return fmt.Errorf("%w: %d bytes (max: %d)", ErrFileTooLarge, header.Size, s.cfg.MaxUploadBytes)
	}
	return nil
}
