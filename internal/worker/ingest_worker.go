package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shikshaprep/mocktest-backend/internal/config"
	"github.com/shikshaprep/mocktest-backend/internal/model"
	"github.com/shikshaprep/mocktest-backend/internal/repository"
	"github.com/shikshaprep/mocktest-backend/internal/websocket"
)

const IngestPollTimeout = 1 * time.Second

// TestStore is the slice of the repository the pipeline needs.
type TestStore interface {
	GetForProcessing(ctx context.Context, id uuid.UUID) (*model.MockTest, error)
	MarkCompleted(ctx context.Context, id uuid.UUID, questions []model.Question, duration string) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
}

// Extractor pulls plain text out of a stored document.
type Extractor interface {
	ExtractText(data []byte) (string, error)
}

// Generator turns extracted text into a generated test.
type Generator interface {
	GenerateQuestions(ctx context.Context, text string) (*model.GeneratedTest, error)
}

// PayloadCacher warms the read-side cache once a test completes.
type PayloadCacher interface {
	WarmPayloadCache(ctx context.Context, test *model.MockTest) error
}

// IngestWorker drains the ingestion queue with a fixed pool of goroutines.
// Each job runs the extract → generate → persist pipeline for one test.
type IngestWorker struct {
	store     TestStore
	extractor Extractor
	generator Generator
	cacher    PayloadCacher
	rdb       *redis.Client
	cfg       *config.Config
	log       zerolog.Logger
}

func NewIngestWorker(
	store TestStore,
	extractor Extractor,
	generator Generator,
	cacher PayloadCacher,
	rdb *redis.Client,
	cfg *config.Config,
	log zerolog.Logger,
) *IngestWorker {
	return &IngestWorker{
		store:     store,
		extractor: extractor,
		generator: generator,
		cacher:    cacher,
		rdb:       rdb,
		cfg:       cfg,
		log:       log.With().Str("component", "ingest_worker").Logger(),
	}
}

type ingestJob struct {
	TestID string `json:"test_id"`
}

// ----------------------------------------------------------------
// Worker pool
// ----------------------------------------------------------------

// Start blocks until ctx is cancelled. The pool size caps how many
// documents are in the AI pipeline at once.
func (w *IngestWorker) Start(ctx context.Context) {
	n := w.cfg.MaxConcurrentIngestions
	if n < 1 {
		n = 1
	}
	w.log.Info().Int("workers", n).Msg("IngestWorker started")

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			w.loop(ctx, slot)
		}(i)
	}
	wg.Wait()
	w.log.Info().Msg("IngestWorker stopped")
}

func (w *IngestWorker) loop(ctx context.Context, slot int) {
	log := w.log.With().Int("slot", slot).Logger()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		item, err := w.rdb.BLPop(ctx, IngestPollTimeout, config.WorkerKey.IngestQueue).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				log.Error().Err(err).Msg("BLPop error")
			}
			continue
		}
		if len(item) < 2 {
			continue
		}

		var job ingestJob
		if err := json.Unmarshal([]byte(item[1]), &job); err != nil {
			log.Error().Err(err).Msg("Invalid JSON payload")
			continue
		}

		id, err := uuid.Parse(job.TestID)
		if err != nil {
			log.Error().Str("test_id", job.TestID).Msg("Invalid test id in job")
			continue
		}

		w.process(ctx, log, id)
	}
}

// ----------------------------------------------------------------
// Pipeline
// ----------------------------------------------------------------

func (w *IngestWorker) process(ctx context.Context, log zerolog.Logger, id uuid.UUID) {
	log = log.With().Str("test_id", id.String()).Logger()
	start := time.Now()

	test, err := w.store.GetForProcessing(ctx, id)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load test")
		return
	}
	if test.Status != model.TestStatusProcessing {
		// Already handled, probably a duplicate delivery.
		log.Warn().Str("status", string(test.Status)).Msg("Skipping non-pending test")
		return
	}

	data, err := os.ReadFile(test.FilePath)
	if err != nil {
		w.fail(ctx, log, test, fmt.Sprintf("uploaded file could not be read: %v", err))
		return
	}

	text, err := w.extractWithTimeout(ctx, data)
	if err != nil {
		log.Warn().Err(err).Msg("Text extraction failed")
		w.fail(ctx, log, test, err.Error())
		return
	}

	genCtx, cancel := context.WithTimeout(ctx, w.cfg.GenerationTimeout)
	generated, err := w.generator.GenerateQuestions(genCtx, text)
	cancel()
	if err != nil {
		log.Warn().Err(err).Msg("Question generation failed")
		w.fail(ctx, log, test, err.Error())
		return
	}

	if err := w.store.MarkCompleted(ctx, test.ID, generated.Questions, generated.Duration); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			log.Warn().Msg("Test left processing state mid-pipeline, discarding result")
			return
		}
		log.Error().Err(err).Msg("Failed to persist generated test")
		return
	}

	test.Status = model.TestStatusCompleted
	test.Questions = generated.Questions
	test.Duration = &generated.Duration

	if err := w.cacher.WarmPayloadCache(ctx, test); err != nil {
		log.Warn().Err(err).Msg("Failed to warm payload cache")
	}
	w.publishStatus(ctx, test)

	log.Info().
		Int("questions", len(generated.Questions)).
		Dur("took", time.Since(start)).
		Msg("Ingestion completed")
}

// extractWithTimeout bounds text extraction. The PDF parser walks the
// page tree without cycle detection, so a malformed document can make it
// spin forever; the deadline frees the worker slot either way. The
// extraction goroutine itself cannot be interrupted and is abandoned on
// timeout.
func (w *IngestWorker) extractWithTimeout(ctx context.Context, data []byte) (string, error) {
	type result struct {
		text string
		err  error
	}

	ctx, cancel := context.WithTimeout(ctx, w.cfg.ExtractionTimeout)
	defer cancel()

	done := make(chan result, 1)
	go func() {
		text, err := w.extractor.ExtractText(data)
		done <- result{text: text, err: err}
	}()

	select {
	case res := <-done:
		return res.text, res.err
	case <-ctx.Done():
		return "", fmt.Errorf("text extraction did not finish within %s", w.cfg.ExtractionTimeout)
	}
}

func (w *IngestWorker) fail(ctx context.Context, log zerolog.Logger, test *model.MockTest, reason string) {
	if err := w.store.MarkFailed(ctx, test.ID, reason); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			log.Warn().Msg("Test left processing state mid-pipeline, not marking failed")
			return
		}
		log.Error().Err(err).Msg("Failed to mark test as failed")
		return
	}

	test.Status = model.TestStatusFailed
	test.ProcessingError = &reason
	w.publishStatus(ctx, test)
}

func (w *IngestWorker) publishStatus(ctx context.Context, test *model.MockTest) {
	event := websocket.StatusEvent{
		Event:         websocket.EventStatus,
		TestID:        test.ID.String(),
		Status:        test.Status,
		QuestionCount: len(test.Questions),
	}
	if test.ProcessingError != nil {
		event.ProcessingError = *test.ProcessingError
	}

	raw, _ := json.Marshal(event)
	if err := w.rdb.Publish(ctx, config.CacheKey.TestEventsChannel(test.ID.String()), raw).Err(); err != nil {
		w.log.Warn().Err(err).Str("test_id", test.ID.String()).Msg("Failed to publish status event")
	}
}
