package ingestion

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/kokushi/core"
	"github.com/poiesic/kokushi/corpus"
	"github.com/poiesic/kokushi/storage"
)

// DefaultBatchSize is the number of questions written per transaction.
const DefaultBatchSize = 500

// Importer writes question corpora into storage.
type Importer struct {
	questionRepository storage.QuestionRepository
	synonymRepository  storage.SynonymRepository
	metaRepository     storage.MetaRepository
	pool               *ants.Pool
	batchSize          int
	backoff            Backoff
	progress           io.Writer
	logger             *slog.Logger
}

// Report summarizes an import.
type Report struct {
	Fingerprint   uint64
	Skipped       bool // stored content already matched the fingerprint
	Questions     int  // questions in the corpus
	Dropped       int  // records excluded when the corpus was loaded
	Written       int
	Deleted       int // stored questions no longer in the corpus
	SynonymGroups int
	Elapsed       time.Duration
}

// Option configures an Importer.
type Option func(*Importer) error

// WithPoolSize sets how many batches are written concurrently.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(imp *Importer) error {
		if size < 1 {
			size = 1
		}

		// Release old pool
		if imp.pool != nil {
			imp.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		imp.pool = pool
		return nil
	}
}

// WithBatchSize sets the number of questions written per transaction.
// Default is DefaultBatchSize.
func WithBatchSize(size int) Option {
	return func(imp *Importer) error {
		if size < 1 {
			return ErrInvalidBatchSize
		}
		imp.batchSize = size
		return nil
	}
}

// WithRetry sets how often a failed write is attempted and the delay before
// the first retry. The delay doubles on each retry.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(imp *Importer) error {
		if maxAttempts < 1 {
			return ErrInvalidMaxAttempts
		}
		imp.backoff = Backoff{Attempts: maxAttempts, BaseDelay: baseDelay}
		return nil
	}
}

// WithProgress reports write progress to w. Default is no output.
func WithProgress(w io.Writer) Option {
	return func(imp *Importer) error {
		imp.progress = w
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(imp *Importer) error {
		if logger == nil {
			logger = slog.Default()
		}
		imp.logger = logger
		return nil
	}
}

// NewImporter creates a new importer. Call Release when done.
func NewImporter(
	questionRepository storage.QuestionRepository,
	synonymRepository storage.SynonymRepository,
	metaRepository storage.MetaRepository,
	opts ...Option,
) (*Importer, error) {
	if questionRepository == nil {
		return nil, ErrQuestionRepositoryRequired
	}
	if synonymRepository == nil {
		return nil, ErrSynonymRepositoryRequired
	}
	if metaRepository == nil {
		return nil, ErrMetaRepositoryRequired
	}

	imp := &Importer{
		questionRepository: questionRepository,
		synonymRepository:  synonymRepository,
		metaRepository:     metaRepository,
		batchSize:          DefaultBatchSize,
		backoff:            DefaultBackoff,
		logger:             slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if err := opt(imp); err != nil {
			imp.Release()
			return nil, err
		}
	}

	if imp.pool == nil {
		pool, err := ants.NewPool(max(runtime.NumCPU()/2, 1))
		if err != nil {
			return nil, err
		}
		imp.pool = pool
	}

	return imp, nil
}

// Release stops the worker pool.
func (imp *Importer) Release() {
	if imp.pool != nil {
		imp.pool.Release()
		imp.pool = nil
	}
}

// Import stores c and groups. When the stored fingerprint equals the
// fingerprint of c and groups nothing is written, unless force is set.
func (imp *Importer) Import(ctx context.Context, c *corpus.Corpus, groups []core.SynonymGroup, force bool) (*Report, error) {
	if c == nil {
		return nil, ErrCorpusRequired
	}

	start := time.Now()
	questions := c.Questions()
	report := &Report{
		Fingerprint:   core.Fingerprint(questions, groups),
		Questions:     len(questions),
		Dropped:       c.Dropped(),
		SynonymGroups: len(groups),
	}

	stored, err := imp.metaRepository.LoadMeta(ctx)
	if err != nil {
		return nil, fmt.Errorf("load stored meta: %w", err)
	}
	if !force && stored != nil && stored.Fingerprint == report.Fingerprint {
		imp.logger.Info("corpus unchanged, skipping import", "fingerprint", fmt.Sprintf("%016x", report.Fingerprint))
		report.Skipped = true
		report.Elapsed = time.Since(start)
		return report, nil
	}

	imp.logger.Info("importing corpus",
		"questions", len(questions),
		"synonymGroups", len(groups),
		"force", force)

	written, err := imp.writeQuestions(ctx, questions)
	report.Written = written
	if err != nil {
		return report, err
	}

	report.Deleted, err = imp.deleteStale(ctx, questions)
	if err != nil {
		return report, err
	}

	err = imp.retry(ctx, func() error {
		return imp.synonymRepository.ReplaceSynonyms(ctx, groups)
	})
	if err != nil {
		return report, fmt.Errorf("replace synonyms: %w", err)
	}

	meta := c.Meta()
	if meta.TotalCount == 0 {
		meta.TotalCount = len(questions)
	}
	meta.YearRange = c.YearRange()
	meta.Fingerprint = report.Fingerprint

	// Last write: an import that fails before this point is redone next time.
	err = imp.retry(ctx, func() error {
		return imp.metaRepository.SaveMeta(ctx, &meta)
	})
	if err != nil {
		return report, fmt.Errorf("save meta: %w", err)
	}

	report.Elapsed = time.Since(start)
	imp.logger.Info("import complete",
		"written", report.Written,
		"deleted", report.Deleted,
		"elapsed", report.Elapsed)

	return report, nil
}

// writeQuestions writes questions in batches on the worker pool. The first
// failing batch cancels the remaining ones.
func (imp *Importer) writeQuestions(ctx context.Context, questions []*core.Question) (int, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var tracker *ProgressTracker
	if imp.progress != nil {
		tracker = NewProgressTracker(imp.progress, "Imported", len(questions), imp.batchSize)
		defer tracker.Finish()
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		written  int
		firstErr error
	)

	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
	}

	for from := 0; from < len(questions); from += imp.batchSize {
		batch := questions[from:min(from+imp.batchSize, len(questions))]

		wg.Add(1)
		task := func() {
			defer wg.Done()
			err := imp.retry(ctx, func() error {
				return imp.questionRepository.PutQuestions(ctx, batch...)
			})
			if err != nil {
				fail(fmt.Errorf("write questions %s..%s: %w", batch[0].ID, batch[len(batch)-1].ID, err))
				return
			}
			mu.Lock()
			written += len(batch)
			mu.Unlock()
			if tracker != nil {
				tracker.Add(len(batch))
			}
		}

		if err := imp.pool.Submit(task); err != nil {
			imp.logger.Warn("worker pool unavailable, writing inline", "err", err)
			task()
		}
	}
	wg.Wait()

	return written, firstErr
}

// deleteStale removes stored questions that are not part of questions.
func (imp *Importer) deleteStale(ctx context.Context, questions []*core.Question) (int, error) {
	storedIDs, err := imp.questionRepository.QuestionIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list stored questions: %w", err)
	}

	current := make(map[string]struct{}, len(questions))
	for _, q := range questions {
		current[strings.ToLower(q.ID)] = struct{}{}
	}

	var stale []string
	for _, id := range storedIDs {
		if _, ok := current[id]; !ok {
			stale = append(stale, id)
		}
	}
	if len(stale) == 0 {
		return 0, nil
	}

	for from := 0; from < len(stale); from += imp.batchSize {
		batch := stale[from:min(from+imp.batchSize, len(stale))]
		err := imp.retry(ctx, func() error {
			return imp.questionRepository.DeleteQuestions(ctx, batch...)
		})
		if err != nil {
			return from, fmt.Errorf("delete stale questions: %w", err)
		}
	}

	imp.logger.Debug("deleted stale questions", "count", len(stale))
	return len(stale), nil
}

func (imp *Importer) retry(ctx context.Context, operation func() error) error {
	return imp.backoff.Retry(ctx, imp.logger, operation)
}
