package ingestion

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/kokushi/core"
	"github.com/poiesic/kokushi/corpus"
	"github.com/poiesic/kokushi/storage"
	"github.com/poiesic/kokushi/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type repos struct {
	questions storage.QuestionRepository
	synonyms  storage.SynonymRepository
	meta      storage.MetaRepository
}

func newRepos(t *testing.T) repos {
	t.Helper()
	questionRepo, synonymRepo, metaRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })
	return repos{questions: questionRepo, synonyms: synonymRepo, meta: metaRepo}
}

func newTestImporter(t *testing.T, r repos, opts ...Option) *Importer {
	t.Helper()
	imp, err := NewImporter(r.questions, r.synonyms, r.meta, opts...)
	require.NoError(t, err)
	t.Cleanup(imp.Release)
	return imp
}

func makeCorpus(t *testing.T, year, count int) *corpus.Corpus {
	t.Helper()
	questions := make([]*core.Question, count)
	for i := range questions {
		questions[i] = &core.Question{
			ID:           core.FormatID(year, core.SessionA, i+1),
			Year:         year,
			Session:      core.SessionA,
			Number:       i + 1,
			QuestionText: fmt.Sprintf("第%d問", i+1),
			Choices:      map[string]string{"a": "一", "b": "二"},
			Answer:       "a",
		}
	}
	c, err := corpus.New(core.CorpusMeta{Version: "1.0.0", LastUpdated: "2025-01-15"}, questions)
	require.NoError(t, err)
	return c
}

var testGroups = []core.SynonymGroup{{"心筋梗塞", "AMI"}}

func TestNewImporter(t *testing.T) {
	r := newRepos(t)

	t.Run("valid configuration", func(t *testing.T) {
		imp := newTestImporter(t, r)
		assert.Equal(t, DefaultBatchSize, imp.batchSize)
		assert.NotNil(t, imp.pool)
	})

	t.Run("nil question repository", func(t *testing.T) {
		_, err := NewImporter(nil, r.synonyms, r.meta)
		assert.Equal(t, ErrQuestionRepositoryRequired, err)
	})

	t.Run("nil synonym repository", func(t *testing.T) {
		_, err := NewImporter(r.questions, nil, r.meta)
		assert.Equal(t, ErrSynonymRepositoryRequired, err)
	})

	t.Run("nil meta repository", func(t *testing.T) {
		_, err := NewImporter(r.questions, r.synonyms, nil)
		assert.Equal(t, ErrMetaRepositoryRequired, err)
	})

	t.Run("invalid batch size", func(t *testing.T) {
		_, err := NewImporter(r.questions, r.synonyms, r.meta, WithBatchSize(0))
		assert.Equal(t, ErrInvalidBatchSize, err)
	})

	t.Run("invalid retry", func(t *testing.T) {
		_, err := NewImporter(r.questions, r.synonyms, r.meta, WithRetry(0, time.Millisecond))
		assert.Equal(t, ErrInvalidMaxAttempts, err)
	})
}

func TestImport(t *testing.T) {
	r := newRepos(t)
	imp := newTestImporter(t, r, WithBatchSize(7), WithPoolSize(3))
	ctx := context.Background()

	c := makeCorpus(t, 118, 50)
	report, err := imp.Import(ctx, c, testGroups, false)
	require.NoError(t, err)

	assert.False(t, report.Skipped)
	assert.Equal(t, 50, report.Questions)
	assert.Equal(t, 50, report.Written)
	assert.Equal(t, 0, report.Deleted)
	assert.Equal(t, 1, report.SynonymGroups)
	assert.Equal(t, core.Fingerprint(c.Questions(), testGroups), report.Fingerprint)

	count, err := r.questions.CountQuestions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, count)

	groups, err := r.synonyms.GetSynonyms(ctx)
	require.NoError(t, err)
	assert.Equal(t, testGroups, groups)

	meta, err := r.meta.LoadMeta(ctx)
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, "1.0.0", meta.Version)
	assert.Equal(t, 50, meta.TotalCount)
	assert.Equal(t, core.YearRange{Min: 118, Max: 118}, meta.YearRange)
	assert.Equal(t, report.Fingerprint, meta.Fingerprint)
}

func TestImport_SkipsUnchanged(t *testing.T) {
	r := newRepos(t)
	imp := newTestImporter(t, r)
	ctx := context.Background()

	c := makeCorpus(t, 118, 5)
	_, err := imp.Import(ctx, c, testGroups, false)
	require.NoError(t, err)

	report, err := imp.Import(ctx, c, testGroups, false)
	require.NoError(t, err)
	assert.True(t, report.Skipped)
	assert.Zero(t, report.Written)

	report, err = imp.Import(ctx, c, testGroups, true)
	require.NoError(t, err)
	assert.False(t, report.Skipped)
	assert.Equal(t, 5, report.Written)

	// A different dictionary is a different fingerprint.
	report, err = imp.Import(ctx, c, nil, false)
	require.NoError(t, err)
	assert.False(t, report.Skipped)
}

func TestImport_DeletesStaleQuestions(t *testing.T) {
	r := newRepos(t)
	imp := newTestImporter(t, r, WithBatchSize(2))
	ctx := context.Background()

	_, err := imp.Import(ctx, makeCorpus(t, 118, 6), testGroups, false)
	require.NoError(t, err)

	report, err := imp.Import(ctx, makeCorpus(t, 118, 2), testGroups, false)
	require.NoError(t, err)
	assert.Equal(t, 4, report.Deleted)

	ids, err := r.questions.QuestionIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"118a1", "118a2"}, ids)
}

func TestImport_Progress(t *testing.T) {
	r := newRepos(t)
	var buf bytes.Buffer
	imp := newTestImporter(t, r, WithBatchSize(4), WithProgress(&buf))

	_, err := imp.Import(context.Background(), makeCorpus(t, 118, 10), nil, false)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "10/10")
}

func TestImport_NilCorpus(t *testing.T) {
	imp := newTestImporter(t, newRepos(t))
	_, err := imp.Import(context.Background(), nil, nil, false)
	assert.Equal(t, ErrCorpusRequired, err)
}

// flakyQuestionRepository fails the first failures calls to PutQuestions.
type flakyQuestionRepository struct {
	storage.QuestionRepository
	failures atomic.Int32
	calls    atomic.Int32
}

var errFlaky = errors.New("transaction conflict")

func (f *flakyQuestionRepository) PutQuestions(ctx context.Context, questions ...*core.Question) error {
	f.calls.Add(1)
	if f.failures.Add(-1) >= 0 {
		return errFlaky
	}
	return f.QuestionRepository.PutQuestions(ctx, questions...)
}

func TestImport_RetriesFailedBatches(t *testing.T) {
	r := newRepos(t)
	flaky := &flakyQuestionRepository{QuestionRepository: r.questions}
	flaky.failures.Store(2)

	imp, err := NewImporter(flaky, r.synonyms, r.meta,
		WithPoolSize(1), WithRetry(3, time.Millisecond))
	require.NoError(t, err)
	defer imp.Release()

	report, err := imp.Import(context.Background(), makeCorpus(t, 118, 3), nil, false)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Written)
	assert.Equal(t, int32(3), flaky.calls.Load())
}

func TestImport_FailureLeavesNoFingerprint(t *testing.T) {
	r := newRepos(t)
	flaky := &flakyQuestionRepository{QuestionRepository: r.questions}
	flaky.failures.Store(100)

	imp, err := NewImporter(flaky, r.synonyms, r.meta,
		WithPoolSize(1), WithRetry(2, time.Millisecond))
	require.NoError(t, err)
	defer imp.Release()

	_, err = imp.Import(context.Background(), makeCorpus(t, 118, 3), nil, false)
	assert.ErrorIs(t, err, errFlaky)

	meta, err := r.meta.LoadMeta(context.Background())
	require.NoError(t, err)
	assert.Nil(t, meta)
}
