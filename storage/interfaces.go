package storage

import (
	"context"

	"github.com/poiesic/kokushi/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// QuestionRepository provides operations for managing stored questions.
// Question IDs are compared case-insensitively.
type QuestionRepository interface {
	Repository
	// PutQuestions stores one or more questions, replacing stored questions
	// with the same ID. All questions are written in one transaction.
	PutQuestions(ctx context.Context, questions ...*core.Question) error

	// DeleteQuestions removes questions by their IDs.
	// Returns ErrNotFound if any question doesn't exist.
	DeleteQuestions(ctx context.Context, ids ...string) error

	// GetQuestion retrieves a single question by ID.
	// Returns ErrNotFound if the question doesn't exist.
	GetQuestion(ctx context.Context, id string) (*core.Question, error)

	// GetQuestions retrieves multiple questions by their IDs.
	// Returns only the questions that exist (no error for missing questions).
	GetQuestions(ctx context.Context, ids ...string) ([]*core.Question, error)

	// AllQuestions retrieves every stored question, ordered by key.
	AllQuestions(ctx context.Context) ([]*core.Question, error)

	// QuestionIDs returns the stored question IDs lowercased, ordered by key.
	QuestionIDs(ctx context.Context) ([]string, error)

	// CountQuestions returns the number of stored questions.
	CountQuestions(ctx context.Context) (int, error)
}

// SynonymRepository stores the synonym dictionary.
type SynonymRepository interface {
	Repository
	// ReplaceSynonyms replaces the whole dictionary with groups, keeping
	// their order. Readers see either the old or the new dictionary.
	ReplaceSynonyms(ctx context.Context, groups []core.SynonymGroup) error

	// GetSynonyms returns the dictionary in stored order.
	// Returns an empty slice if no dictionary was stored.
	GetSynonyms(ctx context.Context) ([]core.SynonymGroup, error)
}

// MetaRepository stores the metadata of the imported corpus.
type MetaRepository interface {
	Repository
	// SaveMeta persists the corpus metadata.
	SaveMeta(ctx context.Context, meta *core.CorpusMeta) error

	// LoadMeta retrieves the corpus metadata.
	// Returns nil, nil if nothing was imported yet.
	LoadMeta(ctx context.Context) (*core.CorpusMeta, error)
}
