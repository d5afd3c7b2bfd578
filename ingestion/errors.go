package ingestion

import "errors"

var (
	// ErrQuestionRepositoryRequired is returned when a question repository is not provided.
	ErrQuestionRepositoryRequired = errors.New("question repository required")

	// ErrSynonymRepositoryRequired is returned when a synonym repository is not provided.
	ErrSynonymRepositoryRequired = errors.New("synonym repository required")

	// ErrMetaRepositoryRequired is returned when a meta repository is not provided.
	ErrMetaRepositoryRequired = errors.New("meta repository required")

	// ErrCorpusRequired is returned when Import is called without a corpus.
	ErrCorpusRequired = errors.New("corpus required")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("batch size must be positive")

	// ErrInvalidMaxAttempts is returned when a Backoff allows no attempts.
	ErrInvalidMaxAttempts = errors.New("retry attempts must be greater than 0")
)
