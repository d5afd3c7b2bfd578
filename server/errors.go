package server

import "errors"

var (
	// ErrCorpusRequired is returned when a corpus is not provided.
	ErrCorpusRequired = errors.New("corpus required")

	// ErrSearcherRequired is returned when a searcher is not provided.
	ErrSearcherRequired = errors.New("searcher required")

	// ErrInvalidPageLimit is returned when the page size limits are not positive.
	ErrInvalidPageLimit = errors.New("page limit must be positive")

	errBadParameter = errors.New("bad parameter")
)
