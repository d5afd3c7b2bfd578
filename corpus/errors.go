package corpus

import "errors"

var (
	// ErrDuplicateID is recorded for a question whose ID was already loaded.
	ErrDuplicateID = errors.New("duplicate question id")

	// ErrMalformedAsset is returned when a static asset is not valid JSON of
	// the expected shape.
	ErrMalformedAsset = errors.New("malformed asset")
)
