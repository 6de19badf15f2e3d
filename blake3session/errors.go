package blake3session

import "errors"

var (
	// ErrInvalidDigestSize is returned when a requested output length is
	// outside [MinDigestSize, MaxDigestSize].
	ErrInvalidDigestSize = errors.New("digest size must be between 1 and 65536 bytes")

	// ErrInvalidKeyLength is returned when a keyed-mode key is not exactly
	// KeySize bytes.
	ErrInvalidKeyLength = errors.New("key must be exactly 32 bytes")

	// ErrEmptyContext is returned when a derive-key context is empty.
	ErrEmptyContext = errors.New("derive-key context must be non-empty")

	// ErrConflictingMode is returned when both a key and a derive-key
	// context are supplied to New.
	ErrConflictingMode = errors.New("key and derive-key context are mutually exclusive")
)
