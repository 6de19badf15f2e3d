// Package blake3session implements an incremental BLAKE3 hash session with
// extendable output.
//
// A Session accumulates data through any number of Update calls and emits
// digests of any requested length between 1 and 65536 bytes. Output is always
// taken from output-stream position zero, so a shorter digest is a prefix of
// any longer one from the same state. Extracting a digest does not consume
// the session: Update remains legal after any number of Digest calls.
//
// A Session is created in exactly one of three modes, fixed for its lifetime:
// unkeyed (the default), keyed (WithKey, a 32-byte secret), or derive-key
// (WithDeriveKeyContext, a non-empty domain-separation string). Keyed and
// derive-key modes are mutually exclusive.
//
// Sessions are not safe for concurrent use. Distinct sessions, including
// those produced by Copy, share no state and may be used from separate
// goroutines without coordination.
package blake3session

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/zeebo/blake3"
)

const (
	// DefaultDigestSize is the output length used when none is configured.
	DefaultDigestSize = 32

	// MinDigestSize and MaxDigestSize bound every requested output length.
	MinDigestSize = 1
	MaxDigestSize = 65536

	// KeySize is the exact key length required by keyed mode.
	KeySize = 32

	// BlockSize is the BLAKE3 block size in bytes.
	BlockSize = 64
)

// Session is one instance of incremental BLAKE3 state.
type Session struct {
	h          *blake3.Hasher
	digestSize int
}

type options struct {
	initial    []byte
	digestSize int
	key        []byte
	keySet     bool
	context    []byte
	contextSet bool
}

// Option configures a Session at construction.
type Option func(*options)

// WithInitialData feeds data into the session immediately after mode setup,
// exactly as a first Update call would.
func WithInitialData(data []byte) Option {
	return func(o *options) { o.initial = data }
}

// WithDigestSize sets the default output length used by Sum and SumHex.
// It must be in [MinDigestSize, MaxDigestSize].
func WithDigestSize(n int) Option {
	return func(o *options) { o.digestSize = n }
}

// WithKey selects keyed mode. The key must be exactly KeySize bytes and is
// not retained past the New call.
func WithKey(key []byte) Option {
	return func(o *options) {
		o.key = key
		o.keySet = true
	}
}

// WithDeriveKeyContext selects derive-key mode with the given non-empty
// domain-separation context. The context should be hardcoded, globally
// unique, and application-specific.
func WithDeriveKeyContext(context []byte) Option {
	return func(o *options) {
		o.context = context
		o.contextSet = true
	}
}

// New creates a Session. All validation happens before any hasher state is
// allocated; on error no session is returned.
func New(opts ...Option) (*Session, error) {
	o := options{digestSize: DefaultDigestSize}
	for _, opt := range opts {
		opt(&o)
	}

	if o.keySet && o.contextSet {
		return nil, ErrConflictingMode
	}
	if o.keySet && len(o.key) != KeySize {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidKeyLength, len(o.key))
	}
	if o.contextSet && len(o.context) == 0 {
		return nil, ErrEmptyContext
	}
	if o.digestSize < MinDigestSize || o.digestSize > MaxDigestSize {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidDigestSize, o.digestSize)
	}

	var h *blake3.Hasher
	switch {
	case o.keySet:
		var err error
		h, err = blake3.NewKeyed(o.key)
		if err != nil {
			return nil, err
		}
	case o.contextSet:
		h = blake3.NewDeriveKey(string(o.context))
	default:
		h = blake3.New()
	}

	s := &Session{h: h, digestSize: o.digestSize}
	if len(o.initial) > 0 {
		s.Update(o.initial)
	}
	return s, nil
}

// Update appends data to the hash state. Repeated calls are equivalent to a
// single call with the concatenation of all inputs, in call order. Empty
// input is a no-op. The buffer is not retained past the call.
func (s *Session) Update(data []byte) {
	if len(data) == 0 {
		return
	}
	_, _ = s.h.Write(data)
}

// Write adds data to the hash state. It never returns an error.
func (s *Session) Write(p []byte) (int, error) {
	s.Update(p)
	return len(p), nil
}

// Digest returns length bytes of extendable output over everything ingested
// so far, always from output position zero: the first a bytes of Digest(b)
// equal Digest(a) for a < b. The session remains usable afterwards.
func (s *Session) Digest(length int) ([]byte, error) {
	if length < MinDigestSize || length > MaxDigestSize {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidDigestSize, length)
	}
	out := make([]byte, length)
	d := s.h.Digest()
	if _, err := io.ReadFull(d, out); err != nil {
		return nil, fmt.Errorf("reading digest output: %w", err)
	}
	return out, nil
}

// Hexdigest returns the lowercase hex encoding of Digest(length), exactly
// 2*length characters.
func (s *Session) Hexdigest(length int) (string, error) {
	raw, err := s.Digest(length)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

// Sum appends the default-size digest to b and returns the resulting slice.
func (s *Session) Sum(b []byte) []byte {
	raw, err := s.Digest(s.digestSize)
	if err != nil {
		// digestSize was validated at construction.
		panic(err)
	}
	return append(b, raw...)
}

// SumHex returns the lowercase hex digest at the default size.
func (s *Session) SumHex() string {
	return hex.EncodeToString(s.Sum(nil))
}

// Copy returns an independent session whose state is a value-copy of s at
// the instant of the call. Neither session observes the other afterwards.
func (s *Session) Copy() *Session {
	return &Session{h: s.h.Clone(), digestSize: s.digestSize}
}

// Reset restores the session to its initial state, preserving its mode and
// default digest size.
func (s *Session) Reset() { s.h.Reset() }

// Size returns the default digest size in bytes.
func (s *Session) Size() int { return s.digestSize }

// BlockSize returns the BLAKE3 block size.
func (s *Session) BlockSize() int { return BlockSize }
