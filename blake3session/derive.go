package blake3session

import "fmt"

// DeriveKey derives length bytes of key material from keyMaterial, domain
// separated by the non-empty context. It is exactly equivalent to creating a
// derive-key session, updating once with keyMaterial, and calling
// Digest(length); the same code path is used, so the two cannot drift.
func DeriveKey(keyMaterial, context []byte, length int) ([]byte, error) {
	if length < MinDigestSize || length > MaxDigestSize {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidDigestSize, length)
	}
	s, err := New(WithDeriveKeyContext(context))
	if err != nil {
		return nil, err
	}
	s.Update(keyMaterial)
	return s.Digest(length)
}
