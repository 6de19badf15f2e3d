package blake3session_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"blake3sum/blake3session"
)

func TestDeriveKeyEquivalence(t *testing.T) {
	t.Parallel()

	material := []byte("some long-lived master key material")
	context := []byte("blake3sum 2026-08-26 test subkey")

	for _, length := range []int{1, 16, 32, 64, 1000} {
		derived, err := blake3session.DeriveKey(material, context, length)
		require.NoError(t, err)
		require.Len(t, derived, length)

		s, err := blake3session.New(blake3session.WithDeriveKeyContext(context))
		require.NoError(t, err)
		s.Update(material)
		viaSession, err := s.Digest(length)
		require.NoError(t, err)

		require.Equal(t, viaSession, derived, "length %d", length)
	}
}

func TestDeriveKeyValidation(t *testing.T) {
	t.Parallel()

	_, err := blake3session.DeriveKey([]byte("material"), nil, 32)
	require.ErrorIs(t, err, blake3session.ErrEmptyContext)

	for _, length := range []int{0, -1, 65537} {
		_, err := blake3session.DeriveKey([]byte("material"), []byte("ctx"), length)
		require.ErrorIs(t, err, blake3session.ErrInvalidDigestSize, "length %d", length)
	}
}

func TestDeriveKeyDomainSeparation(t *testing.T) {
	t.Parallel()

	material := []byte("shared material")

	a, err := blake3session.DeriveKey(material, []byte("context a"), 32)
	require.NoError(t, err)
	b, err := blake3session.DeriveKey(material, []byte("context b"), 32)
	require.NoError(t, err)
	require.NotEqual(t, a, b)

	again, err := blake3session.DeriveKey(material, []byte("context a"), 32)
	require.NoError(t, err)
	require.Equal(t, a, again)
}
