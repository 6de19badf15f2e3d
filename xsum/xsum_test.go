package xsum_test

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"blake3sum/blake3session"
	"blake3sum/xsum"
)

func TestLookupUnknown(t *testing.T) {
	t.Parallel()

	_, err := xsum.Lookup("md5")
	require.ErrorIs(t, err, xsum.ErrUnknownAlgorithm)
}

func TestNames(t *testing.T) {
	t.Parallel()

	names := xsum.Names()
	require.Contains(t, names, xsum.DefaultName)
	require.True(t, sort.StringsAreSorted(names))
}

func TestSHA256KnownValue(t *testing.T) {
	t.Parallel()

	a, err := xsum.Lookup("sha256")
	require.NoError(t, err)
	require.Equal(t,
		"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		a.Sum([]byte("abc")))
}

func TestBlake3MatchesSession(t *testing.T) {
	t.Parallel()

	a, err := xsum.Lookup("blake3")
	require.NoError(t, err)

	s, err := blake3session.New(blake3session.WithInitialData([]byte("cross-check")))
	require.NoError(t, err)
	require.Equal(t, s.SumHex(), a.Sum([]byte("cross-check")))
}

func TestFileMatchesSum(t *testing.T) {
	t.Parallel()

	data := []byte("the same bytes, on disk and in memory")
	path := filepath.Join(t.TempDir(), "payload.bin")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	for _, name := range xsum.Names() {
		a, err := xsum.Lookup(name)
		require.NoError(t, err)

		fromFile, err := a.File(path)
		require.NoError(t, err)
		require.Equal(t, a.Sum(data), fromFile, "algorithm %s", name)
		require.NotEmpty(t, fromFile)
		require.Equal(t, strings.ToLower(fromFile), fromFile, "algorithm %s", name)
	}
}

func TestSumDeterministic(t *testing.T) {
	t.Parallel()

	for _, name := range xsum.Names() {
		a, err := xsum.Lookup(name)
		require.NoError(t, err)
		require.Equal(t, a.Sum([]byte("x")), a.Sum([]byte("x")), "algorithm %s", name)
		require.NotEqual(t, a.Sum([]byte("x")), a.Sum([]byte("y")), "algorithm %s", name)
	}
}

func TestFileMissing(t *testing.T) {
	t.Parallel()

	a, err := xsum.Lookup("blake3")
	require.NoError(t, err)
	_, err = a.File(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}
