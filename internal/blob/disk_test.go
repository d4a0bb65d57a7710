package blob

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *DiskStore {
	t.Helper()
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestSaveAndOpenRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	content := []byte("quarterly invoice payload")
	stored, err := store.Save(ctx, "invoice.pdf", bytes.NewReader(content))
	require.NoError(t, err)
	require.Equal(t, "invoice.pdf", stored)

	r, err := store.Open(ctx, stored)
	require.NoError(t, err)
	defer r.Close()

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, content, got)
}

func TestSaveReplacesExistingBlob(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Save(ctx, "report.txt", bytes.NewReader([]byte("first")))
	require.NoError(t, err)

	stored, err := store.Save(ctx, "report.txt", bytes.NewReader([]byte("second version")))
	require.NoError(t, err)

	r, err := store.Open(ctx, stored)
	require.NoError(t, err)
	defer r.Close()

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, []byte("second version"), got)
}

func TestSaveRejectsTraversalNames(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{
		"../etc/passwd",
		"..\\..\\secrets.txt",
		"nested/../../escape.bin",
		"   ",
		"",
	} {
		_, err := store.Save(ctx, name, bytes.NewReader([]byte("x")))
		require.ErrorIs(t, err, ErrInvalidName, "name %q", name)
	}

	entries, err := os.ReadDir(store.Root())
	require.NoError(t, err)
	require.Empty(t, entries, "storage root must remain unaffected")
}

func TestOpenOutsideRootFails(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	outside := filepath.Join(filepath.Dir(store.Root()), "stray.txt")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o600))

	_, err := store.Open(ctx, outside)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestOpenMissingBlobFails(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Open(context.Background(), "nope.bin")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	stored, err := store.Save(ctx, "old.dat", bytes.NewReader([]byte("bytes")))
	require.NoError(t, err)

	require.NoError(t, store.Remove(ctx, stored))
	require.NoError(t, store.Remove(ctx, stored), "removing an absent blob must not fail")
}

func TestSaveIntoSubdirectory(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	stored, err := store.Save(ctx, "2026/08/statement.csv", bytes.NewReader([]byte("a,b")))
	require.NoError(t, err)
	require.Equal(t, "2026/08/statement.csv", stored)

	r, err := store.Open(ctx, stored)
	require.NoError(t, err)
	r.Close()
}
