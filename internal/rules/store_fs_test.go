package rules

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bre-gateway/pkg/platform/sentinel"
)

func TestFSStorageRoundTrip(t *testing.T) {
	storage := NewFSStorage(t.TempDir())
	ctx := context.Background()

	require.NoError(t, storage.WriteRaw(ctx, "kyc/eligibility.json", []byte(sampleTable)))

	raw, err := storage.ReadRaw(ctx, "kyc/eligibility.json")
	require.NoError(t, err)
	assert.Equal(t, []byte(sampleTable), raw)
}

func TestFSStorageReadMissing(t *testing.T) {
	storage := NewFSStorage(t.TempDir())

	_, err := storage.ReadRaw(context.Background(), "nope.json")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestFSStorageList(t *testing.T) {
	storage := NewFSStorage(t.TempDir())
	ctx := context.Background()

	require.NoError(t, storage.WriteRaw(ctx, "kyc/eligibility.json", []byte(sampleTable)))
	require.NoError(t, storage.WriteRaw(ctx, "loans/personal.json", []byte(sampleTable)))
	require.NoError(t, storage.WriteRaw(ctx, "notes.txt", []byte("not a rule")))

	paths, err := storage.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"kyc/eligibility.json", "loans/personal.json"}, paths)
}

func TestFSStorageListMissingRoot(t *testing.T) {
	storage := NewFSStorage(t.TempDir() + "/does-not-exist")

	paths, err := storage.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestFSStorageConfinesPaths(t *testing.T) {
	dir := t.TempDir()
	storage := NewFSStorage(dir)
	ctx := context.Background()

	require.NoError(t, storage.WriteRaw(ctx, "inner.json", []byte(sampleTable)))

	// Traversal collapses inside the root instead of escaping it.
	raw, err := storage.ReadRaw(ctx, "../../inner.json")
	require.NoError(t, err)
	assert.Equal(t, []byte(sampleTable), raw)

	_, err = storage.ReadRaw(ctx, "..")
	assert.Error(t, err)
}
