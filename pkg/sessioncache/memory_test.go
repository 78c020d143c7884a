package sessioncache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorePutGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	entry := Entry{Filename: "validation.xlsx", Data: []byte("workbook-bytes")}
	require.NoError(t, store.Put(ctx, "session-1", SlotValidationFile, entry, time.Minute))

	got, err := store.Get(ctx, "session-1", SlotValidationFile)
	require.NoError(t, err)
	assert.Equal(t, entry, got)
}

func TestMemoryStoreSessionsAreIsolated(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "session-1", SlotValidationFile, Entry{Filename: "a.xlsx"}, 0))
	require.NoError(t, store.Put(ctx, "session-2", SlotValidationFile, Entry{Filename: "b.xlsx"}, 0))

	got, err := store.Get(ctx, "session-1", SlotValidationFile)
	require.NoError(t, err)
	assert.Equal(t, "a.xlsx", got.Filename)

	got, err = store.Get(ctx, "session-2", SlotValidationFile)
	require.NoError(t, err)
	assert.Equal(t, "b.xlsx", got.Filename)
}

func TestMemoryStoreMissingEntry(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Get(context.Background(), "nope", SlotTagReport)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "session-1", SlotValidationReport, Entry{Filename: "r.xlsx"}, time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	_, err := store.Get(ctx, "session-1", SlotValidationReport)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "session-1", SlotValidationFile, Entry{Filename: "a.xlsx"}, 0))
	require.NoError(t, store.Delete(ctx, "session-1", SlotValidationFile))

	_, err := store.Get(ctx, "session-1", SlotValidationFile)
	assert.ErrorIs(t, err, ErrNotFound)
}
