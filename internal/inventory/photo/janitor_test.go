package photo

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	inverrors "github.com/abgdnv/inventory/internal/inventory/errors"
	"github.com/abgdnv/inventory/internal/platform/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func Test_Janitor_ReclaimsQueuedPhotos(t *testing.T) {
	// given
	store := NewMemoryStore(0)
	ctx, cancel := context.WithCancel(context.Background())
	ref, err := store.Save(ctx, bytes.NewReader(jpegBytes))
	require.NoError(t, err)
	m := metrics.New()
	janitor := NewJanitor(store, discardLogger(), m, 4)
	done := make(chan error, 1)
	go func() { done <- janitor.Run(ctx) }()

	// when
	assert.True(t, janitor.Enqueue(ref))

	// then
	assert.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	_, err = store.Read(context.Background(), ref)
	assert.ErrorIs(t, err, inverrors.ErrPhotoNotFound)
	expected := `
# HELP inventory_photos_reclaimed_total Photos removed after their item was deleted or the photo replaced
# TYPE inventory_photos_reclaimed_total counter
inventory_photos_reclaimed_total{result="ok"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "inventory_photos_reclaimed_total"))
}

func Test_Janitor_DrainsOnShutdown(t *testing.T) {
	// given
	store := NewMemoryStore(0)
	janitor := NewJanitor(store, discardLogger(), nil, 8)
	for range 3 {
		ref, err := store.Save(context.Background(), bytes.NewReader(jpegBytes))
		require.NoError(t, err)
		require.True(t, janitor.Enqueue(ref))
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// when
	require.NoError(t, janitor.Run(ctx))

	// then
	assert.Equal(t, 0, store.Len())
}

func Test_Janitor_EnqueueWhenFull(t *testing.T) {
	// given
	janitor := NewJanitor(NewMemoryStore(0), discardLogger(), nil, 1)

	// when
	first := janitor.Enqueue("photo-a.jpg")
	second := janitor.Enqueue("photo-b.jpg")

	// then
	assert.True(t, first)
	assert.False(t, second)
	assert.True(t, janitor.Enqueue(""), "zero ref is a no-op")
}

func Test_Janitor_FileStore_DrainsAfterCancel(t *testing.T) {
	// given
	store := NewFileStore(t.TempDir(), 0)
	require.NoError(t, store.EnsureDirectory())
	janitor := NewJanitor(store, discardLogger(), nil, 4)
	var refs []Ref
	for range 2 {
		ref, err := store.Save(context.Background(), bytes.NewReader(jpegBytes))
		require.NoError(t, err)
		refs = append(refs, ref)
		require.True(t, janitor.Enqueue(ref))
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// when
	require.NoError(t, janitor.Run(ctx))

	// then
	for _, ref := range refs {
		_, err := store.Read(context.Background(), ref)
		assert.ErrorIs(t, err, inverrors.ErrPhotoNotFound)
	}
}
