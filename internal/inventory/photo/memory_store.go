package photo

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	inverrors "github.com/abgdnv/inventory/internal/inventory/errors"
)

// MemoryStore keeps photos in a map. Used for development and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	photos   map[Ref][]byte
	maxBytes int64
	namer    *namer
}

// NewMemoryStore creates an empty in-memory photo store.
func NewMemoryStore(maxUploadBytes int64) *MemoryStore {
	return &MemoryStore{
		photos:   make(map[Ref][]byte),
		maxBytes: maxUploadBytes,
		namer:    newNamer(),
	}
}

func (s *MemoryStore) Save(ctx context.Context, r io.Reader) (Ref, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := readLimited(r, s.maxBytes)
	if err != nil {
		return "", err
	}
	ref, err := s.namer.next(time.Now())
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.photos[ref] = data
	return ref, nil
}

func (s *MemoryStore) Read(_ context.Context, ref Ref) ([]byte, error) {
	if _, err := ParseRef(string(ref)); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.photos[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %s", inverrors.ErrPhotoNotFound, ref)
	}
	return bytes.Clone(data), nil
}

func (s *MemoryStore) Delete(_ context.Context, ref Ref) error {
	if _, err := ParseRef(string(ref)); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.photos, ref)
	return nil
}

// Len returns the number of stored photos.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.photos)
}
