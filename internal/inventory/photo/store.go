// Package photo stores the binary photos attached to inventory items.
package photo

import (
	"context"
	"fmt"
	"io"

	inverrors "github.com/abgdnv/inventory/internal/inventory/errors"
)

// Store is an interface for photo storage operations.
// It abstracts the underlying backend (filesystem, memory, S3).
type Store interface {
	// Save persists the full byte stream under a freshly generated name.
	// Returns ErrPhotoTooLarge if the stream exceeds the configured limit
	// and ErrIO if the backend fails.
	Save(ctx context.Context, r io.Reader) (Ref, error)

	// Read returns the stored bytes.
	// Returns ErrPhotoNotFound if nothing is stored under ref
	// and ErrInvalidReference if ref is not a bare file name.
	Read(ctx context.Context, ref Ref) ([]byte, error)

	// Delete removes the stored bytes. Deleting a missing photo is not an error.
	Delete(ctx context.Context, ref Ref) error
}

// readLimited reads r fully, failing with ErrPhotoTooLarge when more than
// maxBytes are available. A non-positive maxBytes disables the limit.
func readLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("%w: reading upload: %v", inverrors.ErrIO, err)
		}
		return data, nil
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading upload: %v", inverrors.ErrIO, err)
	}
	if int64(len(data)) > maxBytes {
		return nil, inverrors.ErrPhotoTooLarge
	}
	return data, nil
}
