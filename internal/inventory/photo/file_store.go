package photo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	inverrors "github.com/abgdnv/inventory/internal/inventory/errors"
)

const tempPattern = ".upload-*"

// FileStore keeps photos as files in a single cache directory.
type FileStore struct {
	dir      string
	maxBytes int64
	namer    *namer
	now      func() time.Time
}

// NewFileStore creates a FileStore rooted at dir. The directory is not touched
// until EnsureDirectory or the first Save.
func NewFileStore(dir string, maxUploadBytes int64) *FileStore {
	return &FileStore{
		dir:      dir,
		maxBytes: maxUploadBytes,
		namer:    newNamer(),
		now:      time.Now,
	}
}

// Dir returns the cache directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// EnsureDirectory creates the cache directory and its parents if missing.
func (s *FileStore) EnsureDirectory() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("%w: creating cache directory: %v", inverrors.ErrIO, err)
	}
	return nil
}

// Save streams r into a temporary file and renames it into place once complete,
// so an interrupted upload never shows up under a generated name.
func (s *FileStore) Save(ctx context.Context, r io.Reader) (Ref, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ref, err := s.namer.next(s.now())
	if err != nil {
		return "", err
	}
	dst, err := s.path(ref)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(s.dir, tempPattern)
	if err != nil {
		return "", fmt.Errorf("%w: creating temp file: %v", inverrors.ErrIO, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	src := r
	if s.maxBytes > 0 {
		src = io.LimitReader(r, s.maxBytes+1)
	}
	n, err := io.Copy(tmp, src)
	if err != nil {
		return "", fmt.Errorf("%w: writing photo: %v", inverrors.ErrIO, err)
	}
	if s.maxBytes > 0 && n > s.maxBytes {
		return "", inverrors.ErrPhotoTooLarge
	}
	if err := tmp.Sync(); err != nil {
		return "", fmt.Errorf("%w: syncing photo: %v", inverrors.ErrIO, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("%w: closing photo: %v", inverrors.ErrIO, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", fmt.Errorf("%w: moving photo into place: %v", inverrors.ErrIO, err)
	}
	committed = true
	return ref, nil
}

// Read returns the content of the photo file.
func (s *FileStore) Read(ctx context.Context, ref Ref) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.path(ref)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", inverrors.ErrPhotoNotFound, ref)
		}
		return nil, fmt.Errorf("%w: reading photo %s: %v", inverrors.ErrIO, ref, err)
	}
	return data, nil
}

// Delete removes the photo file. A missing file counts as deleted.
func (s *FileStore) Delete(ctx context.Context, ref Ref) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.path(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: deleting photo %s: %v", inverrors.ErrIO, ref, err)
	}
	return nil
}

// path resolves ref inside the cache directory and refuses anything that would
// land outside of it.
func (s *FileStore) path(ref Ref) (string, error) {
	if _, err := ParseRef(string(ref)); err != nil {
		return "", err
	}
	absDir, err := filepath.Abs(s.dir)
	if err != nil {
		return "", fmt.Errorf("%w: resolving cache directory: %v", inverrors.ErrIO, err)
	}
	absFile, err := filepath.Abs(filepath.Join(absDir, string(ref)))
	if err != nil {
		return "", fmt.Errorf("%w: %q", inverrors.ErrInvalidReference, ref)
	}
	if !strings.HasPrefix(absFile, absDir+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", inverrors.ErrInvalidReference, ref)
	}
	return absFile, nil
}
