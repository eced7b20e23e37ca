package photo

import (
	"crypto/rand"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	inverrors "github.com/abgdnv/inventory/internal/inventory/errors"
	"github.com/oklog/ulid/v2"
)

const (
	refPrefix = "photo-"
	refExt    = ".jpg"
)

// Ref is an opaque reference to a stored photo. Only this package creates refs,
// either by saving bytes or by parsing a value received from outside.
type Ref string

// IsZero reports whether the ref points to no photo.
func (r Ref) IsZero() bool {
	return r == ""
}

func (r Ref) String() string {
	return string(r)
}

// ParseRef validates a stored filename. The value must be a bare file name:
// no directory components, no separators, no dot entries.
func ParseRef(s string) (Ref, error) {
	if s == "" || s == "." || s == ".." {
		return "", fmt.Errorf("%w: %q", inverrors.ErrInvalidReference, s)
	}
	if strings.ContainsAny(s, `/\`) || strings.ContainsRune(s, 0) || filepath.Base(s) != s {
		return "", fmt.Errorf("%w: %q", inverrors.ErrInvalidReference, s)
	}
	return Ref(s), nil
}

// namer hands out unique photo filenames. The ULID carries the millisecond
// timestamp and 80 bits of monotonic entropy, so names never repeat within a namer.
type namer struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func newNamer() *namer {
	return &namer{entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (n *namer) next(now time.Time) (Ref, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(now), n.entropy)
	if err != nil {
		return "", fmt.Errorf("failed to generate photo name: %w", err)
	}
	return Ref(refPrefix + id.String() + refExt), nil
}
