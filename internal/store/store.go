package store

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	ErrInvalid  = errors.New("invalid")
	timeNow     = func() time.Time { return time.Now().UTC() }
)

// Store is the persistent backing for the four entity collections.
// Implementations serialize their own writes; callers issue one operation at a time.
type Store interface {
	// List returns every entity of kind in a stable order.
	List(ctx context.Context, kind Kind) ([]Entity, error)
	// Add persists e, assigning an ID and creation time if missing, and returns the ID.
	Add(ctx context.Context, e Entity) (string, error)
	// Update merges p into the entity with the given ID.
	Update(ctx context.Context, kind Kind, id string, p Patch) error
	// Delete removes the entity with the given ID.
	Delete(ctx context.Context, kind Kind, id string) error
}

// MatchConflictError provides details when a selector matches multiple entities.
// It still satisfies errors.Is(err, ErrConflict).
type MatchConflictError struct {
	Reason  string
	Matches []Entity
}

func (e *MatchConflictError) Error() string {
	if e == nil || strings.TrimSpace(e.Reason) == "" {
		return "conflict"
	}
	return "conflict: " + e.Reason
}

func (e *MatchConflictError) Is(target error) bool {
	return target == ErrConflict
}

func notFound(kind Kind, id string) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
}

// prepareNew validates e and fills in identity fields the caller left blank.
func prepareNew(e Entity) error {
	if e == nil {
		return fmt.Errorf("%w: nil entity", ErrInvalid)
	}
	if strings.TrimSpace(e.PrimaryText()) == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalid, e.Kind().PrimaryField())
	}
	id := strings.TrimSpace(e.EntityID())
	if id == "" {
		id = NewID()
	}
	created := strings.TrimSpace(e.Created())
	if created == "" {
		created = FormatTime(timeNow())
	}
	e.setIdentity(id, created)
	return nil
}

// timeLayout is RFC 3339 with fixed-width nanoseconds so stored values sort as strings.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// FormatTime renders t the way CreatedAt fields are stored.
func FormatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewID returns a time-ordered unique identifier.
func NewID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	id, err := ulid.New(ulid.Timestamp(timeNow()), entropy)
	if err != nil {
		// fallback
		return fmt.Sprintf("%d", timeNow().UnixNano())
	}
	return strings.ToUpper(id.String())
}

func slugify(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return "x"
	}
	// Replace non-alnum with hyphen
	var b strings.Builder
	lastHyphen := false
	for _, r := range s {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if isAlnum {
			b.WriteRune(r)
			lastHyphen = false
		} else {
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "x"
	}
	if len(out) > 48 {
		out = strings.TrimRight(out[:48], "-")
	}
	return out
}

// ExpandHome resolves a leading "~" against the user's home directory.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~"+string(os.PathSeparator)) || path == "~" {
		home, _ := os.UserHomeDir()
		if home != "" {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

func atomicWriteFile(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp := filepath.Join(dir, fmt.Sprintf(".tmp-%d", timeNow().UnixNano()))
	if err := os.WriteFile(tmp, data, perm); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	// Rename is atomic on same filesystem.
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
