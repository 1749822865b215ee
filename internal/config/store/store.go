// Package store persists one JSON document per mod under a config
// directory.
//
// Writes are atomic (temp file plus rename) and serialised across
// processes with an advisory lock file, so a crashed or concurrent writer
// never leaves a half-written config behind.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dchest/safefile"
	"github.com/gofrs/flock"
	"github.com/minio/highwayhash"
)

// DefaultDir is the directory used when none is configured.
const DefaultDir = "config"

// Extension is the file extension of persisted configs.
const Extension = ".json"

// Errors returned by the store.
var (
	// ErrNotExist indicates no file has been written for the mod yet.
	ErrNotExist = errors.New("config file does not exist")

	// ErrInvalidModID indicates a mod id that cannot name a file.
	ErrInvalidModID = errors.New("invalid mod id")
)

// digestKey is fixed; digests only compare our own writes.
var digestKey = make([]byte, highwayhash.Size)

// Store reads and writes per-mod config files.
type Store struct {
	dir  string
	perm os.FileMode

	mu      sync.Mutex
	written map[string][highwayhash.Size]byte
}

// Option configures a Store.
type Option func(*Store)

// WithPerm sets the permission bits of created files.
func WithPerm(perm os.FileMode) Option {
	return func(s *Store) {
		s.perm = perm
	}
}

// New creates a store rooted at dir. The directory is created on first
// write.
func New(dir string, opts ...Option) *Store {
	if dir == "" {
		dir = DefaultDir
	}
	s := &Store{
		dir:     filepath.Clean(dir),
		perm:    0o644,
		written: make(map[string][highwayhash.Size]byte),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the config directory.
func (s *Store) Dir() string { return s.dir }

// PathFor returns the file path for modID: <dir>/<modid>.json.
func (s *Store) PathFor(modID string) string {
	return filepath.Join(s.dir, modID+Extension)
}

// ModIDFor returns the mod id a config file path belongs to, or false when
// the path is not a config file in this store.
func (s *Store) ModIDFor(path string) (string, bool) {
	if filepath.Clean(filepath.Dir(path)) != s.dir {
		abs, err := filepath.Abs(s.dir)
		if err != nil || filepath.Clean(filepath.Dir(path)) != abs {
			return "", false
		}
	}
	name := filepath.Base(path)
	if !strings.HasSuffix(name, Extension) {
		return "", false
	}
	id := strings.TrimSuffix(name, Extension)
	if ValidateModID(id) != nil {
		return "", false
	}
	return id, true
}

// ValidateModID rejects ids that are empty or would escape the directory.
func ValidateModID(modID string) error {
	if modID == "" || modID == "." || modID == ".." ||
		strings.ContainsAny(modID, `/\`) || strings.ContainsRune(modID, 0) {
		return fmt.Errorf("%w: %q", ErrInvalidModID, modID)
	}
	return nil
}

// Read returns the persisted document for modID.
func (s *Store) Read(modID string) ([]byte, error) {
	if err := ValidateModID(modID); err != nil {
		return nil, err
	}
	path := s.PathFor(modID)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotExist
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// Write atomically replaces the document for modID.
func (s *Store) Write(modID string, data []byte) error {
	if err := ValidateModID(modID); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	path := s.PathFor(modID)
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("locking %s: %w", path, err)
	}
	defer lock.Unlock()

	f, err := safefile.Create(path, s.perm)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	// Close removes the temp file unless Commit succeeded.
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Commit(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	s.remember(modID, data)
	return nil
}

// Remove deletes the document for modID. A missing file is not an error.
func (s *Store) Remove(modID string) error {
	if err := ValidateModID(modID); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.written, modID)
	s.mu.Unlock()

	if err := os.Remove(s.PathFor(modID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing config for %s: %w", modID, err)
	}
	return nil
}

// IsOwnWrite reports whether data is exactly what this store last wrote
// for modID.
func (s *Store) IsOwnWrite(modID string, data []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum, ok := s.written[modID]
	return ok && sum == highwayhash.Sum(data, digestKey)
}

func (s *Store) remember(modID string, data []byte) {
	sum := highwayhash.Sum(data, digestKey)
	s.mu.Lock()
	s.written[modID] = sum
	s.mu.Unlock()
}
