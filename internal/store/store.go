// Package store provides the per-guild, per-feature JSON document store
// every cog persists through. A document is an arbitrary JSON-compatible
// value; the store performs no schema validation and each caller is
// responsible for defaulting missing fields.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrNotFound is returned by Get when no document exists for the
// guild/feature pair. Callers fall back to their defaults.
var ErrNotFound = errors.New("store: document not found")

// Store is a file-backed map keyed by (guildID, feature). Documents live at
// <root>/<guildID>/<feature>.json. Writes to the same key are serialized;
// distinct keys never contend.
type Store struct {
	root string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a Store rooted at the given directory.
func New(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &Store{
		root:  root,
		locks: make(map[string]*sync.Mutex),
	}, nil
}

// Root returns the store's base directory.
func (s *Store) Root() string { return s.root }

func (s *Store) path(guildID, feature string) string {
	return filepath.Join(s.root, guildID, feature+".json")
}

func (s *Store) keyLock(guildID, feature string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := guildID + "/" + feature
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

// Get reads the document for the guild/feature pair into v. Returns
// ErrNotFound if no document has been written yet.
func (s *Store) Get(guildID, feature string, v any) error {
	l := s.keyLock(guildID, feature)
	l.Lock()
	defer l.Unlock()

	data, err := os.ReadFile(s.path(guildID, feature))
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("reading %s/%s: %w", guildID, feature, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s/%s: %w", guildID, feature, err)
	}
	return nil
}

// Put writes the document for the guild/feature pair. The write goes
// through a temp file and rename so readers never see a partial document.
func (s *Store) Put(guildID, feature string, v any) error {
	l := s.keyLock(guildID, feature)
	l.Lock()
	defer l.Unlock()

	path := s.path(guildID, feature)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating guild directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling %s/%s: %w", guildID, feature, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing %s/%s: %w", guildID, feature, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing %s/%s: %w", guildID, feature, err)
	}
	return nil
}

// Update performs a read-modify-write on the document under the key lock,
// so two concurrent updates to the same key cannot lose writes. fn receives
// the current document (or ErrNotFound semantics via fresh, which is called
// to produce the zero document when none exists).
func Update[T any](s *Store, guildID, feature string, fresh func() *T, fn func(*T) error) error {
	l := s.keyLock(guildID, feature)
	l.Lock()
	defer l.Unlock()

	doc := fresh()
	data, err := os.ReadFile(s.path(guildID, feature))
	switch {
	case err == nil:
		if err := json.Unmarshal(data, doc); err != nil {
			return fmt.Errorf("parsing %s/%s: %w", guildID, feature, err)
		}
	case os.IsNotExist(err):
		// start from the fresh document
	default:
		return fmt.Errorf("reading %s/%s: %w", guildID, feature, err)
	}

	if err := fn(doc); err != nil {
		return err
	}

	path := s.path(guildID, feature)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating guild directory: %w", err)
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling %s/%s: %w", guildID, feature, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, out, 0o644); err != nil {
		return fmt.Errorf("writing %s/%s: %w", guildID, feature, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing %s/%s: %w", guildID, feature, err)
	}
	return nil
}

// Guilds lists guild IDs that have at least one persisted document.
func (s *Store) Guilds() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("listing data directory: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			out = append(out, e.Name())
		}
	}
	return out, nil
}
