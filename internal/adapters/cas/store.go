// Package cas implements the content-addressed build result store.
package cas

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/zerr"
)

// numStripes is the size of the lock table. Locking is keyed by
// fingerprint so puts and lookups for distinct fingerprints never
// serialize.
const numStripes = 64

// Store implements ports.ResultStore on the filesystem. Every entry lives
// under a path that is a pure function of its fingerprint, which makes
// results reusable across runs.
type Store struct {
	root    string
	stripes [numStripes]sync.RWMutex
}

// NewStore creates a store rooted at the given directory.
func NewStore(root string) (*Store, error) {
	root = filepath.Clean(root)
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, zerr.Wrap(err, "failed to create store root")
	}
	return &Store{root: root}, nil
}

// Lookup returns the stored result for a fingerprint, or ErrResultNotFound.
func (s *Store) Lookup(fp domain.Fingerprint) (domain.BuildResult, error) {
	lock := s.stripe(fp)
	lock.RLock()
	defer lock.RUnlock()

	data, err := os.ReadFile(s.resultPath(fp)) //nolint:gosec // path derived from fingerprint
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.BuildResult{}, zerr.With(domain.ErrResultNotFound, "fingerprint", fp.String())
		}
		return domain.BuildResult{}, zerr.Wrap(err, "failed to read build result")
	}

	var result domain.BuildResult
	if err := json.Unmarshal(data, &result); err != nil {
		return domain.BuildResult{}, zerr.Wrap(err, "failed to unmarshal build result")
	}
	return result, nil
}

// Put stores a result under its fingerprint. A put of identical content is
// idempotent; a put of different content under an existing fingerprint
// fails with ErrFingerprintCollision. A collision signals non-determinism
// upstream and must never be silently overwritten.
func (s *Store) Put(fp domain.Fingerprint, result domain.BuildResult) error {
	lock := s.stripe(fp)
	lock.Lock()
	defer lock.Unlock()

	path := s.resultPath(fp)
	if data, err := os.ReadFile(path); err == nil { //nolint:gosec // path derived from fingerprint
		var existing domain.BuildResult
		if err := json.Unmarshal(data, &existing); err != nil {
			return zerr.Wrap(err, "failed to unmarshal existing build result")
		}
		if existing.SameContent(result) {
			return nil
		}
		err := zerr.With(domain.ErrFingerprintCollision, "fingerprint", fp.String())
		err = zerr.With(err, "existing_output_hash", existing.OutputHash)
		return zerr.With(err, "new_output_hash", result.OutputHash)
	}

	result.Fingerprint = fp
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to marshal build result")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return zerr.Wrap(err, "failed to create entry directory")
	}

	// Write-then-rename so concurrent lookups never observe a torn entry.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil { //nolint:gosec // store entries are world-readable
		return zerr.Wrap(err, "failed to write build result")
	}
	if err := os.Rename(tmp, path); err != nil {
		return zerr.Wrap(err, "failed to finalize build result")
	}
	return nil
}

// EntryDir returns the content-addressed directory for a fingerprint.
// The layout is <root>/<fp[:2]>/<fp>, a pure function of the fingerprint.
func (s *Store) EntryDir(fp domain.Fingerprint) string {
	h := fp.String()
	if len(h) < 2 {
		return filepath.Join(s.root, h)
	}
	return filepath.Join(s.root, h[:2], h)
}

func (s *Store) resultPath(fp domain.Fingerprint) string {
	return filepath.Join(s.EntryDir(fp), "result.json")
}

func (s *Store) stripe(fp domain.Fingerprint) *sync.RWMutex {
	return &s.stripes[xxhash.Sum64String(fp.String())%numStripes]
}
