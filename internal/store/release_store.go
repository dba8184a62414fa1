package store

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/blake2b"

	"flywrapper/internal/domain"
)

const cacheSuffix = ".json"

type releaseEntry struct {
	Key       string           `json:"key"`
	FetchedAt time.Time        `json:"fetched_at"`
	Releases  []domain.Release `json:"releases"`
}

// ReleaseFileStore caches index release lists as one JSON file per key.
type ReleaseFileStore struct {
	dir string
	mu  sync.Mutex
	now func() time.Time
}

// NewReleaseFileStore returns a ReleaseFileStore rooted at dir.
func NewReleaseFileStore(dir string) *ReleaseFileStore {
	return &ReleaseFileStore{dir: dir, now: time.Now}
}

// Dir returns the directory holding the cache files.
func (s *ReleaseFileStore) Dir() string { return s.dir }

func (s *ReleaseFileStore) path(key string) string {
	sum := blake2b.Sum256([]byte(key))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:])+cacheSuffix)
}

// LoadReleases returns the cached releases for key. Entries older than
// maxAge are misses; maxAge <= 0 disables expiry.
func (s *ReleaseFileStore) LoadReleases(key string, maxAge time.Duration) ([]domain.Release, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var e releaseEntry
	found, err := readJSON(s.path(key), &e)
	if err != nil || !found {
		return nil, false, err
	}
	if e.Key != key {
		return nil, false, nil
	}
	if maxAge > 0 && s.now().Sub(e.FetchedAt) > maxAge {
		return nil, false, nil
	}
	return e.Releases, true, nil
}

// SaveReleases writes releases for key, replacing any previous entry.
func (s *ReleaseFileStore) SaveReleases(key string, releases []domain.Release) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := releaseEntry{Key: key, FetchedAt: s.now().UTC(), Releases: releases}
	return writeJSON(s.path(key), e, 0o600)
}

// Clear removes every cache entry and reports how many were deleted.
func (s *ReleaseFileStore) Clear() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), cacheSuffix) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Compile-time assertion that ReleaseFileStore implements domain.ReleaseCache.
var _ domain.ReleaseCache = (*ReleaseFileStore)(nil)
