package index

import (
	"context"
	"time"

	"go.uber.org/zap"

	"flywrapper/internal/domain"
	"flywrapper/internal/requirement"
)

// Cached serves release lists from a ReleaseCache before asking Next.
type Cached struct {
	Next      domain.IndexClient
	Cache     domain.ReleaseCache
	Namespace string // distinguishes indexes and APIs sharing one cache
	MaxAge    time.Duration
	Log       *zap.Logger
}

// NewCached wraps next with cache. Entries older than maxAge are refetched.
func NewCached(next domain.IndexClient, cache domain.ReleaseCache, namespace string, maxAge time.Duration, log *zap.Logger) *Cached {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cached{Next: next, Cache: cache, Namespace: namespace, MaxAge: maxAge, Log: log}
}

func (c *Cached) key(project string) string {
	return c.Namespace + "|" + requirement.NormalizeName(project)
}

// Releases returns cached releases when fresh, otherwise fetches and stores them.
// Cache failures are logged and never fail the lookup.
func (c *Cached) Releases(ctx context.Context, project string) ([]domain.Release, error) {
	key := c.key(project)
	rs, ok, err := c.Cache.LoadReleases(key, c.MaxAge)
	if err != nil {
		c.Log.Warn("release cache read failed", zap.String("key", key), zap.Error(err))
	}
	if ok {
		c.Log.Debug("release cache hit", zap.String("project", project))
		return rs, nil
	}

	rs, err = c.Next.Releases(ctx, project)
	if err != nil {
		return nil, err
	}
	if err := c.Cache.SaveReleases(key, rs); err != nil {
		c.Log.Warn("release cache write failed", zap.String("key", key), zap.Error(err))
	}
	return rs, nil
}

var _ domain.IndexClient = (*Cached)(nil)
