package domain

import (
	"context"
	"time"
)

// IndexClient is how we talk to a Python package index.
type IndexClient interface {
	Releases(ctx context.Context, project string) ([]Release, error)
}

// ReleaseCache persists release lists fetched from an index.
type ReleaseCache interface {
	LoadReleases(key string, maxAge time.Duration) ([]Release, bool, error)
	SaveReleases(key string, releases []Release) error
	Clear() (int, error)
}

// Resolver chooses a release for each requirement.
type Resolver interface {
	Resolve(ctx context.Context, reqs []Requirement, opts ResolveOptions) ([]Resolution, error)
}

// ResolveOptions tunes a Resolve call.
type ResolveOptions struct {
	// Pre admits prereleases for every requirement.
	Pre bool
}
