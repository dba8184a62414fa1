package resolve

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"flywrapper/internal/domain"
	"flywrapper/internal/index"
	"flywrapper/internal/requirement"
)

// Service resolves requirements against one index.
type Service struct {
	idx   domain.IndexClient
	limit int
	log   *zap.Logger
}

// New returns a Service issuing at most concurrency index lookups at once.
func New(idx domain.IndexClient, concurrency int, log *zap.Logger) *Service {
	if concurrency < 1 {
		concurrency = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{idx: idx, limit: concurrency, log: log}
}

// Resolve returns one Resolution per requirement, in input order.
func (s *Service) Resolve(ctx context.Context, reqs []domain.Requirement, opts domain.ResolveOptions) ([]domain.Resolution, error) {
	out := make([]domain.Resolution, len(reqs))

	var g errgroup.Group
	g.SetLimit(s.limit)
	for i, r := range reqs {
		out[i] = domain.Resolution{Requirement: r}
		switch {
		case r.Invalid != "":
			out[i].Status = domain.Skipped
			out[i].Detail = "invalid requirement: " + r.Invalid
			continue
		case r.URL != "":
			out[i].Status = domain.Skipped
			out[i].Detail = "direct reference " + r.URL
			continue
		}
		i, r := i, r
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			out[i] = s.resolveOne(ctx, r, opts)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) resolveOne(ctx context.Context, r domain.Requirement, opts domain.ResolveOptions) domain.Resolution {
	res := domain.Resolution{Requirement: r}
	fail := func(format string, args ...any) domain.Resolution {
		res.Status = domain.Failed
		res.Detail = fmt.Sprintf(format, args...)
		s.log.Warn("resolution failed", zap.String("requirement", r.Raw), zap.String("detail", res.Detail))
		return res
	}

	set, err := requirement.CompileSpecifiers(r.Specifiers)
	if err != nil {
		return fail("%v", err)
	}
	releases, err := s.idx.Releases(ctx, r.Name)
	if errors.Is(err, index.ErrNotFound) {
		return fail("%s is not on the index", r.Name)
	}
	if err != nil {
		return fail("%v", err)
	}

	best, candidates, preOnly := pick(releases, set, opts.Pre)
	res.Candidates = candidates
	if best == nil {
		res.Status = domain.Unsatisfied
		res.Detail = fmt.Sprintf("none of %d releases match %q", len(releases), set.String())
		return res
	}
	res.Status = domain.Resolved
	res.Version = best.Version
	var notes []string
	if preOnly {
		notes = append(notes, "only prereleases match")
	}
	if r.Marker != "" {
		notes = append(notes, "marker not evaluated: "+r.Marker)
	}
	res.Detail = strings.Join(notes, "; ")
	s.log.Debug("resolved",
		zap.String("requirement", r.Raw),
		zap.String("version", res.Version),
		zap.Int("candidates", candidates))
	return res
}

// pick returns the highest release in set. Yanked releases count only when
// pinned exactly. When no final release matches, matching prereleases are
// used, and preOnly reports that fallback.
func pick(releases []domain.Release, set requirement.SpecifierSet, allowPre bool) (best *domain.Release, candidates int, preOnly bool) {
	choose := func(allow bool) (*domain.Release, int) {
		var top *domain.Release
		var topV requirement.Version
		n := 0
		for i := range releases {
			rel := &releases[i]
			if rel.Yanked && !pinned(set, rel.Version) {
				continue
			}
			v, err := requirement.ParseVersion(rel.Version)
			if err != nil {
				continue
			}
			if !set.Contains(v, allow) {
				continue
			}
			n++
			if top == nil || requirement.Compare(v, topV) > 0 {
				top, topV = rel, v
			}
		}
		return top, n
	}

	best, candidates = choose(allowPre)
	if best == nil && !allowPre {
		if best, candidates = choose(true); best != nil {
			preOnly = true
		}
	}
	return best, candidates, preOnly
}

func pinned(set requirement.SpecifierSet, version string) bool {
	v, err := requirement.ParseVersion(version)
	for _, s := range set {
		switch {
		case s.Op == "===":
			if strings.EqualFold(s.Operand(), version) {
				return true
			}
		case s.Op == "==" && !s.Wildcard && err == nil && s.Contains(v):
			return true
		}
	}
	return false
}

var _ domain.Resolver = (*Service)(nil)
