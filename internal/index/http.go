package index

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/blang/semver/v4"
	"go.uber.org/zap"

	"flywrapper/internal/domain"
	"flywrapper/internal/requirement"
)

// ErrNotFound is returned when the index has no such project.
var ErrNotFound = errors.New("project not found on index")

// maxBody caps how much of a response we read.
const maxBody = 32 << 20

// client holds what the JSON and simple index clients share.
type client struct {
	Base      string
	HTTP      *http.Client
	UserAgent string
	Log       *zap.Logger
}

func newClient(base string, hc *http.Client, userAgent string, log *zap.Logger) client {
	if hc == nil {
		hc = http.DefaultClient
	}
	if log == nil {
		log = zap.NewNop()
	}
	return client{Base: strings.TrimRight(base, "/"), HTTP: hc, UserAgent: userAgent, Log: log}
}

// get fetches path and returns the body of a 2xx response.
func (c client) get(ctx context.Context, path, accept string) ([]byte, error) {
	u := c.Base + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", accept)
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	c.Log.Debug("index request", zap.String("url", u))
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, u)
	}
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("index get %s: %s", u, resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxBody))
}

// group collects files by version and orders releases oldest first.
func group(files map[string][]domain.File, yanked map[string]int, requiresPython map[string]string) []domain.Release {
	out := make([]domain.Release, 0, len(files))
	for v, fs := range files {
		if len(fs) == 0 {
			continue
		}
		out = append(out, domain.Release{
			Version:        v,
			Yanked:         yanked[v] == len(fs),
			RequiresPython: requiresPython[v],
			Files:          fs,
		})
	}
	sortReleases(out)
	return out
}

// How a release version can be ordered, lowest rank first.
const (
	rankText   = iota // neither form parses: compared as strings
	rankLegacy        // not PEP 440, but a tolerant semver such as "2.0.0-snapshot"
	rankPEP440
)

type releaseKey struct {
	rank   int
	pep440 requirement.Version
	legacy semver.Version
}

func orderKey(version string) releaseKey {
	if v, err := requirement.ParseVersion(version); err == nil {
		return releaseKey{rank: rankPEP440, pep440: v}
	}
	if v, err := semver.ParseTolerant(version); err == nil {
		return releaseKey{rank: rankLegacy, legacy: v}
	}
	return releaseKey{rank: rankText}
}

// sortReleases orders PEP 440 versions last and by PEP 440 rules. Legacy
// uploads that are not PEP 440 come before them, ordered as semver when they
// parse as one.
func sortReleases(rs []domain.Release) {
	keys := make(map[string]releaseKey, len(rs))
	for _, r := range rs {
		keys[r.Version] = orderKey(r.Version)
	}
	sort.SliceStable(rs, func(i, j int) bool {
		a, b := keys[rs[i].Version], keys[rs[j].Version]
		if a.rank != b.rank {
			return a.rank < b.rank
		}
		switch a.rank {
		case rankPEP440:
			return requirement.Compare(a.pep440, b.pep440) < 0
		case rankLegacy:
			return a.legacy.LT(b.legacy)
		}
		return rs[i].Version < rs[j].Version
	})
}
