package index

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"flywrapper/internal/domain"
)

// JSON talks to the PyPI JSON API: GET {base}/pypi/{project}/json.
type JSON struct {
	client
}

// NewJSON returns a JSON API client for base, e.g. https://pypi.org.
func NewJSON(base string, hc *http.Client, userAgent string, log *zap.Logger) *JSON {
	return &JSON{client: newClient(base, hc, userAgent, log)}
}

type jsonFile struct {
	Filename       string  `json:"filename"`
	URL            string  `json:"url"`
	Yanked         bool    `json:"yanked"`
	RequiresPython *string `json:"requires_python"`
	Digests        struct {
		SHA256     string `json:"sha256"`
		Blake2b256 string `json:"blake2b_256"`
	} `json:"digests"`
}

type jsonProject struct {
	Releases map[string][]jsonFile `json:"releases"`
}

// Releases lists every release that has at least one file.
func (c *JSON) Releases(ctx context.Context, project string) ([]domain.Release, error) {
	body, err := c.get(ctx, "/pypi/"+url.PathEscape(project)+"/json", "application/json")
	if err != nil {
		return nil, err
	}
	var p jsonProject
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("decode %s releases: %w", project, err)
	}

	files := make(map[string][]domain.File, len(p.Releases))
	yanked := map[string]int{}
	requiresPython := map[string]string{}
	for v, fs := range p.Releases {
		for _, f := range fs {
			files[v] = append(files[v], domain.File{
				Filename:   f.Filename,
				URL:        f.URL,
				SHA256:     f.Digests.SHA256,
				Blake2b256: f.Digests.Blake2b256,
			})
			if f.Yanked {
				yanked[v]++
			}
			if f.RequiresPython != nil && requiresPython[v] == "" {
				requiresPython[v] = *f.RequiresPython
			}
		}
	}
	return group(files, yanked, requiresPython), nil
}

var _ domain.IndexClient = (*JSON)(nil)
