package index

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"flywrapper/internal/domain"
	"flywrapper/internal/requirement"
)

// Simple talks to a PEP 503 index: GET {base}/simple/{normalized}/.
type Simple struct {
	client
}

// NewSimple returns a simple-API client for base, e.g. https://pypi.org.
func NewSimple(base string, hc *http.Client, userAgent string, log *zap.Logger) *Simple {
	return &Simple{client: newClient(base, hc, userAgent, log)}
}

var (
	// name-version(-build)?-python-abi-platform.whl
	reWheel = regexp.MustCompile(`^([^-]+)-([^-]+)(?:-\d[^-]*)?-[^-]+-[^-]+-[^-]+\.whl$`)
	// name-version.ext, where name may itself contain dashes
	reSdist = regexp.MustCompile(`^(.+)-([^-]+)\.(?:tar\.gz|tar\.bz2|tar\.xz|tgz|zip)$`)
)

// link is one anchor of a simple project page.
type link struct {
	href           string
	text           string
	yanked         bool
	requiresPython string
}

// Releases lists releases found in the project's file links.
func (c *Simple) Releases(ctx context.Context, project string) ([]domain.Release, error) {
	name := requirement.NormalizeName(project)
	pagePath := "/simple/" + url.PathEscape(name) + "/"
	body, err := c.get(ctx, pagePath, "text/html")
	if err != nil {
		return nil, err
	}
	links, err := parseLinks(body)
	if err != nil {
		return nil, fmt.Errorf("parse %s page: %w", project, err)
	}

	page, err := url.Parse(c.Base + pagePath)
	if err != nil {
		return nil, err
	}

	files := map[string][]domain.File{}
	yanked := map[string]int{}
	requiresPython := map[string]string{}
	for _, l := range links {
		filename := l.text
		if filename == "" {
			filename = path.Base(strings.SplitN(l.href, "#", 2)[0])
		}
		v, ok := fileVersion(filename, name)
		if !ok {
			c.Log.Debug("skipping unrecognised file", zap.String("project", name), zap.String("file", filename))
			continue
		}
		f := domain.File{Filename: filename}
		if ref, err := url.Parse(l.href); err == nil {
			algo, digest, _ := strings.Cut(ref.Fragment, "=")
			switch algo {
			case "sha256":
				f.SHA256 = digest
			case "blake2b_256":
				f.Blake2b256 = digest
			}
			ref.Fragment = ""
			f.URL = page.ResolveReference(ref).String()
		}
		files[v] = append(files[v], f)
		if l.yanked {
			yanked[v]++
		}
		if l.requiresPython != "" && requiresPython[v] == "" {
			requiresPython[v] = l.requiresPython
		}
	}
	return group(files, yanked, requiresPython), nil
}

// fileVersion extracts the version of a wheel or sdist belonging to project.
// Parsable versions are returned normalized, so "1.0-rc1" and "1.0rc1" group
// together.
func fileVersion(filename, project string) (string, bool) {
	var name, ver string
	if m := reWheel.FindStringSubmatch(filename); m != nil {
		name, ver = m[1], m[2]
	} else if m := reSdist.FindStringSubmatch(filename); m != nil {
		name, ver = m[1], m[2]
	} else {
		return "", false
	}
	if requirement.NormalizeName(name) != project {
		return "", false
	}
	if v, err := requirement.ParseVersion(ver); err == nil {
		return v.String(), true
	}
	return ver, true
}

// parseLinks collects every anchor in the document.
func parseLinks(body []byte) ([]link, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	var out []link
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			l := link{text: strings.TrimSpace(textOf(n))}
			for _, a := range n.Attr {
				switch a.Key {
				case "href":
					l.href = a.Val
				case "data-yanked":
					l.yanked = true
				case "data-requires-python":
					l.requiresPython = a.Val
				}
			}
			if l.href != "" {
				out = append(out, l)
			}
		}
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch)
		}
	}
	walk(doc)
	return out, nil
}

func textOf(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch)
		}
	}
	walk(n)
	return sb.String()
}

var _ domain.IndexClient = (*Simple)(nil)
