// Package index provides HTTP implementations of domain.IndexClient for
// Python package indexes.
//
// Two APIs are supported:
//   - JSON: the PyPI JSON API, GET {base}/pypi/{project}/json.
//   - Simple: the PEP 503 HTML API, GET {base}/simple/{normalized}/. File
//     anchors are parsed with golang.org/x/net/html and versions are read
//     from wheel and sdist file names.
//
// Both return releases oldest first, mark a release yanked when every file in
// it is yanked, and map 404 to ErrNotFound. Cached wraps either client with a
// domain.ReleaseCache. All requests accept a context for cancellation.
package index
