package requirement

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"flywrapper/internal/domain"
)

// ErrInvalidRequirement marks a requirement string that is not PEP 508.
var ErrInvalidRequirement = errors.New("invalid requirement")

var (
	reName      = regexp.MustCompile(`^([A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?)`)
	reExtra     = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?$`)
	reNormalize = regexp.MustCompile(`[-_.]+`)
)

// NormalizeName applies PEP 503 name normalization.
func NormalizeName(name string) string {
	return strings.ToLower(reNormalize.ReplaceAllString(strings.TrimSpace(name), "-"))
}

// Parse reads a PEP 508 requirement. When a clause is malformed the returned
// requirement still carries everything that could be read, Invalid is set,
// and the error is returned alongside it.
func Parse(s string) (domain.Requirement, error) {
	req := domain.Requirement{Raw: s}
	fail := func(err error) (domain.Requirement, error) {
		req.Invalid = err.Error()
		return req, err
	}

	rest := strings.TrimSpace(s)
	if rest == "" {
		return fail(fmt.Errorf("%w: empty", ErrInvalidRequirement))
	}

	name := reName.FindString(rest)
	if name == "" {
		return fail(fmt.Errorf("%w: %q has no project name", ErrInvalidRequirement, s))
	}
	req.Name = name
	rest = strings.TrimSpace(rest[len(name):])

	if strings.HasPrefix(rest, "[") {
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return fail(fmt.Errorf("%w: unclosed extras in %q", ErrInvalidRequirement, s))
		}
		for _, e := range strings.Split(rest[1:end], ",") {
			e = strings.TrimSpace(e)
			if e == "" {
				continue
			}
			if !reExtra.MatchString(e) {
				return fail(fmt.Errorf("%w: bad extra %q", ErrInvalidRequirement, e))
			}
			req.Extras = append(req.Extras, e)
		}
		rest = strings.TrimSpace(rest[end+1:])
	}

	if strings.HasPrefix(rest, "@") {
		rest = strings.TrimSpace(rest[1:])
		// A marker after a URL must be separated by whitespace.
		url, marker, _ := strings.Cut(rest, " ;")
		req.URL = strings.TrimSpace(url)
		if req.URL == "" {
			return fail(fmt.Errorf("%w: empty URL in %q", ErrInvalidRequirement, s))
		}
		req.Marker = strings.TrimSpace(marker)
		return req, nil
	}

	specs, marker, hasMarker := strings.Cut(rest, ";")
	if hasMarker {
		req.Marker = strings.TrimSpace(marker)
		if req.Marker == "" {
			return fail(fmt.Errorf("%w: empty marker in %q", ErrInvalidRequirement, s))
		}
	}
	specs = strings.TrimSpace(specs)
	if strings.HasPrefix(specs, "(") {
		if !strings.HasSuffix(specs, ")") {
			return fail(fmt.Errorf("%w: unbalanced parenthesis in %q", ErrInvalidRequirement, s))
		}
		specs = strings.TrimSpace(specs[1 : len(specs)-1])
	}
	if specs == "" {
		return req, nil
	}

	var firstErr error
	for _, clause := range strings.Split(specs, ",") {
		clause = strings.TrimSpace(clause)
		op, ver, ok := splitOperator(clause)
		if !ok {
			return fail(fmt.Errorf("%w: %v", ErrInvalidRequirement, &InvalidSpecifierError{Spec: clause, Err: errNoOperator}))
		}
		req.Specifiers = append(req.Specifiers, domain.Specifier{Op: op, Version: ver})
		if _, err := ParseSpecifier(clause); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return fail(firstErr)
	}
	return req, nil
}

// String renders a requirement in canonical PEP 508 form.
func String(r domain.Requirement) string {
	var b strings.Builder
	b.WriteString(r.Name)
	if len(r.Extras) > 0 {
		b.WriteString("[" + strings.Join(r.Extras, ",") + "]")
	}
	if r.URL != "" {
		b.WriteString(" @ " + r.URL)
	}
	for i, s := range r.Specifiers {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s.String())
	}
	if r.Marker != "" {
		b.WriteString("; " + r.Marker)
	}
	return b.String()
}
