package requirement

import (
	"fmt"
	"strings"

	pep440 "github.com/aquasecurity/go-pep440-version"
)

// Version is a parsed PEP 440 version.
type Version struct {
	v pep440.Version
}

// ParseVersion parses s as a PEP 440 version. Release segments must fit in
// 64 bits; longer ones are rejected rather than truncated.
func ParseVersion(s string) (Version, error) {
	v, err := pep440.Parse(strings.TrimSpace(s))
	if err != nil {
		return Version{}, fmt.Errorf("invalid version %q: %w", s, err)
	}
	return Version{v: v}, nil
}

// IsPrerelease reports alpha, beta, rc and dev versions.
func (v Version) IsPrerelease() bool { return v.v.IsPreRelease() }

// IsPostRelease reports whether v has a .postN segment.
func (v Version) IsPostRelease() bool { return v.v.IsPostRelease() }

// Original returns the text v was parsed from.
func (v Version) Original() string { return v.v.Original() }

// String renders the normalized form.
func (v Version) String() string { return v.v.String() }

// Compare orders a and b per PEP 440, returning -1, 0 or +1.
func Compare(a, b Version) int { return a.v.Compare(b.v) }
