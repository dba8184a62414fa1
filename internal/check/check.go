package check

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"flywrapper/internal/domain"
	"flywrapper/internal/requirement"
)

// Diagnostic codes.
const (
	CodeMissingName          = "missing-name"
	CodeInvalidName          = "invalid-name"
	CodeMissingVersion       = "missing-version"
	CodeInvalidVersion       = "invalid-version"
	CodeInvalidRequirement   = "invalid-requirement"
	CodeDuplicateRequirement = "duplicate-requirement"
	CodeUnpinned             = "unpinned"
	CodeExactPin             = "exact-pin"
	CodeNoEntryPoint         = "no-entry-point"
	CodeUnresolvedArgument   = "unresolved-argument"
)

var reProjectName = regexp.MustCompile(`(?i)^([a-z0-9]|[a-z0-9][a-z0-9._-]*[a-z0-9])$`)

// Options tunes which findings are reported.
type Options struct {
	// Pedantic adds informational findings such as exact pins.
	Pedantic bool
}

// Report is the ordered result of checking one manifest.
type Report struct {
	Manifest    string              `json:"manifest" yaml:"manifest"`
	Diagnostics []domain.Diagnostic `json:"diagnostics" yaml:"diagnostics"`
}

// Count returns how many diagnostics have severity s.
func (r Report) Count(s domain.Severity) int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Severity == s {
			n++
		}
	}
	return n
}

// Failed reports whether the manifest should be rejected. In strict mode
// warnings count as failures too.
func (r Report) Failed(strict bool) bool {
	if r.Count(domain.SeverityError) > 0 {
		return true
	}
	return strict && r.Count(domain.SeverityWarning) > 0
}

// Run checks m and returns its diagnostics sorted by severity, then subject.
func Run(m domain.Manifest, opts Options) Report {
	var ds []domain.Diagnostic
	add := func(sev domain.Severity, code, subject, format string, args ...any) {
		ds = append(ds, domain.Diagnostic{
			Severity: sev,
			Code:     code,
			Subject:  subject,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	switch {
	case m.Name == "":
		add(domain.SeverityError, CodeMissingName, "name", "package name is not declared")
	case !reProjectName.MatchString(m.Name):
		add(domain.SeverityError, CodeInvalidName, "name", "%q is not a valid project name", m.Name)
	}

	if m.Version == "" {
		add(domain.SeverityError, CodeMissingVersion, "version", "package version is not declared")
	} else if _, err := requirement.ParseVersion(m.Version); err != nil {
		add(domain.SeverityError, CodeInvalidVersion, "version", "%q is not a PEP 440 version", m.Version)
	}

	checkRequirements(m.Requires, "install_requires", opts, add)
	extras := make([]string, 0, len(m.ExtrasRequire))
	for name := range m.ExtrasRequire {
		extras = append(extras, name)
	}
	sort.Strings(extras)
	for _, name := range extras {
		checkRequirements(m.ExtrasRequire[name], "extras_require["+name+"]", opts, add)
	}

	if len(m.EntryPoints()) == 0 {
		add(domain.SeverityWarning, CodeNoEntryPoint, "scripts", "no scripts or console_scripts are declared")
	}

	for _, key := range m.Unresolved {
		add(domain.SeverityWarning, CodeUnresolvedArgument, key, "value of %s is computed at runtime and was not read", key)
	}

	sort.SliceStable(ds, func(i, j int) bool {
		if ds[i].Severity != ds[j].Severity {
			return ds[i].Severity < ds[j].Severity
		}
		return ds[i].Subject < ds[j].Subject
	})
	if ds == nil {
		ds = []domain.Diagnostic{}
	}
	return Report{Manifest: m.Name, Diagnostics: ds}
}

type addFunc func(sev domain.Severity, code, subject, format string, args ...any)

func checkRequirements(reqs []domain.Requirement, field string, opts Options, add addFunc) {
	seen := make(map[string]string, len(reqs))
	for _, r := range reqs {
		subject := field + ": " + r.Raw
		if r.Invalid != "" {
			// Reparse to classify the failure.
			_, err := requirement.Parse(r.Raw)
			var specErr *requirement.InvalidSpecifierError
			if errors.As(err, &specErr) && !errors.Is(err, requirement.ErrInvalidRequirement) {
				add(domain.SeverityError, CodeInvalidVersion, subject, "%s", r.Invalid)
			} else {
				add(domain.SeverityError, CodeInvalidRequirement, subject, "%s", r.Invalid)
			}
		}

		if r.Name != "" {
			// Entries split by environment marker are alternatives, not repeats.
			name := requirement.NormalizeName(r.Name)
			key := name + "|" + strings.Join(strings.Fields(r.Marker), " ")
			if prev, dup := seen[key]; dup {
				add(domain.SeverityError, CodeDuplicateRequirement, subject, "%s is already required by %q", name, prev)
			} else {
				seen[key] = r.Raw
			}
		}

		if r.Invalid != "" {
			continue
		}
		switch {
		case len(r.Specifiers) == 0 && r.URL == "":
			add(domain.SeverityWarning, CodeUnpinned, subject, "%s accepts any version", r.Name)
		case opts.Pedantic && isExactPin(r):
			add(domain.SeverityInfo, CodeExactPin, subject, "%s is pinned to a single version", r.Name)
		}
	}
}

func isExactPin(r domain.Requirement) bool {
	for _, s := range r.Specifiers {
		if s.Op == "===" || (s.Op == "==" && !hasWildcard(s.Version)) {
			return true
		}
	}
	return false
}

func hasWildcard(v string) bool { return len(v) >= 2 && v[len(v)-2:] == ".*" }
