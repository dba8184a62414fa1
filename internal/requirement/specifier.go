package requirement

import (
	"errors"
	"fmt"
	"strings"

	pep440 "github.com/aquasecurity/go-pep440-version"

	"flywrapper/internal/domain"
)

// Operators ordered so that longer tokens match first.
var operators = []string{"===", "~=", "==", "!=", "<=", ">=", "<", ">"}

// InvalidSpecifierError reports a specifier whose operator or version
// cannot be understood.
type InvalidSpecifierError struct {
	Spec string
	Err  error
}

func (e *InvalidSpecifierError) Error() string {
	return fmt.Sprintf("invalid specifier %q: %v", e.Spec, e.Err)
}

func (e *InvalidSpecifierError) Unwrap() error { return e.Err }

var (
	errNoOperator     = errors.New("missing comparison operator")
	errWildcardOp     = errors.New("wildcard only allowed with == and !=")
	errCompatibleLen  = errors.New("~= needs at least two release segments")
	errEmptySpecifier = errors.New("empty version")
)

// Specifier is a compiled version clause.
type Specifier struct {
	Op       string
	Wildcard bool // "==1.2.*"

	operand string // version text after the operator
	check   pep440.Specifiers
	raw     string
}

// String returns the clause as written.
func (s Specifier) String() string { return s.raw }

// Operand returns the version text of the clause, without the operator.
func (s Specifier) Operand() string { return s.operand }

// splitOperator separates a clause into operator and version text.
func splitOperator(s string) (op, rest string, ok bool) {
	s = strings.TrimSpace(s)
	for _, o := range operators {
		if strings.HasPrefix(s, o) {
			return o, strings.TrimSpace(s[len(o):]), true
		}
	}
	return "", s, false
}

// ParseSpecifier compiles a clause such as ">=1.0" or "==2.*".
func ParseSpecifier(s string) (Specifier, error) {
	op, rest, ok := splitOperator(s)
	if !ok {
		return Specifier{}, &InvalidSpecifierError{Spec: s, Err: errNoOperator}
	}
	if rest == "" {
		return Specifier{}, &InvalidSpecifierError{Spec: s, Err: errEmptySpecifier}
	}
	sp := Specifier{Op: op, operand: rest, raw: strings.TrimSpace(s)}
	if op == "===" {
		// Arbitrary equality is a string match and accepts any text.
		return sp, nil
	}

	bare := rest
	if strings.HasSuffix(rest, ".*") {
		if op != "==" && op != "!=" {
			return Specifier{}, &InvalidSpecifierError{Spec: s, Err: errWildcardOp}
		}
		sp.Wildcard = true
		bare = strings.TrimSuffix(rest, ".*")
	}
	if _, err := ParseVersion(bare); err != nil {
		return Specifier{}, &InvalidSpecifierError{Spec: s, Err: err}
	}
	if op == "~=" && !strings.Contains(bare, ".") {
		return Specifier{}, &InvalidSpecifierError{Spec: s, Err: errCompatibleLen}
	}

	check, err := pep440.NewSpecifiers(op + rest)
	if err != nil {
		return Specifier{}, &InvalidSpecifierError{Spec: s, Err: err}
	}
	sp.check = check
	return sp, nil
}

// Contains reports whether v satisfies the clause, ignoring prerelease policy.
func (s Specifier) Contains(v Version) bool {
	if s.Op == "===" {
		return strings.EqualFold(v.Original(), s.operand)
	}
	return s.check.Check(v.v)
}

// namesPrerelease reports whether the clause's own version is a prerelease.
func (s Specifier) namesPrerelease() bool {
	if s.Op == "!=" {
		return false
	}
	v, err := ParseVersion(strings.TrimSuffix(s.operand, ".*"))
	return err == nil && v.IsPrerelease()
}

// SpecifierSet is the conjunction of a requirement's clauses.
type SpecifierSet []Specifier

// CompileSpecifiers turns a requirement's declared clauses into a set.
func CompileSpecifiers(specs []domain.Specifier) (SpecifierSet, error) {
	out := make(SpecifierSet, 0, len(specs))
	for _, d := range specs {
		sp, err := ParseSpecifier(d.String())
		if err != nil {
			return nil, err
		}
		out = append(out, sp)
	}
	return out, nil
}

// NamesPrerelease reports whether any clause explicitly mentions a prerelease.
func (ss SpecifierSet) NamesPrerelease() bool {
	for _, s := range ss {
		if s.namesPrerelease() {
			return true
		}
	}
	return false
}

// Contains reports whether v satisfies every clause. Prereleases match only
// when allowPre is set or a clause names a prerelease.
func (ss SpecifierSet) Contains(v Version, allowPre bool) bool {
	if v.IsPrerelease() && !allowPre && !ss.NamesPrerelease() {
		return false
	}
	for _, s := range ss {
		if !s.Contains(v) {
			return false
		}
	}
	return true
}

// String joins the clauses with commas.
func (ss SpecifierSet) String() string {
	parts := make([]string, len(ss))
	for i, s := range ss {
		parts[i] = s.String()
	}
	return strings.Join(parts, ",")
}
