package check_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flywrapper/internal/check"
	"flywrapper/internal/domain"
	"flywrapper/internal/requirement"
	"flywrapper/internal/selfmanifest"
)

func codes(r check.Report) []string {
	out := make([]string, len(r.Diagnostics))
	for i, d := range r.Diagnostics {
		out[i] = d.Code
	}
	return out
}

func reqs(t *testing.T, lines ...string) []domain.Requirement {
	t.Helper()
	out := make([]domain.Requirement, 0, len(lines))
	for _, l := range lines {
		r, _ := requirement.Parse(l)
		out = append(out, r)
	}
	return out
}

func TestRun_FlyWrapperManifest(t *testing.T) {
	m, err := selfmanifest.Load()
	require.NoError(t, err)

	r := check.Run(m, check.Options{})
	require.NotEmpty(t, r.Diagnostics)

	first := r.Diagnostics[0]
	assert.Equal(t, domain.SeverityError, first.Severity)
	assert.Equal(t, check.CodeInvalidVersion, first.Code)
	assert.Equal(t, "install_requires: pyyaml>-5.4.1", first.Subject)

	assert.Equal(t, 1, r.Count(domain.SeverityError))
	assert.Equal(t, 4, r.Count(domain.SeverityWarning))
	assert.True(t, r.Failed(false))
	assert.Equal(t, "fly-wrapper", r.Manifest)
}

func TestRun_CleanManifest(t *testing.T) {
	m := domain.Manifest{
		Name:     "fly-wrapper",
		Version:  "0.1",
		Requires: reqs(t, "requests>=2.31", "PyJWT==1.7.1"),
		Scripts:  []string{"fly"},
	}
	r := check.Run(m, check.Options{})
	assert.Empty(t, r.Diagnostics)
	assert.False(t, r.Failed(true))

	pedantic := check.Run(m, check.Options{Pedantic: true})
	assert.Equal(t, []string{check.CodeExactPin}, codes(pedantic))
	assert.False(t, pedantic.Failed(true), "info never fails")
}

func TestRun_MetadataProblems(t *testing.T) {
	r := check.Run(domain.Manifest{}, check.Options{})
	assert.ElementsMatch(t, []string{check.CodeMissingName, check.CodeMissingVersion, check.CodeNoEntryPoint}, codes(r))

	r = check.Run(domain.Manifest{Name: "-bad-", Version: "one", Scripts: []string{"fly"}}, check.Options{})
	assert.ElementsMatch(t, []string{check.CodeInvalidName, check.CodeInvalidVersion}, codes(r))
}

func TestRun_RequirementProblems(t *testing.T) {
	m := domain.Manifest{
		Name:          "x",
		Version:       "1.0",
		Scripts:       []string{"fly"},
		Requires:      reqs(t, "ruamel.yaml>=0.17", "Ruamel_YAML<1", "foo 1.0"),
		ExtrasRequire: map[string][]domain.Requirement{"dev": reqs(t, "pytest")},
		Unresolved:    []string{"packages"},
	}
	r := check.Run(m, check.Options{})
	assert.ElementsMatch(t, []string{
		check.CodeDuplicateRequirement,
		check.CodeInvalidRequirement,
		check.CodeUnpinned,
		check.CodeUnresolvedArgument,
	}, codes(r))
	assert.True(t, r.Failed(false))
}

func TestRun_MarkerSplitRequirements(t *testing.T) {
	m := domain.Manifest{
		Name:    "x",
		Version: "1.0",
		Scripts: []string{"fly"},
		Requires: reqs(t,
			`x>=1; python_version<"3"`,
			`x>=2; python_version>="3"`,
		),
	}
	r := check.Run(m, check.Options{})
	assert.Empty(t, r.Diagnostics)
	assert.False(t, r.Failed(true))

	m.Requires = append(m.Requires, reqs(t, `X<3;  python_version<"3"`)...)
	r = check.Run(m, check.Options{})
	require.Len(t, r.Diagnostics, 1)
	assert.Equal(t, check.CodeDuplicateRequirement, r.Diagnostics[0].Code)
	assert.Equal(t, `install_requires: X<3;  python_version<"3"`, r.Diagnostics[0].Subject)
}

func TestReport_StrictWarnings(t *testing.T) {
	m := domain.Manifest{Name: "x", Version: "1.0", Scripts: []string{"fly"}, Requires: reqs(t, "bs4")}
	r := check.Run(m, check.Options{})
	assert.False(t, r.Failed(false))
	assert.True(t, r.Failed(true))
}
