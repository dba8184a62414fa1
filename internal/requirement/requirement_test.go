package requirement

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flywrapper/internal/domain"
)

func TestParse_DeclaredDependencies(t *testing.T) {
	tests := []struct {
		in   string
		want domain.Requirement
	}{
		{"requests", domain.Requirement{Raw: "requests", Name: "requests"}},
		{"pyJWT==1.7.1", domain.Requirement{Raw: "pyJWT==1.7.1", Name: "pyJWT",
			Specifiers: []domain.Specifier{{Op: "==", Version: "1.7.1"}}}},
		{"ruamel.yaml", domain.Requirement{Raw: "ruamel.yaml", Name: "ruamel.yaml"}},
		{"requests[socks, security] (>=2.0, <3)", domain.Requirement{
			Raw:        "requests[socks, security] (>=2.0, <3)",
			Name:       "requests",
			Extras:     []string{"socks", "security"},
			Specifiers: []domain.Specifier{{Op: ">=", Version: "2.0"}, {Op: "<", Version: "3"}},
		}},
		{`pywin32>=1.0; sys_platform == "win32"`, domain.Requirement{
			Raw:        `pywin32>=1.0; sys_platform == "win32"`,
			Name:       "pywin32",
			Specifiers: []domain.Specifier{{Op: ">=", Version: "1.0"}},
			Marker:     `sys_platform == "win32"`,
		}},
		{"pip @ https://example.com/pip.zip ; python_version >= '3.8'", domain.Requirement{
			Raw:    "pip @ https://example.com/pip.zip ; python_version >= '3.8'",
			Name:   "pip",
			URL:    "https://example.com/pip.zip",
			Marker: "python_version >= '3.8'",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestParse_MalformedSpecifierKeepsDependency(t *testing.T) {
	got, err := Parse("pyyaml>-5.4.1")
	require.Error(t, err)

	var specErr *InvalidSpecifierError
	require.True(t, errors.As(err, &specErr))
	assert.Equal(t, ">-5.4.1", specErr.Spec)

	assert.Equal(t, "pyyaml", got.Name)
	assert.Equal(t, []domain.Specifier{{Op: ">", Version: "-5.4.1"}}, got.Specifiers)
	assert.NotEmpty(t, got.Invalid)
}

func TestParse_Rejects(t *testing.T) {
	for _, in := range []string{"", "   ", ">=1.0", "foo[bar", "foo 1.0", "foo (>=1.0", "foo; ", "foo @ "} {
		t.Run(in, func(t *testing.T) {
			got, err := Parse(in)
			require.Error(t, err)
			assert.NotEmpty(t, got.Invalid)
		})
	}
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "ruamel-yaml", NormalizeName("ruamel.yaml"))
	assert.Equal(t, "pyjwt", NormalizeName("PyJWT"))
	assert.Equal(t, "foo-bar", NormalizeName("Foo__Bar"))
	assert.Equal(t, "a-b-c", NormalizeName("a-_.b.c"))
}

func TestString_Canonical(t *testing.T) {
	r, err := Parse("requests [socks] ( >=2.0 , <3 ) ; python_version>'3'")
	require.NoError(t, err)
	assert.Equal(t, "requests[socks]>=2.0,<3; python_version>'3'", String(r))
}
