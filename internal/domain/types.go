package domain

// Manifest is the typed form of a setup(...) call.
type Manifest struct {
	Name           string                   `json:"name" yaml:"name"`
	Version        string                   `json:"version" yaml:"version"`
	Description    string                   `json:"description,omitempty" yaml:"description,omitempty"`
	Author         string                   `json:"author,omitempty" yaml:"author,omitempty"`
	AuthorEmail    string                   `json:"author_email,omitempty" yaml:"author_email,omitempty"`
	URL            string                   `json:"url,omitempty" yaml:"url,omitempty"`
	License        string                   `json:"license,omitempty" yaml:"license,omitempty"`
	PythonRequires string                   `json:"python_requires,omitempty" yaml:"python_requires,omitempty"`
	Requires       []Requirement            `json:"install_requires" yaml:"install_requires"`
	ExtrasRequire  map[string][]Requirement `json:"extras_require,omitempty" yaml:"extras_require,omitempty"`
	Scripts        []string                 `json:"scripts" yaml:"scripts"`
	ConsoleScripts []EntryPoint             `json:"console_scripts,omitempty" yaml:"console_scripts,omitempty"`
	Packages       []string                 `json:"packages,omitempty" yaml:"packages,omitempty"`
	PyModules      []string                 `json:"py_modules,omitempty" yaml:"py_modules,omitempty"`

	// Extra holds literal keyword arguments without a dedicated field.
	Extra map[string]any `json:"extra,omitempty" yaml:"extra,omitempty"`
	// Unresolved names keyword arguments whose value is not a literal.
	Unresolved []string `json:"unresolved,omitempty" yaml:"unresolved,omitempty"`
}

// EntryPoints reports every executable the manifest installs.
func (m Manifest) EntryPoints() []string {
	out := make([]string, 0, len(m.Scripts)+len(m.ConsoleScripts))
	out = append(out, m.Scripts...)
	for _, ep := range m.ConsoleScripts {
		out = append(out, ep.Name)
	}
	return out
}

// EntryPoint is a console_scripts declaration "name = module:func".
type EntryPoint struct {
	Name   string `json:"name" yaml:"name"`
	Target string `json:"target" yaml:"target"`
}

// Requirement is one PEP 508 dependency declaration.
type Requirement struct {
	Raw        string      `json:"raw" yaml:"raw"`
	Name       string      `json:"name" yaml:"name"`
	Extras     []string    `json:"extras,omitempty" yaml:"extras,omitempty"`
	Specifiers []Specifier `json:"specifiers,omitempty" yaml:"specifiers,omitempty"`
	URL        string      `json:"url,omitempty" yaml:"url,omitempty"`
	Marker     string      `json:"marker,omitempty" yaml:"marker,omitempty"`

	// Invalid carries the parse error message; the requirement is still declared.
	Invalid string `json:"invalid,omitempty" yaml:"invalid,omitempty"`
}

// Specifier is a single version clause such as ">=1.0".
type Specifier struct {
	Op      string `json:"op" yaml:"op"`
	Version string `json:"version" yaml:"version"`
}

func (s Specifier) String() string { return s.Op + s.Version }

// Release is one published version of a project on an index.
type Release struct {
	Version        string `json:"version"`
	Yanked         bool   `json:"yanked,omitempty"`
	RequiresPython string `json:"requires_python,omitempty"`
	Files          []File `json:"files,omitempty"`
}

// File is a distribution artifact of a release.
type File struct {
	Filename   string `json:"filename"`
	URL        string `json:"url"`
	SHA256     string `json:"sha256,omitempty"`
	Blake2b256 string `json:"blake2b_256,omitempty"`
}

// ResolutionStatus is the outcome of resolving one requirement.
type ResolutionStatus string

const (
	Resolved    ResolutionStatus = "resolved"
	Unsatisfied ResolutionStatus = "unsatisfied"
	Skipped     ResolutionStatus = "skipped"
	Failed      ResolutionStatus = "error"
)

// Resolution pairs a requirement with the release chosen for it.
type Resolution struct {
	Requirement Requirement      `json:"requirement" yaml:"requirement"`
	Status      ResolutionStatus `json:"status" yaml:"status"`
	Version     string           `json:"version,omitempty" yaml:"version,omitempty"`
	Candidates  int              `json:"candidates" yaml:"candidates"`
	Detail      string           `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Severity orders diagnostics; lower is more severe.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "info"
	}
}

// MarshalText lets JSON and YAML encoders print the name.
func (s Severity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Diagnostic is one finding produced by checking a manifest.
type Diagnostic struct {
	Severity Severity `json:"severity" yaml:"severity"`
	Code     string   `json:"code" yaml:"code"`
	Subject  string   `json:"subject" yaml:"subject"`
	Message  string   `json:"message" yaml:"message"`
}
