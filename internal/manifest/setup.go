package manifest

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"flywrapper/internal/domain"
	"flywrapper/internal/requirement"
)

// Parse reads the first setup(...) call in src into a Manifest.
// Requirements that fail to parse are kept with Invalid set.
func Parse(src []byte) (domain.Manifest, error) {
	toks, err := lex(src)
	if err != nil {
		return domain.Manifest{}, err
	}
	p := &parser{toks: toks}
	if !p.findSetup() {
		return domain.Manifest{}, ErrNoSetupCall
	}
	args, order, err := p.keywordArgs()
	if err != nil {
		return domain.Manifest{}, err
	}
	return build(args, order), nil
}

// ParseFile reads and parses the manifest at path.
func ParseFile(path string) (domain.Manifest, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return domain.Manifest{}, err
	}
	m, err := Parse(src)
	if err != nil {
		return domain.Manifest{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return m, nil
}

func build(args map[string]any, order []string) domain.Manifest {
	m := domain.Manifest{
		Requires: []domain.Requirement{},
		Scripts:  []string{},
	}
	unresolved := func(key string) { m.Unresolved = append(m.Unresolved, key) }

	for _, key := range order {
		v := args[key]
		if _, ok := v.(nonLiteral); ok {
			unresolved(key)
			continue
		}
		ok := true
		switch key {
		case "name":
			m.Name, ok = scalar(v)
		case "version":
			m.Version, ok = scalar(v)
		case "description":
			m.Description, ok = scalar(v)
		case "author":
			m.Author, ok = scalar(v)
		case "author_email":
			m.AuthorEmail, ok = scalar(v)
		case "url":
			m.URL, ok = scalar(v)
		case "license":
			m.License, ok = scalar(v)
		case "python_requires":
			m.PythonRequires, ok = scalar(v)
		case "install_requires":
			var lines []string
			if lines, ok = stringList(v); ok {
				m.Requires = requirements(lines)
			}
		case "extras_require":
			ok = setExtras(&m, v)
		case "scripts":
			m.Scripts, ok = stringList(v)
		case "packages":
			m.Packages, ok = stringList(v)
		case "py_modules":
			m.PyModules, ok = stringList(v)
		case "entry_points":
			ok = setEntryPoints(&m, v)
		default:
			if m.Extra == nil {
				m.Extra = map[string]any{}
			}
			m.Extra[key] = plain(v)
		}
		if !ok {
			unresolved(key)
		}
	}
	return m
}

func scalar(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case number:
		return string(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	}
	return "", false
}

// stringList accepts a list or tuple of strings, or a single string holding
// one entry per line as setuptools does.
func stringList(v any) ([]string, bool) {
	switch x := v.(type) {
	case string:
		var out []string
		for _, line := range strings.Split(x, "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			out = append(out, line)
		}
		if out == nil {
			out = []string{}
		}
		return out, true
	case []any:
		out := make([]string, 0, len(x))
		for _, e := range x {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

func requirements(lines []string) []domain.Requirement {
	out := make([]domain.Requirement, 0, len(lines))
	for _, line := range lines {
		// Parse errors are recorded on the requirement itself.
		r, _ := requirement.Parse(line)
		out = append(out, r)
	}
	return out
}

func setExtras(m *domain.Manifest, v any) bool {
	d, ok := v.(map[string]any)
	if !ok {
		return false
	}
	m.ExtrasRequire = make(map[string][]domain.Requirement, len(d))
	for name, val := range d {
		lines, ok := stringList(val)
		if !ok {
			return false
		}
		m.ExtrasRequire[name] = requirements(lines)
	}
	return true
}

// setEntryPoints reads the console_scripts group; other groups land in Extra.
func setEntryPoints(m *domain.Manifest, v any) bool {
	var groups map[string]any
	switch x := v.(type) {
	case map[string]any:
		groups = x
	case string:
		groups = iniGroups(x)
	default:
		return false
	}
	var rest map[string]any
	for group, val := range groups {
		if group != "console_scripts" {
			if rest == nil {
				rest = map[string]any{}
			}
			rest[group] = plain(val)
			continue
		}
		lines, ok := stringList(val)
		if !ok {
			return false
		}
		for _, line := range lines {
			name, target, found := strings.Cut(line, "=")
			if !found {
				return false
			}
			m.ConsoleScripts = append(m.ConsoleScripts, domain.EntryPoint{
				Name:   strings.TrimSpace(name),
				Target: strings.TrimSpace(target),
			})
		}
	}
	sort.Slice(m.ConsoleScripts, func(i, j int) bool {
		return m.ConsoleScripts[i].Name < m.ConsoleScripts[j].Name
	})
	if rest != nil {
		if m.Extra == nil {
			m.Extra = map[string]any{}
		}
		m.Extra["entry_points"] = rest
	}
	return true
}

// iniGroups splits the "[group]\nname = target" string form of entry_points.
func iniGroups(s string) map[string]any {
	out := map[string]any{}
	group := ""
	var lines []string
	flush := func() {
		if group != "" {
			out[group] = strings.Join(lines, "\n")
		}
		lines = nil
	}
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			flush()
			group = strings.TrimSpace(line[1 : len(line)-1])
			continue
		}
		if line != "" {
			lines = append(lines, line)
		}
	}
	flush()
	return out
}

// plain converts parser values into types the JSON and YAML encoders print
// naturally.
func plain(v any) any {
	switch x := v.(type) {
	case number:
		return string(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = plain(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = plain(e)
		}
		return out
	}
	return v
}
