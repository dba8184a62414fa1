// Package selfmanifest carries the packaging manifest of fly-wrapper itself.
package selfmanifest

import (
	_ "embed"
	"fmt"

	"flywrapper/internal/domain"
	"flywrapper/internal/manifest"
)

//go:embed setup.py
var source []byte

// Source returns the embedded setup.py.
func Source() []byte { return append([]byte(nil), source...) }

// Load parses the embedded manifest.
func Load() (domain.Manifest, error) {
	m, err := manifest.Parse(source)
	if err != nil {
		return domain.Manifest{}, fmt.Errorf("embedded manifest: %w", err)
	}
	return m, nil
}

// Version returns "name version", falling back to "fly" if the embedded
// manifest cannot be read.
func Version() string {
	m, err := Load()
	if err != nil || m.Name == "" {
		return "fly"
	}
	return m.Name + " " + m.Version
}
