package selfmanifest

import (
	"bytes"
	"testing"
)

func TestLoad_DeclaresDependencies(t *testing.T) {
	m, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if m.Name != "fly-wrapper" || m.Version != "0.1" {
		t.Fatalf("metadata: got %s %s", m.Name, m.Version)
	}
	if len(m.Scripts) != 1 || m.Scripts[0] != "fly" {
		t.Fatalf("scripts: got %v", m.Scripts)
	}

	want := []string{"requests", "pyyaml", "pyJWT", "bs4", "ruamel.yaml", "regex"}
	if len(m.Requires) != len(want) {
		t.Fatalf("requires: got %d entries, want %d", len(m.Requires), len(want))
	}
	for i, name := range want {
		if m.Requires[i].Name != name {
			t.Errorf("requires[%d]: got %s, want %s", i, m.Requires[i].Name, name)
		}
	}
}

func TestVersion(t *testing.T) {
	if got := Version(); got != "fly-wrapper 0.1" {
		t.Fatalf("got %q", got)
	}
}

func TestSource_IsACopy(t *testing.T) {
	a := Source()
	a[0] = 'X'
	if bytes.Equal(a, Source()) {
		t.Fatal("Source must not expose the embedded bytes")
	}
}
