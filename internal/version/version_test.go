package version

import (
	"runtime"
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()
	Version = "v1.2.3"

	info := Get()
	if info.Version != "v1.2.3" {
		t.Errorf("Version = %q, want v1.2.3", info.Version)
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %q", info.GoVersion)
	}
	if Short() != "v1.2.3" {
		t.Errorf("Short() = %q", Short())
	}
	if Map()["version"] != "v1.2.3" {
		t.Errorf("Map()[version] = %q", Map()["version"])
	}
}

func TestText(t *testing.T) {
	text := Get().Text()
	for _, want := range []string{"version:", "gitCommit:", "platform:", runtime.GOOS} {
		if !strings.Contains(text, want) {
			t.Errorf("Text() missing %q:\n%s", want, text)
		}
	}
}
