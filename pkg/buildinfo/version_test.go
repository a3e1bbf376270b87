package buildinfo

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	s := String()
	for _, want := range []string{"version: " + Version, "commit: " + Commit, "built: " + Date} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, missing %q", s, want)
		}
	}
}

func TestTemplate(t *testing.T) {
	tpl := Template()
	if !strings.HasPrefix(tpl, "{{.Name}} ") {
		t.Errorf("Template() = %q, want a cobra name placeholder first", tpl)
	}
	if !strings.HasSuffix(tpl, "\n") {
		t.Error("Template() should end with a newline")
	}
}
