package buildinfo

import (
	"strings"
	"testing"
)

func TestTemplate(t *testing.T) {
	tmpl := Template()

	for _, want := range []string{"{{.Name}}", Version, "commit: " + Commit, "built: " + Date} {
		if !strings.Contains(tmpl, want) {
			t.Errorf("Template() = %q, missing %q", tmpl, want)
		}
	}
	if !strings.HasSuffix(tmpl, "\n") {
		t.Errorf("Template() = %q, want trailing newline", tmpl)
	}
}
