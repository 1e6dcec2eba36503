package openapi

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

const validDocument = `openapi: 3.0.3
info:
  title: demo
  version: "1.0"
paths:
  /health:
    get:
      responses:
        "200":
          description: ok
`

const brokenDocument = `openapi: 3.0.3
info:
  title: demo
paths: {}
`

func writeSpec(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newChecker(out io.Writer) *Checker {
	return &Checker{Out: out, Logger: log.New(io.Discard)}
}

func TestIsSpecFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"openapi.yaml", true},
		{"spec/openapi.yaml", true},
		{"api/openapi.json", true},
		{"openapi.yml", true},
		{"swagger.yaml", false},
		{"myopenapi.yaml", false},
		{"README.md", false},
	}
	for _, tt := range tests {
		if got := IsSpecFile(tt.path); got != tt.want {
			t.Errorf("IsSpecFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestCheckValidDocument(t *testing.T) {
	path := writeSpec(t, "openapi.yaml", validDocument)
	var out bytes.Buffer
	if n := newChecker(&out).Check(context.Background(), []string{path}); n != 0 {
		t.Fatalf("Check() = %d, want 0; diagnostics:\n%s", n, out.String())
	}
	if out.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %s", out.String())
	}
}

func TestCheckBrokenDocument(t *testing.T) {
	path := writeSpec(t, "openapi.yaml", brokenDocument)
	var out bytes.Buffer
	n := newChecker(&out).Check(context.Background(), []string{path})
	if n == 0 {
		t.Fatal("Check() = 0, want errors for a document without a version")
	}
	if !strings.Contains(out.String(), path) {
		t.Fatalf("diagnostics do not name the file: %s", out.String())
	}
}

func TestCheckIgnoresUnrelatedFiles(t *testing.T) {
	// The file does not exist; it must never be opened.
	var out bytes.Buffer
	files := []string{"cmd/server/main.go", "docs/swagger.yaml"}
	if n := newChecker(&out).Check(context.Background(), files); n != 0 {
		t.Fatalf("Check() = %d, want 0", n)
	}
}

func TestCheckMissingSpecFile(t *testing.T) {
	var out bytes.Buffer
	n := newChecker(&out).Check(context.Background(), []string{"no/such/openapi.yaml"})
	if n == 0 {
		t.Fatal("Check() = 0, want an error for an unreadable document")
	}
}
