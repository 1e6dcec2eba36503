package lockfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/lockwatch/pkg/errors"
	"github.com/matzehuels/lockwatch/pkg/requirement"
)

const sampleLock = `#
# This file is autogenerated by pip-compile
#
boto3==1.34.100
    # via acme-core
requests==2.31.0
Werkzeug==3.0.3
`

func TestParseReader(t *testing.T) {
	reqs, err := ParseReader(strings.NewReader(sampleLock))
	if err != nil {
		t.Fatalf("ParseReader: %v", err)
	}
	if len(reqs) != 3 {
		t.Fatalf("len(reqs) = %d, want 3", len(reqs))
	}
	// Names are canonical in the result even when the file capitalizes them.
	if _, ok := reqs["werkzeug"]; !ok {
		t.Error("werkzeug missing (name should be canonicalized)")
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "requirements-test.txt")
	if err := os.WriteFile(path, []byte(sampleLock), 0o644); err != nil {
		t.Fatal(err)
	}
	reqs, err := Parse(path)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(reqs) != 3 {
		t.Errorf("len(reqs) = %d, want 3", len(reqs))
	}
}

func TestParseMissingFile(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "requirements-nope.txt"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("error code = %q, want FILE_NOT_FOUND", errors.GetCode(err))
	}
}

func TestPinnedVersion(t *testing.T) {
	req, err := requirement.Parse("boto3==1.34.100")
	if err != nil {
		t.Fatal(err)
	}
	v, err := PinnedVersion(req)
	if err != nil {
		t.Fatalf("PinnedVersion: %v", err)
	}
	if v.String() != "1.34.100" {
		t.Errorf("version = %s, want 1.34.100", v)
	}
}

func TestPinnedVersionGuardsInvariant(t *testing.T) {
	tests := []string{
		"boto3",              // no clause
		"boto3>=1.0",         // not an equality
		"boto3>=1.0,<2.0",    // multiple clauses
		"boto3==1.*",         // prefix is not a pin
	}
	for _, line := range tests {
		t.Run(line, func(t *testing.T) {
			req, err := requirement.Parse(line)
			if err != nil {
				t.Fatal(err)
			}
			if _, err := PinnedVersion(req); !errors.Is(err, errors.ErrCodeMalformedLock) {
				t.Errorf("error code = %q, want MALFORMED_LOCK", errors.GetCode(err))
			}
		})
	}
}

func TestLockFilePaths(t *testing.T) {
	if got := PathForExtra("sub", "test"); got != filepath.Join("sub", "requirements-test.txt") {
		t.Errorf("PathForExtra = %q", got)
	}
	if got := BasePath("sub"); got != filepath.Join("sub", "requirements.txt") {
		t.Errorf("BasePath = %q", got)
	}
}
