package requirement

import (
	"reflect"
	"testing"
)

func TestParseLines(t *testing.T) {
	lines := []string{
		"# base dependencies",
		"",
		"requests>=2.20  # http client",
		"boto3",
		"   ",
	}
	reqs, err := ParseLines(lines, nil)
	if err != nil {
		t.Fatalf("ParseLines: %v", err)
	}
	if len(reqs) != 2 {
		t.Fatalf("len(reqs) = %d, want 2", len(reqs))
	}
	if _, ok := reqs["requests"]; !ok {
		t.Error("requests missing from result")
	}
	if _, ok := reqs["boto3"]; !ok {
		t.Error("boto3 missing from result")
	}
}

func TestParseLinesLastWins(t *testing.T) {
	reqs, err := ParseLines([]string{"foo>=1.0", "Foo>=2.0"}, nil)
	if err != nil {
		t.Fatalf("ParseLines: %v", err)
	}
	if len(reqs) != 1 {
		t.Fatalf("len(reqs) = %d, want 1 (same canonical name)", len(reqs))
	}
	if got := reqs["foo"].Specifiers.String(); got != ">=2.0" {
		t.Errorf("later declaration should win, got %q", got)
	}
}

func TestParseLinesIgnorePrefixes(t *testing.T) {
	lines := []string{
		"%(base)s",
		"pytest==7.0.0",
	}
	reqs, err := ParseLines(lines, []string{"#", "%"})
	if err != nil {
		t.Fatalf("ParseLines: %v", err)
	}
	if len(reqs) != 1 {
		t.Errorf("len(reqs) = %d, want 1", len(reqs))
	}
}

func TestParseLinesSelfReferenceIgnore(t *testing.T) {
	lines := []string{
		"acme-core[base-runtime]",
		"amazon-kclpy>=3.0.0",
	}
	reqs, err := ParseLines(lines, []string{"#", "acme-core"})
	if err != nil {
		t.Fatalf("ParseLines: %v", err)
	}
	if _, ok := reqs["acme-core"]; ok {
		t.Error("self-reference should be skipped")
	}
	if _, ok := reqs["amazon-kclpy"]; !ok {
		t.Error("amazon-kclpy missing from result")
	}
}

func TestParseLinesAbortsOnMalformed(t *testing.T) {
	_, err := ParseLines([]string{"good>=1.0", "== broken =="}, nil)
	if err == nil {
		t.Fatal("ParseLines should fail on a malformed line")
	}
}

func TestParseLinesIdempotent(t *testing.T) {
	lines := []string{"requests>=2.20", "boto3", `six; python_version < "3"`}
	first, err := ParseLines(lines, nil)
	if err != nil {
		t.Fatalf("first parse: %v", err)
	}
	second, err := ParseLines(lines, nil)
	if err != nil {
		t.Fatalf("second parse: %v", err)
	}
	if !reflect.DeepEqual(keysOf(first), keysOf(second)) {
		t.Error("parsing twice should yield identical mappings")
	}
	for name := range first {
		if first[name].String() != second[name].String() {
			t.Errorf("requirement %q differs between parses", name)
		}
	}
}

func keysOf(m map[string]Requirement) map[string]bool {
	keys := make(map[string]bool, len(m))
	for k := range m {
		keys[k] = true
	}
	return keys
}

func TestParseBlock(t *testing.T) {
	block := "\nrequests>=2.20\nboto3\n"
	reqs, err := ParseBlock(block, nil)
	if err != nil {
		t.Fatalf("ParseBlock: %v", err)
	}
	if len(reqs) != 2 {
		t.Errorf("len(reqs) = %d, want 2", len(reqs))
	}
}
