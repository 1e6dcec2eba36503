// Package lockfile reads pinned requirements files produced by the resolver
// (requirements-<extra>.txt) and extracts the single pinned version each
// entry carries.
package lockfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/matzehuels/lockwatch/pkg/errors"
	"github.com/matzehuels/lockwatch/pkg/pep440"
	"github.com/matzehuels/lockwatch/pkg/requirement"
)

// ignorePrefixes skips comments and interpolation references carried over
// from the declaration format.
var ignorePrefixes = []string{"#", "%"}

// Parse reads a lock file from disk. Each line is a comment, blank, or one
// pinned package declaration.
func Parse(path string) (map[string]requirement.Requirement, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "lock file %s", path)
		}
		return nil, err
	}
	defer f.Close()
	reqs, err := ParseReader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reqs, nil
}

// ParseReader parses lock-file lines from r.
func ParseReader(r io.Reader) (map[string]requirement.Requirement, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return requirement.ParseLines(lines, ignorePrefixes)
}

// PinnedVersion extracts the version a lock entry pins. By construction a
// lock file pins exactly one version with an equality clause; anything else
// means the file was not produced by the resolver and fails loudly rather
// than guessing.
func PinnedVersion(req requirement.Requirement) (pep440.Version, error) {
	if len(req.Specifiers) != 1 {
		return pep440.Version{}, errors.New(errors.ErrCodeMalformedLock,
			"%s has %d specifiers, expected a single pin", req.Raw, len(req.Specifiers))
	}
	spec := req.Specifiers[0]
	if (spec.Op != "==" && spec.Op != "===") || spec.Prefix {
		return pep440.Version{}, errors.New(errors.ErrCodeMalformedLock,
			"%s is not pinned to an exact version", req.Raw)
	}
	return spec.Version, nil
}

// PathForExtra returns the lock file path for a named extra inside dir.
func PathForExtra(dir, extra string) string {
	return filepath.Join(dir, "requirements-"+extra+".txt")
}

// BasePath returns the lock file path for the base requirements inside dir.
func BasePath(dir string) string {
	return filepath.Join(dir, "requirements.txt")
}
