package requirement

import (
	"strings"
)

// DefaultIgnore is the ignore list applied when none is given: full-line and
// trailing comments.
var DefaultIgnore = []string{"#"}

// ParseLines parses an ordered sequence of declaration lines into a mapping
// keyed by canonical package name. Trailing comments are stripped, blank
// lines are skipped, and lines starting with any prefix in ignore are
// skipped. A later declaration of the same package overwrites an earlier one,
// mirroring the "last wins" semantics of the manifest formats.
//
// The first unparsable non-skippable line aborts the whole parse; no partial
// mapping is returned.
func ParseLines(lines []string, ignore []string) (map[string]Requirement, error) {
	if ignore == nil {
		ignore = DefaultIgnore
	}
	reqs := make(map[string]Requirement)
	for _, line := range lines {
		req, skip, err := parseLine(line, ignore)
		if err != nil {
			return nil, err
		}
		if skip {
			continue
		}
		reqs[req.Name] = req
	}
	return reqs, nil
}

// ParseBlock splits a delimited declaration block into lines and parses them
// via ParseLines. Manifest formats that store dependency lists as one
// multi-line string (setup.cfg values) go through here.
func ParseBlock(block string, ignore []string) (map[string]Requirement, error) {
	return ParseLines(strings.Split(block, "\n"), ignore)
}

func parseLine(line string, ignore []string) (Requirement, bool, error) {
	// Strip a trailing comment, then whitespace. A full-line comment leaves
	// an empty string behind and is skipped below.
	if i := strings.Index(line, "#"); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return Requirement{}, true, nil
	}
	for _, prefix := range ignore {
		if strings.HasPrefix(line, prefix) {
			return Requirement{}, true, nil
		}
	}
	req, err := Parse(line)
	if err != nil {
		return Requirement{}, false, err
	}
	return req, false, nil
}
