package pep440

import (
	"regexp"
	"strings"

	"github.com/matzehuels/lockwatch/pkg/errors"
)

// Specifier is a single version clause: an operator plus a version.
// For the prefix-matching forms ("==1.4.*") Prefix is true and Version holds
// the clause version without the trailing ".*".
type Specifier struct {
	Op      string
	Version Version
	Prefix  bool
}

// Specifiers is an ordered conjunction of clauses, e.g. ">=1.0,<2.0".
// An empty set contains every version.
type Specifiers []Specifier

var specifierRE = regexp.MustCompile(`^(===|==|!=|~=|<=|>=|<|>)\s*(.+?)\s*$`)

// ParseSpecifier parses a single clause such as ">=1.0" or "==1.4.*".
func ParseSpecifier(s string) (Specifier, error) {
	m := specifierRE.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Specifier{}, errors.New(errors.ErrCodeMalformedRequirement, "invalid specifier %q", s)
	}
	op, ver := m[1], m[2]

	spec := Specifier{Op: op}
	if strings.HasSuffix(ver, ".*") {
		if op != "==" && op != "!=" {
			return Specifier{}, errors.New(errors.ErrCodeMalformedRequirement, "prefix match not allowed with %q in %q", op, s)
		}
		spec.Prefix = true
		ver = strings.TrimSuffix(ver, ".*")
	}
	if op == "~=" && !strings.Contains(ver, ".") {
		return Specifier{}, errors.New(errors.ErrCodeMalformedRequirement, "compatible release needs at least two segments in %q", s)
	}

	v, err := Parse(ver)
	if err != nil {
		return Specifier{}, err
	}
	spec.Version = v
	return spec, nil
}

// ParseSpecifiers parses a comma-separated clause list. The empty string
// yields an empty (unconstrained) set.
func ParseSpecifiers(s string) (Specifiers, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var specs Specifiers
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			return nil, errors.New(errors.ErrCodeMalformedRequirement, "empty clause in specifier %q", s)
		}
		spec, err := ParseSpecifier(part)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// String reassembles the clause list in canonical form.
func (s Specifiers) String() string {
	parts := make([]string, len(s))
	for i, spec := range s {
		suffix := ""
		if spec.Prefix {
			suffix = ".*"
		}
		parts[i] = spec.Op + spec.Version.String() + suffix
	}
	return strings.Join(parts, ",")
}

// Contains reports whether v satisfies every clause. When prereleases is
// false, a pre-release version is only admitted if some clause itself names
// a pre-release; passing true accepts pre-releases everywhere.
func (s Specifiers) Contains(v Version, prereleases bool) bool {
	if !prereleases && v.IsPrerelease() && !s.mentionsPrerelease() {
		return false
	}
	for _, spec := range s {
		if !spec.check(v) {
			return false
		}
	}
	return true
}

func (s Specifiers) mentionsPrerelease() bool {
	for _, spec := range s {
		if spec.Version.IsPrerelease() {
			return true
		}
	}
	return false
}

func (s Specifier) check(v Version) bool {
	switch s.Op {
	case "==":
		if s.Prefix {
			return matchesPrefix(v, s.Version)
		}
		return Compare(v, s.Version) == 0
	case "!=":
		if s.Prefix {
			return !matchesPrefix(v, s.Version)
		}
		return Compare(v, s.Version) != 0
	case "<=":
		return Compare(v, s.Version) <= 0
	case ">=":
		return Compare(v, s.Version) >= 0
	case "<":
		return Compare(v, s.Version) < 0
	case ">":
		return Compare(v, s.Version) > 0
	case "~=":
		// "~=2.2.1" means ">=2.2.1, ==2.2.*".
		if Compare(v, s.Version) < 0 {
			return false
		}
		truncated := s.Version
		truncated.Release = truncated.Release[:len(truncated.Release)-1]
		return matchesPrefix(v, truncated)
	case "===":
		return strings.EqualFold(strings.TrimPrefix(v.Original(), "v"), strings.TrimPrefix(s.Version.Original(), "v"))
	default:
		return false
	}
}

// matchesPrefix reports whether v's epoch and leading release segments equal
// those of prefix ("1.4.2" matches the prefix "1.4").
func matchesPrefix(v, prefix Version) bool {
	if v.Epoch != prefix.Epoch {
		return false
	}
	for i, n := range prefix.Release {
		var vn int
		if i < len(v.Release) {
			vn = v.Release[i]
		}
		if vn != n {
			return false
		}
	}
	return true
}
