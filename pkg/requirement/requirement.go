package requirement

import (
	"regexp"
	"strings"

	"github.com/matzehuels/lockwatch/pkg/errors"
	"github.com/matzehuels/lockwatch/pkg/pep440"
)

// Requirement is a parsed dependency declaration. Name is always present and
// canonical; Specifiers may be empty (unconstrained).
type Requirement struct {
	Name       string
	Extras     []string
	Specifiers pep440.Specifiers
	Marker     *Marker
	Raw        string
}

var nameRE = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9._-]*)`)

var separatorRunRE = regexp.MustCompile(`[-_.]+`)

// CanonicalName normalizes a package name: lowercase with every run of
// hyphens, underscores, and dots collapsed to a single hyphen, following the
// PEP 503 rules PyPI applies.
func CanonicalName(name string) string {
	return separatorRunRE.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}

// Parse parses one declaration line into a Requirement. The whole line must
// be consumed; anything unrecognized fails with a MALFORMED_REQUIREMENT
// error. Direct references ("name @ url") are accepted with an empty
// specifier set.
func Parse(line string) (Requirement, error) {
	raw := strings.TrimSpace(line)
	rest := raw

	m := nameRE.FindString(rest)
	if m == "" {
		return Requirement{}, errors.New(errors.ErrCodeMalformedRequirement, "cannot parse requirement %q", line)
	}
	req := Requirement{Name: CanonicalName(m), Raw: raw}
	rest = strings.TrimSpace(rest[len(m):])

	if strings.HasPrefix(rest, "[") {
		end := strings.Index(rest, "]")
		if end < 0 {
			return Requirement{}, errors.New(errors.ErrCodeMalformedRequirement, "unterminated extras in %q", line)
		}
		for _, extra := range strings.Split(rest[1:end], ",") {
			extra = strings.TrimSpace(extra)
			if extra != "" {
				req.Extras = append(req.Extras, CanonicalName(extra))
			}
		}
		rest = strings.TrimSpace(rest[end+1:])
	}

	var markerText string
	if i := strings.Index(rest, ";"); i >= 0 {
		markerText = strings.TrimSpace(rest[i+1:])
		rest = strings.TrimSpace(rest[:i])
	}

	switch {
	case rest == "":
		// Unconstrained.
	case strings.HasPrefix(rest, "@"):
		// Direct reference; the URL carries no version range to reconcile.
	default:
		// Legacy declarations wrap the specifier set in parentheses.
		if strings.HasPrefix(rest, "(") && strings.HasSuffix(rest, ")") {
			rest = strings.TrimSpace(rest[1 : len(rest)-1])
		}
		specs, err := pep440.ParseSpecifiers(rest)
		if err != nil {
			return Requirement{}, errors.Wrap(errors.ErrCodeMalformedRequirement, err, "cannot parse requirement %q", line)
		}
		req.Specifiers = specs
	}

	if markerText != "" {
		marker, err := ParseMarker(markerText)
		if err != nil {
			return Requirement{}, errors.Wrap(errors.ErrCodeMalformedRequirement, err, "cannot parse requirement %q", line)
		}
		req.Marker = marker
	}

	return req, nil
}

// String returns the requirement in a canonical textual form.
func (r Requirement) String() string {
	var b strings.Builder
	b.WriteString(r.Name)
	if len(r.Extras) > 0 {
		b.WriteByte('[')
		b.WriteString(strings.Join(r.Extras, ","))
		b.WriteByte(']')
	}
	b.WriteString(r.Specifiers.String())
	if r.Marker != nil {
		b.WriteString("; ")
		b.WriteString(r.Marker.String())
	}
	return b.String()
}
