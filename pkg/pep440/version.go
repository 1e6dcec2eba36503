package pep440

import (
	"cmp"
	"regexp"
	"strconv"
	"strings"

	"github.com/matzehuels/lockwatch/pkg/errors"
)

// Version is a parsed PEP 440 version.
type Version struct {
	Epoch   int
	Release []int
	Pre     *PreRelease
	Post    *int
	Dev     *int
	Local   string

	original string
}

// PreRelease is a pre-release marker: label "a", "b", or "rc" plus a number.
type PreRelease struct {
	Label  string
	Number int
}

// Adapted from the appendix regular expression in the versioning scheme spec,
// with the separator and spelling variants folded in.
var versionRE = regexp.MustCompile(`^v?` +
	`(?:(\d+)!)?` + // epoch
	`(\d+(?:\.\d+)*)` + // release
	`(?:[-_.]?(a|b|c|rc|alpha|beta|pre|preview)[-_.]?(\d*))?` + // pre
	`(?:(?:-(\d+))|(?:[-_.]?(?:post|rev|r)[-_.]?(\d*)))?` + // post
	`(?:[-_.]?dev[-_.]?(\d*))?` + // dev
	`(?:\+([a-z0-9]+(?:[-_.][a-z0-9]+)*))?$`) // local

// Parse parses s as a PEP 440 version. Case and separator variants are
// canonicalized during parsing.
func Parse(s string) (Version, error) {
	trimmed := strings.ToLower(strings.TrimSpace(s))
	loc := versionRE.FindStringSubmatchIndex(trimmed)
	if loc == nil {
		return Version{}, errors.New(errors.ErrCodeMalformedRequirement, "invalid version %q", s)
	}
	// Submatch presence has to come from the index pairs: for post and dev
	// the number group matches the empty string ("1.0.post", "1.0.dev").
	group := func(i int) (string, bool) {
		if loc[2*i] < 0 {
			return "", false
		}
		return trimmed[loc[2*i]:loc[2*i+1]], true
	}

	v := Version{original: strings.TrimSpace(s)}
	if epoch, ok := group(1); ok {
		v.Epoch, _ = strconv.Atoi(epoch)
	}
	release, _ := group(2)
	for _, part := range strings.Split(release, ".") {
		n, err := strconv.Atoi(part)
		if err != nil {
			return Version{}, errors.New(errors.ErrCodeMalformedRequirement, "invalid release segment in %q", s)
		}
		v.Release = append(v.Release, n)
	}
	if label, ok := group(3); ok {
		num, _ := group(4)
		v.Pre = &PreRelease{Label: canonicalPreLabel(label), Number: atoiDefault(num)}
	}
	if num, ok := group(5); ok {
		n := atoiDefault(num)
		v.Post = &n
	} else if num, ok := group(6); ok {
		n := atoiDefault(num)
		v.Post = &n
	}
	if num, ok := group(7); ok {
		n := atoiDefault(num)
		v.Dev = &n
	}
	v.Local, _ = group(8)
	return v, nil
}

func atoiDefault(s string) int {
	if s == "" {
		return 0
	}
	n, _ := strconv.Atoi(s)
	return n
}

func canonicalPreLabel(label string) string {
	switch label {
	case "alpha":
		return "a"
	case "beta":
		return "b"
	case "c", "pre", "preview":
		return "rc"
	default:
		return label
	}
}

// String returns the canonical form of the version.
func (v Version) String() string {
	var b strings.Builder
	if v.Epoch != 0 {
		b.WriteString(strconv.Itoa(v.Epoch))
		b.WriteByte('!')
	}
	parts := make([]string, len(v.Release))
	for i, n := range v.Release {
		parts[i] = strconv.Itoa(n)
	}
	b.WriteString(strings.Join(parts, "."))
	if v.Pre != nil {
		b.WriteString(v.Pre.Label)
		b.WriteString(strconv.Itoa(v.Pre.Number))
	}
	if v.Post != nil {
		b.WriteString(".post")
		b.WriteString(strconv.Itoa(*v.Post))
	}
	if v.Dev != nil {
		b.WriteString(".dev")
		b.WriteString(strconv.Itoa(*v.Dev))
	}
	if v.Local != "" {
		b.WriteByte('+')
		b.WriteString(v.Local)
	}
	return b.String()
}

// Original returns the version text as it appeared in the source.
func (v Version) Original() string {
	return v.original
}

// IsPrerelease reports whether the version carries a pre-release or
// dev-release segment.
func (v Version) IsPrerelease() bool {
	return v.Pre != nil || v.Dev != nil
}

// Compare returns -1, 0, or 1 comparing a against b in PEP 440 order.
// For a given release, dev releases sort before pre-releases, which sort
// before the final release, which sorts before post releases. Local labels
// break ties last.
func Compare(a, b Version) int {
	if c := cmp.Compare(a.Epoch, b.Epoch); c != 0 {
		return c
	}
	if c := compareRelease(a.Release, b.Release); c != 0 {
		return c
	}
	if c := comparePre(a, b); c != 0 {
		return c
	}
	if c := comparePost(a.Post, b.Post); c != 0 {
		return c
	}
	if c := compareDev(a.Dev, b.Dev); c != 0 {
		return c
	}
	return compareLocal(a.Local, b.Local)
}

// compareRelease compares release tuples element-wise, padding the shorter
// one with zeros ("1.0" == "1.0.0").
func compareRelease(a, b []int) int {
	for i := 0; i < max(len(a), len(b)); i++ {
		var av, bv int
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		if c := cmp.Compare(av, bv); c != 0 {
			return c
		}
	}
	return 0
}

var preLabelRank = map[string]int{"a": 0, "b": 1, "rc": 2}

// comparePre orders the pre-release segment. A version with neither pre,
// post, nor dev segment is a final release and sorts above any pre-release;
// a bare dev release ("1.0.dev1") sorts below them all.
func comparePre(a, b Version) int {
	ka, na := preKey(a)
	kb, nb := preKey(b)
	if c := cmp.Compare(ka, kb); c != 0 {
		return c
	}
	return cmp.Compare(na, nb)
}

// preKey maps the pre segment onto a comparable (rank, number) pair.
// Rank -1 is "sorts below every pre-release" (bare dev releases) and rank 3
// is "sorts above every pre-release" (final and post releases).
func preKey(v Version) (rank, number int) {
	if v.Pre != nil {
		return preLabelRank[v.Pre.Label], v.Pre.Number
	}
	if v.Post == nil && v.Dev != nil {
		return -1, 0
	}
	return 3, 0
}

func comparePost(a, b *int) int {
	return cmp.Compare(intOr(a, -1), intOr(b, -1))
}

// compareDev treats the absence of a dev segment as larger than any dev
// number ("1.0a1.dev1" < "1.0a1").
func compareDev(a, b *int) int {
	const noDev = int(^uint(0) >> 1)
	return cmp.Compare(intOr(a, noDev), intOr(b, noDev))
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

// compareLocal orders local version labels segment-wise: numeric segments
// compare numerically and sort above alphanumeric ones, per the scheme.
func compareLocal(a, b string) int {
	if a == b {
		return 0
	}
	if a == "" {
		return -1
	}
	if b == "" {
		return 1
	}
	as := splitLocal(a)
	bs := splitLocal(b)
	for i := 0; i < min(len(as), len(bs)); i++ {
		an, aErr := strconv.Atoi(as[i])
		bn, bErr := strconv.Atoi(bs[i])
		switch {
		case aErr == nil && bErr == nil:
			if c := cmp.Compare(an, bn); c != 0 {
				return c
			}
		case aErr == nil:
			return 1
		case bErr == nil:
			return -1
		default:
			if c := strings.Compare(as[i], bs[i]); c != 0 {
				return c
			}
		}
	}
	return cmp.Compare(len(as), len(bs))
}

func splitLocal(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == '.' || r == '-' || r == '_'
	})
}
