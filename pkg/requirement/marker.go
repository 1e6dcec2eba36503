package requirement

import (
	"runtime"
	"strings"

	"github.com/matzehuels/lockwatch/pkg/errors"
	"github.com/matzehuels/lockwatch/pkg/pep440"
)

// Environment is the variable set an environment marker evaluates against.
type Environment map[string]string

// DefaultEnvironment builds the marker environment for the host platform.
// The Python interpreter version is not observable from here, so a current
// stable release is assumed; callers needing exact behavior can override the
// python_version entries before evaluating.
func DefaultEnvironment() Environment {
	env := Environment{
		"os_name":                        "posix",
		"sys_platform":                   runtime.GOOS,
		"platform_system":                strings.ToUpper(runtime.GOOS[:1]) + runtime.GOOS[1:],
		"platform_machine":               runtime.GOARCH,
		"python_version":                 "3.11",
		"python_full_version":            "3.11.0",
		"implementation_name":            "cpython",
		"platform_python_implementation": "CPython",
		"extra":                          "",
	}
	switch runtime.GOOS {
	case "windows":
		env["os_name"] = "nt"
		env["sys_platform"] = "win32"
		env["platform_system"] = "Windows"
	case "darwin":
		env["platform_system"] = "Darwin"
	case "linux":
		env["platform_system"] = "Linux"
	}
	switch runtime.GOARCH {
	case "amd64":
		env["platform_machine"] = "x86_64"
	case "arm64":
		env["platform_machine"] = "aarch64"
	case "386":
		env["platform_machine"] = "i686"
	}
	return env
}

// Marker is a parsed environment marker expression such as
// `sys_platform == "win32" and python_version >= "3.8"`.
type Marker struct {
	expr markerExpr
	raw  string
}

// ParseMarker parses a marker expression. `and` binds tighter than `or`;
// parentheses group as usual.
func ParseMarker(s string) (*Marker, error) {
	toks, err := lexMarker(s)
	if err != nil {
		return nil, err
	}
	p := &markerParser{toks: toks}
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if !p.done() {
		return nil, errors.New(errors.ErrCodeMalformedRequirement, "trailing tokens in marker %q", s)
	}
	return &Marker{expr: expr, raw: strings.TrimSpace(s)}, nil
}

// Evaluate reports whether the marker holds for the given environment.
// Variables absent from env evaluate as empty strings.
func (m *Marker) Evaluate(env Environment) bool {
	return m.expr.eval(env)
}

// String returns the marker text as written.
func (m *Marker) String() string {
	return m.raw
}

// --- expression tree ---

type markerExpr interface {
	eval(Environment) bool
}

type orExpr struct{ left, right markerExpr }

func (e orExpr) eval(env Environment) bool { return e.left.eval(env) || e.right.eval(env) }

type andExpr struct{ left, right markerExpr }

func (e andExpr) eval(env Environment) bool { return e.left.eval(env) && e.right.eval(env) }

// comparison is a single `value op value` clause. Each side is either a
// variable reference or a quoted literal.
type comparison struct {
	left, right markerValue
	op          string
}

type markerValue struct {
	text    string
	literal bool
}

func (v markerValue) resolve(env Environment) string {
	if v.literal {
		return v.text
	}
	return env[v.text]
}

func (c comparison) eval(env Environment) bool {
	left := c.left.resolve(env)
	right := c.right.resolve(env)

	switch c.op {
	case "in":
		return strings.Contains(right, left)
	case "not in":
		return !strings.Contains(right, left)
	case "===":
		// Arbitrary equality compares the exact literal.
		return left == right
	case "~=":
		v, err := pep440.Parse(left)
		if err != nil {
			return false
		}
		spec, err := pep440.ParseSpecifier("~=" + right)
		if err != nil {
			return false
		}
		return pep440.Specifiers{spec}.Contains(v, true)
	}

	// Version-valued variables compare by version ordering when both sides
	// parse; everything else falls back to string comparison.
	if lv, err := pep440.Parse(left); err == nil {
		if rv, err := pep440.Parse(right); err == nil {
			return compareOp(c.op, pep440.Compare(lv, rv))
		}
	}
	return compareOp(c.op, strings.Compare(left, right))
}

func compareOp(op string, c int) bool {
	switch op {
	case "==":
		return c == 0
	case "!=":
		return c != 0
	case "<":
		return c < 0
	case "<=":
		return c <= 0
	case ">":
		return c > 0
	case ">=":
		return c >= 0
	default:
		return false
	}
}

// --- lexer ---

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokString
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
}

func lexMarker(s string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '(':
			toks = append(toks, token{tokLParen, "("})
			i++
		case c == ')':
			toks = append(toks, token{tokRParen, ")"})
			i++
		case c == '\'' || c == '"':
			end := strings.IndexByte(s[i+1:], c)
			if end < 0 {
				return nil, errors.New(errors.ErrCodeMalformedRequirement, "unterminated string in marker %q", s)
			}
			toks = append(toks, token{tokString, s[i+1 : i+1+end]})
			i += end + 2
		case strings.HasPrefix(s[i:], "==="):
			toks = append(toks, token{tokOp, "==="})
			i += 3
		case strings.HasPrefix(s[i:], "<=") || strings.HasPrefix(s[i:], ">=") ||
			strings.HasPrefix(s[i:], "==") || strings.HasPrefix(s[i:], "!=") ||
			strings.HasPrefix(s[i:], "~="):
			toks = append(toks, token{tokOp, s[i : i+2]})
			i += 2
		case c == '<' || c == '>':
			toks = append(toks, token{tokOp, string(c)})
			i++
		case isIdentByte(c):
			j := i
			for j < len(s) && isIdentByte(s[j]) {
				j++
			}
			word := s[i:j]
			switch word {
			case "in", "not", "and", "or":
				toks = append(toks, token{tokOp, word})
			default:
				toks = append(toks, token{tokIdent, word})
			}
			i = j
		default:
			return nil, errors.New(errors.ErrCodeMalformedRequirement, "unexpected character %q in marker %q", string(c), s)
		}
	}
	if len(toks) == 0 {
		return nil, errors.New(errors.ErrCodeMalformedRequirement, "empty marker")
	}
	return toks, nil
}

func isIdentByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '.'
}

// --- parser ---

type markerParser struct {
	toks []token
	pos  int
}

func (p *markerParser) done() bool { return p.pos >= len(p.toks) }

func (p *markerParser) peek() (token, bool) {
	if p.done() {
		return token{}, false
	}
	return p.toks[p.pos], true
}

func (p *markerParser) next() (token, bool) {
	t, ok := p.peek()
	if ok {
		p.pos++
	}
	return t, ok
}

func (p *markerParser) parseOr() (markerExpr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		t, ok := p.peek()
		if !ok || t.kind != tokOp || t.text != "or" {
			return left, nil
		}
		p.pos++
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = orExpr{left, right}
	}
}

func (p *markerParser) parseAnd() (markerExpr, error) {
	left, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for {
		t, ok := p.peek()
		if !ok || t.kind != tokOp || t.text != "and" {
			return left, nil
		}
		p.pos++
		right, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		left = andExpr{left, right}
	}
}

func (p *markerParser) parseAtom() (markerExpr, error) {
	t, ok := p.peek()
	if !ok {
		return nil, errors.New(errors.ErrCodeMalformedRequirement, "unexpected end of marker")
	}
	if t.kind == tokLParen {
		p.pos++
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		closing, ok := p.next()
		if !ok || closing.kind != tokRParen {
			return nil, errors.New(errors.ErrCodeMalformedRequirement, "missing closing parenthesis in marker")
		}
		return expr, nil
	}
	return p.parseComparison()
}

func (p *markerParser) parseComparison() (markerExpr, error) {
	left, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	op, ok := p.next()
	if !ok || op.kind != tokOp {
		return nil, errors.New(errors.ErrCodeMalformedRequirement, "expected operator in marker")
	}
	opText := op.text
	if opText == "not" {
		inTok, ok := p.next()
		if !ok || inTok.kind != tokOp || inTok.text != "in" {
			return nil, errors.New(errors.ErrCodeMalformedRequirement, "expected 'in' after 'not' in marker")
		}
		opText = "not in"
	}
	switch opText {
	case "==", "!=", "<", "<=", ">", ">=", "~=", "===", "in", "not in":
	default:
		return nil, errors.New(errors.ErrCodeMalformedRequirement, "invalid operator %q in marker", opText)
	}
	right, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	return comparison{left: left, right: right, op: opText}, nil
}

func (p *markerParser) parseValue() (markerValue, error) {
	t, ok := p.next()
	if !ok {
		return markerValue{}, errors.New(errors.ErrCodeMalformedRequirement, "unexpected end of marker")
	}
	switch t.kind {
	case tokIdent:
		return markerValue{text: t.text}, nil
	case tokString:
		return markerValue{text: t.text, literal: true}, nil
	default:
		return markerValue{}, errors.New(errors.ErrCodeMalformedRequirement, "expected value in marker, got %q", t.text)
	}
}
