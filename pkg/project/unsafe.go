package project

import (
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/lockwatch/pkg/errors"
)

// DefaultUnsafe is the built-in exclusion list applied when the manifest does
// not configure one, matching the resolver's own default.
var DefaultUnsafe = []string{"pip", "setuptools", "distribute"}

// Policy decides which packages are exempt from lock-file enforcement.
// Results are memoized per manifest path for the lifetime of the policy, so
// validating many extras of one project reads the manifest once.
type Policy struct {
	mu    sync.Mutex
	cache map[string][]string
}

// NewPolicy creates an empty policy cache.
func NewPolicy() *Policy {
	return &Policy{cache: make(map[string][]string)}
}

type pipToolsDoc struct {
	Tool struct {
		PipTools struct {
			UnsafePackage []string `toml:"unsafe-package"`
		} `toml:"pip-tools"`
	} `toml:"tool"`
}

// Unsafe returns the exclusion list configured in the manifest at
// pyprojectPath, or DefaultUnsafe when the manifest does not configure one.
// The configured names are returned verbatim; callers canonicalize before
// comparing.
func (p *Policy) Unsafe(pyprojectPath string) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if cached, ok := p.cache[pyprojectPath]; ok {
		return cached, nil
	}

	var doc pipToolsDoc
	md, err := toml.DecodeFile(pyprojectPath, &doc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "read unsafe-package list from %s", pyprojectPath)
	}

	unsafe := DefaultUnsafe
	if md.IsDefined("tool", "pip-tools", "unsafe-package") {
		unsafe = doc.Tool.PipTools.UnsafePackage
	}
	p.cache[pyprojectPath] = unsafe
	return unsafe, nil
}
