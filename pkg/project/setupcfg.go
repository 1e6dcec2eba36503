package project

import (
	"gopkg.in/ini.v1"

	"github.com/matzehuels/lockwatch/pkg/errors"
	"github.com/matzehuels/lockwatch/pkg/requirement"
)

// setupCfgIgnore additionally skips %(...)s interpolation lines, the way
// extras reference each other in setup.cfg.
var setupCfgIgnore = []string{"#", "%"}

// SetupCfg reads declarations from the [options] and [options.extras_require]
// sections of a setup.cfg.
type SetupCfg struct {
	path string
	cfg  *ini.File
}

// loadOptions configures the ini reader for configparser semantics: indented
// continuation lines belong to the preceding key, and inline ';' is part of
// the value (environment markers), not a comment.
var loadOptions = ini.LoadOptions{
	AllowPythonMultilineValues: true,
	IgnoreInlineComment:        true,
}

// LoadSetupCfg parses the manifest at path.
func LoadSetupCfg(path string) (*SetupCfg, error) {
	cfg, err := ini.LoadSources(loadOptions, path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse %s", path)
	}
	return &SetupCfg{path: path, cfg: cfg}, nil
}

// ParseSetupCfg parses manifest content already in memory (used when
// comparing against a prior committed revision).
func ParseSetupCfg(name string, content []byte) (*SetupCfg, error) {
	cfg, err := ini.LoadSources(loadOptions, content)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse %s", name)
	}
	return &SetupCfg{path: name, cfg: cfg}, nil
}

// Path implements Definition.
func (s *SetupCfg) Path() string {
	return s.path
}

// Extras implements Definition.
func (s *SetupCfg) Extras() []string {
	return s.cfg.Section("options.extras_require").KeyStrings()
}

// RawBlock returns the unparsed declaration block for an extra, or the base
// block when extra is empty. Used for change detection between revisions.
func (s *SetupCfg) RawBlock(extra string) string {
	if extra == "" {
		return s.cfg.Section("options").Key("install_requires").Value()
	}
	return s.cfg.Section("options.extras_require").Key(extra).Value()
}

// BaseRequirements implements Definition.
func (s *SetupCfg) BaseRequirements() (map[string]requirement.Requirement, error) {
	return requirement.ParseBlock(s.RawBlock(""), nil)
}

// ExtraRequirements implements Definition.
func (s *SetupCfg) ExtraRequirements(extra string) (map[string]requirement.Requirement, error) {
	if !s.cfg.Section("options.extras_require").HasKey(extra) {
		return nil, errors.New(errors.ErrCodeUnknownExtra, "extra %q is not defined in %s", extra, s.path)
	}
	return requirement.ParseBlock(s.RawBlock(extra), setupCfgIgnore)
}

var _ Definition = (*SetupCfg)(nil)
