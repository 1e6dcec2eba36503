package project

import (
	"os"
	"path/filepath"

	"github.com/matzehuels/lockwatch/pkg/errors"
	"github.com/matzehuels/lockwatch/pkg/requirement"
)

// Definition is a read-only view over a project's dependency declarations.
// The backing manifest format is chosen once at load time.
type Definition interface {
	// Path returns the manifest file the declarations were loaded from.
	Path() string

	// Extras lists the defined extras in declaration order.
	Extras() []string

	// BaseRequirements parses the base dependency list.
	BaseRequirements() (map[string]requirement.Requirement, error)

	// ExtraRequirements parses the dependency list of a named extra.
	// Requesting an extra that is not defined fails with UNKNOWN_EXTRA.
	ExtraRequirements(extra string) (map[string]requirement.Requirement, error)
}

// Load selects the manifest variant for the project rooted at dir: a
// pyproject.toml declaring a [project] table wins, otherwise setup.cfg.
func Load(dir string) (Definition, error) {
	pyprojectPath := filepath.Join(dir, "pyproject.toml")
	if _, err := os.Stat(pyprojectPath); err == nil {
		py, err := LoadPyProject(pyprojectPath)
		if err != nil {
			return nil, err
		}
		if py.HasProjectTable() {
			return py, nil
		}
	}

	cfgPath := filepath.Join(dir, "setup.cfg")
	if _, err := os.Stat(cfgPath); err == nil {
		return LoadSetupCfg(cfgPath)
	}

	return nil, errors.New(errors.ErrCodeInvalidManifest, "no dependency declarations found in %s", dir)
}
