package reconcile

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lockwatch/pkg/lockfile"
	"github.com/matzehuels/lockwatch/pkg/project"
	"github.com/matzehuels/lockwatch/pkg/requirement"
)

// RemediationCommand is what the user runs to regenerate lock files after a
// declaration change.
const RemediationCommand = "make upgrade-pinned-dependencies"

// GroupViolation wraps a validation failure with the manifest and dependency
// group it was found in.
type GroupViolation struct {
	Manifest string // manifest file path
	Group    string // extra name; empty for the base requirements
	Err      error
}

// Error implements the error interface.
func (v *GroupViolation) Error() string {
	return fmt.Sprintf("%s in %s: %v", v.GroupLabel(), v.Manifest, v.Err)
}

// Unwrap returns the underlying violation.
func (v *GroupViolation) Unwrap() error {
	return v.Err
}

// GroupLabel names the dependency group for diagnostics.
func (v *GroupViolation) GroupLabel() string {
	if v.Group == "" {
		return "the base requirements"
	}
	return fmt.Sprintf("the extra '%s'", v.Group)
}

// Runner is the change-detection driver: given the files a commit touches,
// it decides which projects need revalidation and checks every dependency
// group of those projects against its lock file.
type Runner struct {
	Root   string // repository root to scan for manifests; "." if empty
	Policy *project.Policy
	Env    requirement.Environment
	Logger *log.Logger
}

// NewRunner creates a runner with a fresh policy cache and the host
// environment.
func NewRunner(root string, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Root:   root,
		Policy: project.NewPolicy(),
		Env:    requirement.DefaultEnvironment(),
		Logger: logger,
	}
}

// Run validates every project affected by the changed files. It returns nil
// when no dependency-declaring file changed or every group reconciles, and a
// *GroupViolation on the first violation found.
func (r *Runner) Run(ctx context.Context, changed []string) error {
	changedPyprojects, changedSetupCfgs := classifyChanged(changed)
	if len(changedPyprojects) == 0 && len(changedSetupCfgs) == 0 {
		r.Logger.Debug("no dependency-declaring files changed")
		return nil
	}

	manifests, err := discoverManifests(r.root())
	if err != nil {
		return err
	}

	for _, pyprojectPath := range manifests {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.checkProject(pyprojectPath, changedPyprojects, changedSetupCfgs); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) root() string {
	if r.Root == "" {
		return "."
	}
	return r.Root
}

// checkProject validates one project if any of its declaration files
// changed. Every project carries a pyproject.toml even when setup.cfg holds
// the dependency declarations.
func (r *Runner) checkProject(pyprojectPath string, changedPyprojects, changedSetupCfgs map[string]bool) error {
	dir := filepath.Dir(pyprojectPath)
	cfgPath := filepath.Join(dir, "setup.cfg")
	if !changedPyprojects[filepath.Clean(pyprojectPath)] && !changedSetupCfgs[filepath.Clean(cfgPath)] {
		return nil
	}

	def, err := project.Load(dir)
	if err != nil {
		return err
	}

	// Only a change to the file the declarations live in triggers the
	// check: editing a build-system-only pyproject.toml says nothing about
	// a setup.cfg project's pins.
	manifest := def.Path()
	switch filepath.Base(manifest) {
	case "pyproject.toml":
		if !changedPyprojects[filepath.Clean(manifest)] {
			return nil
		}
	default:
		if !changedSetupCfgs[filepath.Clean(manifest)] {
			return nil
		}
	}

	unsafe, err := r.Policy.Unsafe(pyprojectPath)
	if err != nil {
		return err
	}

	r.Logger.Info("validating pinned dependencies", "manifest", manifest)

	if err := r.checkGroup(def, "", dir, manifest, unsafe); err != nil {
		return err
	}
	for _, extra := range def.Extras() {
		if err := r.checkGroup(def, extra, dir, manifest, unsafe); err != nil {
			return err
		}
	}
	return nil
}

// checkGroup validates one dependency group (base when extra is empty)
// against its lock file.
func (r *Runner) checkGroup(def project.Definition, extra, dir, manifest string, unsafe []string) error {
	var declared map[string]requirement.Requirement
	var lockPath string
	var err error
	if extra == "" {
		declared, err = def.BaseRequirements()
		lockPath = lockfile.BasePath(dir)
	} else {
		declared, err = def.ExtraRequirements(extra)
		lockPath = lockfile.PathForExtra(dir, extra)
	}
	if err != nil {
		return err
	}

	locked, err := lockfile.Parse(lockPath)
	if err != nil {
		return err
	}

	r.Logger.Debug("reconciling group",
		"manifest", manifest,
		"extra", extra,
		"declared", len(declared),
		"locked", len(locked))

	if err := Validate(locked, declared, unsafe, r.Env); err != nil {
		return &GroupViolation{Manifest: manifest, Group: extra, Err: err}
	}
	return nil
}

// classifyChanged buckets the changed paths into pyproject.toml and
// setup.cfg sets; anything else is irrelevant to this check.
func classifyChanged(changed []string) (pyprojects, setupCfgs map[string]bool) {
	pyprojects = make(map[string]bool)
	setupCfgs = make(map[string]bool)
	for _, file := range changed {
		switch filepath.Base(file) {
		case "pyproject.toml":
			pyprojects[filepath.Clean(file)] = true
		case "setup.cfg":
			setupCfgs[filepath.Clean(file)] = true
		}
	}
	return pyprojects, setupCfgs
}

// discoverManifests walks root for pyproject.toml files. The assumption is
// that every project has one, even when it keeps its dependency declarations
// in setup.cfg.
func discoverManifests(root string) ([]string, error) {
	var manifests []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if name := d.Name(); name != "." && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() == "pyproject.toml" {
			manifests = append(manifests, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return manifests, nil
}
