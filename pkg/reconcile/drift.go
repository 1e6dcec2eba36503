package reconcile

import (
	"context"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lockwatch/pkg/lockfile"
	"github.com/matzehuels/lockwatch/pkg/project"
	"github.com/matzehuels/lockwatch/pkg/requirement"
	"github.com/matzehuels/lockwatch/pkg/vcs"
)

// DriftRunner is the narrow variant of the change-detection driver for a
// single setup.cfg project: instead of revalidating every group, it diffs
// the current declarations against the previously committed manifest and
// revalidates only the groups whose raw declaration block actually changed.
type DriftRunner struct {
	Dir       string // project directory; "." if empty
	Retriever vcs.Retriever
	Policy    *project.Policy
	Env       requirement.Environment
	Logger    *log.Logger
}

// NewDriftRunner creates a drift runner for the project at dir, reading the
// prior manifest revision from the enclosing git repository.
func NewDriftRunner(dir string, logger *log.Logger) *DriftRunner {
	if dir == "" {
		dir = "."
	}
	if logger == nil {
		logger = log.Default()
	}
	return &DriftRunner{
		Dir:       dir,
		Retriever: vcs.NewGitRetriever(dir),
		Policy:    project.NewPolicy(),
		Env:       requirement.DefaultEnvironment(),
		Logger:    logger,
	}
}

// Run revalidates the dependency groups whose declarations drifted from the
// previously committed setup.cfg. It is a no-op unless setup.cfg is among
// the changed files. An unavailable prior revision is fatal.
func (d *DriftRunner) Run(ctx context.Context, changed []string) error {
	if !containsSetupCfg(changed) {
		d.Logger.Debug("setup.cfg unchanged, nothing to diff")
		return nil
	}

	cfgPath := filepath.Join(d.Dir, "setup.cfg")
	currentBytes, err := os.ReadFile(cfgPath)
	if err != nil {
		return err
	}
	current, err := project.ParseSetupCfg(cfgPath, currentBytes)
	if err != nil {
		return err
	}

	previousText, err := d.Retriever.HeadContent("setup.cfg")
	if err != nil {
		return err
	}
	previous, err := project.ParseSetupCfg(cfgPath+"@HEAD", []byte(previousText))
	if err != nil {
		return err
	}

	groups := changedGroups(previous, current)
	if len(groups) == 0 {
		d.Logger.Info("declarations match the previous revision, nothing to validate")
		return nil
	}

	unsafe, err := d.Policy.Unsafe(filepath.Join(d.Dir, "pyproject.toml"))
	if err != nil {
		return err
	}

	for _, extra := range groups {
		if err := ctx.Err(); err != nil {
			return err
		}
		d.Logger.Info("declarations drifted, revalidating", "group", groupName(extra))
		if err := d.checkGroup(current, extra, cfgPath, unsafe); err != nil {
			return err
		}
	}
	return nil
}

func (d *DriftRunner) checkGroup(cfg *project.SetupCfg, extra, manifest string, unsafe []string) error {
	var declared map[string]requirement.Requirement
	var lockPath string
	var err error
	if extra == "" {
		declared, err = cfg.BaseRequirements()
		lockPath = lockfile.BasePath(d.Dir)
	} else {
		declared, err = cfg.ExtraRequirements(extra)
		lockPath = lockfile.PathForExtra(d.Dir, extra)
	}
	if err != nil {
		return err
	}

	locked, err := lockfile.Parse(lockPath)
	if err != nil {
		return err
	}
	if err := Validate(locked, declared, unsafe, d.Env); err != nil {
		return &GroupViolation{Manifest: manifest, Group: extra, Err: err}
	}
	return nil
}

// changedGroups returns the groups whose raw declaration block differs
// between the two revisions: the empty string for base, plus every extra
// that is new or textually changed. Extras deleted from the manifest need no
// validation; their lock files are simply stale.
func changedGroups(previous, current *project.SetupCfg) []string {
	var groups []string
	if previous.RawBlock("") != current.RawBlock("") {
		groups = append(groups, "")
	}
	for _, extra := range current.Extras() {
		if previous.RawBlock(extra) != current.RawBlock(extra) {
			groups = append(groups, extra)
		}
	}
	return groups
}

func groupName(extra string) string {
	if extra == "" {
		return "base"
	}
	return extra
}

func containsSetupCfg(changed []string) bool {
	for _, file := range changed {
		if filepath.Base(file) == "setup.cfg" {
			return true
		}
	}
	return false
}
