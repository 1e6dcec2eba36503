package project

import (
	"github.com/BurntSushi/toml"

	"github.com/matzehuels/lockwatch/pkg/errors"
	"github.com/matzehuels/lockwatch/pkg/requirement"
)

// PyProject reads declarations from a pyproject.toml [project] table.
type PyProject struct {
	path       string
	name       string
	hasProject bool
	deps       []string
	extraOrder []string
	extraDeps  map[string][]string
}

type pyprojectDoc struct {
	Project struct {
		Name                 string              `toml:"name"`
		Dependencies         []string            `toml:"dependencies"`
		OptionalDependencies map[string][]string `toml:"optional-dependencies"`
	} `toml:"project"`
}

// LoadPyProject parses the manifest at path. The file is read once; all
// accessor calls work off the decoded document.
func LoadPyProject(path string) (*PyProject, error) {
	var doc pyprojectDoc
	md, err := toml.DecodeFile(path, &doc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse %s", path)
	}

	p := &PyProject{
		path:       path,
		name:       doc.Project.Name,
		hasProject: md.IsDefined("project"),
		deps:       doc.Project.Dependencies,
		extraDeps:  doc.Project.OptionalDependencies,
	}
	// toml map decoding loses declaration order; recover it from the
	// metadata key stream.
	for _, key := range md.Keys() {
		if len(key) == 3 && key[0] == "project" && key[1] == "optional-dependencies" {
			p.extraOrder = append(p.extraOrder, key[2])
		}
	}
	return p, nil
}

// HasProjectTable reports whether the manifest declares a [project] table,
// which is what makes pyproject.toml the dependency source for a project.
func (p *PyProject) HasProjectTable() bool {
	return p.hasProject
}

// Name returns the declared project name.
func (p *PyProject) Name() string {
	return p.name
}

// Path implements Definition.
func (p *PyProject) Path() string {
	return p.path
}

// Extras implements Definition.
func (p *PyProject) Extras() []string {
	return p.extraOrder
}

// BaseRequirements implements Definition.
func (p *PyProject) BaseRequirements() (map[string]requirement.Requirement, error) {
	return requirement.ParseLines(p.deps, nil)
}

// ExtraRequirements implements Definition. Lines referencing the project
// itself (the way extras pull in sibling extras) are skipped.
func (p *PyProject) ExtraRequirements(extra string) (map[string]requirement.Requirement, error) {
	lines, ok := p.extraDeps[extra]
	if !ok {
		return nil, errors.New(errors.ErrCodeUnknownExtra, "extra %q is not defined in %s", extra, p.path)
	}
	return requirement.ParseLines(lines, []string{"#", p.name})
}

var _ Definition = (*PyProject)(nil)
