// Package project exposes the dependency declarations of a Python project
// uniformly across the two manifest formats: a pyproject.toml carrying a
// [project] table, or a setup.cfg with [options] / [options.extras_require]
// sections. It also implements the unsafe-package policy deciding which
// packages are exempt from lock-file enforcement.
package project
