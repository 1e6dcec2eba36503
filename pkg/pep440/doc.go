// Package pep440 implements parsing, comparison, and range containment for
// Python package versions and version specifiers (PEP 440).
//
// Versions are parsed into a canonical form so the usual spelling variants
// ("1.0", "v1.0", "1.0.alpha1", "1.0a1") compare equal where the scheme says
// they should. A Specifiers value holds an ordered conjunction of clauses
// such as ">=1.0,<2.0" and answers containment questions about a pinned
// version, with explicit control over whether pre-releases are acceptable.
package pep440
