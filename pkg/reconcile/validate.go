// Package reconcile checks declared dependency ranges against the exact
// versions recorded in lock files, and drives that check across the base
// requirements and every extra of the affected projects.
package reconcile

import (
	"github.com/matzehuels/lockwatch/pkg/errors"
	"github.com/matzehuels/lockwatch/pkg/lockfile"
	"github.com/matzehuels/lockwatch/pkg/requirement"
)

// Validate checks every declared requirement against the lock mapping.
//
// A declared requirement is skipped when its package is on the unsafe list
// or when its environment marker evaluates false for env. Otherwise the
// package must be present in locked and the pinned version must fall inside
// the declared range. Pre-release pins always count as acceptable matches:
// some upstream dependencies only ever publish pre-release builds.
//
// The check is fail-fast: the first violation is returned and the remaining
// requirements are not examined.
func Validate(locked, declared map[string]requirement.Requirement, unsafe []string, env requirement.Environment) error {
	exempt := make(map[string]bool, len(unsafe))
	for _, name := range unsafe {
		exempt[requirement.CanonicalName(name)] = true
	}

	for name, req := range declared {
		if exempt[name] {
			continue
		}
		if req.Marker != nil && !req.Marker.Evaluate(env) {
			// Declared for a different environment.
			continue
		}
		lockReq, ok := locked[name]
		if !ok {
			return errors.New(errors.ErrCodeMissingFromLock, "%s is missing from lock file", req)
		}
		pinned, err := lockfile.PinnedVersion(lockReq)
		if err != nil {
			return err
		}
		if !req.Specifiers.Contains(pinned, true) {
			return errors.New(errors.ErrCodeVersionMismatch, "%s does not fulfil %s", lockReq.Raw, req)
		}
	}
	return nil
}
