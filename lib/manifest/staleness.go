// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"fmt"
	"os"
	"slices"
)

// NeedsBuild reports whether destination must be rebuilt from sources,
// and why. The checks run in a fixed order and short-circuit on the
// first hit:
//
//  1. destination missing
//  2. manifest missing (first build, or cache lost/corrupt)
//  3. some source modified at or after the destination
//  4. the recorded source set differs from the current one
//
// A declared source that does not exist is an error — distinct from a
// glob that matched nothing, which simply yields an empty source set.
// Callers must expand their glob freshly on every invocation; passing
// a cached expansion defeats the add/remove detection in step 4.
func NeedsBuild(sources []string, destination, manifestPath string) (bool, string, error) {
	destinationInfo, err := os.Stat(destination)
	if err != nil {
		if os.IsNotExist(err) {
			return true, "destination does not exist", nil
		}
		return false, "", fmt.Errorf("stat destination %s: %w", destination, err)
	}

	recorded, ok := Read(manifestPath)
	if !ok {
		return true, "manifest does not exist", nil
	}

	for _, source := range sources {
		sourceInfo, err := os.Stat(source)
		if err != nil {
			if os.IsNotExist(err) {
				return false, "", fmt.Errorf("source %s cannot be found", source)
			}
			return false, "", fmt.Errorf("stat source %s: %w", source, err)
		}
		// At-least-as-new, not strictly-newer: same-second writes on
		// filesystems with coarse timestamps must count as stale.
		if !sourceInfo.ModTime().Before(destinationInfo.ModTime()) {
			return true, fmt.Sprintf("source %s is newer than destination", source), nil
		}
	}

	current := slices.Clone(sources)
	slices.Sort(current)
	if !slices.Equal(current, recorded) {
		return true, "source set has changed", nil
	}

	return false, "", nil
}
