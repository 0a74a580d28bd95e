// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cleanup

import (
	"strings"

	"github.com/pdiddy/bibrename/internal/resolve"
)

// DiffersOnlyByCase reports whether a and b are equal ignoring case but
// not equal exactly. On a case-insensitive volume such paths name the same
// file, so the target "exists" only because it is the source.
func DiffersOnlyByCase(a, b string) bool {
	return a != b && strings.EqualFold(a, b)
}

// checkTarget decides whether source may be moved to target. It refuses
// when source already has the target name, and whenever something exists
// at target unless target is a case-only variant of source.
func checkTarget(source, target string) (reason string, ok bool) {
	if source == target {
		return ReasonAlreadyNamed, false
	}
	if resolve.Exists(target) && !DiffersOnlyByCase(target, source) {
		return ReasonTargetExists, false
	}
	return "", true
}
