// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cleanup

import (
	"path/filepath"

	"github.com/pdiddy/bibrename/pkg/types"
)

// RewriteLink returns orig pointing at newPath. With a base directory the
// new link is newPath relative to base; without one it is the bare file
// name. When newPath cannot be made relative to base the absolute path is
// stored. Description and file type are kept.
func RewriteLink(orig types.AttachmentLink, newPath, base string, hasBase bool) types.AttachmentLink {
	target := filepath.Base(newPath)
	if hasBase {
		if rel, err := filepath.Rel(base, newPath); err == nil {
			target = rel
		} else {
			target = newPath
		}
	}
	return types.AttachmentLink{
		Description: orig.Description,
		Link:        target,
		FileType:    orig.FileType,
	}
}
