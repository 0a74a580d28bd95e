// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cleanup

import (
	"slices"

	"github.com/pdiddy/bibrename/internal/bib"
	"github.com/pdiddy/bibrename/pkg/types"
)

// RecordChange stores newLinks on entry when they differ from oldLinks and
// returns the resulting field change.
//
// Undoing the change restores the link text only. The file stays where the
// rename put it, so after an undo the link points at the old name until
// the rename is run again.
func RecordChange(entry *bib.Entry, oldLinks, newLinks []types.AttachmentLink) (types.FieldChange, bool) {
	if slices.Equal(oldLinks, newLinks) {
		return types.FieldChange{}, false
	}
	return entry.SetFiles(newLinks)
}
