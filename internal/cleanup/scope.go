// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cleanup

import "github.com/pdiddy/bibrename/pkg/types"

// Scope selects which attachments of an entry the engine processes.
// Build one with WholeEntry or SingleAttachment; the zero value is
// WholeEntry.
type Scope struct {
	single bool
	link   types.AttachmentLink
}

// WholeEntry processes every attachment of the entry.
func WholeEntry() Scope {
	return Scope{}
}

// SingleAttachment processes only link; all other attachments pass through
// unchanged.
func SingleAttachment(link types.AttachmentLink) Scope {
	return Scope{single: true, link: link}
}

// Attachment returns the selected link and true for a single-attachment
// scope, or false for a whole-entry scope.
func (s Scope) Attachment() (types.AttachmentLink, bool) {
	return s.link, s.single
}

// String names the scope for logs.
func (s Scope) String() string {
	if s.single {
		return "single-attachment"
	}
	return "whole-entry"
}
