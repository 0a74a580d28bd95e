// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cleanup

import "github.com/pdiddy/bibrename/pkg/types"

// OutcomeKind classifies what happened to one attachment.
type OutcomeKind string

const (
	OutcomeSkipped OutcomeKind = "skipped"
	OutcomeRenamed OutcomeKind = "renamed"
	OutcomeFailed  OutcomeKind = "failed"
)

// Skip reasons reported in Outcome.Reason.
const (
	ReasonAbsolutePath = "absolute path excluded"
	ReasonUnresolvable = "unresolvable"
	ReasonTargetExists = "target already exists"
	ReasonAlreadyNamed = "already named"
	ReasonEmptyName    = "pattern produced an empty name"
	ReasonNotAttached  = "not attached to entry"
)

// Outcome is the per-attachment result.
type Outcome struct {
	Kind OutcomeKind `json:"kind" yaml:"kind"`

	// Original is the link as it was before processing.
	Original types.AttachmentLink `json:"original" yaml:"original"`

	// Link is the link after processing: the rewritten link for a rename,
	// the original link otherwise.
	Link types.AttachmentLink `json:"link" yaml:"link"`

	// Reason explains a skip or failure.
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`

	// Target is the computed target path, when one was computed.
	Target string `json:"target,omitempty" yaml:"target,omitempty"`
}

func skipped(link types.AttachmentLink, reason string) Outcome {
	return Outcome{Kind: OutcomeSkipped, Original: link, Link: link, Reason: reason}
}

// Result is the aggregate over one entry.
type Result struct {
	// Files is the attachment list after processing. It has one element per
	// input attachment.
	Files []types.AttachmentLink `json:"files" yaml:"files"`

	// Outcomes holds one element per processed attachment.
	Outcomes []Outcome `json:"outcomes" yaml:"outcomes"`

	// Failed counts rename attempts that failed on disk.
	Failed int `json:"failed" yaml:"failed"`

	// Change is the field change for the attachment list. Only meaningful
	// when HasChange is true.
	Change    types.FieldChange `json:"change" yaml:"change"`
	HasChange bool              `json:"has_change" yaml:"has_change"`
}

// Renamed returns the number of attachments renamed.
func (r Result) Renamed() int {
	return r.count(OutcomeRenamed)
}

// Skipped returns the number of attachments left alone by a pre-check.
func (r Result) Skipped() int {
	return r.count(OutcomeSkipped)
}

func (r Result) count(kind OutcomeKind) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Kind == kind {
			n++
		}
	}
	return n
}
