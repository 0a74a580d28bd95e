// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for bibrename.
// AttachmentLink and FieldChange travel between the library model, the
// rename engine, and the change journal; the *Config structs carry the
// values read from bibrename.yaml, the environment, and flags.
package types

// FileField is the entry field that stores the attachment list.
const FileField = "file"

// AttachmentLink points a bibliographic entry at an associated file.
// Two links are the same link when all three fields are equal.
type AttachmentLink struct {
	// Description is the free-text label shown next to the file.
	Description string `json:"description" yaml:"description"`

	// Link is the stored path (absolute or relative to a library directory) or URL.
	Link string `json:"link" yaml:"link"`

	// FileType is the file type tag (e.g. "PDF").
	FileType string `json:"file_type" yaml:"file_type"`
}

// FieldChange records the old and new serialized value of one entry field.
// The change journal stores it so the link text can be restored later.
type FieldChange struct {
	// EntryKey identifies the changed entry.
	EntryKey string `json:"entry_key" yaml:"entry_key"`

	// Field is the name of the changed field (normally "file").
	Field string `json:"field" yaml:"field"`

	// OldValue is the serialized value before the change. Empty means the
	// field was absent.
	OldValue string `json:"old_value" yaml:"old_value"`

	// NewValue is the serialized value after the change. Empty means the
	// field was removed.
	NewValue string `json:"new_value" yaml:"new_value"`
}
