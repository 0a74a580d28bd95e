// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package bib holds the bibliography data model: entries, their attachment
// list field, and the YAML library file that stores them.
package bib

import (
	"slices"

	"github.com/pdiddy/bibrename/pkg/types"
)

// Entry is one bibliographic record. Field names are lowercase.
type Entry struct {
	// Key is the stable citation key (e.g. "smith2020").
	Key string `json:"key" yaml:"key"`

	// Type is the entry type tag (e.g. "article").
	Type string `json:"type" yaml:"type"`

	// Fields maps field name to raw value.
	Fields map[string]string `json:"fields" yaml:"fields"`
}

// Field returns the value of name and whether it is set.
func (e *Entry) Field(name string) (string, bool) {
	v, ok := e.Fields[name]
	return v, ok
}

// SetField stores value under name and returns the resulting change.
// The bool is false when the value was already present unchanged.
func (e *Entry) SetField(name, value string) (types.FieldChange, bool) {
	old, had := e.Fields[name]
	if had && old == value {
		return types.FieldChange{}, false
	}
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[name] = value
	return types.FieldChange{EntryKey: e.Key, Field: name, OldValue: old, NewValue: value}, true
}

// ClearField removes name and returns the resulting change. The bool is
// false when the field was not set.
func (e *Entry) ClearField(name string) (types.FieldChange, bool) {
	old, had := e.Fields[name]
	if !had {
		return types.FieldChange{}, false
	}
	delete(e.Fields, name)
	return types.FieldChange{EntryKey: e.Key, Field: name, OldValue: old}, true
}

// Files returns the parsed attachment list. The slice is a fresh copy.
func (e *Entry) Files() []types.AttachmentLink {
	v, ok := e.Fields[types.FileField]
	if !ok {
		return nil
	}
	return ParseFileField(v)
}

// SetFiles replaces the attachment list. An empty list removes the field.
// The bool is false when the stored value does not change.
func (e *Entry) SetFiles(links []types.AttachmentLink) (types.FieldChange, bool) {
	if len(links) == 0 {
		return e.ClearField(types.FileField)
	}
	return e.SetField(types.FileField, SerializeFileField(links))
}

// Clone returns a deep copy of e.
func (e *Entry) Clone() *Entry {
	c := &Entry{Key: e.Key, Type: e.Type, Fields: make(map[string]string, len(e.Fields))}
	for k, v := range e.Fields {
		c.Fields[k] = v
	}
	return c
}

// HasFile reports whether link is one of the entry's attachments.
func (e *Entry) HasFile(link types.AttachmentLink) bool {
	return slices.Contains(e.Files(), link)
}
