// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bib

import (
	"strings"

	"github.com/pdiddy/bibrename/pkg/types"
)

// ParseFileField decodes a serialized attachment list. Links are separated
// by ';', the parts of a link by ':', and '\' escapes the next character.
// A link with one part is a bare path, with two parts a description and a
// path. Empty links are dropped.
func ParseFileField(value string) []types.AttachmentLink {
	var (
		links []types.AttachmentLink
		parts []string
		cur   strings.Builder
	)

	flush := func() {
		parts = append(parts, cur.String())
		cur.Reset()
		if link, ok := linkFromParts(parts); ok {
			links = append(links, link)
		}
		parts = parts[:0]
	}

	escaped := false
	for _, r := range value {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == ':':
			parts = append(parts, cur.String())
			cur.Reset()
		case r == ';':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()

	return links
}

func linkFromParts(parts []string) (types.AttachmentLink, bool) {
	var link types.AttachmentLink
	switch len(parts) {
	case 0:
		return link, false
	case 1:
		link.Link = parts[0]
	case 2:
		link.Description, link.Link = parts[0], parts[1]
	default:
		link.Description, link.Link, link.FileType = parts[0], parts[1], parts[2]
	}
	if link.Description == "" && link.Link == "" && link.FileType == "" {
		return link, false
	}
	return link, true
}

var fieldEscaper = strings.NewReplacer(`\`, `\\`, `:`, `\:`, `;`, `\;`)

// SerializeFileField encodes links in the format read by ParseFileField.
func SerializeFileField(links []types.AttachmentLink) string {
	encoded := make([]string, len(links))
	for i, l := range links {
		encoded[i] = fieldEscaper.Replace(l.Description) + ":" +
			fieldEscaper.Replace(l.Link) + ":" +
			fieldEscaper.Replace(l.FileType)
	}
	return strings.Join(encoded, ";")
}
