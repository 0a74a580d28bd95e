// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cleanup

import (
	"path/filepath"
	"strings"

	"github.com/pdiddy/bibrename/internal/bib"
	"github.com/pdiddy/bibrename/internal/pattern"
	"github.com/pdiddy/bibrename/pkg/types"
)

// DefaultExtension is appended when the original link has no extension.
const DefaultExtension = "pdf"

// TargetFileName builds the new file name for link: the formatter output,
// trimmed, followed by the original extension (or DefaultExtension).
func TargetFileName(f pattern.Formatter, entry *bib.Entry, pat string, link types.AttachmentLink) string {
	_, name := targetName(f, entry, pat, link)
	return name
}

func targetName(f pattern.Formatter, entry *bib.Entry, pat string, link types.AttachmentLink) (base, name string) {
	base = strings.TrimSpace(f.Format(entry, pat))
	ext, ok := FileExtension(link.Link)
	if !ok {
		ext = DefaultExtension
	}
	return base, base + "." + ext
}

// FileExtension returns the extension of the last path element of link
// without the dot. A leading dot (hidden file) or a trailing dot does not
// count as an extension. Case is preserved.
func FileExtension(link string) (string, bool) {
	name := filepath.Base(filepath.FromSlash(link))
	dot := strings.LastIndexByte(name, '.')
	if dot <= 0 || dot == len(name)-1 {
		return "", false
	}
	return strings.TrimSpace(name[dot+1:]), true
}
