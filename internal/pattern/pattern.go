// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pattern turns entry metadata into file base names.
//
// The rename engine treats the formatter as a black box through the
// Formatter interface. Bracket is the default implementation: literal text
// with [field] placeholders and optional :modifier suffixes, for example
// "[auth:lower][year] - [title:capitalize:truncate40]".
package pattern

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/bibrename/internal/bib"
)

// Formatter derives a file base name from an entry and a pattern.
// Implementations must be deterministic.
type Formatter interface {
	Format(entry *bib.Entry, pattern string) string
}

// FormatterFunc adapts a function to the Formatter interface.
type FormatterFunc func(entry *bib.Entry, pattern string) string

// Format calls f(entry, pattern).
func (f FormatterFunc) Format(entry *bib.Entry, pattern string) string {
	return f(entry, pattern)
}

// Bracket expands [name] and [name:mod:mod] placeholders.
//
// Names: bibtexkey, entrytype, auth (first author's last name), authors
// (all last names concatenated), year (year field, else the first four
// characters of date), or any field name. Modifiers: lower, upper,
// capitalize, ascii, truncateN. Text outside brackets is copied, an
// unclosed '[' is copied literally, and the result is sanitized for use
// as a file name.
type Bracket struct{}

// Format implements Formatter.
func (Bracket) Format(entry *bib.Entry, pattern string) string {
	var b strings.Builder
	rest := pattern
	for {
		open := strings.IndexByte(rest, '[')
		if open < 0 {
			b.WriteString(rest)
			break
		}
		end := strings.IndexByte(rest[open:], ']')
		if end < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:open])
		b.WriteString(expand(entry, rest[open+1:open+end]))
		rest = rest[open+end+1:]
	}
	return SanitizeFileName(b.String())
}

func expand(entry *bib.Entry, placeholder string) string {
	parts := strings.Split(placeholder, ":")
	value := lookup(entry, strings.ToLower(strings.TrimSpace(parts[0])))
	for _, mod := range parts[1:] {
		value = applyModifier(value, strings.TrimSpace(mod))
	}
	return value
}

func lookup(entry *bib.Entry, name string) string {
	switch name {
	case "bibtexkey":
		return entry.Key
	case "entrytype":
		return entry.Type
	case "auth":
		names := lastNames(fieldValue(entry, "author"))
		if len(names) == 0 {
			return ""
		}
		return names[0]
	case "authors":
		return strings.Join(lastNames(fieldValue(entry, "author")), "")
	case "year":
		if y := fieldValue(entry, "year"); y != "" {
			return y
		}
		if d := fieldValue(entry, "date"); len(d) >= 4 {
			return d[:4]
		}
		return ""
	default:
		return fieldValue(entry, name)
	}
}

var braceStripper = strings.NewReplacer("{", "", "}", "")

func fieldValue(entry *bib.Entry, name string) string {
	v, _ := entry.Field(name)
	return strings.TrimSpace(braceStripper.Replace(v))
}

// authorSeparator splits BibTeX author lists on the "and" keyword.
var authorSeparator = regexp.MustCompile(`(?i)\s+and\s+`)

// lastNames extracts last names from a BibTeX author list. "Last, First"
// and "First Last" forms are both accepted.
func lastNames(authors string) []string {
	if authors == "" {
		return nil
	}
	var names []string
	for _, a := range authorSeparator.Split(authors, -1) {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if comma := strings.IndexByte(a, ','); comma >= 0 {
			names = append(names, strings.TrimSpace(a[:comma]))
			continue
		}
		fields := strings.Fields(a)
		names = append(names, fields[len(fields)-1])
	}
	return names
}

func applyModifier(value, mod string) string {
	switch {
	case mod == "lower":
		return strings.ToLower(value)
	case mod == "upper":
		return strings.ToUpper(value)
	case mod == "capitalize":
		return cases.Title(language.Und).String(value)
	case mod == "ascii":
		return foldASCII(value)
	case strings.HasPrefix(mod, "truncate"):
		n, err := strconv.Atoi(strings.TrimPrefix(mod, "truncate"))
		if err != nil || n < 0 {
			return value
		}
		r := []rune(value)
		if len(r) > n {
			r = r[:n]
		}
		return strings.TrimSpace(string(r))
	default:
		return value
	}
}

// foldASCII removes combining marks so "Gödel" becomes "Godel".
func foldASCII(value string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, value)
	if err != nil {
		return value
	}
	return out
}

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName replaces characters that are unsafe in file names and
// trims surrounding whitespace.
func SanitizeFileName(name string) string {
	return strings.TrimSpace(fileNameReplacer.Replace(strings.TrimSpace(name)))
}
