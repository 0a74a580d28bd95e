// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/bibrename/internal/bib"
)

func sampleEntry() *bib.Entry {
	return &bib.Entry{
		Key:  "smith2020",
		Type: "article",
		Fields: map[string]string{
			"author":  "Smith, John and Jane {Doe} AND Kurt Gödel",
			"year":    "2020",
			"title":   "{Deep} learning: a survey?",
			"journal": "Nature",
		},
	}
}

func TestBracketFormat(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		want    string
	}{
		{"key", "[bibtexkey]", "smith2020"},
		{"entry type", "[entrytype]", "article"},
		{"first author and year", "[auth][year]", "Smith2020"},
		{"all authors", "[authors]", "SmithDoeGödel"},
		{"ascii folding", "[authors:ascii]", "SmithDoeGodel"},
		{"lower modifier", "[auth:lower]", "smith"},
		{"upper modifier", "[journal:upper]", "NATURE"},
		{"capitalize", "[title:capitalize]", "Deep Learning- A Survey"},
		{"truncate", "[title:truncate4]", "Deep"},
		{"chained modifiers", "[title:truncate13:lower]", "deep learning"},
		{"literal text kept", "[bibtexkey] - [journal]", "smith2020 - Nature"},
		{"unsafe characters sanitized", "[title]", "Deep learning- a survey"},
		{"missing field is empty", "[bibtexkey][volume]", "smith2020"},
		{"unknown modifier ignored", "[auth:sparkle]", "Smith"},
		{"unclosed bracket literal", "[bibtexkey] [year", "smith2020 [year"},
		{"surrounding whitespace trimmed", "  [bibtexkey]  ", "smith2020"},
		{"field name case-insensitive", "[Journal]", "Nature"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Bracket{}.Format(sampleEntry(), tt.pattern))
		})
	}
}

func TestBracketYearFromDate(t *testing.T) {
	e := &bib.Entry{Key: "k", Fields: map[string]string{"date": "2019-05-01"}}
	assert.Equal(t, "2019", Bracket{}.Format(e, "[year]"))

	e = &bib.Entry{Key: "k", Fields: map[string]string{"date": "19"}}
	assert.Equal(t, "", Bracket{}.Format(e, "[year]"))
}

func TestBracketDeterministic(t *testing.T) {
	p := "[auth:lower][year] [title:capitalize]"
	assert.Equal(t, Bracket{}.Format(sampleEntry(), p), Bracket{}.Format(sampleEntry(), p))
}

func TestLastNames(t *testing.T) {
	assert.Nil(t, lastNames(""))
	assert.Equal(t, []string{"Knuth"}, lastNames("Donald E. Knuth"))
	assert.Equal(t, []string{"van Rossum", "Thompson"}, lastNames("van Rossum, Guido and Ken Thompson"))
}

func TestFormatterFunc(t *testing.T) {
	var f Formatter = FormatterFunc(func(e *bib.Entry, p string) string { return e.Key + p })
	assert.Equal(t, "smith2020!", f.Format(sampleEntry(), "!"))
}

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "a-b-c-d", SanitizeFileName(` a/b\c:d `))
	assert.Equal(t, "what", SanitizeFileName(`"what?" <>|`))
}
