// Package text resolves localized strings and disambiguates item display
// names for the wiki.
package text

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sandrockwiki/census/pkg/censuserr"
)

// Table holds a per-id, per-language string table plus a placeholder
// substitution set applied after lookup.
type Table struct {
	// byID[id][lang] is the raw, unsubstituted string.
	byID map[int]map[string]string

	// concatSeparator joins all language variants together when Text is
	// called with the multi-language concat pseudo-language.
	concatSeparator string

	// placeholders maps a literal token (e.g. "<PLAYERNAME>") to its
	// substitution. Applied in a single pass, strictly after per-language
	// lookup, per the §4.3 ordering invariant.
	placeholders map[string]string
}

// ConcatLanguage is the pseudo-language code that requests every known
// language variant joined by Table's configured separator.
const ConcatLanguage = "*"

// NewTable constructs an empty table. Entries are added with Set; the
// placeholder table is fixed at construction since it is a small, static
// set (color markers, pronoun tokens, NPC-name references).
func NewTable(concatSeparator string, placeholders map[string]string) *Table {
	return &Table{
		byID:            make(map[int]map[string]string),
		concatSeparator: concatSeparator,
		placeholders:    placeholders,
	}
}

// Set records the raw string for an id/language pair.
func (t *Table) Set(id int, lang, raw string) {
	langs, ok := t.byID[id]
	if !ok {
		langs = make(map[string]string)
		t.byID[id] = langs
	}
	langs[lang] = raw
}

// Text resolves an id in a language, applying placeholder substitution
// after lookup. ConcatLanguage joins every known variant.
func (t *Table) Text(id int, lang string) (string, error) {
	langs, ok := t.byID[id]
	if !ok {
		return "", fmt.Errorf("text id %d: %w", id, censuserr.ErrAssetNotFound)
	}

	var raw string
	if lang == ConcatLanguage {
		raw = t.concatAll(langs)
	} else {
		v, ok := langs[lang]
		if !ok {
			return "", fmt.Errorf("text id %d has no %q variant: %w", id, lang, censuserr.ErrAssetNotFound)
		}
		raw = v
	}

	return t.substitute(raw), nil
}

// concatAll joins every language variant for an id, in a stable order, by
// the configured separator.
func (t *Table) concatAll(langs map[string]string) string {
	ordered := make([]string, 0, len(langs))
	for lang := range langs {
		ordered = append(ordered, lang)
	}
	sort.Strings(ordered)

	parts := make([]string, 0, len(ordered))
	for _, lang := range ordered {
		parts = append(parts, langs[lang])
	}
	return strings.Join(parts, t.concatSeparator)
}

// substitute performs the single-pass literal placeholder replacement.
func (t *Table) substitute(raw string) string {
	if len(t.placeholders) == 0 {
		return raw
	}
	out := raw
	for token, replacement := range t.placeholders {
		out = strings.ReplaceAll(out, token, replacement)
	}
	return out
}
