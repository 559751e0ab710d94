// Package textfilter softens hostile language in player input before it
// reaches the prompt and the transcript. The interrogation is meant to
// play noir, not abusive; the gateway also behaves better when the
// player's line stays in-bounds.
package textfilter

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// replacements maps words to softened alternatives, matched on word
// boundaries, case-insensitively.
var replacements = map[string]string{
	"fuck":         "screw",
	"fucking":      "damn",
	"shit":         "crap",
	"bullshit":     "nonsense",
	"bitch":        "liar",
	"bastard":      "crook",
	"asshole":      "jerk",
	"motherfucker": "criminal",
	"goddamn":      "damn",
	"piss":         "tick",
	"dickhead":     "jerk",
	"prick":        "jerk",
	"whore":        "crook",
	"slut":         "crook",
	"retard":       "fool",
}

// Filter rewrites flagged words in player input.
type Filter struct {
	patterns map[string]*regexp.Regexp
}

func New() *Filter {
	f := &Filter{patterns: make(map[string]*regexp.Regexp, len(replacements))}
	for word := range replacements {
		f.patterns[word] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
	}
	return f
}

// Soften replaces flagged words with their alternatives, preserving the
// case shape of the original word.
func (f *Filter) Soften(text string) string {
	result := text
	for word, replacement := range replacements {
		result = f.patterns[word].ReplaceAllStringFunc(result, func(match string) string {
			return matchCase(match, replacement)
		})
	}
	return result
}

// Flags reports whether the text contains any flagged word.
func (f *Filter) Flags(text string) bool {
	for _, re := range f.patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// matchCase applies the case pattern of the original word to the
// replacement: ALL CAPS, Title, or lowercase.
func matchCase(original, replacement string) string {
	if original == "" {
		return replacement
	}
	if strings.ToUpper(original) == original && hasLetter(original) {
		return strings.ToUpper(replacement)
	}
	titleCaser := cases.Title(language.English)
	if titleCaser.String(strings.ToLower(original)) == original {
		return titleCaser.String(replacement)
	}
	return strings.ToLower(replacement)
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
