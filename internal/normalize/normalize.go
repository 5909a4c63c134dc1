// Package normalize provides the default locale-aware text normalizer
// used to turn raw expense descriptions into classifier tokens.
package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Supported language hints. Unknown hints fall back to English.
const (
	LanguageEnglish = "en"
	LanguagePolish  = "pl"

	DefaultLanguage = LanguageEnglish
)

// Normalizer implements service.Normalizer for the two supported
// languages. Zero value is not usable; construct with New.
type Normalizer struct {
	tokenPattern *regexp.Regexp
	stopwords    map[string]map[string]struct{}
}

// New creates a normalizer with the built-in stopword lists.
func New() *Normalizer {
	return &Normalizer{
		tokenPattern: regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}\p{N}]+)*`),
		stopwords: map[string]map[string]struct{}{
			LanguageEnglish: englishStopwords(),
			LanguagePolish:  polishStopwords(),
		},
	}
}

// Normalize lowercases text with the language's casing rules, splits
// it into letter/digit runs, and drops stopwords. It never errors:
// text with no usable tokens normalizes to an empty slice.
func (n *Normalizer) Normalize(text, lang string) []string {
	lang = Canonical(lang)

	// Casers are stateful, so build one per call rather than sharing.
	lower := cases.Lower(tagFor(lang))
	folded := lower.String(text)

	raw := n.tokenPattern.FindAllString(folded, -1)
	if len(raw) == 0 {
		return nil
	}

	stop := n.stopwords[lang]
	tokens := make([]string, 0, len(raw))
	for _, tok := range raw {
		if _, isStop := stop[tok]; isStop {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// Canonical maps a free-form language hint to a supported language.
func Canonical(lang string) string {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case LanguagePolish, "pol", "polish":
		return LanguagePolish
	default:
		return DefaultLanguage
	}
}

// CategoryName cleans a user-supplied category name: trims whitespace
// and title-cases each word, matching how voice-captured names are
// stored. Returns "" when nothing usable remains.
func CategoryName(name string) string {
	trimmed := strings.Join(strings.Fields(name), " ")
	if trimmed == "" {
		return ""
	}
	return cases.Title(language.Und).String(trimmed)
}

func tagFor(lang string) language.Tag {
	if lang == LanguagePolish {
		return language.Polish
	}
	return language.English
}
