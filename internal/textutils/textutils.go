// Package textutils provides the small text helpers shared by the engine:
// token estimation for memory budgeting and description normalization for
// dedup keys.
package textutils

import (
	"strings"
	"unicode"
)

// charsPerToken is the rough ratio used to budget conversation memory.
// Exact tokenizer counts are a collaborator concern; the memory ceiling
// only needs a stable estimate.
const charsPerToken = 4

// EstimateTokens approximates the token count of a text. Never returns
// less than 1 for non-empty text so every turn has a nonzero cost.
func EstimateTokens(text string) int {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}
	n := len([]rune(text)) / charsPerToken
	if n < 1 {
		n = 1
	}
	return n
}

// NormalizeDescription lowers, trims and collapses a description to the
// canonical form used in deduplication keys: letters, digits and single
// spaces only.
func NormalizeDescription(s string) string {
	var b strings.Builder
	lastSpace := true
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// vowels trimmed by Stem. Ukrainian case endings are vowel-heavy, so
// stripping trailing vowels folds most inflected forms onto one stem.
var vowels = map[rune]bool{
	'а': true, 'е': true, 'є': true, 'и': true, 'і': true, 'ї': true,
	'о': true, 'у': true, 'ю': true, 'я': true,
	'a': true, 'e': true, 'i': true, 'o': true, 'u': true, 'y': true,
}

// Stem strips trailing vowels from a word down to a minimum of three runes,
// so "кава", "кави" and "каву" all stem to "кав".
func Stem(word string) string {
	runes := []rune(word)
	for len(runes) > 3 && vowels[runes[len(runes)-1]] {
		runes = runes[:len(runes)-1]
	}
	return string(runes)
}

// KeywordInText reports whether a lowercase keyword occurs in the text.
// Multi-word keywords match as substrings of the normalized text; single
// words match any token by stem comparison, absorbing case endings.
func KeywordInText(keyword, normText string, tokens []string) bool {
	if strings.ContainsRune(keyword, ' ') {
		return strings.Contains(normText, keyword)
	}
	stem := Stem(keyword)
	for _, tok := range tokens {
		if Stem(tok) == stem {
			return true
		}
	}
	return false
}

// Tokenize splits text into lowercase word tokens (letters, digits and
// apostrophes), used by the keyword classifier and the normalizer lexicon.
func Tokenize(text string) []string {
	var tokens []string
	var cur strings.Builder
	flush := func() {
		tok := strings.Trim(cur.String(), ".")
		if tok != "" {
			tokens = append(tokens, tok)
		}
		cur.Reset()
	}
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' || r == '.' {
			cur.WriteRune(r)
			continue
		}
		flush()
	}
	flush()
	return tokens
}
