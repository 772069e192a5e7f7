package textutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected int
	}{
		{"empty", "", 0},
		{"whitespace only", "   \t\n", 0},
		{"short text rounds up to one", "ок", 1},
		{"four chars is one token", "кава", 1},
		{"eight chars is two tokens", "кава чай", 2},
		{"cyrillic counted by runes", "приблизно сорок символів у цьому рядку", 9},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, EstimateTokens(tc.text))
		})
	}
}

func TestNormalizeDescription(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"lowercases", "Кава з Друзями", "кава з друзями"},
		{"collapses punctuation and spaces", "кава,  з -- друзями!", "кава з друзями"},
		{"trims edges", "  таксі  ", "таксі"},
		{"keeps digits", "Обід 250грн", "обід 250грн"},
		{"empty", "", ""},
		{"punctuation only", "?!...", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, NormalizeDescription(tc.in))
		})
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected []string
	}{
		{"plain words", "Витратив 250 грн", []string{"витратив", "250", "грн"}},
		{"punctuation splits", "кава,чай;сік", []string{"кава", "чай", "сік"}},
		{"keeps decimal point inside number", "100.50 грн", []string{"100.50", "грн"}},
		{"trims trailing dot", "тис. грн", []string{"тис", "грн"}},
		{"keeps apostrophe", "п'ятсот", []string{"п'ятсот"}},
		{"empty", "", nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Tokenize(tc.in))
		})
	}
}

func TestStem(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"кава", "кав"},
		{"кави", "кав"},
		{"каву", "кав"},
		{"таксі", "такс"},
		{"зарплата", "зарплат"},
		// never shortened below three runes
		{"зоо", "зоо"},
		{"їжа", "їжа"},
		// consonant endings untouched
		{"обід", "обід"},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.expected, Stem(tc.in))
		})
	}
}

func TestKeywordInText(t *testing.T) {
	text := "купив дві кави в сільпо"
	norm := NormalizeDescription(text)
	tokens := Tokenize(text)

	tests := []struct {
		name     string
		keyword  string
		expected bool
	}{
		{"inflected single word", "кава", true},
		{"exact single word", "сільпо", true},
		{"absent single word", "таксі", false},
		{"multiword substring", "кави в сільпо", true},
		{"multiword absent", "кави в атб", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, KeywordInText(tc.keyword, norm, tokens))
		})
	}
}
