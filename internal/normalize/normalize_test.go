package normalize

import (
	"reflect"
	"testing"
)

func TestNormalizer_Normalize(t *testing.T) {
	n := New()

	tests := []struct {
		name string
		text string
		lang string
		want []string
	}{
		{
			name: "english lowercases and drops stopwords",
			text: "Bought a Coffee at Starbucks",
			lang: "en",
			want: []string{"coffee", "starbucks"},
		},
		{
			name: "polish drops polish stopwords",
			text: "Zakupy w Biedronce",
			lang: "pl",
			want: []string{"zakupy", "biedronce"},
		},
		{
			name: "polish diacritics lowercase correctly",
			text: "ŁADOWANIE Żabka",
			lang: "pl",
			want: []string{"ładowanie", "żabka"},
		},
		{
			name: "digits survive tokenization",
			text: "uber 2 rides downtown",
			lang: "en",
			want: []string{"uber", "2", "rides", "downtown"},
		},
		{
			name: "apostrophes stay inside tokens",
			text: "lunch at McDonald's",
			lang: "en",
			want: []string{"lunch", "mcdonald's"},
		},
		{
			name: "punctuation splits tokens",
			text: "netflix.com - monthly!",
			lang: "en",
			want: []string{"netflix", "com", "monthly"},
		},
		{
			name: "unknown language falls back to english",
			text: "the cinema ticket",
			lang: "de",
			want: []string{"cinema", "ticket"},
		},
		{
			name: "only stopwords yields empty",
			text: "the and of",
			lang: "en",
			want: nil,
		},
		{
			name: "empty input yields empty",
			text: "   ",
			lang: "en",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.Normalize(tt.text, tt.lang)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Normalize(%q, %q) = %v, want %v", tt.text, tt.lang, got, tt.want)
			}
		})
	}
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"pl", "pl"},
		{"PL", "pl"},
		{"polish", "pl"},
		{"Polish", "pl"},
		{"pol", "pl"},
		{"en", "en"},
		{"english", "en"},
		{"", "en"},
		{"de", "en"},
		{"  pl  ", "pl"},
	}

	for _, tt := range tests {
		if got := Canonical(tt.in); got != tt.want {
			t.Errorf("Canonical(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCategoryName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"groceries", "Groceries"},
		{"  fuel  ", "Fuel"},
		{"eating   out", "Eating Out"},
		{"JEDZENIE", "Jedzenie"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		if got := CategoryName(tt.in); got != tt.want {
			t.Errorf("CategoryName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
