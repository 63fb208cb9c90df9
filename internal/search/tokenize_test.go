package search

import (
	"sort"
	"testing"
)

func sortedTokens(s string) []string {
	var out []string
	for t := range Tokenize(s) {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"Hello, World! hello_there 42", []string{"42", "hello", "hello_there", "world"}},
		{"Go-Kit: rate-limiting", []string{"go", "kit", "limiting", "rate"}},
		{"Café Ünïcode", []string{"café", "ünïcode"}},
		{"x² ½ Ⅻ", []string{"x²", "½", "ⅻ"}},
		{"repeat repeat REPEAT", []string{"repeat"}},
		{"", nil},
		{"   \t\n", nil},
		{"!!! ---", nil},
	}
	for _, tt := range tests {
		got := sortedTokens(tt.input)
		if len(got) != len(tt.want) {
			t.Errorf("Tokenize(%q) = %v, want %v", tt.input, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.input, got, tt.want)
				break
			}
		}
	}
}
