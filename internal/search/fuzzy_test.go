package search

import (
	"math"
	"testing"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 0.01
}

func TestRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"abc", "abc", 100},
		{"abcd", "abce", 75},
		{"abc", "xyz", 0},
		{"", "", 100},
		{"", "abc", 0},
	}
	for _, tt := range tests {
		if got := Ratio(tt.a, tt.b); !approx(got, tt.want) {
			t.Errorf("Ratio(%q, %q) = %.2f, want %.2f", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestPartialRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"program", "programming", 100},
		{"programming", "program", 100},
		{"PYTHON", "python tutorial", 100},
		{"xab", "ab", 100},
		// best window overhangs the end of the longer string
		{"abz", "zzzab", 80},
		{"abc", "xyz", 0},
		{"", "abc", 0},
		{"", "", 100},
	}
	for _, tt := range tests {
		if got := PartialRatio(tt.a, tt.b); !approx(got, tt.want) {
			t.Errorf("PartialRatio(%q, %q) = %.2f, want %.2f", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestPartialRatioSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"distributed tracing", "tracing requests in distributed systems"},
		{"kubernetes", "k8s clusters"},
		{"résumé", "my résumé tips"},
	}
	for _, p := range pairs {
		if a, b := PartialRatio(p[0], p[1]), PartialRatio(p[1], p[0]); !approx(a, b) {
			t.Errorf("PartialRatio not symmetric for %q/%q: %.2f vs %.2f", p[0], p[1], a, b)
		}
	}
}

func TestPartialRatioBounds(t *testing.T) {
	inputs := []string{"", "a", "go", "hello world", "the quick brown fox", "ünïcode"}
	for _, a := range inputs {
		for _, b := range inputs {
			got := PartialRatio(a, b)
			if got < 0 || got > 100 {
				t.Errorf("PartialRatio(%q, %q) = %.2f out of range", a, b, got)
			}
		}
	}
}
