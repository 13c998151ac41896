package domain_test

import (
	"testing"

	"go.trai.ch/mason/internal/core/domain"
)

func TestCompareVersions(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"1.0", "1.0", 0},
		{"1.2", "1.10", -1},   // numeric, not lexical
		{"0.9", "0.10", -1},   // numeric, not lexical
		{"2.0", "10.0", -1},   // numeric, not lexical
		{"1.2.3", "1.2", 1},   // longer wins on equal prefix
		{"1.2", "1.2.0", -1},  // longer wins on equal prefix
		{"1.2a", "1.2b", -1},  // mixed segments compare lexically
		{"3.4.1", "3.4.2", -1},
		{"12.1", "9.9", 1},
	}

	for _, tc := range cases {
		if got := domain.CompareVersions(tc.a, tc.b); got != tc.want {
			t.Errorf("CompareVersions(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
		if got := domain.CompareVersions(tc.b, tc.a); got != -tc.want {
			t.Errorf("CompareVersions(%q, %q) = %d, want %d", tc.b, tc.a, got, -tc.want)
		}
	}
}
