package budget

import (
	"strings"
	"testing"
)

// TestEstimate covers the rounding behaviour of the character heuristic.
func TestEstimate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want int
	}{
		{"empty", "", 0},
		{"short string rounds up to one", "ab", 1},
		{"exact multiple", "abcdefgh", 2},
		{"long string", strings.Repeat("x", 400), 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Estimate(tc.in); got != tc.want {
				t.Errorf("Estimate(%q) = %d, want %d", tc.in, got, tc.want)
			}
		})
	}
}

// TestEstimatePrompt verifies the per-message overhead is included.
func TestEstimatePrompt(t *testing.T) {
	t.Parallel()

	got := EstimatePrompt(strings.Repeat("s", 40), strings.Repeat("u", 80))
	want := 8 + 10 + 20
	if got != want {
		t.Errorf("EstimatePrompt = %d, want %d", got, want)
	}
}
