package agent

import (
	"strings"
	"testing"

	"pgregory.net/rapid"
)

var keywords = []string{"enhance", "variations", "style", "batch", "theme"}

func noKeywords(s string) bool {
	lower := strings.ToLower(s)
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return false
		}
	}
	return true
}

// Property: "enhance" anywhere in the input always wins.
func TestProperty_Classify_EnhanceWins(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		prefix := rapid.String().Draw(rt, "prefix")
		suffix := rapid.String().Draw(rt, "suffix")
		extra := rapid.SampledFrom(keywords).Draw(rt, "extra")

		input := prefix + extra + " enhance " + suffix
		if got := Classify(input); got != IntentEnhance {
			rt.Fatalf("Classify(%q) = %s, want enhance", input, got)
		}
	})
}

// Property: input without any keyword is a direct generation.
func TestProperty_Classify_DefaultsToDirect(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		input := rapid.StringMatching(`[a-z ]{0,40}`).Filter(noKeywords).Draw(rt, "input")
		if got := Classify(input); got != IntentDirect {
			rt.Fatalf("Classify(%q) = %s, want direct", input, got)
		}
	})
}

// Property: a lower-priority keyword never beats a higher one.
func TestProperty_Classify_Priority(t *testing.T) {
	order := []Intent{IntentEnhance, IntentVariations, IntentStyle, IntentTheme, IntentTheme}
	rapid.Check(t, func(rt *rapid.T) {
		i := rapid.IntRange(0, len(keywords)-1).Draw(rt, "i")
		j := rapid.IntRange(i, len(keywords)-1).Draw(rt, "j")
		input := keywords[j] + " x " + keywords[i]
		if got := Classify(input); got != order[i] {
			rt.Fatalf("Classify(%q) = %s, want %s", input, got, order[i])
		}
	})
}
