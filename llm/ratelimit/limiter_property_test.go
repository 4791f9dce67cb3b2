package ratelimit

import (
	"context"
	"testing"
	"time"

	"pgregory.net/rapid"
)

// Admission times observed by a sequential caller never put more than
// limit entries into any trailing window.
func TestProperty_Limiter_NeverExceedsLimitInWindow(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		limit := rapid.IntRange(1, 6).Draw(rt, "limit")
		calls := rapid.IntRange(1, 40).Draw(rt, "calls")
		gaps := rapid.SliceOfN(rapid.IntRange(0, 30), calls, calls).Draw(rt, "gapSeconds")

		clk := newFakeClock()
		l := New(limit, WithClock(clk.Now), WithSleeper(clk.Sleep))

		admitted := make([]time.Time, 0, calls)
		for _, gap := range gaps {
			clk.Advance(time.Duration(gap) * time.Second)
			if err := l.Admit(context.Background()); err != nil {
				rt.Fatalf("admit: %v", err)
			}
			admitted = append(admitted, clk.Now())
		}

		for i, at := range admitted {
			inWindow := 0
			for _, other := range admitted[:i+1] {
				if at.Sub(other) < DefaultWindow {
					inWindow++
				}
			}
			if inWindow > limit {
				rt.Fatalf("admission %d: %d calls in trailing window, limit %d", i, inWindow, limit)
			}
		}
	})
}
