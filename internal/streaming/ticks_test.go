package streaming

import (
	"math"
	"testing"
)

func TestTickConversionRoundTrip(t *testing.T) {
	const rate = 4e6

	times := []int64{0, 1_000, 250_000, 1_000_000_000, 123_456_789_012}
	for _, ns := range times {
		ticks := ticksFromNs(ns, rate)
		back := nsFromTicks(ticks, rate)

		// One tick at 4 MS/s is 250 ns; the round trip may lose up to
		// one tick to truncation.
		tickNs := int64(1e9 / rate)
		if diff := ns - back; diff < 0 || diff > tickNs {
			t.Errorf("round trip %d ns -> %d ticks -> %d ns, drift %d", ns, ticks, back, diff)
		}
	}
}

func TestTickScaleFactorsAreReciprocal(t *testing.T) {
	for _, rate := range []float64{1e6, 2.5e6, 30.72e6} {
		forward := rate / 1e9
		back := 1e9 / rate
		if got := forward * back; math.Abs(got-1) > 1e-12 {
			t.Errorf("rate %v: forward*back = %v, want 1", rate, got)
		}
	}
}

func TestTicksTrackRate(t *testing.T) {
	// 1 ms at 1 MS/s is 1000 ticks; at 2 MS/s it is 2000.
	if got := ticksFromNs(1_000_000, 1e6); got != 1000 {
		t.Errorf("ticks at 1 MS/s = %d, want 1000", got)
	}
	if got := ticksFromNs(1_000_000, 2e6); got != 2000 {
		t.Errorf("ticks at 2 MS/s = %d, want 2000", got)
	}
}
