package streaming

// Conversion between the application time domain (nanoseconds since the
// stream epoch) and the hardware tick domain (sample-clock counts). The
// scale depends on the sample rate in effect at the moment of conversion;
// rates are never cached across calls because they can change at runtime.

// ticksFromNs converts nanoseconds to sample-clock ticks at the given rate.
func ticksFromNs(ns int64, rate float64) uint64 {
	return uint64(float64(ns) * (rate / 1e9))
}

// nsFromTicks converts sample-clock ticks to nanoseconds at the given rate.
func nsFromTicks(ticks uint64, rate float64) int64 {
	return int64(float64(ticks) * (1e9 / rate))
}
