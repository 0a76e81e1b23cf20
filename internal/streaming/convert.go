package streaming

// floatScale is the fixed divisor between SC16.Q11 wire samples and their
// float representation. It is a calibration constant inherited from the
// vendor tooling, not a power of two; changing it breaks level
// compatibility with existing captures.
const floatScale = 2000

// fixedToFloat converts interleaved I/Q int16 wire samples into complex64
// samples. dst and src describe the same n samples; src holds 2n words.
func fixedToFloat(dst []complex64, src []int16, n int) {
	for i := 0; i < n; i++ {
		dst[i] = complex(
			float32(src[2*i])/floatScale,
			float32(src[2*i+1])/floatScale,
		)
	}
}

// floatToFixed converts complex64 samples into interleaved I/Q int16 wire
// samples, truncating toward zero per native integer conversion.
func floatToFixed(dst []int16, src []complex64, n int) {
	for i := 0; i < n; i++ {
		dst[2*i] = int16(real(src[i]) * floatScale)
		dst[2*i+1] = int16(imag(src[i]) * floatScale)
	}
}
