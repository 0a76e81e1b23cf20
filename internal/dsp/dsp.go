// Package dsp provides the small amount of signal processing the daemon
// needs: complex tone synthesis for the simulator and the tx command, and
// level/spectrum measurement for the status surface.
package dsp

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
	"gonum.org/v1/gonum/floats"
)

// PhaseStep returns the per-sample phase increment for a tone at freq Hz
// sampled at rate Hz.
func PhaseStep(freq, rate float64) float64 {
	return 2 * math.Pi * freq / rate
}

// Tone writes a complex exponential into dst as interleaved I/Q int16 words
// scaled to amp. dst must hold an even number of words. It returns the phase
// to continue from, wrapped to (-2pi, 2pi).
func Tone(dst []int16, phase, step, amp float64) float64 {
	for i := 0; i+1 < len(dst); i += 2 {
		dst[i] = int16(amp * math.Cos(phase))
		dst[i+1] = int16(amp * math.Sin(phase))
		phase += step
	}
	return math.Mod(phase, 2*math.Pi)
}

// ToneC64 writes a unit complex exponential into dst and returns the phase
// to continue from.
func ToneC64(dst []complex64, phase, step float64) float64 {
	for i := range dst {
		dst[i] = complex(float32(math.Cos(phase)), float32(math.Sin(phase)))
		phase += step
	}
	return math.Mod(phase, 2*math.Pi)
}

// RMS returns the root-mean-square magnitude of a complex sample block.
func RMS(iq []complex64) float64 {
	if len(iq) == 0 {
		return 0
	}
	mags := make([]float64, len(iq))
	for i, s := range iq {
		mags[i] = cmplx.Abs(complex128(s))
	}
	return math.Sqrt(floats.Dot(mags, mags) / float64(len(mags)))
}

// Peak returns the largest sample magnitude in a complex block.
func Peak(iq []complex64) float64 {
	if len(iq) == 0 {
		return 0
	}
	mags := make([]float64, len(iq))
	for i, s := range iq {
		mags[i] = cmplx.Abs(complex128(s))
	}
	return floats.Max(mags)
}

// Spectrum computes a Hann-windowed power spectrum of iq in dB, with DC
// shifted to the center bin. The result has len(iq) bins spanning
// [-rate/2, rate/2).
func Spectrum(iq []complex64) []float64 {
	n := len(iq)
	if n == 0 {
		return nil
	}

	buf := make([]complex128, n)
	for i, s := range iq {
		buf[i] = complex128(s)
	}
	window.HannComplex(buf)

	fft := fourier.NewCmplxFFT(n)
	coeffs := fft.Coefficients(nil, buf)

	power := make([]float64, n)
	for i := range power {
		// Output bin i maps to the FFT bin shifted by n/2 so DC lands in
		// the center of the result.
		c := coeffs[(i+n/2)%n]
		p := real(c)*real(c) + imag(c)*imag(c)
		power[i] = 10 * math.Log10(p/float64(n*n)+1e-20)
	}
	return power
}

// PeakBin returns the index and value of the strongest bin in a spectrum.
func PeakBin(spectrum []float64) (int, float64) {
	if len(spectrum) == 0 {
		return 0, 0
	}
	idx := floats.MaxIdx(spectrum)
	return idx, spectrum[idx]
}

// BinFrequency converts a centered spectrum bin index to a frequency offset
// in Hz for the given sample rate and FFT size.
func BinFrequency(bin, size int, rate float64) float64 {
	return (float64(bin) - float64(size)/2) * rate / float64(size)
}
