package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/henintsoa98/SoapyBladeRF/internal/bladerf"
	"github.com/henintsoa98/SoapyBladeRF/internal/dsp"
	"github.com/henintsoa98/SoapyBladeRF/internal/logging"
	"github.com/henintsoa98/SoapyBladeRF/internal/streaming"
)

// CreateRxCmd creates the rx command.
func CreateRxCmd() *cobra.Command {
	var (
		rate    float64
		toneHz  float64
		samples int
		fftSize int
		logJSON bool
	)

	cmd := &cobra.Command{
		Use:   "rx",
		Short: "Capture samples and report signal statistics",
		Long: `Opens a receive stream against the simulated device, captures the requested ` +
			`number of samples and reports level and spectrum statistics. Useful for ` +
			`exercising the receive path end to end without hardware.`,
		Run: func(_ *cobra.Command, _ []string) {
			loggingConfig := logging.Config{
				Level:  "info",
				Format: "text",
			}
			if logJSON {
				loggingConfig.Format = "json"
			}
			logging.Initialize(loggingConfig)
			logger := logging.GetLogger("rx")

			sim := bladerf.NewSimulator(logging.GetLogger("bladerf"),
				bladerf.WithToneFrequency(toneHz))
			sim.SetSampleRate(bladerf.ModuleRX, rate)

			dev := streaming.NewDevice(sim, streaming.WithLogger(logging.GetLogger("streaming")))
			if err := dev.SetSampleRate(streaming.RX, rate); err != nil {
				logger.Error("Invalid sample rate", "error", err)
				os.Exit(1)
			}

			stream, err := dev.SetupStream(streaming.RX, streaming.FormatCF32, nil, nil)
			if err != nil {
				logger.Error("Failed to set up stream", "error", err)
				os.Exit(1)
			}
			defer stream.Close()

			// Queue one finite command covering the whole capture.
			if err := stream.Activate(0, 0, samples); err != nil {
				logger.Error("Failed to activate stream", "error", err)
				os.Exit(1)
			}

			captured := make([]complex64, 0, samples)
			buf := make([]complex64, stream.MTU())
			overruns := 0

			for len(captured) < samples {
				n, _, readErr := stream.ReadC64(buf, time.Second)
				switch {
				case readErr == nil:
					captured = append(captured, buf[:n]...)
				case errors.Is(readErr, streaming.ErrOverflow):
					overruns++
				case errors.Is(readErr, streaming.ErrTimeout):
					logger.Error("Capture ended early", "captured", len(captured))
					os.Exit(1)
				default:
					logger.Error("Read failed", "error", readErr)
					os.Exit(1)
				}
			}

			fmt.Printf("captured %d samples at %.0f S/s\n", len(captured), rate)
			fmt.Printf("rms level:  %.4f\n", dsp.RMS(captured))
			fmt.Printf("peak level: %.4f\n", dsp.Peak(captured))
			if overruns > 0 {
				fmt.Printf("overruns:   %d\n", overruns)
			}

			if fftSize > 0 && len(captured) >= fftSize {
				spectrum := dsp.Spectrum(captured[:fftSize])
				bin, level := dsp.PeakBin(spectrum)
				fmt.Printf("peak bin:   %+.0f Hz (%.1f dB)\n",
					dsp.BinFrequency(bin, fftSize, rate), level)
			}
		},
	}

	cmd.Flags().Float64Var(&rate, "rate", 1e6, "Sample rate in samples per second")
	cmd.Flags().Float64Var(&toneHz, "tone", 100e3, "Simulator tone frequency in Hz")
	cmd.Flags().IntVar(&samples, "samples", 65536, "Number of samples to capture")
	cmd.Flags().IntVar(&fftSize, "fft", 4096, "FFT size for the spectrum report (0 disables)")
	cmd.Flags().BoolVar(&logJSON, "log-json", false, "Use JSON log format")

	return cmd
}
