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

// CreateTxCmd creates the tx command.
func CreateTxCmd() *cobra.Command {
	var (
		rate    float64
		toneHz  float64
		samples int
		bursts  int
		logJSON bool
	)

	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Transmit tone bursts",
		Long: `Opens a transmit stream against the simulated device and sends one or more ` +
			`tone bursts, each framed with burst-start and burst-end markers. Reports ` +
			`any underruns the device signals.`,
		Run: func(_ *cobra.Command, _ []string) {
			loggingConfig := logging.Config{
				Level:  "info",
				Format: "text",
			}
			if logJSON {
				loggingConfig.Format = "json"
			}
			logging.Initialize(loggingConfig)
			logger := logging.GetLogger("tx")

			sim := bladerf.NewSimulator(logging.GetLogger("bladerf"))
			sim.SetSampleRate(bladerf.ModuleTX, rate)

			dev := streaming.NewDevice(sim, streaming.WithLogger(logging.GetLogger("streaming")))
			if err := dev.SetSampleRate(streaming.TX, rate); err != nil {
				logger.Error("Invalid sample rate", "error", err)
				os.Exit(1)
			}

			stream, err := dev.SetupStream(streaming.TX, streaming.FormatCF32, nil, nil)
			if err != nil {
				logger.Error("Failed to set up stream", "error", err)
				os.Exit(1)
			}
			defer stream.Close()

			step := dsp.PhaseStep(toneHz, rate)
			buf := make([]complex64, stream.MTU())
			underruns := 0

			for burst := 0; burst < bursts; burst++ {
				phase := 0.0
				sent := 0
				for sent < samples {
					n := len(buf)
					if remaining := samples - sent; remaining < n {
						n = remaining
					}
					phase = dsp.ToneC64(buf[:n], phase, step)

					var flags streaming.Flag
					if sent+n >= samples {
						flags |= streaming.FlagEndBurst
					}

					written, writeErr := stream.WriteC64(buf[:n], flags, 0, time.Second)
					if writeErr != nil {
						logger.Error("Write failed", "error", writeErr)
						os.Exit(1)
					}
					sent += written
				}

				// Drain the sticky underrun flag once per burst.
				if _, statusErr := stream.Status(time.Second); errors.Is(statusErr, streaming.ErrUnderflow) {
					underruns++
				}
			}

			fmt.Printf("transmitted %d bursts of %d samples at %.0f S/s\n", bursts, samples, rate)
			if underruns > 0 {
				fmt.Printf("underruns:  %d\n", underruns)
			}
		},
	}

	cmd.Flags().Float64Var(&rate, "rate", 1e6, "Sample rate in samples per second")
	cmd.Flags().Float64Var(&toneHz, "tone", 100e3, "Tone frequency in Hz")
	cmd.Flags().IntVar(&samples, "samples", 65536, "Samples per burst")
	cmd.Flags().IntVar(&bursts, "bursts", 1, "Number of bursts to transmit")
	cmd.Flags().BoolVar(&logJSON, "log-json", false, "Use JSON log format")

	return cmd
}
