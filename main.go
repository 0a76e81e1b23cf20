package main

import (
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/henintsoa98/SoapyBladeRF/cmd"
	"github.com/henintsoa98/SoapyBladeRF/internal/api"
	"github.com/henintsoa98/SoapyBladeRF/internal/bladerf"
	"github.com/henintsoa98/SoapyBladeRF/internal/config"
	"github.com/henintsoa98/SoapyBladeRF/internal/events"
	"github.com/henintsoa98/SoapyBladeRF/internal/logging"
	"github.com/henintsoa98/SoapyBladeRF/internal/streaming"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"soapybladerf.toml"`

	// Server settings
	Port string `help:"Port to listen on" short:"p" default:":8090" toml:"server.port" env:"SERVER_PORT"`

	// Auth settings
	AuthUsername string `help:"Basic auth username" default:"" toml:"auth.username" env:"AUTH_USERNAME"`
	AuthPassword string `help:"Basic auth password" default:"" toml:"auth.password" env:"AUTH_PASSWORD"`

	// Logging settings
	LoggingLevel     string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat    string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingStreaming string `help:"Streaming engine logging level" default:"info" toml:"logging.streaming" env:"LOGGING_STREAMING"`
	LoggingBladeRF   string `help:"Device transport logging level" default:"info" toml:"logging.bladerf" env:"LOGGING_BLADERF"`
	LoggingAPI       string `help:"API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
	LoggingHTTP      string `help:"HTTP request logging level" default:"info" toml:"logging.http" env:"LOGGING_HTTP"`
}

func main() {
	// Create Huma CLI
	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		// Load configuration automatically
		if loadErr := config.LoadConfig(opts, nil); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		// Initialize logging system
		loggingConfig := logging.Config{
			Level:  opts.LoggingLevel,
			Format: opts.LoggingFormat,
			Modules: map[string]string{
				"streaming": opts.LoggingStreaming,
				"bladerf":   opts.LoggingBladeRF,
				"api":       opts.LoggingAPI,
				"http":      opts.LoggingHTTP,
			},
		}
		logging.Initialize(loggingConfig)

		logger := logging.GetLogger("main")

		// Load the radio tuning section
		radioCfg, radioErr := config.LoadRadioConfig(opts.Config)
		if radioErr != nil {
			logger.Warn("Invalid radio config, using defaults", "error", radioErr)
		}

		// Create event bus for in-process event handling
		eventBus := events.New()

		// Surface xrun events in the log regardless of API consumers
		eventBus.Subscribe(func(e events.OverrunEvent) {
			logger.Warn("Receive overrun", "time_ns", e.TimeNs)
		})
		eventBus.Subscribe(func(events.UnderrunEvent) {
			logger.Warn("Transmit underrun")
		})

		// Build the simulated transfer engine and the device on top of it
		simOpts := []bladerf.SimOption{bladerf.WithToneFrequency(radioCfg.ToneHz)}
		if radioCfg.Realtime {
			simOpts = append(simOpts, bladerf.WithRealtime())
		}
		sim := bladerf.NewSimulator(logging.GetLogger("bladerf"), simOpts...)
		sim.SetSampleRate(bladerf.ModuleRX, radioCfg.RxRate)
		sim.SetSampleRate(bladerf.ModuleTX, radioCfg.TxRate)

		device := streaming.NewDevice(sim,
			streaming.WithLogger(logging.GetLogger("streaming")),
			streaming.WithEventBus(eventBus),
		)
		if err := device.SetSampleRate(streaming.RX, radioCfg.RxRate); err != nil {
			logger.Error("Invalid RX sample rate", "error", err)
			os.Exit(1)
		}
		if err := device.SetSampleRate(streaming.TX, radioCfg.TxRate); err != nil {
			logger.Error("Invalid TX sample rate", "error", err)
			os.Exit(1)
		}

		// Watch the config file so tuning edits apply without a restart
		watcher := config.NewConfigWatcher(
			opts.Config,
			config.LoadRadioConfig,
			logging.GetLogger("config"),
		)
		watcher.OnReload(func(cfg config.RadioConfig) {
			sim.SetToneFrequency(cfg.ToneHz)
			sim.SetSampleRate(bladerf.ModuleRX, cfg.RxRate)
			sim.SetSampleRate(bladerf.ModuleTX, cfg.TxRate)
			if err := device.SetSampleRate(streaming.RX, cfg.RxRate); err != nil {
				logger.Warn("Rejected RX sample rate from config", "error", err)
			}
			if err := device.SetSampleRate(streaming.TX, cfg.TxRate); err != nil {
				logger.Warn("Rejected TX sample rate from config", "error", err)
			}
		})

		apiOpts := &api.Options{
			AuthUsername:      opts.AuthUsername,
			AuthPassword:      opts.AuthPassword,
			Device:            device,
			EventBus:          eventBus,
			PrometheusHandler: promhttp.Handler(),
		}

		server := api.NewServer(apiOpts)

		hooks.OnStart(func() {
			// Config watcher is non-fatal; without it edits need a restart
			if startErr := watcher.Start(); startErr != nil {
				logger.Warn("Failed to start config watcher, hot-reload disabled", "error", startErr)
			}

			logger.Info("Starting HTTP server", "port", opts.Port)
			if startErr := server.Start(opts.Port); startErr != nil && !errors.Is(startErr, http.ErrServerClosed) {
				logger.Error("Failed to start HTTP server", "error", startErr)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			logger.Info("Shutting down server")
			if stopErr := server.Stop(); stopErr != nil {
				logger.Error("Error stopping HTTP server", "error", stopErr)
			}

			if stopErr := watcher.Stop(); stopErr != nil {
				logger.Error("Error stopping config watcher", "error", stopErr)
			}

			// Close any open streams so the modules are disabled cleanly
			for _, dir := range []streaming.Direction{streaming.RX, streaming.TX} {
				if s := device.Stream(dir); s != nil {
					if closeErr := s.Close(); closeErr != nil {
						logger.Error("Error closing stream", "direction", dir.String(), "error", closeErr)
					}
				}
			}
		})
	})

	// Add rx capture command
	cli.Root().AddCommand(cmd.CreateRxCmd())

	// Add tx burst command
	cli.Root().AddCommand(cmd.CreateTxCmd())

	// Run the CLI
	cli.Run()
}
