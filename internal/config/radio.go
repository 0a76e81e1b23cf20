package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// RadioConfig holds the runtime-tunable radio settings. It lives in the
// [radio] section of the daemon's config file and is reloaded on file change,
// so edits take effect without a restart.
type RadioConfig struct {
	// RxRate and TxRate are sample clock rates in samples per second.
	RxRate float64 `toml:"rx_rate" json:"rx_rate"`
	TxRate float64 `toml:"tx_rate" json:"tx_rate"`

	// ToneHz is the simulator's RX tone frequency.
	ToneHz float64 `toml:"tone_hz" json:"tone_hz"`

	// Realtime paces the simulator to the sample clock instead of running
	// as fast as the caller can read.
	Realtime bool `toml:"realtime" json:"realtime"`
}

// DefaultRadioConfig returns the settings used when no config file exists.
func DefaultRadioConfig() RadioConfig {
	return RadioConfig{
		RxRate:   1e6,
		TxRate:   1e6,
		ToneHz:   100e3,
		Realtime: true,
	}
}

// LoadRadioConfig reads the [radio] section from a TOML config file.
// A missing file yields the defaults; a malformed one is an error so a bad
// edit never silently resets the tuning.
func LoadRadioConfig(path string) (RadioConfig, error) {
	cfg := DefaultRadioConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read radio config: %w", err)
	}

	var raw struct {
		Radio RadioConfig `toml:"radio"`
	}
	raw.Radio = cfg
	if err := toml.Unmarshal(data, &raw); err != nil {
		return cfg, fmt.Errorf("failed to parse radio config: %w", err)
	}
	cfg = raw.Radio

	if err := cfg.Validate(); err != nil {
		return DefaultRadioConfig(), err
	}
	return cfg, nil
}

// Validate checks that the tuning values are usable.
func (c RadioConfig) Validate() error {
	if c.RxRate <= 0 {
		return fmt.Errorf("rx_rate must be positive, got %v", c.RxRate)
	}
	if c.TxRate <= 0 {
		return fmt.Errorf("tx_rate must be positive, got %v", c.TxRate)
	}
	if c.ToneHz < 0 {
		return fmt.Errorf("tone_hz must not be negative, got %v", c.ToneHz)
	}
	return nil
}
