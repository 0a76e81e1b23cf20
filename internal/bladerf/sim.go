package bladerf

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/henintsoa98/SoapyBladeRF/internal/dsp"
)

// simAmplitude keeps the synthesized tone inside the SC16.Q11 range with
// headroom, mirroring typical capture levels from real hardware.
const simAmplitude = 1800

// Simulator is a Transport backed by a tone generator instead of hardware.
// RX produces a complex exponential at the configured tone frequency; TX
// accepts and discards samples while checking burst framing. Tick counters
// advance exactly one tick per sample so scheduled transfers behave like
// they do against a real sample clock.
//
// Each module's sync calls must be sequential; RX and TX may run
// concurrently, matching the contract of the real transfer engine.
type Simulator struct {
	log      *slog.Logger
	realtime bool
	toneHz   float64

	mu      sync.Mutex
	rates   [2]float64
	modules [2]simModule
}

type simModule struct {
	configured bool
	enabled    bool
	bufferSize int
	ticks      uint64
	phase      float64
	inBurst    bool
}

// SimOption configures a Simulator.
type SimOption func(*Simulator)

// WithRealtime makes RX calls pace themselves to the sample rate instead of
// returning immediately. The daemon uses this; tests do not.
func WithRealtime() SimOption {
	return func(s *Simulator) { s.realtime = true }
}

// WithToneFrequency sets the RX tone frequency in Hz. Default is 100 kHz.
func WithToneFrequency(hz float64) SimOption {
	return func(s *Simulator) { s.toneHz = hz }
}

// NewSimulator creates a simulated transfer engine. Sample rates default to
// 1 MS/s per module until SetSampleRate is called.
func NewSimulator(logger *slog.Logger, opts ...SimOption) *Simulator {
	s := &Simulator{
		log:    logger,
		toneHz: 100e3,
		rates:  [2]float64{1e6, 1e6},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetToneFrequency updates the RX tone frequency.
func (s *Simulator) SetToneFrequency(hz float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if hz >= 0 {
		s.toneHz = hz
	}
}

// SetSampleRate updates a module's sample clock rate.
func (s *Simulator) SetSampleRate(m Module, rate float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rate > 0 {
		s.rates[m] = rate
	}
}

// ConfigureSync implements Transport.
func (s *Simulator) ConfigureSync(m Module, format WireFormat, numBuffers, bufferSize, numTransfers, timeoutMs int) error {
	if format != FormatSC16Q11Meta {
		return fmt.Errorf("simulator: unsupported wire format %d", format)
	}
	if numBuffers < 2 || bufferSize <= 0 || numTransfers <= 0 || numTransfers > numBuffers {
		return fmt.Errorf("simulator: invalid sync sizing buffers=%d buflen=%d transfers=%d",
			numBuffers, bufferSize, numTransfers)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.modules[m].configured = true
	s.modules[m].bufferSize = bufferSize
	s.log.Debug("sync configured", "module", m.String(),
		"buffers", numBuffers, "buflen", bufferSize, "transfers", numTransfers, "timeout_ms", timeoutMs)
	return nil
}

// EnableModule implements Transport.
func (s *Simulator) EnableModule(m Module, enable bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	mod := &s.modules[m]
	if enable && !mod.configured {
		return fmt.Errorf("simulator: module %s enabled before sync config", m)
	}
	if mod.enabled == enable {
		return fmt.Errorf("simulator: module %s already %s", m, enabledWord(enable))
	}
	mod.enabled = enable
	if enable {
		mod.ticks = 0
		mod.phase = 0
		mod.inBurst = false
	}
	s.log.Debug("module state changed", "module", m.String(), "enabled", enable)
	return nil
}

func enabledWord(enable bool) string {
	if enable {
		return "enabled"
	}
	return "disabled"
}

// SyncRx implements Transport. The returned timestamp is the tick of the
// first sample in the buffer. Scheduling a timestamp already in the past
// reports an overrun for the skipped span.
func (s *Simulator) SyncRx(buf []int16, numElems int, md *Metadata, timeoutMs int) error {
	s.mu.Lock()
	mod := &s.modules[ModuleRX]
	if !mod.enabled {
		s.mu.Unlock()
		return fmt.Errorf("simulator: rx module not enabled")
	}
	if numElems <= 0 || len(buf) < 2*numElems {
		s.mu.Unlock()
		return fmt.Errorf("simulator: rx buffer too small for %d samples", numElems)
	}
	rate := s.rates[ModuleRX]

	switch {
	case md.Flags&MetaFlagRxNow != 0:
		md.Timestamp = mod.ticks
	case md.Timestamp > mod.ticks:
		// Future start time: discard the gap as the hardware would.
		skipped := md.Timestamp - mod.ticks
		mod.phase = math.Mod(mod.phase+dsp.PhaseStep(s.toneHz, rate)*float64(skipped), 2*math.Pi)
		mod.ticks = md.Timestamp
	case md.Timestamp < mod.ticks:
		// Requested time already passed.
		md.Status |= MetaStatusOverrun
		md.Timestamp = mod.ticks
	}

	mod.phase = dsp.Tone(buf[:2*numElems], mod.phase, dsp.PhaseStep(s.toneHz, rate), simAmplitude)
	mod.ticks += uint64(numElems)
	md.ActualCount = numElems
	s.mu.Unlock()

	if s.realtime {
		time.Sleep(time.Duration(float64(numElems) / rate * float64(time.Second)))
	}
	return nil
}

// SyncTx implements Transport. Samples are discarded; burst framing and
// timestamps are validated the way the hardware validates them. A scheduled
// timestamp already in the past reports an underrun.
func (s *Simulator) SyncTx(buf []int16, numElems int, md *Metadata, timeoutMs int) error {
	s.mu.Lock()
	mod := &s.modules[ModuleTX]
	if !mod.enabled {
		s.mu.Unlock()
		return fmt.Errorf("simulator: tx module not enabled")
	}
	if numElems <= 0 || len(buf) < 2*numElems {
		s.mu.Unlock()
		return fmt.Errorf("simulator: tx buffer too small for %d samples", numElems)
	}
	if !mod.inBurst && md.Flags&MetaFlagTxBurstStart == 0 && md.Flags&MetaFlagTxBurstEnd == 0 {
		s.mu.Unlock()
		return fmt.Errorf("simulator: tx outside a burst without burst-start flag")
	}

	if md.Flags&MetaFlagTxNow == 0 && md.Flags&MetaFlagTxBurstEnd == 0 && md.Timestamp < mod.ticks {
		md.Status |= MetaStatusUnderrun
	}
	if md.Flags&MetaFlagTxNow == 0 && md.Timestamp > mod.ticks {
		mod.ticks = md.Timestamp
	}

	mod.ticks += uint64(numElems)
	md.ActualCount = numElems
	if md.Flags&MetaFlagTxBurstStart != 0 {
		mod.inBurst = true
	}
	if md.Flags&MetaFlagTxBurstEnd != 0 {
		mod.inBurst = false
	}
	rate := s.rates[ModuleTX]
	s.mu.Unlock()

	if s.realtime {
		time.Sleep(time.Duration(float64(numElems) / rate * float64(time.Second)))
	}
	return nil
}
