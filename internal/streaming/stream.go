package streaming

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/henintsoa98/SoapyBladeRF/internal/bladerf"
	"github.com/henintsoa98/SoapyBladeRF/internal/events"
	"github.com/henintsoa98/SoapyBladeRF/internal/metrics"
)

// Sizing defaults and limits for the synchronous transfer engine.
const (
	defaultNumBuffers = 32
	defaultBufferLen  = 4096
	// bufferLenQuantum is the hardware's buffer granularity; requested
	// lengths are rounded up to the next multiple.
	bufferLenQuantum = 1024
	// maxTransfers is the libusb limit on in-flight transfers.
	maxTransfers = 32
	// syncTimeoutMs is the fixed per-call timeout handed to the transfer
	// engine at configuration time.
	syncTimeoutMs = 1000
)

// Flag bits for Activate, Read metadata and Write calls.
type Flag uint32

const (
	// FlagHasTime marks that a call carries (or a result reports) a valid
	// time in nanoseconds.
	FlagHasTime Flag = 1 << iota
	// FlagEndBurst asks Write to close the transmit burst after this call.
	FlagEndBurst
)

// Meta reports per-call timing back to the caller.
type Meta struct {
	Flags  Flag
	TimeNs int64
}

// HasTime reports whether TimeNs is valid.
func (m Meta) HasTime() bool { return m.Flags&FlagHasTime != 0 }

// rxCommand is one queued receive request. remaining == 0 means an
// open-ended continuous stream; > 0 a finite burst retired once fulfilled.
type rxCommand struct {
	hasTime   bool
	timeNs    int64
	remaining int
}

// Stream is one direction of the logical channel. It owns its command
// queue, burst state, sticky xrun flag and conversion scratch buffer, and
// is intended for sequential use by a single caller goroutine; the two
// directions are independent and may be driven concurrently.
type Stream struct {
	dev     *Device
	dir     Direction
	format  Format
	convert bool
	mtu     int
	log     *slog.Logger

	// conv is the only steady-state buffer; allocated once at setup, sized
	// to the configured transfer length.
	conv []int16

	// RX state.
	rxCmds    []rxCommand
	overrun   bool
	nextTicks uint64

	// TX state.
	inBurst  bool
	underrun bool
}

// SetupStream configures the transfer engine for one direction and enables
// the RF module. channels must select the single supported logical channel
// (index 0) or be empty. args recognizes the optional string-encoded keys
// "buffers", "buflen" and "transfers". The call either fully succeeds or
// fully fails; on failure no module is left enabled.
//
// Exactly one stream may be open per direction at a time.
func (d *Device) SetupStream(dir Direction, format Format, channels []int, args map[string]string) (*Stream, error) {
	if len(channels) > 1 || (len(channels) > 0 && channels[0] != 0) {
		return nil, fmt.Errorf("setup stream: invalid channel selection %v", channels)
	}

	var needsConvert bool
	switch format {
	case FormatCF32:
		needsConvert = true
	case FormatCS16:
		needsConvert = false
	default:
		return nil, fmt.Errorf("setup stream: invalid format %q", format)
	}

	numBuffers, bufferLen, numTransfers := syncSizing(args)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.streams[dir] != nil {
		return nil, fmt.Errorf("setup stream: %s stream already open", dir)
	}

	if err := d.transport.ConfigureSync(dir.module(), bladerf.FormatSC16Q11Meta,
		numBuffers, bufferLen, numTransfers, syncTimeoutMs); err != nil {
		d.log.Error("sync config failed", "direction", dir.String(), "error", err)
		return nil, fmt.Errorf("setup stream: sync config: %w", err)
	}

	// Enable the module here, exactly once per open stream.
	if err := d.transport.EnableModule(dir.module(), true); err != nil {
		d.log.Error("module enable failed", "direction", dir.String(), "error", err)
		return nil, fmt.Errorf("setup stream: enable module: %w", err)
	}

	s := &Stream{
		dev:     d,
		dir:     dir,
		format:  format,
		convert: needsConvert,
		mtu:     bufferLen,
		log:     d.log.With("direction", dir.String()),
	}
	if needsConvert {
		s.conv = make([]int16, 2*bufferLen)
	}
	d.streams[dir] = s

	metrics.StreamOpened(dir.String(), bufferLen)
	d.log.Info("stream opened", "direction", dir.String(), "format", string(format),
		"buffers", numBuffers, "buflen", bufferLen, "transfers", numTransfers)
	d.publish(events.StreamOpenedEvent{
		Direction: dir.String(),
		Format:    string(format),
		MTU:       bufferLen,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	return s, nil
}

// syncSizing derives the transfer-engine sizing from optional overrides.
// Each parameter defaults and clamps independently.
func syncSizing(args map[string]string) (numBuffers, bufferLen, numTransfers int) {
	numBuffers = intArg(args, "buffers")
	if numBuffers == 0 {
		numBuffers = defaultNumBuffers
	}
	// A single buffer cannot support double-buffered transfers.
	if numBuffers == 1 {
		numBuffers = 2
	}

	bufferLen = intArg(args, "buflen")
	if bufferLen == 0 {
		bufferLen = defaultBufferLen
	}
	if bufferLen%bufferLenQuantum != 0 {
		bufferLen = (bufferLen/bufferLenQuantum + 1) * bufferLenQuantum
	}

	numTransfers = intArg(args, "transfers")
	if numTransfers == 0 {
		numTransfers = numBuffers / 2
	}
	if numTransfers > numBuffers {
		numTransfers = numBuffers
	}
	if numTransfers > maxTransfers {
		numTransfers = maxTransfers
	}
	return numBuffers, bufferLen, numTransfers
}

func intArg(args map[string]string, key string) int {
	v, ok := args[key]
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Close disables the RF module and releases the stream. The handle is
// released even when the disable call fails; the failure is still returned.
func (s *Stream) Close() error {
	d := s.dev

	err := d.transport.EnableModule(s.dir.module(), false)
	if err != nil {
		d.log.Error("module disable failed", "direction", s.dir.String(), "error", err)
		err = fmt.Errorf("close stream: disable module: %w", err)
	}

	d.mu.Lock()
	if d.streams[s.dir] == s {
		d.streams[s.dir] = nil
	}
	d.mu.Unlock()

	metrics.StreamClosed(s.dir.String())
	d.log.Info("stream closed", "direction", s.dir.String())
	d.publish(events.StreamClosedEvent{
		Direction: s.dir.String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	return err
}

// Direction returns the stream's direction.
func (s *Stream) Direction() Direction { return s.dir }

// Format returns the caller-facing sample format.
func (s *Stream) Format() Format { return s.format }

// MTU returns the transfer granularity in samples recorded at setup. It is
// a hint for efficient buffer sizing, not a hard limit.
func (s *Stream) MTU() int { return s.mtu }

// Activate starts the stream. On RX it queues a receive command built from
// the arguments: numElems == 0 requests an open-ended continuous stream,
// numElems > 0 a finite burst, and FlagHasTime schedules the start at
// timeNs instead of immediately. Multiple activations queue multiple
// pending commands, serviced strictly in order.
//
// On TX there is no command queue; any non-zero flag is unsupported and
// the call is otherwise a no-op.
func (s *Stream) Activate(flags Flag, timeNs int64, numElems int) error {
	switch s.dir {
	case RX:
		s.rxCmds = append(s.rxCmds, rxCommand{
			hasTime:   flags&FlagHasTime != 0,
			timeNs:    timeNs,
			remaining: numElems,
		})
	case TX:
		if flags != 0 {
			return ErrNotSupported
		}
	}
	return nil
}

// Deactivate stops the stream. On RX all pending commands are discarded,
// fulfilled or not. On TX an open burst is closed before returning. Safe
// to call when already inactive.
func (s *Stream) Deactivate(flags Flag) error {
	if flags != 0 {
		return ErrNotSupported
	}

	switch s.dir {
	case RX:
		s.rxCmds = s.rxCmds[:0]
	case TX:
		if s.inBurst {
			s.sendEndBurst()
		}
	}
	return nil
}

// timeoutMs converts a caller timeout to the millisecond granularity of the
// transfer engine.
func timeoutMs(timeout time.Duration) int {
	return int(timeout / time.Millisecond)
}
