package streaming

import (
	"errors"
	"fmt"
	"time"

	"github.com/henintsoa98/SoapyBladeRF/internal/bladerf"
	"github.com/henintsoa98/SoapyBladeRF/internal/events"
	"github.com/henintsoa98/SoapyBladeRF/internal/metrics"
)

// ReadC64 receives samples into dst on a CF32 receive stream. It returns
// the number of samples written, per-call timing metadata, and the
// condition for this call:
//
//   - ErrTimeout when no command is pending or the transfer timed out; the
//     head command stays queued for retry.
//   - ErrOverflow when a prior overrun is being reported; the Meta carries
//     the boundary time and no data is transferred.
//   - ErrStream when the transfer failed; a finite head command is
//     discarded, an open-ended one survives.
//
// The returned count is the device-reported actual, which can be less than
// requested.
func (s *Stream) ReadC64(dst []complex64, timeout time.Duration) (int, Meta, error) {
	if s.format != FormatCF32 {
		return 0, Meta{}, fmt.Errorf("read: stream format is %s, want CF32", s.format)
	}
	return s.read(nil, dst, len(dst), timeout)
}

// ReadS16 receives interleaved I/Q samples into dst on a CS16 receive
// stream. dst must hold an even number of words; the element count is
// len(dst)/2. Semantics match ReadC64.
func (s *Stream) ReadS16(dst []int16, timeout time.Duration) (int, Meta, error) {
	if s.format != FormatCS16 {
		return 0, Meta{}, fmt.Errorf("read: stream format is %s, want CS16", s.format)
	}
	return s.read(dst, nil, len(dst)/2, timeout)
}

func (s *Stream) read(dstS16 []int16, dstC64 []complex64, numElems int, timeout time.Duration) (int, Meta, error) {
	if s.dir != RX {
		return 0, Meta{}, fmt.Errorf("read: not a receive stream")
	}

	// No pending command means nothing to receive against; this is a
	// timeout condition, not an error.
	if len(s.rxCmds) == 0 {
		return 0, Meta{}, ErrTimeout
	}
	cmd := &s.rxCmds[0]

	rate := s.dev.SampleRate(RX)

	// A pending overrun is reported before any new data: this call is
	// spent on the notification alone.
	if s.overrun {
		s.overrun = false
		return 0, Meta{
			Flags:  FlagHasTime,
			TimeNs: nsFromTicks(s.nextTicks, rate),
		}, ErrOverflow
	}

	md := bladerf.Metadata{}
	if !cmd.hasTime {
		md.Flags |= bladerf.MetaFlagRxNow
	}
	md.Timestamp = ticksFromNs(cmd.timeNs, rate)

	n := numElems
	if cmd.remaining > 0 && cmd.remaining < n {
		n = cmd.remaining
	}
	// The start time is one-shot; later calls for the same command receive
	// whatever comes next.
	cmd.hasTime = false

	var buf []int16
	if s.convert {
		if max := len(s.conv) / 2; n > max {
			n = max
		}
		buf = s.conv[:2*n]
	} else {
		buf = dstS16[:2*n]
	}

	if err := s.dev.transport.SyncRx(buf, n, &md, timeoutMs(timeout)); err != nil {
		if errors.Is(err, bladerf.ErrTimeout) {
			return 0, Meta{}, ErrTimeout
		}
		// Any other failure terminates a finite burst early.
		if cmd.remaining > 0 {
			s.popCommand()
		}
		s.log.Error("sync rx failed", "error", err)
		metrics.IncTransferError(RX.String())
		return 0, Meta{}, fmt.Errorf("%w: %v", ErrStream, err)
	}

	actual := md.ActualCount
	if s.convert {
		fixedToFloat(dstC64, s.conv, actual)
	}

	meta := Meta{
		Flags:  FlagHasTime,
		TimeNs: nsFromTicks(md.Timestamp, rate),
	}

	if md.Status&bladerf.MetaStatusOverrun != 0 {
		// Remember where the gap starts; the next call reports it.
		s.nextTicks = md.Timestamp + uint64(actual)
		s.overrun = true
		s.log.Debug("overrun reported by device", "ticks", s.nextTicks)
		metrics.IncOverrun()
		s.dev.publish(events.OverrunEvent{
			TimeNs:    nsFromTicks(s.nextTicks, rate),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}

	if cmd.remaining > 0 {
		cmd.remaining -= actual
		if cmd.remaining <= 0 {
			s.popCommand()
		}
	}

	metrics.AddSamples(RX.String(), actual)
	return actual, meta, nil
}

func (s *Stream) popCommand() {
	s.rxCmds = s.rxCmds[1:]
	if len(s.rxCmds) == 0 {
		// Let the backing array go once drained so a long-lived stream
		// does not pin retired commands.
		s.rxCmds = nil
	}
}

// PendingCommands returns the number of queued receive commands.
func (s *Stream) PendingCommands() int {
	return len(s.rxCmds)
}
