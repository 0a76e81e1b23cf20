package streaming

import (
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff"

	"github.com/henintsoa98/SoapyBladeRF/internal/bladerf"
	"github.com/henintsoa98/SoapyBladeRF/internal/events"
	"github.com/henintsoa98/SoapyBladeRF/internal/metrics"
)

// WriteC64 transmits samples from src on a CF32 transmit stream. FlagHasTime
// schedules the transfer at timeNs; otherwise it goes out immediately.
// FlagEndBurst closes the burst right after this transfer.
//
// A timeout or transfer failure leaves the burst state untouched. On
// success the stream is in a burst until an end-of-burst goes out. The
// returned count is the number of samples handed to the device; transmit is
// write-and-forget at this layer.
func (s *Stream) WriteC64(src []complex64, flags Flag, timeNs int64, timeout time.Duration) (int, error) {
	if s.format != FormatCF32 {
		return 0, fmt.Errorf("write: stream format is %s, want CF32", s.format)
	}
	return s.write(nil, src, len(src), flags, timeNs, timeout)
}

// WriteS16 transmits interleaved I/Q samples from src on a CS16 transmit
// stream. src must hold an even number of words. Semantics match WriteC64.
func (s *Stream) WriteS16(src []int16, flags Flag, timeNs int64, timeout time.Duration) (int, error) {
	if s.format != FormatCS16 {
		return 0, fmt.Errorf("write: stream format is %s, want CS16", s.format)
	}
	return s.write(src, nil, len(src)/2, flags, timeNs, timeout)
}

func (s *Stream) write(srcS16 []int16, srcC64 []complex64, numElems int, flags Flag, timeNs int64, timeout time.Duration) (int, error) {
	if s.dir != TX {
		return 0, fmt.Errorf("write: not a transmit stream")
	}

	md := bladerf.Metadata{}
	if flags&FlagHasTime != 0 {
		md.Timestamp = ticksFromNs(timeNs, s.dev.SampleRate(TX))
	} else {
		md.Flags |= bladerf.MetaFlagTxNow
	}

	n := numElems
	var buf []int16
	if s.convert {
		if max := len(s.conv) / 2; n > max {
			n = max
		}
		floatToFixed(s.conv, srcC64, n)
		buf = s.conv[:2*n]
	} else {
		buf = srcS16[:2*n]
	}

	// First transfer of a burst carries the start marker.
	if !s.inBurst {
		md.Flags |= bladerf.MetaFlagTxBurstStart
	}

	if err := s.dev.transport.SyncTx(buf, n, &md, timeoutMs(timeout)); err != nil {
		if errors.Is(err, bladerf.ErrTimeout) {
			return 0, ErrTimeout
		}
		s.log.Error("sync tx failed", "error", err)
		metrics.IncTransferError(TX.String())
		return 0, fmt.Errorf("%w: %v", ErrStream, err)
	}

	// Any successful transmit leaves the stream in a burst.
	s.inBurst = true

	if flags&FlagEndBurst != 0 {
		s.sendEndBurst()
	}

	if md.Status&bladerf.MetaStatusUnderrun != 0 {
		s.underrun = true
		s.log.Debug("underrun reported by device")
		metrics.IncUnderrun()
		s.dev.publish(events.UnderrunEvent{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}

	metrics.AddSamples(TX.String(), n)
	return n, nil
}

// InBurst reports whether the transmit stream is inside a burst.
func (s *Stream) InBurst() bool {
	return s.inBurst
}

// sendEndBurst transmits the two-sample zero payload that closes a burst.
// Timeouts are retried until the payload goes out; the 1-second sync
// timeout paces the retries. Any other failure is logged and abandons the
// attempt. Either way the stream leaves burst state.
func (s *Stream) sendEndBurst() {
	var zeros [4]int16

	op := func() error {
		md := bladerf.Metadata{Flags: bladerf.MetaFlagTxBurstEnd}
		err := s.dev.transport.SyncTx(zeros[:], 2, &md, syncTimeoutMs)
		if err == nil {
			return nil
		}
		if errors.Is(err, bladerf.ErrTimeout) {
			return err
		}
		s.log.Error("end-of-burst transmit failed", "error", err)
		return backoff.Permanent(err)
	}

	// The policy retries forever on timeout, matching the hardware
	// requirement that an opened burst must be closed. Bounding it is a
	// WithMaxRetries away if that requirement is ever relaxed.
	_ = backoff.Retry(op, backoff.NewConstantBackOff(0))

	s.inBurst = false
	s.dev.publish(events.BurstEndEvent{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
