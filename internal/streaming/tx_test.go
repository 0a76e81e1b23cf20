package streaming

import (
	"errors"
	"testing"
	"time"

	"github.com/henintsoa98/SoapyBladeRF/internal/bladerf"
)

func setupTx(t *testing.T, format Format) (*Stream, *fakeTransport) {
	t.Helper()
	dev, transport := newTestDevice(t)
	s, err := dev.SetupStream(TX, format, nil, nil)
	if err != nil {
		t.Fatalf("SetupStream: %v", err)
	}
	return s, transport
}

func TestWriteStartsBurst(t *testing.T) {
	s, transport := setupTx(t, FormatCS16)

	src := make([]int16, 512)
	n, err := s.WriteS16(src, 0, 0, time.Second)
	if err != nil {
		t.Fatalf("WriteS16: %v", err)
	}
	if n != 256 {
		t.Errorf("n = %d, want 256", n)
	}

	if len(transport.txCalls) != 1 {
		t.Fatalf("expected 1 transfer, got %d", len(transport.txCalls))
	}
	call := transport.txCalls[0]
	if call.flags&bladerf.MetaFlagTxBurstStart == 0 {
		t.Error("first transfer must carry burst start")
	}
	if call.flags&bladerf.MetaFlagTxNow == 0 {
		t.Error("untimed transfer must request immediate transmission")
	}
	if !s.InBurst() {
		t.Error("stream must be in burst after successful transmit")
	}

	// Second write continues the burst without a start marker.
	if _, err := s.WriteS16(src, 0, 0, time.Second); err != nil {
		t.Fatalf("second write: %v", err)
	}
	if transport.txCalls[1].flags&bladerf.MetaFlagTxBurstStart != 0 {
		t.Error("second transfer must not carry burst start")
	}
}

func TestWriteScheduledTime(t *testing.T) {
	s, transport := setupTx(t, FormatCS16)

	src := make([]int16, 64)
	// 3 ms at the default 1 MS/s is 3000 ticks.
	if _, err := s.WriteS16(src, FlagHasTime, 3_000_000, time.Second); err != nil {
		t.Fatalf("WriteS16: %v", err)
	}

	call := transport.txCalls[0]
	if call.flags&bladerf.MetaFlagTxNow != 0 {
		t.Error("timed transfer must not request now")
	}
	if call.timestamp != 3000 {
		t.Errorf("timestamp = %d ticks, want 3000", call.timestamp)
	}
}

func TestWriteEndBurstFlag(t *testing.T) {
	s, transport := setupTx(t, FormatCS16)

	src := make([]int16, 128)
	if _, err := s.WriteS16(src, FlagEndBurst, 0, time.Second); err != nil {
		t.Fatalf("WriteS16: %v", err)
	}

	// Data transfer plus a separate end-of-burst transmission.
	if len(transport.txCalls) != 2 {
		t.Fatalf("expected 2 transfers, got %d", len(transport.txCalls))
	}
	data, end := transport.txCalls[0], transport.txCalls[1]
	if data.flags&bladerf.MetaFlagTxBurstStart == 0 {
		t.Error("data transfer on an idle stream must carry burst start")
	}
	if end.flags&bladerf.MetaFlagTxBurstEnd == 0 {
		t.Error("closing transfer must carry burst end")
	}
	if end.numElems != 2 {
		t.Errorf("end-of-burst payload = %d samples, want 2", end.numElems)
	}
	for i, w := range end.samples {
		if w != 0 {
			t.Errorf("end-of-burst word %d = %d, want 0", i, w)
		}
	}
	if s.InBurst() {
		t.Error("stream must leave burst state after end-of-burst")
	}
}

func TestWriteConvertsFromFloat(t *testing.T) {
	s, transport := setupTx(t, FormatCF32)

	src := make([]complex64, 16)
	for i := range src {
		src[i] = complex(0.5, -0.25)
	}
	if _, err := s.WriteC64(src, 0, 0, time.Second); err != nil {
		t.Fatalf("WriteC64: %v", err)
	}

	call := transport.txCalls[0]
	for i := 0; i < call.numElems; i++ {
		if call.samples[2*i] != 1000 || call.samples[2*i+1] != -500 {
			t.Fatalf("sample %d = (%d, %d), want (1000, -500)",
				i, call.samples[2*i], call.samples[2*i+1])
		}
	}
}

func TestWriteTimeoutLeavesStateUntouched(t *testing.T) {
	s, transport := setupTx(t, FormatCS16)
	transport.txFn = func(buf []int16, numElems int, md *bladerf.Metadata, timeoutMs int) error {
		return bladerf.ErrTimeout
	}

	src := make([]int16, 64)
	if _, err := s.WriteS16(src, 0, 0, time.Second); !errors.Is(err, ErrTimeout) {
		t.Fatalf("write = %v, want ErrTimeout", err)
	}
	if s.InBurst() {
		t.Error("burst state must not change on timeout")
	}
}

func TestWriteErrorLeavesStateUntouched(t *testing.T) {
	s, transport := setupTx(t, FormatCS16)
	transport.txFn = func(buf []int16, numElems int, md *bladerf.Metadata, timeoutMs int) error {
		return errors.New("usb stall")
	}

	src := make([]int16, 64)
	if _, err := s.WriteS16(src, 0, 0, time.Second); !errors.Is(err, ErrStream) {
		t.Fatalf("write = %v, want ErrStream", err)
	}
	if s.InBurst() {
		t.Error("burst state must not change on failure")
	}
}

func TestUnderrunReportedOncePerOccurrence(t *testing.T) {
	s, transport := setupTx(t, FormatCS16)
	transport.txFn = func(buf []int16, numElems int, md *bladerf.Metadata, timeoutMs int) error {
		md.Status |= bladerf.MetaStatusUnderrun
		md.ActualCount = numElems
		return nil
	}

	src := make([]int16, 64)
	if _, err := s.WriteS16(src, 0, 0, time.Second); err != nil {
		t.Fatalf("WriteS16: %v", err)
	}

	if _, err := s.Status(time.Second); !errors.Is(err, ErrUnderflow) {
		t.Errorf("first poll = %v, want ErrUnderflow", err)
	}
	if _, err := s.Status(time.Second); err != nil {
		t.Errorf("second poll = %v, want nil", err)
	}
}

func TestStatusOnIdleStream(t *testing.T) {
	s, _ := setupTx(t, FormatCS16)
	if _, err := s.Status(time.Second); err != nil {
		t.Errorf("Status = %v, want nil", err)
	}
}

func TestDeactivateEndsOpenBurst(t *testing.T) {
	s, transport := setupTx(t, FormatCS16)

	src := make([]int16, 64)
	if _, err := s.WriteS16(src, 0, 0, time.Second); err != nil {
		t.Fatalf("WriteS16: %v", err)
	}
	if !s.InBurst() {
		t.Fatal("expected open burst")
	}

	if err := s.Deactivate(0); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	if s.InBurst() {
		t.Error("deactivate must close the burst")
	}

	last := transport.txCalls[len(transport.txCalls)-1]
	if last.flags&bladerf.MetaFlagTxBurstEnd == 0 {
		t.Error("deactivate must transmit an end-of-burst")
	}

	// Idle deactivate sends nothing further.
	calls := len(transport.txCalls)
	if err := s.Deactivate(0); err != nil {
		t.Fatalf("second deactivate: %v", err)
	}
	if len(transport.txCalls) != calls {
		t.Error("deactivating an idle stream must not transmit")
	}
}

func TestEndBurstRetriesOnTimeout(t *testing.T) {
	s, transport := setupTx(t, FormatCS16)

	timeouts := 2
	transport.txFn = func(buf []int16, numElems int, md *bladerf.Metadata, timeoutMs int) error {
		if md.Flags&bladerf.MetaFlagTxBurstEnd != 0 && timeouts > 0 {
			timeouts--
			return bladerf.ErrTimeout
		}
		md.ActualCount = numElems
		return nil
	}

	src := make([]int16, 64)
	if _, err := s.WriteS16(src, FlagEndBurst, 0, time.Second); err != nil {
		t.Fatalf("WriteS16: %v", err)
	}

	// One data transfer plus three end-of-burst attempts.
	if len(transport.txCalls) != 4 {
		t.Errorf("expected 4 transfers, got %d", len(transport.txCalls))
	}
	if s.InBurst() {
		t.Error("burst must be closed after retries succeed")
	}
}

func TestEndBurstGivesUpOnHardError(t *testing.T) {
	s, transport := setupTx(t, FormatCS16)

	transport.txFn = func(buf []int16, numElems int, md *bladerf.Metadata, timeoutMs int) error {
		if md.Flags&bladerf.MetaFlagTxBurstEnd != 0 {
			return errors.New("usb gone")
		}
		md.ActualCount = numElems
		return nil
	}

	src := make([]int16, 64)
	if _, err := s.WriteS16(src, FlagEndBurst, 0, time.Second); err != nil {
		t.Fatalf("WriteS16: %v", err)
	}

	// Exactly one end-of-burst attempt; hard errors are not retried.
	if len(transport.txCalls) != 2 {
		t.Errorf("expected 2 transfers, got %d", len(transport.txCalls))
	}
	if s.InBurst() {
		t.Error("burst state must clear even when the closing transfer fails")
	}
}

func TestWriteFormatMismatch(t *testing.T) {
	s, _ := setupTx(t, FormatCS16)
	if _, err := s.WriteC64(make([]complex64, 16), 0, 0, time.Second); err == nil {
		t.Error("WriteC64 on a CS16 stream must fail")
	}
}
