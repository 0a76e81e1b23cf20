package bladerf

import (
	"io"
	"log/slog"
	"testing"
)

func newSim(t *testing.T, opts ...SimOption) *Simulator {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewSimulator(logger, opts...)
}

func configureAndEnable(t *testing.T, s *Simulator, m Module) {
	t.Helper()
	if err := s.ConfigureSync(m, FormatSC16Q11Meta, 32, 4096, 16, 1000); err != nil {
		t.Fatalf("ConfigureSync: %v", err)
	}
	if err := s.EnableModule(m, true); err != nil {
		t.Fatalf("EnableModule: %v", err)
	}
}

func TestSimConfigureRejectsBadArgs(t *testing.T) {
	s := newSim(t)

	if err := s.ConfigureSync(ModuleRX, FormatSC16Q11, 32, 4096, 16, 1000); err == nil {
		t.Error("plain SC16.Q11 without metadata must be rejected")
	}
	if err := s.ConfigureSync(ModuleRX, FormatSC16Q11Meta, 1, 4096, 1, 1000); err == nil {
		t.Error("single buffer must be rejected")
	}
	if err := s.ConfigureSync(ModuleRX, FormatSC16Q11Meta, 4, 4096, 8, 1000); err == nil {
		t.Error("more transfers than buffers must be rejected")
	}
}

func TestSimEnableRequiresConfig(t *testing.T) {
	s := newSim(t)

	if err := s.EnableModule(ModuleRX, true); err == nil {
		t.Fatal("enable before sync config must fail")
	}

	configureAndEnable(t, s, ModuleRX)
	if err := s.EnableModule(ModuleRX, true); err == nil {
		t.Error("double enable must fail")
	}
	if err := s.EnableModule(ModuleRX, false); err != nil {
		t.Errorf("disable: %v", err)
	}
	if err := s.EnableModule(ModuleRX, false); err == nil {
		t.Error("double disable must fail")
	}
}

func TestSimRxTicksAdvancePerSample(t *testing.T) {
	s := newSim(t)
	configureAndEnable(t, s, ModuleRX)

	buf := make([]int16, 2048)
	var md Metadata

	md.Flags = MetaFlagRxNow
	if err := s.SyncRx(buf, 1024, &md, 1000); err != nil {
		t.Fatalf("first SyncRx: %v", err)
	}
	if md.Timestamp != 0 {
		t.Errorf("first timestamp = %d, want 0", md.Timestamp)
	}
	if md.ActualCount != 1024 {
		t.Errorf("actual = %d, want 1024", md.ActualCount)
	}

	md = Metadata{Flags: MetaFlagRxNow}
	if err := s.SyncRx(buf, 1024, &md, 1000); err != nil {
		t.Fatalf("second SyncRx: %v", err)
	}
	if md.Timestamp != 1024 {
		t.Errorf("second timestamp = %d, want 1024", md.Timestamp)
	}
}

func TestSimRxScheduledFuture(t *testing.T) {
	s := newSim(t)
	configureAndEnable(t, s, ModuleRX)

	buf := make([]int16, 512)
	md := Metadata{Timestamp: 5000}
	if err := s.SyncRx(buf, 256, &md, 1000); err != nil {
		t.Fatalf("SyncRx: %v", err)
	}
	if md.Status&MetaStatusOverrun != 0 {
		t.Error("future start time must not report overrun")
	}
	if md.Timestamp != 5000 {
		t.Errorf("timestamp = %d, want 5000", md.Timestamp)
	}

	// The clock resumed from the scheduled point.
	md = Metadata{Flags: MetaFlagRxNow}
	if err := s.SyncRx(buf, 256, &md, 1000); err != nil {
		t.Fatalf("SyncRx: %v", err)
	}
	if md.Timestamp != 5256 {
		t.Errorf("timestamp = %d, want 5256", md.Timestamp)
	}
}

func TestSimRxPastTimestampReportsOverrun(t *testing.T) {
	s := newSim(t)
	configureAndEnable(t, s, ModuleRX)

	buf := make([]int16, 2048)
	md := Metadata{Flags: MetaFlagRxNow}
	if err := s.SyncRx(buf, 1024, &md, 1000); err != nil {
		t.Fatalf("SyncRx: %v", err)
	}

	// Ask for samples starting before the current clock.
	md = Metadata{Timestamp: 100}
	if err := s.SyncRx(buf, 1024, &md, 1000); err != nil {
		t.Fatalf("SyncRx: %v", err)
	}
	if md.Status&MetaStatusOverrun == 0 {
		t.Error("past timestamp must report overrun")
	}
	if md.Timestamp != 1024 {
		t.Errorf("timestamp = %d, want current clock 1024", md.Timestamp)
	}
}

func TestSimRxToneLevel(t *testing.T) {
	s := newSim(t)
	configureAndEnable(t, s, ModuleRX)

	buf := make([]int16, 8192)
	md := Metadata{Flags: MetaFlagRxNow}
	if err := s.SyncRx(buf, 4096, &md, 1000); err != nil {
		t.Fatalf("SyncRx: %v", err)
	}

	var peak int16
	for _, w := range buf {
		if w > peak {
			peak = w
		}
		if w > simAmplitude || w < -simAmplitude {
			t.Fatalf("sample %d exceeds amplitude", w)
		}
	}
	if peak < simAmplitude/2 {
		t.Errorf("peak = %d, tone suspiciously quiet", peak)
	}
}

func TestSimTxBurstFraming(t *testing.T) {
	s := newSim(t)
	configureAndEnable(t, s, ModuleTX)

	buf := make([]int16, 512)

	// Transmitting outside a burst without a start marker is rejected.
	md := Metadata{Flags: MetaFlagTxNow}
	if err := s.SyncTx(buf, 256, &md, 1000); err == nil {
		t.Fatal("tx outside burst must fail")
	}

	md = Metadata{Flags: MetaFlagTxNow | MetaFlagTxBurstStart}
	if err := s.SyncTx(buf, 256, &md, 1000); err != nil {
		t.Fatalf("burst start: %v", err)
	}

	// Inside the burst plain transfers are fine.
	md = Metadata{Flags: MetaFlagTxNow}
	if err := s.SyncTx(buf, 256, &md, 1000); err != nil {
		t.Fatalf("in-burst tx: %v", err)
	}

	// Close the burst with the zero payload.
	var zeros [4]int16
	md = Metadata{Flags: MetaFlagTxBurstEnd}
	if err := s.SyncTx(zeros[:], 2, &md, 1000); err != nil {
		t.Fatalf("burst end: %v", err)
	}

	// Back outside the burst the start marker is required again.
	md = Metadata{Flags: MetaFlagTxNow}
	if err := s.SyncTx(buf, 256, &md, 1000); err == nil {
		t.Error("tx after burst end must fail without start marker")
	}
}

func TestSimTxLateTimestampReportsUnderrun(t *testing.T) {
	s := newSim(t)
	configureAndEnable(t, s, ModuleTX)

	buf := make([]int16, 2048)
	md := Metadata{Flags: MetaFlagTxNow | MetaFlagTxBurstStart}
	if err := s.SyncTx(buf, 1024, &md, 1000); err != nil {
		t.Fatalf("SyncTx: %v", err)
	}

	// Schedule behind the clock.
	md = Metadata{Timestamp: 100}
	if err := s.SyncTx(buf, 1024, &md, 1000); err != nil {
		t.Fatalf("SyncTx: %v", err)
	}
	if md.Status&MetaStatusUnderrun == 0 {
		t.Error("late timestamp must report underrun")
	}

	// Schedule ahead of the clock.
	md = Metadata{Timestamp: 1 << 20}
	if err := s.SyncTx(buf, 1024, &md, 1000); err != nil {
		t.Fatalf("SyncTx: %v", err)
	}
	if md.Status&MetaStatusUnderrun != 0 {
		t.Error("future timestamp must not report underrun")
	}
}

func TestSimSampleRateChangesToneStep(t *testing.T) {
	// At 1 MS/s a 250 kHz tone repeats every 4 samples. Verify the period
	// doubles when the rate doubles.
	period := func(rate float64) int {
		s := newSim(t, WithToneFrequency(250e3))
		s.SetSampleRate(ModuleRX, rate)
		configureAndEnable(t, s, ModuleRX)

		buf := make([]int16, 128)
		md := Metadata{Flags: MetaFlagRxNow}
		if err := s.SyncRx(buf, 64, &md, 1000); err != nil {
			t.Fatalf("SyncRx: %v", err)
		}
		for i := 2; i+1 < len(buf); i += 2 {
			if buf[i] == buf[0] && buf[i+1] == buf[1] {
				return i / 2
			}
		}
		t.Fatal("tone never repeated")
		return 0
	}

	if p := period(1e6); p != 4 {
		t.Errorf("period at 1 MS/s = %d samples, want 4", p)
	}
	if p := period(2e6); p != 8 {
		t.Errorf("period at 2 MS/s = %d samples, want 8", p)
	}
}
