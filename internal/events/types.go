package events

// Event type constants for kelindar/event.
const (
	TypeStreamOpened uint32 = iota + 1
	TypeStreamClosed
	TypeOverrun
	TypeUnderrun
	TypeBurstEnd
	TypeSampleRateChanged
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// StreamOpenedEvent is published when a stream direction is set up and the
// RF module enabled.
type StreamOpenedEvent struct {
	Direction string `json:"direction" example:"rx" doc:"Stream direction: rx or tx"`
	Format    string `json:"format" example:"CF32" doc:"Caller-facing sample format"`
	MTU       int    `json:"mtu" example:"4096" doc:"Transfer granularity in samples"`
	Timestamp string `json:"timestamp" example:"2026-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for StreamOpenedEvent.
func (e StreamOpenedEvent) Type() uint32 { return TypeStreamOpened }

// StreamClosedEvent is published when a stream is closed and the module
// disabled.
type StreamClosedEvent struct {
	Direction string `json:"direction" example:"rx" doc:"Stream direction: rx or tx"`
	Timestamp string `json:"timestamp" example:"2026-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for StreamClosedEvent.
func (e StreamClosedEvent) Type() uint32 { return TypeStreamClosed }

// OverrunEvent is published when the device reports dropped receive samples.
type OverrunEvent struct {
	TimeNs    int64  `json:"time_ns" doc:"Boundary time of the overrun in nanoseconds"`
	Timestamp string `json:"timestamp" example:"2026-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for OverrunEvent.
func (e OverrunEvent) Type() uint32 { return TypeOverrun }

// UnderrunEvent is published when the device reports a transmit gap.
type UnderrunEvent struct {
	Timestamp string `json:"timestamp" example:"2026-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for UnderrunEvent.
func (e UnderrunEvent) Type() uint32 { return TypeUnderrun }

// BurstEndEvent is published after an end-of-burst transmission completes.
type BurstEndEvent struct {
	Timestamp string `json:"timestamp" example:"2026-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for BurstEndEvent.
func (e BurstEndEvent) Type() uint32 { return TypeBurstEnd }

// SampleRateChangedEvent is published when a direction's sample rate is
// reconfigured at runtime.
type SampleRateChangedEvent struct {
	Direction string  `json:"direction" example:"rx" doc:"Stream direction: rx or tx"`
	Rate      float64 `json:"rate" example:"2000000" doc:"New sample rate in samples per second"`
	Timestamp string  `json:"timestamp" example:"2026-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for SampleRateChangedEvent.
func (e SampleRateChangedEvent) Type() uint32 { return TypeSampleRateChanged }
