// Package bladerf defines the boundary to the bladeRF synchronous transfer
// engine. The streaming core consumes this interface; the real implementation
// wraps libbladeRF, and Simulator provides a hardware-free stand-in.
package bladerf

import "errors"

// Module selects one direction of the transceiver.
type Module int

// Transceiver modules.
const (
	ModuleRX Module = iota
	ModuleTX
)

// String returns the module name as used in logs and metric labels.
func (m Module) String() string {
	if m == ModuleTX {
		return "tx"
	}
	return "rx"
}

// WireFormat identifies the on-the-wire sample encoding used by the
// synchronous transfer engine.
type WireFormat int

// Supported wire formats.
const (
	// FormatSC16Q11 is plain interleaved signed 12-bit I/Q in 16-bit words.
	FormatSC16Q11 WireFormat = iota
	// FormatSC16Q11Meta is SC16.Q11 with per-buffer metadata headers
	// (timestamp, flags, status). The streaming core always configures this
	// format and performs any float conversion in software.
	FormatSC16Q11Meta
)

// Metadata flag bits, set by the caller before a transfer.
type MetaFlag uint32

const (
	// MetaFlagRxNow requests reception immediately instead of at Timestamp.
	MetaFlagRxNow MetaFlag = 1 << iota
	// MetaFlagTxNow requests transmission immediately instead of at Timestamp.
	MetaFlagTxNow
	// MetaFlagTxBurstStart marks the first buffer of a transmit burst.
	MetaFlagTxBurstStart
	// MetaFlagTxBurstEnd marks the final buffer of a transmit burst.
	MetaFlagTxBurstEnd
)

// Metadata status bits, set by the device on return.
type MetaStatus uint32

const (
	// MetaStatusOverrun indicates the device dropped samples because the
	// host did not consume them fast enough.
	MetaStatusOverrun MetaStatus = 1 << iota
	// MetaStatusUnderrun indicates the device ran out of samples to transmit.
	MetaStatusUnderrun
)

// Metadata carries per-transfer timing and status. A fresh value is built
// before each synchronous call; Timestamp and Flags are inputs, Status and
// ActualCount are populated by the device on return.
type Metadata struct {
	// Timestamp is the transfer time in sample-clock ticks.
	Timestamp uint64
	Flags     MetaFlag
	Status    MetaStatus
	// ActualCount is the number of samples actually transferred.
	ActualCount int
}

// ErrTimeout is returned by SyncRx and SyncTx when the transfer did not
// complete within the configured timeout. It is the only recoverable
// transfer error; callers retry or surface it as a timeout condition.
var ErrTimeout = errors.New("bladerf: sync transfer timed out")

// Transport is the synchronous transfer engine for one device. Buffer pool
// sizing, transfer scheduling and double buffering live behind this
// interface. Implementations must support concurrent calls on different
// modules; calls on the same module are sequential.
type Transport interface {
	// ConfigureSync sets up buffered synchronous transfers for a module.
	// Must be called before EnableModule.
	ConfigureSync(m Module, format WireFormat, numBuffers, bufferSize, numTransfers, timeoutMs int) error

	// EnableModule turns a direction of the RF frontend on or off.
	// Enabling or disabling twice in a row is undefined.
	EnableModule(m Module, enable bool) error

	// SyncRx receives numElems samples into buf (interleaved I/Q, so buf
	// holds 2*numElems int16 words). Blocks until the transfer completes,
	// the timeout elapses (ErrTimeout), or the transfer fails.
	SyncRx(buf []int16, numElems int, md *Metadata, timeoutMs int) error

	// SyncTx transmits numElems samples from buf. Same blocking and error
	// semantics as SyncRx.
	SyncTx(buf []int16, numElems int, md *Metadata, timeoutMs int) error
}
