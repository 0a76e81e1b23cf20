// Package metrics provides Prometheus metrics for the streaming engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	samplesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bladerf",
		Subsystem: "stream",
		Name:      "samples_total",
		Help:      "Total samples transferred",
	}, []string{"direction"})

	overrunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bladerf",
		Subsystem: "stream",
		Name:      "overruns_total",
		Help:      "Receive overruns reported by the device",
	})

	underrunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bladerf",
		Subsystem: "stream",
		Name:      "underruns_total",
		Help:      "Transmit underruns reported by the device",
	})

	transferErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bladerf",
		Subsystem: "stream",
		Name:      "transfer_errors_total",
		Help:      "Failed synchronous transfers, timeouts excluded",
	}, []string{"direction"})

	openStreams = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "bladerf",
		Subsystem: "stream",
		Name:      "open",
		Help:      "Whether a stream is open for a direction (0 or 1)",
	}, []string{"direction"})

	streamMTU = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "bladerf",
		Subsystem: "stream",
		Name:      "mtu_samples",
		Help:      "Transfer granularity of the open stream in samples",
	}, []string{"direction"})

	sampleRate = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "bladerf",
		Subsystem: "device",
		Name:      "sample_rate",
		Help:      "Configured sample rate in samples per second",
	}, []string{"direction"})
)

// AddSamples records transferred samples for a direction.
func AddSamples(direction string, n int) {
	samplesTotal.WithLabelValues(direction).Add(float64(n))
}

// IncOverrun records a device-reported receive overrun.
func IncOverrun() {
	overrunsTotal.Inc()
}

// IncUnderrun records a device-reported transmit underrun.
func IncUnderrun() {
	underrunsTotal.Inc()
}

// IncTransferError records a failed (non-timeout) synchronous transfer.
func IncTransferError(direction string) {
	transferErrorsTotal.WithLabelValues(direction).Inc()
}

// StreamOpened marks a direction's stream as open and records its MTU.
func StreamOpened(direction string, mtu int) {
	openStreams.WithLabelValues(direction).Set(1)
	streamMTU.WithLabelValues(direction).Set(float64(mtu))
}

// StreamClosed marks a direction's stream as closed.
func StreamClosed(direction string) {
	openStreams.WithLabelValues(direction).Set(0)
	streamMTU.DeleteLabelValues(direction)
}

// SetSampleRate records a direction's configured sample rate.
func SetSampleRate(direction string, rate float64) {
	sampleRate.WithLabelValues(direction).Set(rate)
}
