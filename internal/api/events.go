package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"

	"github.com/henintsoa98/SoapyBladeRF/internal/events"
)

// registerEventRoutes registers the device event SSE endpoint.
func (s *Server) registerEventRoutes() {
	sse.Register(s.api, huma.Operation{
		OperationID: "events-stream",
		Method:      http.MethodGet,
		Path:        "/api/events",
		Summary:     "Device Event Stream",
		Description: "Real-time device events via Server-Sent Events: stream lifecycle, overruns, underruns, burst ends and sample rate changes.",
		Tags:        []string{"events"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, map[string]any{
		"stream_opened":       events.StreamOpenedEvent{},
		"stream_closed":       events.StreamClosedEvent{},
		"overrun":             events.OverrunEvent{},
		"underrun":            events.UnderrunEvent{},
		"burst_end":           events.BurstEndEvent{},
		"sample_rate_changed": events.SampleRateChangedEvent{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		// Create event channel for this connection
		eventCh := make(chan any, 32)

		// Subscribe to every event type the bus carries
		unsubs := []func(){
			events.SubscribeToChannel[events.StreamOpenedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.StreamClosedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.OverrunEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.UnderrunEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.BurstEndEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.SampleRateChangedEvent](s.eventBus, eventCh),
		}
		defer func() {
			for _, unsub := range unsubs {
				unsub()
			}
		}()

		// Forward events until the client disconnects
		for {
			select {
			case <-ctx.Done():
				return
			case event := <-eventCh:
				if err := send.Data(event); err != nil {
					return
				}
			}
		}
	})
}
