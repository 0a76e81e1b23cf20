package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/henintsoa98/SoapyBladeRF/internal/api/models"
	"github.com/henintsoa98/SoapyBladeRF/internal/streaming"
)

// directionInput selects a stream direction in the URL path.
type directionInput struct {
	Direction string `path:"direction" enum:"rx,tx" doc:"Stream direction: rx or tx"`
}

func parseDirection(s string) streaming.Direction {
	if s == "tx" {
		return streaming.TX
	}
	return streaming.RX
}

// directionStatus builds the status view of one direction.
func (s *Server) directionStatus(dir streaming.Direction) models.StreamStatus {
	status := models.StreamStatus{
		SampleRate: s.device.SampleRate(dir),
	}

	stream := s.device.Stream(dir)
	if stream == nil {
		return status
	}

	status.Open = true
	status.Format = string(stream.Format())
	status.MTU = stream.MTU()
	switch dir {
	case streaming.RX:
		status.PendingCommands = stream.PendingCommands()
	case streaming.TX:
		status.InBurst = stream.InBurst()
	}
	return status
}

// registerStatusRoutes registers device status and sample rate endpoints.
func (s *Server) registerStatusRoutes() {
	// Device status
	huma.Register(s.api, huma.Operation{
		OperationID: "get-status",
		Method:      http.MethodGet,
		Path:        "/api/status",
		Summary:     "Device Status",
		Description: "Get the state of both stream directions",
		Tags:        []string{"device"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, _ *struct{}) (*models.StatusResponse, error) {
		return &models.StatusResponse{
			Body: models.StatusData{
				RX: s.directionStatus(streaming.RX),
				TX: s.directionStatus(streaming.TX),
			},
		}, nil
	})

	// Get sample rate for a direction
	huma.Register(s.api, huma.Operation{
		OperationID: "get-sample-rate",
		Method:      http.MethodGet,
		Path:        "/api/samplerate/{direction}",
		Summary:     "Get Sample Rate",
		Description: "Get the sample clock rate of one direction",
		Tags:        []string{"device"},
		Security:    withAuth(),
		Errors:      []int{401, 422},
	}, func(_ context.Context, input *directionInput) (*models.SampleRateResponse, error) {
		dir := parseDirection(input.Direction)
		return &models.SampleRateResponse{
			Body: models.SampleRateData{
				Direction: dir.String(),
				Rate:      s.device.SampleRate(dir),
			},
		}, nil
	})

	// Set sample rate for a direction
	huma.Register(s.api, huma.Operation{
		OperationID: "set-sample-rate",
		Method:      http.MethodPut,
		Path:        "/api/samplerate/{direction}",
		Summary:     "Set Sample Rate",
		Description: "Reconfigure the sample clock rate of one direction. Takes effect immediately; subsequent time conversions use the new rate.",
		Tags:        []string{"device"},
		Security:    withAuth(),
		Errors:      []int{401, 422},
	}, func(_ context.Context, input *struct {
		directionInput
		Body struct {
			Rate float64 `json:"rate" example:"2000000" doc:"Sample rate in samples per second"`
		}
	}) (*models.SampleRateResponse, error) {
		dir := parseDirection(input.Direction)
		if err := s.device.SetSampleRate(dir, input.Body.Rate); err != nil {
			return nil, huma.Error422UnprocessableEntity("invalid sample rate", err)
		}
		s.logger.Info("sample rate changed via API", "direction", dir.String(), "rate", input.Body.Rate)
		return &models.SampleRateResponse{
			Body: models.SampleRateData{
				Direction: dir.String(),
				Rate:      s.device.SampleRate(dir),
			},
		}, nil
	})
}
