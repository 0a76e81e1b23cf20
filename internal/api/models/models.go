// Package models defines the request and response bodies for the HTTP API.
package models

// HealthData represents the health check response body.
type HealthData struct {
	Status  string `json:"status" example:"ok" doc:"Health status"`
	Message string `json:"message" example:"API is healthy" doc:"Status message"`
}

// HealthResponse wraps the health check response.
type HealthResponse struct {
	Body HealthData
}

// VersionData represents version and build information.
type VersionData struct {
	Version   string `json:"version" example:"1.0.0" doc:"Application version"`
	GitCommit string `json:"git_commit" example:"abc123" doc:"Git commit hash"`
	BuildDate string `json:"build_date" example:"2026-01-27T10:30:00Z" doc:"Build timestamp"`
	BuildID   string `json:"build_id" example:"12345" doc:"Build identifier"`
	GoVersion string `json:"go_version" example:"go1.24.0" doc:"Go version used to build"`
	Compiler  string `json:"compiler" example:"gc" doc:"Go compiler"`
	Platform  string `json:"platform" example:"linux/amd64" doc:"Target platform"`
}

// VersionResponse wraps the version response.
type VersionResponse struct {
	Body VersionData
}

// StreamStatus describes one direction of the device.
type StreamStatus struct {
	Open            bool    `json:"open" doc:"Whether a stream is currently set up"`
	Format          string  `json:"format,omitempty" example:"CF32" doc:"Caller-facing sample format"`
	MTU             int     `json:"mtu,omitempty" example:"4096" doc:"Transfer granularity in samples"`
	SampleRate      float64 `json:"sample_rate" example:"1000000" doc:"Sample rate in samples per second"`
	PendingCommands int     `json:"pending_commands,omitempty" doc:"Queued receive commands (RX only)"`
	InBurst         bool    `json:"in_burst,omitempty" doc:"Whether a transmit burst is open (TX only)"`
}

// StatusData represents the device status response body.
type StatusData struct {
	RX StreamStatus `json:"rx"`
	TX StreamStatus `json:"tx"`
}

// StatusResponse wraps the device status response.
type StatusResponse struct {
	Body StatusData
}

// SampleRateData reports a direction's sample rate.
type SampleRateData struct {
	Direction string  `json:"direction" example:"rx" doc:"Stream direction: rx or tx"`
	Rate      float64 `json:"rate" example:"2000000" doc:"Sample rate in samples per second"`
}

// SampleRateResponse wraps the sample rate response.
type SampleRateResponse struct {
	Body SampleRateData
}

// LogEntryData represents a single buffered log entry.
type LogEntryData struct {
	Timestamp  string         `json:"timestamp" example:"2026-01-27T10:30:00.123Z" doc:"Entry timestamp"`
	Level      string         `json:"level" example:"info" doc:"Log level"`
	Module     string         `json:"module" example:"streaming" doc:"Module that produced the entry"`
	Message    string         `json:"message" doc:"Log message"`
	Attributes map[string]any `json:"attributes,omitempty" doc:"Structured attributes"`
}

// LogsData represents the buffered log history.
type LogsData struct {
	Entries []LogEntryData `json:"entries" doc:"Recent log entries, oldest first"`
}

// LogsResponse wraps the log history response.
type LogsResponse struct {
	Body LogsData
}
