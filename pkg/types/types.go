package types

// Common response types

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

// WebSocket event types

const (
	EventRunStarted    = "run-started"
	EventRunCompleted  = "run-completed"
	EventRunFailed     = "run-failed"
	EventClickRecorded = "click-recorded"
)

// RunEvent announces a run lifecycle transition to the session's clients.
type RunEvent struct {
	Type            string `json:"type"`
	RunID           string `json:"runId"`
	Error           string `json:"error,omitempty"`
	LayerErrorCount int    `json:"layerErrorCount,omitempty"`
}

// ClickEvent confirms a recorded map click back to the session's clients.
type ClickEvent struct {
	Type string  `json:"type"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}
