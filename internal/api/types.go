package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// QueueItem describes a render job in a transport-friendly format.
type QueueItem struct {
	ID            int64         `json:"id"`
	JobID         string        `json:"jobId"`
	Topic         string        `json:"topic"`
	Style         string        `json:"style"`
	Status        string        `json:"status"`
	Stage         string        `json:"stage"`
	Progress      QueueProgress `json:"progress"`
	ErrorMessage  string        `json:"errorMessage,omitempty"`
	AudioSeconds  float64       `json:"audioSeconds,omitempty"`
	SynthProvider string        `json:"synthProvider,omitempty"`
	FinalFile     string        `json:"finalFile,omitempty"`
	CreatedAt     string        `json:"createdAt,omitempty"`
	UpdatedAt     string        `json:"updatedAt,omitempty"`
}

// QueueProgress reports stage progress for a job.
type QueueProgress struct {
	Stage   string  `json:"stage"`
	Percent float64 `json:"percent"`
	Message string  `json:"message"`
}

// StageHealth is the readiness record for a single pipeline stage.
type StageHealth struct {
	Name   string `json:"name"`
	Ready  bool   `json:"ready"`
	Detail string `json:"detail,omitempty"`
}

// WorkflowStatus reports daemon running state, queue counts, and stage health.
type WorkflowStatus struct {
	Running     bool          `json:"running"`
	QueueStats  QueueStats    `json:"queueStats"`
	StageHealth []StageHealth `json:"stageHealth"`
	LastError   string        `json:"lastError,omitempty"`
	LastItem    *QueueItem    `json:"lastItem,omitempty"`
}

// QueueStats aggregates job counts per key lifecycle states.
type QueueStats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Ready      int `json:"ready"`
	Failed     int `json:"failed"`
	Completed  int `json:"completed"`
}
