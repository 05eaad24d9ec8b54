package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a render job.
type Status string

const (
	StatusPending        Status = "pending"
	StatusEstimating     Status = "estimating"
	StatusScriptReady    Status = "script_ready"
	StatusSynthesizing   Status = "synthesizing"
	StatusAudioReady     Status = "audio_ready"
	StatusAligning       Status = "aligning"
	StatusSubtitlesReady Status = "subtitles_ready"
	StatusPlanning       Status = "planning"
	StatusScenesReady    Status = "scenes_ready"
	StatusRendering      Status = "rendering"
	StatusRendered       Status = "rendered"
	StatusFinalizing     Status = "finalizing"
	StatusCompleted      Status = "completed"
	StatusFailed         Status = "failed"
)

// CancelledReason is the error message recorded when a job is cancelled.
const CancelledReason = "cancelled"

// DaemonStopReason is the error message set when jobs are failed due to daemon shutdown.
const DaemonStopReason = "Daemon stopped"

var allStatuses = []Status{
	StatusPending,
	StatusEstimating,
	StatusScriptReady,
	StatusSynthesizing,
	StatusAudioReady,
	StatusAligning,
	StatusSubtitlesReady,
	StatusPlanning,
	StatusScenesReady,
	StatusRendering,
	StatusRendered,
	StatusFinalizing,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusEstimating:   {},
	StatusSynthesizing: {},
	StatusAligning:     {},
	StatusPlanning:     {},
	StatusRendering:    {},
	StatusFinalizing:   {},
}

// readyStatuses are the intermediate done-states between stages. A job
// parked at one of them is still mid-pipeline, waiting for the next
// stage (or for a retry backoff to elapse).
var readyStatuses = map[Status]struct{}{
	StatusScriptReady:    {},
	StatusAudioReady:     {},
	StatusSubtitlesReady: {},
	StatusScenesReady:    {},
	StatusRendered:       {},
}

type statusTransition struct {
	from Status
	to   Status
}

// stageRollbackTransitions map each processing status back to the start of
// its stage, so interrupted work resumes without redoing completed stages.
var stageRollbackTransitions = []statusTransition{
	{from: StatusEstimating, to: StatusPending},
	{from: StatusSynthesizing, to: StatusScriptReady},
	{from: StatusAligning, to: StatusAudioReady},
	{from: StatusPlanning, to: StatusSubtitlesReady},
	{from: StatusRendering, to: StatusScenesReady},
	{from: StatusFinalizing, to: StatusRendered},
}

// HealthSummary describes aggregated queue counts per key lifecycle states.
// Ready counts jobs parked at an intermediate done-status; they are as
// in-flight as Processing jobs for drain purposes.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Ready      int
	Failed     int
	Completed  int
}

// InFlight reports how many jobs have not reached a terminal state,
// including jobs waiting between stages.
func (h HealthSummary) InFlight() int {
	return h.Pending + h.Processing + h.Ready
}

// Item represents a render job persisted in SQLite.
type Item struct {
	ID              int64
	JobID           string
	Topic           string
	ImagePath       string
	Style           string
	VoicePreference string
	VoiceID         string
	MusicPath       string
	TargetSeconds   int
	Status          Status
	ScriptJSON      string
	AudioFile       string
	AudioSeconds    float64
	SynthProvider   string
	CuesFile        string
	ScenesFile      string
	RenderedFile    string
	FinalFile       string
	ErrorMessage    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ProgressStage   string
	ProgressPercent float64
	ProgressMessage string
	LastHeartbeat   *time.Time
	CancelRequested bool
	StageAttempts   int
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsProcessing returns true when the status reflects an in-flight operation.
func (i Item) IsProcessing() bool {
	_, ok := processingStatuses[i.Status]
	return ok
}

// IsProcessingStatus reports whether a status reflects an in-flight operation.
func IsProcessingStatus(status Status) bool {
	_, ok := processingStatuses[status]
	return ok
}

// IsReadyStatus reports whether a status is an intermediate done-state
// awaiting its next stage.
func IsReadyStatus(status Status) bool {
	_, ok := readyStatuses[status]
	return ok
}

// IsTerminal reports whether the status is a terminal state.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// SetProgress updates all three progress fields atomically.
func (i *Item) SetProgress(stage, message string, percent float64) {
	i.ProgressStage = stage
	i.ProgressMessage = message
	i.ProgressPercent = percent
}

// SetProgressComplete sets progress to 100% with the given stage and message.
func (i *Item) SetProgressComplete(stage, message string) {
	i.SetProgress(stage, message, 100)
}

// SetFailed marks the item as failed with the given error message.
func (i *Item) SetFailed(message string) {
	i.Status = StatusFailed
	i.ErrorMessage = message
	i.ProgressPercent = 0
	i.ProgressMessage = message
	i.LastHeartbeat = nil
	i.ProgressStage = "Failed"
}

// IsCancelled reports whether the item failed due to a cancel request.
func (i Item) IsCancelled() bool {
	return i.Status == StatusFailed && strings.EqualFold(strings.TrimSpace(i.ErrorMessage), CancelledReason)
}

// StageKey returns the normalized stage identifier used in API/CLI presentation.
func (s Status) StageKey() string {
	switch s {
	case "":
		return ""
	case StatusPending:
		return "created"
	case StatusCompleted:
		return "done"
	default:
		if _, ok := statusSet[s]; ok {
			return string(s)
		}
		return ""
	}
}
