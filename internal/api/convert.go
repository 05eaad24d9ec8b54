package api

import (
	"slices"

	"newsreel/internal/queue"
	"newsreel/internal/workflow"
)

// FromQueueItem converts a queue record to its API representation.
func FromQueueItem(item *queue.Item) QueueItem {
	if item == nil {
		return QueueItem{}
	}

	dto := QueueItem{
		ID:     item.ID,
		JobID:  item.JobID,
		Topic:  item.Topic,
		Style:  item.Style,
		Status: string(item.Status),
		Stage:  item.Status.StageKey(),
		Progress: QueueProgress{
			Stage:   item.ProgressStage,
			Percent: item.ProgressPercent,
			Message: item.ProgressMessage,
		},
		ErrorMessage:  item.ErrorMessage,
		AudioSeconds:  item.AudioSeconds,
		SynthProvider: item.SynthProvider,
		FinalFile:     item.FinalFile,
	}
	if !item.CreatedAt.IsZero() {
		dto.CreatedAt = item.CreatedAt.UTC().Format(dateTimeFormat)
	}
	if !item.UpdatedAt.IsZero() {
		dto.UpdatedAt = item.UpdatedAt.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromQueueItems converts a slice of queue records into API DTOs.
func FromQueueItems(items []*queue.Item) []QueueItem {
	if len(items) == 0 {
		return nil
	}
	out := make([]QueueItem, 0, len(items))
	for _, item := range items {
		out = append(out, FromQueueItem(item))
	}
	return out
}

// FromHealthSummary converts queue counts to the API payload shape.
func FromHealthSummary(summary queue.HealthSummary) QueueStats {
	return QueueStats{
		Total:      summary.Total,
		Pending:    summary.Pending,
		Processing: summary.Processing,
		Ready:      summary.Ready,
		Failed:     summary.Failed,
		Completed:  summary.Completed,
	}
}

// FromStatusSummary converts a workflow status summary to the API payload.
func FromStatusSummary(summary workflow.StatusSummary) WorkflowStatus {
	healthNames := make([]string, 0, len(summary.StageHealth))
	for name := range summary.StageHealth {
		healthNames = append(healthNames, name)
	}
	slices.Sort(healthNames)

	health := make([]StageHealth, 0, len(healthNames))
	for _, name := range healthNames {
		h := summary.StageHealth[name]
		health = append(health, StageHealth{Name: name, Ready: h.Ready, Detail: h.Detail})
	}

	wf := WorkflowStatus{
		Running:     summary.Running,
		QueueStats:  FromHealthSummary(summary.Queue),
		StageHealth: health,
		LastError:   summary.LastError,
	}
	if summary.LastItem != nil {
		last := FromQueueItem(summary.LastItem)
		wf.LastItem = &last
	}
	return wf
}
