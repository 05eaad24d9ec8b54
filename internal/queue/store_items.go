package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewJob inserts a new pending render job and returns the stored item.
func (s *Store) NewJob(ctx context.Context, req JobRequest) (*Item, error) {
	ctx = ensureContext(ctx)
	now := time.Now().UTC()
	jobID := uuid.NewString()

	query := `INSERT INTO queue_items (
		job_id, topic, image_path, style, voice_preference, voice_id, music_path,
		target_seconds, status, script_json, created_at, updated_at
	) VALUES (` + makePlaceholders(12) + `)`

	res, err := s.execWithRetry(ctx, query,
		jobID,
		nullableString(req.Topic),
		nullableString(req.ImagePath),
		nullableString(req.Style),
		nullableString(req.VoicePreference),
		nullableString(req.VoiceID),
		nullableString(req.MusicPath),
		req.TargetSeconds,
		string(StatusPending),
		nullableString(req.ScriptJSON),
		formatTime(now),
		formatTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("insert queue item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("read inserted id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// JobRequest carries the caller-supplied fields for a new render job.
type JobRequest struct {
	Topic           string
	ImagePath       string
	Style           string
	VoicePreference string
	VoiceID         string
	MusicPath       string
	TargetSeconds   int
	ScriptJSON      string
}

// GetByID fetches a single item by primary key.
func (s *Store) GetByID(ctx context.Context, id int64) (*Item, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM queue_items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item %d: %w", id, err)
	}
	return item, nil
}

// FindByJobID fetches a single item by its job identifier.
func (s *Store) FindByJobID(ctx context.Context, jobID string) (*Item, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM queue_items WHERE job_id = ?`, jobID)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find job %s: %w", jobID, err)
	}
	return item, nil
}

// Update persists all mutable fields of the item.
func (s *Store) Update(ctx context.Context, item *Item) error {
	ctx = ensureContext(ctx)
	item.UpdatedAt = time.Now().UTC()

	query := `UPDATE queue_items SET
		topic = ?, image_path = ?, style = ?, voice_preference = ?, voice_id = ?, music_path = ?,
		target_seconds = ?, status = ?, script_json = ?, audio_file = ?, audio_seconds = ?,
		synth_provider = ?, cues_file = ?, scenes_file = ?, rendered_file = ?, final_file = ?,
		error_message = ?, updated_at = ?, progress_stage = ?, progress_percent = ?,
		progress_message = ?, last_heartbeat = ?, cancel_requested = ?, stage_attempts = ?
	WHERE id = ?`

	res, err := s.execWithRetry(ctx, query,
		nullableString(item.Topic),
		nullableString(item.ImagePath),
		nullableString(item.Style),
		nullableString(item.VoicePreference),
		nullableString(item.VoiceID),
		nullableString(item.MusicPath),
		item.TargetSeconds,
		string(item.Status),
		nullableString(item.ScriptJSON),
		nullableString(item.AudioFile),
		item.AudioSeconds,
		nullableString(item.SynthProvider),
		nullableString(item.CuesFile),
		nullableString(item.ScenesFile),
		nullableString(item.RenderedFile),
		nullableString(item.FinalFile),
		nullableString(item.ErrorMessage),
		formatTime(item.UpdatedAt),
		nullableString(item.ProgressStage),
		item.ProgressPercent,
		nullableString(item.ProgressMessage),
		nullableTime(item.LastHeartbeat),
		boolToInt(item.CancelRequested),
		item.StageAttempts,
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("update item %d: %w", item.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update item %d: rows affected: %w", item.ID, err)
	}
	if affected == 0 {
		return fmt.Errorf("update item %d: not found", item.ID)
	}
	return nil
}

// UpdateProgress writes only the progress fields for an item.
func (s *Store) UpdateProgress(ctx context.Context, item *Item) error {
	ctx = ensureContext(ctx)
	item.UpdatedAt = time.Now().UTC()
	err := s.execWithoutResultRetry(ctx, `UPDATE queue_items SET
		progress_stage = ?, progress_percent = ?, progress_message = ?, updated_at = ?
	WHERE id = ?`,
		nullableString(item.ProgressStage),
		item.ProgressPercent,
		nullableString(item.ProgressMessage),
		formatTime(item.UpdatedAt),
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("update progress for item %d: %w", item.ID, err)
	}
	return nil
}

// List returns items filtered by the given statuses, newest first.
// With no statuses it returns every item.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Item, error) {
	ctx = ensureContext(ctx)
	query := `SELECT ` + itemColumns + ` FROM queue_items`
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		query += ` WHERE status IN (` + makePlaceholders(len(statuses)) + `)`
		for _, status := range statuses {
			args = append(args, string(status))
		}
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ItemsByStatus groups all items by their current status.
func (s *Store) ItemsByStatus(ctx context.Context) (map[Status][]*Item, error) {
	items, err := s.List(ensureContext(ctx))
	if err != nil {
		return nil, err
	}
	grouped := make(map[Status][]*Item)
	for _, item := range items {
		grouped[item.Status] = append(grouped[item.Status], item)
	}
	return grouped, nil
}

// NextForStatuses returns the oldest item in any of the given statuses.
func (s *Store) NextForStatuses(ctx context.Context, statuses ...Status) (*Item, error) {
	ctx = ensureContext(ctx)
	if len(statuses) == 0 {
		return nil, nil
	}
	args := make([]any, 0, len(statuses))
	for _, status := range statuses {
		args = append(args, string(status))
	}
	query := `SELECT ` + itemColumns + ` FROM queue_items
		WHERE status IN (` + makePlaceholders(len(statuses)) + `)
		ORDER BY created_at ASC, id ASC LIMIT 1`

	row := s.db.QueryRowContext(ctx, query, args...)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("next item: %w", err)
	}
	return item, nil
}

// Remove deletes a single item by primary key.
func (s *Store) Remove(ctx context.Context, id int64) error {
	ctx = ensureContext(ctx)
	res, err := s.execWithRetry(ctx, `DELETE FROM queue_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("remove item %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove item %d: rows affected: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("remove item %d: not found", id)
	}
	return nil
}

// Clear removes every item and returns the number deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)
	res, err := s.execWithRetry(ctx, `DELETE FROM queue_items`)
	if err != nil {
		return 0, fmt.Errorf("clear queue: %w", err)
	}
	return res.RowsAffected()
}

// ClearCompleted removes completed items and returns the number deleted.
func (s *Store) ClearCompleted(ctx context.Context) (int64, error) {
	return s.clearByStatus(ctx, StatusCompleted)
}

// ClearFailed removes failed items and returns the number deleted.
func (s *Store) ClearFailed(ctx context.Context) (int64, error) {
	return s.clearByStatus(ctx, StatusFailed)
}

func (s *Store) clearByStatus(ctx context.Context, status Status) (int64, error) {
	ctx = ensureContext(ctx)
	res, err := s.execWithRetry(ctx, `DELETE FROM queue_items WHERE status = ?`, string(status))
	if err != nil {
		return 0, fmt.Errorf("clear %s items: %w", status, err)
	}
	return res.RowsAffected()
}

// Health aggregates queue counts for status reporting.
func (s *Store) Health(ctx context.Context) (HealthSummary, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM queue_items GROUP BY status`)
	if err != nil {
		return HealthSummary{}, fmt.Errorf("queue health: %w", err)
	}
	defer rows.Close()

	var summary HealthSummary
	for rows.Next() {
		var (
			raw   string
			count int
		)
		if err := rows.Scan(&raw, &count); err != nil {
			return HealthSummary{}, fmt.Errorf("scan health row: %w", err)
		}
		summary.Total += count
		status := Status(strings.TrimSpace(raw))
		switch {
		case status == StatusPending:
			summary.Pending += count
		case status == StatusFailed:
			summary.Failed += count
		case status == StatusCompleted:
			summary.Completed += count
		case IsProcessingStatus(status):
			summary.Processing += count
		case IsReadyStatus(status):
			summary.Ready += count
		}
	}
	return summary, rows.Err()
}
