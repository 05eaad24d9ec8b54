package queue

import (
	"context"
	"fmt"
	"time"
)

// ResetStuckProcessing rolls any in-flight items back to the start of their
// stage. Used at startup so work interrupted by a crash or restart resumes.
func (s *Store) ResetStuckProcessing(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)
	var total int64
	now := formatTime(time.Now().UTC())
	for _, transition := range stageRollbackTransitions {
		res, err := s.execWithRetry(ctx, `UPDATE queue_items SET
			status = ?, progress_stage = NULL, progress_percent = 0,
			progress_message = NULL, last_heartbeat = NULL, updated_at = ?
		WHERE status = ?`,
			string(transition.to), now, string(transition.from),
		)
		if err != nil {
			return total, fmt.Errorf("reset %s items: %w", transition.from, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("reset %s items: rows affected: %w", transition.from, err)
		}
		total += affected
	}
	return total, nil
}

// ReclaimStaleProcessing rolls back in-flight items whose heartbeat is older
// than the given cutoff, returning the number reclaimed.
func (s *Store) ReclaimStaleProcessing(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx = ensureContext(ctx)
	var total int64
	now := formatTime(time.Now().UTC())
	threshold := formatTime(cutoff)
	for _, transition := range stageRollbackTransitions {
		res, err := s.execWithRetry(ctx, `UPDATE queue_items SET
			status = ?, progress_stage = NULL, progress_percent = 0,
			progress_message = NULL, last_heartbeat = NULL, updated_at = ?
		WHERE status = ? AND (last_heartbeat IS NULL OR last_heartbeat < ?)`,
			string(transition.to), now, string(transition.from), threshold,
		)
		if err != nil {
			return total, fmt.Errorf("reclaim %s items: %w", transition.from, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("reclaim %s items: rows affected: %w", transition.from, err)
		}
		total += affected
	}
	return total, nil
}

// UpdateHeartbeat records liveness for an in-flight item.
func (s *Store) UpdateHeartbeat(ctx context.Context, id int64) error {
	ctx = ensureContext(ctx)
	now := formatTime(time.Now().UTC())
	if err := s.execWithoutResultRetry(ctx,
		`UPDATE queue_items SET last_heartbeat = ?, updated_at = ? WHERE id = ?`,
		now, now, id,
	); err != nil {
		return fmt.Errorf("update heartbeat for item %d: %w", id, err)
	}
	return nil
}

// RetryFailed returns a failed item to pending so the workflow picks it up again.
func (s *Store) RetryFailed(ctx context.Context, id int64) error {
	ctx = ensureContext(ctx)
	res, err := s.execWithRetry(ctx, `UPDATE queue_items SET
		status = ?, error_message = NULL, progress_stage = NULL, progress_percent = 0,
		progress_message = NULL, last_heartbeat = NULL, cancel_requested = 0,
		stage_attempts = 0, updated_at = ?
	WHERE id = ? AND status = ?`,
		string(StatusPending), formatTime(time.Now().UTC()), id, string(StatusFailed),
	)
	if err != nil {
		return fmt.Errorf("retry item %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("retry item %d: rows affected: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("retry item %d: not failed or not found", id)
	}
	return nil
}

// RequestCancel sets the cancel flag on a non-terminal item.
func (s *Store) RequestCancel(ctx context.Context, id int64) error {
	ctx = ensureContext(ctx)
	res, err := s.execWithRetry(ctx, `UPDATE queue_items SET
		cancel_requested = 1, updated_at = ?
	WHERE id = ? AND status NOT IN (?, ?)`,
		formatTime(time.Now().UTC()), id, string(StatusCompleted), string(StatusFailed),
	)
	if err != nil {
		return fmt.Errorf("request cancel for item %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("request cancel for item %d: rows affected: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("cancel item %d: already terminal or not found", id)
	}
	return nil
}

// CancelRequested reads the current cancel flag for an item.
func (s *Store) CancelRequested(ctx context.Context, id int64) (bool, error) {
	ctx = ensureContext(ctx)
	var flag int
	row := s.db.QueryRowContext(ctx, `SELECT cancel_requested FROM queue_items WHERE id = ?`, id)
	if err := row.Scan(&flag); err != nil {
		return false, fmt.Errorf("read cancel flag for item %d: %w", id, err)
	}
	return flag != 0, nil
}

// FailAllProcessing marks every in-flight item as failed with the given reason.
// Used during daemon shutdown when resume is not desired.
func (s *Store) FailAllProcessing(ctx context.Context, reason string) (int64, error) {
	ctx = ensureContext(ctx)
	var total int64
	now := formatTime(time.Now().UTC())
	for status := range processingStatuses {
		res, err := s.execWithRetry(ctx, `UPDATE queue_items SET
			status = ?, error_message = ?, progress_percent = 0,
			progress_message = ?, last_heartbeat = NULL, updated_at = ?
		WHERE status = ?`,
			string(StatusFailed), reason, reason, now, string(status),
		)
		if err != nil {
			return total, fmt.Errorf("fail %s items: %w", status, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("fail %s items: rows affected: %w", status, err)
		}
		total += affected
	}
	return total, nil
}
