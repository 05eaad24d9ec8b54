package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"newsreel/internal/logging"
	"newsreel/internal/queue"
	"newsreel/internal/services"
	"newsreel/internal/stage"
)

// errCancelRequested is the cancellation cause recorded when an operator
// requested cancellation, as opposed to daemon shutdown.
var errCancelRequested = errors.New("cancel requested")

func (m *Manager) processItem(ctx context.Context, logger *slog.Logger, item *queue.Item) error {
	stg, ok := m.stageForStatus(item.Status)
	if !ok {
		logger.Warn("no stage configured for status", logging.String("status", string(item.Status)))
		m.waitForItemOrShutdown(ctx)
		return nil
	}

	requestID := uuid.NewString()
	stageCtx := withStageContext(ctx, stg.name, item, requestID)
	stageLogger := logging.WithContext(stageCtx, logger)

	if err := m.transitionToProcessing(stageCtx, stg.processingStatus, item); err != nil {
		stageLogger.Error("failed to transition item to processing", logging.Error(err))
		m.setLastError(err)
		return err
	}

	return m.executeStage(stageCtx, stageLogger, stg, item)
}

func (m *Manager) executeStage(ctx context.Context, stageLogger *slog.Logger, stg pipelineStage, item *queue.Item) error {
	stageStart := time.Now()
	stageLogger.Info(
		"stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("processing_status", string(stg.processingStatus)),
		logging.String("topic", item.Topic),
		logging.Int("attempt", item.StageAttempts+1),
	)

	handler := stg.handler
	if handler == nil {
		stageLogger.Warn("missing stage handler", logging.String(logging.FieldStage, stg.name))
		item.SetFailed(fmt.Sprintf("stage %s missing handler", stg.name))
		if err := m.store.Update(ctx, item); err != nil {
			stageLogger.Error("failed to persist missing handler failure", logging.Error(err))
		}
		err := errors.New("stage handler unavailable")
		m.setLastError(err)
		return err
	}

	if err := handler.Prepare(ctx, item); err != nil {
		m.resolveStageError(ctx, stageLogger, stg, item, err)
		return err
	}
	if err := m.store.Update(ctx, item); err != nil {
		wrapped := fmt.Errorf("persist stage preparation: %w", err)
		stageLogger.Error("failed to persist stage preparation", logging.Error(wrapped))
		m.setLastError(wrapped)
		return wrapped
	}

	execErr := m.executeWithSupervision(ctx, handler, item)
	if execErr != nil {
		if errors.Is(execErr, errCancelRequested) {
			m.markCancelled(ctx, stageLogger, item)
			return nil
		}
		if errors.Is(execErr, context.Canceled) {
			stageLogger.Debug("stage interrupted by shutdown")
			return execErr
		}
		m.resolveStageError(ctx, stageLogger, stg, item, execErr)
		return execErr
	}

	if item.Status == stg.processingStatus || item.Status == "" {
		item.Status = stg.doneStatus
	}
	item.LastHeartbeat = nil
	item.StageAttempts = 0
	if item.Status == queue.StatusCompleted {
		item.SetProgressComplete(deriveStageLabel(queue.StatusCompleted), "Video ready")
	}
	if err := m.store.Update(ctx, item); err != nil {
		wrapped := fmt.Errorf("persist stage result: %w", err)
		stageLogger.Error("failed to persist stage result", logging.Error(wrapped))
		m.setLastError(wrapped)
		return wrapped
	}
	stageLogger.Info(
		"stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String("next_status", string(item.Status)),
		logging.Duration("stage_duration", time.Since(stageStart)),
	)
	m.setLastItem(item)
	return nil
}

// executeWithSupervision runs the handler while a heartbeat loop keeps the
// item claim fresh and a watcher polls the cancel flag. A cancel request
// cancels the stage context with errCancelRequested as the cause.
func (m *Manager) executeWithSupervision(ctx context.Context, handler stage.Handler, item *queue.Item) error {
	stageCtx, cancelStage := context.WithCancelCause(ctx)
	defer cancelStage(nil)

	var wg sync.WaitGroup
	wg.Add(2)
	go m.heartbeat.StartLoop(stageCtx, &wg, item.ID)
	go m.watchCancel(stageCtx, &wg, item.ID, cancelStage)

	execErr := handler.Execute(stageCtx, item)
	cancelStage(nil)
	wg.Wait()

	if cause := context.Cause(stageCtx); errors.Is(cause, errCancelRequested) {
		return errCancelRequested
	}
	return execErr
}

func (m *Manager) watchCancel(ctx context.Context, wg *sync.WaitGroup, itemID int64, cancelStage context.CancelCauseFunc) {
	defer wg.Done()
	interval := time.Duration(m.cfg.Workflow.CancelCheckInterval) * time.Second
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			requested, err := m.store.CancelRequested(ctx, itemID)
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					m.logger.Warn("cancel flag check failed", logging.Error(err))
				}
				continue
			}
			if requested {
				cancelStage(errCancelRequested)
				return
			}
		}
	}
}

// markCancelled records the cancellation and purges staged artifacts. The
// final output directory is never touched.
func (m *Manager) markCancelled(ctx context.Context, stageLogger *slog.Logger, item *queue.Item) {
	item.SetFailed(queue.CancelledReason)
	if err := m.store.Update(ctx, item); err != nil {
		stageLogger.Error("failed to persist cancellation", logging.Error(err))
	}
	if root := item.StagingRoot(m.cfg.Paths.StagingDir); root != "" {
		if err := os.RemoveAll(root); err != nil {
			stageLogger.Warn("failed to remove staging directory", logging.Error(err))
		}
	}
	stageLogger.Info("job cancelled",
		logging.String(logging.FieldEventType, "job_cancelled"),
	)
	m.setLastItem(item)
}

func (m *Manager) transitionToProcessing(ctx context.Context, processing queue.Status, item *queue.Item) error {
	if processing == "" {
		return errors.New("processing status must not be empty")
	}
	now := time.Now().UTC()
	item.Status = processing
	item.ProgressStage = deriveStageLabel(processing)
	item.ProgressMessage = fmt.Sprintf("%s started", deriveStageLabel(processing))
	item.ProgressPercent = 0
	item.ErrorMessage = ""
	item.LastHeartbeat = &now
	if err := m.store.Update(ctx, item); err != nil {
		return fmt.Errorf("persist processing transition: %w", err)
	}
	m.setLastItem(item)
	return nil
}

// resolveStageError decides between a rollback retry and a terminal failure.
// Transient errors are retried until the stage attempt budget runs out; fatal
// taxonomy errors fail immediately without consuming the budget.
func (m *Manager) resolveStageError(ctx context.Context, stageLogger *slog.Logger, stg pipelineStage, item *queue.Item, stageErr error) {
	m.setLastError(stageErr)

	if services.IsTransient(stageErr) && !services.IsFatal(stageErr) {
		item.StageAttempts++
		if item.StageAttempts < m.cfg.Workflow.MaxStageAttempts {
			m.scheduleRetry(ctx, stageLogger, stg, item, stageErr)
			return
		}
		stageLogger.Warn("stage attempt budget exhausted",
			logging.Int("attempts", item.StageAttempts),
			logging.String(logging.FieldEventType, "stage_retries_exhausted"),
		)
	}

	m.handleStageFailure(ctx, stageLogger, stg.name, item, stageErr)
}

// scheduleRetry rolls the item back to the stage start status so the poll
// loop picks it up again after the backoff window.
func (m *Manager) scheduleRetry(ctx context.Context, stageLogger *slog.Logger, stg pipelineStage, item *queue.Item, stageErr error) {
	backoff := time.Duration(m.cfg.Workflow.RetryBackoffSeconds) * time.Second << (item.StageAttempts - 1)
	stageLogger.Warn("transient stage failure, scheduling retry",
		logging.Error(stageErr),
		logging.Int("attempt", item.StageAttempts),
		logging.Int("max_attempts", m.cfg.Workflow.MaxStageAttempts),
		logging.Duration("backoff", backoff),
		logging.String(logging.FieldEventType, "stage_retry"),
	)

	item.Status = stg.startStatus
	item.ErrorMessage = ""
	item.LastHeartbeat = nil
	item.SetProgress(deriveStageLabel(stg.processingStatus), "Retrying after transient failure", 0)
	if err := m.store.Update(ctx, item); err != nil {
		stageLogger.Error("failed to persist retry rollback", logging.Error(err))
		return
	}
	m.setLastItem(item)

	select {
	case <-ctx.Done():
	case <-time.After(backoff):
	}
}
