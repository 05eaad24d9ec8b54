package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"newsreel/internal/logging"
	"newsreel/internal/queue"
	"newsreel/internal/services"
)

func (m *Manager) handleStageFailure(ctx context.Context, stageLogger *slog.Logger, stageName string, item *queue.Item, stageErr error) {
	message := m.classifyStageFailure(stageName, stageErr)
	item.SetFailed(message)

	stageLogger.Error("stage failed",
		logging.Error(stageErr),
		logging.String("error_message", strings.TrimSpace(message)),
		logging.String(logging.FieldEventType, "stage_failure"),
		logging.String(logging.FieldErrorHint, "inspect the job with newsreel queue show"),
	)

	if err := m.store.Update(ctx, item); err != nil {
		if errors.Is(err, context.Canceled) {
			stageLogger.Debug("daemon shutting down, could not update stage failure")
		} else {
			stageLogger.Error("failed to persist stage failure", logging.Error(err))
		}
	}
	m.setLastItem(item)
}

func (m *Manager) classifyStageFailure(stageName string, stageErr error) string {
	if stageErr == nil {
		return fmt.Sprintf("%s failed without error detail", stageName)
	}
	message := strings.TrimSpace(services.Details(stageErr).Message)
	if message == "" {
		message = strings.TrimSpace(stageErr.Error())
	}
	if message == "" {
		message = fmt.Sprintf("%s failed", stageName)
	}
	return message
}
