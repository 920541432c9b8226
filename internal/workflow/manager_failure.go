package workflow

import (
	"context"
	"errors"
	"strings"

	"clipshare/internal/logging"
	"clipshare/internal/queue"
	"clipshare/internal/services"
)

// handleStageFailure applies the retry policy: transient failures send the
// item back to the stage start status until the attempt ceiling is reached,
// everything else fails the item immediately. Only a final failure publishes
// a completion event.
func (m *Manager) handleStageFailure(ctx context.Context, st pipelineStage, item *queue.Item, stageErr error) {
	logger := logging.WithContext(ctx, m.logger.With(
		logging.String(logging.FieldComponent, "workflow-manager"),
		logging.String(logging.FieldClientID, item.ClientID),
	))

	message := failureMessage(st.name, stageErr)
	item.Attempts++

	if services.IsRetryable(stageErr) && item.Attempts < m.cfg.Workflow.MaxAttempts {
		item.Status = st.startStatus
		item.ErrorMessage = message
		item.LastHeartbeat = nil
		logger.Warn("stage failed, will retry",
			logging.Error(stageErr),
			logging.String(logging.FieldEventType, "stage_retry"),
			logging.Int("attempts", item.Attempts),
			logging.Int("max_attempts", m.cfg.Workflow.MaxAttempts),
		)
		if err := m.store.Update(ctx, item); err != nil {
			logger.Error("failed to persist stage retry", logging.Error(err))
		}
		return
	}

	item.SetFailed(message)
	item.ScrubCredentials()
	logger.Error("stage failed",
		logging.Error(stageErr),
		logging.String(logging.FieldEventType, "stage_failure"),
		logging.String("error_message", message),
		logging.Int("attempts", item.Attempts),
	)

	if err := m.store.Update(ctx, item); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, could not update stage failure")
		} else {
			logger.Error("failed to persist stage failure", logging.Error(err))
		}
	}

	m.notifyStageFailed(ctx, logger, st, item, message)
}

func failureMessage(stageName string, stageErr error) string {
	if stageErr == nil {
		return stageName + " failed without error detail"
	}
	if message := strings.TrimSpace(stageErr.Error()); message != "" {
		return message
	}
	return stageName + " failed"
}
