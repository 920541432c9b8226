package workflow

import (
	"context"
	"errors"
	"log/slog"

	"clipshare/internal/logging"
	"clipshare/internal/queue"
)

// notifyStageComplete publishes a success event on the client's channel for
// the finished stage. Exactly one event is published per stage completion.
func (m *Manager) notifyStageComplete(ctx context.Context, logger *slog.Logger, st pipelineStage, item *queue.Item) {
	if m.notifier == nil {
		return
	}
	response := map[string]any{"item_id": item.ID}
	switch st.name {
	case "download":
		response["file"] = item.SourceFile
	case "trim":
		response["file"] = item.TrimmedFile
	case "tweet":
		response["media_id"] = item.MediaID
		response["tweet_id"] = item.TweetID
	}
	if err := m.notifier.NotifyStageComplete(ctx, item.ClientID, st.name, response); err != nil {
		logNotifyError(logger, err, "stage completion notification failed")
	}
}

func (m *Manager) notifyStageFailed(ctx context.Context, logger *slog.Logger, st pipelineStage, item *queue.Item, message string) {
	if m.notifier == nil {
		return
	}
	response := map[string]any{
		"item_id": item.ID,
		"error":   message,
	}
	if err := m.notifier.NotifyStageFailed(ctx, item.ClientID, st.name, response); err != nil {
		logNotifyError(logger, err, "stage failure notification failed")
	}
}

func logNotifyError(logger *slog.Logger, err error, message string) {
	if errors.Is(err, context.Canceled) {
		logger.Debug("daemon shutting down, notification not sent")
		return
	}
	logger.Warn(message,
		logging.Error(err),
		logging.String(logging.FieldEventType, "notification_failed"),
		logging.String(logging.FieldErrorHint, "check redis connectivity"),
	)
}
