package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"clipshare/internal/logging"
	"clipshare/internal/queue"
	"clipshare/internal/services"
)

func (m *Manager) processItem(ctx context.Context, logger *slog.Logger, item *queue.Item) error {
	st, ok := m.stageForStatus(item.Status)
	if !ok {
		logger.Warn("no stage configured for status", logging.String("status", string(item.Status)))
		m.waitForItemOrShutdown(ctx)
		return nil
	}

	requestID := uuid.NewString()
	stageCtx := services.WithRequestID(services.WithStage(services.WithItemID(ctx, item.ID), st.name), requestID)
	stageLogger := logging.WithContext(stageCtx, logger.With(
		logging.String(logging.FieldComponent, "workflow-manager"),
		logging.String(logging.FieldClientID, item.ClientID),
	))

	if err := m.transitionToProcessing(stageCtx, st, item); err != nil {
		stageLogger.Error("failed to transition item to processing", logging.Error(err))
		m.setLastError(err)
		return err
	}

	return m.executeStage(stageCtx, stageLogger, st, item)
}

func (m *Manager) executeStage(ctx context.Context, stageLogger *slog.Logger, st pipelineStage, item *queue.Item) error {
	stageStart := time.Now()
	stageLogger.Info("stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("processing_status", string(st.processingStatus)),
		logging.String("video_url", item.VideoURL),
	)

	if st.handler == nil {
		stageLogger.Warn("missing stage handler", logging.String("stage", st.name))
		item.SetFailed(fmt.Sprintf("stage %s missing handler", st.name))
		item.ScrubCredentials()
		if err := m.store.Update(ctx, item); err != nil {
			stageLogger.Error("failed to persist missing handler failure", logging.Error(err))
		}
		err := errors.New("stage handler unavailable")
		m.setLastError(err)
		return err
	}

	if err := st.handler.Prepare(ctx, item); err != nil {
		m.handleStageFailure(ctx, st, item, err)
		m.setLastError(err)
		return err
	}
	if err := m.store.Update(ctx, item); err != nil {
		wrapped := fmt.Errorf("persist stage preparation: %w", err)
		stageLogger.Error("failed to persist stage preparation", logging.Error(wrapped))
		m.setLastError(wrapped)
		return wrapped
	}

	execErr := m.executeWithHeartbeat(ctx, st, item)
	if execErr != nil {
		if errors.Is(execErr, context.Canceled) && ctx.Err() != nil {
			stageLogger.Debug("stage interrupted by shutdown")
			return execErr
		}
		m.handleStageFailure(ctx, st, item, execErr)
		m.setLastError(execErr)
		return execErr
	}

	if item.Status == st.processingStatus || item.Status == "" {
		item.Status = st.doneStatus
	}
	item.LastHeartbeat = nil
	if item.Status.IsTerminal() {
		item.ScrubCredentials()
	}
	if err := m.store.Update(ctx, item); err != nil {
		wrapped := fmt.Errorf("persist stage result: %w", err)
		stageLogger.Error("failed to persist stage result", logging.Error(wrapped))
		m.setLastError(wrapped)
		return wrapped
	}
	stageLogger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String("next_status", string(item.Status)),
		logging.Duration("stage_duration", time.Since(stageStart)),
	)
	m.notifyStageComplete(ctx, stageLogger, st, item)
	return nil
}

// executeWithHeartbeat runs the stage handler under its configured timeout
// while a background loop refreshes the item heartbeat.
func (m *Manager) executeWithHeartbeat(ctx context.Context, st pipelineStage, item *queue.Item) error {
	execCtx := ctx
	if st.timeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, st.timeout)
		defer cancel()
	}

	hbCtx, hbCancel := context.WithCancel(ctx)
	var hbWG sync.WaitGroup
	hbWG.Add(1)
	go m.heartbeat.StartLoop(hbCtx, &hbWG, item.ID)

	execErr := st.handler.Execute(execCtx, item)
	hbCancel()
	hbWG.Wait()
	return execErr
}

func (m *Manager) transitionToProcessing(ctx context.Context, st pipelineStage, item *queue.Item) error {
	now := time.Now().UTC()
	item.Status = st.processingStatus
	item.ErrorMessage = ""
	item.LastHeartbeat = &now
	if err := m.store.Update(ctx, item); err != nil {
		return fmt.Errorf("persist processing transition: %w", err)
	}
	return nil
}
