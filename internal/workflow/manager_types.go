package workflow

import (
	"time"

	"clipshare/internal/queue"
	"clipshare/internal/stage"
)

// StageSet bundles the handlers for the three pipeline stages.
type StageSet struct {
	Downloader stage.Handler
	Trimmer    stage.Handler
	Publisher  stage.Handler
}

// pipelineStage binds a handler to the status transitions it owns.
type pipelineStage struct {
	name             string
	handler          stage.Handler
	startStatus      queue.Status
	processingStatus queue.Status
	doneStatus       queue.Status
	timeout          time.Duration
}

// ConfigureStages registers the pipeline handlers. Items move through the
// stages in order: a stage claims items at its start status, holds them at
// its processing status, and leaves them at its done status for the next
// stage to pick up.
func (m *Manager) ConfigureStages(set StageSet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stages = []pipelineStage{
		{
			name:             "download",
			handler:          set.Downloader,
			startStatus:      queue.StatusPending,
			processingStatus: queue.StatusDownloading,
			doneStatus:       queue.StatusDownloaded,
			timeout:          time.Duration(m.cfg.Workflow.DownloadTimeout) * time.Second,
		},
		{
			name:             "trim",
			handler:          set.Trimmer,
			startStatus:      queue.StatusDownloaded,
			processingStatus: queue.StatusTrimming,
			doneStatus:       queue.StatusTrimmed,
			timeout:          time.Duration(m.cfg.Workflow.TrimTimeout) * time.Second,
		},
		{
			name:             "tweet",
			handler:          set.Publisher,
			startStatus:      queue.StatusTrimmed,
			processingStatus: queue.StatusPublishing,
			doneStatus:       queue.StatusCompleted,
			timeout:          time.Duration(m.cfg.Workflow.PublishTimeout) * time.Second,
		},
	}
}

func (m *Manager) stageForStatus(status queue.Status) (pipelineStage, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, st := range m.stages {
		if st.startStatus == status {
			return st, true
		}
	}
	return pipelineStage{}, false
}

func (m *Manager) startStatuses() []queue.Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	statuses := make([]queue.Status, 0, len(m.stages))
	for _, st := range m.stages {
		statuses = append(statuses, st.startStatus)
	}
	return statuses
}
