package workflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"clipshare/internal/config"
	"clipshare/internal/downloading"
	"clipshare/internal/notifications"
	"clipshare/internal/publishing"
	"clipshare/internal/queue"
	"clipshare/internal/trimming"
)

// Manager coordinates queue processing using registered stage handlers.
type Manager struct {
	cfg          *config.Config
	store        *queue.Store
	logger       *slog.Logger
	pollInterval time.Duration
	notifier     notifications.Service

	heartbeat *HeartbeatMonitor
	stages    []pipelineStage

	mu      sync.RWMutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	lastErr error
}

// NewManager constructs a workflow manager with the default stage handlers
// and a notifier built from configuration.
func NewManager(cfg *config.Config, store *queue.Store, logger *slog.Logger) (*Manager, error) {
	notifier, err := notifications.NewService(cfg)
	if err != nil {
		return nil, err
	}
	m := NewManagerWithNotifier(cfg, store, logger, notifier)
	m.ConfigureStages(StageSet{
		Downloader: downloading.NewDownloader(cfg, store, logger),
		Trimmer:    trimming.NewTrimmer(cfg, store, logger),
		Publisher:  publishing.NewPublisher(cfg, store, logger),
	})
	return m, nil
}

// NewManagerWithNotifier constructs a workflow manager with a custom notifier
// (used in tests). Stage handlers must be configured before Start.
func NewManagerWithNotifier(cfg *config.Config, store *queue.Store, logger *slog.Logger, notifier notifications.Service) *Manager {
	return &Manager{
		cfg:          cfg,
		store:        store,
		logger:       logger,
		notifier:     notifier,
		pollInterval: time.Duration(cfg.Workflow.QueuePollInterval) * time.Second,
		heartbeat: NewHeartbeatMonitor(
			store,
			logger,
			time.Duration(cfg.Workflow.HeartbeatInterval)*time.Second,
			time.Duration(cfg.Workflow.HeartbeatTimeout)*time.Second,
		),
	}
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

// LastError reports the most recent background processing error.
func (m *Manager) LastError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

// Running reports whether background processing is active.
func (m *Manager) Running() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}
