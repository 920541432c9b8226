package downloading

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"clipshare/internal/config"
	"clipshare/internal/fileutil"
	"clipshare/internal/logging"
	"clipshare/internal/queue"
	"clipshare/internal/services"
	"clipshare/internal/stage"
	"clipshare/internal/staging"
)

// Downloader fetches the source video into the job's staging directory.
type Downloader struct {
	cfg    *config.Config
	store  *queue.Store
	logger *slog.Logger
	client *http.Client
}

// NewDownloader constructs the download stage handler.
func NewDownloader(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Downloader {
	return NewDownloaderWithClient(cfg, store, logger, &http.Client{Timeout: 10 * time.Minute})
}

// NewDownloaderWithClient allows injecting the HTTP client (used in tests).
func NewDownloaderWithClient(cfg *config.Config, store *queue.Store, logger *slog.Logger, client *http.Client) *Downloader {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String(logging.FieldComponent, "downloader"))
	}
	return &Downloader{cfg: cfg, store: store, logger: stageLogger, client: client}
}

func (d *Downloader) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, d.logger)
	if item.ProgressStage == "" {
		item.ProgressStage = "Downloading"
	}
	item.ProgressMessage = "Fetching source video"
	item.ProgressPercent = 0
	item.ErrorMessage = ""
	logger.Info("starting download", logging.String("video_url", item.VideoURL))
	return nil
}

func (d *Downloader) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, d.logger)

	parsed, err := url.Parse(strings.TrimSpace(item.VideoURL))
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return services.Wrap(
			services.ErrValidation, "download", "validate source url",
			fmt.Sprintf("Source URL %q is not a valid http(s) URL", item.VideoURL), err)
	}

	jobDir := staging.JobDir(d.cfg.Paths.StagingDir, item.ID)
	if err := fileutil.EnsureDir(jobDir); err != nil {
		return services.Wrap(services.ErrConfiguration, "download", "create staging dir",
			"Failed to create job staging directory; check staging_dir permissions", err)
	}

	target := filepath.Join(jobDir, "source"+sourceExtension(parsed))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return services.Wrap(services.ErrValidation, "download", "build request", "Failed to build download request", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransient, "download", "fetch source", "Failed to reach the source host", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return services.Wrap(services.ErrTransient, "download", "fetch source",
			fmt.Sprintf("Source host returned status %d", resp.StatusCode), nil)
	}

	out, err := os.Create(target)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "download", "create target file",
			"Failed to create download target; check staging_dir permissions", err)
	}
	written, err := io.Copy(out, resp.Body)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(target)
		return services.Wrap(services.ErrTransient, "download", "stream source", "Download interrupted", err)
	}

	item.SourceFile = target
	item.SetProgressComplete("Downloading", fmt.Sprintf("Downloaded %d bytes", written))
	logger.Info("download completed",
		logging.String("source_file", target),
		logging.Int64("bytes", written))
	return nil
}

// HealthCheck verifies the staging directory is writable.
func (d *Downloader) HealthCheck(ctx context.Context) stage.Health {
	const name = "downloader"
	if d.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if err := fileutil.EnsureDir(d.cfg.Paths.StagingDir); err != nil {
		return stage.Unhealthy(name, fmt.Sprintf("staging directory unavailable: %v", err))
	}
	return stage.Healthy(name)
}

func sourceExtension(parsed *url.URL) string {
	ext := path.Ext(parsed.Path)
	switch strings.ToLower(ext) {
	case ".mp4", ".mov", ".webm", ".m4v", ".avi", ".mkv", ".ts":
		return strings.ToLower(ext)
	default:
		return ".mp4"
	}
}
