package trimming

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"clipshare/internal/config"
	"clipshare/internal/logging"
	"clipshare/internal/queue"
	"clipshare/internal/services"
	"clipshare/internal/stage"
	"clipshare/internal/staging"
)

var commandContext = exec.CommandContext

// Trimmer cuts the downloaded video to the requested window with ffmpeg.
type Trimmer struct {
	cfg    *config.Config
	store  *queue.Store
	logger *slog.Logger
	binary string
}

// NewTrimmer constructs the trim stage handler.
func NewTrimmer(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Trimmer {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String(logging.FieldComponent, "trimmer"))
	}
	return &Trimmer{cfg: cfg, store: store, logger: stageLogger, binary: cfg.Trim.FFmpegBinary}
}

func (t *Trimmer) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, t.logger)
	if item.ProgressStage == "" {
		item.ProgressStage = "Trimming"
	}
	item.ProgressMessage = "Trimming video"
	item.ProgressPercent = 0
	item.ErrorMessage = ""
	logger.Info("starting trim",
		logging.String("source_file", item.SourceFile),
		logging.Float64("trim_start", item.TrimStart),
		logging.Float64("trim_duration", item.TrimDuration))
	return nil
}

func (t *Trimmer) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, t.logger)

	if strings.TrimSpace(item.SourceFile) == "" {
		return services.Wrap(services.ErrValidation, "trim", "validate inputs",
			"No downloaded file present for trimming; run the download stage first", nil)
	}
	if _, err := os.Stat(item.SourceFile); err != nil {
		return services.Wrap(services.ErrValidation, "trim", "validate inputs",
			fmt.Sprintf("Downloaded file %s is missing", item.SourceFile), err)
	}
	if item.TrimStart < 0 || item.TrimDuration < 0 {
		return services.Wrap(services.ErrValidation, "trim", "validate parameters",
			fmt.Sprintf("Trim window start=%v duration=%v is invalid", item.TrimStart, item.TrimDuration), nil)
	}

	jobDir := staging.JobDir(t.cfg.Paths.StagingDir, item.ID)
	target := filepath.Join(jobDir, "trimmed"+filepath.Ext(item.SourceFile))

	args := []string{"-y", "-ss", formatSeconds(item.TrimStart)}
	if item.TrimDuration > 0 {
		args = append(args, "-t", formatSeconds(item.TrimDuration))
	}
	args = append(args, "-i", item.SourceFile, "-c", "copy", target)

	cmd := commandContext(ctx, t.binary, args...)
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	logger.Info("running ffmpeg", logging.String("args", strings.Join(args, " ")))
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return services.Wrap(services.ErrTimeout, "trim", "run ffmpeg", "Trim cancelled or timed out", ctx.Err())
		}
		return services.Wrap(services.ErrExternalTool, "trim", "run ffmpeg",
			fmt.Sprintf("ffmpeg failed: %s", tailLines(output.String(), 5)), err)
	}

	item.TrimmedFile = target
	item.SetProgressComplete("Trimming", "Trim completed")
	logger.Info("trim completed", logging.String("trimmed_file", target))
	return nil
}

// HealthCheck verifies the ffmpeg binary is resolvable.
func (t *Trimmer) HealthCheck(ctx context.Context) stage.Health {
	const name = "trimmer"
	if t.binary == "" {
		return stage.Unhealthy(name, "ffmpeg binary not configured")
	}
	if _, err := exec.LookPath(t.binary); err != nil {
		return stage.Unhealthy(name, fmt.Sprintf("ffmpeg not found: %v", err))
	}
	return stage.Healthy(name)
}

func formatSeconds(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func tailLines(output string, n int) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
