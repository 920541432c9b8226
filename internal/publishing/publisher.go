package publishing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"clipshare/internal/config"
	"clipshare/internal/logging"
	"clipshare/internal/queue"
	"clipshare/internal/services"
	"clipshare/internal/stage"
	"clipshare/internal/staging"
	"clipshare/internal/twitter"
)

// Client is the slice of the platform client the publish stage needs.
type Client interface {
	Upload(ctx context.Context, token twitter.Token, videoPath string) (string, error)
	UpdateStatus(ctx context.Context, token twitter.Token, message, mediaID string) (string, error)
}

// Publisher uploads the trimmed video and posts the tweet.
type Publisher struct {
	cfg    *config.Config
	store  *queue.Store
	logger *slog.Logger
	client Client
}

// NewPublisher constructs the publish stage handler using the configured
// platform client.
func NewPublisher(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Publisher {
	return NewPublisherWithClient(cfg, store, logger, twitter.NewClient(cfg, logger))
}

// NewPublisherWithClient allows injecting the platform client (used in tests).
func NewPublisherWithClient(cfg *config.Config, store *queue.Store, logger *slog.Logger, client Client) *Publisher {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String(logging.FieldComponent, "publisher"))
	}
	return &Publisher{cfg: cfg, store: store, logger: stageLogger, client: client}
}

func (p *Publisher) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, p.logger)
	if item.ProgressStage == "" {
		item.ProgressStage = "Publishing"
	}
	item.ProgressMessage = "Uploading video"
	item.ProgressPercent = 0
	item.ErrorMessage = ""
	logger.Info("starting publish", logging.String("trimmed_file", item.TrimmedFile))
	return nil
}

func (p *Publisher) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, p.logger)

	videoPath := strings.TrimSpace(item.TrimmedFile)
	if videoPath == "" {
		return services.Wrap(services.ErrValidation, "tweet", "validate inputs",
			"No trimmed file present for publishing; run the trim stage first", nil)
	}
	if _, err := os.Stat(videoPath); err != nil {
		return services.Wrap(services.ErrValidation, "tweet", "validate inputs",
			fmt.Sprintf("Trimmed file %s is missing", videoPath), err)
	}
	if item.AccessToken == "" || item.AccessSecret == "" {
		return services.Wrap(services.ErrValidation, "tweet", "validate token",
			"Job is missing its access token pair", nil)
	}
	token := twitter.Token{Key: item.AccessToken, Secret: item.AccessSecret}

	mediaID, err := p.client.Upload(ctx, token, videoPath)
	if err != nil {
		return classify("upload media", err)
	}
	item.MediaID = mediaID
	item.SetProgress("Publishing", "Posting tweet", 80)

	tweetID, err := p.client.UpdateStatus(ctx, token, item.TweetText, mediaID)
	if err != nil {
		return classify("post tweet", err)
	}
	item.TweetID = tweetID
	item.SetProgressComplete("Publishing", fmt.Sprintf("Tweet %s posted", tweetID))
	logger.Info("publish completed",
		logging.String("media_id", mediaID),
		logging.String("tweet_id", tweetID))

	jobDir := staging.JobDir(p.cfg.Paths.StagingDir, item.ID)
	if err := os.RemoveAll(jobDir); err != nil {
		logger.Warn("failed to remove staging directory", logging.Error(err))
	}
	return nil
}

// HealthCheck verifies the platform client is configured.
func (p *Publisher) HealthCheck(ctx context.Context) stage.Health {
	const name = "publisher"
	if p.client == nil {
		return stage.Unhealthy(name, "platform client unavailable")
	}
	if p.cfg == nil || p.cfg.Twitter.ConsumerKey == "" || p.cfg.Twitter.ConsumerSecret == "" {
		return stage.Unhealthy(name, "consumer credential not configured")
	}
	return stage.Healthy(name)
}

// classify maps platform failures onto the stage error taxonomy: throttling
// and server errors are retryable, everything else carries the remote
// response straight to the failed status.
func classify(operation string, err error) error {
	var apiErr *twitter.APIError
	if errors.As(err, &apiErr) {
		marker := services.ErrProtocol
		if apiErr.Temporary() {
			marker = services.ErrTransient
		}
		return services.Wrap(marker, "tweet", operation, "Platform rejected the request", err)
	}
	var procErr *twitter.ProcessingError
	if errors.As(err, &procErr) {
		return services.Wrap(services.ErrProtocol, "tweet", operation, "Platform failed to process the media", err)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return services.Wrap(services.ErrTimeout, "tweet", operation, "Publish cancelled or timed out", err)
	}
	return services.Wrap(services.ErrTransient, "tweet", operation, "Publish failed", err)
}
