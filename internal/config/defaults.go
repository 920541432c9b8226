package config

const (
	defaultStagingDir         = "~/.local/share/clipshare/staging"
	defaultLogDir             = "~/.local/share/clipshare/logs"
	defaultAPIBaseURL         = "https://api.twitter.com/1.1"
	defaultUploadBaseURL      = "https://upload.twitter.com/1.1"
	defaultChunkSizeBytes     = 1024 * 1024
	defaultStatusPollInterval = 1.0
	defaultRequestTimeout     = 30
	defaultFFmpegBinary       = "ffmpeg"
	defaultNotifyTimeout      = 5
	defaultLogFormat          = "text"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
		},
		Twitter: Twitter{
			APIBaseURL:         defaultAPIBaseURL,
			UploadBaseURL:      defaultUploadBaseURL,
			ChunkSizeBytes:     defaultChunkSizeBytes,
			StatusPollInterval: defaultStatusPollInterval,
			RequestTimeout:     defaultRequestTimeout,
		},
		Trim: Trim{
			FFmpegBinary: defaultFFmpegBinary,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
		},
		Workflow: Workflow{
			QueuePollInterval:  5,
			ErrorRetryInterval: 10,
			HeartbeatInterval:  15,
			HeartbeatTimeout:   120,
			MaxAttempts:        3,
			DownloadTimeout:    900,
			TrimTimeout:        600,
			PublishTimeout:     900,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
