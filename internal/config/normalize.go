package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTwitter()
	c.normalizeTrim()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTwitter() {
	if c.Twitter.ConsumerKey == "" {
		if value, ok := os.LookupEnv("CLIPSHARE_CONSUMER_KEY"); ok {
			c.Twitter.ConsumerKey = value
		}
	}
	if c.Twitter.ConsumerSecret == "" {
		if value, ok := os.LookupEnv("CLIPSHARE_CONSUMER_SECRET"); ok {
			c.Twitter.ConsumerSecret = value
		}
	}
	c.Twitter.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.Twitter.APIBaseURL), "/")
	if c.Twitter.APIBaseURL == "" {
		c.Twitter.APIBaseURL = defaultAPIBaseURL
	}
	c.Twitter.UploadBaseURL = strings.TrimRight(strings.TrimSpace(c.Twitter.UploadBaseURL), "/")
	if c.Twitter.UploadBaseURL == "" {
		c.Twitter.UploadBaseURL = defaultUploadBaseURL
	}
	if c.Twitter.ChunkSizeBytes == 0 {
		c.Twitter.ChunkSizeBytes = defaultChunkSizeBytes
	}
	if c.Twitter.StatusPollInterval == 0 {
		c.Twitter.StatusPollInterval = defaultStatusPollInterval
	}
	if c.Twitter.RequestTimeout == 0 {
		c.Twitter.RequestTimeout = defaultRequestTimeout
	}
}

func (c *Config) normalizeTrim() {
	c.Trim.FFmpegBinary = strings.TrimSpace(c.Trim.FFmpegBinary)
	if c.Trim.FFmpegBinary == "" {
		c.Trim.FFmpegBinary = defaultFFmpegBinary
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
