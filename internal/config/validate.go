package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTwitter(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTwitter() error {
	if c.Twitter.ConsumerKey == "" || c.Twitter.ConsumerSecret == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/clipshare/config.toml"
		}
		return fmt.Errorf("twitter.consumer_key and twitter.consumer_secret are required. Set CLIPSHARE_CONSUMER_KEY/CLIPSHARE_CONSUMER_SECRET env vars or edit %s (create with 'clipshare config init')", defaultPath)
	}
	if c.Twitter.ChunkSizeBytes <= 0 {
		return errors.New("twitter.chunk_size_bytes must be positive")
	}
	if c.Twitter.StatusPollInterval <= 0 {
		return errors.New("twitter.status_poll_interval must be positive")
	}
	if c.Twitter.RequestTimeout <= 0 {
		return errors.New("twitter.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if err := ensurePositiveMap(map[string]int{
		"workflow.queue_poll_interval":  c.Workflow.QueuePollInterval,
		"workflow.error_retry_interval": c.Workflow.ErrorRetryInterval,
		"workflow.download_timeout":     c.Workflow.DownloadTimeout,
		"workflow.trim_timeout":         c.Workflow.TrimTimeout,
		"workflow.publish_timeout":      c.Workflow.PublishTimeout,
	}); err != nil {
		return err
	}
	if c.Workflow.MaxAttempts < 1 {
		return errors.New("workflow.max_attempts must be at least 1")
	}
	if c.Workflow.HeartbeatInterval <= 0 {
		return errors.New("workflow.heartbeat_interval must be positive")
	}
	if c.Workflow.HeartbeatTimeout <= 0 {
		return errors.New("workflow.heartbeat_timeout must be positive")
	}
	if c.Workflow.HeartbeatTimeout <= c.Workflow.HeartbeatInterval {
		return errors.New("workflow.heartbeat_timeout must be greater than workflow.heartbeat_interval")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RedisAddr == "" {
		return nil
	}
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	if c.Notifications.RedisDB < 0 {
		return errors.New("notifications.redis_db must not be negative")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for name, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}
