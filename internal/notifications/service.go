package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"clipshare/internal/config"
)

// Event statuses carried in completion payloads.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Service defines the completion-event surface exposed to workflow components.
//
// Events are published to the channel "<client_id>-<stage>-finish" so a
// client subscribed for its own job learns the outcome of each stage.
type Service interface {
	NotifyStageComplete(ctx context.Context, clientID, stage string, response any) error
	NotifyStageFailed(ctx context.Context, clientID, stage string, response any) error
	TestNotification(ctx context.Context, clientID string) error
	Close() error
}

// Message is the JSON payload published for every completion event.
type Message struct {
	Status   string `json:"status"`
	Response any    `json:"response"`
}

// ChannelName returns the pub/sub channel for a client and stage.
func ChannelName(clientID, stage string) string {
	return fmt.Sprintf("%s-%s-finish", clientID, stage)
}

// NewService builds a completion notifier backed by Redis pub/sub when
// configured. When no Redis address is configured, a noop implementation is
// returned.
func NewService(cfg *config.Config) (Service, error) {
	addr := strings.TrimSpace(cfg.Notifications.RedisAddr)
	if addr == "" {
		return noopService{}, nil
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.Notifications.RedisPassword,
		DB:           cfg.Notifications.RedisDB,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})

	pingCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &redisService{client: client, timeout: timeout}, nil
}

type redisService struct {
	client  *redis.Client
	timeout time.Duration
}

func (r *redisService) NotifyStageComplete(ctx context.Context, clientID, stage string, response any) error {
	return r.publish(ctx, clientID, stage, Message{Status: StatusSuccess, Response: response})
}

func (r *redisService) NotifyStageFailed(ctx context.Context, clientID, stage string, response any) error {
	return r.publish(ctx, clientID, stage, Message{Status: StatusFailed, Response: response})
}

func (r *redisService) TestNotification(ctx context.Context, clientID string) error {
	return r.publish(ctx, clientID, "test", Message{Status: StatusSuccess, Response: "notification system test"})
}

func (r *redisService) publish(ctx context.Context, clientID, stage string, msg Message) error {
	clientID = strings.TrimSpace(clientID)
	stage = strings.TrimSpace(stage)
	if clientID == "" || stage == "" {
		return fmt.Errorf("notification requires client id and stage, got %q/%q", clientID, stage)
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.client.Publish(pubCtx, ChannelName(clientID, stage), data).Err(); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

func (r *redisService) Close() error {
	return r.client.Close()
}

type noopService struct{}

func (noopService) NotifyStageComplete(context.Context, string, string, any) error { return nil }
func (noopService) NotifyStageFailed(context.Context, string, string, any) error   { return nil }
func (noopService) TestNotification(context.Context, string) error                 { return nil }
func (noopService) Close() error                                                   { return nil }
