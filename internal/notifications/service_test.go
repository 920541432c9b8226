package notifications_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"clipshare/internal/notifications"
	"clipshare/internal/testsupport"
)

func setupService(t *testing.T) (*miniredis.Miniredis, notifications.Service) {
	t.Helper()

	mr := miniredis.NewMiniRedis()
	if err := mr.Start(); err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	cfg := testsupport.NewConfig(t)
	cfg.Notifications.RedisAddr = mr.Addr()

	svc, err := notifications.NewService(cfg)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	t.Cleanup(func() { svc.Close() })
	return mr, svc
}

func subscribe(t *testing.T, addr, channel string) *redis.PubSub {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { client.Close() })

	sub := client.Subscribe(context.Background(), channel)
	if _, err := sub.Receive(context.Background()); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	t.Cleanup(func() { sub.Close() })
	return sub
}

func receiveMessage(t *testing.T, sub *redis.PubSub) notifications.Message {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	raw, err := sub.ReceiveMessage(ctx)
	if err != nil {
		t.Fatalf("receive message: %v", err)
	}
	var msg notifications.Message
	if err := json.Unmarshal([]byte(raw.Payload), &msg); err != nil {
		t.Fatalf("unmarshal payload %q: %v", raw.Payload, err)
	}
	return msg
}

func TestChannelName(t *testing.T) {
	if got := notifications.ChannelName("abc", "download"); got != "abc-download-finish" {
		t.Fatalf("ChannelName = %q", got)
	}
}

func TestNotifyStageCompletePublishes(t *testing.T) {
	mr, svc := setupService(t)
	sub := subscribe(t, mr.Addr(), "abc-tweet-finish")

	if err := svc.NotifyStageComplete(context.Background(), "abc", "tweet", "710511363345354753"); err != nil {
		t.Fatalf("NotifyStageComplete: %v", err)
	}

	msg := receiveMessage(t, sub)
	if msg.Status != notifications.StatusSuccess {
		t.Fatalf("status = %q, want success", msg.Status)
	}
	if msg.Response != "710511363345354753" {
		t.Fatalf("response = %v", msg.Response)
	}
}

func TestNotifyStageFailedPublishes(t *testing.T) {
	mr, svc := setupService(t)
	sub := subscribe(t, mr.Addr(), "abc-download-finish")

	if err := svc.NotifyStageFailed(context.Background(), "abc", "download", "fetch failed"); err != nil {
		t.Fatalf("NotifyStageFailed: %v", err)
	}

	msg := receiveMessage(t, sub)
	if msg.Status != notifications.StatusFailed {
		t.Fatalf("status = %q, want failed", msg.Status)
	}
	if msg.Response != "fetch failed" {
		t.Fatalf("response = %v", msg.Response)
	}
}

func TestPublishRequiresClientAndStage(t *testing.T) {
	_, svc := setupService(t)

	if err := svc.NotifyStageComplete(context.Background(), "", "tweet", nil); err == nil {
		t.Fatal("expected error for missing client id")
	}
	if err := svc.NotifyStageComplete(context.Background(), "abc", " ", nil); err == nil {
		t.Fatal("expected error for missing stage")
	}
}

func TestNoopServiceWhenUnconfigured(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Notifications.RedisAddr = ""

	svc, err := notifications.NewService(cfg)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	defer svc.Close()

	if err := svc.NotifyStageComplete(context.Background(), "abc", "download", nil); err != nil {
		t.Fatalf("noop notify: %v", err)
	}
}
