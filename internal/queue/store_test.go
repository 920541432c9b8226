package queue_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"clipshare/internal/queue"
	"clipshare/internal/testsupport"
)

func TestOpenCreatesSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	item, err := store.NewJob(ctx, queue.NewJobParams{
		ClientID:  "abc",
		VideoURL:  "https://clips.example.test/v.mp4",
		TweetText: "hello",
	})
	if err != nil {
		t.Fatalf("NewJob failed: %v", err)
	}
	if item.ID == 0 {
		t.Fatal("expected item ID to be assigned")
	}
	if item.Status != queue.StatusPending {
		t.Fatalf("expected pending status, got %s", item.Status)
	}

	fetched, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched == nil || fetched.ClientID != "abc" || fetched.TweetText != "hello" {
		t.Fatalf("unexpected fetched item: %#v", fetched)
	}
}

func TestNewJobRequiresClientAndURL(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	if _, err := store.NewJob(ctx, queue.NewJobParams{VideoURL: "https://x"}); err == nil {
		t.Fatal("expected error when client id missing")
	}
	if _, err := store.NewJob(ctx, queue.NewJobParams{ClientID: "abc"}); err == nil {
		t.Fatal("expected error when video url missing")
	}
}

func TestUpdateRoundTripsFields(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	item := testsupport.NewJob(t, store, "abc", "https://clips.example.test/v.mp4")

	item.Status = queue.StatusPublishing
	item.SourceFile = "/staging/1/source.mp4"
	item.TrimmedFile = "/staging/1/trimmed.mp4"
	item.MediaID = "710511363345354753"
	item.TweetID = "710511363345354754"
	item.Attempts = 2
	heartbeat := time.Now().UTC()
	item.LastHeartbeat = &heartbeat
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	fetched, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched.Status != queue.StatusPublishing {
		t.Fatalf("status = %s", fetched.Status)
	}
	if fetched.MediaID != "710511363345354753" || fetched.TweetID != "710511363345354754" {
		t.Fatalf("media/tweet ids lost: %#v", fetched)
	}
	if fetched.Attempts != 2 {
		t.Fatalf("attempts = %d, want 2", fetched.Attempts)
	}
	if fetched.LastHeartbeat == nil {
		t.Fatal("heartbeat lost on round trip")
	}
}

func TestScrubCredentialsPersists(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	item := testsupport.NewJob(t, store, "abc", "https://clips.example.test/v.mp4")
	if item.AccessToken == "" {
		t.Fatal("fixture should carry a token")
	}

	item.Status = queue.StatusCompleted
	item.ScrubCredentials()
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	fetched, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched.AccessToken != "" || fetched.AccessSecret != "" {
		t.Fatalf("credentials survived scrub: %#v", fetched)
	}
}

func TestResetStuckProcessing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	cases := []struct {
		name          string
		initialStatus queue.Status
		expected      queue.Status
	}{
		{"downloading", queue.StatusDownloading, queue.StatusPending},
		{"trimming", queue.StatusTrimming, queue.StatusDownloaded},
		{"publishing", queue.StatusPublishing, queue.StatusTrimmed},
	}
	var ids []int64
	for i, tc := range cases {
		item := testsupport.NewJob(t, store, fmt.Sprintf("client-%d", i), "https://clips.example.test/v.mp4")
		item.Status = tc.initialStatus
		item.ProgressStage = tc.name
		if err := store.Update(ctx, item); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		ids = append(ids, item.ID)
	}

	count, err := store.ResetStuckProcessing(ctx)
	if err != nil {
		t.Fatalf("ResetStuckProcessing failed: %v", err)
	}
	if int(count) != len(cases) {
		t.Fatalf("expected %d items reset, got %d", len(cases), count)
	}

	for idx, tc := range cases {
		updated, err := store.GetByID(ctx, ids[idx])
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if updated.Status != tc.expected {
			t.Fatalf("%s: expected status %s, got %s", tc.name, tc.expected, updated.Status)
		}
		if updated.LastHeartbeat != nil {
			t.Fatalf("%s: expected heartbeat cleared", tc.name)
		}
	}
}

func TestReclaimStaleProcessing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	stale := testsupport.NewJob(t, store, "stale", "https://clips.example.test/v.mp4")
	stale.Status = queue.StatusDownloading
	old := time.Now().UTC().Add(-time.Hour)
	stale.LastHeartbeat = &old
	if err := store.Update(ctx, stale); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	fresh := testsupport.NewJob(t, store, "fresh", "https://clips.example.test/v.mp4")
	fresh.Status = queue.StatusTrimming
	now := time.Now().UTC()
	fresh.LastHeartbeat = &now
	if err := store.Update(ctx, fresh); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	count, err := store.ReclaimStaleProcessing(ctx, time.Now().UTC().Add(-time.Minute))
	if err != nil {
		t.Fatalf("ReclaimStaleProcessing failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 reclaimed item, got %d", count)
	}

	reclaimed, err := store.GetByID(ctx, stale.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if reclaimed.Status != queue.StatusPending {
		t.Fatalf("stale item status = %s, want pending", reclaimed.Status)
	}

	untouched, err := store.GetByID(ctx, fresh.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if untouched.Status != queue.StatusTrimming {
		t.Fatalf("fresh item status = %s, want trimming", untouched.Status)
	}
}

func TestRetryFailedResetsAttempts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	item := testsupport.NewJob(t, store, "abc", "https://clips.example.test/v.mp4")
	item.SetFailed("download failed")
	item.Attempts = 3
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	count, err := store.RetryFailed(ctx, item.ID)
	if err != nil {
		t.Fatalf("RetryFailed failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 retried item, got %d", count)
	}

	updated, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if updated.Status != queue.StatusPending {
		t.Fatalf("status = %s, want pending", updated.Status)
	}
	if updated.Attempts != 0 {
		t.Fatalf("attempts = %d, want 0", updated.Attempts)
	}
	if updated.ErrorMessage != "" {
		t.Fatalf("error message not cleared: %q", updated.ErrorMessage)
	}
}

func TestNextForStatusesReturnsOldest(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	first := testsupport.NewJob(t, store, "first", "https://clips.example.test/a.mp4")
	testsupport.NewJob(t, store, "second", "https://clips.example.test/b.mp4")

	next, err := store.NextForStatuses(ctx, queue.StatusPending)
	if err != nil {
		t.Fatalf("NextForStatuses failed: %v", err)
	}
	if next == nil || next.ID != first.ID {
		t.Fatalf("expected oldest pending item, got %#v", next)
	}
}

func TestHealthCounts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.NewJob(t, store, "a", "https://clips.example.test/a.mp4")

	inflight := testsupport.NewJob(t, store, "b", "https://clips.example.test/b.mp4")
	inflight.Status = queue.StatusPublishing
	if err := store.Update(ctx, inflight); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	failed := testsupport.NewJob(t, store, "c", "https://clips.example.test/c.mp4")
	failed.SetFailed("boom")
	if err := store.Update(ctx, failed); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	health, err := store.Health(ctx)
	if err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if health.Total != 3 || health.Pending != 1 || health.Processing != 1 || health.Failed != 1 {
		t.Fatalf("unexpected health summary: %#v", health)
	}
}

func TestParseStatus(t *testing.T) {
	if status, ok := queue.ParseStatus(" Publishing "); !ok || status != queue.StatusPublishing {
		t.Fatalf("ParseStatus = %q, %v", status, ok)
	}
	if _, ok := queue.ParseStatus("uploading"); ok {
		t.Fatal("expected unknown status to be rejected")
	}
}
