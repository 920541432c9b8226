package api_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"clipshare/internal/api"
	"clipshare/internal/queue"
	"clipshare/internal/testsupport"
)

func newService(t *testing.T) (*api.QueueService, *queue.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	return api.NewQueueService(store), store
}

func TestSubmitAndDescribe(t *testing.T) {
	service, _ := newService(t)

	created, err := service.Submit(context.Background(), api.SubmitRequest{
		ClientID:     "abc",
		VideoURL:     "https://clips.example.test/v.mp4",
		TweetText:    "hello",
		AccessToken:  "token",
		AccessSecret: "token-secret",
		TrimStart:    1.5,
		TrimDuration: 10,
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if created.ID == 0 || created.Status != string(queue.StatusPending) {
		t.Fatalf("created = %#v", created)
	}

	got, err := service.Describe(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if got == nil || got.ClientID != "abc" || got.TweetText != "hello" || got.TrimStart != 1.5 {
		t.Fatalf("described = %#v", got)
	}
}

func TestSubmitRequiresClientAndURL(t *testing.T) {
	service, _ := newService(t)

	if _, err := service.Submit(context.Background(), api.SubmitRequest{VideoURL: "https://clips.example.test/v.mp4"}); err == nil {
		t.Fatal("expected error for missing client id")
	}
	if _, err := service.Submit(context.Background(), api.SubmitRequest{ClientID: "abc"}); err == nil {
		t.Fatal("expected error for missing video url")
	}
}

func TestItemPayloadOmitsToken(t *testing.T) {
	service, store := newService(t)
	item := testsupport.NewJob(t, store, "abc", "https://clips.example.test/v.mp4")

	got, err := service.Describe(context.Background(), item.ID)
	if err != nil || got == nil {
		t.Fatalf("Describe: %v, %v", got, err)
	}
	payload, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(strings.ToLower(string(payload)), "token") {
		t.Fatalf("payload leaks token material: %s", payload)
	}
}

func TestListAndStats(t *testing.T) {
	service, store := newService(t)
	testsupport.NewJob(t, store, "abc", "https://clips.example.test/1.mp4")
	second := testsupport.NewJob(t, store, "xyz", "https://clips.example.test/2.mp4")

	second.SetFailed("download failed")
	if err := store.Update(context.Background(), second); err != nil {
		t.Fatalf("Update: %v", err)
	}

	all, err := service.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("list = %d items", len(all))
	}

	failed, err := service.List(context.Background(), queue.StatusFailed)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(failed) != 1 || failed[0].ID != second.ID {
		t.Fatalf("failed list = %#v", failed)
	}

	stats, err := service.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats["pending"] != 1 || stats["failed"] != 1 {
		t.Fatalf("stats = %v", stats)
	}
}

func TestRetryTargetsFailedItems(t *testing.T) {
	service, store := newService(t)
	item := testsupport.NewJob(t, store, "abc", "https://clips.example.test/v.mp4")
	item.SetFailed("download failed")
	item.Attempts = 3
	if err := store.Update(context.Background(), item); err != nil {
		t.Fatalf("Update: %v", err)
	}

	updated, err := service.Retry(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if updated != 1 {
		t.Fatalf("retried %d items, want 1", updated)
	}

	got, err := service.Describe(context.Background(), item.ID)
	if err != nil || got == nil {
		t.Fatalf("Describe: %v", err)
	}
	if got.Status != string(queue.StatusPending) || got.Attempts != 0 {
		t.Fatalf("retried item = %#v", got)
	}
}

func TestClearScopes(t *testing.T) {
	service, store := newService(t)

	completed := testsupport.NewJob(t, store, "abc", "https://clips.example.test/1.mp4")
	completed.Status = queue.StatusCompleted
	if err := store.Update(context.Background(), completed); err != nil {
		t.Fatalf("Update: %v", err)
	}
	failed := testsupport.NewJob(t, store, "abc", "https://clips.example.test/2.mp4")
	failed.SetFailed("boom")
	if err := store.Update(context.Background(), failed); err != nil {
		t.Fatalf("Update: %v", err)
	}
	testsupport.NewJob(t, store, "abc", "https://clips.example.test/3.mp4")

	removed, err := service.Clear(context.Background(), api.ClearScopeCompleted)
	if err != nil || removed != 1 {
		t.Fatalf("clear completed = %d, %v", removed, err)
	}
	removed, err = service.Clear(context.Background(), api.ClearScopeFailed)
	if err != nil || removed != 1 {
		t.Fatalf("clear failed = %d, %v", removed, err)
	}
	removed, err = service.Clear(context.Background(), api.ClearScopeAll)
	if err != nil || removed != 1 {
		t.Fatalf("clear all = %d, %v", removed, err)
	}

	if _, err := service.Clear(context.Background(), api.ClearScope("bogus")); err == nil {
		t.Fatal("expected error for unknown scope")
	}
}

func TestRemove(t *testing.T) {
	service, store := newService(t)
	item := testsupport.NewJob(t, store, "abc", "https://clips.example.test/v.mp4")

	ok, err := service.Remove(context.Background(), item.ID)
	if err != nil || !ok {
		t.Fatalf("Remove = %v, %v", ok, err)
	}
	ok, err = service.Remove(context.Background(), item.ID)
	if err != nil || ok {
		t.Fatalf("second Remove = %v, %v", ok, err)
	}
}
