package publishing_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"clipshare/internal/logging"
	"clipshare/internal/publishing"
	"clipshare/internal/services"
	"clipshare/internal/staging"
	"clipshare/internal/testsupport"
	"clipshare/internal/twitter"
)

type fakeClient struct {
	uploadErr    error
	updateErr    error
	mediaID      string
	tweetID      string
	uploadCalls  int
	updateCalls  int
	lastMessage  string
	lastMediaRef string
}

func (f *fakeClient) Upload(ctx context.Context, token twitter.Token, videoPath string) (string, error) {
	f.uploadCalls++
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	return f.mediaID, nil
}

func (f *fakeClient) UpdateStatus(ctx context.Context, token twitter.Token, message, mediaID string) (string, error) {
	f.updateCalls++
	f.lastMessage = message
	f.lastMediaRef = mediaID
	if f.updateErr != nil {
		return "", f.updateErr
	}
	return f.tweetID, nil
}

func TestExecutePostsTweetAndCleansStaging(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewJob(t, store, "abc", "https://clips.example.test/v.mp4")

	jobDir := staging.JobDir(cfg.Paths.StagingDir, item.ID)
	if err := os.MkdirAll(jobDir, 0o755); err != nil {
		t.Fatalf("mkdir staging: %v", err)
	}
	trimmed := filepath.Join(jobDir, "trimmed.mp4")
	if err := os.WriteFile(trimmed, []byte("video"), 0o644); err != nil {
		t.Fatalf("write trimmed: %v", err)
	}
	item.TrimmedFile = trimmed
	item.TweetText = "hello"

	client := &fakeClient{mediaID: "media-1", tweetID: "tweet-9"}
	handler := publishing.NewPublisherWithClient(cfg, store, logging.NewNop(), client)

	if err := handler.Prepare(context.Background(), item); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := handler.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if item.MediaID != "media-1" || item.TweetID != "tweet-9" {
		t.Fatalf("ids not recorded: %#v", item)
	}
	if client.lastMessage != "hello" || client.lastMediaRef != "media-1" {
		t.Fatalf("tweet call = %q/%q", client.lastMessage, client.lastMediaRef)
	}
	if _, err := os.Stat(jobDir); !os.IsNotExist(err) {
		t.Fatalf("staging dir should be removed, stat err = %v", err)
	}
}

func TestExecuteUploadFailureSkipsTweet(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewJob(t, store, "abc", "https://clips.example.test/v.mp4")

	trimmed := filepath.Join(t.TempDir(), "trimmed.mp4")
	if err := os.WriteFile(trimmed, []byte("video"), 0o644); err != nil {
		t.Fatalf("write trimmed: %v", err)
	}
	item.TrimmedFile = trimmed

	client := &fakeClient{uploadErr: &twitter.ProcessingError{MediaID: "media-1", State: "failed", Message: "bad codec"}}
	handler := publishing.NewPublisherWithClient(cfg, store, logging.NewNop(), client)

	err := handler.Execute(context.Background(), item)
	if err == nil {
		t.Fatal("expected upload failure")
	}
	if client.updateCalls != 0 {
		t.Fatalf("tweet posted despite failed upload: %d calls", client.updateCalls)
	}
	if services.IsRetryable(err) {
		t.Fatalf("processing failures must not retry: %v", err)
	}
	var procErr *twitter.ProcessingError
	if !errors.As(err, &procErr) {
		t.Fatalf("remote detail lost: %v", err)
	}
}

func TestExecuteClassifiesServerErrorsAsTransient(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewJob(t, store, "abc", "https://clips.example.test/v.mp4")

	trimmed := filepath.Join(t.TempDir(), "trimmed.mp4")
	if err := os.WriteFile(trimmed, []byte("video"), 0o644); err != nil {
		t.Fatalf("write trimmed: %v", err)
	}
	item.TrimmedFile = trimmed

	client := &fakeClient{uploadErr: &twitter.APIError{Operation: "media append", StatusCode: 503, Body: "over capacity"}}
	handler := publishing.NewPublisherWithClient(cfg, store, logging.NewNop(), client)

	err := handler.Execute(context.Background(), item)
	if err == nil {
		t.Fatal("expected upload failure")
	}
	if !services.IsRetryable(err) {
		t.Fatalf("503 should be retryable: %v", err)
	}
}

func TestExecuteRequiresToken(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewJob(t, store, "abc", "https://clips.example.test/v.mp4")

	trimmed := filepath.Join(t.TempDir(), "trimmed.mp4")
	if err := os.WriteFile(trimmed, []byte("video"), 0o644); err != nil {
		t.Fatalf("write trimmed: %v", err)
	}
	item.TrimmedFile = trimmed
	item.AccessToken = ""
	item.AccessSecret = ""

	client := &fakeClient{mediaID: "media-1", tweetID: "tweet-9"}
	handler := publishing.NewPublisherWithClient(cfg, store, logging.NewNop(), client)

	err := handler.Execute(context.Background(), item)
	if err == nil {
		t.Fatal("expected token validation error")
	}
	if client.uploadCalls != 0 {
		t.Fatal("upload attempted without token")
	}
}

func TestExecuteRequiresTrimmedFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewJob(t, store, "abc", "https://clips.example.test/v.mp4")

	client := &fakeClient{}
	handler := publishing.NewPublisherWithClient(cfg, store, logging.NewNop(), client)

	err := handler.Execute(context.Background(), item)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if services.IsRetryable(err) {
		t.Fatalf("validation errors must not retry: %v", err)
	}
}
