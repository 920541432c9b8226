package workflow_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"clipshare/internal/logging"
	"clipshare/internal/queue"
	"clipshare/internal/testsupport"
	"clipshare/internal/workflow"
)

func TestHeartbeatLoopRefreshesItem(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewJob(t, store, "abc", "https://clips.example.test/v.mp4")

	monitor := workflow.NewHeartbeatMonitor(store, logging.NewNop(), 10*time.Millisecond, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go monitor.StartLoop(ctx, &wg, item.ID)

	var updated *queue.Item
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		got, err := store.GetByID(context.Background(), item.ID)
		if err != nil {
			cancel()
			t.Fatalf("GetByID: %v", err)
		}
		if got.LastHeartbeat != nil {
			updated = got
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	wg.Wait()

	if updated == nil {
		t.Fatal("heartbeat never recorded")
	}
}

func TestReclaimStaleItemsRequiresTimeout(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	monitor := workflow.NewHeartbeatMonitor(store, logging.NewNop(), time.Second, 0)
	if err := monitor.ReclaimStaleItems(context.Background(), logging.NewNop()); err != nil {
		t.Fatalf("ReclaimStaleItems: %v", err)
	}
}
