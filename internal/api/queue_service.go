package api

import (
	"context"
	"fmt"

	"clipshare/internal/queue"
)

// QueueStore abstracts queue persistence interactions needed by the service.
type QueueStore interface {
	NewJob(ctx context.Context, params queue.NewJobParams) (*queue.Item, error)
	List(ctx context.Context, statuses ...queue.Status) ([]*queue.Item, error)
	Stats(ctx context.Context) (map[queue.Status]int, error)
	GetByID(ctx context.Context, id int64) (*queue.Item, error)
	RetryFailed(ctx context.Context, ids ...int64) (int64, error)
	Remove(ctx context.Context, id int64) (bool, error)
	Clear(ctx context.Context) (int64, error)
	ClearCompleted(ctx context.Context) (int64, error)
	ClearFailed(ctx context.Context) (int64, error)
}

// QueueService exposes queue operations returning API DTOs.
type QueueService struct {
	store QueueStore
}

// NewQueueService constructs a QueueService around the provided store.
func NewQueueService(store QueueStore) *QueueService {
	if store == nil {
		return nil
	}
	return &QueueService{store: store}
}

// SubmitRequest carries the fields needed to enqueue a new job.
type SubmitRequest struct {
	ClientID     string
	VideoURL     string
	TweetText    string
	AccessToken  string
	AccessSecret string
	TrimStart    float64
	TrimDuration float64
}

// ClearScope selects which terminal items a Clear call removes.
type ClearScope string

const (
	ClearScopeAll       ClearScope = "all"
	ClearScopeCompleted ClearScope = "completed"
	ClearScopeFailed    ClearScope = "failed"
)

// Submit enqueues a new job at pending status.
func (s *QueueService) Submit(ctx context.Context, req SubmitRequest) (QueueItem, error) {
	if s == nil || s.store == nil {
		return QueueItem{}, fmt.Errorf("queue service unavailable")
	}
	item, err := s.store.NewJob(ctx, queue.NewJobParams{
		ClientID:     req.ClientID,
		VideoURL:     req.VideoURL,
		TweetText:    req.TweetText,
		AccessToken:  req.AccessToken,
		AccessSecret: req.AccessSecret,
		TrimStart:    req.TrimStart,
		TrimDuration: req.TrimDuration,
	})
	if err != nil {
		return QueueItem{}, err
	}
	return FromQueueItem(item), nil
}

// List returns queue items filtered by status.
func (s *QueueService) List(ctx context.Context, statuses ...queue.Status) ([]QueueItem, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	items, err := s.store.List(ctx, statuses...)
	if err != nil {
		return nil, err
	}
	return FromQueueItems(items), nil
}

// Stats returns queue summary counts keyed by status string.
func (s *QueueService) Stats(ctx context.Context) (map[string]int, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return MergeQueueStats(stats), nil
}

// Describe fetches a single queue item.
func (s *QueueService) Describe(ctx context.Context, id int64) (*QueueItem, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	item, err := s.store.GetByID(ctx, id)
	if err != nil || item == nil {
		return nil, err
	}
	dto := FromQueueItem(item)
	return &dto, nil
}

// Retry moves failed items back to pending. With no IDs, all failed items
// are retried.
func (s *QueueService) Retry(ctx context.Context, ids ...int64) (int64, error) {
	if s == nil || s.store == nil {
		return 0, nil
	}
	return s.store.RetryFailed(ctx, ids...)
}

// Remove deletes a single queue item.
func (s *QueueService) Remove(ctx context.Context, id int64) (bool, error) {
	if s == nil || s.store == nil {
		return false, nil
	}
	return s.store.Remove(ctx, id)
}

// Clear removes terminal items according to scope.
func (s *QueueService) Clear(ctx context.Context, scope ClearScope) (int64, error) {
	if s == nil || s.store == nil {
		return 0, nil
	}
	switch scope {
	case ClearScopeCompleted:
		return s.store.ClearCompleted(ctx)
	case ClearScopeFailed:
		return s.store.ClearFailed(ctx)
	case ClearScopeAll, "":
		return s.store.Clear(ctx)
	default:
		return 0, fmt.Errorf("unknown clear scope %q", scope)
	}
}
