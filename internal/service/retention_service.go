package service

import (
	"context"
	"fmt"

	"lector/backend/internal/repository"
)

// RetentionCap is the maximum number of items kept per feed. Whenever a feed
// grows past the cap, the oldest items are trimmed, oldest judged by
// published time falling back to ingestion time.
const RetentionCap = 50

type RetentionService interface {
	// Enforce trims the feed down to the cap and reports how many items
	// were removed.
	Enforce(ctx context.Context, ownerID string, feedID int64) (int, error)
	// EnforceAll trims every feed of the owner.
	EnforceAll(ctx context.Context, ownerID string) (int, error)
}

type retentionService struct {
	feeds repository.FeedRepository
	items repository.ItemRepository
	cap   int
}

func NewRetentionService(feeds repository.FeedRepository, items repository.ItemRepository) RetentionService {
	return &retentionService{feeds: feeds, items: items, cap: RetentionCap}
}

func (s *retentionService) Enforce(ctx context.Context, ownerID string, feedID int64) (int, error) {
	if _, err := s.feeds.GetByID(ctx, ownerID, feedID); err != nil {
		if isNoRows(err) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("get feed: %w", err)
	}

	deleted, err := s.items.DeleteOldest(ctx, feedID, s.cap)
	if err != nil {
		return 0, err
	}
	return int(deleted), nil
}

func (s *retentionService) EnforceAll(ctx context.Context, ownerID string) (int, error) {
	feeds, err := s.feeds.List(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("list feeds: %w", err)
	}

	total := 0
	for _, feed := range feeds {
		deleted, err := s.items.DeleteOldest(ctx, feed.ID, s.cap)
		if err != nil {
			return total, fmt.Errorf("trim feed %d: %w", feed.ID, err)
		}
		total += int(deleted)
	}
	return total, nil
}
