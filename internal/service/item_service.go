package service

import (
	"context"
	"fmt"

	"lector/backend/internal/logger"
	"lector/backend/internal/model"
	"lector/backend/internal/repository"
)

const defaultItemPageSize = 100

type ItemService interface {
	List(ctx context.Context, filter repository.ItemListFilter) ([]model.FeedItem, error)
	Get(ctx context.Context, ownerID string, id int64) (model.FeedItem, error)
	SetRead(ctx context.Context, ownerID string, id int64, read bool) error
	MarkAllRead(ctx context.Context, ownerID string, feedID, folderID *int64) error
	UnreadCounts(ctx context.Context, ownerID string) ([]repository.UnreadCount, error)
}

type itemService struct {
	items     repository.ItemRepository
	feeds     repository.FeedRepository
	folders   repository.FolderRepository
	retention RetentionService
}

func NewItemService(items repository.ItemRepository, feeds repository.FeedRepository, folders repository.FolderRepository, retention RetentionService) ItemService {
	return &itemService{items: items, feeds: feeds, folders: folders, retention: retention}
}

func (s *itemService) List(ctx context.Context, filter repository.ItemListFilter) ([]model.FeedItem, error) {
	if filter.FeedID != nil {
		if _, err := s.feeds.GetByID(ctx, filter.OwnerID, *filter.FeedID); err != nil {
			if isNoRows(err) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("check feed: %w", err)
		}
	}
	if filter.FolderID != nil {
		if _, err := s.folders.GetByID(ctx, filter.OwnerID, *filter.FolderID); err != nil {
			if isNoRows(err) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("check folder: %w", err)
		}
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultItemPageSize
	}

	// Opportunistic trim so feeds that are never refreshed still stay
	// within the retention cap. A failed sweep must not block the read.
	var err error
	if filter.FeedID != nil {
		_, err = s.retention.Enforce(ctx, filter.OwnerID, *filter.FeedID)
	} else {
		_, err = s.retention.EnforceAll(ctx, filter.OwnerID)
	}
	if err != nil {
		logger.Warn("item list retention sweep failed", "error", err)
	}

	return s.items.List(ctx, filter)
}

func (s *itemService) Get(ctx context.Context, ownerID string, id int64) (model.FeedItem, error) {
	item, err := s.items.GetByID(ctx, ownerID, id)
	if err != nil {
		if isNoRows(err) {
			return model.FeedItem{}, ErrNotFound
		}
		return model.FeedItem{}, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

func (s *itemService) SetRead(ctx context.Context, ownerID string, id int64, read bool) error {
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return err
	}
	return s.items.SetRead(ctx, ownerID, id, read)
}

func (s *itemService) MarkAllRead(ctx context.Context, ownerID string, feedID, folderID *int64) error {
	if feedID != nil {
		if _, err := s.feeds.GetByID(ctx, ownerID, *feedID); err != nil {
			if isNoRows(err) {
				return ErrNotFound
			}
			return fmt.Errorf("check feed: %w", err)
		}
	}
	if folderID != nil {
		if _, err := s.folders.GetByID(ctx, ownerID, *folderID); err != nil {
			if isNoRows(err) {
				return ErrNotFound
			}
			return fmt.Errorf("check folder: %w", err)
		}
	}
	return s.items.MarkAllRead(ctx, ownerID, feedID, folderID)
}

func (s *itemService) UnreadCounts(ctx context.Context, ownerID string) ([]repository.UnreadCount, error) {
	return s.items.UnreadCounts(ctx, ownerID)
}
