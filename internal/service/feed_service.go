package service

import (
	"context"
	"fmt"
	"strings"

	"lector/backend/internal/discovery"
	"lector/backend/internal/feedparse"
	"lector/backend/internal/model"
	"lector/backend/internal/repository"
	"lector/backend/internal/urlnorm"
)

// FeedWithFolders is a feed together with its resolved folder set and unread
// item count, the shape list views render.
type FeedWithFolders struct {
	Feed        model.Feed
	FolderIDs   []int64
	UnreadCount int
}

type SubscribeResult struct {
	Feed         model.Feed
	FolderIDs    []int64
	NewItemCount int
}

type FeedService interface {
	// Discover returns candidate feed URLs for a site page.
	Discover(ctx context.Context, siteURL string) (discovery.Result, error)
	// Subscribe normalizes the URL, fetches and parses the feed, and stores
	// it with its initial items and folder memberships.
	Subscribe(ctx context.Context, ownerID, feedURL string, folderIDs []int64, titleOverride string) (SubscribeResult, error)
	Get(ctx context.Context, ownerID string, id int64) (FeedWithFolders, error)
	List(ctx context.Context, ownerID string) ([]FeedWithFolders, error)
	Update(ctx context.Context, ownerID string, id int64, customTitle string) (model.Feed, error)
	Unsubscribe(ctx context.Context, ownerID string, id int64) error
}

type feedService struct {
	feeds       repository.FeedRepository
	folders     repository.FolderRepository
	items       repository.ItemRepository
	memberships MembershipService
	refresh     RefreshService
	discoverer  *discovery.Discoverer
	fetcher     feedparse.Getter
	parser      *feedparse.Parser
}

func NewFeedService(
	feeds repository.FeedRepository,
	folders repository.FolderRepository,
	items repository.ItemRepository,
	memberships MembershipService,
	refresh RefreshService,
	fetcher feedparse.Getter,
) FeedService {
	return &feedService{
		feeds:       feeds,
		folders:     folders,
		items:       items,
		memberships: memberships,
		refresh:     refresh,
		discoverer:  discovery.New(fetcher),
		fetcher:     fetcher,
		parser:      feedparse.NewParser(),
	}
}

func (s *feedService) Discover(ctx context.Context, siteURL string) (discovery.Result, error) {
	return s.discoverer.Discover(ctx, siteURL)
}

func (s *feedService) Subscribe(ctx context.Context, ownerID, feedURL string, folderIDs []int64, titleOverride string) (SubscribeResult, error) {
	normalized, err := urlnorm.Normalize(feedURL)
	if err != nil {
		return SubscribeResult{}, err
	}

	if existing, err := s.feeds.FindByURL(ctx, ownerID, normalized); err != nil {
		return SubscribeResult{}, fmt.Errorf("check feed url: %w", err)
	} else if existing != nil {
		return SubscribeResult{}, &FeedConflictError{ExistingFeed: *existing}
	}

	target := ResolveFolderIDs(nil, folderIDs)
	if err := validateFolderIDs(ctx, s.folders, ownerID, target); err != nil {
		return SubscribeResult{}, err
	}

	fetched, err := s.parser.ParseWithMetadata(ctx, s.fetcher, normalized)
	if err != nil {
		return SubscribeResult{}, err
	}

	title := strings.TrimSpace(fetched.Feed.Title)
	if title == "" {
		title = normalized
	}

	feed := model.Feed{
		OwnerID:      ownerID,
		Title:        title,
		URL:          normalized,
		SiteURL:      optional(fetched.Feed.SiteURL),
		Description:  optional(fetched.Feed.Description),
		ETag:         optional(fetched.ETag),
		LastModified: optional(fetched.LastModified),
	}
	if len(target) > 0 {
		feed.FolderID = &target[0]
	}
	if customTitle := strings.TrimSpace(titleOverride); customTitle != "" {
		feed.CustomTitle = &customTitle
	}

	created, inserted, err := s.refresh.CreateFeedWithInitialItems(ctx, feed, fetched.Feed)
	if err != nil {
		return SubscribeResult{}, err
	}

	resolved := target
	if len(target) > 0 {
		resolved, err = s.memberships.Set(ctx, ownerID, created.ID, target)
		if err != nil {
			return SubscribeResult{}, err
		}
	}

	return SubscribeResult{Feed: created, FolderIDs: resolved, NewItemCount: inserted}, nil
}

func (s *feedService) Get(ctx context.Context, ownerID string, id int64) (FeedWithFolders, error) {
	feed, err := s.feeds.GetByID(ctx, ownerID, id)
	if err != nil {
		if isNoRows(err) {
			return FeedWithFolders{}, ErrNotFound
		}
		return FeedWithFolders{}, fmt.Errorf("get feed: %w", err)
	}

	folderIDs, err := s.memberships.ResolveForFeed(ctx, ownerID, id)
	if err != nil {
		return FeedWithFolders{}, err
	}

	counts, err := s.items.UnreadCounts(ctx, ownerID)
	if err != nil {
		return FeedWithFolders{}, err
	}

	out := FeedWithFolders{Feed: feed, FolderIDs: folderIDs}
	for _, count := range counts {
		if count.FeedID == id {
			out.UnreadCount = count.Count
		}
	}
	return out, nil
}

func (s *feedService) List(ctx context.Context, ownerID string) ([]FeedWithFolders, error) {
	feeds, err := s.feeds.List(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list feeds: %w", err)
	}

	folderSets, err := s.memberships.Resolve(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	counts, err := s.items.UnreadCounts(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	unread := make(map[int64]int, len(counts))
	for _, count := range counts {
		unread[count.FeedID] = count.Count
	}

	out := make([]FeedWithFolders, 0, len(feeds))
	for _, feed := range feeds {
		out = append(out, FeedWithFolders{
			Feed:        feed,
			FolderIDs:   folderSets[feed.ID],
			UnreadCount: unread[feed.ID],
		})
	}
	return out, nil
}

func (s *feedService) Update(ctx context.Context, ownerID string, id int64, customTitle string) (model.Feed, error) {
	feed, err := s.feeds.GetByID(ctx, ownerID, id)
	if err != nil {
		if isNoRows(err) {
			return model.Feed{}, ErrNotFound
		}
		return model.Feed{}, fmt.Errorf("get feed: %w", err)
	}

	trimmed := strings.TrimSpace(customTitle)
	if trimmed == "" {
		feed.CustomTitle = nil
	} else {
		feed.CustomTitle = &trimmed
	}

	updated, err := s.feeds.Update(ctx, feed)
	if err != nil {
		return model.Feed{}, fmt.Errorf("update feed: %w", err)
	}
	return updated, nil
}

func (s *feedService) Unsubscribe(ctx context.Context, ownerID string, id int64) error {
	if _, err := s.feeds.GetByID(ctx, ownerID, id); err != nil {
		if isNoRows(err) {
			return ErrNotFound
		}
		return fmt.Errorf("get feed: %w", err)
	}
	// Items and membership rows cascade with the feed row.
	return s.feeds.Delete(ctx, ownerID, id)
}
