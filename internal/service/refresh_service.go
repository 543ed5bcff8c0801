package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"lector/backend/internal/feedparse"
	"lector/backend/internal/fetch"
	"lector/backend/internal/logger"
	"lector/backend/internal/model"
	"lector/backend/internal/repository"
)

const DefaultRefreshWorkers = 8

// FeedOutcome is the per-feed result of a refresh pass. A refresh never
// aborts on a single failing feed; each outcome stands on its own.
type FeedOutcome struct {
	FeedID       int64
	FeedURL      string
	Status       string // success, error
	NotModified  bool
	NewItemCount int
	ErrorCode    string
	ErrorMessage string
}

type RefreshSummary struct {
	Results               []FeedOutcome
	SuccessCount          int
	ErrorCount            int
	NewItemCount          int
	RetentionDeletedCount int
}

// ProgressFunc receives per-feed progress while a refresh pass runs: how many
// feeds have settled, how many there are in total, and the URL of the feed
// that just settled.
type ProgressFunc func(done, total int, feedURL string)

type RefreshService interface {
	// RefreshAll refreshes every feed of the owner concurrently and waits
	// for all of them to settle.
	RefreshAll(ctx context.Context, ownerID string) (RefreshSummary, error)
	// RefreshAllWithProgress is RefreshAll with a progress callback. The
	// callback may be invoked from multiple goroutines; nil disables it.
	RefreshAllWithProgress(ctx context.Context, ownerID string, progress ProgressFunc) (RefreshSummary, error)
	RefreshFeed(ctx context.Context, ownerID string, feedID int64) (FeedOutcome, error)
	// CreateFeedWithInitialItems persists a just-subscribed feed together
	// with its first batch of items, under the retention cap.
	CreateFeedWithInitialItems(ctx context.Context, feed model.Feed, parsed *feedparse.ParsedFeed) (model.Feed, int, error)
}

type refreshService struct {
	feeds     repository.FeedRepository
	items     repository.ItemRepository
	fetcher   feedparse.Getter
	parser    *feedparse.Parser
	retention RetentionService
	workers   int
}

func NewRefreshService(
	feeds repository.FeedRepository,
	items repository.ItemRepository,
	fetcher feedparse.Getter,
	retention RetentionService,
	workers int,
) RefreshService {
	if workers <= 0 {
		workers = DefaultRefreshWorkers
	}
	return &refreshService{
		feeds:     feeds,
		items:     items,
		fetcher:   fetcher,
		parser:    feedparse.NewParser(),
		retention: retention,
		workers:   workers,
	}
}

func (s *refreshService) RefreshAll(ctx context.Context, ownerID string) (RefreshSummary, error) {
	return s.RefreshAllWithProgress(ctx, ownerID, nil)
}

func (s *refreshService) RefreshAllWithProgress(ctx context.Context, ownerID string, progress ProgressFunc) (RefreshSummary, error) {
	feeds, err := s.feeds.List(ctx, ownerID)
	if err != nil {
		return RefreshSummary{}, fmt.Errorf("list feeds: %w", err)
	}
	if progress != nil {
		progress(0, len(feeds), "")
	}

	outcomes := make([]FeedOutcome, len(feeds))
	var settled atomic.Int32
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.workers)

	for i, feed := range feeds {
		i, feed := i, feed
		group.Go(func() error {
			outcomes[i] = s.refreshOne(groupCtx, feed)
			if progress != nil {
				progress(int(settled.Add(1)), len(feeds), feed.URL)
			}
			return nil
		})
	}
	// Workers never return errors; Wait is purely a barrier.
	_ = group.Wait()

	summary := RefreshSummary{Results: outcomes}
	for i := range outcomes {
		if outcomes[i].Status == model.FetchStatusSuccess {
			summary.SuccessCount++
			summary.NewItemCount += outcomes[i].NewItemCount
		} else {
			summary.ErrorCount++
		}
	}

	deleted, err := s.retention.EnforceAll(ctx, ownerID)
	if err != nil {
		logger.Warn("retention sweep failed", "owner", ownerID, "error", err)
	}
	summary.RetentionDeletedCount = deleted

	return summary, nil
}

func (s *refreshService) RefreshFeed(ctx context.Context, ownerID string, feedID int64) (FeedOutcome, error) {
	feed, err := s.feeds.GetByID(ctx, ownerID, feedID)
	if err != nil {
		if isNoRows(err) {
			return FeedOutcome{}, ErrNotFound
		}
		return FeedOutcome{}, fmt.Errorf("get feed: %w", err)
	}

	outcome := s.refreshOne(ctx, feed)

	if _, err := s.retention.Enforce(ctx, ownerID, feed.ID); err != nil {
		logger.Warn("retention trim failed", "feed", feed.ID, "error", err)
	}

	return outcome, nil
}

// refreshOne runs the full fetch-parse-ingest cycle for one feed. It never
// returns an error: failures are recorded on the feed row and reported in
// the outcome, so one broken feed cannot sink a refresh pass.
func (s *refreshService) refreshOne(ctx context.Context, feed model.Feed) (outcome FeedOutcome) {
	outcome = FeedOutcome{FeedID: feed.ID, FeedURL: feed.URL}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic refreshing feed", "feed", feed.ID, "url", feed.URL, "panic", r)
			outcome.Status = model.FetchStatusError
			outcome.ErrorCode = CodeUnreachable
			outcome.ErrorMessage = fmt.Sprintf("panic: %v", r)
			_ = s.feeds.MarkFetchError(ctx, feed.ID, outcome.ErrorCode, outcome.ErrorMessage, time.Now())
		}
	}()

	result, err := s.fetcher.Fetch(ctx, feed.URL, fetchOptions(feed))
	if err != nil {
		return s.recordError(ctx, feed, err)
	}

	if result.NotModified {
		// The cache validators held; touch the feed so staleness tracking
		// still advances.
		if err := s.feeds.MarkFetchSuccess(ctx, feed.ID, optional(result.ETag), optional(result.LastModified), time.Now()); err != nil {
			logger.Warn("mark fetch success failed", "feed", feed.ID, "error", err)
		}
		outcome.Status = model.FetchStatusSuccess
		outcome.NotModified = true
		return outcome
	}

	parsed, err := s.parser.Parse(result.Body)
	if err != nil {
		return s.recordError(ctx, feed, err)
	}

	inserted := s.ingestItems(ctx, feed.ID, parsed.Items)

	if err := s.feeds.MarkFetchSuccess(ctx, feed.ID, optional(result.ETag), optional(result.LastModified), time.Now()); err != nil {
		logger.Warn("mark fetch success failed", "feed", feed.ID, "error", err)
	}

	outcome.Status = model.FetchStatusSuccess
	outcome.NewItemCount = inserted
	return outcome
}

func (s *refreshService) recordError(ctx context.Context, feed model.Feed, err error) FeedOutcome {
	code := ErrorCode(err)
	message := err.Error()
	logger.Debug("feed refresh failed", "feed", feed.ID, "url", feed.URL, "code", code, "error", err)

	if markErr := s.feeds.MarkFetchError(ctx, feed.ID, code, message, time.Now()); markErr != nil {
		logger.Warn("mark fetch error failed", "feed", feed.ID, "error", markErr)
	}

	return FeedOutcome{
		FeedID:       feed.ID,
		FeedURL:      feed.URL,
		Status:       model.FetchStatusError,
		ErrorCode:    code,
		ErrorMessage: message,
	}
}

// ingestItems inserts parsed items, skipping ones without an expressible
// identity. Returns how many rows were actually new.
func (s *refreshService) ingestItems(ctx context.Context, feedID int64, items []feedparse.ParsedItem) int {
	inserted := 0
	for _, item := range items {
		identity, ok := feedparse.ItemIdentity(item)
		if !ok {
			continue
		}

		isNew, err := s.items.Insert(ctx, parsedToModel(feedID, item, identity))
		if err != nil {
			logger.Warn("insert item failed", "feed", feedID, "error", err)
			continue
		}
		if isNew {
			inserted++
		}
	}
	return inserted
}

func (s *refreshService) CreateFeedWithInitialItems(ctx context.Context, feed model.Feed, parsed *feedparse.ParsedFeed) (model.Feed, int, error) {
	created, err := s.feeds.Create(ctx, feed)
	if err != nil {
		return model.Feed{}, 0, fmt.Errorf("create feed: %w", err)
	}

	inserted := s.ingestItems(ctx, created.ID, parsed.Items)

	if _, err := s.items.DeleteOldest(ctx, created.ID, RetentionCap); err != nil {
		logger.Warn("retention trim failed", "feed", created.ID, "error", err)
	}

	return created, inserted, nil
}

func fetchOptions(feed model.Feed) fetch.Options {
	opts := fetch.Options{}
	if feed.ETag != nil {
		opts.IfNoneMatch = *feed.ETag
	}
	if feed.LastModified != nil {
		opts.IfModifiedSince = *feed.LastModified
	}
	return opts
}

func parsedToModel(feedID int64, item feedparse.ParsedItem, identity feedparse.Identity) model.FeedItem {
	return model.FeedItem{
		FeedID:      feedID,
		GUID:        optional(identity.GUID),
		Fingerprint: optional(identity.Fingerprint),
		Title:       optional(item.Title),
		URL:         optional(item.Link),
		Content:     optional(item.Content),
		Author:      optional(item.Author),
		PublishedAt: item.PublishedAt,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
