package service

import (
	"context"
	"fmt"
	"sort"

	"lector/backend/internal/model"
	"lector/backend/internal/repository"
)

// ResolveFolderIDs merges the legacy single-folder column with membership
// rows into one sorted, duplicate-free folder set. The result is never nil so
// callers can compare sets directly.
func ResolveFolderIDs(legacy *int64, memberships []int64) []int64 {
	seen := make(map[int64]struct{}, len(memberships)+1)
	resolved := make([]int64, 0, len(memberships)+1)

	if legacy != nil {
		seen[*legacy] = struct{}{}
		resolved = append(resolved, *legacy)
	}
	for _, id := range memberships {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		resolved = append(resolved, id)
	}

	sort.Slice(resolved, func(i, j int) bool { return resolved[i] < resolved[j] })
	return resolved
}

// MembershipService manages which folders a feed belongs to. Reads always
// union the legacy column with membership rows; writes go to the membership
// table and keep the legacy column pointed at the first folder so older
// data paths stay coherent.
type MembershipService interface {
	Resolve(ctx context.Context, ownerID string) (map[int64][]int64, error)
	ResolveForFeed(ctx context.Context, ownerID string, feedID int64) ([]int64, error)
	Set(ctx context.Context, ownerID string, feedID int64, folderIDs []int64) ([]int64, error)
	Add(ctx context.Context, ownerID string, feedID int64, folderIDs []int64) ([]int64, error)
}

type membershipService struct {
	feeds       repository.FeedRepository
	folders     repository.FolderRepository
	memberships repository.MembershipRepository
}

func NewMembershipService(feeds repository.FeedRepository, folders repository.FolderRepository, memberships repository.MembershipRepository) MembershipService {
	return &membershipService{feeds: feeds, folders: folders, memberships: memberships}
}

func (s *membershipService) Resolve(ctx context.Context, ownerID string) (map[int64][]int64, error) {
	feeds, err := s.feeds.List(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list feeds: %w", err)
	}
	memberships, err := s.memberships.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	resolved := make(map[int64][]int64, len(feeds))
	for _, feed := range feeds {
		resolved[feed.ID] = ResolveFolderIDs(feed.FolderID, memberships[feed.ID])
	}
	return resolved, nil
}

func (s *membershipService) ResolveForFeed(ctx context.Context, ownerID string, feedID int64) ([]int64, error) {
	feed, err := s.getFeed(ctx, ownerID, feedID)
	if err != nil {
		return nil, err
	}
	memberships, err := s.memberships.ListByFeed(ctx, feed.ID)
	if err != nil {
		return nil, err
	}
	return ResolveFolderIDs(feed.FolderID, memberships), nil
}

func (s *membershipService) Set(ctx context.Context, ownerID string, feedID int64, folderIDs []int64) ([]int64, error) {
	feed, err := s.getFeed(ctx, ownerID, feedID)
	if err != nil {
		return nil, err
	}

	target := ResolveFolderIDs(nil, folderIDs)
	if err := validateFolderIDs(ctx, s.folders, ownerID, target); err != nil {
		return nil, err
	}

	// Insert missing before deleting stale so a concurrent reader never
	// observes the feed with no folders it should have.
	for _, folderID := range target {
		if err := s.memberships.Insert(ctx, ownerID, feed.ID, folderID); err != nil {
			return nil, err
		}
	}
	if err := s.memberships.DeleteStale(ctx, feed.ID, target); err != nil {
		return nil, err
	}

	if err := s.syncLegacyColumn(ctx, feed, target); err != nil {
		return nil, err
	}

	return target, nil
}

// Add attaches the feed to the given folders without touching memberships it
// already has. Inserts are conflict-ignored, so re-adding is a no-op.
func (s *membershipService) Add(ctx context.Context, ownerID string, feedID int64, folderIDs []int64) ([]int64, error) {
	feed, err := s.getFeed(ctx, ownerID, feedID)
	if err != nil {
		return nil, err
	}

	target := ResolveFolderIDs(nil, folderIDs)
	if err := validateFolderIDs(ctx, s.folders, ownerID, target); err != nil {
		return nil, err
	}

	for _, folderID := range target {
		if err := s.memberships.Insert(ctx, ownerID, feed.ID, folderID); err != nil {
			return nil, err
		}
	}

	memberships, err := s.memberships.ListByFeed(ctx, feed.ID)
	if err != nil {
		return nil, err
	}
	return ResolveFolderIDs(feed.FolderID, memberships), nil
}

func (s *membershipService) getFeed(ctx context.Context, ownerID string, feedID int64) (model.Feed, error) {
	feed, err := s.feeds.GetByID(ctx, ownerID, feedID)
	if err != nil {
		if isNoRows(err) {
			return model.Feed{}, ErrNotFound
		}
		return model.Feed{}, fmt.Errorf("get feed: %w", err)
	}
	return feed, nil
}

// validateFolderIDs checks every id against the owner's folders and returns
// an InvalidFolderIDsError naming the unknown ones.
func validateFolderIDs(ctx context.Context, folders repository.FolderRepository, ownerID string, folderIDs []int64) error {
	if len(folderIDs) == 0 {
		return nil
	}
	existing, err := folders.ListByIDs(ctx, ownerID, folderIDs)
	if err != nil {
		return fmt.Errorf("validate folders: %w", err)
	}

	known := make(map[int64]struct{}, len(existing))
	for _, folder := range existing {
		known[folder.ID] = struct{}{}
	}
	var unknown []int64
	for _, id := range folderIDs {
		if _, ok := known[id]; !ok {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		return &InvalidFolderIDsError{FolderIDs: unknown}
	}
	return nil
}

func (s *membershipService) syncLegacyColumn(ctx context.Context, feed model.Feed, target []int64) error {
	var legacy *int64
	if len(target) > 0 {
		legacy = &target[0]
	}
	if equalInt64Ptr(feed.FolderID, legacy) {
		return nil
	}
	return s.feeds.UpdateLegacyFolder(ctx, feed.ID, legacy)
}

func equalInt64Ptr(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
