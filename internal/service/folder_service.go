package service

import (
	"context"
	"fmt"
	"strings"

	"lector/backend/internal/model"
	"lector/backend/internal/repository"
)

// reservedFolderNames are virtual views the client renders; user folders may
// not shadow them, compared case-insensitively.
var reservedFolderNames = map[string]struct{}{
	"all":     {},
	"starred": {},
	"unread":  {},
}

// FolderWithFeedCount is a folder plus how many feeds currently resolve
// into it.
type FolderWithFeedCount struct {
	Folder    model.Folder
	FeedCount int
}

type FolderService interface {
	Create(ctx context.Context, ownerID, name string) (model.Folder, error)
	List(ctx context.Context, ownerID string) ([]FolderWithFeedCount, error)
	Rename(ctx context.Context, ownerID string, id int64, name string) (model.Folder, error)
	Delete(ctx context.Context, ownerID string, id int64) error
}

type folderService struct {
	folders     repository.FolderRepository
	memberships MembershipService
}

func NewFolderService(folders repository.FolderRepository, memberships MembershipService) FolderService {
	return &folderService{folders: folders, memberships: memberships}
}

func (s *folderService) Create(ctx context.Context, ownerID, name string) (model.Folder, error) {
	trimmed, err := s.validateName(name)
	if err != nil {
		return model.Folder{}, err
	}

	if existing, err := s.folders.FindByName(ctx, ownerID, trimmed); err != nil {
		return model.Folder{}, fmt.Errorf("check folder name: %w", err)
	} else if existing != nil {
		return model.Folder{}, ErrConflict
	}

	return s.folders.Create(ctx, ownerID, trimmed)
}

func (s *folderService) List(ctx context.Context, ownerID string) ([]FolderWithFeedCount, error) {
	folders, err := s.folders.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	folderSets, err := s.memberships.Resolve(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	feedCounts := make(map[int64]int)
	for _, folderIDs := range folderSets {
		for _, folderID := range folderIDs {
			feedCounts[folderID]++
		}
	}

	out := make([]FolderWithFeedCount, 0, len(folders))
	for _, folder := range folders {
		out = append(out, FolderWithFeedCount{Folder: folder, FeedCount: feedCounts[folder.ID]})
	}
	return out, nil
}

func (s *folderService) Rename(ctx context.Context, ownerID string, id int64, name string) (model.Folder, error) {
	trimmed, err := s.validateName(name)
	if err != nil {
		return model.Folder{}, err
	}

	if _, err := s.folders.GetByID(ctx, ownerID, id); err != nil {
		if isNoRows(err) {
			return model.Folder{}, ErrNotFound
		}
		return model.Folder{}, fmt.Errorf("get folder: %w", err)
	}

	if existing, err := s.folders.FindByName(ctx, ownerID, trimmed); err != nil {
		return model.Folder{}, fmt.Errorf("check folder name: %w", err)
	} else if existing != nil && existing.ID != id {
		return model.Folder{}, ErrConflict
	}

	return s.folders.Rename(ctx, ownerID, id, trimmed)
}

func (s *folderService) Delete(ctx context.Context, ownerID string, id int64) error {
	if _, err := s.folders.GetByID(ctx, ownerID, id); err != nil {
		if isNoRows(err) {
			return ErrNotFound
		}
		return fmt.Errorf("get folder: %w", err)
	}
	// Memberships cascade; feeds survive with their legacy column nulled.
	return s.folders.Delete(ctx, ownerID, id)
}

func (s *folderService) validateName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", ErrInvalid
	}
	if _, reserved := reservedFolderNames[strings.ToLower(trimmed)]; reserved {
		return "", ErrInvalid
	}
	return trimmed, nil
}
