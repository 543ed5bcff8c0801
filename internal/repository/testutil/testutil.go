// Package testutil provides helpers for repository and service tests that
// run against a real sqlite database.
package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"lector/backend/internal/db"
	"lector/backend/internal/model"
	"lector/backend/internal/repository"
	"lector/backend/internal/snowflake"
)

func init() {
	if err := snowflake.Init(1); err != nil {
		panic(err)
	}
}

// NewTestDB opens a migrated database under t.TempDir and closes it when the
// test finishes.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = database.Close()
	})

	return database
}

func SeedFolder(t *testing.T, database *sql.DB, ownerID, name string) model.Folder {
	t.Helper()

	repo := repository.NewFolderRepository(database)
	folder, err := repo.Create(context.Background(), ownerID, name)
	require.NoError(t, err)
	return folder
}

func SeedFeed(t *testing.T, database *sql.DB, ownerID, url string) model.Feed {
	t.Helper()

	repo := repository.NewFeedRepository(database)
	feed, err := repo.Create(context.Background(), model.Feed{
		OwnerID: ownerID,
		URL:     url,
		Title:   "Feed " + url,
		SiteURL: nil,
	})
	require.NoError(t, err)
	return feed
}

// SeedItem inserts an item directly, bypassing identity conflict handling so
// tests control exactly which rows exist. Empty guid and title are stored as
// NULL.
func SeedItem(t *testing.T, database *sql.DB, feedID int64, guid, title string, publishedAt *time.Time) model.FeedItem {
	t.Helper()

	item := model.FeedItem{
		ID:          snowflake.NextID(),
		FeedID:      feedID,
		PublishedAt: publishedAt,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	if guid != "" {
		item.GUID = &guid
	}
	if title != "" {
		item.Title = &title
	}

	var published interface{}
	if publishedAt != nil {
		published = publishedAt.UTC().Format(time.RFC3339Nano)
	}

	_, err := database.ExecContext(
		context.Background(),
		`INSERT INTO feed_items (id, feed_id, guid, title, published_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.ID,
		feedID,
		item.GUID,
		item.Title,
		published,
		item.CreatedAt.Format(time.RFC3339Nano),
		item.UpdatedAt.Format(time.RFC3339Nano),
	)
	require.NoError(t, err)

	return item
}
