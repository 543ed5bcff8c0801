package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lector/backend/internal/model"
	"lector/backend/internal/repository"
	"lector/backend/internal/repository/testutil"
)

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func TestItemRepository_Insert_IgnoresDuplicateGUID(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewItemRepository(database)
	ctx := context.Background()

	feed := testutil.SeedFeed(t, database, "alice", "https://example.com/feed.xml")

	inserted, err := repo.Insert(ctx, model.FeedItem{
		FeedID: feed.ID,
		GUID:   strPtr("guid-1"),
		Title:  strPtr("first"),
	})
	require.NoError(t, err)
	assert.True(t, inserted)

	// Same guid again, even with different content, is a no-op.
	inserted, err = repo.Insert(ctx, model.FeedItem{
		FeedID: feed.ID,
		GUID:   strPtr("guid-1"),
		Title:  strPtr("first, edited"),
	})
	require.NoError(t, err)
	assert.False(t, inserted)

	count, err := repo.CountByFeed(ctx, feed.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestItemRepository_Insert_IgnoresDuplicateFingerprint(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewItemRepository(database)
	ctx := context.Background()

	feed := testutil.SeedFeed(t, database, "alice", "https://example.com/feed.xml")

	item := model.FeedItem{
		FeedID:      feed.ID,
		Fingerprint: strPtr("fp-1"),
		Title:       strPtr("no guid"),
	}

	inserted, err := repo.Insert(ctx, item)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.Insert(ctx, item)
	require.NoError(t, err)
	assert.False(t, inserted)
}

func TestItemRepository_Insert_SameGUIDDifferentFeeds(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewItemRepository(database)
	ctx := context.Background()

	feedA := testutil.SeedFeed(t, database, "alice", "https://a.example.com/feed")
	feedB := testutil.SeedFeed(t, database, "alice", "https://b.example.com/feed")

	inserted, err := repo.Insert(ctx, model.FeedItem{FeedID: feedA.ID, GUID: strPtr("shared")})
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.Insert(ctx, model.FeedItem{FeedID: feedB.ID, GUID: strPtr("shared")})
	require.NoError(t, err)
	assert.True(t, inserted)
}

func TestItemRepository_List_OrderAndFilters(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewItemRepository(database)
	ctx := context.Background()

	feed := testutil.SeedFeed(t, database, "alice", "https://example.com/feed.xml")
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	testutil.SeedItem(t, database, feed.ID, "g-old", "oldest", timePtr(base))
	testutil.SeedItem(t, database, feed.ID, "g-new", "newest", timePtr(base.Add(2*time.Hour)))
	// No published date: falls back to creation time, which is now and
	// therefore sorts first.
	undated := testutil.SeedItem(t, database, feed.ID, "g-undated", "undated", nil)

	items, err := repo.List(ctx, repository.ItemListFilter{OwnerID: "alice"})
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, undated.ID, items[0].ID)
	assert.Equal(t, "newest", *items[1].Title)
	assert.Equal(t, "oldest", *items[2].Title)

	items, err = repo.List(ctx, repository.ItemListFilter{OwnerID: "alice", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, items, 2)

	items, err = repo.List(ctx, repository.ItemListFilter{OwnerID: "bob"})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestItemRepository_List_FolderFilterUnionsLegacyColumn(t *testing.T) {
	database := testutil.NewTestDB(t)
	itemRepo := repository.NewItemRepository(database)
	feedRepo := repository.NewFeedRepository(database)
	membershipRepo := repository.NewMembershipRepository(database)
	ctx := context.Background()

	folder := testutil.SeedFolder(t, database, "alice", "Tech")
	legacyFeed := testutil.SeedFeed(t, database, "alice", "https://legacy.example.com/feed")
	memberFeed := testutil.SeedFeed(t, database, "alice", "https://member.example.com/feed")
	outsideFeed := testutil.SeedFeed(t, database, "alice", "https://outside.example.com/feed")

	require.NoError(t, feedRepo.UpdateLegacyFolder(ctx, legacyFeed.ID, &folder.ID))
	require.NoError(t, membershipRepo.Insert(ctx, "alice", memberFeed.ID, folder.ID))

	testutil.SeedItem(t, database, legacyFeed.ID, "g-legacy", "legacy item", nil)
	testutil.SeedItem(t, database, memberFeed.ID, "g-member", "member item", nil)
	testutil.SeedItem(t, database, outsideFeed.ID, "g-outside", "outside item", nil)

	items, err := itemRepo.List(ctx, repository.ItemListFilter{OwnerID: "alice", FolderID: &folder.ID})
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, item := range items {
		assert.NotEqual(t, outsideFeed.ID, item.FeedID)
	}
}

func TestItemRepository_SetReadAndUnreadCounts(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewItemRepository(database)
	ctx := context.Background()

	feed := testutil.SeedFeed(t, database, "alice", "https://example.com/feed.xml")
	first := testutil.SeedItem(t, database, feed.ID, "g-1", "first", nil)
	testutil.SeedItem(t, database, feed.ID, "g-2", "second", nil)

	require.NoError(t, repo.SetRead(ctx, "alice", first.ID, true))

	got, err := repo.GetByID(ctx, "alice", first.ID)
	require.NoError(t, err)
	assert.True(t, got.Read())

	counts, err := repo.UnreadCounts(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, counts, 1)
	assert.Equal(t, feed.ID, counts[0].FeedID)
	assert.Equal(t, 1, counts[0].Count)

	// Unread again.
	require.NoError(t, repo.SetRead(ctx, "alice", first.ID, false))

	got, err = repo.GetByID(ctx, "alice", first.ID)
	require.NoError(t, err)
	assert.False(t, got.Read())
}

func TestItemRepository_SetRead_WrongOwnerIsNoop(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewItemRepository(database)
	ctx := context.Background()

	feed := testutil.SeedFeed(t, database, "alice", "https://example.com/feed.xml")
	item := testutil.SeedItem(t, database, feed.ID, "g-1", "first", nil)

	require.NoError(t, repo.SetRead(ctx, "bob", item.ID, true))

	got, err := repo.GetByID(ctx, "alice", item.ID)
	require.NoError(t, err)
	assert.False(t, got.Read())
}

func TestItemRepository_MarkAllRead_Scopes(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewItemRepository(database)
	membershipRepo := repository.NewMembershipRepository(database)
	ctx := context.Background()

	folder := testutil.SeedFolder(t, database, "alice", "Tech")
	inFolder := testutil.SeedFeed(t, database, "alice", "https://in.example.com/feed")
	outFolder := testutil.SeedFeed(t, database, "alice", "https://out.example.com/feed")
	require.NoError(t, membershipRepo.Insert(ctx, "alice", inFolder.ID, folder.ID))

	testutil.SeedItem(t, database, inFolder.ID, "g-in", "in folder", nil)
	testutil.SeedItem(t, database, outFolder.ID, "g-out", "outside folder", nil)

	require.NoError(t, repo.MarkAllRead(ctx, "alice", nil, &folder.ID))

	counts, err := repo.UnreadCounts(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, counts, 1)
	assert.Equal(t, outFolder.ID, counts[0].FeedID)

	require.NoError(t, repo.MarkAllRead(ctx, "alice", nil, nil))

	counts, err = repo.UnreadCounts(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestItemRepository_DeleteOldest(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewItemRepository(database)
	ctx := context.Background()

	feed := testutil.SeedFeed(t, database, "alice", "https://example.com/feed.xml")
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		ts := base.Add(time.Duration(i) * time.Hour)
		testutil.SeedItem(t, database, feed.ID, "g-"+ts.Format("15"), "item", timePtr(ts))
	}

	deleted, err := repo.DeleteOldest(ctx, feed.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	items, err := repo.List(ctx, repository.ItemListFilter{OwnerID: "alice"})
	require.NoError(t, err)
	require.Len(t, items, 2)
	// The two most recent survive.
	require.NotNil(t, items[0].PublishedAt)
	assert.Equal(t, base.Add(4*time.Hour), items[0].PublishedAt.UTC())
	assert.Equal(t, base.Add(3*time.Hour), items[1].PublishedAt.UTC())
}

func TestItemRepository_DeleteOldest_UnderCap(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewItemRepository(database)
	ctx := context.Background()

	feed := testutil.SeedFeed(t, database, "alice", "https://example.com/feed.xml")
	testutil.SeedItem(t, database, feed.ID, "g-1", "only", nil)

	deleted, err := repo.DeleteOldest(ctx, feed.ID, 50)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}
