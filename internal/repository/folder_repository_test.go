package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lector/backend/internal/repository"
	"lector/backend/internal/repository/testutil"
)

func TestFolderRepository_CreateAndList(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewFolderRepository(database)
	ctx := context.Background()

	_, err := repo.Create(ctx, "alice", "Tech")
	require.NoError(t, err)
	_, err = repo.Create(ctx, "alice", "News")
	require.NoError(t, err)
	_, err = repo.Create(ctx, "bob", "Tech")
	require.NoError(t, err)

	folders, err := repo.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, folders, 2)
	assert.Equal(t, "News", folders[0].Name)
	assert.Equal(t, "Tech", folders[1].Name)
}

func TestFolderRepository_Create_DuplicateNameCaseInsensitive(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewFolderRepository(database)
	ctx := context.Background()

	_, err := repo.Create(ctx, "alice", "Tech")
	require.NoError(t, err)

	_, err = repo.Create(ctx, "alice", "tech")
	assert.Error(t, err)

	// A different owner can reuse the name.
	_, err = repo.Create(ctx, "bob", "tech")
	assert.NoError(t, err)
}

func TestFolderRepository_FindByName(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewFolderRepository(database)
	ctx := context.Background()

	created, err := repo.Create(ctx, "alice", "Tech")
	require.NoError(t, err)

	found, err := repo.FindByName(ctx, "alice", "TECH")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)

	missing, err := repo.FindByName(ctx, "alice", "News")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestFolderRepository_ListByIDs(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewFolderRepository(database)
	ctx := context.Background()

	tech, err := repo.Create(ctx, "alice", "Tech")
	require.NoError(t, err)
	news, err := repo.Create(ctx, "alice", "News")
	require.NoError(t, err)

	folders, err := repo.ListByIDs(ctx, "alice", []int64{tech.ID, news.ID, 999})
	require.NoError(t, err)
	assert.Len(t, folders, 2)

	// Folders belonging to another owner are not visible.
	folders, err = repo.ListByIDs(ctx, "bob", []int64{tech.ID})
	require.NoError(t, err)
	assert.Empty(t, folders)

	folders, err = repo.ListByIDs(ctx, "alice", nil)
	require.NoError(t, err)
	assert.Empty(t, folders)
}

func TestFolderRepository_Rename(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewFolderRepository(database)
	ctx := context.Background()

	folder, err := repo.Create(ctx, "alice", "Tech")
	require.NoError(t, err)

	renamed, err := repo.Rename(ctx, "alice", folder.ID, "Technology")
	require.NoError(t, err)
	assert.Equal(t, "Technology", renamed.Name)
}

func TestFolderRepository_Delete_DetachesFeeds(t *testing.T) {
	database := testutil.NewTestDB(t)
	folderRepo := repository.NewFolderRepository(database)
	feedRepo := repository.NewFeedRepository(database)
	membershipRepo := repository.NewMembershipRepository(database)
	ctx := context.Background()

	folder := testutil.SeedFolder(t, database, "alice", "Tech")
	feed := testutil.SeedFeed(t, database, "alice", "https://example.com/feed.xml")
	require.NoError(t, feedRepo.UpdateLegacyFolder(ctx, feed.ID, &folder.ID))
	require.NoError(t, membershipRepo.Insert(ctx, "alice", feed.ID, folder.ID))

	require.NoError(t, folderRepo.Delete(ctx, "alice", folder.ID))

	// Legacy column is nulled and membership rows cascade; the feed itself
	// survives.
	got, err := feedRepo.GetByID(ctx, "alice", feed.ID)
	require.NoError(t, err)
	assert.Nil(t, got.FolderID)

	folderIDs, err := membershipRepo.ListByFeed(ctx, feed.ID)
	require.NoError(t, err)
	assert.Empty(t, folderIDs)
}
