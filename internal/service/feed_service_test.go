package service_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"lector/backend/internal/fetch"
	"lector/backend/internal/model"
	"lector/backend/internal/repository/mock"
	"lector/backend/internal/service"
	servicemock "lector/backend/internal/service/mock"
	"lector/backend/internal/urlnorm"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>Example Blog</title>
<link>https://example.com</link>
<description>Posts about examples</description>
<item>
  <guid>post-1</guid>
  <title>First Post</title>
  <link>https://example.com/1</link>
  <description>Hello</description>
</item>
</channel>
</rss>`

type feedServiceFixture struct {
	feeds       *mock.MockFeedRepository
	folders     *mock.MockFolderRepository
	items       *mock.MockItemRepository
	memberships *servicemock.MockMembershipService
	refresh     *servicemock.MockRefreshService
	svc         service.FeedService
}

func newFeedServiceFixture(t *testing.T, getter getterFunc) *feedServiceFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	f := &feedServiceFixture{
		feeds:       mock.NewMockFeedRepository(ctrl),
		folders:     mock.NewMockFolderRepository(ctrl),
		items:       mock.NewMockItemRepository(ctrl),
		memberships: servicemock.NewMockMembershipService(ctrl),
		refresh:     servicemock.NewMockRefreshService(ctrl),
	}
	f.svc = service.NewFeedService(f.feeds, f.folders, f.items, f.memberships, f.refresh, getter)
	return f
}

func staticGetter(t *testing.T, wantURL, body string) getterFunc {
	return func(ctx context.Context, url string, opts fetch.Options) (*fetch.Result, error) {
		require.Equal(t, wantURL, url)
		return &fetch.Result{
			Body:         []byte(body),
			ETag:         `"etag-1"`,
			LastModified: "Mon, 02 Jan 2006 15:04:05 GMT",
			FinalURL:     url,
			StatusCode:   200,
		}, nil
	}
}

func TestFeedService_Subscribe_Success(t *testing.T) {
	normalized := "https://example.com/feed.xml"
	f := newFeedServiceFixture(t, staticGetter(t, normalized, sampleRSS))
	ctx := context.Background()

	f.feeds.EXPECT().FindByURL(ctx, "alice", normalized).Return(nil, nil)
	f.folders.EXPECT().ListByIDs(ctx, "alice", []int64{3}).Return([]model.Folder{{ID: 3}}, nil)

	f.refresh.EXPECT().
		CreateFeedWithInitialItems(ctx, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, feed model.Feed, parsed any) (model.Feed, int, error) {
			assert.Equal(t, "alice", feed.OwnerID)
			assert.Equal(t, normalized, feed.URL)
			assert.Equal(t, "Example Blog", feed.Title)
			require.NotNil(t, feed.ETag)
			assert.Equal(t, `"etag-1"`, *feed.ETag)
			require.NotNil(t, feed.FolderID)
			assert.Equal(t, int64(3), *feed.FolderID)
			feed.ID = 42
			return feed, 1, nil
		})
	f.memberships.EXPECT().Set(ctx, "alice", int64(42), []int64{3}).Return([]int64{3}, nil)

	// Input URL differs from the stored form only by normalization.
	result, err := f.svc.Subscribe(ctx, "alice", "HTTPS://EXAMPLE.COM:443/feed.xml", []int64{3}, "")
	require.NoError(t, err)
	assert.Equal(t, int64(42), result.Feed.ID)
	assert.Equal(t, []int64{3}, result.FolderIDs)
	assert.Equal(t, 1, result.NewItemCount)
}

func TestFeedService_Subscribe_Conflict(t *testing.T) {
	normalized := "https://example.com/feed.xml"
	f := newFeedServiceFixture(t, func(ctx context.Context, url string, opts fetch.Options) (*fetch.Result, error) {
		t.Fatal("conflict must be detected before fetching")
		return nil, nil
	})
	ctx := context.Background()

	existing := model.Feed{ID: 7, OwnerID: "alice", URL: normalized}
	f.feeds.EXPECT().FindByURL(ctx, "alice", normalized).Return(&existing, nil)

	_, err := f.svc.Subscribe(ctx, "alice", normalized, nil, "")
	require.ErrorIs(t, err, service.ErrConflict)

	var conflict *service.FeedConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, int64(7), conflict.ExistingFeed.ID)
}

func TestFeedService_Subscribe_InvalidURL(t *testing.T) {
	f := newFeedServiceFixture(t, func(ctx context.Context, url string, opts fetch.Options) (*fetch.Result, error) {
		t.Fatal("unexpected fetch")
		return nil, nil
	})

	_, err := f.svc.Subscribe(context.Background(), "alice", "ftp://example.com/feed", nil, "")
	assert.ErrorIs(t, err, urlnorm.ErrInvalidURL)
}

func TestFeedService_Subscribe_UnknownFolder(t *testing.T) {
	normalized := "https://example.com/feed.xml"
	f := newFeedServiceFixture(t, func(ctx context.Context, url string, opts fetch.Options) (*fetch.Result, error) {
		t.Fatal("folder validation must happen before fetching")
		return nil, nil
	})
	ctx := context.Background()

	f.feeds.EXPECT().FindByURL(ctx, "alice", normalized).Return(nil, nil)
	f.folders.EXPECT().ListByIDs(ctx, "alice", []int64{99}).Return(nil, nil)

	_, err := f.svc.Subscribe(ctx, "alice", normalized, []int64{99}, "")
	require.ErrorIs(t, err, service.ErrInvalid)

	var invalid *service.InvalidFolderIDsError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, []int64{99}, invalid.FolderIDs)
}

func TestFeedService_Subscribe_InvalidBody(t *testing.T) {
	normalized := "https://example.com/feed.xml"
	f := newFeedServiceFixture(t, staticGetter(t, normalized, "<html>not a feed</html>"))
	ctx := context.Background()

	f.feeds.EXPECT().FindByURL(ctx, "alice", normalized).Return(nil, nil)

	_, err := f.svc.Subscribe(ctx, "alice", normalized, nil, "")
	require.Error(t, err)
	assert.NotErrorIs(t, err, service.ErrConflict)
}

func TestFeedService_Update_CustomTitle(t *testing.T) {
	f := newFeedServiceFixture(t, nil)
	ctx := context.Background()

	feed := model.Feed{ID: 1, OwnerID: "alice", Title: "Original"}
	f.feeds.EXPECT().GetByID(ctx, "alice", int64(1)).Return(feed, nil)
	f.feeds.EXPECT().Update(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, updated model.Feed) (model.Feed, error) {
		require.NotNil(t, updated.CustomTitle)
		assert.Equal(t, "My Title", *updated.CustomTitle)
		return updated, nil
	})

	updated, err := f.svc.Update(ctx, "alice", 1, "  My Title  ")
	require.NoError(t, err)
	assert.Equal(t, "My Title", updated.DisplayTitle())
}

func TestFeedService_Update_ClearsCustomTitle(t *testing.T) {
	f := newFeedServiceFixture(t, nil)
	ctx := context.Background()

	custom := "Old Custom"
	feed := model.Feed{ID: 1, OwnerID: "alice", Title: "Original", CustomTitle: &custom}
	f.feeds.EXPECT().GetByID(ctx, "alice", int64(1)).Return(feed, nil)
	f.feeds.EXPECT().Update(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, updated model.Feed) (model.Feed, error) {
		assert.Nil(t, updated.CustomTitle)
		return updated, nil
	})

	updated, err := f.svc.Update(ctx, "alice", 1, "")
	require.NoError(t, err)
	assert.Equal(t, "Original", updated.DisplayTitle())
}

func TestFeedService_Unsubscribe_NotFound(t *testing.T) {
	f := newFeedServiceFixture(t, nil)
	ctx := context.Background()

	f.feeds.EXPECT().GetByID(ctx, "alice", int64(9)).Return(model.Feed{}, sql.ErrNoRows)

	err := f.svc.Unsubscribe(ctx, "alice", 9)
	assert.ErrorIs(t, err, service.ErrNotFound)
}
