package service_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lector/backend/internal/feedparse"
	"lector/backend/internal/fetch"
	"lector/backend/internal/model"
	"lector/backend/internal/repository"
	"lector/backend/internal/repository/testutil"
	"lector/backend/internal/service"
)

type getterFunc func(ctx context.Context, url string, opts fetch.Options) (*fetch.Result, error)

func (f getterFunc) Fetch(ctx context.Context, url string, opts fetch.Options) (*fetch.Result, error) {
	return f(ctx, url, opts)
}

func rssBody(items ...string) []byte {
	body := `<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>Refresh Test</title><link>https://example.com</link>`
	for i, title := range items {
		body += fmt.Sprintf(`<item><guid>guid-%d</guid><title>%s</title><link>https://example.com/%d</link></item>`, i, title, i)
	}
	return []byte(body + `</channel></rss>`)
}

func newRefreshFixture(t *testing.T, getter getterFunc) (service.RefreshService, repository.FeedRepository, repository.ItemRepository, func(url string) model.Feed) {
	t.Helper()

	database := testutil.NewTestDB(t)
	feeds := repository.NewFeedRepository(database)
	items := repository.NewItemRepository(database)
	retention := service.NewRetentionService(feeds, items)
	svc := service.NewRefreshService(feeds, items, getter, retention, 4)

	seed := func(url string) model.Feed {
		return testutil.SeedFeed(t, database, "alice", url)
	}
	return svc, feeds, items, seed
}

func TestRefreshService_RefreshAll_InsertsAndDeduplicates(t *testing.T) {
	getter := getterFunc(func(ctx context.Context, url string, opts fetch.Options) (*fetch.Result, error) {
		return &fetch.Result{Body: rssBody("one", "two"), FinalURL: url, StatusCode: 200}, nil
	})
	svc, _, items, seed := newRefreshFixture(t, getter)
	feed := seed("https://example.com/feed.xml")
	ctx := context.Background()

	summary, err := svc.RefreshAll(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.SuccessCount)
	assert.Zero(t, summary.ErrorCount)
	assert.Equal(t, 2, summary.NewItemCount)

	// Same payload again: every item is already known.
	summary, err = svc.RefreshAll(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.SuccessCount)
	assert.Zero(t, summary.NewItemCount)

	count, err := items.CountByFeed(ctx, feed.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestRefreshService_RefreshAll_ConditionalNotModified(t *testing.T) {
	var mu sync.Mutex
	var fetches int
	var lastOpts fetch.Options

	getter := getterFunc(func(ctx context.Context, url string, opts fetch.Options) (*fetch.Result, error) {
		mu.Lock()
		defer mu.Unlock()
		fetches++
		lastOpts = opts
		if opts.IfNoneMatch == `"v1"` {
			return &fetch.Result{NotModified: true, ETag: `"v1"`, FinalURL: url, StatusCode: 304}, nil
		}
		return &fetch.Result{Body: rssBody("one"), ETag: `"v1"`, FinalURL: url, StatusCode: 200}, nil
	})
	svc, feeds, _, seed := newRefreshFixture(t, getter)
	feed := seed("https://example.com/feed.xml")
	ctx := context.Background()

	_, err := svc.RefreshAll(ctx, "alice")
	require.NoError(t, err)

	stored, err := feeds.GetByID(ctx, "alice", feed.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ETag)
	assert.Equal(t, `"v1"`, *stored.ETag)

	// Second pass sends the stored validator and gets a 304 back.
	summary, err := svc.RefreshAll(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)
	assert.True(t, summary.Results[0].NotModified)
	assert.Equal(t, model.FetchStatusSuccess, summary.Results[0].Status)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, fetches)
	assert.Equal(t, `"v1"`, lastOpts.IfNoneMatch)
}

func TestRefreshService_RefreshAll_IsolatesFailures(t *testing.T) {
	getter := getterFunc(func(ctx context.Context, url string, opts fetch.Options) (*fetch.Result, error) {
		if url == "https://broken.example.com/feed" {
			return nil, &fetch.Error{Code: fetch.CodeTimeout, Message: "request timed out"}
		}
		return &fetch.Result{Body: rssBody("one"), FinalURL: url, StatusCode: 200}, nil
	})
	svc, feeds, _, seed := newRefreshFixture(t, getter)
	seed("https://a.example.com/feed")
	broken := seed("https://broken.example.com/feed")
	seed("https://c.example.com/feed")
	ctx := context.Background()

	summary, err := svc.RefreshAll(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.SuccessCount)
	assert.Equal(t, 1, summary.ErrorCount)
	require.Len(t, summary.Results, 3)

	var failed *service.FeedOutcome
	for i := range summary.Results {
		if summary.Results[i].FeedID == broken.ID {
			failed = &summary.Results[i]
		}
	}
	require.NotNil(t, failed)
	assert.Equal(t, model.FetchStatusError, failed.Status)
	assert.Equal(t, "timeout", failed.ErrorCode)

	stored, err := feeds.GetByID(ctx, "alice", broken.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastErrorCode)
	assert.Equal(t, "timeout", *stored.LastErrorCode)
	require.NotNil(t, stored.LastFetchStatus)
	assert.Equal(t, model.FetchStatusError, *stored.LastFetchStatus)
}

func TestRefreshService_RefreshAll_RecordsParseFailure(t *testing.T) {
	getter := getterFunc(func(ctx context.Context, url string, opts fetch.Options) (*fetch.Result, error) {
		return &fetch.Result{Body: []byte("<html><body>not a feed</body></html>"), FinalURL: url, StatusCode: 200}, nil
	})
	svc, feeds, _, seed := newRefreshFixture(t, getter)
	feed := seed("https://example.com/feed.xml")
	ctx := context.Background()

	summary, err := svc.RefreshAll(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)
	assert.Equal(t, "invalid_xml", summary.Results[0].ErrorCode)

	stored, err := feeds.GetByID(ctx, "alice", feed.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastErrorCode)
	assert.Equal(t, "invalid_xml", *stored.LastErrorCode)
}

func TestRefreshService_CreateFeedWithInitialItems_RespectsRetentionCap(t *testing.T) {
	titles := make([]string, service.RetentionCap+10)
	for i := range titles {
		titles[i] = fmt.Sprintf("story %d", i)
	}
	parsed, err := feedparse.NewParser().Parse(rssBody(titles...))
	require.NoError(t, err)
	require.Len(t, parsed.Items, service.RetentionCap+10)

	getter := getterFunc(func(ctx context.Context, url string, opts fetch.Options) (*fetch.Result, error) {
		t.Fatal("unexpected fetch")
		return nil, nil
	})
	svc, _, items, _ := newRefreshFixture(t, getter)
	ctx := context.Background()

	created, inserted, err := svc.CreateFeedWithInitialItems(ctx, model.Feed{
		OwnerID: "alice",
		URL:     "https://example.com/feed.xml",
		Title:   "Refresh Test",
	}, parsed)
	require.NoError(t, err)
	assert.Equal(t, service.RetentionCap+10, inserted)

	// A freshly subscribed feed never starts above the cap.
	count, err := items.CountByFeed(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, service.RetentionCap, count)
}

func TestRefreshService_RefreshAllWithProgress_ReportsEveryFeed(t *testing.T) {
	getter := getterFunc(func(ctx context.Context, url string, opts fetch.Options) (*fetch.Result, error) {
		return &fetch.Result{Body: rssBody("one"), FinalURL: url, StatusCode: 200}, nil
	})
	svc, _, _, seed := newRefreshFixture(t, getter)
	seed("https://a.example.com/feed")
	seed("https://b.example.com/feed")
	seed("https://c.example.com/feed")

	var mu sync.Mutex
	var calls []int
	lastTotal := -1
	_, err := svc.RefreshAllWithProgress(context.Background(), "alice", func(done, total int, feedURL string) {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, done)
		lastTotal = total
	})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	// One upfront call plus one per settled feed. Settles race, so compare
	// the value set rather than arrival order.
	assert.Equal(t, 0, calls[0])
	sort.Ints(calls)
	assert.Equal(t, []int{0, 1, 2, 3}, calls)
	assert.Equal(t, 3, lastTotal)
}

func TestRefreshService_RefreshFeed_NotFound(t *testing.T) {
	getter := getterFunc(func(ctx context.Context, url string, opts fetch.Options) (*fetch.Result, error) {
		t.Fatal("unexpected fetch")
		return nil, nil
	})
	svc, _, _, _ := newRefreshFixture(t, getter)

	_, err := svc.RefreshFeed(context.Background(), "alice", 12345)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestRefreshService_RefreshFeed_SkipsInexpressibleItems(t *testing.T) {
	body := []byte(`<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>T</title>` +
		`<item><guid>g1</guid><title>has identity</title></item>` +
		`<item></item>` +
		`</channel></rss>`)
	getter := getterFunc(func(ctx context.Context, url string, opts fetch.Options) (*fetch.Result, error) {
		return &fetch.Result{Body: body, FinalURL: url, StatusCode: 200}, nil
	})
	svc, _, items, seed := newRefreshFixture(t, getter)
	feed := seed("https://example.com/feed.xml")
	ctx := context.Background()

	outcome, err := svc.RefreshFeed(ctx, "alice", feed.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.NewItemCount)

	count, err := items.CountByFeed(ctx, feed.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
