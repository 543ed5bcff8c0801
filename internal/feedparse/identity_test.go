package feedparse_test

import (
	"testing"
	"time"

	"lector/backend/internal/feedparse"

	"github.com/stretchr/testify/require"
)

func TestItemIdentity_GUIDTakesPrecedence(t *testing.T) {
	published := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	item := feedparse.ParsedItem{
		GUID:        "native-id",
		Title:       "Title",
		Link:        "https://example.com/a",
		Content:     "body",
		Author:      "Alice",
		PublishedAt: &published,
	}

	identity, ok := feedparse.ItemIdentity(item)
	require.True(t, ok)
	require.Equal(t, "native-id", identity.GUID)
	require.Empty(t, identity.Fingerprint, "no fingerprint is computed when a native id exists")
}

func TestItemIdentity_FingerprintStable(t *testing.T) {
	published := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	item := feedparse.ParsedItem{
		Title:       "Title",
		Link:        "https://example.com/a",
		Content:     "body",
		Author:      "Alice",
		PublishedAt: &published,
	}

	first, ok := feedparse.ItemIdentity(item)
	require.True(t, ok)
	require.Empty(t, first.GUID)
	require.Len(t, first.Fingerprint, 64)

	for i := 0; i < 10; i++ {
		again, ok := feedparse.ItemIdentity(item)
		require.True(t, ok)
		require.Equal(t, first.Fingerprint, again.Fingerprint)
	}
}

func TestItemIdentity_FingerprintSensitiveToFields(t *testing.T) {
	base := feedparse.ParsedItem{Title: "Title", Link: "https://example.com/a", Content: "body", Author: "Alice"}
	baseID, ok := feedparse.ItemIdentity(base)
	require.True(t, ok)

	variants := []feedparse.ParsedItem{
		{Title: "Other", Link: base.Link, Content: base.Content, Author: base.Author},
		{Title: base.Title, Link: "https://example.com/b", Content: base.Content, Author: base.Author},
		{Title: base.Title, Link: base.Link, Content: "changed", Author: base.Author},
		{Title: base.Title, Link: base.Link, Content: base.Content, Author: "Bob"},
	}
	for _, v := range variants {
		id, ok := feedparse.ItemIdentity(v)
		require.True(t, ok)
		require.NotEqual(t, baseID.Fingerprint, id.Fingerprint)
	}

	// Field boundaries must not be ambiguous under concatenation
	a, _ := feedparse.ItemIdentity(feedparse.ParsedItem{Link: "ab", Title: "c"})
	b, _ := feedparse.ItemIdentity(feedparse.ParsedItem{Link: "a", Title: "bc"})
	require.NotEqual(t, a.Fingerprint, b.Fingerprint)
}

func TestItemIdentity_Inexpressible(t *testing.T) {
	_, ok := feedparse.ItemIdentity(feedparse.ParsedItem{Author: "only an author"})
	require.False(t, ok)
}
