package urlnorm_test

import (
	"testing"

	"lector/backend/internal/urlnorm"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "https://example.com/feed", "https://example.com/feed"},
		{"whitespace", "  https://example.com/feed \n", "https://example.com/feed"},
		{"upper host", "https://EXAMPLE.com/Feed", "https://example.com/Feed"},
		{"default https port", "https://example.com:443/feed", "https://example.com/feed"},
		{"default http port", "http://example.com:80/feed", "http://example.com/feed"},
		{"custom port kept", "https://example.com:8443/feed", "https://example.com:8443/feed"},
		{"trailing slash", "https://example.com/feed/", "https://example.com/feed"},
		{"root slash kept", "https://example.com/", "https://example.com/"},
		{"fragment stripped", "https://example.com/feed#latest", "https://example.com/feed"},
		{"query order preserved", "https://example.com/feed?b=2&a=1", "https://example.com/feed?b=2&a=1"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := urlnorm.Normalize(tc.in)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	first, err := urlnorm.Normalize("HTTPS://Example.com:443/path/?q=1#frag")
	require.NoError(t, err)
	second, err := urlnorm.Normalize(first)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestNormalize_Invalid(t *testing.T) {
	cases := []string{
		"",
		"   ",
		"not a url",
		"ftp://example.com/feed",
		"javascript:alert(1)",
		"https://",
		"/relative/path",
	}
	for _, in := range cases {
		_, err := urlnorm.Normalize(in)
		require.ErrorIs(t, err, urlnorm.ErrInvalidURL, "input %q", in)
	}
}

func TestOrigin(t *testing.T) {
	origin, err := urlnorm.Origin("https://example.com/blog/post")
	require.NoError(t, err)
	require.Equal(t, "https://example.com", origin)
}
