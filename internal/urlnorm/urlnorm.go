// Package urlnorm canonicalizes user-entered feed and site URLs into the
// comparison key used for "does this owner already have this feed".
//
// Policy: scheme and host are lowercased, default ports (:80, :443) and
// fragments are stripped, a trailing slash is removed from non-root paths,
// and the query string is preserved exactly as written (reordering query
// parameters can change server behavior). The result is total and
// deterministic: equal inputs always normalize equally.
package urlnorm

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var ErrInvalidURL = errors.New("invalid url")

// Normalize returns the canonical absolute form of raw, or ErrInvalidURL if
// raw is not a parseable http/https URL with a host.
func Normalize(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidURL
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", ErrInvalidURL
	}
	if parsed.Host == "" {
		return "", ErrInvalidURL
	}

	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	if (parsed.Scheme == "http" && strings.HasSuffix(parsed.Host, ":80")) ||
		(parsed.Scheme == "https" && strings.HasSuffix(parsed.Host, ":443")) {
		parsed.Host = parsed.Host[:strings.LastIndex(parsed.Host, ":")]
	}
	parsed.Fragment = ""
	if len(parsed.Path) > 1 {
		parsed.Path = strings.TrimSuffix(parsed.Path, "/")
	}

	return parsed.String(), nil
}

// Origin returns the scheme://host prefix of a normalized URL.
func Origin(normalized string) (string, error) {
	parsed, err := url.Parse(normalized)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	return parsed.Scheme + "://" + parsed.Host, nil
}
