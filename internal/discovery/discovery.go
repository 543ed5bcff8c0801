// Package discovery probes a site URL for candidate feed URLs, combining
// alternate-link markup in the site's HTML with conventional feed paths.
package discovery

import (
	"bytes"
	"context"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"lector/backend/internal/fetch"
	"lector/backend/internal/urlnorm"
)

const (
	MethodHTMLAlternate = "html_alternate"
	MethodHeuristicPath = "heuristic_path"

	maxCandidates = 5
	probeTimeout  = 5 * time.Second
)

// heuristicPaths are probed in order against the site origin. Order is
// part of the contract: earlier entries rank higher for callers that must
// pick one candidate.
var heuristicPaths = []string{
	"/feed",
	"/feed.xml",
	"/rss",
	"/rss.xml",
	"/atom.xml",
	"/?feed=rss2",
}

// Result lists candidate feed URLs in priority order. Methods records how
// each candidate was found.
type Result struct {
	Candidates []string
	Methods    map[string]string
}

// Getter is the fetching dependency; probes run with zero retries so a dead
// candidate fails fast and the next one is tried instead.
type Getter interface {
	Fetch(ctx context.Context, url string, opts fetch.Options) (*fetch.Result, error)
}

type Discoverer struct {
	fetcher Getter
}

func New(fetcher Getter) *Discoverer {
	return &Discoverer{fetcher: fetcher}
}

// Discover returns up to 5 candidate feed URLs for siteURL. Fetch failures
// are soft: an unreachable site yields an empty candidate list, not an
// error. Only an unparseable input URL is an error.
func (d *Discoverer) Discover(ctx context.Context, siteURL string) (Result, error) {
	normalized, err := urlnorm.Normalize(siteURL)
	if err != nil {
		return Result{}, err
	}

	result := Result{Methods: make(map[string]string)}

	if body, baseURL := d.fetchPage(ctx, normalized); body != nil {
		for _, href := range alternateLinks(body, baseURL) {
			addCandidate(&result, normalized, href, MethodHTMLAlternate)
		}
	}

	origin, err := urlnorm.Origin(normalized)
	if err != nil {
		return result, nil
	}
	for _, path := range heuristicPaths {
		if len(result.Candidates) >= maxCandidates {
			break
		}
		candidate := origin + path
		if candidate == normalized || result.Methods[candidate] != "" {
			continue
		}
		if _, err := d.fetcher.Fetch(ctx, candidate, fetch.Options{Timeout: probeTimeout, Retries: 0}); err != nil {
			continue
		}
		addCandidate(&result, normalized, candidate, MethodHeuristicPath)
	}

	return result, nil
}

// fetchPage retrieves the site HTML, retrying once against a www-prefixed
// hostname variant when the input lacked one and the first fetch failed.
func (d *Discoverer) fetchPage(ctx context.Context, pageURL string) ([]byte, *url.URL) {
	res, err := d.fetcher.Fetch(ctx, pageURL, fetch.Options{Timeout: probeTimeout, Retries: 0})
	if err != nil {
		alt := wwwVariant(pageURL)
		if alt == "" {
			return nil, nil
		}
		res, err = d.fetcher.Fetch(ctx, alt, fetch.Options{Timeout: probeTimeout, Retries: 0})
		if err != nil {
			return nil, nil
		}
	}

	base, err := url.Parse(res.FinalURL)
	if err != nil {
		return nil, nil
	}
	return res.Body, base
}

func wwwVariant(pageURL string) string {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	if strings.HasPrefix(parsed.Host, "www.") {
		return ""
	}
	parsed.Host = "www." + parsed.Host
	return parsed.String()
}

func addCandidate(result *Result, input, candidate, method string) {
	if len(result.Candidates) >= maxCandidates {
		return
	}
	if candidate == "" || candidate == input {
		return
	}
	if result.Methods[candidate] != "" {
		return
	}
	if looksLikeCommentsFeed(candidate, "") {
		return
	}
	result.Candidates = append(result.Candidates, candidate)
	result.Methods[candidate] = method
}

// looksLikeCommentsFeed filters per-article comment feeds that sites
// advertise next to the main feed.
func looksLikeCommentsFeed(href, title string) bool {
	return strings.Contains(strings.ToLower(href), "comment") ||
		strings.Contains(strings.ToLower(title), "comment")
}

// feedType reports whether a link type attribute names a feed format.
func feedType(value string) bool {
	value = strings.ToLower(value)
	return strings.Contains(value, "rss+xml") ||
		strings.Contains(value, "atom+xml") ||
		strings.Contains(value, "feed+json")
}

// feedHint reports whether free text (a title attribute, an href) smells
// like a feed when no usable type attribute exists.
func feedHint(value string) bool {
	value = strings.ToLower(value)
	return strings.Contains(value, "rss") ||
		strings.Contains(value, "atom") ||
		strings.Contains(value, "feed")
}

// alternateLinks scans the document for link-like markup with an alternate
// relation whose type or hint text indicates a feed, resolving each href
// against the fetched page's URL.
func alternateLinks(body []byte, base *url.URL) []string {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	var found []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "link" || n.Data == "a") {
			if href, ok := alternateFeedHref(n); ok {
				if resolved := resolveHref(base, href); resolved != "" {
					found = append(found, resolved)
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return found
}

func alternateFeedHref(n *html.Node) (string, bool) {
	var rel, typ, href, title string
	for _, attr := range n.Attr {
		switch strings.ToLower(attr.Key) {
		case "rel":
			rel = attr.Val
		case "type":
			typ = attr.Val
		case "href":
			href = attr.Val
		case "title":
			title = attr.Val
		}
	}
	if !strings.Contains(strings.ToLower(rel), "alternate") || href == "" {
		return "", false
	}
	if looksLikeCommentsFeed(href, title) {
		return "", false
	}
	if feedType(typ) {
		return href, true
	}
	if typ == "" && (feedHint(title) || feedHint(href)) {
		return href, true
	}
	return "", false
}

func resolveHref(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	if ref.Scheme != "http" && ref.Scheme != "https" {
		return ""
	}
	return ref.String()
}
