// Package feedparse converts raw RSS/Atom/JSON-feed documents into the
// canonical in-memory representation the sync engine stores.
package feedparse

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"

	"lector/backend/internal/fetch"
)

// ErrInvalidFeed is returned when the body is not a recognizable feed
// format. Missing optional fields are never a hard failure.
var ErrInvalidFeed = errors.New("unrecognized feed format")

type ParsedFeed struct {
	Title       string
	Description string
	SiteURL     string
	Items       []ParsedItem
}

type ParsedItem struct {
	GUID        string
	Title       string
	Link        string
	Content     string
	Author      string
	PublishedAt *time.Time
}

// FeedWithMetadata is a parsed feed together with the HTTP context of the
// fetch that produced it, for creating a brand-new subscription where no
// cached validators exist yet.
type FeedWithMetadata struct {
	Feed         *ParsedFeed
	FinalURL     string
	ETag         string
	LastModified string
}

// Getter is the fetching dependency of ParseWithMetadata.
type Getter interface {
	Fetch(ctx context.Context, url string, opts fetch.Options) (*fetch.Result, error)
}

type Parser struct {
	sanitizer *bluemonday.Policy
}

func NewParser() *Parser {
	return &Parser{sanitizer: bluemonday.UGCPolicy()}
}

// Parse converts a raw body into a ParsedFeed. Item content is sanitized
// with the UGC policy before it ever reaches storage.
func (p *Parser) Parse(body []byte) (*ParsedFeed, error) {
	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFeed, err)
	}

	feed := &ParsedFeed{
		Title:       strings.TrimSpace(parsed.Title),
		Description: strings.TrimSpace(parsed.Description),
		SiteURL:     strings.TrimSpace(parsed.Link),
	}

	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		feed.Items = append(feed.Items, p.convertItem(item))
	}

	return feed, nil
}

// ParseWithMetadata fetches url (unconditionally, with default retries) and
// parses the body, returning the resolved final URL and HTTP validators.
func (p *Parser) ParseWithMetadata(ctx context.Context, getter Getter, url string) (*FeedWithMetadata, error) {
	result, err := getter.Fetch(ctx, url, fetch.Options{Retries: 1})
	if err != nil {
		return nil, err
	}

	feed, err := p.Parse(result.Body)
	if err != nil {
		return nil, err
	}

	return &FeedWithMetadata{
		Feed:         feed,
		FinalURL:     result.FinalURL,
		ETag:         result.ETag,
		LastModified: result.LastModified,
	}, nil
}

func (p *Parser) convertItem(item *gofeed.Item) ParsedItem {
	out := ParsedItem{
		GUID:  strings.TrimSpace(item.GUID),
		Title: strings.TrimSpace(item.Title),
		Link:  strings.TrimSpace(item.Link),
	}

	content := item.Content
	if content == "" {
		content = item.Description
	}
	if content != "" {
		out.Content = strings.TrimSpace(p.sanitizer.Sanitize(content))
	}

	if item.Author != nil && item.Author.Name != "" {
		out.Author = strings.TrimSpace(item.Author.Name)
	} else if len(item.Authors) > 0 && item.Authors[0] != nil {
		out.Author = strings.TrimSpace(item.Authors[0].Name)
	}

	if item.PublishedParsed != nil {
		t := item.PublishedParsed.UTC()
		out.PublishedAt = &t
	} else if item.UpdatedParsed != nil {
		t := item.UpdatedParsed.UTC()
		out.PublishedAt = &t
	}

	return out
}
