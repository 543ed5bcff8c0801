package model

import "time"

type FeedItem struct {
	ID          int64
	FeedID      int64
	GUID        *string
	Fingerprint *string // set only when the item has no native guid
	Title       *string
	URL         *string
	Content     *string
	Author      *string
	PublishedAt *time.Time
	ReadAt      *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (i FeedItem) Read() bool {
	return i.ReadAt != nil
}
