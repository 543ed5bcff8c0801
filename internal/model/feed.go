package model

import "time"

const (
	FetchStatusSuccess = "success"
	FetchStatusError   = "error"
)

type Feed struct {
	ID               int64
	OwnerID          string
	FolderID         *int64 // legacy single-folder column, superseded by feed_folders
	Title            string
	CustomTitle      *string
	URL              string
	SiteURL          *string
	Description      *string
	ETag             *string
	LastModified     *string
	LastFetchedAt    *time.Time
	LastFetchStatus  *string // success, error
	LastErrorCode    *string
	LastErrorMessage *string
	LastErrorAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// DisplayTitle returns the user-chosen title when set, the feed's own
// title otherwise.
func (f Feed) DisplayTitle() string {
	if f.CustomTitle != nil && *f.CustomTitle != "" {
		return *f.CustomTitle
	}
	return f.Title
}
