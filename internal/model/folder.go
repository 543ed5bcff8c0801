package model

import "time"

type Folder struct {
	ID        int64
	OwnerID   string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FeedFolder is one membership row of the feed/folder many-to-many relation.
type FeedFolder struct {
	OwnerID   string
	FeedID    int64
	FolderID  int64
	CreatedAt time.Time
}
