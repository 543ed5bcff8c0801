package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"lector/backend/internal/model"
	"lector/backend/internal/snowflake"
)

const feedColumns = `id, owner_id, folder_id, title, custom_title, url, site_url, description,
 etag, last_modified, last_fetched_at, last_fetch_status, last_error_code, last_error_message, last_error_at,
 created_at, updated_at`

type FeedRepository interface {
	Create(ctx context.Context, feed model.Feed) (model.Feed, error)
	GetByID(ctx context.Context, ownerID string, id int64) (model.Feed, error)
	FindByURL(ctx context.Context, ownerID, url string) (*model.Feed, error)
	List(ctx context.Context, ownerID string) ([]model.Feed, error)
	ListOwners(ctx context.Context) ([]string, error)
	Update(ctx context.Context, feed model.Feed) (model.Feed, error)
	UpdateLegacyFolder(ctx context.Context, id int64, folderID *int64) error
	MarkFetchSuccess(ctx context.Context, id int64, etag, lastModified *string, fetchedAt time.Time) error
	MarkFetchError(ctx context.Context, id int64, code, message string, at time.Time) error
	Delete(ctx context.Context, ownerID string, id int64) error
}

type feedRepository struct {
	db dbtx
}

func NewFeedRepository(db dbtx) FeedRepository {
	return &feedRepository{db: db}
}

func (r *feedRepository) Create(ctx context.Context, feed model.Feed) (model.Feed, error) {
	feed.ID = snowflake.NextID()
	now := time.Now().UTC()
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO feeds (id, owner_id, folder_id, title, custom_title, url, site_url, description,
		   etag, last_modified, last_fetched_at, last_fetch_status, last_error_code, last_error_message, last_error_at,
		   created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		feed.ID,
		feed.OwnerID,
		nullableInt64(feed.FolderID),
		feed.Title,
		nullableString(feed.CustomTitle),
		feed.URL,
		nullableString(feed.SiteURL),
		nullableString(feed.Description),
		nullableString(feed.ETag),
		nullableString(feed.LastModified),
		nullableTime(feed.LastFetchedAt),
		nullableString(feed.LastFetchStatus),
		nullableString(feed.LastErrorCode),
		nullableString(feed.LastErrorMessage),
		nullableTime(feed.LastErrorAt),
		formatTime(now),
		formatTime(now),
	)
	if err != nil {
		return model.Feed{}, fmt.Errorf("create feed: %w", err)
	}
	feed.CreatedAt = now
	feed.UpdatedAt = now
	return feed, nil
}

func (r *feedRepository) GetByID(ctx context.Context, ownerID string, id int64) (model.Feed, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+feedColumns+` FROM feeds WHERE id = ? AND owner_id = ?`, id, ownerID)
	return scanFeed(row)
}

func (r *feedRepository) FindByURL(ctx context.Context, ownerID, url string) (*model.Feed, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+feedColumns+` FROM feeds WHERE owner_id = ? AND url = ?`, ownerID, url)
	feed, err := scanFeed(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find feed: %w", err)
	}
	return &feed, nil
}

func (r *feedRepository) List(ctx context.Context, ownerID string) ([]model.Feed, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+feedColumns+` FROM feeds WHERE owner_id = ? ORDER BY title`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list feeds: %w", err)
	}
	defer rows.Close()

	var feeds []model.Feed
	for rows.Next() {
		feed, err := scanFeed(rows)
		if err != nil {
			return nil, err
		}
		feeds = append(feeds, feed)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feeds: %w", err)
	}

	return feeds, nil
}

func (r *feedRepository) ListOwners(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT owner_id FROM feeds ORDER BY owner_id`)
	if err != nil {
		return nil, fmt.Errorf("list owners: %w", err)
	}
	defer rows.Close()

	var owners []string
	for rows.Next() {
		var owner string
		if err := rows.Scan(&owner); err != nil {
			return nil, fmt.Errorf("scan owner: %w", err)
		}
		owners = append(owners, owner)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate owners: %w", err)
	}

	return owners, nil
}

func (r *feedRepository) Update(ctx context.Context, feed model.Feed) (model.Feed, error) {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(
		ctx,
		`UPDATE feeds SET folder_id = ?, title = ?, custom_title = ?, url = ?, site_url = ?, description = ?,
		   etag = ?, last_modified = ?, updated_at = ?
		 WHERE id = ? AND owner_id = ?`,
		nullableInt64(feed.FolderID),
		feed.Title,
		nullableString(feed.CustomTitle),
		feed.URL,
		nullableString(feed.SiteURL),
		nullableString(feed.Description),
		nullableString(feed.ETag),
		nullableString(feed.LastModified),
		formatTime(now),
		feed.ID,
		feed.OwnerID,
	)
	if err != nil {
		return model.Feed{}, fmt.Errorf("update feed: %w", err)
	}
	feed.UpdatedAt = now
	return feed, nil
}

func (r *feedRepository) UpdateLegacyFolder(ctx context.Context, id int64, folderID *int64) error {
	_, err := r.db.ExecContext(
		ctx,
		`UPDATE feeds SET folder_id = ?, updated_at = ? WHERE id = ?`,
		nullableInt64(folderID),
		formatTime(time.Now()),
		id,
	)
	return err
}

// MarkFetchSuccess records a successful refresh: status, fetch timestamp,
// validators. Error fields are cleared so the feed row always reflects the
// most recent outcome.
func (r *feedRepository) MarkFetchSuccess(ctx context.Context, id int64, etag, lastModified *string, fetchedAt time.Time) error {
	_, err := r.db.ExecContext(
		ctx,
		`UPDATE feeds SET etag = ?, last_modified = ?, last_fetched_at = ?, last_fetch_status = ?,
		   last_error_code = NULL, last_error_message = NULL, last_error_at = NULL, updated_at = ?
		 WHERE id = ?`,
		nullableString(etag),
		nullableString(lastModified),
		formatTime(fetchedAt),
		model.FetchStatusSuccess,
		formatTime(time.Now()),
		id,
	)
	return err
}

func (r *feedRepository) MarkFetchError(ctx context.Context, id int64, code, message string, at time.Time) error {
	_, err := r.db.ExecContext(
		ctx,
		`UPDATE feeds SET last_fetched_at = ?, last_fetch_status = ?, last_error_code = ?,
		   last_error_message = ?, last_error_at = ?, updated_at = ?
		 WHERE id = ?`,
		formatTime(at),
		model.FetchStatusError,
		code,
		message,
		formatTime(at),
		formatTime(time.Now()),
		id,
	)
	return err
}

func (r *feedRepository) Delete(ctx context.Context, ownerID string, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM feeds WHERE id = ? AND owner_id = ?`, id, ownerID); err != nil {
		return fmt.Errorf("delete feed: %w", err)
	}
	return nil
}

func scanFeed(scanner interface {
	Scan(dest ...interface{}) error
}) (model.Feed, error) {
	var feed model.Feed
	var folderID sql.NullInt64
	var customTitle, siteURL, description, etag, lastModified sql.NullString
	var fetchStatus, errorCode, errorMessage sql.NullString
	var fetchedAt, errorAt sql.NullString
	var createdAt, updatedAt string
	if err := scanner.Scan(
		&feed.ID,
		&feed.OwnerID,
		&folderID,
		&feed.Title,
		&customTitle,
		&feed.URL,
		&siteURL,
		&description,
		&etag,
		&lastModified,
		&fetchedAt,
		&fetchStatus,
		&errorCode,
		&errorMessage,
		&errorAt,
		&createdAt,
		&updatedAt,
	); err != nil {
		return model.Feed{}, err
	}
	if folderID.Valid {
		feed.FolderID = &folderID.Int64
	}
	if customTitle.Valid {
		feed.CustomTitle = &customTitle.String
	}
	if siteURL.Valid {
		feed.SiteURL = &siteURL.String
	}
	if description.Valid {
		feed.Description = &description.String
	}
	if etag.Valid {
		feed.ETag = &etag.String
	}
	if lastModified.Valid {
		feed.LastModified = &lastModified.String
	}
	if fetchedAt.Valid {
		feed.LastFetchedAt = parseTimePtr(fetchedAt.String)
	}
	if fetchStatus.Valid {
		feed.LastFetchStatus = &fetchStatus.String
	}
	if errorCode.Valid {
		feed.LastErrorCode = &errorCode.String
	}
	if errorMessage.Valid {
		feed.LastErrorMessage = &errorMessage.String
	}
	if errorAt.Valid {
		feed.LastErrorAt = parseTimePtr(errorAt.String)
	}
	var err error
	feed.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return model.Feed{}, fmt.Errorf("parse feed created_at: %w", err)
	}
	feed.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return model.Feed{}, fmt.Errorf("parse feed updated_at: %w", err)
	}
	return feed, nil
}
