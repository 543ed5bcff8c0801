package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"lector/backend/internal/model"
	"lector/backend/internal/snowflake"
)

type ItemListFilter struct {
	OwnerID    string
	FeedID     *int64
	FolderID   *int64
	UnreadOnly bool
	Limit      int
	Offset     int
}

type UnreadCount struct {
	FeedID int64
	Count  int
}

type ItemRepository interface {
	// Insert adds an item, silently ignoring identity conflicts on
	// (feed_id, guid) or (feed_id, fingerprint). Returns whether a row was
	// actually inserted.
	Insert(ctx context.Context, item model.FeedItem) (bool, error)
	GetByID(ctx context.Context, ownerID string, id int64) (model.FeedItem, error)
	List(ctx context.Context, filter ItemListFilter) ([]model.FeedItem, error)
	SetRead(ctx context.Context, ownerID string, id int64, read bool) error
	MarkAllRead(ctx context.Context, ownerID string, feedID, folderID *int64) error
	UnreadCounts(ctx context.Context, ownerID string) ([]UnreadCount, error)
	CountByFeed(ctx context.Context, feedID int64) (int, error)
	// DeleteOldest removes every item of the feed beyond the keep most
	// recent ones, ordered by published time falling back to creation time.
	DeleteOldest(ctx context.Context, feedID int64, keep int) (int64, error)
}

type itemRepository struct {
	db dbtx
}

func NewItemRepository(db dbtx) ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) Insert(ctx context.Context, item model.FeedItem) (bool, error) {
	id := snowflake.NextID()
	now := formatTime(time.Now())

	result, err := r.db.ExecContext(
		ctx,
		`INSERT INTO feed_items (id, feed_id, guid, fingerprint, title, url, content, author, published_at, read_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, ?, ?)
		 ON CONFLICT DO NOTHING`,
		id,
		item.FeedID,
		nullableString(item.GUID),
		nullableString(item.Fingerprint),
		nullableString(item.Title),
		nullableString(item.URL),
		nullableString(item.Content),
		nullableString(item.Author),
		nullableTime(item.PublishedAt),
		now,
		now,
	)
	if err != nil {
		return false, fmt.Errorf("insert item: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert item rows affected: %w", err)
	}
	return affected > 0, nil
}

const itemColumns = `i.id, i.feed_id, i.guid, i.fingerprint, i.title, i.url, i.content, i.author,
 i.published_at, i.read_at, i.created_at, i.updated_at`

func (r *itemRepository) GetByID(ctx context.Context, ownerID string, id int64) (model.FeedItem, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT `+itemColumns+` FROM feed_items i
		 INNER JOIN feeds f ON i.feed_id = f.id
		 WHERE i.id = ? AND f.owner_id = ?`,
		id,
		ownerID,
	)
	return scanItem(row)
}

func (r *itemRepository) List(ctx context.Context, filter ItemListFilter) ([]model.FeedItem, error) {
	query := `SELECT ` + itemColumns + ` FROM feed_items i INNER JOIN feeds f ON i.feed_id = f.id`
	conditions := []string{"f.owner_id = ?"}
	args := []interface{}{filter.OwnerID}

	if filter.FeedID != nil {
		conditions = append(conditions, "i.feed_id = ?")
		args = append(args, *filter.FeedID)
	}

	if filter.FolderID != nil {
		// A feed belongs to the folder through a membership row or the
		// legacy single-folder column; either shape counts.
		conditions = append(conditions, `(f.folder_id = ? OR i.feed_id IN (SELECT feed_id FROM feed_folders WHERE folder_id = ?))`)
		args = append(args, *filter.FolderID, *filter.FolderID)
	}

	if filter.UnreadOnly {
		conditions = append(conditions, "i.read_at IS NULL")
	}

	query += " WHERE " + strings.Join(conditions, " AND ")
	query += " ORDER BY COALESCE(i.published_at, i.created_at) DESC, i.id DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []model.FeedItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}

	return items, nil
}

func (r *itemRepository) SetRead(ctx context.Context, ownerID string, id int64, read bool) error {
	var readAt interface{}
	if read {
		readAt = formatTime(time.Now())
	}

	_, err := r.db.ExecContext(
		ctx,
		`UPDATE feed_items SET read_at = ?, updated_at = ?
		 WHERE id = ? AND feed_id IN (SELECT id FROM feeds WHERE owner_id = ?)`,
		readAt,
		formatTime(time.Now()),
		id,
		ownerID,
	)
	return err
}

func (r *itemRepository) MarkAllRead(ctx context.Context, ownerID string, feedID, folderID *int64) error {
	now := formatTime(time.Now())
	query := `UPDATE feed_items SET read_at = ?, updated_at = ?
		 WHERE read_at IS NULL AND feed_id IN (SELECT id FROM feeds WHERE owner_id = ?`
	args := []interface{}{now, now, ownerID}

	switch {
	case feedID != nil:
		query += ` AND id = ?)`
		args = append(args, *feedID)
	case folderID != nil:
		query += ` AND (folder_id = ? OR id IN (SELECT feed_id FROM feed_folders WHERE folder_id = ?)))`
		args = append(args, *folderID, *folderID)
	default:
		query += `)`
	}

	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

func (r *itemRepository) UnreadCounts(ctx context.Context, ownerID string) ([]UnreadCount, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT i.feed_id, COUNT(*) FROM feed_items i
		 INNER JOIN feeds f ON i.feed_id = f.id
		 WHERE f.owner_id = ? AND i.read_at IS NULL
		 GROUP BY i.feed_id`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("unread counts: %w", err)
	}
	defer rows.Close()

	var counts []UnreadCount
	for rows.Next() {
		var uc UnreadCount
		if err := rows.Scan(&uc.FeedID, &uc.Count); err != nil {
			return nil, fmt.Errorf("scan unread count: %w", err)
		}
		counts = append(counts, uc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate unread counts: %w", err)
	}

	return counts, nil
}

func (r *itemRepository) CountByFeed(ctx context.Context, feedID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM feed_items WHERE feed_id = ?`, feedID).Scan(&count)
	return count, err
}

func (r *itemRepository) DeleteOldest(ctx context.Context, feedID int64, keep int) (int64, error) {
	result, err := r.db.ExecContext(
		ctx,
		`DELETE FROM feed_items WHERE feed_id = ? AND id NOT IN (
		   SELECT id FROM feed_items WHERE feed_id = ?
		   ORDER BY COALESCE(published_at, created_at) DESC, id DESC
		   LIMIT ?
		 )`,
		feedID,
		feedID,
		keep,
	)
	if err != nil {
		return 0, fmt.Errorf("delete oldest items: %w", err)
	}
	return result.RowsAffected()
}

func scanItem(scanner interface {
	Scan(dest ...interface{}) error
}) (model.FeedItem, error) {
	var item model.FeedItem
	var guid, fingerprint, title, url, content, author sql.NullString
	var publishedAt, readAt sql.NullString
	var createdAt, updatedAt string

	err := scanner.Scan(
		&item.ID,
		&item.FeedID,
		&guid,
		&fingerprint,
		&title,
		&url,
		&content,
		&author,
		&publishedAt,
		&readAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return model.FeedItem{}, err
	}

	if guid.Valid {
		item.GUID = &guid.String
	}
	if fingerprint.Valid {
		item.Fingerprint = &fingerprint.String
	}
	if title.Valid {
		item.Title = &title.String
	}
	if url.Valid {
		item.URL = &url.String
	}
	if content.Valid {
		item.Content = &content.String
	}
	if author.Valid {
		item.Author = &author.String
	}
	if publishedAt.Valid {
		item.PublishedAt = parseTimePtr(publishedAt.String)
	}
	if readAt.Valid {
		item.ReadAt = parseTimePtr(readAt.String)
	}
	item.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return model.FeedItem{}, fmt.Errorf("parse item created_at: %w", err)
	}
	item.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return model.FeedItem{}, fmt.Errorf("parse item updated_at: %w", err)
	}

	return item, nil
}
