package repository

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// MembershipRepository maintains the feed_folders join table. A feed may sit
// in several folders at once; the legacy feeds.folder_id column is handled by
// the service layer, not here.
type MembershipRepository interface {
	ListByFeed(ctx context.Context, feedID int64) ([]int64, error)
	ListByOwner(ctx context.Context, ownerID string) (map[int64][]int64, error)
	Insert(ctx context.Context, ownerID string, feedID, folderID int64) error
	DeleteStale(ctx context.Context, feedID int64, keep []int64) error
}

type membershipRepository struct {
	db dbtx
}

func NewMembershipRepository(db dbtx) MembershipRepository {
	return &membershipRepository{db: db}
}

func (r *membershipRepository) ListByFeed(ctx context.Context, feedID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT folder_id FROM feed_folders WHERE feed_id = ? ORDER BY folder_id`,
		feedID,
	)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	defer rows.Close()

	var folderIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		folderIDs = append(folderIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate memberships: %w", err)
	}

	return folderIDs, nil
}

func (r *membershipRepository) ListByOwner(ctx context.Context, ownerID string) (map[int64][]int64, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT feed_id, folder_id FROM feed_folders WHERE owner_id = ? ORDER BY feed_id, folder_id`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list owner memberships: %w", err)
	}
	defer rows.Close()

	memberships := make(map[int64][]int64)
	for rows.Next() {
		var feedID, folderID int64
		if err := rows.Scan(&feedID, &folderID); err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		memberships[feedID] = append(memberships[feedID], folderID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate owner memberships: %w", err)
	}

	return memberships, nil
}

func (r *membershipRepository) Insert(ctx context.Context, ownerID string, feedID, folderID int64) error {
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO feed_folders (owner_id, feed_id, folder_id, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT DO NOTHING`,
		ownerID,
		feedID,
		folderID,
		formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("insert membership: %w", err)
	}
	return nil
}

func (r *membershipRepository) DeleteStale(ctx context.Context, feedID int64, keep []int64) error {
	if len(keep) == 0 {
		_, err := r.db.ExecContext(ctx, `DELETE FROM feed_folders WHERE feed_id = ?`, feedID)
		if err != nil {
			return fmt.Errorf("delete memberships: %w", err)
		}
		return nil
	}

	placeholders := strings.Repeat("?,", len(keep)-1) + "?"
	args := make([]interface{}, 0, len(keep)+1)
	args = append(args, feedID)
	for _, id := range keep {
		args = append(args, id)
	}

	_, err := r.db.ExecContext(
		ctx,
		`DELETE FROM feed_folders WHERE feed_id = ? AND folder_id NOT IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("delete stale memberships: %w", err)
	}
	return nil
}
