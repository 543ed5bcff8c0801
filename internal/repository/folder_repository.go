package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"lector/backend/internal/model"
	"lector/backend/internal/snowflake"
)

type FolderRepository interface {
	Create(ctx context.Context, ownerID, name string) (model.Folder, error)
	GetByID(ctx context.Context, ownerID string, id int64) (model.Folder, error)
	// FindByName matches case-insensitively: folder names are unique per
	// owner regardless of case.
	FindByName(ctx context.Context, ownerID, name string) (*model.Folder, error)
	List(ctx context.Context, ownerID string) ([]model.Folder, error)
	ListByIDs(ctx context.Context, ownerID string, ids []int64) ([]model.Folder, error)
	Rename(ctx context.Context, ownerID string, id int64, name string) (model.Folder, error)
	Delete(ctx context.Context, ownerID string, id int64) error
}

type folderRepository struct {
	db dbtx
}

func NewFolderRepository(db dbtx) FolderRepository {
	return &folderRepository{db: db}
}

func (r *folderRepository) Create(ctx context.Context, ownerID, name string) (model.Folder, error) {
	id := snowflake.NextID()
	now := time.Now().UTC()
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO folders (id, owner_id, name, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id,
		ownerID,
		name,
		formatTime(now),
		formatTime(now),
	)
	if err != nil {
		return model.Folder{}, fmt.Errorf("create folder: %w", err)
	}

	return model.Folder{
		ID:        id,
		OwnerID:   ownerID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (r *folderRepository) GetByID(ctx context.Context, ownerID string, id int64) (model.Folder, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, owner_id, name, created_at, updated_at FROM folders WHERE id = ? AND owner_id = ?`, id, ownerID)
	return scanFolder(row)
}

func (r *folderRepository) FindByName(ctx context.Context, ownerID, name string) (*model.Folder, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT id, owner_id, name, created_at, updated_at FROM folders WHERE owner_id = ? AND name = ? COLLATE NOCASE`,
		ownerID,
		name,
	)
	folder, err := scanFolder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find folder: %w", err)
	}
	return &folder, nil
}

func (r *folderRepository) List(ctx context.Context, ownerID string) ([]model.Folder, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, owner_id, name, created_at, updated_at FROM folders WHERE owner_id = ? ORDER BY name`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	var folders []model.Folder
	for rows.Next() {
		folder, err := scanFolder(rows)
		if err != nil {
			return nil, err
		}
		folders = append(folders, folder)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	return folders, nil
}

func (r *folderRepository) ListByIDs(ctx context.Context, ownerID string, ids []int64) ([]model.Folder, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.Repeat("?,", len(ids)-1) + "?"
	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, ownerID)
	for _, id := range ids {
		args = append(args, id)
	}

	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, owner_id, name, created_at, updated_at FROM folders WHERE owner_id = ? AND id IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list folders by ids: %w", err)
	}
	defer rows.Close()

	var folders []model.Folder
	for rows.Next() {
		folder, err := scanFolder(rows)
		if err != nil {
			return nil, err
		}
		folders = append(folders, folder)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders by ids: %w", err)
	}

	return folders, nil
}

func (r *folderRepository) Rename(ctx context.Context, ownerID string, id int64, name string) (model.Folder, error) {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(
		ctx,
		`UPDATE folders SET name = ?, updated_at = ? WHERE id = ? AND owner_id = ?`,
		name,
		formatTime(now),
		id,
		ownerID,
	)
	if err != nil {
		return model.Folder{}, fmt.Errorf("rename folder: %w", err)
	}

	return r.GetByID(ctx, ownerID, id)
}

func (r *folderRepository) Delete(ctx context.Context, ownerID string, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM folders WHERE id = ? AND owner_id = ?`, id, ownerID); err != nil {
		return fmt.Errorf("delete folder: %w", err)
	}
	return nil
}

func scanFolder(scanner interface {
	Scan(dest ...interface{}) error
}) (model.Folder, error) {
	var folder model.Folder
	var createdAt, updatedAt string
	if err := scanner.Scan(&folder.ID, &folder.OwnerID, &folder.Name, &createdAt, &updatedAt); err != nil {
		return model.Folder{}, err
	}
	var err error
	folder.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return model.Folder{}, fmt.Errorf("parse folder created_at: %w", err)
	}
	folder.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return model.Folder{}, fmt.Errorf("parse folder updated_at: %w", err)
	}
	return folder, nil
}
