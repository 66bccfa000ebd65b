// Package notes provides PostgreSQL-backed note storage. Like folders, notes
// are owned through the users.note_ids reference set rather than a column.
package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/dbx"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
)

const noteColumns = `id, title, content, is_pinned, is_starred, is_archived, is_deleted, folder_id, created_at, updated_at`

// PostgresRepository implements note storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNote(s scanner) (*models.Note, error) {
	var (
		n                        models.Note
		title, content, folderID sql.NullString
	)
	if err := s.Scan(&n.ID, &title, &content, &n.IsPinned, &n.IsStarred, &n.IsArchived, &n.IsDeleted,
		&folderID, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return nil, err
	}
	n.Title = nullable(title)
	n.Content = nullable(content)
	n.FolderID = nullable(folderID)
	return &n, nil
}

func nullable(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

// Create inserts a note with a caller-assigned id and fills its timestamps.
func (r *PostgresRepository) Create(ctx context.Context, note *models.Note) error {
	query := `INSERT INTO notes (id, title, content, is_pinned, is_starred, is_archived, is_deleted, folder_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		note.ID, note.Title, note.Content, note.IsPinned, note.IsStarred, note.IsArchived, note.IsDeleted, note.FolderID,
	).Scan(&note.CreatedAt, &note.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Update replaces every mutable field of the note.
func (r *PostgresRepository) Update(ctx context.Context, note *models.Note) error {
	query := `UPDATE notes
		SET title = $2, content = $3, is_pinned = $4, is_starred = $5, is_archived = $6, is_deleted = $7,
		    folder_id = $8, updated_at = now()
		WHERE id = $1
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		note.ID, note.Title, note.Content, note.IsPinned, note.IsStarred, note.IsArchived, note.IsDeleted, note.FolderID,
	).Scan(&note.CreatedAt, &note.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Note, error) {
	n, err := scanNote(r.db.QueryRowContext(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// ListOwnedBy resolves the user's note references in reference order.
func (r *PostgresRepository) ListOwnedBy(ctx context.Context, userID string) ([]*models.Note, error) {
	query := `SELECT n.id, n.title, n.content, n.is_pinned, n.is_starred, n.is_archived, n.is_deleted,
		       n.folder_id, n.created_at, n.updated_at
		FROM users u
		CROSS JOIN LATERAL unnest(u.note_ids) WITH ORDINALITY AS r(ref, pos)
		JOIN notes n ON n.id = r.ref
		WHERE u.id = $1
		ORDER BY r.pos`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select notes: %w", err)
	}
	defer rows.Close()

	result := []*models.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteOwnedBy removes every note referenced by the user.
func (r *PostgresRepository) DeleteOwnedBy(ctx context.Context, userID string) (int64, error) {
	query := `DELETE FROM notes WHERE id IN (SELECT unnest(note_ids) FROM users WHERE id = $1)`

	res, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}
