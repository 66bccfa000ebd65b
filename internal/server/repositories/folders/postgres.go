// Package folders provides PostgreSQL-backed folder storage. Folders carry no
// owner column: ownership lives in the users.folder_ids reference set.
package folders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/dbx"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
)

// PostgresRepository implements folder storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a folder with a caller-assigned id and fills its timestamps.
func (r *PostgresRepository) Create(ctx context.Context, folder *models.Folder) error {
	query := `INSERT INTO folders (id, name) VALUES ($1, $2) RETURNING created_at, updated_at`

	if err := r.db.QueryRowContext(ctx, query, folder.ID, folder.Name).
		Scan(&folder.CreatedAt, &folder.UpdatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Update renames the folder. A missing row yields common.ErrorNotFound.
func (r *PostgresRepository) Update(ctx context.Context, folder *models.Folder) error {
	query := `UPDATE folders SET name = $2, updated_at = now() WHERE id = $1 RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, folder.ID, folder.Name).Scan(&folder.CreatedAt, &folder.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Delete removes the folder. Notes filed in it fall back to no folder.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM folders WHERE id = $1`, id)
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

// ListOwnedBy resolves the user's folder references in reference order.
// References without a matching row are skipped.
func (r *PostgresRepository) ListOwnedBy(ctx context.Context, userID string) ([]*models.Folder, error) {
	query := `SELECT f.id, f.name, f.created_at, f.updated_at
		FROM users u
		CROSS JOIN LATERAL unnest(u.folder_ids) WITH ORDINALITY AS r(ref, pos)
		JOIN folders f ON f.id = r.ref
		WHERE u.id = $1
		ORDER BY r.pos`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select folders: %w", err)
	}
	defer rows.Close()

	result := []*models.Folder{}
	for rows.Next() {
		var item models.Folder
		if err := rows.Scan(&item.ID, &item.Name, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteOwnedBy removes every folder referenced by the user and returns the
// number of rows removed. The user's reference set itself is left alone.
func (r *PostgresRepository) DeleteOwnedBy(ctx context.Context, userID string) (int64, error) {
	query := `DELETE FROM folders WHERE id IN (SELECT unnest(folder_ids) FROM users WHERE id = $1)`

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
