// Package users provides the PostgreSQL-backed credential store. Each user row
// also carries the ordered folder and note reference sets of its owner.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/dbx"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
)

// Unique constraints declared by the users migration.
const (
	constraintUsername = "users_username_key"
	constraintEmail    = "users_email_key"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// refColumn maps a reference kind to its array column. The result is only
// ever one of two constants, so it is safe to splice into SQL.
func refColumn(kind models.Kind) (string, error) {
	switch kind {
	case models.KindFolder:
		return "folder_ids", nil
	case models.KindNote:
		return "note_ids", nil
	default:
		return "", fmt.Errorf("unknown reference kind %q", kind)
	}
}

// duplicate maps a unique violation to the identity field it names.
func duplicate(err error) error {
	switch c := dbx.ConstraintName(err); c {
	case constraintUsername:
		return &common.DuplicateError{Field: common.FieldUsername}
	case constraintEmail:
		return &common.DuplicateError{Field: common.FieldEmail}
	default:
		return &common.DuplicateError{Field: c}
	}
}

// Create inserts a new user with empty reference sets. A clash on username or
// email yields a *common.DuplicateError naming the field.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (id, username, email, password_hash)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.UserName, user.Email, user.PasswordHash).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, duplicate(err)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.FolderIDs = []string{}
	user.NoteIDs = []string{}
	return user, nil
}

func (r *PostgresRepository) getBy(ctx context.Context, column, value string) (*models.User, error) {
	query := `SELECT id, username, email, password_hash, created_at, updated_at FROM users WHERE ` + column + ` = $1`

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, value).
		Scan(&user.ID, &user.UserName, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

// GetByEmail looks a user up by its (already normalized) email.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getBy(ctx, "email", email)
}

// UpdateCredentials changes the username and/or password hash. Nil arguments
// keep the stored value.
func (r *PostgresRepository) UpdateCredentials(ctx context.Context, id string, userName, passwordHash *string) (*models.User, error) {
	query :=
		`UPDATE users
		 SET username = COALESCE($2, username),
		     password_hash = COALESCE($3, password_hash),
		     updated_at = now()
		 WHERE id = $1
		 RETURNING id, username, email, password_hash, created_at, updated_at`

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, id, userName, passwordHash).
		Scan(&user.ID, &user.UserName, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		if dbx.IsUniqueViolation(err) {
			return nil, duplicate(err)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

// Delete removes the user row only. Owned folders and notes are removed by
// the caller inside the same transaction.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

// Exists reports whether a user with the given id is present.
func (r *PostgresRepository) Exists(ctx context.Context, id string) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return ok, nil
}

// Refs returns the reference set of the given kind in insertion order.
// An unknown user yields common.ErrorNotFound; a user with an empty set
// yields an empty slice.
func (r *PostgresRepository) Refs(ctx context.Context, id string, kind models.Kind) ([]string, error) {
	col, err := refColumn(kind)
	if err != nil {
		return nil, err
	}

	query := `SELECT r.ref::text FROM users u
		LEFT JOIN LATERAL unnest(u.` + col + `) WITH ORDINALITY AS r(ref, pos) ON TRUE
		WHERE u.id = $1
		ORDER BY r.pos`

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to select refs: %w", err)
	}
	defer rows.Close()

	found := false
	result := []string{}
	for rows.Next() {
		found = true
		var ref sql.NullString
		if err := rows.Scan(&ref); err != nil {
			return nil, err
		}
		if ref.Valid {
			result = append(result, ref.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if !found {
		return nil, common.ErrorNotFound
	}
	return result, nil
}

// HasRef reports whether ref is in the user's set of the given kind.
func (r *PostgresRepository) HasRef(ctx context.Context, id string, kind models.Kind, ref string) (bool, error) {
	col, err := refColumn(kind)
	if err != nil {
		return false, err
	}

	query := `SELECT $2::uuid = ANY(` + col + `) FROM users WHERE id = $1`

	var ok bool
	if err := r.db.QueryRowContext(ctx, query, id, ref).Scan(&ok); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, common.ErrorNotFound
		}
		return false, fmt.Errorf("db error: %w", err)
	}
	return ok, nil
}

// AttachRef appends ref to the user's set unless it is already there. The
// append and the duplicate check happen in one statement.
func (r *PostgresRepository) AttachRef(ctx context.Context, id string, kind models.Kind, ref string) error {
	col, err := refColumn(kind)
	if err != nil {
		return err
	}

	query := `UPDATE users
		SET ` + col + ` = array_append(` + col + `, $2::uuid), updated_at = now()
		WHERE id = $1 AND NOT ($2::uuid = ANY(` + col + `))`

	res, err := r.db.ExecContext(ctx, query, id, ref)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n > 0 {
		return nil
	}

	// Nothing changed: either the ref was already present or the user is gone.
	ok, err := r.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return common.ErrorNotFound
	}
	return nil
}

// DetachRef removes every occurrence of ref from the user's set.
func (r *PostgresRepository) DetachRef(ctx context.Context, id string, kind models.Kind, ref string) error {
	col, err := refColumn(kind)
	if err != nil {
		return err
	}

	query := `UPDATE users
		SET ` + col + ` = array_remove(` + col + `, $2::uuid), updated_at = now()
		WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, ref)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}
