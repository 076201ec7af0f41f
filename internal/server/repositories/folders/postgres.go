package folders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/imagevault/internal/common"
	"github.com/dmitrijs2005/imagevault/internal/dbx"
	"github.com/dmitrijs2005/imagevault/internal/server/models"
	"github.com/jmoiron/sqlx"
)

const folderColumns = `id, name, parent_id, user_id, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a folder. A parent that vanished before commit surfaces
// as a foreign key violation and is reported as common.ErrorNotFound.
func (r *PostgresRepository) Create(ctx context.Context, folder *models.Folder) (*models.Folder, error) {
	query :=
		`INSERT INTO folders (name, parent_id, user_id)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query, folder.Name, nullable(folder.ParentID), folder.UserID).
		Scan(&folder.ID, &folder.CreatedAt, &folder.UpdatedAt)
	if err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return folder, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, ownerID, id string) (*models.Folder, error) {
	query := `SELECT ` + folderColumns + ` FROM folders
		 WHERE id = $1 AND user_id = $2
		 `
	return r.getOne(ctx, query, id, ownerID)
}

// LockByID is GetByID with a row lock; it is meant to run inside a transaction.
func (r *PostgresRepository) LockByID(ctx context.Context, ownerID, id string) (*models.Folder, error) {
	query := `SELECT ` + folderColumns + ` FROM folders
		 WHERE id = $1 AND user_id = $2
		 FOR UPDATE
		 `
	return r.getOne(ctx, query, id, ownerID)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*models.Folder, error) {
	f := &models.Folder{}
	err := r.db.QueryRowContext(ctx, query, args...).
		Scan(&f.ID, &f.Name, &f.ParentID, &f.UserID, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return f, nil
}

// ListByParent returns the owner's folders directly under parentID, or the
// root folders when parentID is nil, newest first.
func (r *PostgresRepository) ListByParent(ctx context.Context, ownerID string, parentID *string) ([]models.Folder, error) {
	query := `SELECT ` + folderColumns + ` FROM folders
		 WHERE user_id = $1 AND parent_id IS NOT DISTINCT FROM $2
		 ORDER BY created_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, ownerID, nullable(parentID))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.Folder{}
	if err := sqlx.StructScan(rows, &result); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) HasChildren(ctx context.Context, ownerID, id string) (bool, error) {
	query :=
		`SELECT EXISTS (SELECT 1 FROM folders WHERE parent_id = $1 AND user_id = $2)
		 `

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, id, ownerID).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) UpdateName(ctx context.Context, ownerID, id, name string) (*models.Folder, error) {
	query :=
		`UPDATE folders SET name = $3, updated_at = now()
		 WHERE id = $1 AND user_id = $2
		 RETURNING ` + folderColumns + `
		 `
	return r.getOne(ctx, query, id, ownerID, name)
}

// Delete removes the folder. A remaining child folder trips the parent_id
// foreign key and is reported as common.ErrorNotEmpty.
func (r *PostgresRepository) Delete(ctx context.Context, ownerID, id string) error {
	query :=
		`DELETE FROM folders
		 WHERE id = $1 AND user_id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return common.ErrorNotEmpty
		}
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
