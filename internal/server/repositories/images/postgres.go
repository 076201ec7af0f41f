package images

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/imagevault/internal/common"
	"github.com/dmitrijs2005/imagevault/internal/dbx"
	"github.com/dmitrijs2005/imagevault/internal/server/models"
	"github.com/jmoiron/sqlx"
)

// viewSelect joins the folder name (NULL once the folder is gone) and the owner email.
const viewSelect = `SELECT i.id, i.name, i.image_url, i.storage_key, i.folder_id, i.user_id,
		i.created_at, i.updated_at, f.name AS folder_name, u.email AS owner_email
		 FROM images i
		 LEFT JOIN folders f ON f.id = i.folder_id AND f.user_id = i.user_id
		 JOIN users u ON u.id = i.user_id
		 `

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, image *models.Image) (*models.Image, error) {
	query :=
		`INSERT INTO images (name, image_url, storage_key, folder_id, user_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		image.Name, image.ImageURL, image.StorageKey, image.FolderID, image.UserID).
		Scan(&image.ID, &image.CreatedAt, &image.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return image, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, ownerID, id string) (*models.ImageView, error) {
	query := viewSelect + `WHERE i.id = $1 AND i.user_id = $2
		 `

	return r.getOne(ctx, query, id, ownerID)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*models.ImageView, error) {
	v := &models.ImageView{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&v.ID, &v.Name, &v.ImageURL, &v.StorageKey, &v.FolderID, &v.UserID,
		&v.CreatedAt, &v.UpdatedAt, &v.FolderName, &v.OwnerEmail)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return v, nil
}

func (r *PostgresRepository) ListByFolder(ctx context.Context, ownerID, folderID string) ([]models.ImageView, error) {
	query := viewSelect + `WHERE i.user_id = $1 AND i.folder_id = $2
		 ORDER BY i.created_at DESC
		 `

	return r.list(ctx, query, ownerID, folderID)
}

// SearchByName matches query as a case-insensitive substring of the image
// name. LIKE wildcards in query are matched literally.
func (r *PostgresRepository) SearchByName(ctx context.Context, ownerID, query string) ([]models.ImageView, error) {
	q := viewSelect + `WHERE i.user_id = $1 AND i.name ILIKE $2 ESCAPE '\'
		 ORDER BY i.created_at DESC
		 `

	return r.list(ctx, q, ownerID, "%"+EscapeLike(query)+"%")
}

func (r *PostgresRepository) ListPage(ctx context.Context, ownerID string, limit, offset int) ([]models.ImageView, error) {
	query := viewSelect + `WHERE i.user_id = $1
		 ORDER BY i.created_at DESC
		 LIMIT $2 OFFSET $3
		 `

	return r.list(ctx, query, ownerID, limit, offset)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]models.ImageView, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.ImageView{}
	if err := sqlx.StructScan(rows, &result); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Count(ctx context.Context, ownerID string) (int64, error) {
	query :=
		`SELECT COUNT(*) FROM images WHERE user_id = $1
		 `

	var n int64
	if err := r.db.QueryRowContext(ctx, query, ownerID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// UpdateName renames the image and returns the refreshed view.
func (r *PostgresRepository) UpdateName(ctx context.Context, ownerID, id, name string) (*models.ImageView, error) {
	query :=
		`UPDATE images SET name = $3, updated_at = now()
		 WHERE id = $1 AND user_id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, id, ownerID, name)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return nil, common.ErrorNotFound
	}

	return r.GetByID(ctx, ownerID, id)
}

func (r *PostgresRepository) Delete(ctx context.Context, ownerID, id string) error {
	query :=
		`DELETE FROM images
		 WHERE id = $1 AND user_id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
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

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes the LIKE metacharacters of s using backslash.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}
