package images

import (
	"context"

	"github.com/dmitrijs2005/imagevault/internal/server/models"
)

// Repository persists image records. Every method is scoped to the owner.
type Repository interface {
	Create(ctx context.Context, image *models.Image) (*models.Image, error)
	GetByID(ctx context.Context, ownerID, id string) (*models.ImageView, error)
	ListByFolder(ctx context.Context, ownerID, folderID string) ([]models.ImageView, error)
	SearchByName(ctx context.Context, ownerID, query string) ([]models.ImageView, error)
	ListPage(ctx context.Context, ownerID string, limit, offset int) ([]models.ImageView, error)
	Count(ctx context.Context, ownerID string) (int64, error)
	UpdateName(ctx context.Context, ownerID, id, name string) (*models.ImageView, error)
	Delete(ctx context.Context, ownerID, id string) error
}
