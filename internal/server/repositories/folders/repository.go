package folders

import (
	"context"

	"github.com/dmitrijs2005/imagevault/internal/server/models"
)

// Repository persists folders. Every method is scoped to the owner.
type Repository interface {
	Create(ctx context.Context, folder *models.Folder) (*models.Folder, error)
	GetByID(ctx context.Context, ownerID, id string) (*models.Folder, error)
	LockByID(ctx context.Context, ownerID, id string) (*models.Folder, error)
	ListByParent(ctx context.Context, ownerID string, parentID *string) ([]models.Folder, error)
	HasChildren(ctx context.Context, ownerID, id string) (bool, error)
	UpdateName(ctx context.Context, ownerID, id, name string) (*models.Folder, error)
	Delete(ctx context.Context, ownerID, id string) error
}
