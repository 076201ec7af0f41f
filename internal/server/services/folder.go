package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/imagevault/internal/common"
	"github.com/dmitrijs2005/imagevault/internal/dbx"
	"github.com/dmitrijs2005/imagevault/internal/server/models"
	"github.com/dmitrijs2005/imagevault/internal/server/repositories/repomanager"
)

// FolderService manages the owner-scoped folder tree. A folder owned by
// someone else is reported exactly like a missing one.
type FolderService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewFolderService(db *sql.DB, m repomanager.RepositoryManager) *FolderService {
	return &FolderService{db: db, repomanager: m}
}

// Create adds a folder under parentID, or at the root when parentID is nil,
// empty or "null".
func (s *FolderService) Create(ctx context.Context, ownerID, name string, parentID *string) (*models.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.NewValidationError("folder name is required")
	}

	parent := rootOrID(parentID)
	repo := s.repomanager.Folders(s.db)

	if parent != nil {
		if !isUUID(*parent) {
			return nil, common.NewValidationError("invalid parent folder id")
		}
		if _, err := repo.GetByID(ctx, ownerID, *parent); err != nil {
			return nil, err
		}
	}

	f, err := repo.Create(ctx, &models.Folder{Name: name, ParentID: parent, UserID: ownerID})
	if err != nil {
		return nil, fmt.Errorf("error creating folder: %w", err)
	}
	return f, nil
}

// ListByParent lists the owner's folders under parentID, newest first.
// "null" (or empty) selects the root level.
func (s *FolderService) ListByParent(ctx context.Context, ownerID, parentID string) ([]models.Folder, error) {
	parent := rootOrID(&parentID)
	if parent != nil && !isUUID(*parent) {
		return []models.Folder{}, nil
	}
	return s.repomanager.Folders(s.db).ListByParent(ctx, ownerID, parent)
}

func (s *FolderService) GetByID(ctx context.Context, ownerID, id string) (*models.Folder, error) {
	if !isUUID(id) {
		return nil, common.ErrorNotFound
	}
	return s.repomanager.Folders(s.db).GetByID(ctx, ownerID, id)
}

// Update renames the folder.
func (s *FolderService) Update(ctx context.Context, ownerID, id, name string) (*models.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.NewValidationError("folder name is required")
	}
	if !isUUID(id) {
		return nil, common.ErrorNotFound
	}
	return s.repomanager.Folders(s.db).UpdateName(ctx, ownerID, id, name)
}

// Delete removes an owned folder that has no child folders. The row lock
// taken inside the transaction serializes it with concurrent child inserts;
// images in the folder are left in place.
func (s *FolderService) Delete(ctx context.Context, ownerID, id string) error {
	if !isUUID(id) {
		return common.ErrorNotFound
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Folders(tx)

		if _, err := repo.LockByID(ctx, ownerID, id); err != nil {
			return err
		}

		hasChildren, err := repo.HasChildren(ctx, ownerID, id)
		if err != nil {
			return err
		}
		if hasChildren {
			return common.ErrorNotEmpty
		}

		return repo.Delete(ctx, ownerID, id)
	})
}

func rootOrID(id *string) *string {
	if id == nil {
		return nil
	}
	v := strings.TrimSpace(*id)
	if v == "" || v == common.RootFolderSentinel {
		return nil
	}
	return &v
}
