package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"math"
	"mime"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dmitrijs2005/imagevault/internal/common"
	"github.com/dmitrijs2005/imagevault/internal/logging"
	"github.com/dmitrijs2005/imagevault/internal/server/models"
	"github.com/dmitrijs2005/imagevault/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// ObjectStore keeps image binaries.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
}

// UploadFile is the binary part of an upload.
type UploadFile struct {
	Body        io.Reader
	Size        int64
	ContentType string
	Filename    string
}

type UploadInput struct {
	Name     string
	FolderID string
	File     *UploadFile
}

// ImagePage is one page of ListAll.
type ImagePage struct {
	Images     []models.ImageView `json:"images"`
	Pagination models.Pagination  `json:"pagination"`
}

type ImageService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       ObjectStore
	logger      logging.Logger
}

func NewImageService(db *sql.DB, m repomanager.RepositoryManager, store ObjectStore, logger logging.Logger) *ImageService {
	return &ImageService{db: db, repomanager: m, store: store, logger: logger}
}

// Upload stores the file in the object store and then records the image.
// No row is written when the object store fails.
func (s *ImageService) Upload(ctx context.Context, ownerID string, in UploadInput) (*models.ImageView, error) {
	name := strings.TrimSpace(in.Name)
	folderID := strings.TrimSpace(in.FolderID)
	if name == "" || folderID == "" {
		return nil, common.NewValidationError("name and folderId are required")
	}

	if !isUUID(folderID) {
		return nil, common.ErrorNotFound
	}
	if _, err := s.repomanager.Folders(s.db).GetByID(ctx, ownerID, folderID); err != nil {
		return nil, err
	}

	if in.File == nil || in.File.Body == nil {
		return nil, common.NewValidationError("image file is required")
	}
	if !strings.HasPrefix(in.File.ContentType, "image/") {
		return nil, common.NewValidationError("only image files are allowed")
	}

	key := storageKey(ownerID, folderID, in.File)

	url, err := s.store.Put(ctx, key, in.File.Body, in.File.Size, in.File.ContentType)
	if err != nil {
		s.logger.Error(ctx, "object store upload failed", "key", key, "error", err)
		return nil, fmt.Errorf("%w: %w", common.ErrorUploadFailed, err)
	}

	repo := s.repomanager.Images(s.db)
	img, err := repo.Create(ctx, &models.Image{
		Name:       name,
		ImageURL:   url,
		StorageKey: key,
		FolderID:   folderID,
		UserID:     ownerID,
	})
	if err != nil {
		s.logger.Error(ctx, "image row not created, stored object is unreferenced", "key", key, "error", err)
		return nil, fmt.Errorf("error creating image: %w", err)
	}

	return repo.GetByID(ctx, ownerID, img.ID)
}

// ListByFolder lists the images of an owned folder, newest first.
func (s *ImageService) ListByFolder(ctx context.Context, ownerID, folderID string) ([]models.ImageView, error) {
	if !isUUID(folderID) {
		return nil, common.ErrorNotFound
	}
	if _, err := s.repomanager.Folders(s.db).GetByID(ctx, ownerID, folderID); err != nil {
		return nil, err
	}
	return s.repomanager.Images(s.db).ListByFolder(ctx, ownerID, folderID)
}

// Search matches query case-insensitively against the names of all the
// owner's images.
func (s *ImageService) Search(ctx context.Context, ownerID, query string) ([]models.ImageView, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, common.NewValidationError("search query is required")
	}
	return s.repomanager.Images(s.db).SearchByName(ctx, ownerID, query)
}

func (s *ImageService) GetByID(ctx context.Context, ownerID, id string) (*models.ImageView, error) {
	if !isUUID(id) {
		return nil, common.ErrorNotFound
	}
	return s.repomanager.Images(s.db).GetByID(ctx, ownerID, id)
}

func (s *ImageService) Update(ctx context.Context, ownerID, id, name string) (*models.ImageView, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.NewValidationError("image name is required")
	}
	if !isUUID(id) {
		return nil, common.ErrorNotFound
	}
	return s.repomanager.Images(s.db).UpdateName(ctx, ownerID, id, name)
}

// Delete removes the image record. The stored object is kept.
func (s *ImageService) Delete(ctx context.Context, ownerID, id string) error {
	if !isUUID(id) {
		return common.ErrorNotFound
	}
	return s.repomanager.Images(s.db).Delete(ctx, ownerID, id)
}

// ListAll returns one page of the owner's images, newest first. limit is
// capped at MaxLimit.
func (s *ImageService) ListAll(ctx context.Context, ownerID string, page, limit int) (*ImagePage, error) {
	if page < 1 || limit < 1 {
		return nil, common.NewValidationError("page and limit must be positive")
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if page-1 > math.MaxInt/limit {
		return nil, common.NewValidationError("page is out of range")
	}

	repo := s.repomanager.Images(s.db)

	total, err := repo.Count(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	images, err := repo.ListPage(ctx, ownerID, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	return &ImagePage{
		Images:     images,
		Pagination: models.NewPagination(page, limit, total),
	}, nil
}

var safeExt = regexp.MustCompile(`^\.[a-z0-9]{1,5}$`)

// storageKey builds <owner>/<folder>/<uuid><ext>. The extension comes from the
// client filename only when it is short and alphanumeric, otherwise from the
// content type.
func storageKey(ownerID, folderID string, f *UploadFile) string {
	ext := strings.ToLower(filepath.Ext(f.Filename))
	if !safeExt.MatchString(ext) {
		ext = ""
		if exts, err := mime.ExtensionsByType(f.ContentType); err == nil && len(exts) > 0 {
			ext = exts[0]
		}
	}
	return fmt.Sprintf("%s/%s/%s%s", ownerID, folderID, uuid.NewString(), ext)
}
