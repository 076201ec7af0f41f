package services

import (
	"context"
	"database/sql"
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/imagevault/internal/common"
	"github.com/dmitrijs2005/imagevault/internal/dbx"
	"github.com/dmitrijs2005/imagevault/internal/logging"
	"github.com/dmitrijs2005/imagevault/internal/server/models"
	"github.com/dmitrijs2005/imagevault/internal/server/repositories/folders"
	"github.com/dmitrijs2005/imagevault/internal/server/repositories/images"
	"github.com/dmitrijs2005/imagevault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/imagevault/internal/server/repositories/users"
)

const (
	ownerA   = "11111111-1111-1111-1111-111111111111"
	ownerB   = "22222222-2222-2222-2222-222222222222"
	folderF1 = "aaaaaaaa-0000-0000-0000-000000000001"
	folderF2 = "aaaaaaaa-0000-0000-0000-000000000002"
	imageI1  = "bbbbbbbb-0000-0000-0000-000000000001"
)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// --- users ---

type fakeUsersRepo struct {
	users.Repository

	byEmail map[string]*models.User
	byID    map[string]*models.User

	createErr  error
	lookupErr  error
	updateErr  error
	created    []*models.User
	refreshFor map[string]string
	updates    int
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{
		byEmail:    map[string]*models.User{},
		byID:       map[string]*models.User{},
		refreshFor: map[string]string{},
	}
}

func (f *fakeUsersRepo) add(u *models.User) {
	f.byEmail[u.Email] = u
	f.byID[u.ID] = u
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	u.ID = ownerA
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	f.created = append(f.created, u)
	f.add(u)
	return u, nil
}

func (f *fakeUsersRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) UpdateRefreshToken(ctx context.Context, id, token string) error {
	f.updates++
	if f.updateErr != nil {
		return f.updateErr
	}
	f.refreshFor[id] = token
	return nil
}

// --- folders ---

type fakeFoldersRepo struct {
	folders.Repository

	items map[string]*models.Folder

	createErr  error
	deleteErr  error
	created    []*models.Folder
	deleted    []string
	locked     []string
	listParent []*string
}

func newFakeFoldersRepo(items ...*models.Folder) *fakeFoldersRepo {
	f := &fakeFoldersRepo{items: map[string]*models.Folder{}}
	for _, it := range items {
		f.items[it.ID] = it
	}
	return f
}

func (f *fakeFoldersRepo) owned(ownerID, id string) (*models.Folder, error) {
	it, ok := f.items[id]
	if !ok || it.UserID != ownerID {
		return nil, common.ErrorNotFound
	}
	return it, nil
}

func (f *fakeFoldersRepo) Create(ctx context.Context, folder *models.Folder) (*models.Folder, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	folder.ID = folderF2
	f.created = append(f.created, folder)
	return folder, nil
}

func (f *fakeFoldersRepo) GetByID(ctx context.Context, ownerID, id string) (*models.Folder, error) {
	return f.owned(ownerID, id)
}

func (f *fakeFoldersRepo) LockByID(ctx context.Context, ownerID, id string) (*models.Folder, error) {
	f.locked = append(f.locked, id)
	return f.owned(ownerID, id)
}

func (f *fakeFoldersRepo) ListByParent(ctx context.Context, ownerID string, parentID *string) ([]models.Folder, error) {
	f.listParent = append(f.listParent, parentID)
	res := []models.Folder{}
	for _, it := range f.items {
		if it.UserID != ownerID {
			continue
		}
		if (parentID == nil && it.ParentID == nil) || (parentID != nil && it.ParentID != nil && *it.ParentID == *parentID) {
			res = append(res, *it)
		}
	}
	return res, nil
}

func (f *fakeFoldersRepo) HasChildren(ctx context.Context, ownerID, id string) (bool, error) {
	for _, it := range f.items {
		if it.UserID == ownerID && it.ParentID != nil && *it.ParentID == id {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeFoldersRepo) UpdateName(ctx context.Context, ownerID, id, name string) (*models.Folder, error) {
	it, err := f.owned(ownerID, id)
	if err != nil {
		return nil, err
	}
	it.Name = name
	return it, nil
}

func (f *fakeFoldersRepo) Delete(ctx context.Context, ownerID, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, err := f.owned(ownerID, id); err != nil {
		return err
	}
	delete(f.items, id)
	f.deleted = append(f.deleted, id)
	return nil
}

// --- images ---

type fakeImagesRepo struct {
	images.Repository

	items     map[string]*models.ImageView
	createErr error
	created   []*models.Image
	searched  []string
	pageArgs  [][2]int
	total     int64
}

func newFakeImagesRepo() *fakeImagesRepo {
	return &fakeImagesRepo{items: map[string]*models.ImageView{}}
}

func (f *fakeImagesRepo) Create(ctx context.Context, img *models.Image) (*models.Image, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	img.ID = imageI1
	f.created = append(f.created, img)
	name := "holidays"
	f.items[img.ID] = &models.ImageView{Image: *img, FolderName: &name, OwnerEmail: "a@example.com"}
	return img, nil
}

func (f *fakeImagesRepo) GetByID(ctx context.Context, ownerID, id string) (*models.ImageView, error) {
	it, ok := f.items[id]
	if !ok || it.UserID != ownerID {
		return nil, common.ErrorNotFound
	}
	return it, nil
}

func (f *fakeImagesRepo) ListByFolder(ctx context.Context, ownerID, folderID string) ([]models.ImageView, error) {
	res := []models.ImageView{}
	for _, it := range f.items {
		if it.UserID == ownerID && it.FolderID == folderID {
			res = append(res, *it)
		}
	}
	return res, nil
}

func (f *fakeImagesRepo) SearchByName(ctx context.Context, ownerID, query string) ([]models.ImageView, error) {
	f.searched = append(f.searched, query)
	return []models.ImageView{}, nil
}

func (f *fakeImagesRepo) ListPage(ctx context.Context, ownerID string, limit, offset int) ([]models.ImageView, error) {
	f.pageArgs = append(f.pageArgs, [2]int{limit, offset})
	return []models.ImageView{}, nil
}

func (f *fakeImagesRepo) Count(ctx context.Context, ownerID string) (int64, error) {
	return f.total, nil
}

func (f *fakeImagesRepo) UpdateName(ctx context.Context, ownerID, id, name string) (*models.ImageView, error) {
	it, err := f.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	it.Name = name
	return it, nil
}

func (f *fakeImagesRepo) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := f.GetByID(ctx, ownerID, id); err != nil {
		return err
	}
	delete(f.items, id)
	return nil
}

// --- manager ---

type fakeRepoManager struct {
	repomanager.RepositoryManager

	u *fakeUsersRepo
	f *fakeFoldersRepo
	i *fakeImagesRepo

	boundTo []dbx.DBTX
}

func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository { return m.u }
func (m *fakeRepoManager) Folders(db dbx.DBTX) folders.Repository {
	m.boundTo = append(m.boundTo, db)
	return m.f
}
func (m *fakeRepoManager) Images(db dbx.DBTX) images.Repository { return m.i }

// --- object store ---

type fakeStore struct {
	err  error
	keys []string
	body []byte
	ct   string
}

func (s *fakeStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	s.keys = append(s.keys, key)
	if s.err != nil {
		return "", s.err
	}
	s.body, _ = io.ReadAll(body)
	s.ct = contentType
	return "http://s3.local/images/" + key, nil
}

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (l nopLogger) With(...any) logging.Logger          { return l }
