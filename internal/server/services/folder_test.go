package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/imagevault/internal/common"
	"github.com/dmitrijs2005/imagevault/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func newFolderService(t *testing.T, f *fakeFoldersRepo) (*FolderService, *fakeRepoManager) {
	t.Helper()
	db, _ := newSQLMockDB(t)
	rm := &fakeRepoManager{f: f}
	return NewFolderService(db, rm), rm
}

func TestFolderCreate(t *testing.T) {
	parent := &models.Folder{ID: folderF1, Name: "holidays", UserID: ownerA}

	tests := []struct {
		name       string
		owner      string
		folderName string
		parentID   *string
		wantErr    error
		wantParent *string
	}{
		{name: "root", owner: ownerA, folderName: " holidays ", wantParent: nil},
		{name: "null sentinel is root", owner: ownerA, folderName: "x", parentID: strPtr("null")},
		{name: "empty parent is root", owner: ownerA, folderName: "x", parentID: strPtr("")},
		{name: "child of owned parent", owner: ownerA, folderName: "2024", parentID: strPtr(folderF1), wantParent: strPtr(folderF1)},
		{name: "empty name", owner: ownerA, folderName: "   ", wantErr: common.ErrorInvalidInput},
		{name: "malformed parent", owner: ownerA, folderName: "x", parentID: strPtr("nope"), wantErr: common.ErrorInvalidInput},
		{name: "missing parent", owner: ownerA, folderName: "x", parentID: strPtr(folderF2), wantErr: common.ErrorNotFound},
		{name: "foreign parent looks missing", owner: ownerB, folderName: "x", parentID: strPtr(folderF1), wantErr: common.ErrorNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeFoldersRepo(parent)
			s, _ := newFolderService(t, repo)

			got, err := s.Create(context.Background(), tt.owner, tt.folderName, tt.parentID)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, repo.created)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.owner, got.UserID)
			assert.NotContains(t, got.Name, " ")
			if tt.wantParent == nil {
				assert.Nil(t, got.ParentID)
			} else {
				require.NotNil(t, got.ParentID)
				assert.Equal(t, *tt.wantParent, *got.ParentID)
			}
		})
	}
}

func TestFolderCreate_ParentVanishedConcurrently(t *testing.T) {
	repo := newFakeFoldersRepo(&models.Folder{ID: folderF1, UserID: ownerA})
	repo.createErr = common.ErrorNotFound
	s, _ := newFolderService(t, repo)

	_, err := s.Create(context.Background(), ownerA, "x", strPtr(folderF1))
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestFolderListByParent(t *testing.T) {
	repo := newFakeFoldersRepo(
		&models.Folder{ID: folderF1, Name: "root-a", UserID: ownerA},
		&models.Folder{ID: folderF2, Name: "child-a", ParentID: strPtr(folderF1), UserID: ownerA},
		&models.Folder{ID: "cccccccc-0000-0000-0000-000000000003", Name: "root-b", UserID: ownerB},
	)
	s, _ := newFolderService(t, repo)

	root, err := s.ListByParent(context.Background(), ownerA, "null")
	require.NoError(t, err)
	require.Len(t, root, 1)
	assert.Equal(t, "root-a", root[0].Name)

	children, err := s.ListByParent(context.Background(), ownerA, folderF1)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "child-a", children[0].Name)

	foreign, err := s.ListByParent(context.Background(), ownerB, folderF1)
	require.NoError(t, err)
	assert.Empty(t, foreign)

	bad, err := s.ListByParent(context.Background(), ownerA, "garbage")
	require.NoError(t, err)
	assert.NotNil(t, bad)
	assert.Empty(t, bad)
	assert.Len(t, repo.listParent, 3, "malformed id never reaches the repository")
}

func TestFolderGetAndUpdate(t *testing.T) {
	repo := newFakeFoldersRepo(&models.Folder{ID: folderF1, Name: "old", UserID: ownerA})
	s, _ := newFolderService(t, repo)

	got, err := s.GetByID(context.Background(), ownerA, folderF1)
	require.NoError(t, err)
	assert.Equal(t, "old", got.Name)

	_, err = s.GetByID(context.Background(), ownerB, folderF1)
	require.ErrorIs(t, err, common.ErrorNotFound)

	_, err = s.GetByID(context.Background(), ownerA, "bad-id")
	require.ErrorIs(t, err, common.ErrorNotFound)

	_, err = s.Update(context.Background(), ownerA, folderF1, "  ")
	require.ErrorIs(t, err, common.ErrorInvalidInput)

	_, err = s.Update(context.Background(), ownerB, folderF1, "stolen")
	require.ErrorIs(t, err, common.ErrorNotFound)

	got, err = s.Update(context.Background(), ownerA, folderF1, " new ")
	require.NoError(t, err)
	assert.Equal(t, "new", got.Name)
}

func TestFolderDelete_CommitsWhenEmpty(t *testing.T) {
	db, mock := newSQLMockDB(t)
	repo := newFakeFoldersRepo(&models.Folder{ID: folderF1, UserID: ownerA})
	rm := &fakeRepoManager{f: repo}
	s := NewFolderService(db, rm)

	mock.ExpectBegin()
	mock.ExpectCommit()

	require.NoError(t, s.Delete(context.Background(), ownerA, folderF1))
	assert.Equal(t, []string{folderF1}, repo.locked)
	assert.Equal(t, []string{folderF1}, repo.deleted)
	require.Len(t, rm.boundTo, 1)
	assert.NotEqual(t, db, rm.boundTo[0], "repository must be bound to the transaction")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFolderDelete_RollsBack(t *testing.T) {
	tests := []struct {
		name    string
		owner   string
		items   []*models.Folder
		delErr  error
		wantErr error
	}{
		{
			name:    "missing",
			owner:   ownerA,
			wantErr: common.ErrorNotFound,
		},
		{
			name:    "foreign",
			owner:   ownerB,
			items:   []*models.Folder{{ID: folderF1, UserID: ownerA}},
			wantErr: common.ErrorNotFound,
		},
		{
			name:  "has child",
			owner: ownerA,
			items: []*models.Folder{
				{ID: folderF1, UserID: ownerA},
				{ID: folderF2, ParentID: strPtr(folderF1), UserID: ownerA},
			},
			wantErr: common.ErrorNotEmpty,
		},
		{
			name:    "child inserted after check",
			owner:   ownerA,
			items:   []*models.Folder{{ID: folderF1, UserID: ownerA}},
			delErr:  common.ErrorNotEmpty,
			wantErr: common.ErrorNotEmpty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newSQLMockDB(t)
			repo := newFakeFoldersRepo(tt.items...)
			repo.deleteErr = tt.delErr
			s := NewFolderService(db, &fakeRepoManager{f: repo})

			mock.ExpectBegin()
			mock.ExpectRollback()

			err := s.Delete(context.Background(), tt.owner, folderF1)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, repo.deleted)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestFolderDelete_BeginError(t *testing.T) {
	db, mock := newSQLMockDB(t)
	s := NewFolderService(db, &fakeRepoManager{f: newFakeFoldersRepo()})

	mock.ExpectBegin().WillReturnError(errors.New("no conn"))

	err := s.Delete(context.Background(), ownerA, folderF1)
	require.EqualError(t, err, "begin tx: no conn")
}

func TestFolderDelete_MalformedID(t *testing.T) {
	db, mock := newSQLMockDB(t)
	s := NewFolderService(db, &fakeRepoManager{f: newFakeFoldersRepo()})

	err := s.Delete(context.Background(), ownerA, "x")
	require.ErrorIs(t, err, common.ErrorNotFound)
	require.NoError(t, mock.ExpectationsWereMet(), "no transaction for a malformed id")
}
