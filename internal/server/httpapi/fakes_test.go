package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/imagevault/internal/common"
	"github.com/dmitrijs2005/imagevault/internal/logging"
	"github.com/dmitrijs2005/imagevault/internal/server/auth"
	"github.com/dmitrijs2005/imagevault/internal/server/config"
	"github.com/dmitrijs2005/imagevault/internal/server/models"
	"github.com/dmitrijs2005/imagevault/internal/server/services"
	"github.com/stretchr/testify/require"
)

const (
	userA   = "9b2f6a38-7c1d-4e55-8d0a-1f3c2b4a5e60"
	userB   = "3d7e1c2a-5b6f-4a8d-9e0c-7f1a2b3c4d5e"
	folder1 = "c1a2b3d4-e5f6-4a7b-8c9d-0e1f2a3b4c5d"
)

type nopLogger struct{}

func (n nopLogger) Debug(context.Context, string, ...any) {}
func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

// --- users ---

type fakeUsers struct {
	userService

	byID map[string]*models.User

	regUser *models.User
	regErr  error

	loginRes *services.LoginResult
	loginErr error

	lookupErr error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[string]*models.User{
		userA: {ID: userA, Email: "a@example.com"},
		userB: {ID: userB, Email: "b@example.com"},
	}}
}

func (f *fakeUsers) Register(ctx context.Context, email, password string) (*models.User, error) {
	return f.regUser, f.regErr
}

func (f *fakeUsers) Login(ctx context.Context, email, password string) (*services.LoginResult, error) {
	return f.loginRes, f.loginErr
}

func (f *fakeUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

// --- folders ---

type fakeFolders struct {
	folderService

	items map[string]*models.Folder

	createdParent *string
	deleteErr     error
}

func newFakeFolders() *fakeFolders {
	return &fakeFolders{items: map[string]*models.Folder{
		folder1: {ID: folder1, Name: "holidays", UserID: userA},
	}}
}

func (f *fakeFolders) owned(ownerID, id string) (*models.Folder, error) {
	it, ok := f.items[id]
	if !ok || it.UserID != ownerID {
		return nil, common.ErrorNotFound
	}
	return it, nil
}

func (f *fakeFolders) Create(ctx context.Context, ownerID, name string, parentID *string) (*models.Folder, error) {
	if name == "" {
		return nil, common.NewValidationError("name is required")
	}
	f.createdParent = parentID
	return &models.Folder{ID: "new", Name: name, ParentID: parentID, UserID: ownerID}, nil
}

func (f *fakeFolders) ListByParent(ctx context.Context, ownerID, parentID string) ([]models.Folder, error) {
	out := []models.Folder{}
	for _, it := range f.items {
		if it.UserID == ownerID && parentID == "null" && it.ParentID == nil {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (f *fakeFolders) GetByID(ctx context.Context, ownerID, id string) (*models.Folder, error) {
	return f.owned(ownerID, id)
}

func (f *fakeFolders) Update(ctx context.Context, ownerID, id, name string) (*models.Folder, error) {
	it, err := f.owned(ownerID, id)
	if err != nil {
		return nil, err
	}
	cp := *it
	cp.Name = name
	return &cp, nil
}

func (f *fakeFolders) Delete(ctx context.Context, ownerID, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, err := f.owned(ownerID, id); err != nil {
		return err
	}
	delete(f.items, id)
	return nil
}

// --- images ---

type fakeImages struct {
	imageService

	uploadIn   services.UploadInput
	uploadBody []byte
	uploadErr  error

	searchQuery string
	search      []models.ImageView

	page, limit int
	listErr     error
}

func (f *fakeImages) Upload(ctx context.Context, ownerID string, in services.UploadInput) (*models.ImageView, error) {
	f.uploadIn = in
	if in.File != nil {
		f.uploadBody, _ = io.ReadAll(in.File.Body)
	}
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return &models.ImageView{Image: models.Image{ID: "img", Name: in.Name, FolderID: in.FolderID, UserID: ownerID}}, nil
}

func (f *fakeImages) Search(ctx context.Context, ownerID, query string) ([]models.ImageView, error) {
	f.searchQuery = query
	return f.search, nil
}

func (f *fakeImages) GetByID(ctx context.Context, ownerID, id string) (*models.ImageView, error) {
	if ownerID != userA || id != "img" {
		return nil, common.ErrorNotFound
	}
	return &models.ImageView{Image: models.Image{ID: id, UserID: ownerID}}, nil
}

func (f *fakeImages) ListAll(ctx context.Context, ownerID string, page, limit int) (*services.ImagePage, error) {
	f.page, f.limit = page, limit
	if f.listErr != nil {
		return nil, f.listErr
	}
	return &services.ImagePage{Images: []models.ImageView{}, Pagination: models.NewPagination(page, limit, 0)}, nil
}

// --- rate limiter ---

type fakeCounter struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
	ttl    time.Duration
}

func (c *fakeCounter) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return 0, c.err
	}
	if c.counts == nil {
		c.counts = map[string]int64{}
	}
	c.counts[key]++
	c.ttl = ttl
	return c.counts[key], nil
}

// --- harness ---

type harness struct {
	srv     *HTTPServer
	handler http.Handler
	issuer  *auth.Issuer
	users   *fakeUsers
	folders *fakeFolders
	images  *fakeImages
	counter *fakeCounter
	cfg     *config.Config
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SpoolDir = t.TempDir()
	cfg.MaxUploadSize = 1 << 20

	h := &harness{
		issuer:  auth.NewIssuer("access", "refresh", time.Minute, time.Hour),
		users:   newFakeUsers(),
		folders: newFakeFolders(),
		images:  &fakeImages{},
		counter: &fakeCounter{},
		cfg:     cfg,
	}
	h.srv = NewHTTPServer(cfg, nopLogger{}, h.users, h.folders, h.images, h.issuer, h.counter)
	h.handler = h.srv.Router()
	return h
}

func (h *harness) token(t *testing.T, userID string) string {
	t.Helper()
	tok, err := h.issuer.IssueAccess(userID)
	require.NoError(t, err)
	return tok
}

func (h *harness) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

type testEnvelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
}

func readEnvelope(t *testing.T, rec *httptest.ResponseRecorder) testEnvelope {
	t.Helper()
	var env testEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}
