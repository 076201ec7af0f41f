// Package httpapi exposes the imagevault REST API over chi.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/imagevault/internal/logging"
	"github.com/dmitrijs2005/imagevault/internal/server/cache"
	"github.com/dmitrijs2005/imagevault/internal/server/config"
	"github.com/dmitrijs2005/imagevault/internal/server/models"
	"github.com/dmitrijs2005/imagevault/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const shutdownTimeout = 10 * time.Second

type userService interface {
	Register(ctx context.Context, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}

type folderService interface {
	Create(ctx context.Context, ownerID, name string, parentID *string) (*models.Folder, error)
	ListByParent(ctx context.Context, ownerID, parentID string) ([]models.Folder, error)
	GetByID(ctx context.Context, ownerID, id string) (*models.Folder, error)
	Update(ctx context.Context, ownerID, id, name string) (*models.Folder, error)
	Delete(ctx context.Context, ownerID, id string) error
}

type imageService interface {
	Upload(ctx context.Context, ownerID string, in services.UploadInput) (*models.ImageView, error)
	ListByFolder(ctx context.Context, ownerID, folderID string) ([]models.ImageView, error)
	Search(ctx context.Context, ownerID, query string) ([]models.ImageView, error)
	GetByID(ctx context.Context, ownerID, id string) (*models.ImageView, error)
	Update(ctx context.Context, ownerID, id, name string) (*models.ImageView, error)
	Delete(ctx context.Context, ownerID, id string) error
	ListAll(ctx context.Context, ownerID string, page, limit int) (*services.ImagePage, error)
}

type tokenVerifier interface {
	VerifyAccess(token string) (string, error)
	AccessTTL() time.Duration
	RefreshTTL() time.Duration
}

type HTTPServer struct {
	config  *config.Config
	logger  logging.Logger
	users   userService
	folders folderService
	images  imageService
	tokens  tokenVerifier
	limiter cache.Counter
}

// NewHTTPServer builds the API server. limiter may be nil, which disables
// login rate limiting.
func NewHTTPServer(c *config.Config, l logging.Logger, us userService, fs folderService, is imageService,
	tv tokenVerifier, limiter cache.Counter) *HTTPServer {
	return &HTTPServer{
		config:  c,
		logger:  l.With("module", "http_server"),
		users:   us,
		folders: fs,
		images:  is,
		tokens:  tv,
		limiter: limiter,
	}
}

// Router returns the chi router with every route mounted.
func (s *HTTPServer) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/", s.register)
			r.With(s.rateLimitLogin).Post("/login", s.login)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.identityMiddleware)

			r.Route("/folders", func(r chi.Router) {
				r.Post("/", s.createFolder)
				r.Get("/parent/{parentId}", s.listFolders)
				r.Get("/{id}", s.getFolder)
				r.Put("/{id}", s.updateFolder)
				r.Delete("/{id}", s.deleteFolder)
			})

			r.Route("/images", func(r chi.Router) {
				r.Post("/upload", s.uploadImage)
				r.Get("/search", s.searchImages)
				r.Get("/folder/{folderId}", s.listFolderImages)
				r.Get("/all", s.listAllImages)
				r.Get("/{id}", s.getImage)
				r.Put("/{id}", s.updateImage)
				r.Delete("/{id}", s.deleteImage)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeFail(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeFail(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.HTTPAddr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		errCh <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.config.HTTPAddr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return <-errCh
}
