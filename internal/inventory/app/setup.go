// Package app contains the application setup for the InventoryService.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/inventory/internal/config"
	"github.com/abgdnv/inventory/internal/inventory/apidoc"
	"github.com/abgdnv/inventory/internal/inventory/handler"
	"github.com/abgdnv/inventory/internal/inventory/photo"
	"github.com/abgdnv/inventory/internal/inventory/service"
	"github.com/abgdnv/inventory/internal/inventory/store"
	"github.com/abgdnv/inventory/internal/platform/metrics"
	"github.com/abgdnv/inventory/internal/platform/web"
	"github.com/go-chi/chi/v5"
)

type Dependencies struct {
	InventoryService service.InventoryService
	Janitor          *photo.Janitor
	Metrics          *metrics.Metrics
	Docs             *apidoc.Handler
	Logger           *slog.Logger

	MaxUploadBytes int64
	AllowedOrigins []string
}

// SetupDependencies builds the photo store selected by cfg, the catalog and the service.
func SetupDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	m := metrics.New()
	photos, err := NewPhotoStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	janitor := photo.NewJanitor(photos, logger, m, cfg.Photo.JanitorBuffer)

	iService := service.NewService(store.NewInMemoryStore(), photos, service.Options{
		Cleanup:   cfg.Photo.Cleanup,
		Reclaimer: janitor,
		Metrics:   m,
		Logger:    logger,
	})

	docs, err := apidoc.NewHandler(apidoc.Build("http://" + cfg.HTTPServer.Addr()))
	if err != nil {
		return nil, err
	}

	return &Dependencies{
		InventoryService: iService,
		Janitor:          janitor,
		Metrics:          m,
		Docs:             docs,
		Logger:           logger,
		MaxUploadBytes:   cfg.Photo.MaxUploadBytes,
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
	}, nil
}

// NewPhotoStore creates the photo backend named by cfg.Photo.Backend.
// A cache directory that cannot be created is logged and the service starts anyway.
func NewPhotoStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (photo.Store, error) {
	switch cfg.Photo.Backend {
	case config.BackendFilesystem:
		fs := photo.NewFileStore(cfg.Cache.Dir, cfg.Photo.MaxUploadBytes)
		if err := fs.EnsureDirectory(); err != nil {
			logger.Error("Unable to create cache directory, photo uploads will fail", "dir", cfg.Cache.Dir, "error", err)
		} else {
			logger.Info("Cache directory ready", "dir", fs.Dir())
		}
		return fs, nil
	case config.BackendMemory:
		return photo.NewMemoryStore(cfg.Photo.MaxUploadBytes), nil
	case config.BackendS3:
		client, err := photo.NewS3Client(ctx, cfg.Photo.S3.Region)
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 client: %w", err)
		}
		logger.Info("Storing photos in S3", "bucket", cfg.Photo.S3.Bucket, "prefix", cfg.Photo.S3.Prefix)
		return photo.NewS3Store(client, cfg.Photo.S3.Bucket, cfg.Photo.S3.Prefix, cfg.Photo.MaxUploadBytes), nil
	default:
		return nil, fmt.Errorf("unknown photo backend: %q", cfg.Photo.Backend)
	}
}

// SetupHttpHandler initializes the router, middleware and routes of the InventoryService.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	iApi := handler.NewAPI(deps.InventoryService, deps.Logger, deps.MaxUploadBytes)

	mux := web.NewChiRouter(deps.Logger)
	mux.Use(web.CORS(deps.AllowedOrigins))
	mux.Use(deps.Metrics.Middleware)

	mux.Get("/", iApi.Index)
	mux.Get("/RegisterForm.html", iApi.RegisterForm)
	mux.Get("/SearchForm.html", iApi.SearchForm)

	mux.Post("/register", iApi.Register)
	mux.Post("/search", iApi.Search)
	mux.Get("/inventory", iApi.FindAll)
	mux.Route("/inventory/{id}", func(r chi.Router) {
		r.Use(web.ItemIDContext)
		r.Get("/", iApi.FindByID)
		r.Put("/", iApi.Update)
		r.Delete("/", iApi.DeleteByID)
		r.Get("/photo", iApi.Photo)
		r.Put("/photo", iApi.ReplacePhoto)
	})

	if deps.Docs != nil {
		mux.Route("/docs", deps.Docs.Routes)
	}
	mux.Get("/healthz", iApi.HealthCheck)
	if deps.Metrics != nil {
		mux.Handle("/metrics", deps.Metrics.Handler())
	}

	mux.NotFound(iApi.MethodNotAllowed)
	mux.MethodNotAllowed(iApi.MethodNotAllowed)
	return mux
}

// SetupHttpServer creates and configures an HTTP server for the InventoryService application.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	mux := SetupHttpHandler(deps)
	server := &http.Server{
		Addr:              cfg.HTTPServer.Addr(),
		Handler:           mux,
		ReadTimeout:       cfg.HTTPServer.Timeout.Read,
		WriteTimeout:      cfg.HTTPServer.Timeout.Write,
		IdleTimeout:       cfg.HTTPServer.Timeout.Idle,
		ReadHeaderTimeout: cfg.HTTPServer.Timeout.ReadHeader,
		MaxHeaderBytes:    cfg.HTTPServer.MaxHeaderBytes,
	}
	return server
}
