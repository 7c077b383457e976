package api

import (
	"time"

	"github.com/rpupo63/pustok-backend/blobstore"
	"github.com/rpupo63/pustok-backend/config"
	"github.com/rpupo63/pustok-backend/database"
	"github.com/rpupo63/pustok-backend/services"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(db database.Database, blobs blobstore.Store, cfg *config.Config, startupTime time.Time) *routeHandlers {
	bookService := services.NewBookService(db, blobs,
		services.WithUploadConcurrency(cfg.UploadConcurrency),
	)

	return &routeHandlers{
		bookHandler:    newBookHandler(bookService, cfg.MaxUploadBytes, cfg.ErrorWebhookURL),
		catalogHandler: newCatalogHandler(services.NewCatalogService(db), cfg.ErrorWebhookURL),
		healthHandler:  newHealthHandler(db, startupTime),
	}
}
