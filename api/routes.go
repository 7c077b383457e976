package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// setupRoutes registers the catalog endpoints
func setupRoutes(r chi.Router, handlers *routeHandlers) {
	r.Get("/health", handlers.healthHandler.getHealth())

	r.Group(func(r chi.Router) {
		r.Use(ColoredHTTPLoggingMiddleware)

		// Book Handler endpoints
		r.Get("/books", handlers.bookHandler.getAllBooks())
		r.Get("/book/{bookID}", handlers.bookHandler.getBook())
		r.Post("/book", handlers.bookHandler.createBook())
		r.Put("/book/{bookID}", handlers.bookHandler.updateBook())
		r.Delete("/book/{bookID}", handlers.bookHandler.deleteBook())

		// Reference data endpoints
		r.Get("/authors", handlers.catalogHandler.getAuthors())
		r.Post("/author", handlers.catalogHandler.createAuthor())
		r.Get("/genres", handlers.catalogHandler.getGenres())
		r.Post("/genre", handlers.catalogHandler.createGenre())
		r.Get("/tags", handlers.catalogHandler.getTags())
		r.Post("/tag", handlers.catalogHandler.createTag())
	})
}

// setupUploadRoutes serves files written by the filesystem blob store
func setupUploadRoutes(r chi.Router, urlPrefix, dir string) {
	urlPrefix = "/" + strings.Trim(urlPrefix, "/")
	fileServer := http.StripPrefix(urlPrefix, http.FileServer(http.Dir(dir)))
	r.Get(urlPrefix+"/*", func(w http.ResponseWriter, r *http.Request) {
		// No directory listings.
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		fileServer.ServeHTTP(w, r)
	})
}
