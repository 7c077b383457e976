package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rpupo63/pustok-backend/blobstore"
	"github.com/rpupo63/pustok-backend/config"
	"github.com/rpupo63/pustok-backend/database"
	"github.com/rs/zerolog/log"
)

type Server struct {
	*http.Server
	startupTime time.Time
}

func NewServer(cfg *config.Config, database database.Database, blobs blobstore.Store) (Server, error) {
	if cfg == nil {
		return Server{}, fmt.Errorf("missing configuration")
	}
	address := fmt.Sprintf("0.0.0.0:%d", cfg.Port) // Bind to 0.0.0.0 for external access

	startupTime := time.Now()

	opts := []func(*router){withConfig(cfg), withStartupTime(startupTime)}
	if fs, ok := blobs.(*blobstore.FSStore); ok && strings.HasPrefix(fs.URLPrefix(), "/") {
		opts = append(opts, withUploadDir(fs.URLPrefix(), fs.Root()))
	}
	router := newRouter(database, blobs, opts...)

	readTimeout, writeTimeout, idleTimeout := cfg.Timeouts()

	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  readTimeout,  // Timeout for reading the entire request
		WriteTimeout: writeTimeout, // Timeout for writing the response
		IdleTimeout:  idleTimeout,  // Timeout for idle connections
	}

	return Server{server, startupTime}, nil
}

type router struct {
	config      *config.Config
	startupTime time.Time
	uploadURL   string
	uploadDir   string
}

func withConfig(c *config.Config) func(*router) {
	return func(r *router) {
		r.config = c
	}
}

func withStartupTime(startupTime time.Time) func(*router) {
	return func(r *router) {
		r.startupTime = startupTime
	}
}

// withUploadDir serves locally stored images below urlPrefix.
func withUploadDir(urlPrefix, dir string) func(*router) {
	return func(r *router) {
		r.uploadURL = urlPrefix
		r.uploadDir = dir
	}
}

func newRouter(database database.Database, blobs blobstore.Store, opts ...func(*router)) *chi.Mux {
	var router router
	for _, opt := range opts {
		opt(&router)
	}
	if router.config == nil {
		router.config = &config.Config{}
	}

	chiRouter := chi.NewRouter()
	chiRouter.Use(LogInternalServerErrors)

	acceptedOrigins := router.config.Origins()
	corsResponder := NewResponder(log.With().Str("handlerName", "cors").Logger(), "")
	chiRouter.Use(CORSCheckMiddleware(acceptedOrigins, corsResponder))
	if len(acceptedOrigins) > 0 {
		chiRouter.Use(corsMiddleware(acceptedOrigins))
	}

	handlers := initializeHandlers(database, blobs, router.config, router.startupTime)

	setupRoutes(chiRouter, handlers)
	if router.uploadDir != "" {
		setupUploadRoutes(chiRouter, router.uploadURL, router.uploadDir)
	}

	return chiRouter
}

func (s Server) Start(errChannel chan<- error) {
	log.Info().Msgf("Server started on: %s", s.Addr)
	errChannel <- s.ListenAndServe()
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Msg("Gracefully shutting down...")

	gracefullCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefullCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}
}
