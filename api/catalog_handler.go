package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rpupo63/pustok-backend/errs"
	"github.com/rpupo63/pustok-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// maxNameBody bounds the JSON body of the reference-data create endpoints.
const maxNameBody = 64 << 10

type catalogHandler struct {
	responder Responder
	logger    zerolog.Logger
	catalog   *services.CatalogService
}

func newCatalogHandler(catalog *services.CatalogService, webhookURL string) catalogHandler {
	logger := log.With().Str("handlerName", "catalogHandler").Logger()

	return catalogHandler{
		responder: NewResponder(logger, webhookURL),
		logger:    logger,
		catalog:   catalog,
	}
}

func (h catalogHandler) decodeName(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req NameRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxNameBody)).Decode(&req); err != nil {
		h.logger.Error().Err(err).Msg("Failed to decode request body")
		h.responder.WriteError(w, errs.NewMalformedPayloadError("JSON", err))
		return "", false
	}
	return req.Name, true
}

// list writes the result of fetch as a JSON array.
func list[T any](h catalogHandler, fetch func(context.Context) ([]T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := fetch(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, items)
	}
}

// create decodes {"name": ...} and writes the created record with 201.
func create[T any](h catalogHandler, add func(context.Context, string) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, ok := h.decodeName(w, r)
		if !ok {
			return
		}
		item, err := add(r.Context(), name)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSONStatus(w, http.StatusCreated, item)
	}
}

// getAuthors lists authors ordered by name
// @Summary Get all authors
// @Tags Catalog
// @Produce json
// @Router /authors [get]
func (h catalogHandler) getAuthors() http.HandlerFunc {
	return list(h, h.catalog.ListAuthors)
}

// createAuthor creates an author
// @Summary Create author
// @Tags Catalog
// @Accept json
// @Produce json
// @Param author body NameRequest true "Author name"
// @Router /author [post]
func (h catalogHandler) createAuthor() http.HandlerFunc {
	return create(h, h.catalog.CreateAuthor)
}

// @Router /genres [get]
func (h catalogHandler) getGenres() http.HandlerFunc {
	return list(h, h.catalog.ListGenres)
}

// @Router /genre [post]
func (h catalogHandler) createGenre() http.HandlerFunc {
	return create(h, h.catalog.CreateGenre)
}

// @Router /tags [get]
func (h catalogHandler) getTags() http.HandlerFunc {
	return list(h, h.catalog.ListTags)
}

// createTag creates a tag. Duplicate names are answered with 409.
// @Router /tag [post]
func (h catalogHandler) createTag() http.HandlerFunc {
	return create(h, h.catalog.CreateTag)
}
