package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rpupo63/pustok-backend/errs"
	"github.com/rpupo63/pustok-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type bookHandler struct {
	responder      Responder
	logger         zerolog.Logger
	bookService    *services.BookService
	maxUploadBytes int64
}

func newBookHandler(bookService *services.BookService, maxUploadBytes int64, webhookURL string) bookHandler {
	logger := log.With().Str("handlerName", "bookHandler").Logger()

	return bookHandler{
		responder:      NewResponder(logger, webhookURL),
		logger:         logger,
		bookService:    bookService,
		maxUploadBytes: maxUploadBytes,
	}
}

func bookIDParam(r *http.Request) (uuid.UUID, error) {
	bookIDStr := chi.URLParam(r, "bookID")
	if bookIDStr == "" {
		return uuid.Nil, errs.NewBadRequestError("missing bookID")
	}
	bookID, err := uuid.Parse(bookIDStr)
	if err != nil {
		return uuid.Nil, errs.NewBadRequestError("invalid bookID")
	}
	return bookID, nil
}

// getAllBooks retrieves every book that has not been deleted
// @Summary Get all books
// @Tags Books
// @Produce json
// @Success 200 {object} BookCollection "Books with tags and images"
// @Failure 500 {object} ErrorResponse "Internal Server Error - Error fetching books"
// @Router /books [get]
func (h bookHandler) getAllBooks() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		books, err := h.bookService.GetAll(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, BookCollection{Books: books, Total: len(books)})
	}
}

// getBook retrieves a specific book by ID
// @Summary Get book
// @Tags Books
// @Produce json
// @Param bookID path string true "Book ID" format(uuid)
// @Success 200 {object} models.Book "Book with tags and images"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid bookID"
// @Failure 404 {object} ErrorResponse "Not Found - Book not found or deleted"
// @Router /book/{bookID} [get]
func (h bookHandler) getBook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bookID, err := bookIDParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		book, err := h.bookService.GetByID(r.Context(), bookID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, book)
	}
}

// createBook creates a book from a multipart form
// @Summary Create book
// @Tags Books
// @Accept multipart/form-data
// @Produce json
// @Success 201 {object} models.Book "Created book"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid field or unknown genre, author or tag"
// @Failure 413 {object} ErrorResponse "Image or request too large"
// @Failure 415 {object} ErrorResponse "Image is not JPEG or PNG"
// @Failure 500 {object} ErrorResponse "Internal Server Error"
// @Router /book [post]
func (h bookHandler) createBook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := parseBookForm(w, r, h.maxUploadBytes)
		if err != nil {
			h.logger.Debug().Err(err).Msg("Rejected book form")
			h.responder.WriteError(w, err)
			return
		}

		book, err := h.bookService.Create(r.Context(), in)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSONStatus(w, http.StatusCreated, book)
	}
}

// updateBook overwrites a book from a multipart form
// @Summary Update book
// @Description Every scalar field is overwritten. tagIds is the complete tag set and
// @Description bookImageIds lists the gallery images to keep.
// @Tags Books
// @Accept multipart/form-data
// @Produce json
// @Param bookID path string true "Book ID" format(uuid)
// @Success 200 {object} models.Book "Updated book"
// @Failure 400 {object} ErrorResponse "Bad Request"
// @Failure 404 {object} ErrorResponse "Not Found - Book not found or deleted"
// @Failure 413 {object} ErrorResponse "Image or request too large"
// @Failure 415 {object} ErrorResponse "Image is not JPEG or PNG"
// @Router /book/{bookID} [put]
func (h bookHandler) updateBook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bookID, err := bookIDParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		in, err := parseBookForm(w, r, h.maxUploadBytes)
		if err != nil {
			h.logger.Debug().Err(err).Msg("Rejected book form")
			h.responder.WriteError(w, err)
			return
		}

		book, err := h.bookService.Update(r.Context(), bookID, in)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, book)
	}
}

// deleteBook marks a book as deleted
// @Summary Delete book
// @Tags Books
// @Produce json
// @Param bookID path string true "Book ID" format(uuid)
// @Success 200 {object} map[string]string "Success message"
// @Failure 404 {object} ErrorResponse "Not Found - Book not found or already deleted"
// @Router /book/{bookID} [delete]
func (h bookHandler) deleteBook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bookID, err := bookIDParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.bookService.SoftDelete(r.Context(), bookID); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, map[string]string{
			"status":  "success",
			"message": "book deleted successfully",
		})
	}
}
