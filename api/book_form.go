package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rpupo63/pustok-backend/errs"
	"github.com/rpupo63/pustok-backend/services"
)

// Multipart field names of the book form.
const (
	formName            = "name"
	formDescription     = "description"
	formCostPrice       = "costPrice"
	formSalePrice       = "salePrice"
	formCode            = "code"
	formDiscountPercent = "discountPercent"
	formTax             = "tax"
	formIsAvailable     = "isAvailable"
	formGenreID         = "genreId"
	formAuthorID        = "authorId"
	formTagIDs          = "tagIds"
	formBookImageIDs    = "bookImageIds"
	formPosterImage     = "posterImage"
	formHoverImage      = "hoverImage"
	formImages          = "images"
)

// memory kept in RAM by ParseMultipartForm; larger parts spill to temp files.
const multipartMemory = 8 << 20

// parseBookForm reads a multipart book form into a BookInput. Content type and
// size policy is left to the service.
func parseBookForm(w http.ResponseWriter, r *http.Request, maxBytes int64) (services.BookInput, error) {
	var in services.BookInput

	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return in, errs.NewMaxBodySizeExceededError(maxErr.Limit)
		}
		return in, errs.NewMalformedPayloadError("multipart", err)
	}
	form := r.MultipartForm

	var err error
	f := &in.Fields
	f.Name = strings.TrimSpace(r.FormValue(formName))
	f.Description = r.FormValue(formDescription)
	f.Code = strings.TrimSpace(r.FormValue(formCode))
	if f.CostPrice, err = formFloat(r, formCostPrice); err != nil {
		return in, err
	}
	if f.SalePrice, err = formFloat(r, formSalePrice); err != nil {
		return in, err
	}
	if f.DiscountPercent, err = formFloat(r, formDiscountPercent); err != nil {
		return in, err
	}
	if f.Tax, err = formFloat(r, formTax); err != nil {
		return in, err
	}
	if f.IsAvailable, err = formBool(r, formIsAvailable); err != nil {
		return in, err
	}
	if f.GenreID, err = formUUID(r, formGenreID); err != nil {
		return in, err
	}
	if f.AuthorID, err = formUUID(r, formAuthorID); err != nil {
		return in, err
	}

	if in.TagIDs, err = formUUIDs(form.Value[formTagIDs], formTagIDs); err != nil {
		return in, err
	}
	if in.RetainImageIDs, err = formUUIDs(form.Value[formBookImageIDs], formBookImageIDs); err != nil {
		return in, err
	}

	if in.Poster, err = singleUpload(form, formPosterImage); err != nil {
		return in, err
	}
	if in.Hover, err = singleUpload(form, formHoverImage); err != nil {
		return in, err
	}
	for _, fh := range form.File[formImages] {
		img, err := readUpload(fh)
		if err != nil {
			return in, err
		}
		in.Gallery = append(in.Gallery, img)
	}
	return in, nil
}

func formFloat(r *http.Request, key string) (float64, error) {
	raw := strings.TrimSpace(r.FormValue(key))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errs.NewInvalidFieldError(key, "must be a number")
	}
	return v, nil
}

func formBool(r *http.Request, key string) (bool, error) {
	raw := strings.TrimSpace(r.FormValue(key))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errs.NewInvalidFieldError(key, "must be true or false")
	}
	return v, nil
}

func formUUID(r *http.Request, key string) (uuid.UUID, error) {
	raw := strings.TrimSpace(r.FormValue(key))
	if raw == "" {
		return uuid.Nil, errs.NewInvalidFieldError(key, "is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errs.NewInvalidFieldError(key, "must be a UUID")
	}
	return id, nil
}

// formUUIDs accepts repeated fields as well as comma-separated values.
func formUUIDs(values []string, key string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, v := range values {
		for _, raw := range strings.Split(v, ",") {
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			id, err := uuid.Parse(raw)
			if err != nil {
				return nil, errs.NewInvalidFieldError(key, fmt.Sprintf("%q is not a UUID", raw))
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func singleUpload(form *multipart.Form, key string) (*services.ImageUpload, error) {
	files := form.File[key]
	if len(files) == 0 {
		return nil, nil
	}
	if len(files) > 1 {
		return nil, errs.NewInvalidFieldError(key, "only one file may be uploaded")
	}
	img, err := readUpload(files[0])
	if err != nil {
		return nil, err
	}
	return &img, nil
}

// readUpload loads a file part. The declared part content type is kept; it is
// only sniffed when the client did not declare one.
func readUpload(fh *multipart.FileHeader) (services.ImageUpload, error) {
	f, err := fh.Open()
	if err != nil {
		return services.ImageUpload{}, errs.NewMalformedPayloadError("file", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return services.ImageUpload{}, errs.NewMalformedPayloadError("file", err)
	}

	// A declared type is checked as declared; only a missing header is sniffed.
	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mimetype.Detect(data).String()
	}

	return services.ImageUpload{
		Filename:    fh.Filename,
		ContentType: contentType,
		Size:        fh.Size,
		Data:        data,
	}, nil
}
