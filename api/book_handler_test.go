package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rpupo63/pustok-backend/blobstore"
	"github.com/rpupo63/pustok-backend/config"
	"github.com/rpupo63/pustok-backend/database"
	"github.com/rpupo63/pustok-backend/database/dbtest"
	"github.com/rpupo63/pustok-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type testEnv struct {
	router *chi.Mux
	db     *gorm.DB
	genre  *models.Genre
	author *models.Author
	tag    *models.Tag
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := dbtest.Open(t)
	fs, err := blobstore.NewFSStore(t.TempDir(), "")
	require.NoError(t, err)

	cfg := &config.Config{MaxUploadBytes: 8 << 20, UploadConcurrency: 2}
	router := newRouter(database.New(db), fs, withConfig(cfg), withUploadDir(fs.URLPrefix(), fs.Root()))

	return &testEnv{
		router: router,
		db:     db,
		genre:  dbtest.SeedGenre(t, db, "Classics"),
		author: dbtest.SeedAuthor(t, db, "Jane Austen"),
		tag:    dbtest.SeedTag(t, db, "romance"),
	}
}

type filePart struct {
	field       string
	filename    string
	contentType string
	data        []byte
}

type bookForm struct {
	values map[string][]string
	files  []filePart
}

func (e *testEnv) form(name string) *bookForm {
	return &bookForm{values: map[string][]string{
		"name":            {name},
		"description":     {"A novel"},
		"costPrice":       {"4.50"},
		"salePrice":       {"9.99"},
		"discountPercent": {"5"},
		"tax":             {"0.5"},
		"isAvailable":     {"true"},
		"genreId":         {e.genre.ID.String()},
		"authorId":        {e.author.ID.String()},
	}}
}

func (f *bookForm) encode(t *testing.T) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for key, values := range f.values {
		for _, v := range values {
			require.NoError(t, mw.WriteField(key, v))
		}
	}
	for _, fp := range f.files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, fp.field, fp.filename))
		if fp.contentType != "" {
			h.Set("Content-Type", fp.contentType)
		}
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(fp.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func (e *testEnv) do(t *testing.T, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) submit(t *testing.T, method, path string, f *bookForm) *httptest.ResponseRecorder {
	t.Helper()
	body, ct := f.encode(t)
	return e.do(t, method, path, body, ct)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestBookHandler_CreateAndFetch(t *testing.T) {
	e := newTestEnv(t)

	f := e.form("Emma")
	f.values["tagIds"] = []string{e.tag.ID.String()}
	f.files = []filePart{
		{field: "posterImage", filename: "emma.png", contentType: "image/png", data: pngHeader},
		{field: "images", filename: "p1.jpg", contentType: "image/jpeg", data: []byte("\xff\xd8\xff\xe0jpeg")},
	}

	rec := e.submit(t, http.MethodPost, "/book", f)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	book := decode[models.Book](t, rec)
	assert.Equal(t, "Emma", book.Name)
	assert.InDelta(t, 9.99, book.SalePrice, 0.001)
	assert.True(t, book.IsAvailable)
	require.Len(t, book.Tags, 1)
	assert.Equal(t, e.tag.ID, book.Tags[0].TagID)
	require.NotNil(t, book.Poster)
	assert.True(t, strings.HasPrefix(book.Poster.ImageURL, "/uploads/books/poster/"))
	require.Len(t, book.Gallery, 1)

	img := e.do(t, http.MethodGet, book.Poster.ImageURL, nil, "")
	require.Equal(t, http.StatusOK, img.Code)
	assert.Equal(t, pngHeader, img.Body.Bytes())

	rec = e.do(t, http.MethodGet, "/book/"+book.ID.String(), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, book.ID, decode[models.Book](t, rec).ID)

	rec = e.do(t, http.MethodGet, "/books", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	collection := decode[BookCollection](t, rec)
	assert.Equal(t, 1, collection.Total)
}

func TestBookHandler_SniffsUndeclaredContentType(t *testing.T) {
	e := newTestEnv(t)

	f := e.form("Persuasion")
	f.files = []filePart{{field: "hoverImage", filename: "hover", data: pngHeader}}

	rec := e.submit(t, http.MethodPost, "/book", f)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	book := decode[models.Book](t, rec)
	require.NotNil(t, book.Hover)
	assert.True(t, strings.HasPrefix(book.Hover.ImageURL, "/uploads/books/hover/"))
	assert.True(t, strings.HasSuffix(book.Hover.ImageURL, ".png"))
}

func TestBookHandler_DeclaredOctetStreamIsRejected(t *testing.T) {
	e := newTestEnv(t)

	f := e.form("Persuasion")
	f.files = []filePart{{field: "hoverImage", filename: "hover.png", contentType: "application/octet-stream", data: pngHeader}}

	rec := e.submit(t, http.MethodPost, "/book", f)
	require.Equal(t, http.StatusUnsupportedMediaType, rec.Code, rec.Body.String())
	assert.Equal(t, "hover", decode[ErrorResponse](t, rec).Field)
}

func TestBookHandler_UploadsAreServedAsTheirValidatedType(t *testing.T) {
	e := newTestEnv(t)

	f := e.form("Emma")
	f.files = []filePart{{field: "posterImage", filename: "evil.html", contentType: "image/png", data: pngHeader}}

	rec := e.submit(t, http.MethodPost, "/book", f)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	book := decode[models.Book](t, rec)
	require.NotNil(t, book.Poster)
	assert.True(t, strings.HasSuffix(book.Poster.ImageURL, ".png"), book.Poster.ImageURL)

	img := e.do(t, http.MethodGet, book.Poster.ImageURL, nil, "")
	require.Equal(t, http.StatusOK, img.Code)
	assert.Equal(t, "image/png", img.Header().Get("Content-Type"))
}

func TestBookHandler_CreateErrors(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(e *testEnv, f *bookForm)
		wantStatus int
		wantField  string
	}{
		{
			name:       "gif hover image",
			mutate:     func(e *testEnv, f *bookForm) { f.files = []filePart{{"hoverImage", "a.gif", "image/gif", []byte("GIF89a")}} },
			wantStatus: http.StatusUnsupportedMediaType,
			wantField:  "hover",
		},
		{
			name: "oversized gallery image",
			mutate: func(e *testEnv, f *bookForm) {
				f.files = []filePart{{"images", "big.png", "image/png", make([]byte, 3<<20)}}
			},
			wantStatus: http.StatusRequestEntityTooLarge,
			wantField:  "gallery",
		},
		{
			name:       "unknown genre",
			mutate:     func(e *testEnv, f *bookForm) { f.values["genreId"] = []string{uuid.NewString()} },
			wantStatus: http.StatusBadRequest,
			wantField:  "genreId",
		},
		{
			name:       "unknown tag",
			mutate:     func(e *testEnv, f *bookForm) { f.values["tagIds"] = []string{e.tag.ID.String(), uuid.NewString()} },
			wantStatus: http.StatusBadRequest,
			wantField:  "tagId",
		},
		{
			name:       "malformed author id",
			mutate:     func(e *testEnv, f *bookForm) { f.values["authorId"] = []string{"not-a-uuid"} },
			wantStatus: http.StatusBadRequest,
			wantField:  "authorId",
		},
		{
			name:       "non numeric price",
			mutate:     func(e *testEnv, f *bookForm) { f.values["salePrice"] = []string{"cheap"} },
			wantStatus: http.StatusBadRequest,
			wantField:  "salePrice",
		},
		{
			name:       "missing name",
			mutate:     func(e *testEnv, f *bookForm) { f.values["name"] = []string{" "} },
			wantStatus: http.StatusBadRequest,
			wantField:  "name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t)
			f := e.form("Emma")
			tt.mutate(e, f)

			rec := e.submit(t, http.MethodPost, "/book", f)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			resp := decode[ErrorResponse](t, rec)
			assert.Equal(t, "error", resp.Status)
			assert.Equal(t, tt.wantField, resp.Field)
			assert.Equal(t, int64(0), dbtest.Count(t, e.db, &models.Book{}, ""))
		})
	}
}

func TestBookHandler_RejectsNonMultipart(t *testing.T) {
	e := newTestEnv(t)
	rec := e.do(t, http.MethodPost, "/book", strings.NewReader(`{"name":"Emma"}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBookHandler_UpdateAndDelete(t *testing.T) {
	e := newTestEnv(t)

	rec := e.submit(t, http.MethodPost, "/book", e.form("Emma"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	book := decode[models.Book](t, rec)

	f := e.form("Emma (Annotated)")
	f.values["isAvailable"] = []string{"false"}
	f.values["tagIds"] = []string{e.tag.ID.String()}
	rec = e.submit(t, http.MethodPut, "/book/"+book.ID.String(), f)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[models.Book](t, rec)
	assert.Equal(t, "Emma (Annotated)", updated.Name)
	assert.False(t, updated.IsAvailable)
	assert.Len(t, updated.Tags, 1)

	rec = e.submit(t, http.MethodPut, "/book/"+uuid.NewString(), e.form("Ghost"))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(t, http.MethodDelete, "/book/"+book.ID.String(), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodGet, "/book/"+book.ID.String(), nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(t, http.MethodDelete, "/book/"+book.ID.String(), nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(t, http.MethodGet, "/books", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"books":[],"total":0}`, rec.Body.String())
}

func TestBookHandler_InvalidBookID(t *testing.T) {
	e := newTestEnv(t)
	rec := e.do(t, http.MethodGet, "/book/123", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
