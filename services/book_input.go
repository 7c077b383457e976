package services

import (
	"github.com/google/uuid"
	"github.com/rpupo63/pustok-backend/models"
)

// BookFields is the complete set of scalar attributes a caller may set on a
// book. Update overwrites exactly these fields, see applyFields.
type BookFields struct {
	Name            string    `json:"name" validate:"required,max=255"`
	Description     string    `json:"description" validate:"max=10000"`
	CostPrice       float64   `json:"costPrice" validate:"gte=0"`
	SalePrice       float64   `json:"salePrice" validate:"gte=0"`
	Code            string    `json:"code" validate:"max=64"`
	DiscountPercent float64   `json:"discountPercent" validate:"gte=0,lte=100"`
	Tax             float64   `json:"tax" validate:"gte=0"`
	IsAvailable     bool      `json:"isAvailable"`
	GenreID         uuid.UUID `json:"genreId"`
	AuthorID        uuid.UUID `json:"authorId"`
}

// ImageUpload is one uploaded image candidate.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64 // declared length; len(Data) is used when larger
	Data        []byte
}

// BookInput carries everything a create or update call needs. None of it is
// persisted as-is.
type BookInput struct {
	Fields BookFields
	// TagIDs is the desired tag set. Nil or empty removes every tag on update.
	TagIDs []uuid.UUID
	// RetainImageIDs lists the gallery images to keep on update.
	RetainImageIDs []uuid.UUID
	Poster         *ImageUpload
	Hover          *ImageUpload
	Gallery        []ImageUpload
}

// applyFields overwrites the mutable attributes of b. Identity, IsDeleted and
// timestamps are never touched here.
func applyFields(b *models.Book, f BookFields) {
	b.Name = f.Name
	b.Description = f.Description
	b.CostPrice = f.CostPrice
	b.SalePrice = f.SalePrice
	b.Code = f.Code
	b.DiscountPercent = f.DiscountPercent
	b.Tax = f.Tax
	b.IsAvailable = f.IsAvailable
	b.GenreID = f.GenreID
	b.AuthorID = f.AuthorID
}

// FieldsOf returns the mutable attributes of b, the inverse of applyFields.
func FieldsOf(b *models.Book) BookFields {
	return BookFields{
		Name:            b.Name,
		Description:     b.Description,
		CostPrice:       b.CostPrice,
		SalePrice:       b.SalePrice,
		Code:            b.Code,
		DiscountPercent: b.DiscountPercent,
		Tax:             b.Tax,
		IsAvailable:     b.IsAvailable,
		GenreID:         b.GenreID,
		AuthorID:        b.AuthorID,
	}
}
