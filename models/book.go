package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Book is the catalog aggregate root. Tags and images are owned rows; the
// poster and hover images are single-valued so a book can never carry two of either.
type Book struct {
	ID              uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Name            string    `json:"name" db:"name" gorm:"type:text;not null"`
	Description     string    `json:"description" db:"description" gorm:"type:text;not null;default:''"`
	CostPrice       float64   `json:"costPrice" db:"cost_price" gorm:"type:numeric(10,2);not null;default:0"`
	SalePrice       float64   `json:"salePrice" db:"sale_price" gorm:"type:numeric(10,2);not null;default:0"`
	Code            string    `json:"code" db:"code" gorm:"type:text;not null;default:''"`
	DiscountPercent float64   `json:"discountPercent" db:"discount_percent" gorm:"type:numeric(5,2);not null;default:0"`
	Tax             float64   `json:"tax" db:"tax" gorm:"type:numeric(10,2);not null;default:0"`
	IsAvailable     bool      `json:"isAvailable" db:"is_available" gorm:"not null"`
	IsDeleted       bool      `json:"-" db:"is_deleted" gorm:"not null;default:false;index:idx_book_is_deleted"`
	GenreID         uuid.UUID `json:"genreId" db:"genre_id" gorm:"type:uuid;not null;index:idx_book_genre_id"`
	AuthorID        uuid.UUID `json:"authorId" db:"author_id" gorm:"type:uuid;not null;index:idx_book_author_id"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`

	Genre   *Genre      `json:"genre,omitempty" gorm:"foreignKey:GenreID;references:ID"`
	Author  *Author     `json:"author,omitempty" gorm:"foreignKey:AuthorID;references:ID"`
	Tags    []BookTag   `json:"tags" gorm:"foreignKey:BookID;references:ID;constraint:OnDelete:CASCADE"`
	Poster  *BookImage  `json:"poster,omitempty" gorm:"foreignKey:BookID;references:ID;constraint:OnDelete:CASCADE"`
	Hover   *BookImage  `json:"hover,omitempty" gorm:"foreignKey:BookID;references:ID;constraint:OnDelete:CASCADE"`
	Gallery []BookImage `json:"gallery" gorm:"foreignKey:BookID;references:ID;constraint:OnDelete:CASCADE"`
}

func (b *Book) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// TagIDs returns the tag ids currently associated with the book.
func (b *Book) TagIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(b.Tags))
	for _, t := range b.Tags {
		ids = append(ids, t.TagID)
	}
	return ids
}

// GalleryIDs returns the ids of the gallery images.
func (b *Book) GalleryIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(b.Gallery))
	for _, img := range b.Gallery {
		ids = append(ids, img.ID)
	}
	return ids
}
