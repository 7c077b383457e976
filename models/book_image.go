package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ImageRole is the slot an image fills on a book.
type ImageRole string

const (
	RolePoster  ImageRole = "poster"
	RoleHover   ImageRole = "hover"
	RoleGallery ImageRole = "gallery"
)

// BookImage is an uploaded image attached to a book.
// IsPoster is tri-state: true for the poster, false for the hover image and
// NULL for gallery members. The partial unique index keeps one poster and one
// hover row per book.
type BookImage struct {
	ID       uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	BookID   uuid.UUID `json:"bookId" db:"book_id" gorm:"type:uuid;not null;index:idx_book_image_book_id;uniqueIndex:idx_book_image_role,where:is_poster IS NOT NULL"`
	ImageURL string    `json:"imageUrl" db:"image_url" gorm:"type:text;not null"`
	IsPoster *bool     `json:"isPoster" db:"is_poster" gorm:"uniqueIndex:idx_book_image_role"`
}

func (i *BookImage) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Role reports which slot the image occupies.
func (i BookImage) Role() ImageRole {
	switch {
	case i.IsPoster == nil:
		return RoleGallery
	case *i.IsPoster:
		return RolePoster
	default:
		return RoleHover
	}
}

// NewBookImage builds an image row for the given slot.
func NewBookImage(bookID uuid.UUID, imageURL string, role ImageRole) BookImage {
	img := BookImage{BookID: bookID, ImageURL: imageURL}
	switch role {
	case RolePoster:
		v := true
		img.IsPoster = &v
	case RoleHover:
		v := false
		img.IsPoster = &v
	}
	return img
}
