package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BookTag associates a tag with a book. A (book, tag) pair appears at most once.
type BookTag struct {
	ID     uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	BookID uuid.UUID `json:"bookId" db:"book_id" gorm:"type:uuid;not null;index:idx_book_tag_book_id;uniqueIndex:idx_book_tag_unique"`
	TagID  uuid.UUID `json:"tagId" db:"tag_id" gorm:"type:uuid;not null;uniqueIndex:idx_book_tag_unique"`

	Tag *Tag `json:"tag,omitempty" gorm:"foreignKey:TagID;references:ID"`
}

func (t *BookTag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
