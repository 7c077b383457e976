package services

import (
	"github.com/google/uuid"
	"github.com/rpupo63/pustok-backend/models"
)

// TagDelta is the minimal change that brings a book's tag rows in line with a desired set.
type TagDelta struct {
	Add    []uuid.UUID
	Remove []models.BookTag
}

// Empty reports whether applying the delta would change nothing.
func (d TagDelta) Empty() bool {
	return len(d.Add) == 0 && len(d.Remove) == 0
}

// ReconcileTags diffs current rows against desired tag ids. Rows whose tag is
// still desired are left alone; duplicates in desired collapse to one add.
func ReconcileTags(current []models.BookTag, desired []uuid.UUID) TagDelta {
	want := make(map[uuid.UUID]struct{}, len(desired))
	for _, id := range desired {
		want[id] = struct{}{}
	}

	var delta TagDelta
	have := make(map[uuid.UUID]struct{}, len(current))
	for _, bt := range current {
		if _, ok := want[bt.TagID]; !ok {
			delta.Remove = append(delta.Remove, bt)
			continue
		}
		have[bt.TagID] = struct{}{}
	}

	for _, id := range desired {
		if _, ok := have[id]; ok {
			continue
		}
		have[id] = struct{}{}
		delta.Add = append(delta.Add, id)
	}
	return delta
}

// ReconcileGallery returns the gallery rows that are not in retain.
// Poster and hover rows are never returned.
func ReconcileGallery(current []models.BookImage, retain []uuid.UUID) []models.BookImage {
	keep := make(map[uuid.UUID]struct{}, len(retain))
	for _, id := range retain {
		keep[id] = struct{}{}
	}

	var remove []models.BookImage
	for _, img := range current {
		if img.Role() != models.RoleGallery {
			continue
		}
		if _, ok := keep[img.ID]; !ok {
			remove = append(remove, img)
		}
	}
	return remove
}
