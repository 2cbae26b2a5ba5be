package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a lookup matches no row visible to the caller.
var ErrNotFound = errors.New("record not found")

// Repository is the gorm-backed datastore for documents, notes and flashcards.
type Repository struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// DB exposes the underlying handle for health checks.
func (r *Repository) DB() *gorm.DB {
	return r.db
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// likePattern builds a substring pattern for a LIKE ... ESCAPE '\' clause;
// wildcards in search match literally.
func likePattern(search string) string {
	return "%" + likeEscaper.Replace(search) + "%"
}
