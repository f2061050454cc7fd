package services

import (
	"context"

	"github.com/mrlokans/catalog/internal/entities"
)

// CatalogStore is the persistence the catalog service depends on.
// Lookups by ID return gorm.ErrRecordNotFound for missing rows and writes
// return gorm.ErrDuplicatedKey when the ISBN unique index is violated.
type CatalogStore interface {
	GetAllBooks(ctx context.Context) ([]entities.Book, error)
	GetBookByID(ctx context.Context, id uint) (*entities.Book, error)
	CreateBook(ctx context.Context, book *entities.Book) error
	SaveBook(ctx context.Context, book *entities.Book) error
	DeleteBook(ctx context.Context, id uint) error
	SearchBooks(ctx context.Context, criteria entities.BookSearchCriteria) ([]entities.Book, error)
}

// CreateBookInput carries the fields of a new book. A nil field was not
// supplied by the caller.
type CreateBookInput struct {
	Title           *string
	Author          *string
	ISBN            *string
	PublicationYear *int
}

// UpdateBookInput carries a sparse update. Only non-nil fields are applied.
// Dates are YYYY-MM-DD text; an empty string clears IssuedTo and the dates.
type UpdateBookInput struct {
	Title           *string
	Author          *string
	ISBN            *string
	PublicationYear *int
	Status          *string
	CheckOutDate    *string
	DueDate         *string
	IssuedTo        *string
}
