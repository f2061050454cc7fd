// Package books provides database operations for catalog book records.
//
// # Interface Implementation
//
//	var _ services.CatalogStore = (*Repository)(nil)
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, err := repo.GetBookByID(ctx, 123)
package books

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/catalog/internal/entities"
)

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetAllBooks retrieves every book ordered by ID.
func (r *Repository) GetAllBooks(ctx context.Context) ([]entities.Book, error) {
	books := []entities.Book{}
	err := r.db.WithContext(ctx).Order("id ASC").Find(&books).Error
	return books, err
}

// GetBookByID retrieves a book by its ID.
// Returns gorm.ErrRecordNotFound when no such book exists.
func (r *Repository) GetBookByID(ctx context.Context, id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.WithContext(ctx).First(&book, id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// CreateBook inserts a new book and writes the assigned ID back into it.
func (r *Repository) CreateBook(ctx context.Context, book *entities.Book) error {
	return r.db.WithContext(ctx).Create(book).Error
}

// SaveBook writes every column of an existing book, including NULLs.
// Returns gorm.ErrRecordNotFound when the row no longer exists; it never
// inserts.
func (r *Repository) SaveBook(ctx context.Context, book *entities.Book) error {
	result := r.db.WithContext(ctx).Model(book).Select("*").Omit("created_at").Updates(book)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteBook permanently removes a book.
func (r *Repository) DeleteBook(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entities.Book{}, id).Error
}

// SearchBooks filters books by case-insensitive title and author substrings
// and an exact publication year.
func (r *Repository) SearchBooks(ctx context.Context, criteria entities.BookSearchCriteria) ([]entities.Book, error) {
	books := []entities.Book{}
	query := r.db.WithContext(ctx).Model(&entities.Book{})

	if criteria.Title != "" {
		query = query.Where(`LOWER(title) LIKE LOWER(?) ESCAPE '\'`, containsPattern(criteria.Title))
	}
	if criteria.Author != "" {
		query = query.Where(`LOWER(author) LIKE LOWER(?) ESCAPE '\'`, containsPattern(criteria.Author))
	}
	if criteria.PublicationYear != nil {
		query = query.Where("publication_year = ?", *criteria.PublicationYear)
	}

	err := query.Order("id ASC").Find(&books).Error
	return books, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching term anywhere in a value,
// treating LIKE wildcards in term as literals.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
