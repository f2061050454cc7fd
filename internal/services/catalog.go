package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/catalog/internal/entities"
)

// CatalogService implements the book record operations of the catalog.
type CatalogService struct {
	store CatalogStore
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(store CatalogStore) *CatalogService {
	return &CatalogService{store: store}
}

// ListBooks returns every book in the catalog.
func (s *CatalogService) ListBooks(ctx context.Context) ([]entities.Book, error) {
	books, err := s.store.GetAllBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// CreateBook validates the required fields and stores a new available book.
func (s *CatalogService) CreateBook(ctx context.Context, input CreateBookInput) (*entities.Book, error) {
	if isBlank(input.Title) || isBlank(input.Author) || isBlank(input.ISBN) || input.PublicationYear == nil {
		return nil, ErrMissingParameters
	}

	book := &entities.Book{
		Title:           *input.Title,
		Author:          *input.Author,
		ISBN:            *input.ISBN,
		PublicationYear: *input.PublicationYear,
		Status:          entities.BookStatusAvailable,
	}

	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, translateWriteError(err, book.ISBN, "create book")
	}
	return book, nil
}

// UpdateBook applies a sparse update to an existing book.
// Every supplied field is validated before anything is written.
func (s *CatalogService) UpdateBook(ctx context.Context, id uint, input UpdateBookInput) (*entities.Book, error) {
	book, err := s.getBook(ctx, id)
	if err != nil {
		return nil, err
	}

	required := []struct {
		field string
		value *string
	}{
		{"title", input.Title},
		{"author", input.Author},
		{"isbn", input.ISBN},
		{"status", input.Status},
	}
	for _, r := range required {
		if r.value != nil && isBlank(r.value) {
			return nil, &FieldError{Field: r.field, Err: ErrEmptyField}
		}
	}

	checkOutDate, err := parseOptionalDate("check_out_date", input.CheckOutDate)
	if err != nil {
		return nil, err
	}
	dueDate, err := parseOptionalDate("due_date", input.DueDate)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		book.Title = *input.Title
	}
	if input.Author != nil {
		book.Author = *input.Author
	}
	if input.ISBN != nil {
		book.ISBN = *input.ISBN
	}
	if input.PublicationYear != nil {
		book.PublicationYear = *input.PublicationYear
	}
	if input.Status != nil {
		book.Status = entities.BookStatus(*input.Status)
	}
	if input.CheckOutDate != nil {
		book.CheckOutDate = checkOutDate
	}
	if input.DueDate != nil {
		book.DueDate = dueDate
	}
	if input.IssuedTo != nil {
		if *input.IssuedTo == "" {
			book.IssuedTo = nil
		} else {
			issuedTo := *input.IssuedTo
			book.IssuedTo = &issuedTo
		}
	}

	if err := s.store.SaveBook(ctx, book); err != nil {
		return nil, translateWriteError(err, book.ISBN, "update book")
	}
	return book, nil
}

// DeleteBook permanently removes a book and returns the record as it was.
func (s *CatalogService) DeleteBook(ctx context.Context, id uint) (*entities.Book, error) {
	book, err := s.getBook(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.store.DeleteBook(ctx, id); err != nil {
		return nil, fmt.Errorf("delete book %d: %w", id, err)
	}
	return book, nil
}

// SearchBooks returns the books matching every supplied filter.
func (s *CatalogService) SearchBooks(ctx context.Context, criteria entities.BookSearchCriteria) ([]entities.Book, error) {
	if criteria.IsEmpty() {
		return nil, ErrNoSearchParameters
	}

	books, err := s.store.SearchBooks(ctx, criteria)
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	return books, nil
}

func (s *CatalogService) getBook(ctx context.Context, id uint) (*entities.Book, error) {
	book, err := s.store.GetBookByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get book %d: %w", id, err)
	}
	return book, nil
}

func translateWriteError(err error, isbn, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &DuplicateISBNError{ISBN: isbn}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// parseOptionalDate parses a YYYY-MM-DD value. An empty string yields nil.
func parseOptionalDate(field string, value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := time.Parse(entities.DateLayout, *value)
	if err != nil {
		return nil, &FieldError{Field: field, Err: ErrInvalidDateFormat}
	}
	return &t, nil
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
