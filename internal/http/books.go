package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/catalog/internal/audit"
	"github.com/mrlokans/catalog/internal/entities"
	"github.com/mrlokans/catalog/internal/services"
)

// BookCatalog is the catalog behaviour the books controller serves.
type BookCatalog interface {
	ListBooks(ctx context.Context) ([]entities.Book, error)
	CreateBook(ctx context.Context, input services.CreateBookInput) (*entities.Book, error)
	UpdateBook(ctx context.Context, id uint, input services.UpdateBookInput) (*entities.Book, error)
	DeleteBook(ctx context.Context, id uint) (*entities.Book, error)
	SearchBooks(ctx context.Context, criteria entities.BookSearchCriteria) ([]entities.Book, error)
}

// BookAuditor records successful catalog mutations.
type BookAuditor interface {
	LogBookCreated(req audit.RequestInfo, book *entities.Book)
	LogBookUpdated(req audit.RequestInfo, book *entities.Book, fields []string)
	LogBookDeleted(req audit.RequestInfo, book *entities.Book)
}

type BooksController struct {
	catalog BookCatalog
	auditor BookAuditor
}

// NewBooksController creates a books controller. auditor may be nil.
func NewBooksController(catalog BookCatalog, auditor BookAuditor) *BooksController {
	return &BooksController{catalog: catalog, auditor: auditor}
}

// BookResponse is the public representation of a book.
type BookResponse struct {
	ID              uint    `json:"id"`
	Title           string  `json:"title"`
	Author          string  `json:"author"`
	ISBN            string  `json:"isbn"`
	PublicationYear int     `json:"publication_year"`
	Status          string  `json:"status"`
	CheckOutDate    *string `json:"check_out_date"`
	DueDate         *string `json:"due_date"`
	IssuedTo        *string `json:"issued_to"`
}

func newBookResponse(book *entities.Book) BookResponse {
	return BookResponse{
		ID:              book.ID,
		Title:           book.Title,
		Author:          book.Author,
		ISBN:            book.ISBN,
		PublicationYear: book.PublicationYear,
		Status:          string(book.Status),
		CheckOutDate:    formatDate(book.CheckOutDate),
		DueDate:         formatDate(book.DueDate),
		IssuedTo:        book.IssuedTo,
	}
}

func newBookResponses(books []entities.Book) []BookResponse {
	out := make([]BookResponse, 0, len(books))
	for i := range books {
		out = append(out, newBookResponse(&books[i]))
	}
	return out
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(entities.DateLayout)
	return &s
}

type createBookRequest struct {
	Title           *string `json:"title" binding:"omitempty,max=100"`
	Author          *string `json:"author" binding:"omitempty,max=100"`
	ISBN            *string `json:"isbn" binding:"omitempty,max=13"`
	PublicationYear *int    `json:"publication_year"`
}

type updateBookRequest struct {
	Title           *string `json:"title" binding:"omitempty,max=100"`
	Author          *string `json:"author" binding:"omitempty,max=100"`
	ISBN            *string `json:"isbn" binding:"omitempty,max=13"`
	PublicationYear *int    `json:"publication_year"`
	Status          *string `json:"status" binding:"omitempty,max=20"`
	CheckOutDate    *string `json:"check_out_date"`
	DueDate         *string `json:"due_date"`
	IssuedTo        *string `json:"issued_to" binding:"omitempty,max=100"`
}

// fields lists the supplied JSON fields in declaration order.
func (r updateBookRequest) fields() []string {
	var fields []string
	add := func(name string, present bool) {
		if present {
			fields = append(fields, name)
		}
	}
	add("title", r.Title != nil)
	add("author", r.Author != nil)
	add("isbn", r.ISBN != nil)
	add("publication_year", r.PublicationYear != nil)
	add("status", r.Status != nil)
	add("check_out_date", r.CheckOutDate != nil)
	add("due_date", r.DueDate != nil)
	add("issued_to", r.IssuedTo != nil)
	return fields
}

// GetAllBooks returns every book in the catalog.
// GET /api/books
func (bc *BooksController) GetAllBooks(c *gin.Context) {
	books, err := bc.catalog.ListBooks(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}
	respondPayload(c, newBookResponses(books))
}

// CreateBook adds a book.
// POST /api/books
func (bc *BooksController) CreateBook(c *gin.Context) {
	var req createBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	book, err := bc.catalog.CreateBook(c.Request.Context(), services.CreateBookInput{
		Title:           req.Title,
		Author:          req.Author,
		ISBN:            req.ISBN,
		PublicationYear: req.PublicationYear,
	})
	if err != nil {
		respondServiceError(c, err, "create book")
		return
	}

	if bc.auditor != nil {
		bc.auditor.LogBookCreated(requestInfo(c), book)
	}
	respondPayload(c, newBookResponse(book))
}

// UpdateBook applies a partial update to a book.
// PUT /api/books/:id
func (bc *BooksController) UpdateBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "Book")
	if !ok {
		return
	}

	var req updateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	book, err := bc.catalog.UpdateBook(c.Request.Context(), id, services.UpdateBookInput{
		Title:           req.Title,
		Author:          req.Author,
		ISBN:            req.ISBN,
		PublicationYear: req.PublicationYear,
		Status:          req.Status,
		CheckOutDate:    req.CheckOutDate,
		DueDate:         req.DueDate,
		IssuedTo:        req.IssuedTo,
	})
	if err != nil {
		respondServiceError(c, err, "update book")
		return
	}

	if bc.auditor != nil {
		bc.auditor.LogBookUpdated(requestInfo(c), book, req.fields())
	}
	respondPayload(c, newBookResponse(book))
}

// DeleteBook permanently removes a book.
// DELETE /api/books/:id
func (bc *BooksController) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "Book")
	if !ok {
		return
	}

	book, err := bc.catalog.DeleteBook(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "delete book")
		return
	}

	if bc.auditor != nil {
		bc.auditor.LogBookDeleted(requestInfo(c), book)
	}
	respondMessage(c, fmt.Sprintf("Book %s by %s deleted", book.Title, book.Author))
}

// SearchBooks filters books by title, author and publication year.
// GET /api/books/search?title=&author=&publication_year=
func (bc *BooksController) SearchBooks(c *gin.Context) {
	year, ok := parseQueryInt(c, "publication_year")
	if !ok {
		return
	}

	books, err := bc.catalog.SearchBooks(c.Request.Context(), entities.BookSearchCriteria{
		Title:           c.Query("title"),
		Author:          c.Query("author"),
		PublicationYear: year,
	})
	if err != nil {
		respondServiceError(c, err, "search books")
		return
	}
	respondPayload(c, newBookResponses(books))
}

// respondServiceError maps catalog errors onto envelope failures.
func respondServiceError(c *gin.Context, err error, op string) {
	var fieldErr *services.FieldError
	var dupErr *services.DuplicateISBNError

	switch {
	case errors.Is(err, services.ErrNotFound):
		respondNotFound(c, "Book")
	case errors.Is(err, services.ErrMissingParameters):
		respondError(c, http.StatusUnprocessableEntity, "Missing parameters")
	case errors.Is(err, services.ErrNoSearchParameters):
		respondError(c, http.StatusUnprocessableEntity, "No search parameters")
	case errors.As(err, &dupErr):
		respondError(c, http.StatusConflict, fmt.Sprintf("Book with ISBN %s already exists", dupErr.ISBN))
	case errors.As(err, &fieldErr) && errors.Is(err, services.ErrEmptyField):
		respondError(c, http.StatusUnprocessableEntity, fieldErr.Field+" must not be empty")
	case errors.As(err, &fieldErr) && errors.Is(err, services.ErrInvalidDateFormat):
		respondError(c, http.StatusBadRequest, fmt.Sprintf("invalid date format for %s, expected YYYY-MM-DD", fieldErr.Field))
	default:
		respondInternalError(c, err, op)
	}
}

func requestInfo(c *gin.Context) audit.RequestInfo {
	return audit.RequestInfo{
		RequestID: c.GetString(ContextKeyRequestID),
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}
