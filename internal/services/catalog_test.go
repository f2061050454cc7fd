package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/catalog/internal/database"
	"github.com/mrlokans/catalog/internal/database/books"
	"github.com/mrlokans/catalog/internal/entities"
)

func setupCatalog(t *testing.T) *CatalogService {
	t.Helper()
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewCatalogService(books.NewRepository(db.DB))
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func duneInput() CreateBookInput {
	return CreateBookInput{
		Title:           strPtr("Dune"),
		Author:          strPtr("Frank Herbert"),
		ISBN:            strPtr("9780441013593"),
		PublicationYear: intPtr(1965),
	}
}

func TestCatalogService_CreateBook(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns id and available status", func(t *testing.T) {
		svc := setupCatalog(t)

		book, err := svc.CreateBook(ctx, duneInput())
		require.NoError(t, err)
		assert.NotZero(t, book.ID)
		assert.Equal(t, entities.BookStatusAvailable, book.Status)
		assert.Nil(t, book.CheckOutDate)
		assert.Nil(t, book.DueDate)
		assert.Nil(t, book.IssuedTo)
	})

	t.Run("missing required fields are rejected and not persisted", func(t *testing.T) {
		svc := setupCatalog(t)

		cases := map[string]func(in *CreateBookInput){
			"no title":       func(in *CreateBookInput) { in.Title = nil },
			"empty author":   func(in *CreateBookInput) { in.Author = strPtr("") },
			"blank isbn":     func(in *CreateBookInput) { in.ISBN = strPtr("   ") },
			"no publication": func(in *CreateBookInput) { in.PublicationYear = nil },
		}
		for name, mutate := range cases {
			t.Run(name, func(t *testing.T) {
				in := duneInput()
				mutate(&in)
				_, err := svc.CreateBook(ctx, in)
				assert.ErrorIs(t, err, ErrMissingParameters)
			})
		}

		all, err := svc.ListBooks(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("year zero is an explicit value", func(t *testing.T) {
		svc := setupCatalog(t)

		in := duneInput()
		in.PublicationYear = intPtr(0)
		book, err := svc.CreateBook(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, 0, book.PublicationYear)
	})

	t.Run("duplicate isbn keeps a single record", func(t *testing.T) {
		svc := setupCatalog(t)

		_, err := svc.CreateBook(ctx, duneInput())
		require.NoError(t, err)

		other := duneInput()
		other.Title = strPtr("Another Title")
		_, err = svc.CreateBook(ctx, other)
		assert.ErrorIs(t, err, ErrDuplicateISBN)

		var dupErr *DuplicateISBNError
		require.ErrorAs(t, err, &dupErr)
		assert.Equal(t, "9780441013593", dupErr.ISBN)

		all, err := svc.ListBooks(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})
}

func TestCatalogService_UpdateBook(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown id", func(t *testing.T) {
		svc := setupCatalog(t)

		_, err := svc.UpdateBook(ctx, 999, UpdateBookInput{Status: strPtr("checked_out")})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("status only leaves other fields unchanged", func(t *testing.T) {
		svc := setupCatalog(t)
		created, err := svc.CreateBook(ctx, duneInput())
		require.NoError(t, err)

		updated, err := svc.UpdateBook(ctx, created.ID, UpdateBookInput{Status: strPtr("checked_out")})
		require.NoError(t, err)

		assert.Equal(t, entities.BookStatusCheckedOut, updated.Status)
		assert.Equal(t, created.ID, updated.ID)
		assert.Equal(t, "Dune", updated.Title)
		assert.Equal(t, "Frank Herbert", updated.Author)
		assert.Equal(t, "9780441013593", updated.ISBN)
		assert.Equal(t, 1965, updated.PublicationYear)
		assert.Nil(t, updated.CheckOutDate)
		assert.Nil(t, updated.IssuedTo)
	})

	t.Run("records a checkout", func(t *testing.T) {
		svc := setupCatalog(t)
		created, err := svc.CreateBook(ctx, duneInput())
		require.NoError(t, err)

		updated, err := svc.UpdateBook(ctx, created.ID, UpdateBookInput{
			Status:       strPtr("checked_out"),
			CheckOutDate: strPtr("2024-01-15"),
			DueDate:      strPtr("2024-02-15"),
			IssuedTo:     strPtr("Paul Atreides"),
		})
		require.NoError(t, err)

		require.NotNil(t, updated.CheckOutDate)
		assert.Equal(t, 2024, updated.CheckOutDate.Year())
		assert.Equal(t, "January", updated.CheckOutDate.Month().String())
		assert.Equal(t, 15, updated.CheckOutDate.Day())
		require.NotNil(t, updated.DueDate)
		assert.Equal(t, "2024-02-15", updated.DueDate.Format(entities.DateLayout))
		require.NotNil(t, updated.IssuedTo)
		assert.Equal(t, "Paul Atreides", *updated.IssuedTo)

		t.Run("empty strings clear the checkout", func(t *testing.T) {
			returned, err := svc.UpdateBook(ctx, created.ID, UpdateBookInput{
				Status:       strPtr("available"),
				CheckOutDate: strPtr(""),
				DueDate:      strPtr(""),
				IssuedTo:     strPtr(""),
			})
			require.NoError(t, err)
			assert.Nil(t, returned.CheckOutDate)
			assert.Nil(t, returned.DueDate)
			assert.Nil(t, returned.IssuedTo)
		})
	})

	t.Run("invalid date format", func(t *testing.T) {
		svc := setupCatalog(t)
		created, err := svc.CreateBook(ctx, duneInput())
		require.NoError(t, err)

		_, err = svc.UpdateBook(ctx, created.ID, UpdateBookInput{
			Status:       strPtr("checked_out"),
			CheckOutDate: strPtr("15-01-2024"),
		})
		assert.ErrorIs(t, err, ErrInvalidDateFormat)

		var fieldErr *FieldError
		require.ErrorAs(t, err, &fieldErr)
		assert.Equal(t, "check_out_date", fieldErr.Field)

		// Nothing was written, including the valid status.
		all, err := svc.ListBooks(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, entities.BookStatusAvailable, all[0].Status)
	})

	t.Run("blank required text is rejected", func(t *testing.T) {
		svc := setupCatalog(t)
		created, err := svc.CreateBook(ctx, duneInput())
		require.NoError(t, err)

		_, err = svc.UpdateBook(ctx, created.ID, UpdateBookInput{Title: strPtr("")})
		assert.ErrorIs(t, err, ErrEmptyField)

		var fieldErr *FieldError
		require.ErrorAs(t, err, &fieldErr)
		assert.Equal(t, "title", fieldErr.Field)
	})

	t.Run("isbn collision", func(t *testing.T) {
		svc := setupCatalog(t)
		_, err := svc.CreateBook(ctx, duneInput())
		require.NoError(t, err)

		other := CreateBookInput{
			Title:           strPtr("Neuromancer"),
			Author:          strPtr("William Gibson"),
			ISBN:            strPtr("9780441569595"),
			PublicationYear: intPtr(1984),
		}
		second, err := svc.CreateBook(ctx, other)
		require.NoError(t, err)

		_, err = svc.UpdateBook(ctx, second.ID, UpdateBookInput{ISBN: strPtr("9780441013593")})
		assert.ErrorIs(t, err, ErrDuplicateISBN)
	})
}

func TestCatalogService_DeleteBook(t *testing.T) {
	ctx := context.Background()

	t.Run("removes the book from list and search", func(t *testing.T) {
		svc := setupCatalog(t)
		created, err := svc.CreateBook(ctx, duneInput())
		require.NoError(t, err)

		deleted, err := svc.DeleteBook(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Dune", deleted.Title)
		assert.Equal(t, "Frank Herbert", deleted.Author)

		all, err := svc.ListBooks(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)

		found, err := svc.SearchBooks(ctx, entities.BookSearchCriteria{Title: "dune"})
		require.NoError(t, err)
		assert.Empty(t, found)
	})

	t.Run("unknown id", func(t *testing.T) {
		svc := setupCatalog(t)

		_, err := svc.DeleteBook(ctx, 42)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCatalogService_SearchBooks(t *testing.T) {
	ctx := context.Background()
	svc := setupCatalog(t)

	_, err := svc.CreateBook(ctx, duneInput())
	require.NoError(t, err)
	_, err = svc.CreateBook(ctx, CreateBookInput{
		Title:           strPtr("DuNe Chronicles"),
		Author:          strPtr("Someone Else"),
		ISBN:            strPtr("1234567890123"),
		PublicationYear: intPtr(1990),
	})
	require.NoError(t, err)

	t.Run("requires a filter", func(t *testing.T) {
		_, err := svc.SearchBooks(ctx, entities.BookSearchCriteria{})
		assert.ErrorIs(t, err, ErrNoSearchParameters)
	})

	t.Run("title is case-insensitive including mixed case", func(t *testing.T) {
		found, err := svc.SearchBooks(ctx, entities.BookSearchCriteria{Title: "dune"})
		require.NoError(t, err)
		assert.Len(t, found, 2)
	})

	t.Run("exact year", func(t *testing.T) {
		found, err := svc.SearchBooks(ctx, entities.BookSearchCriteria{PublicationYear: intPtr(1965)})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "Dune", found[0].Title)
	})

	t.Run("empty result is not an error", func(t *testing.T) {
		found, err := svc.SearchBooks(ctx, entities.BookSearchCriteria{Author: "tolkien"})
		require.NoError(t, err)
		assert.Empty(t, found)
	})
}

type failingStore struct {
	CatalogStore
	err error
}

func (f *failingStore) GetAllBooks(ctx context.Context) ([]entities.Book, error) {
	return nil, f.err
}

func (f *failingStore) GetBookByID(ctx context.Context, id uint) (*entities.Book, error) {
	return nil, f.err
}

func TestCatalogService_SearchBooks_NonASCIICase(t *testing.T) {
	svc := setupCatalog(t)
	ctx := context.Background()

	_, err := svc.CreateBook(ctx, CreateBookInput{
		Title:           strPtr("Éducation Sentimentale"),
		Author:          strPtr("Gustave Flaubert"),
		ISBN:            strPtr("9780140447972"),
		PublicationYear: intPtr(1869),
	})
	require.NoError(t, err)

	found, err := svc.SearchBooks(ctx, entities.BookSearchCriteria{Title: "éducation"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Éducation Sentimentale", found[0].Title)
}

// vanishingStore deletes each book right after handing it out, as a
// concurrent DELETE between lookup and write would.
type vanishingStore struct {
	*books.Repository
}

func (v vanishingStore) GetBookByID(ctx context.Context, id uint) (*entities.Book, error) {
	book, err := v.Repository.GetBookByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := v.Repository.DeleteBook(ctx, id); err != nil {
		return nil, err
	}
	return book, nil
}

func TestCatalogService_UpdateBook_ConcurrentDelete(t *testing.T) {
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := books.NewRepository(db.DB)
	ctx := context.Background()
	created, err := NewCatalogService(repo).CreateBook(ctx, duneInput())
	require.NoError(t, err)

	svc := NewCatalogService(vanishingStore{Repository: repo})
	_, err = svc.UpdateBook(ctx, created.ID, UpdateBookInput{Status: strPtr("checked_out")})
	assert.ErrorIs(t, err, ErrNotFound)

	remaining, err := repo.GetAllBooks(ctx)
	require.NoError(t, err)
	assert.Empty(t, remaining, "deleted book must stay deleted")
}

func TestCatalogService_StoreFailures(t *testing.T) {
	storeErr := errors.New("disk on fire")
	svc := NewCatalogService(&failingStore{err: storeErr})
	ctx := context.Background()

	_, err := svc.ListBooks(ctx)
	assert.ErrorIs(t, err, storeErr)

	_, err = svc.UpdateBook(ctx, 1, UpdateBookInput{})
	assert.ErrorIs(t, err, storeErr)
	assert.NotErrorIs(t, err, ErrNotFound)

	_, err = svc.DeleteBook(ctx, 1)
	assert.ErrorIs(t, err, storeErr)
}

func TestErrorTypes(t *testing.T) {
	fieldErr := &FieldError{Field: "due_date", Err: ErrInvalidDateFormat}
	assert.Equal(t, "due_date: invalid date format", fieldErr.Error())

	dupErr := &DuplicateISBNError{ISBN: "123"}
	assert.Equal(t, "book with ISBN 123 already exists", dupErr.Error())
	assert.ErrorIs(t, dupErr, ErrDuplicateISBN)
}
