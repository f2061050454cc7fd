package entities

import "time"

type BookStatus string

const (
	BookStatusAvailable  BookStatus = "available"
	BookStatusCheckedOut BookStatus = "checked_out"
)

// DateLayout is the textual form of checkout and due dates.
const DateLayout = "2006-01-02"

type Book struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Title           string     `gorm:"size:100;not null;index" json:"title"`
	Author          string     `gorm:"size:100;not null;index" json:"author"`
	ISBN            string     `gorm:"size:13;not null;uniqueIndex" json:"isbn"`
	PublicationYear int        `gorm:"not null;index" json:"publication_year"`
	Status          BookStatus `gorm:"size:20;not null;default:available" json:"status"`
	CheckOutDate    *time.Time `json:"check_out_date"`
	DueDate         *time.Time `json:"due_date"`
	IssuedTo        *string    `gorm:"size:100" json:"issued_to"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (Book) TableName() string {
	return "books"
}

// BookSearchCriteria narrows a catalog search. Empty strings and a nil year
// are ignored; the remaining filters are combined with AND.
type BookSearchCriteria struct {
	Title           string
	Author          string
	PublicationYear *int
}

// IsEmpty reports whether no filter is set.
func (c BookSearchCriteria) IsEmpty() bool {
	return c.Title == "" && c.Author == "" && c.PublicationYear == nil
}
