// Package database provides the data access layer for the catalog.
//
// # Architecture
//
//	database/
//	├── database.go  # Connection setup (SQLite or PostgreSQL) and migrations
//	├── books/       # Book CRUD and search
//	└── audit/       # Audit trail persistence
//
// # Usage
//
//	db, err := database.NewDatabase("./library.db")
//	booksRepo := books.NewRepository(db.DB)
//	auditRepo := audit.NewRepository(db.DB)
//
// The gorm connection is opened with TranslateError enabled, so unique
// index violations surface as gorm.ErrDuplicatedKey for every driver.
package database
