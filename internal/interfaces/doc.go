// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - CatalogStore: Book persistence used by the catalog service (internal/services/interfaces.go)
//
// ## HTTP Dependencies
//
//   - BookCatalog: Catalog operations served by the books controller (internal/http/books.go)
//   - BookAuditor: Records successful catalog mutations (internal/http/books.go)
//   - AuditReader: Reads the audit trail (internal/http/audit.go)
//
// ## Background Work
//
//   - AuditEventCleaner: Removes expired audit events (internal/tasks/cleanup_audit.go)
//
// # Adding a New Store Backend
//
// The catalog service only depends on CatalogStore, so a different backend
// needs a repository with the same six methods:
//
//	type Repository struct { db *gorm.DB }
//
//	func (r *Repository) GetAllBooks(ctx context.Context) ([]entities.Book, error)
//	func (r *Repository) GetBookByID(ctx context.Context, id uint) (*entities.Book, error)
//	...
//
// Lookups must return gorm.ErrRecordNotFound for missing rows and writes must
// return gorm.ErrDuplicatedKey on ISBN collisions; the service translates both.
//
// # Adding a New Maintenance Task
//
//  1. Define the task and its queue in internal/tasks/
//
//     type RebuildIndexTask struct{}
//
//     func (t RebuildIndexTask) Config() backlite.QueueConfig
//
//  2. Register the queue in entrypoint.go
//
//  3. Add a case to TasksController.RunTask and ListTaskTypes
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the current set.
package interfaces
