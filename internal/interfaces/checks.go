package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/catalog/internal/audit"
	"github.com/mrlokans/catalog/internal/database/books"
	"github.com/mrlokans/catalog/internal/http"
	"github.com/mrlokans/catalog/internal/services"
	"github.com/mrlokans/catalog/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// CatalogStore implementations
var _ services.CatalogStore = (*books.Repository)(nil)

// =============================================================================
// HTTP Dependencies
// =============================================================================

var _ http.BookCatalog = (*services.CatalogService)(nil)
var _ http.BookAuditor = (*audit.Service)(nil)
var _ http.AuditReader = (*audit.Service)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ tasks.AuditEventCleaner = (*audit.Service)(nil)
