package http

import (
	"github.com/mrlokans/catalog/internal/database"
	"github.com/mrlokans/catalog/internal/readonly"
	"github.com/mrlokans/catalog/internal/tasks"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Catalog  BookCatalog
	Database *database.Database

	// Audit trail (optional)
	Auditor     BookAuditor
	AuditReader AuditReader

	// Middleware (optional)
	ReadOnly    *readonly.Middleware
	RateLimiter *RateLimiter

	// Task queue client (optional)
	TaskClient *tasks.Client

	// Retention applied to manually triggered audit cleanups
	AuditRetentionDays int

	// Application info
	Version string
}
