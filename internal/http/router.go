package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(SecurityHeadersMiddleware())

	if cfg.RateLimiter != nil {
		router.Use(cfg.RateLimiter.Handler())
	}

	// Health endpoints sit in front of the read-only gate
	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	api := router.Group("/api")
	if cfg.ReadOnly != nil {
		api.Use(cfg.ReadOnly.Handler())
	}

	// Books API endpoints
	books := NewBooksController(cfg.Catalog, cfg.Auditor)
	api.GET("/books", books.GetAllBooks)
	api.POST("/books", books.CreateBook)
	api.GET("/books/search", books.SearchBooks)
	api.PUT("/books/:id", books.UpdateBook)
	api.DELETE("/books/:id", books.DeleteBook)

	// Audit trail
	if cfg.AuditReader != nil {
		auditController := NewAuditController(cfg.AuditReader)
		api.GET("/audit", auditController.GetAuditEvents)
	}

	// Task management endpoints
	if cfg.TaskClient != nil {
		tasksController := NewTasksController(cfg.TaskClient, cfg.AuditRetentionDays)
		api.GET("/tasks/types", tasksController.ListTaskTypes)
		api.GET("/tasks/:id", tasksController.GetTaskStatus)
		api.POST("/tasks/:type/run", tasksController.RunTask)
	}

	return router
}
