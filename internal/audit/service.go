package audit

import (
	"fmt"
	"log"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/mrlokans/catalog/internal/database/audit"
	"github.com/mrlokans/catalog/internal/entities"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// RequestInfo identifies the HTTP request that caused an audited change.
type RequestInfo struct {
	RequestID string
	IPAddress string
	UserAgent string
}

// Service provides high-level audit logging functionality.
type Service struct {
	repo     *audit.Repository
	inflight sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
// After Shutdown the event is written synchronously instead.
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		if err := s.repo.LogEvent(event); err != nil {
			log.Printf("Failed to log audit event: %v", err)
		}
		return
	}

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		if err := s.repo.LogEvent(event); err != nil {
			log.Printf("Failed to log audit event: %v", err)
		}
	}()
}

// Wait blocks until every pending LogAsync write has finished.
func (s *Service) Wait() {
	s.inflight.Wait()
}

// Shutdown stops background writes and waits for pending ones.
// Handlers still running after a timed-out server shutdown may keep
// calling LogAsync; those events are persisted inline.
func (s *Service) Shutdown() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.inflight.Wait()
}

// LogBookCreated records the creation of a book.
func (s *Service) LogBookCreated(req RequestInfo, book *entities.Book) {
	s.LogAsync(bookEvent(req, entities.AuditEventCreate, book,
		fmt.Sprintf("Created book: %s by %s", book.Title, book.Author),
		map[string]any{"isbn": book.ISBN, "publication_year": book.PublicationYear}))
}

// LogBookUpdated records an update and the fields the caller supplied.
func (s *Service) LogBookUpdated(req RequestInfo, book *entities.Book, fields []string) {
	s.LogAsync(bookEvent(req, entities.AuditEventUpdate, book,
		fmt.Sprintf("Updated book: %s by %s", book.Title, book.Author),
		map[string]any{"fields": fields, "status": book.Status}))
}

// LogBookDeleted records the permanent removal of a book.
func (s *Service) LogBookDeleted(req RequestInfo, book *entities.Book) {
	s.LogAsync(bookEvent(req, entities.AuditEventDelete, book,
		fmt.Sprintf("Deleted book: %s by %s", book.Title, book.Author),
		map[string]any{"isbn": book.ISBN}))
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(limit, offset)
}

// GetEventsByType retrieves audit events filtered by type.
func (s *Service) GetEventsByType(eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEventsByType(eventType, limit, offset)
}

// GetEventsForBook retrieves the history of one book, newest first.
func (s *Service) GetEventsForBook(bookID uint) ([]entities.AuditEvent, error) {
	return s.repo.GetEventsForBook(bookID)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(cutoff)
}

func bookEvent(req RequestInfo, eventType entities.AuditEventType, book *entities.Book, description string, metadata map[string]any) *entities.AuditEvent {
	bookID := book.ID
	event := &entities.AuditEvent{
		EventType:   eventType,
		Action:      "book_" + string(eventType),
		Description: truncate(description, 500),
		EntityType:  "book",
		EntityID:    &bookID,
		IPAddress:   req.IPAddress,
		UserAgent:   truncate(req.UserAgent, 500),
		RequestID:   req.RequestID,
		Status:      entities.AuditStatusSuccess,
	}

	if mdBytes, err := json.Marshal(metadata); err == nil {
		event.Metadata = string(mdBytes)
	}
	return event
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
