package http

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/catalog/internal/entities"
)

const (
	defaultAuditLimit = 25
	maxAuditLimit     = 100
)

// AuditReader lists recorded audit events newest first.
type AuditReader interface {
	GetEvents(limit, offset int) ([]entities.AuditEvent, int64, error)
	GetEventsByType(eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error)
	GetEventsForBook(bookID uint) ([]entities.AuditEvent, error)
}

type AuditController struct {
	reader AuditReader
}

func NewAuditController(reader AuditReader) *AuditController {
	return &AuditController{reader: reader}
}

// AuditPage is a window over the audit trail.
type AuditPage struct {
	Events  []entities.AuditEvent `json:"events"`
	Total   int64                 `json:"total"`
	Limit   int                   `json:"limit"`
	Offset  int                   `json:"offset"`
	HasMore bool                  `json:"has_more"`
}

// GetAuditEvents returns audit events as JSON
// GET /api/audit?limit=&offset=&type=
// GET /api/audit?book_id= returns the full history of one book
func (ac *AuditController) GetAuditEvents(c *gin.Context) {
	if c.Query("book_id") != "" {
		ac.getBookHistory(c)
		return
	}

	limit := queryIntDefault(c, "limit", defaultAuditLimit)
	if limit < 1 || limit > maxAuditLimit {
		limit = defaultAuditLimit
	}
	offset := queryIntDefault(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	var (
		events []entities.AuditEvent
		total  int64
		err    error
	)
	if eventType := c.Query("type"); eventType != "" {
		events, total, err = ac.reader.GetEventsByType(entities.AuditEventType(eventType), limit, offset)
	} else {
		events, total, err = ac.reader.GetEvents(limit, offset)
	}
	if err != nil {
		respondInternalError(c, err, "list audit events")
		return
	}
	if events == nil {
		events = []entities.AuditEvent{}
	}

	respondPayload(c, AuditPage{
		Events:  events,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+len(events)) < total,
	})
}

func (ac *AuditController) getBookHistory(c *gin.Context) {
	bookID, err := strconv.ParseUint(c.Query("book_id"), 10, 32)
	if err != nil || bookID == 0 {
		respondValidationError(c, "invalid book_id", []FieldIssue{{Field: "book_id", Message: "must be a positive integer"}})
		return
	}

	events, err := ac.reader.GetEventsForBook(uint(bookID))
	if err != nil {
		respondInternalError(c, err, "book audit history")
		return
	}
	if events == nil {
		events = []entities.AuditEvent{}
	}

	respondPayload(c, AuditPage{
		Events: events,
		Total:  int64(len(events)),
		Limit:  len(events),
	})
}
