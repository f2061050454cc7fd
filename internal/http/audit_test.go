package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/catalog/internal/entities"
)

type stubAuditReader struct {
	events    []entities.AuditEvent
	total     int64
	err       error
	gotType   entities.AuditEventType
	gotLimit  int
	gotOffset int
	gotBookID uint
}

func (s *stubAuditReader) GetEvents(limit, offset int) ([]entities.AuditEvent, int64, error) {
	s.gotLimit, s.gotOffset = limit, offset
	return s.events, s.total, s.err
}

func (s *stubAuditReader) GetEventsByType(eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error) {
	s.gotType = eventType
	return s.GetEvents(limit, offset)
}

func (s *stubAuditReader) GetEventsForBook(bookID uint) ([]entities.AuditEvent, error) {
	s.gotBookID = bookID
	return s.events, s.err
}

func getAudit(t *testing.T, reader AuditReader, target string) (*httptest.ResponseRecorder, AuditPage) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/api/audit", NewAuditController(reader).GetAuditEvents)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", target, nil)
	router.ServeHTTP(w, req)

	var env struct {
		Payload AuditPage `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env.Payload
}

func TestAuditController_GetAuditEvents(t *testing.T) {
	t.Run("uses defaults", func(t *testing.T) {
		reader := &stubAuditReader{}

		w, page := getAudit(t, reader, "/api/audit")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, defaultAuditLimit, reader.gotLimit)
		assert.Equal(t, 0, reader.gotOffset)
		assert.NotNil(t, page.Events)
		assert.False(t, page.HasMore)
	})

	t.Run("clamps out of range limits", func(t *testing.T) {
		reader := &stubAuditReader{}

		getAudit(t, reader, "/api/audit?limit=1000&offset=-5")

		assert.Equal(t, defaultAuditLimit, reader.gotLimit)
		assert.Equal(t, 0, reader.gotOffset)
	})

	t.Run("filters by type and reports more pages", func(t *testing.T) {
		reader := &stubAuditReader{
			events: []entities.AuditEvent{{ID: 3, EventType: entities.AuditEventDelete}},
			total:  5,
		}

		_, page := getAudit(t, reader, "/api/audit?type=delete&limit=1&offset=2")

		assert.Equal(t, entities.AuditEventDelete, reader.gotType)
		assert.Equal(t, 1, page.Limit)
		assert.Equal(t, 2, page.Offset)
		assert.Equal(t, int64(5), page.Total)
		assert.True(t, page.HasMore)
		require.Len(t, page.Events, 1)
	})

	t.Run("returns one book's history", func(t *testing.T) {
		bookID := uint(9)
		reader := &stubAuditReader{
			events: []entities.AuditEvent{
				{ID: 2, EventType: entities.AuditEventUpdate, EntityID: &bookID},
				{ID: 1, EventType: entities.AuditEventCreate, EntityID: &bookID},
			},
		}

		w, page := getAudit(t, reader, "/api/audit?book_id=9")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, uint(9), reader.gotBookID)
		assert.Equal(t, int64(2), page.Total)
		assert.False(t, page.HasMore)
		require.Len(t, page.Events, 2)
	})

	t.Run("rejects a malformed book_id", func(t *testing.T) {
		reader := &stubAuditReader{}

		w, _ := getAudit(t, reader, "/api/audit?book_id=dune")

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Zero(t, reader.gotBookID)
	})

	t.Run("hides store errors", func(t *testing.T) {
		reader := &stubAuditReader{err: errors.New("no such table")}

		w, _ := getAudit(t, reader, "/api/audit")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "no such table")
	})
}
