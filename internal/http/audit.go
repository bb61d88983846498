package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookcatalog/internal/catalog"
	"github.com/mrlokans/bookcatalog/internal/entities"
)

type AuditController struct {
	history HistoryStore
}

func NewAuditController(history HistoryStore) *AuditController {
	return &AuditController{history: history}
}

// GetAuditEvents returns paginated audit events.
// GET /api/audit?type=&page=&limit=
func (ac *AuditController) GetAuditEvents(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "25"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 25
	}

	eventType := c.Query("type")
	offset := (page - 1) * limit

	var events []entities.AuditEvent
	var total int64
	var err error

	if eventType != "" {
		events, total, err = ac.history.GetEventsByType(entities.AuditEventType(eventType), limit, offset)
	} else {
		events, total, err = ac.history.GetEvents(limit, offset)
	}
	if err != nil {
		respondInternalError(c, err, "audit events")
		return
	}

	totalPages := (int(total) + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:       events,
		Total:      total,
		Limit:      limit,
		Offset:     offset,
		HasMore:    int64(offset+len(events)) < total,
		TotalPages: totalPages,
	})
}

// GetEntityHistory returns the recorded changes of one book, genre or note.
// GET /api/audit/:kind/:id
func (ac *AuditController) GetEntityHistory(c *gin.Context) {
	kind := catalog.Kind(c.Param("kind"))
	switch kind {
	case catalog.KindBook, catalog.KindGenre, catalog.KindNote:
	default:
		respondValidation(c, "kind", "must be book, genre or note")
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	events, err := ac.history.History(kind, id)
	if err != nil {
		respondInternalError(c, err, "entity history")
		return
	}
	if events == nil {
		events = []entities.AuditEvent{}
	}
	c.JSON(http.StatusOK, gin.H{"events": events, "count": len(events)})
}
