package audit

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/mrlokans/bookcatalog/internal/catalog"
	"github.com/mrlokans/bookcatalog/internal/database/audit"
	"github.com/mrlokans/bookcatalog/internal/entities"
)

// Service provides high-level audit logging functionality.
type Service struct {
	repo    *audit.Repository
	pending sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.Record(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.repo.Record(event); err != nil {
			log.Printf("Failed to log audit event: %v", err)
		}
	}()
}

// Wait blocks until every event queued with LogAsync has been written.
func (s *Service) Wait() {
	s.pending.Wait()
}

// LogMutation records a catalog change reported by the repository.
// A non-nil err marks the change as rolled back.
func (s *Service) LogMutation(action string, kind catalog.Kind, entityID, description string, err error) {
	event := &entities.AuditEvent{
		EventType:   eventTypeFor(action),
		Action:      action,
		Description: truncate(description, 500),
		EntityType:  string(kind),
		EntityID:    entityID,
		Status:      entities.AuditStatusSuccess,
		CreatedAt:   time.Now(),
	}

	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	s.LogAsync(event)
}

// LogExport records a markdown export run.
func (s *Service) LogExport(description string, booksCount, notesCount int, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventExport,
		Action:      "catalog_export",
		Description: description,
		EntityType:  string(catalog.KindBook),
		Status:      entities.AuditStatusSuccess,
		CreatedAt:   time.Now(),
	}

	metadata := map[string]any{
		"books_count": booksCount,
		"notes_count": notesCount,
	}
	if mdBytes, e := json.Marshal(metadata); e == nil {
		event.Metadata = string(mdBytes)
	}

	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	s.LogAsync(event)
}

// LogPrune records a history pruning run.
func (s *Service) LogPrune(deleted int64, retentionDays int, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventCleanup,
		Action:      "history_prune",
		Description: fmt.Sprintf("Removed %d events older than %d days", deleted, retentionDays),
		Status:      entities.AuditStatusSuccess,
		CreatedAt:   time.Now(),
	}
	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}
	s.LogAsync(event)
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.Find(audit.EventFilter{}, limit, offset)
}

// GetEventsByType retrieves audit events filtered by type.
func (s *Service) GetEventsByType(eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.Find(audit.EventFilter{Type: eventType}, limit, offset)
}

// History returns the events recorded for one entity, newest first.
func (s *Service) History(kind catalog.Kind, entityID string) ([]entities.AuditEvent, error) {
	events, _, err := s.repo.Find(audit.EventFilter{EntityType: string(kind), EntityID: entityID}, 0, 0)
	return events, err
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.Prune(cutoff)
}

func eventTypeFor(action string) entities.AuditEventType {
	switch {
	case strings.HasPrefix(action, "cover_"):
		return entities.AuditEventCover
	case strings.HasSuffix(action, "_create"):
		return entities.AuditEventCreate
	case strings.HasSuffix(action, "_delete"):
		return entities.AuditEventDelete
	default:
		return entities.AuditEventUpdate
	}
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
