package audit

import (
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/bookcatalog/internal/entities"
)

// EventFilter narrows a history query. Zero fields match everything.
type EventFilter struct {
	Type       entities.AuditEventType
	EntityType string
	EntityID   string
	Since      time.Time
}

func (f EventFilter) apply(q *gorm.DB) *gorm.DB {
	if f.Type != "" {
		q = q.Where("event_type = ?", f.Type)
	}
	if f.EntityType != "" {
		q = q.Where("entity_type = ?", f.EntityType)
	}
	if f.EntityID != "" {
		q = q.Where("entity_id = ?", f.EntityID)
	}
	if !f.Since.IsZero() {
		q = q.Where("created_at >= ?", f.Since)
	}
	return q
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Record saves an event, stamping it with the current time if unset.
func (r *Repository) Record(event *entities.AuditEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	return r.db.Create(event).Error
}

// Find returns matching events newest first together with the total number
// of matches. A limit of zero or less returns every match.
func (r *Repository) Find(filter EventFilter, limit, offset int) ([]entities.AuditEvent, int64, error) {
	query := filter.apply(r.db.Model(&entities.AuditEvent{}))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("created_at DESC").Order("id DESC").Offset(max(offset, 0))
	if limit > 0 {
		query = query.Limit(limit)
	}

	var events []entities.AuditEvent
	err := query.Find(&events).Error
	return events, total, err
}

// Prune deletes events created before olderThan and reports how many went.
func (r *Repository) Prune(olderThan time.Time) (int64, error) {
	result := r.db.Where("created_at < ?", olderThan).Delete(&entities.AuditEvent{})
	return result.RowsAffected, result.Error
}
