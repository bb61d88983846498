package http

import (
	"context"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bookcatalog/internal/catalog"
	"github.com/mrlokans/bookcatalog/internal/entities"
)

// Controllers depend on these narrow interfaces rather than on concrete
// types, so tests can run against an in-memory catalog.

// CatalogReader provides detached copies of the catalog.
type CatalogReader interface {
	Snapshot() *catalog.Snapshot
	Book(id string) (*catalog.Book, error)
	Genre(id string) (*catalog.Genre, error)
	Note(id string) (*catalog.Note, error)
}

// Catalog is the full set of catalog operations exposed over HTTP.
type Catalog interface {
	CatalogReader

	CreateBook(ctx context.Context, in catalog.BookInput) (*catalog.Book, error)
	UpdateBook(ctx context.Context, book *catalog.Book, in catalog.BookInput) error
	DeleteBook(ctx context.Context, book *catalog.Book) error

	CreateGenre(ctx context.Context, name string, color []byte) (*catalog.Genre, error)
	DeleteGenre(ctx context.Context, genre *catalog.Genre) error

	AddNote(ctx context.Context, book *catalog.Book, title, message string) (*catalog.Note, error)
	DeleteNote(ctx context.Context, book *catalog.Book, note *catalog.Note) error

	SetCover(ctx context.Context, bookID string, data []byte) error
}

// TaskQueue enqueues background work and reports on it.
type TaskQueue interface {
	Enqueue(task backlite.Task) (string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// HistoryStore reads the audit trail.
type HistoryStore interface {
	GetEvents(limit, offset int) ([]entities.AuditEvent, int64, error)
	GetEventsByType(eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error)
	History(kind catalog.Kind, entityID string) ([]entities.AuditEvent, error)
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping() error
}
