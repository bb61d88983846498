package http

import (
	"github.com/mrlokans/bookcatalog/internal/demo"
	"github.com/mrlokans/bookcatalog/internal/tasks"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Catalog  Catalog
	Database Pinger

	// Background work (optional). Without a queue, exports run inline and
	// cover fetches are unavailable.
	TaskQueue   TaskQueue
	TaskWorkers int

	// Markdown export
	Exporter       tasks.BookExporter
	ExportReporter tasks.ExportReporter

	// Audit trail (optional)
	History HistoryStore

	// Largest cover accepted on upload
	MaxCoverBytes int64

	// Demo mode (optional)
	DemoMiddleware *demo.Middleware

	// Application info
	Version string
}
