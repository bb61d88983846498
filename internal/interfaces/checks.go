package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/bookcatalog/internal/audit"
	"github.com/mrlokans/bookcatalog/internal/catalog"
	"github.com/mrlokans/bookcatalog/internal/covers"
	"github.com/mrlokans/bookcatalog/internal/database"
	"github.com/mrlokans/bookcatalog/internal/demo"
	"github.com/mrlokans/bookcatalog/internal/exporters"
	"github.com/mrlokans/bookcatalog/internal/http"
	"github.com/mrlokans/bookcatalog/internal/scheduler"
	"github.com/mrlokans/bookcatalog/internal/tasks"
)

// =============================================================================
// Persistence
// =============================================================================

// Store implementations
var _ catalog.Store = (*database.Store)(nil)
var _ catalog.Store = (*catalog.MemoryStore)(nil)

// BlobStore implementations
var _ database.BlobStore = (*covers.Store)(nil)

// Pinger implementations
var _ http.Pinger = (*database.Database)(nil)

// =============================================================================
// Catalog
// =============================================================================

var _ http.Catalog = (*catalog.Repository)(nil)
var _ demo.Seeder = (*catalog.Repository)(nil)
var _ tasks.CoverSetter = (*catalog.Repository)(nil)
var _ tasks.SnapshotSource = (*catalog.Repository)(nil)

// =============================================================================
// History
// =============================================================================

var _ catalog.Auditor = (*audit.Service)(nil)
var _ http.HistoryStore = (*audit.Service)(nil)
var _ tasks.ExportReporter = (*audit.Service)(nil)
var _ tasks.HistoryPruner = (*audit.Service)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ http.TaskQueue = (*tasks.Client)(nil)
var _ scheduler.Enqueuer = (*tasks.Client)(nil)
var _ tasks.ImageLoader = (*covers.Loader)(nil)
var _ tasks.BookExporter = (*exporters.MarkdownExporter)(nil)
