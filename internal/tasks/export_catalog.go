package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bookcatalog/internal/catalog"
	"github.com/mrlokans/bookcatalog/internal/exporters"
)

// BookExporter writes books somewhere outside the catalog.
type BookExporter interface {
	Export(books []*catalog.Book) (exporters.ExportResult, error)
	Dir() string
}

// SnapshotSource provides a consistent copy of the catalog.
type SnapshotSource interface {
	Snapshot() *catalog.Snapshot
}

// ExportReporter records the outcome of an export run.
type ExportReporter interface {
	LogExport(description string, booksCount, notesCount int, err error)
}

// ExportCatalogTask renders every book to markdown.
type ExportCatalogTask struct {
	Trigger string `json:"trigger"` // "schedule", "api" or "cli"
}

// Config returns the queue configuration for export tasks.
func (t ExportCatalogTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "export_catalog",
		MaxAttempts: 1,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// RunExport exports the current snapshot and reports the result. It is
// shared by the queue processor and the export command.
func RunExport(source SnapshotSource, exporter BookExporter, reporter ExportReporter) (exporters.ExportResult, error) {
	if source == nil || exporter == nil {
		return exporters.ExportResult{}, fmt.Errorf("exporter not configured")
	}

	start := time.Now()
	books := source.Snapshot().Books()
	result, err := exporter.Export(books)

	var description string
	if err != nil {
		description = fmt.Sprintf("Export to %s failed", exporter.Dir())
	} else {
		description = fmt.Sprintf("Exported %d books, %d notes to %s in %v",
			result.BooksProcessed, result.NotesProcessed, exporter.Dir(), time.Since(start).Round(time.Millisecond))
	}
	if reporter != nil {
		reporter.LogExport(description, result.BooksProcessed, result.NotesProcessed, err)
	}
	if err != nil {
		return result, fmt.Errorf("export catalog: %w", err)
	}

	log.Printf("[EXPORT] %s", description)
	return result, nil
}

// ExportCatalogProcessor creates a processor function for ExportCatalogTask.
func ExportCatalogProcessor(source SnapshotSource, exporter BookExporter, reporter ExportReporter) backlite.QueueProcessor[ExportCatalogTask] {
	return func(ctx context.Context, task ExportCatalogTask) error {
		log.Printf("[TASK] Starting catalog export (trigger: %s)", task.Trigger)
		_, err := RunExport(source, exporter, reporter)
		return err
	}
}

// NewExportCatalogQueue creates a backlite queue for export tasks.
func NewExportCatalogQueue(source SnapshotSource, exporter BookExporter, reporter ExportReporter) backlite.Queue {
	return backlite.NewQueue(ExportCatalogProcessor(source, exporter, reporter))
}
