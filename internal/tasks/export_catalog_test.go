package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookcatalog/internal/catalog"
	"github.com/mrlokans/bookcatalog/internal/exporters"
)

type recordedExport struct {
	description  string
	books, notes int
	err          error
}

type exportRecorder struct {
	events []recordedExport
}

func (r *exportRecorder) LogExport(description string, books, notes int, err error) {
	r.events = append(r.events, recordedExport{description, books, notes, err})
}

type failingExporter struct{}

func (failingExporter) Export([]*catalog.Book) (exporters.ExportResult, error) {
	return exporters.ExportResult{}, errors.New("read-only file system")
}

func (failingExporter) Dir() string { return "/ro" }

func TestExportCatalogTaskConfig(t *testing.T) {
	cfg := ExportCatalogTask{Trigger: "api"}.Config()

	assert.Equal(t, "export_catalog", cfg.Name)
	assert.Equal(t, 1, cfg.MaxAttempts)
	assert.NotNil(t, cfg.Retention)
}

func TestExportCatalogProcessor(t *testing.T) {
	ctx := context.Background()
	repo := catalog.NewRepository(catalog.NewMemoryStore())
	book, err := repo.CreateBook(ctx, catalog.BookInput{Title: "Dune", Author: "Frank Herbert"})
	require.NoError(t, err)
	_, err = repo.AddNote(ctx, book, "Spice", "must flow")
	require.NoError(t, err)

	t.Run("exports the snapshot and reports counts", func(t *testing.T) {
		dir := t.TempDir()
		recorder := &exportRecorder{}

		err := ExportCatalogProcessor(repo, exporters.NewMarkdownExporter(dir), recorder)(ctx, ExportCatalogTask{Trigger: "schedule"})
		require.NoError(t, err)

		_, err = os.Stat(filepath.Join(dir, "Dune.md"))
		assert.NoError(t, err)
		require.Len(t, recorder.events, 1)
		assert.Equal(t, 1, recorder.events[0].books)
		assert.Equal(t, 1, recorder.events[0].notes)
		assert.NoError(t, recorder.events[0].err)
	})

	t.Run("failure is reported and returned", func(t *testing.T) {
		recorder := &exportRecorder{}

		err := ExportCatalogProcessor(repo, failingExporter{}, recorder)(ctx, ExportCatalogTask{Trigger: "api"})
		assert.Error(t, err)
		require.Len(t, recorder.events, 1)
		assert.Error(t, recorder.events[0].err)
		assert.Contains(t, recorder.events[0].description, "/ro")
	})

	t.Run("reporter is optional", func(t *testing.T) {
		result, err := RunExport(repo, exporters.NewMarkdownExporter(t.TempDir()), nil)
		require.NoError(t, err)
		assert.Equal(t, 1, result.BooksProcessed)
	})
}
