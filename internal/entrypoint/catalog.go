package entrypoint

import (
	"context"
	"fmt"
	"log"

	"github.com/mrlokans/bookcatalog/internal/audit"
	"github.com/mrlokans/bookcatalog/internal/catalog"
	"github.com/mrlokans/bookcatalog/internal/config"
	"github.com/mrlokans/bookcatalog/internal/covers"
	"github.com/mrlokans/bookcatalog/internal/database"
	auditRepo "github.com/mrlokans/bookcatalog/internal/database/audit"
	"github.com/mrlokans/bookcatalog/internal/tasks"
)

// App is the database-backed catalog with its history. Audit is nil when
// history recording is disabled.
type App struct {
	DB     *database.Database
	Covers *covers.Store
	Repo   *catalog.Repository
	Audit  *audit.Service
}

// OpenCatalog opens the database and cover store and loads the catalog.
func OpenCatalog(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := database.NewDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	coverStore, err := covers.NewStore(cfg.Covers.Dir)
	if err != nil {
		db.Close()
		return nil, err
	}
	log.Printf("Cover store initialized at %s", coverStore.Dir())

	app := &App{DB: db, Covers: coverStore}

	var opts []catalog.Option
	if cfg.Audit.Enabled {
		app.Audit = audit.NewService(auditRepo.NewRepository(db.DB))
		opts = append(opts, catalog.WithAuditor(app.Audit))
	}

	app.Repo, err = catalog.Open(ctx, database.NewStore(db.DB, coverStore), opts...)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	stats := app.Repo.Snapshot().Stats()
	log.Printf("Catalog loaded: %d books, %d genres, %d notes", stats.Books, stats.Genres, stats.Notes)

	return app, nil
}

// ExportReporter returns the history service as an export reporter, or nil.
func (a *App) ExportReporter() tasks.ExportReporter {
	if a.Audit == nil {
		return nil
	}
	return a.Audit
}

// Close flushes pending history events and closes the database.
func (a *App) Close() error {
	if a.Audit != nil {
		a.Audit.Wait()
	}
	return a.DB.Close()
}
