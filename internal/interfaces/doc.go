// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Persistence
//
//   - catalog.Store: Staged writes and row queries behind the repository (internal/catalog/store.go)
//   - database.BlobStore: Cover image files kept outside the rows (internal/database/store.go)
//
// ## Catalog Access
//
//   - http.CatalogReader / http.Catalog: What the controllers need from the repository (internal/http/stores.go)
//   - demo.Seeder: Creating sample data (internal/demo/sample.go)
//
// ## History
//
//   - catalog.Auditor: Receives every committed or rolled back change (internal/catalog/repository.go)
//   - http.HistoryStore: Reading the recorded changes (internal/http/stores.go)
//
// ## Background Work
//
//   - tasks.ImageLoader / tasks.CoverSetter: Cover fetching (internal/tasks/load_cover.go)
//   - tasks.BookExporter / tasks.SnapshotSource: Markdown export (internal/tasks/export_catalog.go)
//   - scheduler.Enqueuer: Periodic jobs (internal/scheduler/scheduler.go)
//
// # Adding a New Store
//
// To persist the catalog somewhere other than gorm:
//
//  1. Embed catalog.Staging and implement Save and Query:
//
//     type BoltStore struct {
//         catalog.Staging
//         db *bolt.DB
//     }
//
//     func (s *BoltStore) Save(ctx context.Context) error {
//         cs := s.Take()
//         // write cs.Books, cs.Genres and cs.Notes in one transaction
//     }
//
//     func (s *BoltStore) Query(ctx context.Context, q catalog.Query) (catalog.Rows, error)
//
//  2. Pass it to catalog.Open in entrypoint/catalog.go
//
// # Adding a New Export Format
//
//  1. Implement tasks.BookExporter in internal/exporters/
//
//     func (e *JSONExporter) Export(books []*catalog.Book) (exporters.ExportResult, error)
//     func (e *JSONExporter) Dir() string
//
//  2. Register a queue with tasks.NewExportCatalogQueue in entrypoint.go
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the full list.
package interfaces
