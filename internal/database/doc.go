// Package database provides the gorm-backed persistence for the catalog.
//
// # Architecture
//
//	database/
//	├── database.go      # Connection setup (sqlite or postgres), migrations
//	├── store.go         # catalog.Store: transactional Save, squirrel queries
//	└── audit/           # Catalog history events
//
// # Using the Store
//
// The catalog repository stages changes on the Store and commits them with
// Save. Cover images are kept outside the rows in a BlobStore:
//
//	db, err := database.NewDatabase(cfg.Database)
//	covers, err := covers.NewStore(cfg.Covers.Dir)
//	repo, err := catalog.Open(ctx, database.NewStore(db.DB, covers))
//
// Save writes everything staged since the previous Save in one transaction.
// Blobs are written before the transaction and unreferenced ones are
// removed after it commits, so a failed Save leaves at most orphan files.
//
// # Adding a New Table
//
//  1. Add the gorm model to internal/entities
//  2. Register it in migrate
//  3. Map it in applyChanges and buildQuery
package database
