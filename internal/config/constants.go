package config

const (
	// DefaultDatabasePath is the default path for the catalog database
	DefaultDatabasePath = "./book-catalog.db"

	// DefaultCoversDir holds one blob file per book cover
	DefaultCoversDir = "./covers"
)
