package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/mrlokans/bookcatalog/internal/config"
	"github.com/mrlokans/bookcatalog/internal/demo"
	"github.com/mrlokans/bookcatalog/internal/entrypoint"
)

// SeedCommand fills a catalog with sample books.
type SeedCommand struct {
	DatabasePath string
	Books        int
	Seed         int64
	Force        bool

	cfg *config.Config
}

func NewSeedCommand(cfg *config.Config) *SeedCommand {
	return &SeedCommand{cfg: cfg}
}

func (cmd *SeedCommand) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("seed", pflag.ContinueOnError)

	fs.StringVar(&cmd.DatabasePath, "db", cmd.cfg.Database.Path, "Path to the catalog database file")
	fs.IntVarP(&cmd.Books, "books", "n", cmd.cfg.Demo.SeedBooks, "Number of random books to add")
	fs.Int64Var(&cmd.Seed, "seed", cmd.cfg.Demo.Seed, "Random seed, 0 picks one from the clock")
	fs.BoolVar(&cmd.Force, "force", false, "Seed even when the catalog already has books")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s seed [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Add a fixture book, genre and note followed by random sample books.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.Books < 0 {
		return fmt.Errorf("--books must not be negative")
	}
	return nil
}

func (cmd *SeedCommand) Run() error {
	cfg := *cmd.cfg
	cfg.Database.Path = cmd.DatabasePath

	ctx := context.Background()
	app, err := entrypoint.OpenCatalog(ctx, &cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	if books := app.Repo.Snapshot().Stats().Books; books > 0 && !cmd.Force {
		fmt.Printf("Catalog already has %d books, use --force to add samples anyway\n", books)
		return nil
	}

	if err := demo.Seed(ctx, app.Repo, cmd.Books, cmd.Seed); err != nil {
		return err
	}

	stats := app.Repo.Snapshot().Stats()
	fmt.Printf("Catalog now has %d books, %d genres and %d notes\n", stats.Books, stats.Genres, stats.Notes)
	return nil
}
