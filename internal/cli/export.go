package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/mrlokans/bookcatalog/internal/catalog"
	"github.com/mrlokans/bookcatalog/internal/config"
	"github.com/mrlokans/bookcatalog/internal/entrypoint"
	"github.com/mrlokans/bookcatalog/internal/exporters"
	"github.com/mrlokans/bookcatalog/internal/tasks"
)

// ExportCommand writes every book in the catalog to markdown files.
type ExportCommand struct {
	DatabasePath string
	OutputDir    string
	Verbose      bool

	cfg *config.Config
}

func NewExportCommand(cfg *config.Config) *ExportCommand {
	return &ExportCommand{cfg: cfg}
}

func (cmd *ExportCommand) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("export", pflag.ContinueOnError)

	fs.StringVar(&cmd.DatabasePath, "db", cmd.cfg.Database.Path, "Path to the catalog database file")
	fs.StringVarP(&cmd.OutputDir, "output", "o", cmd.cfg.Export.Dir, "Output directory for markdown files")
	fs.BoolVarP(&cmd.Verbose, "verbose", "v", false, "List every exported book")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s export [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Write one markdown file per book plus an index.md to the output directory.\n")
		fmt.Fprintf(os.Stderr, "Files are replaced atomically, so the directory can be synced while exporting.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s export -o ~/Obsidian/Books\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.OutputDir == "" {
		return fmt.Errorf("required flag --output not provided")
	}
	return nil
}

func (cmd *ExportCommand) Run() error {
	fmt.Println("Catalog Export")
	fmt.Println("==============")

	absOutputDir, err := filepath.Abs(cmd.OutputDir)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for output: %w", err)
	}

	cfg := *cmd.cfg
	cfg.Database.Path = cmd.DatabasePath

	app, err := entrypoint.OpenCatalog(context.Background(), &cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	snapshot := app.Repo.Snapshot()
	if cmd.Verbose {
		for i, book := range snapshot.ListBooks("", catalog.SortByTitle) {
			fmt.Printf("%d. \"%s\" by %s (%d notes)\n", i+1, book.Title, book.Author, len(book.Notes))
		}
	}

	fmt.Printf("\nExporting to markdown: %s\n", absOutputDir)

	result, err := tasks.RunExport(app.Repo, exporters.NewMarkdownExporter(absOutputDir), app.ExportReporter())
	if err != nil {
		return fmt.Errorf("failed to export to markdown: %w", err)
	}

	fmt.Printf("Exported %d books with %d notes\n", result.BooksProcessed, result.NotesProcessed)
	if result.BooksFailed > 0 {
		fmt.Printf("%d books failed to export\n", result.BooksFailed)
	}
	return nil
}
