package exporters

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"

	"github.com/mrlokans/bookcatalog/internal/catalog"
	"github.com/mrlokans/bookcatalog/internal/utils"
)

type ExportResult struct {
	BooksProcessed int `json:"books_processed"`
	NotesProcessed int `json:"notes_processed"`
	BooksFailed    int `json:"books_failed"`
}

const indexName = "index"

// MarkdownExporter writes one markdown file per book plus an index that
// links them, suitable for dropping into an Obsidian vault.
type MarkdownExporter struct {
	dir string
}

func NewMarkdownExporter(dir string) *MarkdownExporter {
	return &MarkdownExporter{dir: dir}
}

func (e *MarkdownExporter) Dir() string {
	return e.dir
}

type frontMatter struct {
	ContentType   string   `yaml:"content_type"`
	Title         string   `yaml:"title"`
	Author        string   `yaml:"author"`
	PublishedYear int      `yaml:"published_year,omitempty"`
	Genres        []string `yaml:"genres,omitempty"`
	Tags          []string `yaml:"tags,flow"`
}

// GenerateMarkdown renders a book with its genres and notes.
func GenerateMarkdown(book *catalog.Book) (string, error) {
	var builder strings.Builder

	fm := frontMatter{
		ContentType:   "book_notes",
		Title:         book.Title,
		Author:        book.Author,
		PublishedYear: book.PublishedYear,
		Tags:          []string{"books"},
	}
	for _, g := range book.Genres {
		fm.Genres = append(fm.Genres, g.Name)
	}

	header, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("marshal front matter: %w", err)
	}

	builder.WriteString("---\n")
	builder.Write(header)
	builder.WriteString("---\n\n")
	fmt.Fprintf(&builder, "# %s\n\n", book.Title)
	if book.Author != "" {
		fmt.Fprintf(&builder, "*%s*\n\n", book.Author)
	}

	builder.WriteString("## Notes\n\n")
	if len(book.Notes) == 0 {
		builder.WriteString("No notes yet.\n")
	}
	for i, note := range book.Notes {
		title := note.Title
		if strings.TrimSpace(title) == "" {
			title = fmt.Sprintf("Note %d", i+1)
		}
		fmt.Fprintf(&builder, "### %s\n\n", title)
		if note.Message != "" {
			fmt.Fprintf(&builder, "> %s\n\n", strings.ReplaceAll(note.Message, "\n", "\n> "))
		}
	}

	return builder.String(), nil
}

// Export writes every book. A book that cannot be written is counted as
// failed and the export carries on; only an unusable directory or index
// aborts the run.
func (e *MarkdownExporter) Export(books []*catalog.Book) (ExportResult, error) {
	result := ExportResult{}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return result, fmt.Errorf("failed to create export directory: %w", err)
	}

	taken := map[string]bool{indexName: true}
	var index strings.Builder
	index.WriteString("# Catalog\n\n")

	for _, book := range books {
		filename := utils.BookFilename(book.Title, book.Author, book.ID, taken)
		path := filepath.Join(e.dir, filename)

		content, err := GenerateMarkdown(book)
		if err == nil {
			err = atomic.WriteFile(path, strings.NewReader(content))
		}
		if err != nil {
			log.Printf("[EXPORT] Failed to write '%s' to %s: %v", book.Title, path, err)
			result.BooksFailed++
			continue
		}

		link := strings.TrimSuffix(filename, ".md")
		taken[link] = true
		fmt.Fprintf(&index, "- [[%s]]", link)
		if book.Author != "" {
			fmt.Fprintf(&index, " by %s", book.Author)
		}
		if book.PublishedYear != 0 {
			fmt.Fprintf(&index, " (%d)", book.PublishedYear)
		}
		index.WriteString("\n")

		result.BooksProcessed++
		result.NotesProcessed += len(book.Notes)
	}

	indexPath := filepath.Join(e.dir, indexName+".md")
	if err := atomic.WriteFile(indexPath, strings.NewReader(index.String())); err != nil {
		return result, fmt.Errorf("failed to write index: %w", err)
	}

	return result, nil
}
