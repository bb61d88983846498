// Command generate_demo creates a demo catalog with public domain books.
// Usage: go run ./cmd/generate_demo [--db path/to/demo.db] [--covers path/to/covers]
package main

import (
	"context"
	"log"
	"os"

	"github.com/spf13/pflag"

	"github.com/mrlokans/bookcatalog/internal/catalog"
	"github.com/mrlokans/bookcatalog/internal/config"
	"github.com/mrlokans/bookcatalog/internal/entrypoint"
	"github.com/mrlokans/bookcatalog/internal/utils"
)

const (
	defaultDemoDatabasePath = "./demo/demo.db"
	defaultDemoCoversDir    = "./demo/covers"
)

type demoNote struct {
	Title   string
	Message string
}

// demoBook holds a book with the names of its genres.
type demoBook struct {
	Title  string
	Author string
	Year   int
	Genres []string
	Notes  []demoNote
}

var demoGenres = []struct {
	Name  string
	Color string
}{
	{"philosophy", "#4A6FA5"},
	{"fiction", "#C0392B"},
	{"classic", "#8E7C3E"},
	{"science", "#2E8B57"},
}

func main() {
	dbPath := pflag.String("db", defaultDemoDatabasePath, "path to the demo database file")
	coversDir := pflag.String("covers", defaultDemoCoversDir, "directory for cover images")
	pflag.Parse()

	log.Printf("Generating demo catalog at %s...", *dbPath)

	// Start fresh
	if err := os.Remove(*dbPath); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Failed to remove existing demo database: %v", err)
	}

	cfg := &config.Config{
		Database: config.Database{Driver: config.DriverSQLite, Path: *dbPath, LogLevel: "silent"},
		Covers:   config.Covers{Dir: *coversDir},
	}

	ctx := context.Background()
	app, err := entrypoint.OpenCatalog(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open demo catalog: %v", err)
	}
	defer app.Close()

	genres := createGenres(ctx, app.Repo)

	for _, b := range publicDomainBooks() {
		year := b.Year
		refs := make([]string, 0, len(b.Genres))
		for _, name := range b.Genres {
			if g, ok := genres[name]; ok {
				refs = append(refs, g.ID)
			}
		}

		book, err := app.Repo.CreateBook(ctx, catalog.BookInput{
			Title:         b.Title,
			Author:        b.Author,
			PublishedYear: &year,
			Genres:        catalog.GenreRefs(refs...),
		})
		if err != nil {
			log.Printf("Failed to save book %s: %v", b.Title, err)
			continue
		}

		for _, n := range b.Notes {
			if _, err := app.Repo.AddNote(ctx, book, n.Title, n.Message); err != nil {
				log.Printf("Failed to add note to %s: %v", b.Title, err)
			}
		}
		log.Printf("Saved: %s by %s (%d notes)", b.Title, b.Author, len(b.Notes))
	}

	log.Println("Demo catalog generated successfully!")
}

func createGenres(ctx context.Context, repo *catalog.Repository) map[string]*catalog.Genre {
	genres := make(map[string]*catalog.Genre)
	for _, g := range demoGenres {
		color, err := utils.ParseHexColor(g.Color)
		if err != nil {
			log.Printf("Invalid color for genre %s: %v", g.Name, err)
		}
		genre, err := repo.CreateGenre(ctx, g.Name, color)
		if err != nil {
			log.Printf("Failed to create genre %s: %v", g.Name, err)
			continue
		}
		genres[g.Name] = genre
	}
	return genres
}

func publicDomainBooks() []demoBook {
	return []demoBook{
		{
			Title:  "Meditations",
			Author: "Marcus Aurelius",
			Year:   180,
			Genres: []string{"philosophy", "classic"},
			Notes: []demoNote{
				{"On the mind", "You have power over your mind - not outside events. Realize this, and you will find strength."},
				{"", "The happiness of your life depends upon the quality of your thoughts."},
				{"Be one", "Waste no more time arguing about what a good man should be. Be one."},
				{"", "The soul becomes dyed with the color of its thoughts."},
			},
		},
		{
			Title:  "Letters from a Stoic",
			Author: "Seneca",
			Year:   65,
			Genres: []string{"philosophy", "classic"},
			Notes: []demoNote{
				{"Imagination", "We suffer more often in imagination than in reality."},
				{"", "It is not that we have a short time to live, but that we waste a lot of it."},
				{"Company", "Associate with people who are likely to improve you.\nWelcome those whom you are capable of improving."},
			},
		},
		{
			Title:  "On the Origin of Species",
			Author: "Charles Darwin",
			Year:   1859,
			Genres: []string{"science", "classic"},
			Notes: []demoNote{
				{"Closing passage", "There is grandeur in this view of life, with its several powers, having been originally breathed into a few forms or into one."},
				{"", "It is not the strongest of the species that survives, nor the most intelligent, but the one most responsive to change."},
			},
		},
		{
			Title:  "Pride and Prejudice",
			Author: "Jane Austen",
			Year:   1813,
			Genres: []string{"fiction", "classic"},
			Notes: []demoNote{
				{"Opening line", "It is a truth universally acknowledged, that a single man in possession of a good fortune, must be in want of a wife."},
				{"", "I declare after all there is no enjoyment like reading!"},
			},
		},
		{
			Title:  "Frankenstein",
			Author: "Mary Shelley",
			Year:   1818,
			Genres: []string{"fiction"},
			Notes: []demoNote{
				{"", "Beware; for I am fearless, and therefore powerful."},
			},
		},
		{
			Title:  "The Art of War",
			Author: "Sun Tzu",
			Year:   -500,
			Genres: []string{"philosophy"},
		},
	}
}
