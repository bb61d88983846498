package demo

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	"github.com/mrlokans/bookcatalog/internal/catalog"
)

var (
	firstNames = []string{"John", "Emily", "Michael", "Sophia", "William", "Olivia", "James", "Ava", "Daniel", "Charlotte"}
	lastNames  = []string{"Smith", "Johnson", "Brown", "Davis", "Wilson", "Anderson", "Garcia", "Martinez", "Lee", "Harris"}

	adjectives = []string{"Red", "Happy", "Mysterious", "Brilliant", "Gentle", "Wild"}
	nouns      = []string{"Fox", "Sun", "Mountain", "Ocean", "Castle", "Dream"}
	verbs      = []string{"Dances", "Laughs", "Sings", "Whispers", "Explores", "Glows"}
)

const yearSpan = 30

// Seeder is the part of the catalog used to load sample data.
type Seeder interface {
	CreateBook(ctx context.Context, in catalog.BookInput) (*catalog.Book, error)
	CreateGenre(ctx context.Context, name string, color []byte) (*catalog.Genre, error)
	AddNote(ctx context.Context, book *catalog.Book, title, message string) (*catalog.Note, error)
}

func pick(r *rand.Rand, words []string) string {
	return words[r.IntN(len(words))]
}

// SampleBooks generates n books with titles like "Wild Fox Sings", random
// authors and a publication year within the thirty years before now.
func SampleBooks(r *rand.Rand, n int, now time.Time) []catalog.BookInput {
	books := make([]catalog.BookInput, 0, n)
	for range n {
		year := now.Year() - yearSpan + r.IntN(yearSpan)
		books = append(books, catalog.BookInput{
			Title:         fmt.Sprintf("%s %s %s", pick(r, adjectives), pick(r, nouns), pick(r, verbs)),
			Author:        fmt.Sprintf("%s %s", pick(r, firstNames), pick(r, lastNames)),
			PublishedYear: &year,
		})
	}
	return books
}

// NewRand returns a generator for seed, or a time based one for seed 0.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed>>1)))
}

// Fixture is the single book, genre and note used for previews.
type Fixture struct {
	Book  *catalog.Book
	Genre *catalog.Genre
	Note  *catalog.Note
}

// SeedFixture adds "Poczytaj mi mamo 1" in the "horror" genre with one note.
func SeedFixture(ctx context.Context, s Seeder) (*Fixture, error) {
	genre, err := s.CreateGenre(ctx, "horror", nil)
	if err != nil {
		return nil, fmt.Errorf("create fixture genre: %w", err)
	}

	year := 1971
	book, err := s.CreateBook(ctx, catalog.BookInput{
		Title:         "Poczytaj mi mamo 1",
		Author:        "Julian Tuwim",
		PublishedYear: &year,
		Genres:        catalog.GenreRefs(genre.ID),
	})
	if err != nil {
		return nil, fmt.Errorf("create fixture book: %w", err)
	}

	note, err := s.AddNote(ctx, book, "Fajny tekst", "Pies ci morde lizał")
	if err != nil {
		return nil, fmt.Errorf("create fixture note: %w", err)
	}

	return &Fixture{Book: book, Genre: genre, Note: note}, nil
}

// Seed loads the fixture followed by n random books.
func Seed(ctx context.Context, s Seeder, n int, seed int64) error {
	if _, err := SeedFixture(ctx, s); err != nil {
		return err
	}

	for _, in := range SampleBooks(NewRand(seed), n, time.Now()) {
		if _, err := s.CreateBook(ctx, in); err != nil {
			return fmt.Errorf("create sample book %q: %w", in.Title, err)
		}
	}

	log.Printf("Seeded sample catalog with %d books", n+1)
	return nil
}
