package demo

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookcatalog/internal/catalog"
)

func TestSampleBooks(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	books := SampleBooks(NewRand(42), 20, now)

	require.Len(t, books, 20)
	for _, b := range books {
		words := strings.Fields(b.Title)
		require.Len(t, words, 3, b.Title)
		assert.Contains(t, adjectives, words[0])
		assert.Contains(t, nouns, words[1])
		assert.Contains(t, verbs, words[2])

		name := strings.Fields(b.Author)
		require.Len(t, name, 2, b.Author)
		assert.Contains(t, firstNames, name[0])
		assert.Contains(t, lastNames, name[1])

		require.NotNil(t, b.PublishedYear)
		assert.GreaterOrEqual(t, *b.PublishedYear, 1994)
		assert.Less(t, *b.PublishedYear, 2024)
	}
}

func TestSampleBooks_SeedIsDeterministic(t *testing.T) {
	now := time.Now()
	a := SampleBooks(NewRand(7), 5, now)
	b := SampleBooks(NewRand(7), 5, now)
	assert.Equal(t, a, b)
}

func TestSeedFixture(t *testing.T) {
	ctx := context.Background()
	repo := catalog.NewRepository(catalog.NewMemoryStore())

	fixture, err := SeedFixture(ctx, repo)
	require.NoError(t, err)

	snapshot := repo.Snapshot()
	book, err := snapshot.Book(fixture.Book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Poczytaj mi mamo 1", book.Title)
	assert.Equal(t, "Julian Tuwim", book.Author)
	assert.Equal(t, 1971, book.PublishedYear)

	require.Len(t, book.Genres, 1)
	assert.Equal(t, "horror", book.Genres[0].Name)
	require.Len(t, book.Notes, 1)
	assert.Equal(t, "Fajny tekst", book.Notes[0].Title)
	assert.Equal(t, "Pies ci morde lizał", book.Notes[0].Message)
}

func TestSeed(t *testing.T) {
	repo := catalog.NewRepository(catalog.NewMemoryStore())

	require.NoError(t, Seed(context.Background(), repo, 20, 1))

	stats := repo.Snapshot().Stats()
	assert.Equal(t, 21, stats.Books)
	assert.Equal(t, 1, stats.Genres)
	assert.Equal(t, 1, stats.Notes)
}
