package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type auditCall struct {
	action   string
	kind     Kind
	entityID string
	failed   bool
}

type recordingAuditor struct {
	calls []auditCall
}

func (a *recordingAuditor) LogMutation(action string, kind Kind, entityID, _ string, err error) {
	a.calls = append(a.calls, auditCall{action: action, kind: kind, entityID: entityID, failed: err != nil})
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func setupTestRepository(t *testing.T) (*Repository, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	return NewRepository(store, WithIDGenerator(sequentialIDs())), store
}

func year(y int) *int {
	return &y
}

func mustCreateBook(t *testing.T, repo *Repository, title, author string, published int, genres ...*Genre) *Book {
	t.Helper()
	b, err := repo.CreateBook(context.Background(), BookInput{
		Title:         title,
		Author:        author,
		PublishedYear: year(published),
		Genres:        genres,
	})
	require.NoError(t, err)
	return b
}

func mustCreateGenre(t *testing.T, repo *Repository, name string) *Genre {
	t.Helper()
	g, err := repo.CreateGenre(context.Background(), name, []byte{0xFF, 0x10, 0x20, 0x30})
	require.NoError(t, err)
	return g
}

func titles(books []*Book) []string {
	out := make([]string, 0, len(books))
	for _, b := range books {
		out = append(out, b.Title)
	}
	return out
}

func genreNames(genres []*Genre) []string {
	out := make([]string, 0, len(genres))
	for _, g := range genres {
		out = append(out, g.Name)
	}
	return out
}

func TestRepository_CreateBook(t *testing.T) {
	ctx := context.Background()

	t.Run("links genres both ways", func(t *testing.T) {
		repo, store := setupTestRepository(t)
		fantasy := mustCreateGenre(t, repo, "Fantasy")

		book := mustCreateBook(t, repo, "Dune", "Frank Herbert", 1965, fantasy)

		snap := repo.Snapshot()
		got, err := snap.Book(book.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"Fantasy"}, genreNames(got.Genres))

		g, err := snap.Genre(fantasy.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"Dune"}, titles(g.Books))
		assert.Equal(t, 2, store.Saves())
	})

	t.Run("collapses duplicate genres", func(t *testing.T) {
		repo, _ := setupTestRepository(t)
		g := mustCreateGenre(t, repo, "Horror")

		book := mustCreateBook(t, repo, "It", "Stephen King", 1986, g, GenreRefs(g.ID)[0], g)

		snap := repo.Snapshot()
		got, _ := snap.Book(book.ID)
		assert.Len(t, got.Genres, 1)
		assert.Len(t, snap.ListBooksForGenre(g), 1)
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		repo, store := setupTestRepository(t)

		cases := []struct {
			name  string
			input BookInput
			field string
		}{
			{"empty title", BookInput{Title: "", Author: "A", PublishedYear: year(2000)}, "title"},
			{"whitespace title", BookInput{Title: "   ", Author: "A", PublishedYear: year(2000)}, "title"},
			{"empty author", BookInput{Title: "T", Author: "", PublishedYear: year(2000)}, "author"},
			{"missing year", BookInput{Title: "T", Author: "A"}, "published_year"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := repo.CreateBook(ctx, tc.input)
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tc.field, verr.Field)
			})
		}

		assert.Empty(t, repo.Snapshot().Books())
		assert.Equal(t, 0, store.Saves())
	})

	t.Run("unknown genre", func(t *testing.T) {
		repo, _ := setupTestRepository(t)

		_, err := repo.CreateBook(ctx, BookInput{
			Title: "T", Author: "A", PublishedYear: year(2000), Genres: GenreRefs("missing"),
		})
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Empty(t, repo.Snapshot().Books())
	})

	t.Run("trims title and author", func(t *testing.T) {
		repo, _ := setupTestRepository(t)
		book := mustCreateBook(t, repo, "  Solaris ", " Stanisław Lem", 1961)
		assert.Equal(t, "Solaris", book.Title)
		assert.Equal(t, "Stanisław Lem", book.Author)
	})
}

func TestRepository_UpdateBook(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces genre set and reconciles inverse", func(t *testing.T) {
		repo, _ := setupTestRepository(t)
		a := mustCreateGenre(t, repo, "A")
		b := mustCreateGenre(t, repo, "B")
		c := mustCreateGenre(t, repo, "C")
		book := mustCreateBook(t, repo, "Book", "Author", 2001, a, b)

		err := repo.UpdateBook(ctx, book, BookInput{
			Title: "Book", Author: "Author", PublishedYear: year(2001), Genres: []*Genre{b, c},
		})
		require.NoError(t, err)

		snap := repo.Snapshot()
		got, _ := snap.Book(book.ID)
		assert.Equal(t, []string{"B", "C"}, genreNames(got.Genres))
		assert.Empty(t, snap.ListBooksForGenre(a))
		assert.Equal(t, []string{"Book"}, titles(snap.ListBooksForGenre(b)))
		assert.Equal(t, []string{"Book"}, titles(snap.ListBooksForGenre(c)))
	})

	t.Run("accepts snapshot copies", func(t *testing.T) {
		repo, _ := setupTestRepository(t)
		book := mustCreateBook(t, repo, "Old", "Author", 2001)

		copyOfBook, err := repo.Book(book.ID)
		require.NoError(t, err)

		err = repo.UpdateBook(ctx, copyOfBook, BookInput{Title: "New", Author: "Author", PublishedYear: year(2002)})
		require.NoError(t, err)

		got, _ := repo.Book(book.ID)
		assert.Equal(t, "New", got.Title)
		assert.Equal(t, 2002, got.PublishedYear)
		assert.Equal(t, "Old", copyOfBook.Title)
	})

	t.Run("keeps cover when asked", func(t *testing.T) {
		repo, _ := setupTestRepository(t)
		book, err := repo.CreateBook(ctx, BookInput{
			Title: "T", Author: "A", PublishedYear: year(1999), Cover: []byte{1, 2, 3},
		})
		require.NoError(t, err)

		require.NoError(t, repo.UpdateBook(ctx, book, BookInput{
			Title: "T", Author: "A", PublishedYear: year(1999), KeepCover: true,
		}))
		got, _ := repo.Book(book.ID)
		assert.Equal(t, []byte{1, 2, 3}, got.Cover)

		require.NoError(t, repo.UpdateBook(ctx, book, BookInput{
			Title: "T", Author: "A", PublishedYear: year(1999),
		}))
		got, _ = repo.Book(book.ID)
		assert.Empty(t, got.Cover)
	})

	t.Run("validation leaves book untouched", func(t *testing.T) {
		repo, _ := setupTestRepository(t)
		book := mustCreateBook(t, repo, "T", "A", 1999)

		err := repo.UpdateBook(ctx, book, BookInput{Title: "", Author: "A", PublishedYear: year(1999)})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)

		got, _ := repo.Book(book.ID)
		assert.Equal(t, "T", got.Title)
	})

	t.Run("unknown book", func(t *testing.T) {
		repo, _ := setupTestRepository(t)
		err := repo.UpdateBook(ctx, &Book{ID: "nope"}, BookInput{Title: "T", Author: "A", PublishedYear: year(1)})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestRepository_DeleteBook(t *testing.T) {
	ctx := context.Background()
	repo, store := setupTestRepository(t)
	g := mustCreateGenre(t, repo, "Sci-Fi")
	book := mustCreateBook(t, repo, "Solaris", "Stanisław Lem", 1961, g)
	other := mustCreateBook(t, repo, "Eden", "Stanisław Lem", 1959, g)
	n1, err := repo.AddNote(ctx, book, "first", "one")
	require.NoError(t, err)
	_, err = repo.AddNote(ctx, book, "second", "two")
	require.NoError(t, err)

	require.NoError(t, repo.DeleteBook(ctx, book))

	snap := repo.Snapshot()
	_, err = snap.Book(book.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = snap.Note(n1.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, snap.Stats().Notes)

	survivor, err := snap.Genre(g.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{other.Title}, titles(survivor.Books))

	rows, err := store.Query(ctx, Query{Kind: KindNote})
	require.NoError(t, err)
	assert.Empty(t, rows.Notes)
	rows, err = store.Query(ctx, Query{Kind: KindMembership})
	require.NoError(t, err)
	assert.Equal(t, []MembershipRow{{BookID: other.ID, GenreID: g.ID}}, rows.Memberships)

	assert.ErrorIs(t, repo.DeleteBook(ctx, book), ErrNotFound)
}

func TestRepository_DeleteGenre(t *testing.T) {
	ctx := context.Background()
	repo, store := setupTestRepository(t)
	keep := mustCreateGenre(t, repo, "Keep")
	drop := mustCreateGenre(t, repo, "Drop")
	b1 := mustCreateBook(t, repo, "One", "A", 2000, keep, drop)
	b2 := mustCreateBook(t, repo, "Two", "B", 2001, drop)
	note, err := repo.AddNote(ctx, b2, "n", "m")
	require.NoError(t, err)

	require.NoError(t, repo.DeleteGenre(ctx, drop))

	snap := repo.Snapshot()
	got1, _ := snap.Book(b1.ID)
	got2, _ := snap.Book(b2.ID)
	assert.Equal(t, []string{"Keep"}, genreNames(got1.Genres))
	assert.Empty(t, got2.Genres)
	_, err = snap.Note(note.ID)
	assert.NoError(t, err)
	assert.Equal(t, []string{"Keep"}, genreNames(snap.ListGenres(GenreOrderForward)))

	rows, err := store.Query(ctx, Query{Kind: KindMembership})
	require.NoError(t, err)
	assert.Equal(t, []MembershipRow{{BookID: b1.ID, GenreID: keep.ID}}, rows.Memberships)
}

func TestRepository_CreateGenre(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupTestRepository(t)

	_, err := repo.CreateGenre(ctx, "  ", nil)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)

	first := mustCreateGenre(t, repo, "Horror")
	second := mustCreateGenre(t, repo, "Horror")
	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, repo.Snapshot().Genres(), 2)

	color := []byte{0x01, 0x02, 0x03, 0x04}
	g, err := repo.CreateGenre(ctx, "Opaque", color)
	require.NoError(t, err)
	color[0] = 0xEE
	got, _ := repo.Genre(g.ID)
	assert.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, got.Color)
}

func TestRepository_Notes(t *testing.T) {
	ctx := context.Background()

	t.Run("add keeps insertion order", func(t *testing.T) {
		repo, _ := setupTestRepository(t)
		book := mustCreateBook(t, repo, "T", "A", 2000)
		for _, title := range []string{"c", "a", "b"} {
			_, err := repo.AddNote(ctx, book, title, "")
			require.NoError(t, err)
		}

		notes := repo.Snapshot().ListNotes(book)
		got := make([]string, 0, len(notes))
		for _, n := range notes {
			got = append(got, n.Title)
		}
		if diff := cmp.Diff([]string{"c", "a", "b"}, got); diff != "" {
			t.Errorf("notes order mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("add requires an existing book", func(t *testing.T) {
		repo, _ := setupTestRepository(t)
		var verr *ValidationError

		_, err := repo.AddNote(ctx, nil, "t", "m")
		assert.ErrorAs(t, err, &verr)

		_, err = repo.AddNote(ctx, &Book{ID: "ghost"}, "t", "m")
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("delete checks ownership", func(t *testing.T) {
		repo, _ := setupTestRepository(t)
		b1 := mustCreateBook(t, repo, "One", "A", 2000)
		b2 := mustCreateBook(t, repo, "Two", "A", 2000)
		note, err := repo.AddNote(ctx, b1, "t", "m")
		require.NoError(t, err)

		err = repo.DeleteNote(ctx, b2, note)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)

		require.NoError(t, repo.DeleteNote(ctx, b1, note))
		assert.Empty(t, repo.Snapshot().ListNotes(b1))
		_, err = repo.Note(note.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestRepository_SetCover(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupTestRepository(t)
	book := mustCreateBook(t, repo, "T", "A", 2000)

	require.NoError(t, repo.SetCover(ctx, book.ID, []byte("png")))
	got, _ := repo.Book(book.ID)
	assert.Equal(t, []byte("png"), got.Cover)
	assert.True(t, got.HasCover())

	require.NoError(t, repo.DeleteBook(ctx, book))
	assert.ErrorIs(t, repo.SetCover(ctx, book.ID, []byte("late")), ErrNotFound)
}

func TestRepository_RollbackOnFailedSave(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk full")

	t.Run("create book", func(t *testing.T) {
		auditor := &recordingAuditor{}
		store := NewMemoryStore()
		repo := NewRepository(store, WithIDGenerator(sequentialIDs()), WithAuditor(auditor))
		g := mustCreateGenre(t, repo, "G")

		store.FailNextSave(boom)
		_, err := repo.CreateBook(ctx, BookInput{Title: "T", Author: "A", PublishedYear: year(2000), Genres: []*Genre{g}})

		var perr *PersistenceError
		require.ErrorAs(t, err, &perr)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, "book_create", perr.Op)

		snap := repo.Snapshot()
		assert.Empty(t, snap.Books())
		assert.Empty(t, snap.ListBooksForGenre(g))

		require.Len(t, auditor.calls, 2)
		assert.True(t, auditor.calls[1].failed)
		assert.Equal(t, KindBook, auditor.calls[1].kind)

		// staged changes from the failed attempt must not leak into the next commit
		mustCreateGenre(t, repo, "Other")
		rows, err := store.Query(ctx, Query{Kind: KindBook})
		require.NoError(t, err)
		assert.Empty(t, rows.Books)
	})

	t.Run("update book", func(t *testing.T) {
		repo, store := setupTestRepository(t)
		a := mustCreateGenre(t, repo, "A")
		b := mustCreateGenre(t, repo, "B")
		book := mustCreateBook(t, repo, "Before", "Author", 2000, a)

		store.FailNextSave(boom)
		err := repo.UpdateBook(ctx, book, BookInput{
			Title: "After", Author: "Other", PublishedYear: year(2020), Genres: []*Genre{b}, Cover: []byte{9},
		})
		require.Error(t, err)

		snap := repo.Snapshot()
		got, _ := snap.Book(book.ID)
		assert.Equal(t, "Before", got.Title)
		assert.Equal(t, "Author", got.Author)
		assert.Equal(t, 2000, got.PublishedYear)
		assert.Empty(t, got.Cover)
		assert.Equal(t, []string{"A"}, genreNames(got.Genres))
		assert.Equal(t, []string{"Before"}, titles(snap.ListBooksForGenre(a)))
		assert.Empty(t, snap.ListBooksForGenre(b))
	})

	t.Run("delete book", func(t *testing.T) {
		repo, store := setupTestRepository(t)
		g := mustCreateGenre(t, repo, "G")
		book := mustCreateBook(t, repo, "T", "A", 2000, g)
		note, err := repo.AddNote(ctx, book, "n", "m")
		require.NoError(t, err)

		store.FailNextSave(boom)
		require.Error(t, repo.DeleteBook(ctx, book))

		snap := repo.Snapshot()
		_, err = snap.Book(book.ID)
		require.NoError(t, err)
		_, err = snap.Note(note.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"T"}, titles(snap.ListBooksForGenre(g)))
	})

	t.Run("delete genre", func(t *testing.T) {
		repo, store := setupTestRepository(t)
		g := mustCreateGenre(t, repo, "G")
		book := mustCreateBook(t, repo, "T", "A", 2000, g)

		store.FailNextSave(boom)
		require.Error(t, repo.DeleteGenre(ctx, g))

		got, _ := repo.Book(book.ID)
		assert.Equal(t, []string{"G"}, genreNames(got.Genres))
		assert.Len(t, repo.Snapshot().Genres(), 1)
	})

	t.Run("notes", func(t *testing.T) {
		repo, store := setupTestRepository(t)
		book := mustCreateBook(t, repo, "T", "A", 2000)
		note, err := repo.AddNote(ctx, book, "kept", "")
		require.NoError(t, err)

		store.FailNextSave(boom)
		_, err = repo.AddNote(ctx, book, "lost", "")
		require.Error(t, err)

		store.FailNextSave(boom)
		require.Error(t, repo.DeleteNote(ctx, book, note))

		notes := repo.Snapshot().ListNotes(book)
		require.Len(t, notes, 1)
		assert.Equal(t, "kept", notes[0].Title)
	})
}

func TestOpen_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo, store := setupTestRepository(t)
	a := mustCreateGenre(t, repo, "A")
	b := mustCreateGenre(t, repo, "B")
	first := mustCreateBook(t, repo, "First", "X", 2000, b, a)
	second := mustCreateBook(t, repo, "Second", "Y", 2001, a)
	_, err := repo.AddNote(ctx, first, "n1", "m1")
	require.NoError(t, err)
	_, err = repo.AddNote(ctx, first, "n2", "m2")
	require.NoError(t, err)

	reopened, err := Open(ctx, store)
	require.NoError(t, err)

	snap := reopened.Snapshot()
	assert.Equal(t, repo.Snapshot().Stats(), snap.Stats())

	got, err := snap.Book(first.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, genreNames(got.Genres))
	assert.Equal(t, []string{"First", "Second"}, titles(snap.ListBooksForGenre(a)))
	assert.Len(t, snap.ListNotes(got), 2)
	assert.Equal(t, "n1", snap.ListNotes(got)[0].Title)

	// new entities keep counting after the highest loaded sequence
	third, err := reopened.CreateBook(ctx, BookInput{Title: "Third", Author: "Z", PublishedYear: year(2002)})
	require.NoError(t, err)
	gotSecond, _ := snap.Book(second.ID)
	assert.Greater(t, third.Seq, gotSecond.Seq)
}
