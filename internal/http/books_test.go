package http

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookcatalog/internal/catalog"
)

type bookList struct {
	Books []BookView `json:"books"`
	Count int        `json:"count"`
}

func bookTitles(views []BookView) []string {
	titles := make([]string, 0, len(views))
	for _, v := range views {
		titles = append(titles, v.Title)
	}
	return titles
}

func TestBooksController_ListBooks(t *testing.T) {
	s := setupTestServer(t)
	s.createBook(t, "Solaris", "Stanisław Lem", 1961)
	s.createBook(t, "Ćwiczenia", "Anna Nowak", 2001)
	s.createBook(t, "Dune", "Frank Herbert", 1965)

	t.Run("insertion order without sort", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/books", nil)
		require.Equal(t, http.StatusOK, w.Code)

		list := decode[bookList](t, w)
		assert.Equal(t, 3, list.Count)
		assert.Equal(t, []string{"Solaris", "Ćwiczenia", "Dune"}, bookTitles(list.Books))
	})

	t.Run("sorted by title", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/books?sort=title", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{"Ćwiczenia", "Dune", "Solaris"}, bookTitles(decode[bookList](t, w).Books))
	})

	t.Run("sorted by year", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/books?sort=publishedYear", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{"Solaris", "Dune", "Ćwiczenia"}, bookTitles(decode[bookList](t, w).Books))
	})

	t.Run("search ignores diacritics", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/books?q=cwicz", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{"Ćwiczenia"}, bookTitles(decode[bookList](t, w).Books))
	})

	t.Run("unknown sort option", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/books?sort=isbn", nil)
		require.Equal(t, http.StatusBadRequest, w.Code)

		resp := decode[ErrorResponse](t, w)
		assert.Equal(t, CodeValidation, resp.Code)
		assert.Equal(t, map[string]any{"field": "sort"}, resp.Details)
	})
}

func TestBooksController_CreateBook(t *testing.T) {
	t.Run("creates a book with genres", func(t *testing.T) {
		s := setupTestServer(t)
		horror := s.createGenre(t, "horror")

		w := s.do(t, http.MethodPost, "/api/books", map[string]any{
			"title":          "Poczytaj mi mamo 1",
			"author":         "Julian Tuwim",
			"published_year": 1971,
			"genre_ids":      []string{horror.ID, horror.ID},
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		view := decode[BookDetailView](t, w)
		assert.NotEmpty(t, view.ID)
		assert.Equal(t, 1971, view.PublishedYear)
		require.Len(t, view.Genres, 1)
		assert.Equal(t, "horror", view.Genres[0].Name)
		assert.Empty(t, view.Notes)
		assert.False(t, view.HasCover)

		genre, err := s.repo.Genre(horror.ID)
		require.NoError(t, err)
		assert.Len(t, genre.Books, 1)
	})

	t.Run("missing year is a validation error", func(t *testing.T) {
		s := setupTestServer(t)

		w := s.do(t, http.MethodPost, "/api/books", map[string]any{"title": "Dune", "author": "Frank Herbert"})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, map[string]any{"field": "published_year"}, decode[ErrorResponse](t, w).Details)
	})

	t.Run("blank title", func(t *testing.T) {
		s := setupTestServer(t)

		w := s.do(t, http.MethodPost, "/api/books", map[string]any{"title": "  ", "author": "A", "published_year": 2000})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, CodeValidation, decode[ErrorResponse](t, w).Code)
	})

	t.Run("unknown genre", func(t *testing.T) {
		s := setupTestServer(t)

		w := s.do(t, http.MethodPost, "/api/books", map[string]any{
			"title": "Dune", "author": "Frank Herbert", "published_year": 1965, "genre_ids": []string{"missing"},
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, 0, s.repo.Snapshot().Stats().Books)
	})

	t.Run("malformed body", func(t *testing.T) {
		s := setupTestServer(t)
		w := s.do(t, http.MethodPost, "/api/books", `{"title":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("failed save rolls back and reports 500", func(t *testing.T) {
		s := setupTestServer(t)
		s.store.FailNextSave(errDiskFull)

		w := s.do(t, http.MethodPost, "/api/books", map[string]any{"title": "Dune", "author": "Frank Herbert", "published_year": 1965})
		require.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, CodePersistence, decode[ErrorResponse](t, w).Code)
		assert.Equal(t, 0, s.repo.Snapshot().Stats().Books)
	})
}

func TestBooksController_GetBook(t *testing.T) {
	s := setupTestServer(t)
	book := s.createBook(t, "Dune", "Frank Herbert", 1965)
	_, err := s.repo.AddNote(context.Background(), book, "Spice", "must flow")
	require.NoError(t, err)

	w := s.do(t, http.MethodGet, "/api/books/"+book.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	view := decode[BookDetailView](t, w)
	assert.Equal(t, "Dune", view.Title)
	assert.Equal(t, 1, view.NoteCount)
	require.Len(t, view.Notes, 1)
	assert.Equal(t, book.ID, view.Notes[0].BookID)

	w = s.do(t, http.MethodGet, "/api/books/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, CodeNotFound, decode[ErrorResponse](t, w).Code)
}

func TestBooksController_UpdateBook(t *testing.T) {
	s := setupTestServer(t)
	horror := s.createGenre(t, "horror")
	scifi := s.createGenre(t, "sci-fi")
	book := s.createBook(t, "Dune", "Frank Herbert", 1965, horror.ID)
	require.NoError(t, s.repo.SetCover(context.Background(), book.ID, pngData))

	w := s.do(t, http.MethodPut, "/api/books/"+book.ID, map[string]any{
		"title": "Dune Messiah", "author": "Frank Herbert", "published_year": 1969, "genre_ids": []string{scifi.ID},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	view := decode[BookDetailView](t, w)
	assert.Equal(t, "Dune Messiah", view.Title)
	assert.Equal(t, 1969, view.PublishedYear)
	assert.True(t, view.HasCover, "cover survives an update")
	require.Len(t, view.Genres, 1)
	assert.Equal(t, scifi.ID, view.Genres[0].ID)

	oldGenre, err := s.repo.Genre(horror.ID)
	require.NoError(t, err)
	assert.Empty(t, oldGenre.Books)

	w = s.do(t, http.MethodPut, "/api/books/missing", map[string]any{"title": "x", "author": "y", "published_year": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBooksController_DeleteBook(t *testing.T) {
	s := setupTestServer(t)
	horror := s.createGenre(t, "horror")
	book := s.createBook(t, "Dune", "Frank Herbert", 1965, horror.ID)
	_, err := s.repo.AddNote(context.Background(), book, "Spice", "")
	require.NoError(t, err)

	w := s.do(t, http.MethodDelete, "/api/books/"+book.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	stats := s.repo.Snapshot().Stats()
	assert.Equal(t, catalog.Stats{Books: 0, Genres: 1, Notes: 0}, stats)

	w = s.do(t, http.MethodDelete, "/api/books/"+book.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBooksController_GetMarkdown(t *testing.T) {
	s := setupTestServer(t)
	book := s.createBook(t, "Dune", "Frank Herbert", 1965)

	w := s.do(t, http.MethodGet, "/api/books/"+book.ID+"/markdown", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/markdown"))
	assert.Contains(t, w.Body.String(), "title: Dune")
	assert.Contains(t, w.Body.String(), "published_year: 1965")
}
