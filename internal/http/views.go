package http

import (
	"github.com/mrlokans/bookcatalog/internal/catalog"
	"github.com/mrlokans/bookcatalog/internal/utils"
)

// GenreRef is a genre as listed on a book.
type GenreRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

type BookView struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Author        string     `json:"author"`
	PublishedYear int        `json:"published_year"`
	HasCover      bool       `json:"has_cover"`
	CoverURL      string     `json:"cover_url,omitempty"`
	Genres        []GenreRef `json:"genres"`
	NoteCount     int        `json:"note_count"`
}

// BookDetailView adds the notes to a book.
type BookDetailView struct {
	BookView
	Notes []NoteView `json:"notes"`
}

type GenreView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color,omitempty"`
	BookCount int    `json:"book_count"`
}

type NoteView struct {
	ID      string `json:"id"`
	BookID  string `json:"book_id"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

func newBookView(b *catalog.Book) BookView {
	view := BookView{
		ID:            b.ID,
		Title:         b.Title,
		Author:        b.Author,
		PublishedYear: b.PublishedYear,
		HasCover:      b.HasCover(),
		Genres:        make([]GenreRef, 0, len(b.Genres)),
		NoteCount:     len(b.Notes),
	}
	if view.HasCover {
		view.CoverURL = "/api/books/" + b.ID + "/cover"
	}
	for _, g := range b.Genres {
		view.Genres = append(view.Genres, GenreRef{ID: g.ID, Name: g.Name, Color: utils.FormatHexColor(g.Color)})
	}
	return view
}

func newBookDetailView(b *catalog.Book) BookDetailView {
	view := BookDetailView{BookView: newBookView(b), Notes: make([]NoteView, 0, len(b.Notes))}
	for _, n := range b.Notes {
		view.Notes = append(view.Notes, newNoteView(n))
	}
	return view
}

func newBookViews(books []*catalog.Book) []BookView {
	views := make([]BookView, 0, len(books))
	for _, b := range books {
		views = append(views, newBookView(b))
	}
	return views
}

func newGenreView(g *catalog.Genre) GenreView {
	return GenreView{
		ID:        g.ID,
		Name:      g.Name,
		Color:     utils.FormatHexColor(g.Color),
		BookCount: len(g.Books),
	}
}

func newNoteView(n *catalog.Note) NoteView {
	return NoteView{ID: n.ID, BookID: n.BookID(), Title: n.Title, Message: n.Message}
}

func newNoteViews(notes []*catalog.Note) []NoteView {
	views := make([]NoteView, 0, len(notes))
	for _, n := range notes {
		views = append(views, newNoteView(n))
	}
	return views
}
