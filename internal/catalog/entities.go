// Package catalog owns the in-memory book catalog: the Book, Genre and Note
// entity graph, the Repository that keeps its relationships consistent, and
// the read-only Snapshot views used for listing, sorting and searching.
package catalog

import "slices"

type Kind string

const (
	KindBook       Kind = "book"
	KindGenre      Kind = "genre"
	KindNote       Kind = "note"
	KindMembership Kind = "membership"
)

// Entity is anything the Repository can stage on a Store.
type Entity interface {
	EntityKind() Kind
	EntityID() string
}

type Book struct {
	ID            string
	Seq           int64
	Title         string
	Author        string
	PublishedYear int
	Cover         []byte

	// Genres is the set of genres the book belongs to, in membership order.
	// Genre.Books is its inverse.
	Genres []*Genre

	// Notes are owned by the book and listed in insertion order.
	Notes []*Note
}

func (b *Book) EntityKind() Kind  { return KindBook }
func (b *Book) EntityID() string { return b.ID }

func (b *Book) HasCover() bool {
	return len(b.Cover) > 0
}

func (b *Book) GenreIDs() []string {
	ids := make([]string, 0, len(b.Genres))
	for _, g := range b.Genres {
		ids = append(ids, g.ID)
	}
	return ids
}

func (b *Book) hasGenre(id string) bool {
	return slices.ContainsFunc(b.Genres, func(g *Genre) bool { return g.ID == id })
}

type Genre struct {
	ID   string
	Seq  int64
	Name string

	// Color is stored as given and never interpreted.
	Color []byte

	Books []*Book
}

func (g *Genre) EntityKind() Kind  { return KindGenre }
func (g *Genre) EntityID() string { return g.ID }

type Note struct {
	ID      string
	Seq     int64
	Title   string
	Message string
	Book    *Book
}

func (n *Note) EntityKind() Kind  { return KindNote }
func (n *Note) EntityID() string { return n.ID }

// BookID returns the owning book's ID, or "" for a detached note.
func (n *Note) BookID() string {
	if n.Book == nil {
		return ""
	}
	return n.Book.ID
}

// GenreRefs builds genre references from IDs for use in BookInput.
func GenreRefs(ids ...string) []*Genre {
	refs := make([]*Genre, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, &Genre{ID: id})
	}
	return refs
}
