package catalog

import (
	"context"
	"sync"
)

// Store is the persistence boundary. Insert and Delete stage changes, Save
// commits everything staged since the last Save as one unit. Insert of an
// entity that already exists updates it.
type Store interface {
	Insert(entity Entity)
	Delete(entity Entity)
	Save(ctx context.Context) error
	// Discard drops staged changes that have not been saved.
	Discard()
	Query(ctx context.Context, q Query) (Rows, error)
}

// Query selects rows of one Kind. Contains filters books and notes by title
// and genres by name (case-insensitive). OrderBy names a column; the zero
// value orders by insertion sequence.
type Query struct {
	Kind       Kind
	Contains   string
	OrderBy    string
	Descending bool
}

type BookRow struct {
	ID            string
	Seq           int64
	Title         string
	Author        string
	PublishedYear int
	Cover         []byte
}

type GenreRow struct {
	ID    string
	Seq   int64
	Name  string
	Color []byte
}

type NoteRow struct {
	ID      string
	Seq     int64
	BookID  string
	Title   string
	Message string
}

// MembershipRow links a book to a genre. Rows come back in the order the
// memberships were created.
type MembershipRow struct {
	BookID  string
	GenreID string
}

type Rows struct {
	Books       []BookRow
	Genres      []GenreRow
	Notes       []NoteRow
	Memberships []MembershipRow
}

// ChangeSet is the net effect of the changes staged since the last Save.
// Only the last staged change per entity survives.
type ChangeSet struct {
	Genres []*Genre
	Books  []*Book
	Notes  []*Note

	DeletedNotes  []string
	DeletedBooks  []string
	DeletedGenres []string
}

func (cs ChangeSet) Empty() bool {
	return len(cs.Genres)+len(cs.Books)+len(cs.Notes)+
		len(cs.DeletedNotes)+len(cs.DeletedBooks)+len(cs.DeletedGenres) == 0
}

type stagedKey struct {
	kind Kind
	id   string
}

type staged struct {
	entity  Entity
	deleted bool
}

// Staging collects Insert and Delete calls for a Store implementation.
// Embed it to get both methods.
type Staging struct {
	mu    sync.Mutex
	order []stagedKey
	ops   map[stagedKey]staged
}

func (s *Staging) Insert(entity Entity) {
	s.stage(entity, false)
}

func (s *Staging) Delete(entity Entity) {
	s.stage(entity, true)
}

func (s *Staging) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = nil
	s.ops = nil
}

func (s *Staging) stage(entity Entity, deleted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ops == nil {
		s.ops = make(map[stagedKey]staged)
	}
	key := stagedKey{kind: entity.EntityKind(), id: entity.EntityID()}
	if _, ok := s.ops[key]; !ok {
		s.order = append(s.order, key)
	}
	s.ops[key] = staged{entity: entity, deleted: deleted}
}

// Take returns the staged changes and clears them.
func (s *Staging) Take() ChangeSet {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cs ChangeSet
	for _, key := range s.order {
		op := s.ops[key]
		switch e := op.entity.(type) {
		case *Book:
			if op.deleted {
				cs.DeletedBooks = append(cs.DeletedBooks, e.ID)
			} else {
				cs.Books = append(cs.Books, e)
			}
		case *Genre:
			if op.deleted {
				cs.DeletedGenres = append(cs.DeletedGenres, e.ID)
			} else {
				cs.Genres = append(cs.Genres, e)
			}
		case *Note:
			if op.deleted {
				cs.DeletedNotes = append(cs.DeletedNotes, e.ID)
			} else {
				cs.Notes = append(cs.Notes, e)
			}
		}
	}
	s.order = nil
	s.ops = nil
	return cs
}

func BookRowOf(b *Book) BookRow {
	return BookRow{
		ID:            b.ID,
		Seq:           b.Seq,
		Title:         b.Title,
		Author:        b.Author,
		PublishedYear: b.PublishedYear,
		Cover:         b.Cover,
	}
}

func GenreRowOf(g *Genre) GenreRow {
	return GenreRow{ID: g.ID, Seq: g.Seq, Name: g.Name, Color: g.Color}
}

func NoteRowOf(n *Note) NoteRow {
	return NoteRow{ID: n.ID, Seq: n.Seq, BookID: n.BookID(), Title: n.Title, Message: n.Message}
}
