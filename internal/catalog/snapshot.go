package catalog

import "slices"

// Snapshot is a detached deep copy of the catalog. Changing it never
// affects the Repository it was taken from.
type Snapshot struct {
	books  []*Book
	genres []*Genre

	bookIdx  map[string]*Book
	genreIdx map[string]*Genre
	noteIdx  map[string]*Note
}

func newSnapshot(books []*Book, genres []*Genre) *Snapshot {
	s := &Snapshot{
		books:    make([]*Book, 0, len(books)),
		genres:   make([]*Genre, 0, len(genres)),
		bookIdx:  make(map[string]*Book, len(books)),
		genreIdx: make(map[string]*Genre, len(genres)),
		noteIdx:  make(map[string]*Note),
	}

	for _, g := range genres {
		cg := &Genre{ID: g.ID, Seq: g.Seq, Name: g.Name, Color: slices.Clone(g.Color)}
		s.genres = append(s.genres, cg)
		s.genreIdx[cg.ID] = cg
	}
	for _, b := range books {
		cb := &Book{
			ID:            b.ID,
			Seq:           b.Seq,
			Title:         b.Title,
			Author:        b.Author,
			PublishedYear: b.PublishedYear,
			Cover:         slices.Clone(b.Cover),
		}
		for _, g := range b.Genres {
			cb.Genres = append(cb.Genres, s.genreIdx[g.ID])
		}
		for _, n := range b.Notes {
			cn := &Note{ID: n.ID, Seq: n.Seq, Title: n.Title, Message: n.Message, Book: cb}
			cb.Notes = append(cb.Notes, cn)
			s.noteIdx[cn.ID] = cn
		}
		s.books = append(s.books, cb)
		s.bookIdx[cb.ID] = cb
	}
	for _, g := range genres {
		cg := s.genreIdx[g.ID]
		for _, b := range g.Books {
			cg.Books = append(cg.Books, s.bookIdx[b.ID])
		}
	}
	return s
}

func (s *Snapshot) Book(id string) (*Book, error) {
	if b, ok := s.bookIdx[id]; ok {
		return b, nil
	}
	return nil, notFound(KindBook, id)
}

func (s *Snapshot) Genre(id string) (*Genre, error) {
	if g, ok := s.genreIdx[id]; ok {
		return g, nil
	}
	return nil, notFound(KindGenre, id)
}

func (s *Snapshot) Note(id string) (*Note, error) {
	if n, ok := s.noteIdx[id]; ok {
		return n, nil
	}
	return nil, notFound(KindNote, id)
}

// Books returns every book in insertion order.
func (s *Snapshot) Books() []*Book {
	return slices.Clone(s.books)
}

// Genres returns every genre in insertion order.
func (s *Snapshot) Genres() []*Genre {
	return slices.Clone(s.genres)
}

type Stats struct {
	Books  int `json:"books"`
	Genres int `json:"genres"`
	Notes  int `json:"notes"`
}

func (s *Snapshot) Stats() Stats {
	return Stats{Books: len(s.books), Genres: len(s.genres), Notes: len(s.noteIdx)}
}
