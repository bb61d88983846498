package catalog

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/samber/lo"
)

// MemoryStore is a Store kept entirely in memory. It backs tests and
// supports injecting a failure into the next Save.
type MemoryStore struct {
	Staging

	mu          sync.Mutex
	books       map[string]BookRow
	genres      map[string]GenreRow
	notes       map[string]NoteRow
	memberships []MembershipRow
	failNext    error
	saves       int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		books:  make(map[string]BookRow),
		genres: make(map[string]GenreRow),
		notes:  make(map[string]NoteRow),
	}
}

// FailNextSave makes the next call to Save return err without applying
// anything.
func (s *MemoryStore) FailNextSave(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = err
}

// Saves returns the number of successful commits.
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func (s *MemoryStore) Save(ctx context.Context) error {
	cs := s.Take()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if s.failNext != nil {
		err := s.failNext
		s.failNext = nil
		return err
	}

	for _, id := range cs.DeletedNotes {
		delete(s.notes, id)
	}
	for _, id := range cs.DeletedBooks {
		delete(s.books, id)
		for noteID, n := range s.notes {
			if n.BookID == id {
				delete(s.notes, noteID)
			}
		}
		s.memberships = lo.Reject(s.memberships, func(m MembershipRow, _ int) bool { return m.BookID == id })
	}
	for _, id := range cs.DeletedGenres {
		delete(s.genres, id)
		s.memberships = lo.Reject(s.memberships, func(m MembershipRow, _ int) bool { return m.GenreID == id })
	}

	for _, g := range cs.Genres {
		row := GenreRowOf(g)
		row.Color = slices.Clone(row.Color)
		s.genres[g.ID] = row
	}
	for _, b := range cs.Books {
		row := BookRowOf(b)
		row.Cover = slices.Clone(row.Cover)
		s.books[b.ID] = row
		s.syncMemberships(b.ID, b.GenreIDs())
	}
	for _, n := range cs.Notes {
		s.notes[n.ID] = NoteRowOf(n)
	}

	s.saves++
	return nil
}

func (s *MemoryStore) syncMemberships(bookID string, want []string) {
	have := lo.FilterMap(s.memberships, func(m MembershipRow, _ int) (string, bool) {
		return m.GenreID, m.BookID == bookID
	})
	removed := lo.Without(have, want...)
	s.memberships = lo.Reject(s.memberships, func(m MembershipRow, _ int) bool {
		return m.BookID == bookID && lo.Contains(removed, m.GenreID)
	})
	for _, genreID := range lo.Without(want, have...) {
		s.memberships = append(s.memberships, MembershipRow{BookID: bookID, GenreID: genreID})
	}
}

func (s *MemoryStore) Query(ctx context.Context, q Query) (Rows, error) {
	if err := ctx.Err(); err != nil {
		return Rows{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var rows Rows
	switch q.Kind {
	case KindBook:
		rows.Books = lo.Filter(lo.Values(s.books), func(r BookRow, _ int) bool {
			return containsFold(r.Title, q.Contains)
		})
		sortRows(rows.Books, q, func(r BookRow) int64 { return r.Seq }, func(a, b BookRow) int {
			switch q.OrderBy {
			case "title":
				return strings.Compare(a.Title, b.Title)
			case "author":
				return strings.Compare(a.Author, b.Author)
			case "published_year":
				return cmp.Compare(a.PublishedYear, b.PublishedYear)
			}
			return 0
		})
	case KindGenre:
		rows.Genres = lo.Filter(lo.Values(s.genres), func(r GenreRow, _ int) bool {
			return containsFold(r.Name, q.Contains)
		})
		sortRows(rows.Genres, q, func(r GenreRow) int64 { return r.Seq }, func(a, b GenreRow) int {
			if q.OrderBy == "name" {
				return strings.Compare(a.Name, b.Name)
			}
			return 0
		})
	case KindNote:
		rows.Notes = lo.Filter(lo.Values(s.notes), func(r NoteRow, _ int) bool {
			return containsFold(r.Title, q.Contains)
		})
		sortRows(rows.Notes, q, func(r NoteRow) int64 { return r.Seq }, func(a, b NoteRow) int {
			if q.OrderBy == "title" {
				return strings.Compare(a.Title, b.Title)
			}
			return 0
		})
	case KindMembership:
		rows.Memberships = slices.Clone(s.memberships)
		if q.Descending {
			slices.Reverse(rows.Memberships)
		}
	}
	return rows, nil
}

func sortRows[T any](rows []T, q Query, seq func(T) int64, byColumn func(a, b T) int) {
	slices.SortFunc(rows, func(a, b T) int {
		c := byColumn(a, b)
		if c == 0 {
			c = cmp.Compare(seq(a), seq(b))
		}
		if q.Descending {
			return -c
		}
		return c
	})
}

func containsFold(s, substr string) bool {
	return substr == "" || strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
