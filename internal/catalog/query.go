package catalog

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/samber/lo"
	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

type SortOption string

const (
	SortByTitle         SortOption = "title"
	SortByAuthor        SortOption = "author"
	SortByPublishedYear SortOption = "publishedYear"
	SortNone            SortOption = "none"
)

// SortOptions lists the options in display order.
var SortOptions = []SortOption{SortByTitle, SortByAuthor, SortByPublishedYear, SortNone}

func (o SortOption) Title() string {
	switch o {
	case SortByTitle:
		return "Title"
	case SortByAuthor:
		return "Author"
	case SortByPublishedYear:
		return "Published Year"
	default:
		return "None"
	}
}

// ParseSortOption accepts the option identifiers case-insensitively.
// An empty string means SortNone.
func ParseSortOption(s string) (SortOption, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return SortNone, nil
	case "title":
		return SortByTitle, nil
	case "author":
		return SortByAuthor, nil
	case "publishedyear", "published_year", "year":
		return SortByPublishedYear, nil
	}
	return "", &ValidationError{Field: "sort", Reason: fmt.Sprintf("unknown sort option %q", s)}
}

type GenreSortOrder string

const (
	GenreOrderForward GenreSortOrder = "forward"
	GenreOrderReverse GenreSortOrder = "reverse"
)

var GenreSortOrders = []GenreSortOrder{GenreOrderForward, GenreOrderReverse}

func (o GenreSortOrder) Title() string {
	if o == GenreOrderReverse {
		return "Reverse"
	}
	return "Forward"
}

func ParseGenreSortOrder(s string) (GenreSortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "forward":
		return GenreOrderForward, nil
	case "reverse":
		return GenreOrderReverse, nil
	}
	return "", &ValidationError{Field: "order", Reason: fmt.Sprintf("unknown genre order %q", s)}
}

// ListBooks returns books whose title contains search, ignoring case,
// diacritics and character width, ordered by opt. An empty search matches
// every book. Books that compare equal keep their insertion order.
func (s *Snapshot) ListBooks(search string, opt SortOption) []*Book {
	books := slices.Clone(s.books)
	if search != "" {
		needle := foldText(search)
		books = lo.Filter(books, func(b *Book, _ int) bool {
			return strings.Contains(foldText(b.Title), needle)
		})
	}

	col := newCollator()
	var compare func(a, b *Book) int
	switch opt {
	case SortByAuthor:
		compare = func(a, b *Book) int { return col.CompareString(a.Author, b.Author) }
	case SortByPublishedYear:
		compare = func(a, b *Book) int { return cmp.Compare(a.PublishedYear, b.PublishedYear) }
	default:
		compare = func(a, b *Book) int { return col.CompareString(a.Title, b.Title) }
	}
	slices.SortStableFunc(books, func(a, b *Book) int {
		if c := compare(a, b); c != 0 {
			return c
		}
		return cmp.Compare(a.Seq, b.Seq)
	})
	return books
}

// ListGenres returns genres ordered by name. GenreOrderReverse is the exact
// reverse of GenreOrderForward.
func (s *Snapshot) ListGenres(order GenreSortOrder) []*Genre {
	genres := slices.Clone(s.genres)
	col := newCollator()
	slices.SortStableFunc(genres, func(a, b *Genre) int {
		if c := col.CompareString(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.Seq, b.Seq)
	})
	if order == GenreOrderReverse {
		slices.Reverse(genres)
	}
	return genres
}

// ListNotes returns the notes of book in the order they were added.
func (s *Snapshot) ListNotes(book *Book) []*Note {
	if book == nil {
		return nil
	}
	b, ok := s.bookIdx[book.ID]
	if !ok {
		return nil
	}
	return slices.Clone(b.Notes)
}

// ListBooksForGenre returns the books of genre in membership order.
func (s *Snapshot) ListBooksForGenre(genre *Genre) []*Book {
	if genre == nil {
		return nil
	}
	g, ok := s.genreIdx[genre.ID]
	if !ok {
		return nil
	}
	return slices.Clone(g.Books)
}

// Collators are not safe for concurrent use, so each listing makes its own.
func newCollator() *collate.Collator {
	return collate.New(language.Und, collate.Numeric)
}

func foldText(s string) string {
	t := transform.Chain(
		norm.NFKD,
		runes.Remove(runes.In(unicode.Mn)),
		width.Fold,
		cases.Fold(),
		norm.NFC,
	)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return folded
}
