package database

import (
	"context"
	"fmt"
	"log"
	"slices"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/bookcatalog/internal/catalog"
	"github.com/mrlokans/bookcatalog/internal/entities"
)

// BlobStore holds cover images outside the primary rows.
type BlobStore interface {
	Put(bookID string, data []byte) (key string, err error)
	Get(key string) ([]byte, error)
	Delete(key string) error
}

// Store persists the catalog through gorm. Staged changes are written in a
// single transaction on Save; reads are built with squirrel.
type Store struct {
	catalog.Staging

	db    *gorm.DB
	blobs BlobStore
}

func NewStore(db *gorm.DB, blobs BlobStore) *Store {
	return &Store{db: db, blobs: blobs}
}

func (s *Store) Save(ctx context.Context) error {
	cs := s.Take()
	if cs.Empty() {
		return nil
	}

	touched := append(lo.Map(cs.Books, func(b *catalog.Book, _ int) string { return b.ID }), cs.DeletedBooks...)
	oldKeys, err := s.coverKeys(ctx, touched)
	if err != nil {
		return err
	}

	// Covers are written before the transaction under content-derived keys,
	// so a failed commit only leaves files nothing references.
	newKeys := make(map[string]string, len(cs.Books))
	var written []string
	for _, b := range cs.Books {
		if !b.HasCover() {
			continue
		}
		key, err := s.blobs.Put(b.ID, b.Cover)
		if err != nil {
			s.removeBlobs(written)
			return fmt.Errorf("failed to store cover of book %s: %w", b.ID, err)
		}
		newKeys[b.ID] = key
		if key != oldKeys[b.ID] {
			written = append(written, key)
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return applyChanges(tx, cs, newKeys)
	})
	if err != nil {
		s.removeBlobs(written)
		return fmt.Errorf("failed to commit catalog changes: %w", err)
	}

	var stale []string
	for _, b := range cs.Books {
		if old := oldKeys[b.ID]; old != "" && old != newKeys[b.ID] {
			stale = append(stale, old)
		}
	}
	for _, id := range cs.DeletedBooks {
		if old := oldKeys[id]; old != "" {
			stale = append(stale, old)
		}
	}
	s.removeBlobs(stale)
	return nil
}

func applyChanges(tx *gorm.DB, cs catalog.ChangeSet, coverKeys map[string]string) error {
	if len(cs.DeletedNotes) > 0 {
		if err := tx.Where("id IN ?", cs.DeletedNotes).Delete(&entities.Note{}).Error; err != nil {
			return fmt.Errorf("delete notes: %w", err)
		}
	}
	if len(cs.DeletedBooks) > 0 {
		if err := tx.Where("book_id IN ?", cs.DeletedBooks).Delete(&entities.Note{}).Error; err != nil {
			return fmt.Errorf("delete notes of books: %w", err)
		}
		if err := tx.Where("book_id IN ?", cs.DeletedBooks).Delete(&entities.BookGenre{}).Error; err != nil {
			return fmt.Errorf("delete book memberships: %w", err)
		}
		if err := tx.Where("id IN ?", cs.DeletedBooks).Delete(&entities.Book{}).Error; err != nil {
			return fmt.Errorf("delete books: %w", err)
		}
	}
	if len(cs.DeletedGenres) > 0 {
		if err := tx.Where("genre_id IN ?", cs.DeletedGenres).Delete(&entities.BookGenre{}).Error; err != nil {
			return fmt.Errorf("delete genre memberships: %w", err)
		}
		if err := tx.Where("id IN ?", cs.DeletedGenres).Delete(&entities.Genre{}).Error; err != nil {
			return fmt.Errorf("delete genres: %w", err)
		}
	}

	upsert := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Session(&gorm.Session{})

	for _, g := range cs.Genres {
		row := entities.Genre{ID: g.ID, Seq: g.Seq, Name: g.Name, Color: g.Color}
		if err := upsert.Create(&row).Error; err != nil {
			return fmt.Errorf("save genre %s: %w", g.ID, err)
		}
	}
	for _, b := range cs.Books {
		row := entities.Book{
			ID:            b.ID,
			Seq:           b.Seq,
			Title:         b.Title,
			Author:        b.Author,
			PublishedYear: b.PublishedYear,
			CoverKey:      coverKeys[b.ID],
		}
		if err := upsert.Create(&row).Error; err != nil {
			return fmt.Errorf("save book %s: %w", b.ID, err)
		}
		if err := syncMemberships(tx, b); err != nil {
			return err
		}
	}
	for _, n := range cs.Notes {
		row := entities.Note{ID: n.ID, Seq: n.Seq, BookID: n.BookID(), Title: n.Title, Message: n.Message}
		if err := upsert.Create(&row).Error; err != nil {
			return fmt.Errorf("save note %s: %w", n.ID, err)
		}
	}
	return nil
}

// syncMemberships makes the book's membership rows match its genre set.
// Rows that survive keep their ID, so membership order is preserved.
func syncMemberships(tx *gorm.DB, book *catalog.Book) error {
	var existing []entities.BookGenre
	if err := tx.Where("book_id = ?", book.ID).Order("id").Find(&existing).Error; err != nil {
		return fmt.Errorf("load memberships of book %s: %w", book.ID, err)
	}

	want := book.GenreIDs()
	have := lo.Map(existing, func(m entities.BookGenre, _ int) string { return m.GenreID })

	if removed := lo.Without(have, want...); len(removed) > 0 {
		err := tx.Where("book_id = ? AND genre_id IN ?", book.ID, removed).Delete(&entities.BookGenre{}).Error
		if err != nil {
			return fmt.Errorf("remove memberships of book %s: %w", book.ID, err)
		}
	}
	for _, genreID := range lo.Without(want, have...) {
		if err := tx.Create(&entities.BookGenre{BookID: book.ID, GenreID: genreID}).Error; err != nil {
			return fmt.Errorf("add membership %s/%s: %w", book.ID, genreID, err)
		}
	}
	return nil
}

func (s *Store) coverKeys(ctx context.Context, bookIDs []string) (map[string]string, error) {
	keys := make(map[string]string)
	if len(bookIDs) == 0 {
		return keys, nil
	}

	var rows []entities.Book
	err := s.db.WithContext(ctx).Select("id", "cover_key").Where("id IN ?", bookIDs).Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load cover keys: %w", err)
	}
	for _, r := range rows {
		keys[r.ID] = r.CoverKey
	}
	return keys, nil
}

func (s *Store) removeBlobs(keys []string) {
	for _, key := range keys {
		if err := s.blobs.Delete(key); err != nil {
			log.Printf("Failed to remove cover %s: %v", key, err)
		}
	}
}

type tableSpec struct {
	table        string
	columns      []string
	searchColumn string
	sortable     []string
	defaultOrder string
}

var tables = map[catalog.Kind]tableSpec{
	catalog.KindBook: {
		table:        "books",
		columns:      []string{"id", "seq", "title", "author", "published_year", "cover_key"},
		searchColumn: "title",
		sortable:     []string{"seq", "title", "author", "published_year"},
		defaultOrder: "seq",
	},
	catalog.KindGenre: {
		table:        "genres",
		columns:      []string{"id", "seq", "name", "color"},
		searchColumn: "name",
		sortable:     []string{"seq", "name"},
		defaultOrder: "seq",
	},
	catalog.KindNote: {
		table:        "notes",
		columns:      []string{"id", "seq", "book_id", "title", "message"},
		searchColumn: "title",
		sortable:     []string{"seq", "title"},
		defaultOrder: "seq",
	},
	catalog.KindMembership: {
		table:        "book_genres",
		columns:      []string{"id", "book_id", "genre_id"},
		sortable:     []string{"id"},
		defaultOrder: "id",
	},
}

// buildQuery renders q as SQL with ? placeholders; gorm rebinds them for
// the active dialect.
func buildQuery(q catalog.Query) (string, []any, error) {
	spec, ok := tables[q.Kind]
	if !ok {
		return "", nil, fmt.Errorf("unsupported query kind %q", q.Kind)
	}

	builder := sq.Select(spec.columns...).From(spec.table)
	if q.Contains != "" && spec.searchColumn != "" {
		builder = builder.Where(sq.Like{
			"LOWER(" + spec.searchColumn + ")": "%" + strings.ToLower(q.Contains) + "%",
		})
	}

	orderBy := spec.defaultOrder
	if q.OrderBy != "" {
		if !slices.Contains(spec.sortable, q.OrderBy) {
			return "", nil, fmt.Errorf("cannot order %s by %q", spec.table, q.OrderBy)
		}
		orderBy = q.OrderBy
	}
	dir := "ASC"
	if q.Descending {
		dir = "DESC"
	}
	orders := []string{orderBy + " " + dir}
	if orderBy != spec.defaultOrder {
		orders = append(orders, spec.defaultOrder+" "+dir)
	}
	builder = builder.OrderBy(orders...)

	return builder.ToSql()
}

func (s *Store) Query(ctx context.Context, q catalog.Query) (catalog.Rows, error) {
	query, args, err := buildQuery(q)
	if err != nil {
		return catalog.Rows{}, err
	}
	db := s.db.WithContext(ctx)

	var out catalog.Rows
	switch q.Kind {
	case catalog.KindBook:
		var rows []entities.Book
		if err := db.Raw(query, args...).Scan(&rows).Error; err != nil {
			return out, fmt.Errorf("query books: %w", err)
		}
		for _, r := range rows {
			out.Books = append(out.Books, catalog.BookRow{
				ID:            r.ID,
				Seq:           r.Seq,
				Title:         r.Title,
				Author:        r.Author,
				PublishedYear: r.PublishedYear,
				Cover:         s.loadCover(r),
			})
		}
	case catalog.KindGenre:
		var rows []entities.Genre
		if err := db.Raw(query, args...).Scan(&rows).Error; err != nil {
			return out, fmt.Errorf("query genres: %w", err)
		}
		for _, r := range rows {
			out.Genres = append(out.Genres, catalog.GenreRow{ID: r.ID, Seq: r.Seq, Name: r.Name, Color: r.Color})
		}
	case catalog.KindNote:
		var rows []entities.Note
		if err := db.Raw(query, args...).Scan(&rows).Error; err != nil {
			return out, fmt.Errorf("query notes: %w", err)
		}
		for _, r := range rows {
			out.Notes = append(out.Notes, catalog.NoteRow{
				ID: r.ID, Seq: r.Seq, BookID: r.BookID, Title: r.Title, Message: r.Message,
			})
		}
	case catalog.KindMembership:
		var rows []entities.BookGenre
		if err := db.Raw(query, args...).Scan(&rows).Error; err != nil {
			return out, fmt.Errorf("query memberships: %w", err)
		}
		for _, r := range rows {
			out.Memberships = append(out.Memberships, catalog.MembershipRow{BookID: r.BookID, GenreID: r.GenreID})
		}
	}
	return out, nil
}

func (s *Store) loadCover(row entities.Book) []byte {
	if row.CoverKey == "" {
		return nil
	}
	data, err := s.blobs.Get(row.CoverKey)
	if err != nil {
		log.Printf("Failed to load cover of book %s: %v", row.ID, err)
		return nil
	}
	return data
}
