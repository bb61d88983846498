package catalog

import (
	"context"
	"fmt"
	"log"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Auditor receives a report for every committed or failed mutation.
// err is nil when the mutation was persisted.
type Auditor interface {
	LogMutation(action string, kind Kind, entityID, description string, err error)
}

type Option func(*Repository)

func WithAuditor(auditor Auditor) Option {
	return func(r *Repository) {
		r.auditor = auditor
	}
}

// WithIDGenerator replaces the UUID generator used for new entities.
func WithIDGenerator(fn func() string) Option {
	return func(r *Repository) {
		r.newID = fn
	}
}

// BookInput carries the editable fields of a book.
type BookInput struct {
	Title         string
	Author        string
	PublishedYear *int
	// Genres are resolved by ID; duplicates are collapsed.
	Genres []*Genre
	Cover  []byte
	// KeepCover leaves the current cover untouched on update.
	KeepCover bool
}

func (in BookInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if strings.TrimSpace(in.Author) == "" {
		return &ValidationError{Field: "author", Reason: "must not be empty"}
	}
	if in.PublishedYear == nil {
		return &ValidationError{Field: "published_year", Reason: "is required"}
	}
	return nil
}

// Repository owns the entity graph and keeps the Book/Genre/Note
// relationships consistent. Every mutation is committed to the Store before
// it returns; a failed commit restores the graph to its previous state.
type Repository struct {
	mu      sync.Mutex
	store   Store
	auditor Auditor
	newID   func() string
	seq     int64

	books  []*Book
	genres []*Genre

	bookIdx  map[string]*Book
	genreIdx map[string]*Genre
	noteIdx  map[string]*Note
}

// NewRepository returns an empty repository on top of store.
func NewRepository(store Store, opts ...Option) *Repository {
	r := &Repository{
		store:    store,
		newID:    uuid.NewString,
		bookIdx:  make(map[string]*Book),
		genreIdx: make(map[string]*Genre),
		noteIdx:  make(map[string]*Note),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Open builds a repository from everything the store holds.
func Open(ctx context.Context, store Store, opts ...Option) (*Repository, error) {
	r := NewRepository(store, opts...)

	load := func(kind Kind) (Rows, error) {
		rows, err := store.Query(ctx, Query{Kind: kind})
		if err != nil {
			return Rows{}, fmt.Errorf("failed to load %s rows: %w", kind, err)
		}
		return rows, nil
	}

	genreRows, err := load(KindGenre)
	if err != nil {
		return nil, err
	}
	bookRows, err := load(KindBook)
	if err != nil {
		return nil, err
	}
	noteRows, err := load(KindNote)
	if err != nil {
		return nil, err
	}
	memberRows, err := load(KindMembership)
	if err != nil {
		return nil, err
	}

	for _, row := range genreRows.Genres {
		g := &Genre{ID: row.ID, Seq: row.Seq, Name: row.Name, Color: row.Color}
		r.genres = append(r.genres, g)
		r.genreIdx[g.ID] = g
		r.seq = max(r.seq, g.Seq)
	}
	for _, row := range bookRows.Books {
		b := &Book{
			ID:            row.ID,
			Seq:           row.Seq,
			Title:         row.Title,
			Author:        row.Author,
			PublishedYear: row.PublishedYear,
			Cover:         row.Cover,
		}
		r.books = append(r.books, b)
		r.bookIdx[b.ID] = b
		r.seq = max(r.seq, b.Seq)
	}
	for _, row := range noteRows.Notes {
		book, ok := r.bookIdx[row.BookID]
		if !ok {
			log.Printf("Skipping note %s: book %s is not in the catalog", row.ID, row.BookID)
			continue
		}
		n := &Note{ID: row.ID, Seq: row.Seq, Title: row.Title, Message: row.Message, Book: book}
		book.Notes = append(book.Notes, n)
		r.noteIdx[n.ID] = n
		r.seq = max(r.seq, n.Seq)
	}
	for _, row := range memberRows.Memberships {
		book, okBook := r.bookIdx[row.BookID]
		genre, okGenre := r.genreIdx[row.GenreID]
		if !okBook || !okGenre || book.hasGenre(genre.ID) {
			continue
		}
		book.Genres = append(book.Genres, genre)
		genre.Books = append(genre.Books, book)
	}

	log.Printf("Catalog loaded: %d books, %d genres, %d notes", len(r.books), len(r.genres), len(r.noteIdx))
	return r, nil
}

// undoLog records how to revert in-memory changes made by one operation.
type undoLog []func()

func (u *undoLog) push(fn func()) {
	*u = append(*u, fn)
}

func (u undoLog) rollback() {
	for i := len(u) - 1; i >= 0; i-- {
		u[i]()
	}
}

func (r *Repository) nextSeq() int64 {
	r.seq++
	return r.seq
}

func (r *Repository) commit(ctx context.Context, action string, undo undoLog, entity Entity, description string) error {
	if err := r.store.Save(ctx); err != nil {
		undo.rollback()
		r.store.Discard()
		log.Printf("Catalog %s failed, changes rolled back: %v", action, err)
		r.report(action, entity, description, err)
		return &PersistenceError{Op: action, Err: err}
	}
	r.report(action, entity, description, nil)
	return nil
}

func (r *Repository) report(action string, entity Entity, description string, err error) {
	if r.auditor == nil {
		return
	}
	r.auditor.LogMutation(action, entity.EntityKind(), entity.EntityID(), description, err)
}

func (r *Repository) lookupBook(book *Book) (*Book, error) {
	if book == nil {
		return nil, &ValidationError{Field: "book", Reason: "is required"}
	}
	b, ok := r.bookIdx[book.ID]
	if !ok {
		return nil, notFound(KindBook, book.ID)
	}
	return b, nil
}

func (r *Repository) lookupGenre(genre *Genre) (*Genre, error) {
	if genre == nil {
		return nil, &ValidationError{Field: "genre", Reason: "is required"}
	}
	g, ok := r.genreIdx[genre.ID]
	if !ok {
		return nil, notFound(KindGenre, genre.ID)
	}
	return g, nil
}

func (r *Repository) resolveGenres(refs []*Genre) ([]*Genre, error) {
	refs = lo.Filter(refs, func(g *Genre, _ int) bool { return g != nil })
	refs = lo.UniqBy(refs, func(g *Genre) string { return g.ID })

	genres := make([]*Genre, 0, len(refs))
	for _, ref := range refs {
		g, err := r.lookupGenre(ref)
		if err != nil {
			return nil, err
		}
		genres = append(genres, g)
	}
	return genres, nil
}

func setField[T any](undo *undoLog, field *T, value T) {
	old := *field
	*field = value
	undo.push(func() { *field = old })
}

func setIndex[T any](undo *undoLog, idx map[string]T, id string, value T) {
	old, existed := idx[id]
	idx[id] = value
	undo.push(func() {
		if existed {
			idx[id] = old
		} else {
			delete(idx, id)
		}
	})
}

func removeIndex[T any](undo *undoLog, idx map[string]T, id string) {
	old, existed := idx[id]
	if !existed {
		return
	}
	delete(idx, id)
	undo.push(func() { idx[id] = old })
}

// appendTo never writes into a shared backing array, so a slice header
// captured for undo stays intact.
func appendTo[T any](s []T, v ...T) []T {
	return append(slices.Clip(s), v...)
}

func without[T comparable](s []T, v T) []T {
	return lo.Without(s, v)
}

// linkGenres makes genres the book's genre set and reconciles Genre.Books.
func (r *Repository) linkGenres(undo *undoLog, book *Book, genres []*Genre) {
	for _, g := range book.Genres {
		if !slices.Contains(genres, g) {
			setField(undo, &g.Books, without(g.Books, book))
			r.store.Insert(g)
		}
	}
	for _, g := range genres {
		if !slices.Contains(book.Genres, g) {
			setField(undo, &g.Books, appendTo(g.Books, book))
			r.store.Insert(g)
		}
	}
	setField(undo, &book.Genres, genres)
}

func (r *Repository) CreateBook(ctx context.Context, in BookInput) (*Book, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	genres, err := r.resolveGenres(in.Genres)
	if err != nil {
		return nil, err
	}

	book := &Book{
		ID:            r.newID(),
		Seq:           r.nextSeq(),
		Title:         strings.TrimSpace(in.Title),
		Author:        strings.TrimSpace(in.Author),
		PublishedYear: *in.PublishedYear,
		Cover:         slices.Clone(in.Cover),
	}

	var undo undoLog
	setField(&undo, &r.books, appendTo(r.books, book))
	setIndex(&undo, r.bookIdx, book.ID, book)
	r.linkGenres(&undo, book, genres)
	r.store.Insert(book)

	if err := r.commit(ctx, "book_create", undo, book, fmt.Sprintf("Created '%s' by %s", book.Title, book.Author)); err != nil {
		return nil, err
	}
	return book, nil
}

func (r *Repository) UpdateBook(ctx context.Context, book *Book, in BookInput) error {
	if err := in.validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	b, err := r.lookupBook(book)
	if err != nil {
		return err
	}
	genres, err := r.resolveGenres(in.Genres)
	if err != nil {
		return err
	}

	var undo undoLog
	setField(&undo, &b.Title, strings.TrimSpace(in.Title))
	setField(&undo, &b.Author, strings.TrimSpace(in.Author))
	setField(&undo, &b.PublishedYear, *in.PublishedYear)
	if !in.KeepCover {
		setField(&undo, &b.Cover, slices.Clone(in.Cover))
	}
	r.linkGenres(&undo, b, genres)
	r.store.Insert(b)

	return r.commit(ctx, "book_update", undo, b, fmt.Sprintf("Updated '%s' by %s", b.Title, b.Author))
}

// DeleteBook removes the book, deletes its notes and drops it from every
// genre. The genres themselves are kept.
func (r *Repository) DeleteBook(ctx context.Context, book *Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, err := r.lookupBook(book)
	if err != nil {
		return err
	}

	var undo undoLog
	for _, n := range b.Notes {
		removeIndex(&undo, r.noteIdx, n.ID)
		r.store.Delete(n)
	}
	for _, g := range b.Genres {
		setField(&undo, &g.Books, without(g.Books, b))
	}
	setField(&undo, &r.books, without(r.books, b))
	removeIndex(&undo, r.bookIdx, b.ID)
	r.store.Delete(b)

	return r.commit(ctx, "book_delete", undo, b,
		fmt.Sprintf("Deleted '%s' by %s with %d notes", b.Title, b.Author, len(b.Notes)))
}

// CreateGenre adds a genre. Names are not required to be unique.
func (r *Repository) CreateGenre(ctx context.Context, name string, color []byte) (*Genre, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	genre := &Genre{
		ID:    r.newID(),
		Seq:   r.nextSeq(),
		Name:  name,
		Color: slices.Clone(color),
	}

	var undo undoLog
	setField(&undo, &r.genres, appendTo(r.genres, genre))
	setIndex(&undo, r.genreIdx, genre.ID, genre)
	r.store.Insert(genre)

	if err := r.commit(ctx, "genre_create", undo, genre, fmt.Sprintf("Created genre '%s'", genre.Name)); err != nil {
		return nil, err
	}
	return genre, nil
}

// DeleteGenre removes the genre from every book that has it. Books and
// their notes are kept.
func (r *Repository) DeleteGenre(ctx context.Context, genre *Genre) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, err := r.lookupGenre(genre)
	if err != nil {
		return err
	}

	var undo undoLog
	for _, b := range g.Books {
		setField(&undo, &b.Genres, without(b.Genres, g))
		r.store.Insert(b)
	}
	setField(&undo, &g.Books, nil)
	setField(&undo, &r.genres, without(r.genres, g))
	removeIndex(&undo, r.genreIdx, g.ID)
	r.store.Delete(g)

	return r.commit(ctx, "genre_delete", undo, g, fmt.Sprintf("Deleted genre '%s'", g.Name))
}

// AddNote appends a note to an existing book.
func (r *Repository) AddNote(ctx context.Context, book *Book, title, message string) (*Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if book == nil {
		return nil, &ValidationError{Field: "book", Reason: "a note must belong to a book"}
	}
	b, ok := r.bookIdx[book.ID]
	if !ok {
		return nil, &ValidationError{Field: "book", Reason: fmt.Sprintf("book %q is not in the catalog", book.ID)}
	}

	note := &Note{
		ID:      r.newID(),
		Seq:     r.nextSeq(),
		Title:   title,
		Message: message,
		Book:    b,
	}

	var undo undoLog
	setField(&undo, &b.Notes, appendTo(b.Notes, note))
	setIndex(&undo, r.noteIdx, note.ID, note)
	r.store.Insert(note)

	if err := r.commit(ctx, "note_create", undo, note, fmt.Sprintf("Added note to '%s'", b.Title)); err != nil {
		return nil, err
	}
	return note, nil
}

func (r *Repository) DeleteNote(ctx context.Context, book *Book, note *Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, err := r.lookupBook(book)
	if err != nil {
		return err
	}
	if note == nil {
		return &ValidationError{Field: "note", Reason: "is required"}
	}
	idx := slices.IndexFunc(b.Notes, func(n *Note) bool { return n.ID == note.ID })
	if idx < 0 {
		return &ValidationError{Field: "note", Reason: fmt.Sprintf("note %q does not belong to book %q", note.ID, b.ID)}
	}
	n := b.Notes[idx]

	var undo undoLog
	setField(&undo, &b.Notes, without(b.Notes, n))
	removeIndex(&undo, r.noteIdx, n.ID)
	r.store.Delete(n)

	return r.commit(ctx, "note_delete", undo, n, fmt.Sprintf("Deleted note from '%s'", b.Title))
}

// SetCover replaces the cover of a book. It returns ErrNotFound when the
// book is no longer in the catalog.
func (r *Repository) SetCover(ctx context.Context, bookID string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookIdx[bookID]
	if !ok {
		return notFound(KindBook, bookID)
	}

	var undo undoLog
	setField(&undo, &b.Cover, slices.Clone(data))
	r.store.Insert(b)

	return r.commit(ctx, "cover_update", undo, b, fmt.Sprintf("Set cover of '%s' (%d bytes)", b.Title, len(data)))
}

// Snapshot returns a deep copy of the whole graph.
func (r *Repository) Snapshot() *Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return newSnapshot(r.books, r.genres)
}

func (r *Repository) Book(id string) (*Book, error) {
	return r.Snapshot().Book(id)
}

func (r *Repository) Genre(id string) (*Genre, error) {
	return r.Snapshot().Genre(id)
}

func (r *Repository) Note(id string) (*Note, error) {
	return r.Snapshot().Note(id)
}
