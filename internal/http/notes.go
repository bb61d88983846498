package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookcatalog/internal/catalog"
)

type NotesController struct {
	catalog Catalog
}

func NewNotesController(catalog Catalog) *NotesController {
	return &NotesController{catalog: catalog}
}

// ListNotes returns the notes of a book in the order they were added.
// GET /api/books/:id/notes
func (nc *NotesController) ListNotes(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	snapshot := nc.catalog.Snapshot()
	book, err := snapshot.Book(id)
	if err != nil {
		respondCatalogError(c, err, "list notes")
		return
	}

	notes := snapshot.ListNotes(book)
	c.JSON(http.StatusOK, gin.H{"notes": newNoteViews(notes), "count": len(notes)})
}

// AddNote appends a note to a book.
// POST /api/books/:id/notes
func (nc *NotesController) AddNote(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Title   string `json:"title"`
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	if _, err := nc.catalog.Book(id); err != nil {
		respondCatalogError(c, err, "add note")
		return
	}

	created, err := nc.catalog.AddNote(c.Request.Context(), &catalog.Book{ID: id}, req.Title, req.Message)
	if err != nil {
		respondCatalogError(c, err, "add note")
		return
	}

	note, err := nc.catalog.Note(created.ID)
	if err != nil {
		respondCatalogError(c, err, "add note")
		return
	}
	respondCreated(c, newNoteView(note))
}

// DeleteNote removes a note from its book.
// DELETE /api/books/:id/notes/:noteId
func (nc *NotesController) DeleteNote(c *gin.Context) {
	bookID, ok := idParam(c, "id")
	if !ok {
		return
	}
	noteID, ok := idParam(c, "noteId")
	if !ok {
		return
	}

	if _, err := nc.catalog.Note(noteID); err != nil {
		respondCatalogError(c, err, "delete note")
		return
	}

	err := nc.catalog.DeleteNote(c.Request.Context(), &catalog.Book{ID: bookID}, &catalog.Note{ID: noteID})
	if err != nil {
		respondCatalogError(c, err, "delete note")
		return
	}
	respondSuccess(c, "note deleted")
}
