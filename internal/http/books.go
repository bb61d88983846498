package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookcatalog/internal/catalog"
	"github.com/mrlokans/bookcatalog/internal/exporters"
)

type BooksController struct {
	catalog Catalog
}

func NewBooksController(catalog Catalog) *BooksController {
	return &BooksController{
		catalog: catalog,
	}
}

type bookRequest struct {
	Title         string   `json:"title"`
	Author        string   `json:"author"`
	PublishedYear *int     `json:"published_year"`
	GenreIDs      []string `json:"genre_ids"`
}

func (r bookRequest) input() catalog.BookInput {
	return catalog.BookInput{
		Title:         r.Title,
		Author:        r.Author,
		PublishedYear: r.PublishedYear,
		Genres:        catalog.GenreRefs(r.GenreIDs...),
	}
}

// ListBooks returns books matching the search text in the requested order.
// GET /api/books?q=&sort=
func (controller *BooksController) ListBooks(c *gin.Context) {
	opt, err := catalog.ParseSortOption(c.Query("sort"))
	if err != nil {
		respondCatalogError(c, err, "list books")
		return
	}

	books := controller.catalog.Snapshot().ListBooks(c.Query("q"), opt)
	c.JSON(http.StatusOK, gin.H{"books": newBookViews(books), "count": len(books)})
}

// GetBook returns a book with its notes.
// GET /api/books/:id
func (controller *BooksController) GetBook(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	book, err := controller.catalog.Book(id)
	if err != nil {
		respondCatalogError(c, err, "get book")
		return
	}
	c.JSON(http.StatusOK, newBookDetailView(book))
}

// CreateBook adds a book.
// POST /api/books
func (controller *BooksController) CreateBook(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	created, err := controller.catalog.CreateBook(c.Request.Context(), req.input())
	if err != nil {
		respondCatalogError(c, err, "create book")
		return
	}

	book, err := controller.catalog.Book(created.ID)
	if err != nil {
		respondCatalogError(c, err, "create book")
		return
	}
	respondCreated(c, newBookDetailView(book))
}

// UpdateBook replaces the editable fields of a book. The cover is left as
// it is; it has its own endpoints.
// PUT /api/books/:id
func (controller *BooksController) UpdateBook(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	in := req.input()
	in.KeepCover = true
	if err := controller.catalog.UpdateBook(c.Request.Context(), &catalog.Book{ID: id}, in); err != nil {
		respondCatalogError(c, err, "update book")
		return
	}

	book, err := controller.catalog.Book(id)
	if err != nil {
		respondCatalogError(c, err, "update book")
		return
	}
	c.JSON(http.StatusOK, newBookDetailView(book))
}

// DeleteBook removes a book together with its notes.
// DELETE /api/books/:id
func (controller *BooksController) DeleteBook(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := controller.catalog.DeleteBook(c.Request.Context(), &catalog.Book{ID: id}); err != nil {
		respondCatalogError(c, err, "delete book")
		return
	}
	respondSuccess(c, "book deleted")
}

// GetMarkdown renders a single book the way the export writes it.
// GET /api/books/:id/markdown
func (controller *BooksController) GetMarkdown(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	book, err := controller.catalog.Book(id)
	if err != nil {
		respondCatalogError(c, err, "render markdown")
		return
	}

	content, err := exporters.GenerateMarkdown(book)
	if err != nil {
		respondInternalError(c, err, "render markdown")
		return
	}
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(content))
}
