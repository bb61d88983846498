package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookcatalog/internal/catalog"
	"github.com/mrlokans/bookcatalog/internal/utils"
)

type GenresController struct {
	catalog Catalog
}

func NewGenresController(catalog Catalog) *GenresController {
	return &GenresController{catalog: catalog}
}

// ListGenres returns all genres in creation order, or reversed.
// GET /api/genres?order=forward|reverse
func (gc *GenresController) ListGenres(c *gin.Context) {
	order, err := catalog.ParseGenreSortOrder(c.Query("order"))
	if err != nil {
		respondCatalogError(c, err, "list genres")
		return
	}

	genres := gc.catalog.Snapshot().ListGenres(order)
	views := make([]GenreView, 0, len(genres))
	for _, g := range genres {
		views = append(views, newGenreView(g))
	}
	c.JSON(http.StatusOK, gin.H{"genres": views, "count": len(views)})
}

// CreateGenre creates a new genre. Names need not be unique.
// POST /api/genres
func (gc *GenresController) CreateGenre(c *gin.Context) {
	var req struct {
		Name  string `json:"name"`
		Color string `json:"color"` // #AARRGGBB
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	color, err := utils.ParseHexColor(req.Color)
	if err != nil {
		respondValidation(c, "color", err.Error())
		return
	}

	created, err := gc.catalog.CreateGenre(c.Request.Context(), req.Name, color)
	if err != nil {
		respondCatalogError(c, err, "create genre")
		return
	}

	genre, err := gc.catalog.Genre(created.ID)
	if err != nil {
		respondCatalogError(c, err, "create genre")
		return
	}
	respondCreated(c, newGenreView(genre))
}

// DeleteGenre removes a genre. Its books stay in the catalog.
// DELETE /api/genres/:id
func (gc *GenresController) DeleteGenre(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := gc.catalog.DeleteGenre(c.Request.Context(), &catalog.Genre{ID: id}); err != nil {
		respondCatalogError(c, err, "delete genre")
		return
	}
	respondSuccess(c, "genre deleted")
}

// GetGenreBooks lists the books of a genre in the order they joined it.
// GET /api/genres/:id/books
func (gc *GenresController) GetGenreBooks(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	snapshot := gc.catalog.Snapshot()
	genre, err := snapshot.Genre(id)
	if err != nil {
		respondCatalogError(c, err, "genre books")
		return
	}

	books := snapshot.ListBooksForGenre(genre)
	c.JSON(http.StatusOK, gin.H{
		"genre": newGenreView(genre),
		"books": newBookViews(books),
		"count": len(books),
	})
}
