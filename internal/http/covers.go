package http

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookcatalog/internal/covers"
	"github.com/mrlokans/bookcatalog/internal/tasks"
)

const defaultMaxCoverBytes = 10 << 20

// CoversController serves and replaces book covers.
type CoversController struct {
	catalog  Catalog
	queue    TaskQueue
	maxBytes int64
}

func NewCoversController(catalog Catalog, queue TaskQueue, maxBytes int64) *CoversController {
	if maxBytes <= 0 {
		maxBytes = defaultMaxCoverBytes
	}
	return &CoversController{
		catalog:  catalog,
		queue:    queue,
		maxBytes: maxBytes,
	}
}

// GetCover serves the stored cover image.
// GET /api/books/:id/cover
func (cc *CoversController) GetCover(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	book, err := cc.catalog.Book(id)
	if err != nil {
		respondCatalogError(c, err, "get cover")
		return
	}
	if !book.HasCover() {
		respondNotFound(c, "cover")
		return
	}

	contentType, err := covers.DetectImage(book.Cover)
	if err != nil {
		contentType = "application/octet-stream"
	}
	c.Header("Cache-Control", "private, max-age=300")
	c.Data(http.StatusOK, contentType, book.Cover)
}

// PutCover replaces the cover with the image in the request body.
// PUT /api/books/:id/cover
func (cc *CoversController) PutCover(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	data, err := io.ReadAll(io.LimitReader(c.Request.Body, cc.maxBytes+1))
	if err != nil {
		respondBadRequest(c, "failed to read request body")
		return
	}
	if int64(len(data)) > cc.maxBytes {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Error: fmt.Sprintf("cover exceeds %d bytes", cc.maxBytes),
			Code:  CodeValidation,
		})
		return
	}
	if _, err := covers.DetectImage(data); err != nil {
		respondValidation(c, "cover", err.Error())
		return
	}

	if err := cc.catalog.SetCover(c.Request.Context(), id, data); err != nil {
		respondCatalogError(c, err, "put cover")
		return
	}
	respondSuccess(c, "cover updated")
}

// DeleteCover removes the cover of a book.
// DELETE /api/books/:id/cover
func (cc *CoversController) DeleteCover(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := cc.catalog.SetCover(c.Request.Context(), id, nil); err != nil {
		respondCatalogError(c, err, "delete cover")
		return
	}
	respondSuccess(c, "cover removed")
}

// FetchCover queues a background download of a cover image. The book is
// checked now; if it is deleted before the download finishes the image is
// dropped.
// POST /api/books/:id/cover/fetch
func (cc *CoversController) FetchCover(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		URL string `json:"url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	item := covers.PickedItem{URL: req.URL}
	if item.Empty() {
		respondValidation(c, "url", "is required")
		return
	}

	if _, err := cc.catalog.Book(id); err != nil {
		respondCatalogError(c, err, "fetch cover")
		return
	}

	if cc.queue == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "task queue is disabled", Code: CodeUnavailable})
		return
	}

	taskID, err := cc.queue.Enqueue(tasks.LoadCoverTask{BookID: id, Item: item})
	if err != nil {
		respondInternalError(c, err, "enqueue cover fetch")
		return
	}
	respondAccepted(c, "cover fetch queued", gin.H{"task_id": taskID})
}
