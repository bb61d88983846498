package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookcatalog/internal/tasks"
)

type ExportController struct {
	catalog  CatalogReader
	exporter tasks.BookExporter
	reporter tasks.ExportReporter
	queue    TaskQueue
}

func NewExportController(catalog CatalogReader, exporter tasks.BookExporter, reporter tasks.ExportReporter, queue TaskQueue) *ExportController {
	return &ExportController{
		catalog:  catalog,
		exporter: exporter,
		reporter: reporter,
		queue:    queue,
	}
}

// Export writes the whole catalog to markdown. With a task queue the run
// is queued and 202 is returned; otherwise it runs inline.
// POST /api/export
func (ec *ExportController) Export(c *gin.Context) {
	if ec.exporter == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "export is not configured", Code: CodeUnavailable})
		return
	}

	if ec.queue != nil {
		taskID, err := ec.queue.Enqueue(tasks.ExportCatalogTask{Trigger: "api"})
		if err != nil {
			respondInternalError(c, err, "enqueue export")
			return
		}
		respondAccepted(c, "export queued", gin.H{"task_id": taskID, "dir": ec.exporter.Dir()})
		return
	}

	result, err := tasks.RunExport(ec.catalog, ec.exporter, ec.reporter)
	if err != nil {
		respondInternalError(c, err, "export")
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "export finished", Data: result})
}
