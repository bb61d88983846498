package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.Use(cfg.DemoMiddleware.Handler())

	queue := cfg.TaskQueue

	health := NewHealthController(cfg)
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	api := router.Group("/api")

	catalogController := NewCatalogController(cfg.Catalog)
	api.GET("/sort-options", catalogController.GetSortOptions)
	api.GET("/stats", catalogController.GetStats)

	books := NewBooksController(cfg.Catalog)
	api.GET("/books", books.ListBooks)
	api.POST("/books", books.CreateBook)
	api.GET("/books/:id", books.GetBook)
	api.PUT("/books/:id", books.UpdateBook)
	api.DELETE("/books/:id", books.DeleteBook)
	api.GET("/books/:id/markdown", books.GetMarkdown)

	notes := NewNotesController(cfg.Catalog)
	api.GET("/books/:id/notes", notes.ListNotes)
	api.POST("/books/:id/notes", notes.AddNote)
	api.DELETE("/books/:id/notes/:noteId", notes.DeleteNote)

	coversController := NewCoversController(cfg.Catalog, queue, cfg.MaxCoverBytes)
	api.GET("/books/:id/cover", coversController.GetCover)
	api.PUT("/books/:id/cover", coversController.PutCover)
	api.DELETE("/books/:id/cover", coversController.DeleteCover)
	api.POST("/books/:id/cover/fetch", coversController.FetchCover)

	genres := NewGenresController(cfg.Catalog)
	api.GET("/genres", genres.ListGenres)
	api.POST("/genres", genres.CreateGenre)
	api.DELETE("/genres/:id", genres.DeleteGenre)
	api.GET("/genres/:id/books", genres.GetGenreBooks)

	exportController := NewExportController(cfg.Catalog, cfg.Exporter, cfg.ExportReporter, queue)
	api.POST("/export", exportController.Export)

	if cfg.History != nil {
		auditController := NewAuditController(cfg.History)
		api.GET("/audit", auditController.GetAuditEvents)
		api.GET("/audit/:kind/:id", auditController.GetEntityHistory)
	}

	if queue != nil {
		tasksController := NewTasksController(queue, cfg.TaskWorkers)
		api.GET("/tasks/types", tasksController.ListTaskTypes)
		api.GET("/tasks/:id", tasksController.GetTaskStatus)
	}

	demoController := NewDemoController(cfg.DemoMiddleware)
	api.GET("/demo/status", demoController.GetStatus)

	return router
}
