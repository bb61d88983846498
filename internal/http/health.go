package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookcatalog/internal/catalog"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Uptime  string            `json:"uptime"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
	Catalog *catalog.Stats    `json:"catalog,omitempty"`
}

type HealthController struct {
	catalog Catalog
	db      Pinger
	queue   TaskQueue
	workers int
	version string
	started time.Time
}

func NewHealthController(cfg RouterConfig) *HealthController {
	return &HealthController{
		catalog: cfg.Catalog,
		db:      cfg.Database,
		queue:   cfg.TaskQueue,
		workers: cfg.TaskWorkers,
		version: cfg.Version,
		started: time.Now(),
	}
}

// Status answers 503 when the database cannot be reached. A missing task
// queue only shows up in the checks.
func (h *HealthController) Status(c *gin.Context) {
	resp := HealthResponse{
		Status:  "healthy",
		Time:    time.Now().Format(time.RFC3339),
		Uptime:  time.Since(h.started).Round(time.Second).String(),
		Version: h.version,
		Checks:  map[string]string{},
	}

	if h.db == nil {
		resp.Checks["database"] = "not configured"
	} else if err := h.db.Ping(); err != nil {
		resp.Checks["database"] = "error: " + err.Error()
		resp.Status = "unhealthy"
	} else {
		resp.Checks["database"] = "ok"
	}

	if h.queue == nil {
		resp.Checks["tasks"] = "disabled"
	} else {
		resp.Checks["tasks"] = "ok"
		resp.Checks["task_workers"] = fmt.Sprint(h.workers)
	}

	if h.catalog != nil {
		stats := h.catalog.Snapshot().Stats()
		resp.Catalog = &stats
	}

	code := http.StatusOK
	if resp.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	c.IndentedJSON(code, resp)
}

func (h *HealthController) Ping(c *gin.Context) {
	c.String(http.StatusOK, "pong")
}
