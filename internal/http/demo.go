package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookcatalog/internal/demo"
)

// DemoController reports whether the catalog is a read-only demo.
type DemoController struct {
	middleware *demo.Middleware
}

func NewDemoController(middleware *demo.Middleware) *DemoController {
	return &DemoController{middleware: middleware}
}

type DemoStatusResponse struct {
	Enabled        bool     `json:"enabled"`
	Message        string   `json:"message"`
	AllowedMethods []string `json:"allowed_methods,omitempty"`
	RejectedWrites int64    `json:"rejected_writes"`
}

// GetStatus handles GET /api/demo/status.
func (dc *DemoController) GetStatus(c *gin.Context) {
	if !demo.FromContext(c) {
		c.JSON(http.StatusOK, DemoStatusResponse{Message: "Demo mode is not active"})
		return
	}

	c.JSON(http.StatusOK, DemoStatusResponse{
		Enabled:        true,
		Message:        "Demo mode is active, the catalog is read-only",
		AllowedMethods: demo.ReadOnlyMethods,
		RejectedWrites: dc.middleware.Rejected(),
	})
}
