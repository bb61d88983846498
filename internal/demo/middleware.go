package demo

import (
	"log"
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

// ContextKeyDemoMode stores the demo flag on the request context.
const ContextKeyDemoMode = "demo_mode"

// ReadOnlyMethods are the request methods a demo catalog still serves.
var ReadOnlyMethods = []string{http.MethodGet, http.MethodHead, http.MethodOptions}

// Middleware keeps a public demo catalog read-only.
type Middleware struct {
	enabled  bool
	rejected atomic.Int64
}

func NewMiddleware(enabled bool) *Middleware {
	return &Middleware{enabled: enabled}
}

func (m *Middleware) IsEnabled() bool {
	return m != nil && m.enabled
}

// Rejected reports how many writes were refused since startup.
func (m *Middleware) Rejected() int64 {
	if m == nil {
		return 0
	}
	return m.rejected.Load()
}

// Handler flags the request context and refuses anything that would
// change the catalog.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		enabled := m.IsEnabled()
		c.Set(ContextKeyDemoMode, enabled)

		if !enabled || lo.Contains(ReadOnlyMethods, c.Request.Method) {
			c.Next()
			return
		}

		m.rejected.Add(1)
		log.Printf("[DEMO] Rejected %s %s", c.Request.Method, c.Request.URL.Path)
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":     "The demo catalog is read-only",
			"code":      "demo_mode",
			"demo_mode": true,
		})
	}
}

// FromContext reports whether the request went through an enabled
// demo middleware.
func FromContext(c *gin.Context) bool {
	return c.GetBool(ContextKeyDemoMode)
}
