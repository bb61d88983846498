package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookcatalog/internal/catalog"
)

// CatalogController serves catalog-wide metadata.
type CatalogController struct {
	catalog CatalogReader
}

func NewCatalogController(catalog CatalogReader) *CatalogController {
	return &CatalogController{catalog: catalog}
}

// OptionInfo is a selectable value with its display title.
type OptionInfo struct {
	Value string `json:"value"`
	Title string `json:"title"`
}

// GetSortOptions lists the book sort options and genre orders.
// GET /api/sort-options
func (cc *CatalogController) GetSortOptions(c *gin.Context) {
	sorts := make([]OptionInfo, 0, len(catalog.SortOptions))
	for _, opt := range catalog.SortOptions {
		sorts = append(sorts, OptionInfo{Value: string(opt), Title: opt.Title()})
	}
	orders := make([]OptionInfo, 0, len(catalog.GenreSortOrders))
	for _, order := range catalog.GenreSortOrders {
		orders = append(orders, OptionInfo{Value: string(order), Title: order.Title()})
	}

	c.JSON(http.StatusOK, gin.H{
		"sort_options": sorts,
		"genre_orders": orders,
	})
}

// GetStats returns entity counts.
// GET /api/stats
func (cc *CatalogController) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, cc.catalog.Snapshot().Stats())
}
