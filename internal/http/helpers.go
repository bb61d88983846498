package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookcatalog/internal/catalog"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // additional context (validation errors, etc.)
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// PaginatedResponse wraps paginated data with metadata.
type PaginatedResponse struct {
	Data       any   `json:"data"`
	Total      int64 `json:"total"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
	HasMore    bool  `json:"has_more"`
	TotalPages int   `json:"total_pages,omitempty"`
}

const (
	CodeValidation  = "validation_error"
	CodeNotFound    = "not_found"
	CodePersistence = "persistence_error"
	CodeUnavailable = "unavailable"
)

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found", Code: CodeNotFound})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// respondCatalogError maps catalog errors onto status codes: rejected input
// is a 400, unknown IDs a 404 and failed commits a 500.
func respondCatalogError(c *gin.Context, err error, context string) {
	var validation *catalog.ValidationError
	var persistence *catalog.PersistenceError

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   validation.Error(),
			Code:    CodeValidation,
			Details: gin.H{"field": validation.Field},
		})
	case errors.Is(err, catalog.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: CodeNotFound})
	case errors.As(err, &persistence):
		log.Printf("Persistence error (%s): %v", context, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "changes could not be saved",
			Code:  CodePersistence,
		})
	default:
		respondInternalError(c, err, context)
	}
}

// respondValidation sends a 400 for a single rejected field.
func respondValidation(c *gin.Context, field, reason string) {
	respondCatalogError(c, &catalog.ValidationError{Field: field, Reason: reason}, "")
}

// --- Success Response Helpers ---

// respondSuccess sends a 200 OK response with a message.
func respondSuccess(c *gin.Context, message string) {
	c.JSON(http.StatusOK, SuccessResponse{Message: message})
}

// respondCreated sends a 201 Created response with data.
func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// respondAccepted sends a 202 Accepted response (for async operations).
func respondAccepted(c *gin.Context, message string, data any) {
	c.JSON(http.StatusAccepted, SuccessResponse{Message: message, Data: data})
}

// --- Parameter Parsing ---

// idParam returns a non-empty path parameter or responds with a 400.
func idParam(c *gin.Context, name string) (string, bool) {
	id := c.Param(name)
	if id == "" {
		respondBadRequest(c, name+" is required")
		return "", false
	}
	return id, true
}
