// Package response provides the JSON response envelope for HTTP handlers.
//
// Every payload carries a success flag. Successful responses merge their
// data at the top level of the envelope; failed responses carry a single
// error message:
//
//	{"success": true, "answer": "...", "sources": [...]}
//	{"success": false, "error": "Question is required"}
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// H is a shortcut for envelope fields.
type H = map[string]any

// OK writes a success envelope with the given top-level fields.
func OK(c *gin.Context, fields H) {
	body := gin.H{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

// Data writes a success envelope wrapping data under the "data" key.
func Data(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

// Error writes a failure envelope with the given HTTP status.
func Error(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": false, "error": msg})
}

// BadRequest writes a 400 failure envelope.
func BadRequest(c *gin.Context, msg string) {
	Error(c, http.StatusBadRequest, msg)
}

// InternalError writes a 500 failure envelope.
func InternalError(c *gin.Context, msg string) {
	Error(c, http.StatusInternalServerError, msg)
}
