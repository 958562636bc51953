package handlers

import (
	"awi/core"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// respondError writes err as {"error": ...} with the status its kind maps to.
// Server-side failures are also logged and kept in the error ring under source.
func respondError(c *gin.Context, source string, err error, extra gin.H) {
	status := core.StatusCode(err)

	message := err.Error()
	var appErr *core.AppError
	if errors.As(err, &appErr) {
		switch {
		case errors.Is(appErr.Kind, core.ErrStorage):
			message = "Database error: " + appErr.Error()
		default:
			message = appErr.Message
		}
	}

	body := gin.H{"error": message}
	for k, v := range extra {
		body[k] = v
	}

	if status >= http.StatusInternalServerError {
		log.Printf("[%s] %s %s failed: %v", requestID(c), c.Request.Method, c.FullPath(), err)
		core.LogAppError(source, err, map[string]any{
			"request_id": requestID(c),
			"path":       c.Request.URL.Path,
		})
	}

	c.JSON(status, body)
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

func requestID(c *gin.Context) string {
	return c.GetString("request_id")
}
