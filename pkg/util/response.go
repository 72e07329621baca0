// Package util holds small helpers shared by handlers and middleware
package util

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestID returns the ID set by the request ID middleware or an empty string
func RequestID(c *gin.Context) string {
	return c.GetString("requestID")
}

// Abort stops the chain and answers with {"error": msg, "requestID": ...}
func Abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":     msg,
		"requestID": RequestID(c),
	})
}

// Internal logs err with the request ID and answers with a generic 500.
// The caller never sees the underlying error.
func Internal(c *gin.Context, err error, logMsg string) {
	zap.L().Error(logMsg, zap.Error(err), zap.String("requestID", RequestID(c)))
	Abort(c, http.StatusInternalServerError, "Internal server error")
}
