package middleware

import (
	"net/http"
	"runtime/debug"
	"taclink/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Recovery converts a handler panic into a 500 response instead of a
// dropped connection.
func Recovery() gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logrus.WithFields(logrus.Fields{
					"panic":      err,
					"stack":      string(debug.Stack()),
					"request_id": c.GetString("request_id"),
					"path":       c.Request.URL.Path,
					"method":     c.Request.Method,
				}).Error("Panic recovered")

				c.JSON(http.StatusInternalServerError, models.ErrorResponse{
					Error:   "INTERNAL_ERROR",
					Message: "Internal server error",
					Code:    "PANIC_RECOVERED",
				})
				c.Abort()
			}
		}()

		c.Next()
	})
}
