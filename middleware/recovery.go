package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/vovansuong/bao-cao-doanh-thu/dto"
	"github.com/vovansuong/bao-cao-doanh-thu/logger"
)

// Recovery turns a handler panic into a 500 JSON error.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.WithContext(c.Request.Context()).Error().
					Str("panic", fmt.Sprint(err)).
					Str("method", c.Request.Method).
					Str("path", c.Request.URL.Path).
					Str("stack", string(debug.Stack())).
					Msg("panic recovered")

				c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{
					Error:   "INTERNAL_ERROR",
					Message: "Internal server error",
					Code:    http.StatusInternalServerError,
				})
			}
		}()

		c.Next()
	}
}
