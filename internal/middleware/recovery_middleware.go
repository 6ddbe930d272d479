// internal/middleware/recovery_middleware.go
package middleware

import (
	xerrors "lsa-service/internal/pkg/errors"
	"lsa-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecoveryMiddleware turns a handler panic into a standard 500 envelope. The
// panic value stays in the log; the client only ever sees ErrInternal.
func RecoveryMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					zap.Any("panic", r),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
				)
				response.FromError(c, "internal server error", xerrors.ErrInternal)
			}
		}()
		c.Next()
	}
}
