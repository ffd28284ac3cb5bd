package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const defaultMaxBodyBytes = 1 << 20

// MaxBodyBytes caps the request body; oversized reads fail inside the
// JSON bind and surface as a bad request.
func MaxBodyBytes(max int64) gin.HandlerFunc {
	if max <= 0 {
		max = defaultMaxBodyBytes
	}

	return func(ctx *gin.Context) {
		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, max)

		ctx.Next()
	}
}
