package middleware

import (
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"voice-type/internal/api/errors"
)

// BodySizeLimit caps the request body at limit bytes. Requests declaring a
// larger Content-Length are rejected up front; others fail while being read.
func BodySizeLimit(limit int64) gin.HandlerFunc {
	detail := "Uploaded file exceeds the " + humanize.Bytes(uint64(limit)) + " limit"

	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			HandleError(c, errors.NewPayloadTooLargeError(detail))
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
