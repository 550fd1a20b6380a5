package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-console/pkg/errors"
	"github.com/jwalitptl/clinic-console/pkg/httputil"
)

const DefaultMaxBodySize = 1 << 20

// SizeLimit rejects declared oversize bodies up front and caps the reader
// for the rest.
func SizeLimit(maxBytes int64) gin.HandlerFunc {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodySize
	}
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			err := errors.BadRequest(fmt.Sprintf("request body exceeds %d bytes", maxBytes), nil)
			c.AbortWithStatusJSON(http.StatusBadRequest, httputil.Failure[interface{}](err))
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
