package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// RequestObserver records finished requests
type RequestObserver interface {
	ObserveRequest(method, route string, status int, latency time.Duration)
}

// Metrics records method, matched route, status and latency for every
// request
func Metrics(observer RequestObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		observer.ObserveRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
