package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimit returns middleware enforcing a fixed-window per-minute limit
// per client IP. State lives in process memory; the default deployment
// runs without a database.
func RateLimit(perMinute int) gin.HandlerFunc {
	var (
		mu          sync.Mutex
		counts      = make(map[string]int)
		windowStart = time.Now()
	)

	return func(c *gin.Context) {
		ip := c.ClientIP()

		mu.Lock()
		if time.Since(windowStart) >= time.Minute {
			counts = make(map[string]int)
			windowStart = time.Now()
		}
		counts[ip]++
		count := counts[ip]
		mu.Unlock()

		if count > perMinute {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "too many requests, please wait",
			})
			return
		}

		c.Next()
	}
}
