package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// stale client entries are pruned lazily once the map grows past this
const rateLimitMaxClients = 1024

type rateLimitEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimit applies a per-client-IP token bucket. Used on the auth
// endpoints to slow down confirmation-code guessing.
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	var mu sync.Mutex
	clients := make(map[string]*rateLimitEntry)

	return func(c *gin.Context) {
		ip := c.ClientIP()

		mu.Lock()
		entry, ok := clients[ip]
		if !ok {
			if len(clients) >= rateLimitMaxClients {
				for key, e := range clients {
					if time.Since(e.lastSeen) > 10*time.Minute {
						delete(clients, key)
					}
				}
			}
			entry = &rateLimitEntry{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
			clients[ip] = entry
		}
		entry.lastSeen = time.Now()
		mu.Unlock()

		if !entry.limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			c.Abort()
			return
		}
		c.Next()
	}
}
