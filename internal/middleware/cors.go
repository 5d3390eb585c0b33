// internal/middleware/cors.go
package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS allows credentialed requests from the configured origins, which the
// session cookie needs.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	config := cors.DefaultConfig()
	config.AllowOrigins = allowedOrigins
	config.AllowCredentials = true
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "Accept-Language", RequestIDHeader}
	config.ExposeHeaders = []string{"X-Total-Count", "X-Total-Pages", "Link", RequestIDHeader}
	config.MaxAge = 12 * time.Hour
	return cors.New(config)
}
