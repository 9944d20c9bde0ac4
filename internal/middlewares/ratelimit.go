package middlewares

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Gopher0727/LineDesk/utils/ratelimit"
)

// RateLimitMiddleware 按客户端 IP 限流
// scope 区分不同入口（webhook / api），各自独立计数
func RateLimitMiddleware(limiter ratelimit.Limiter, scope string, perMinute int) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := scope + ":" + c.ClientIP()

		allowed, err := limiter.Allow(c.Request.Context(), key, perMinute, time.Minute)
		if err != nil || !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{"success": false, "error": "请求过于频繁，请稍后再试"})
			c.Abort()
			return
		}
		c.Next()
	}
}
