package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	logger "github.com/Gopher0727/LineDesk/middleware/log"
)

const TraceIDHeader = "X-Trace-ID"

// TraceMiddleware 给每个请求发 trace id，塞进 context 供日志串联
// 客户端带了 X-Trace-ID 就沿用，没带就生成
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(TraceIDHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		ctx := logger.WithTraceID(c.Request.Context(), traceID)
		c.Request = c.Request.WithContext(ctx)
		c.Header(TraceIDHeader, traceID)

		c.Next()
	}
}
