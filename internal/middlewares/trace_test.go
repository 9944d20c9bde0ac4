package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logger "github.com/Gopher0727/LineDesk/middleware/log"
)

func newTraceEnv(capture *string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(TraceMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		*capture = logger.GetTraceID(c.Request.Context())
		c.Status(http.StatusOK)
	})
	return r
}

func TestTraceMiddleware_GeneratesID(t *testing.T) {
	var seen string
	r := newTraceEnv(&seen)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	// 没带头则生成一个 UUID，写回响应头并进入请求 context
	require.Len(t, w.Header().Get(TraceIDHeader), 36)
	assert.Equal(t, w.Header().Get(TraceIDHeader), seen)
}

func TestTraceMiddleware_ReusesClientID(t *testing.T) {
	var seen string
	r := newTraceEnv(&seen)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(TraceIDHeader, "client-trace-1")
	r.ServeHTTP(w, req)

	assert.Equal(t, "client-trace-1", w.Header().Get(TraceIDHeader))
	assert.Equal(t, "client-trace-1", seen)
}
