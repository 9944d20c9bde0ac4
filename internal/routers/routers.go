package routers

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	appconfig "github.com/Gopher0727/LineDesk/config"
	"github.com/Gopher0727/LineDesk/internal/handlers"
	"github.com/Gopher0727/LineDesk/internal/middlewares"
	"github.com/Gopher0727/LineDesk/middleware/jwt"
	logger "github.com/Gopher0727/LineDesk/middleware/log"
	"github.com/Gopher0727/LineDesk/utils/ratelimit"
)

// SetupRoutes 设置所有路由
func SetupRoutes(r *gin.Engine, cfg *appconfig.Config,
	log *logger.Logger,
	tokenManager *jwt.TokenManager,
	limiter ratelimit.Limiter,
	authHandler *handlers.AuthHandler,
	memberHandler *handlers.MemberHandler,
	recordHandler *handlers.RecordHandler,
	webhookHandler *handlers.WebhookHandler,
) {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Trace-ID"}
	r.Use(cors.New(corsConfig))

	r.Use(middlewares.TraceMiddleware())
	r.Use(middlewares.LoggingMiddleware(log))

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// LINE webhook 用签名验证而不是 JWT，单独限流
	r.POST("/webhook/line",
		middlewares.RateLimitMiddleware(limiter, "webhook", cfg.RateLimit.WebhookPerMinute),
		webhookHandler.Handle)

	RegisterAuthRoutes(r, limiter, cfg, authHandler)
	RegisterAPIRoutes(r, limiter, cfg, tokenManager, memberHandler, recordHandler)
}

// RegisterAuthRoutes 登录相关路由（无需 token）
func RegisterAuthRoutes(r *gin.Engine, limiter ratelimit.Limiter, cfg *appconfig.Config, authHandler *handlers.AuthHandler) {
	authGroup := r.Group("/api/v1/auth")
	authGroup.Use(middlewares.RateLimitMiddleware(limiter, "api", cfg.RateLimit.APIPerMinute))
	{
		authGroup.POST("/login", authHandler.Login)     // 登录
		authGroup.POST("/refresh", authHandler.Refresh) // 刷新 token
	}
}

// RegisterAPIRoutes 管理端 API（JWT 保护）
func RegisterAPIRoutes(r *gin.Engine, limiter ratelimit.Limiter, cfg *appconfig.Config,
	tokenManager *jwt.TokenManager,
	memberHandler *handlers.MemberHandler,
	recordHandler *handlers.RecordHandler,
) {
	api := r.Group("/api/v1")
	api.Use(middlewares.RateLimitMiddleware(limiter, "api", cfg.RateLimit.APIPerMinute))
	api.Use(middlewares.AuthMiddleware(tokenManager))
	{
		// 会员
		api.GET("/members", memberHandler.List)            // 列表 / 单查 / ?sync=true
		api.PUT("/members/:row", memberHandler.Update)     // 编辑
		api.POST("/members/:row/topup", memberHandler.TopUp) // 加值
		api.POST("/members/ensure", memberHandler.Ensure)  // 幂等建档
		api.POST("/members/sync", memberHandler.Sync)      // 手动对账
		api.DELETE("/members/:row", memberHandler.Delete)  // 删行

		// 记录
		api.GET("/phone-records", recordHandler.PhoneRecords)
		api.GET("/risk-list", recordHandler.RiskList)
		api.PUT("/risk-list/:row", recordHandler.UpdateRisk)
		api.DELETE("/risk-list/:row", recordHandler.DeleteRisk)
		api.GET("/line-oa", recordHandler.LineOA)

		// 仪表盘
		api.GET("/stats", recordHandler.Stats)
		api.GET("/recent-data", recordHandler.RecentData)
	}
}
