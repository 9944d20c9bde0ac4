package main

import (
	"context"
	"log"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/line/line-bot-sdk-go/v7/linebot"
	redis "github.com/redis/go-redis/v9"

	"github.com/Gopher0727/LineDesk/config"
	"github.com/Gopher0727/LineDesk/internal/handlers"
	"github.com/Gopher0727/LineDesk/internal/repositories"
	"github.com/Gopher0727/LineDesk/internal/routers"
	"github.com/Gopher0727/LineDesk/internal/services"
	"github.com/Gopher0727/LineDesk/internal/sheetstore"
	"github.com/Gopher0727/LineDesk/internal/utils"
	"github.com/Gopher0727/LineDesk/middleware/jwt"
	logger "github.com/Gopher0727/LineDesk/middleware/log"
	"github.com/Gopher0727/LineDesk/pkg/cache"
	"github.com/Gopher0727/LineDesk/utils/ratelimit"
)

func main() {
	cfg, err := config.LoadConfig("./config.toml")
	if err != nil {
		log.Fatalf("配置初始化失败: %v", err)
	}

	appLogger, err := logger.NewLogger(&cfg.Logging)
	if err != nil {
		log.Fatalf("日志初始化失败: %v", err)
	}
	defer appLogger.Close()

	// 初始化 Redis（可降级：缓存直读存储、不限流）
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(&cfg.Redis)
		if err != nil {
			log.Printf("Redis 初始化失败: %v。系统将以降级模式运行（无缓存、不限流）。", err)
			redisClient = nil
		}
	}
	appCache := cache.New(redisClient)
	limiter := ratelimit.NewWindowLimiter(redisClient, appLogger.Logger, true)

	// 初始化表格存储后端
	var store sheetstore.RowStore
	switch cfg.Sheets.Backend {
	case "memory":
		// 本地开发模式：空表起步
		mem := sheetstore.NewMemStore()
		mem.Seed(cfg.Sheets.MembersSheet, [][]string{
			{"userId", "plan", "status", "startAt", "expireAt", "lineName", "state", "contactPhone", "paymentMethod", "paymentTime"},
		})
		mem.Seed(cfg.Sheets.PhoneSheet, [][]string{make([]string, 48)})
		mem.Seed(cfg.Sheets.RiskSheet, [][]string{make([]string, 26)})
		mem.Seed(cfg.Sheets.LineOASheet, [][]string{
			{"timestamp", "userId", "displayName", "profileUrl", "messageType", "messageText"},
		})
		store = mem
	default:
		store, err = sheetstore.NewGoogleStore(context.Background(), &cfg.Sheets)
		if err != nil {
			log.Fatalf("Google Sheets 初始化失败: %v", err)
		}
	}

	// 初始化 Worker Pool（后台对账用）
	pool := utils.NewWorkerPool(cfg.Sync.Workers, cfg.Sync.QueueSize)
	pool.Start()
	defer pool.Stop()

	// 初始化仓储层
	memberRepo := repositories.NewMemberRepo(store, appCache, cfg)
	recordRepo := repositories.NewRecordRepo(store, appCache, cfg)

	// 初始化服务层
	tokenManager := jwt.NewTokenManager(cfg.Auth.Secret, cfg.Auth.ExpireHours, cfg.Auth.RefreshHours)
	memberService := services.NewMemberService(memberRepo, recordRepo)
	recordService := services.NewRecordService(recordRepo, memberRepo)
	syncService := services.NewSyncService(memberRepo, recordRepo, pool, appLogger)
	authService := services.NewAuthService(&cfg.Auth, tokenManager)

	// 初始化 LINE 客户端（没配 access token 时 webhook 只验签、不拉 profile）
	var profiles handlers.ProfileProvider
	if cfg.Line.ChannelAccessToken != "" {
		bot, err := linebot.New(cfg.Line.ChannelSecret, cfg.Line.ChannelAccessToken)
		if err != nil {
			log.Fatalf("LINE 客户端初始化失败: %v", err)
		}
		profiles = &handlers.LineProfileProvider{Client: bot}
	}
	parser := &handlers.LineEventParser{ChannelSecret: cfg.Line.ChannelSecret}

	// 初始化处理器
	authHandler := handlers.NewAuthHandler(authService)
	memberHandler := handlers.NewMemberHandler(memberService, syncService)
	recordHandler := handlers.NewRecordHandler(recordService, syncService)
	webhookHandler := handlers.NewWebhookHandler(parser, profiles, recordService, appLogger)

	// 配置并创建 Gin 引擎
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())

	routers.SetupRoutes(r, cfg, appLogger, tokenManager, limiter,
		authHandler, memberHandler, recordHandler, webhookHandler)

	// 启动服务器
	log.Printf("正在启动服务器，监听端口 :%d\n", cfg.Server.Port)
	if err := r.Run(":" + strconv.FormatInt(int64(cfg.Server.Port), 10)); err != nil {
		log.Fatalf("启动服务器失败: %v", err)
	}
}
