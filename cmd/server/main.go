// Package main 是应用程序的入口点。
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"talent-match-go/internal/config"
	"talent-match-go/internal/handler"
	"talent-match-go/internal/metrics"
	"talent-match-go/internal/middleware"
	"talent-match-go/internal/pipeline"
	"talent-match-go/internal/repository"
	"talent-match-go/internal/service"
	"talent-match-go/pkg/database"
	"talent-match-go/pkg/embedding"
	"talent-match-go/pkg/invoke"
	"talent-match-go/pkg/kafka"
	"talent-match-go/pkg/llm"
	"talent-match-go/pkg/log"
	"talent-match-go/pkg/token"
)

var cfgFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "server",
		Short: "人才匹配 HTTP 服务",
		Run: func(_ *cobra.Command, _ []string) {
			serve()
		},
	}
	rootCmd.Flags().StringVar(&cfgFile, "config", "./configs/config.yaml", "配置文件路径")
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serve() {
	// 1. 初始化配置
	config.Init(cfgFile)
	cfg := config.Conf

	// 2. 初始化日志记录器和监控指标
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync()
	log.Info("日志记录器初始化成功")
	metrics.Register()

	// 3. 初始化数据库和 Redis
	database.InitMySQL(cfg.Database.MySQL.DSN)
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	if err := database.AutoMigrate(database.DB); err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}

	// 4. 模型调用客户端，所有调用共用同一个限流闸门
	invoker := invoke.NewClient(invoke.Options{
		Gate:        invoke.NewIntervalGate(cfg.Invocation.MinInterval()),
		RetryDelays: cfg.Invocation.RetryDelays(),
	})
	embeddingClient := embedding.NewClient(cfg.Embedding, invoker)
	llmClient := llm.NewClient(cfg.LLM, invoker)

	// 5. 初始化 Repository
	userRepo := repository.NewUserRepository(database.DB)
	embeddingRepo := repository.NewEmbeddingRepository(database.DB)
	matchRepo := repository.NewMatchRepository(database.DB)
	swipeRepo := repository.NewSwipeRepository(database.DB)
	conversationRepo := repository.NewConversationRepository(database.DB)
	analysisCache := repository.NewAnalysisCache(database.RDB, cfg.Matching.AnalysisCacheTTL())
	blacklist := repository.NewTokenBlacklist(database.RDB)

	// 6. 初始化 Kafka 生产者
	producer := kafka.NewProducer(cfg.Kafka)
	defer func() {
		if err := producer.Close(); err != nil {
			log.Warnf("关闭 Kafka 生产者失败: %v", err)
		}
	}()

	// 7. 初始化 Service (依赖注入)
	jwtManager := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpireHours, cfg.JWT.RefreshTokenExpireDays)
	syncer := service.NewEmbeddingSyncService(userRepo, embeddingRepo, embeddingClient, cfg.Embedding.Model, cfg.Matching.SyncPacing())
	analyzer := service.NewPromptAnalyzer(llmClient, analysisCache)
	userService := service.NewUserService(userRepo, blacklist, producer, jwtManager)
	matchService := service.NewMatchService(matchRepo, embeddingRepo, swipeRepo, userRepo, analyzer, syncer, embeddingClient, llmClient, cfg.Matching)
	swipeService := service.NewSwipeService(matchRepo, swipeRepo, conversationRepo)
	conversationService := service.NewConversationService(conversationRepo)
	adminService := service.NewAdminService(userRepo, embeddingRepo, syncer)

	// 8. 启动后台 Kafka 消费者，处理画像向量重建任务
	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	defer stopConsumer()
	consumer := kafka.NewConsumer(cfg.Kafka, pipeline.NewProcessor(syncer), database.RDB)
	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		consumer.Run(consumerCtx)
	}()

	// 9. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	userHandler := handler.NewUserHandler(userService)
	matchHandler := handler.NewMatchHandler(matchService, swipeService)
	authMiddleware := middleware.AuthMiddleware(jwtManager, userService)

	// 10. 注册路由
	apiV1 := r.Group("/api/v1")
	{
		auth := apiV1.Group("/auth")
		{
			auth.POST("/refreshToken", handler.NewAuthHandler(userService).RefreshToken)
		}

		users := apiV1.Group("/users")
		{
			// 无需认证的路由
			users.POST("/register", userHandler.Register)
			users.POST("/login", userHandler.Login)

			authed := users.Group("/")
			authed.Use(authMiddleware)
			{
				authed.GET("/me", userHandler.GetProfile)
				authed.PUT("/profile", userHandler.UpdateProfile)
				authed.POST("/logout", userHandler.Logout)
				authed.GET("/conversations", handler.NewConversationHandler(conversationService).GetConversations)
			}
		}

		matches := apiV1.Group("/matches")
		matches.Use(authMiddleware)
		{
			matches.POST("", matchHandler.StartSearch)
			matches.GET("", matchHandler.ListHistory)
			matches.GET("/:id", matchHandler.GetMatches)
			matches.POST("/swipe", matchHandler.Swipe)
		}

		admin := apiV1.Group("/admin")
		// 管理员路由组，需要同时通过认证和管理员授权两个中间件
		admin.Use(authMiddleware, middleware.AdminAuthMiddleware())
		{
			adminHandler := handler.NewAdminHandler(adminService)
			admin.GET("/users/list", adminHandler.ListUsers)
			admin.POST("/embeddings/sync", adminHandler.SyncEmbeddings)
		}
	}

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("HTTP 服务器关闭失败: %v", err)
	}

	stopConsumer()
	select {
	case <-consumerDone:
	case <-ctx.Done():
		log.Warnf("等待 Kafka 消费者退出超时")
	}
	log.Info("服务已优雅关闭")
}
