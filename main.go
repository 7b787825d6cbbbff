package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/Xushengqwer/blog_service/docs" // 确保导入了 docs 包

	// 导入项目包
	appConfig "github.com/Xushengqwer/blog_service/config"
	"github.com/Xushengqwer/blog_service/constant"
	"github.com/Xushengqwer/blog_service/controller"
	"github.com/Xushengqwer/blog_service/dependencies"
	"github.com/Xushengqwer/blog_service/middleware"
	"github.com/Xushengqwer/blog_service/mq/producer"
	"github.com/Xushengqwer/blog_service/repo/mysql"
	redisrepo "github.com/Xushengqwer/blog_service/repo/redis"
	"github.com/Xushengqwer/blog_service/router"
	"github.com/Xushengqwer/blog_service/service"
	"github.com/Xushengqwer/blog_service/tasks"

	// 导入公共模块
	sharedCore "github.com/Xushengqwer/go-common/core"
	sharedTracing "github.com/Xushengqwer/go-common/core/tracing"

	// 导入 OTel HTTP Client Instrumentation
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// @title           Blog Service API
// @version         1.0
// @description     博客服务，提供用户认证、文章、分类、评论等功能。
// @termsOfService  http://swagger.io/terms/

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8084

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description 输入 "Bearer {token}" 进行认证

// @schemes http https
func main() {
	// --- 配置和基础设置 ---
	var configFile string
	flag.StringVar(&configFile, "config", "config/config.development.yaml", "Path to configuration file")
	flag.Parse()

	// 1. 加载配置
	var cfg appConfig.BlogConfig
	if err := sharedCore.LoadConfig(configFile, &cfg); err != nil {
		log.Fatalf("FATAL: 加载配置失败 (%s): %v", configFile, err)
	}

	// 打印最终生效的配置以供调试
	configBytes, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		log.Fatalf("无法序列化配置以进行打印: %v", err)
	}
	log.Printf("✅ 配置加载成功！最终生效的配置如下:\n%s\n", string(configBytes))

	// 2. 初始化 Logger
	logger, loggerErr := sharedCore.NewZapLogger(cfg.ZapConfig)
	if loggerErr != nil {
		log.Fatalf("FATAL: 初始化 ZapLogger 失败: %v", loggerErr)
	}
	defer func() {
		logger.Info("正在同步日志...")
		if err := logger.Logger().Sync(); err != nil {
			log.Printf("WARN: ZapLogger Sync 失败: %v\n", err)
		}
	}()
	logger.Info("Logger 初始化成功")

	// 3. 初始化 TracerProvider
	var tracerShutdown func(context.Context) error // 用于优雅关停
	if cfg.TracerConfig.Enabled {
		var err error
		tracerShutdown, err = sharedTracing.InitTracerProvider(
			constant.ServiceName,
			constant.ServiceVersion,
			cfg.TracerConfig,
		)
		if err != nil {
			logger.Fatal("初始化 TracerProvider 失败", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			logger.Info("正在关闭 TracerProvider...")
			if err := tracerShutdown(ctx); err != nil {
				logger.Error("关闭 TracerProvider 失败", zap.Error(err))
			} else {
				logger.Info("TracerProvider 已成功关闭")
			}
		}()
		logger.Info("分布式追踪已初始化")
		// 包装默认 Transport，使 COS 等出站 HTTP 调用携带追踪上下文
		http.DefaultTransport = otelhttp.NewTransport(http.DefaultTransport)
	} else {
		logger.Info("分布式追踪已禁用")
		tracerShutdown = func(ctx context.Context) error { return nil }
	}

	// --- 4. 初始化核心依赖 ---
	// 4.1 数据库 (MySQL)
	db, dbErr := dependencies.InitMySQL(&cfg, logger)
	if dbErr != nil {
		logger.Fatal("初始化 MySQL 数据库失败", zap.Error(dbErr))
	}
	logger.Info("MySQL 数据库连接成功")

	// 4.2 Redis
	rdb, redisErr := dependencies.InitRedis(&cfg.RedisConfig, logger)
	if redisErr != nil {
		logger.Fatal("初始化 Redis 失败", zap.Error(redisErr))
	}
	logger.Info("Redis 连接成功")

	// 4.3 COS 客户端 (文章头图上传)
	cos, cosErr := dependencies.InitCOS(&cfg.COSConfig, logger)
	if cosErr != nil {
		logger.Fatal("初始化 COS 客户端失败", zap.Error(cosErr))
	}
	logger.Info("COS 客户端初始化成功")

	// 4.4 Kafka 生产者
	var kafkaProducer *producer.KafkaProducer
	if len(cfg.KafkaConfig.Brokers) > 0 {
		kafkaProducer = producer.NewKafkaProducer(cfg.KafkaConfig, logger)
		defer func() {
			if err := kafkaProducer.Close(); err != nil {
				logger.Error("关闭 Kafka 生产者失败", zap.Error(err))
			}
		}()
		logger.Info("Kafka 生产者已初始化")
	} else {
		logger.Warn("未配置 Kafka brokers，Kafka 生产者将为 nil，文章事件不会发送")
	}

	// --- 5. 初始化数据仓库层 (Repositories) ---
	userRepo := mysql.NewUserRepository(db, logger)
	categoryRepo := mysql.NewCategoryRepository(db, logger)
	categoryStatsRepo := mysql.NewCategoryStatsRepository(db, logger)
	postRepo := mysql.NewPostRepository(db, logger)
	commentRepo := mysql.NewCommentRepository(db, logger)
	commentLikeRepo := mysql.NewCommentLikeRepository(db, logger)
	postBatchRepo := mysql.NewPostBatchOperationsRepository(db, logger, cfg.ViewSyncConfig)
	logger.Debug("MySQL Repositories 初始化完成")

	postViewRepo := redisrepo.NewPostViewRepository(
		rdb,
		logger,
		constant.BloomFilterDefaultSize,
		constant.BloomFilterDefaultErrorRate,
		cfg.ViewSyncConfig,
	)
	logger.Debug("Redis Repositories 初始化完成")

	// --- 6. 初始化服务层 (Services) ---
	authService := service.NewAuthService(userRepo, cfg.JWTConfig, logger)
	categoryService := service.NewCategoryService(db, categoryRepo, categoryStatsRepo, logger)
	postService := service.NewPostService(db, postRepo, categoryRepo, commentRepo, commentLikeRepo, categoryStatsRepo, postViewRepo, cos, kafkaProducer, logger)
	commentService := service.NewCommentService(db, commentRepo, commentLikeRepo, postRepo, logger)
	logger.Debug("Services 初始化完成")

	// --- 7. 初始化认证中间件与控制器层 (Controllers) ---
	requireAuth := middleware.RequireAuth(authService, userRepo, logger)
	optionalAuth := middleware.OptionalAuth(authService, userRepo)

	authController := controller.NewAuthController(authService, requireAuth)
	categoryController := controller.NewCategoryController(categoryService, requireAuth)
	postController := controller.NewPostController(postService, requireAuth, optionalAuth)
	commentController := controller.NewCommentController(commentService, requireAuth)
	logger.Debug("Controllers 初始化完成")

	// --- 8. 初始化定时任务 ---
	syncTask := tasks.NewViewCountSyncTask(postViewRepo, postBatchRepo, logger)
	logger.Info("后台定时任务已初始化并启动")

	// --- 9. 设置 Gin 路由器 ---
	ginRouter := router.SetupRouter(logger, &cfg, authController, categoryController, postController, commentController)
	logger.Info("Gin 路由器已设置")

	// --- 10. 启动 HTTP 服务器 ---
	serverAddr := fmt.Sprintf(":%s", cfg.ServerConfig.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: ginRouter,
	}

	go func() {
		logger.Info("HTTP 服务器开始监听", zap.String("address", serverAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP 服务器启动失败", zap.Error(err))
		}
		logger.Info("HTTP 服务器已停止监听")
	}()

	// --- 11. 实现优雅关停 ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-quit
	logger.Info("收到关停信号，开始优雅退出...", zap.String("signal", receivedSignal.String()))

	shutdownCtx, shutdownCancelFunc := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancelFunc()

	// a. 停止 HTTP 服务器 (允许处理完当前请求)
	logger.Info("正在关闭 HTTP 服务器...")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("关闭 HTTP 服务器失败", zap.Error(err))
	} else {
		logger.Info("HTTP 服务器已成功关闭")
	}

	// b. 停止定时任务并等待正在执行的作业完成
	taskStopCtx := syncTask.Stop()
	select {
	case <-taskStopCtx.Done():
		logger.Info("定时任务已全部完成")
	case <-shutdownCtx.Done():
		logger.Warn("等待定时任务完成超时")
	}

	// c. 关闭 Redis 连接
	if err := rdb.Close(); err != nil {
		logger.Error("关闭 Redis 连接失败", zap.Error(err))
	} else {
		logger.Info("Redis 连接已关闭")
	}

	logger.Info("服务已优雅退出")
}
