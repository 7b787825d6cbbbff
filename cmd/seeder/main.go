package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"

	appConfig "github.com/Xushengqwer/blog_service/config"
	"github.com/Xushengqwer/blog_service/dependencies"
	"github.com/Xushengqwer/blog_service/mq/producer"
	"github.com/Xushengqwer/blog_service/repo/mysql"
	redisRepo "github.com/Xushengqwer/blog_service/repo/redis"
	blogService "github.com/Xushengqwer/blog_service/service"
)

func main() {
	// --- 0. 解析命令行参数 ---
	var configFile string
	var numUsers, numPosts, numComments int
	flag.StringVar(&configFile, "config", "config/config.development.yaml", "配置文件路径")
	flag.IntVar(&numUsers, "users", 10, "要生成的用户数量 (默认: 10)")
	flag.IntVar(&numPosts, "posts", 50, "要生成的帖子数量 (默认: 50)")
	flag.IntVar(&numComments, "comments", 200, "要生成的评论数量 (默认: 200)")
	var waitSeconds int
	flag.IntVar(&waitSeconds, "wait", 5, "数据填充后等待的秒数 (确保异步 Kafka 消息发送, 默认: 5秒)")
	flag.Parse()

	absConfigFile, err := filepath.Abs(configFile)
	if err != nil {
		fmt.Printf("无法获取配置文件的绝对路径 '%s': %v\n", configFile, err)
		absConfigFile = configFile
	}
	fmt.Printf("准备使用配置文件 '%s' 生成 %d 用户 / %d 帖子 / %d 评论...\n", absConfigFile, numUsers, numPosts, numComments)

	if numUsers <= 0 || numPosts < 0 || numComments < 0 {
		fmt.Println("错误: 用户数量必须大于 0，帖子/评论数量不能为负")
		os.Exit(1)
	}

	// --- 1. 加载配置 ---
	var cfg appConfig.BlogConfig
	if err := core.LoadConfig(absConfigFile, &cfg); err != nil {
		fmt.Printf("加载配置失败 (%s): %v\n", absConfigFile, err)
		os.Exit(1)
	}
	fmt.Println("配置加载成功。")

	// --- 2. 初始化日志记录器 ---
	logger, loggerErr := core.NewZapLogger(cfg.ZapConfig)
	if loggerErr != nil {
		fmt.Printf("初始化 ZapLogger 失败: %v\n", loggerErr)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Logger().Sync()
	}()
	logger.Info("Logger 初始化成功 (Seeder)")

	// --- 3. 初始化 MySQL 数据库连接 ---
	db, dbErr := dependencies.InitMySQL(&cfg, logger)
	if dbErr != nil {
		logger.Fatal("初始化 MySQL 失败 (Seeder)", zap.Error(dbErr))
	}
	logger.Info("MySQL 连接成功 (Seeder)")

	// --- 4. 初始化 Kafka 生产者（可选） ---
	var kafkaProducer *producer.KafkaProducer
	if len(cfg.KafkaConfig.Brokers) > 0 {
		kafkaProducer = producer.NewKafkaProducer(cfg.KafkaConfig, logger)
		logger.Info("Kafka 生产者已初始化 (Seeder)")
	} else {
		logger.Warn("Kafka Brokers 未配置 (Seeder)，帖子事件不会发送")
	}

	// --- 5. 初始化 Redis（可选，仅影响浏览量计数） ---
	var postViewRepo redisRepo.PostViewRepository
	rdb, redisErr := dependencies.InitRedis(&cfg.RedisConfig, logger)
	if redisErr != nil {
		logger.Warn("初始化 Redis 失败 (Seeder)，浏览量计数功能将不可用", zap.Error(redisErr))
	} else {
		postViewRepo = redisRepo.NewPostViewRepository(rdb, logger, 10000, 0.01, cfg.ViewSyncConfig)
	}

	// --- 6. 初始化 Repositories ---
	userRepo := mysql.NewUserRepository(db, logger)
	categoryRepo := mysql.NewCategoryRepository(db, logger)
	categoryStatsRepo := mysql.NewCategoryStatsRepository(db, logger)
	postRepo := mysql.NewPostRepository(db, logger)
	commentRepo := mysql.NewCommentRepository(db, logger)
	commentLikeRepo := mysql.NewCommentLikeRepository(db, logger)

	// --- 7. 初始化 Services ---
	// 头图上传不在填充范围内，COS 客户端传 nil。
	authSvc := blogService.NewAuthService(userRepo, cfg.JWTConfig, logger)
	categorySvc := blogService.NewCategoryService(db, categoryRepo, categoryStatsRepo, logger)
	postSvc := blogService.NewPostService(db, postRepo, categoryRepo, commentRepo, commentLikeRepo, categoryStatsRepo, postViewRepo, nil, kafkaProducer, logger)
	commentSvc := blogService.NewCommentService(db, commentRepo, commentLikeRepo, postRepo, logger)
	logger.Info("Services 已初始化 (Seeder)")

	// --- 8. 执行数据填充 ---
	ctx := context.Background()
	startTime := time.Now()
	logger.Info("开始执行数据填充...",
		zap.Int("用户", numUsers), zap.Int("帖子", numPosts), zap.Int("评论", numComments))

	seeder := &Seeder{
		db:         db,
		userRepo:   userRepo,
		authSvc:    authSvc,
		categories: categorySvc,
		posts:      postSvc,
		comments:   commentSvc,
		logger:     logger,
	}
	if err := seeder.Seed(ctx, numUsers, numPosts, numComments); err != nil {
		logger.Fatal("数据填充失败", zap.Error(err))
	}

	duration := time.Since(startTime)
	logger.Info("数据填充主要逻辑完成！", zap.Duration("耗时", duration))

	// --- 9. 等待一段时间以确保异步 Kafka 任务有时间发送 ---
	if kafkaProducer != nil && waitSeconds > 0 {
		logger.Info(fmt.Sprintf("Seeder: 等待 %d 秒以允许异步 Kafka 消息发送...", waitSeconds))
		time.Sleep(time.Duration(waitSeconds) * time.Second)
	}

	fmt.Printf("数据填充完成！总耗时（包括等待）: %v\n", time.Since(startTime))
}
