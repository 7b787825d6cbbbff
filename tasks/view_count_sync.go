package tasks

import (
	"context"
	"time"

	"github.com/Xushengqwer/go-common/core"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Xushengqwer/blog_service/constant"
	"github.com/Xushengqwer/blog_service/repo/mysql"
	"github.com/Xushengqwer/blog_service/repo/redis"
)

// ViewCountSyncTask 负责定时将 Redis 中的文章浏览量同步到 MySQL 数据库。
type ViewCountSyncTask struct {
	postViewRepo  redis.PostViewRepository            // Redis 仓库，用于获取浏览量
	postBatchRepo mysql.PostBatchOperationsRepository // MySQL 批量操作仓库，用于更新浏览量
	cron          *cron.Cron                          // cron V3 实例
	logger        *core.ZapLogger                     // 日志记录器
}

// NewViewCountSyncTask 初始化并启动浏览量同步的定时任务。
func NewViewCountSyncTask(
	postViewRepo redis.PostViewRepository,
	postBatchRepo mysql.PostBatchOperationsRepository,
	logger *core.ZapLogger,
) *ViewCountSyncTask {
	cronV3 := cron.New() // 默认分钟级精度
	task := &ViewCountSyncTask{
		postViewRepo:  postViewRepo,
		postBatchRepo: postBatchRepo,
		cron:          cronV3,
		logger:        logger,
	}
	task.startCronJob() // 在构造函数中启动定时作业
	return task
}

// startCronJob 配置并启动 cron 作业。
// 使用 constant.SyncViewCountInterval 定义的 cron 表达式来调度 syncViewCountsToDB 方法。
func (t *ViewCountSyncTask) startCronJob() {
	schedule := constant.SyncViewCountInterval
	t.logger.Info("准备启动文章浏览量同步MySQL定时任务", zap.String("schedule", schedule))

	entryID, err := t.cron.AddFunc(schedule, func() {
		t.logger.Info("文章浏览量同步MySQL任务开始执行...")
		startTime := time.Now()
		// 为单次任务执行设置超时，需覆盖 Redis 全量扫描和 MySQL 批量更新。
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
		defer cancel()

		t.syncViewCountsToDB(ctx)

		duration := time.Since(startTime)
		t.logger.Info("文章浏览量同步MySQL任务执行完毕", zap.Duration("duration", duration))
	})

	if err != nil {
		// 添加 cron 作业失败通常是 schedule 表达式错误，属于配置级故障。
		t.logger.Fatal("添加文章浏览量同步 cron 作业失败", zap.Error(err), zap.String("schedule", schedule))
	}

	t.cron.Start() // 启动 cron 调度器 (在后台 goroutine 中运行)
	t.logger.Info("文章浏览量同步MySQL定时任务已启动", zap.Uint("cronEntryID", uint(entryID)))
}

// syncViewCountsToDB 是定时任务执行的实际同步逻辑。
// 1. 从 Redis 获取全量的文章浏览量数据。
// 2. 调用 MySQL 仓库的 BatchUpdatePostViewCounts 方法批量更新到数据库。
func (t *ViewCountSyncTask) syncViewCountsToDB(ctx context.Context) {
	t.logger.Info("任务步骤1: 开始从 Redis 获取全量文章浏览量...")
	viewCounts, err := t.postViewRepo.GetAllViewCounts(ctx)
	if err != nil {
		t.logger.Error("从 Redis 获取全量浏览量失败，本次同步中止。", zap.Error(err))
		return
	}

	countFromRedis := len(viewCounts)
	if countFromRedis == 0 {
		t.logger.Info("从 Redis 获取到的浏览量数据为空，无需同步到 MySQL。")
		return
	}
	t.logger.Info("任务步骤1: 成功从 Redis 获取到浏览量数据。", zap.Int("文章数量", countFromRedis))

	t.logger.Info("任务步骤2: 开始将浏览量批量更新到 MySQL...")
	// BatchUpdatePostViewCounts 内部按批次处理并记录失败日志，这里仅兜底记录意外错误。
	if err := t.postBatchRepo.BatchUpdatePostViewCounts(ctx, viewCounts); err != nil {
		t.logger.Error("调用 MySQL 批量更新浏览量操作时发生意外错误",
			zap.Error(err),
			zap.Int("提交数量", countFromRedis),
		)
	} else {
		t.logger.Info("任务步骤2: 调用 MySQL 批量更新浏览量操作已完成。", zap.Int("提交数量", countFromRedis))
	}
}

// Stop 优雅地停止 cron 调度器。
// 返回一个 context，调用者可以使用它来等待正在运行的任务完成。
func (t *ViewCountSyncTask) Stop() context.Context {
	t.logger.Info("正在停止文章浏览量同步MySQL定时任务...")
	stopCtx := t.cron.Stop()
	t.logger.Info("文章浏览量同步MySQL定时任务已停止调度。等待正在执行的任务完成...")
	return stopCtx
}
