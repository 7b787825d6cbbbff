package mysql

import (
	"context"

	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Xushengqwer/blog_service/models/entities"
	"github.com/Xushengqwer/blog_service/models/enums"
)

// idCount 承载 GROUP BY category_id 的计数结果行。
type idCount struct {
	CategoryID uint64 `gorm:"column:category_id"`
	Count      int64  `gorm:"column:cnt"`
}

// idSum 承载 GROUP BY category_id 的求和结果行。
type idSum struct {
	CategoryID uint64 `gorm:"column:category_id"`
	Total      int64  `gorm:"column:total"`
}

// CategoryStatsRepository 定义了分类维度的聚合统计查询接口。
// 所有方法都只统计已发布 (published) 的帖子，与前台可见范围保持一致。
type CategoryStatsRepository interface {
	// PostCountsByCategory 返回 category_id -> 已发布帖子数 的映射。
	PostCountsByCategory(ctx context.Context) (map[uint64]int64, error)

	// ViewSumsByCategory 返回 category_id -> 已发布帖子浏览量之和 的映射。
	ViewSumsByCategory(ctx context.Context) (map[uint64]int64, error)

	// CommentCountsByCategory 返回 category_id -> 已发布帖子下的评论数 的映射。
	CommentCountsByCategory(ctx context.Context) (map[uint64]int64, error)

	// LikeSumsByCategory 返回 category_id -> 已发布帖子点赞数之和 的映射。
	LikeSumsByCategory(ctx context.Context) (map[uint64]int64, error)
}

// categoryStatsRepository 是 CategoryStatsRepository 接口针对 MySQL 的具体实现。
type categoryStatsRepository struct {
	db     *gorm.DB
	logger *core.ZapLogger
}

// NewCategoryStatsRepository 是 categoryStatsRepository 的构造函数。
func NewCategoryStatsRepository(db *gorm.DB, logger *core.ZapLogger) CategoryStatsRepository {
	return &categoryStatsRepository{
		db:     db,
		logger: logger,
	}
}

// PostCountsByCategory 实现分类维度的帖子计数。
func (r *categoryStatsRepository) PostCountsByCategory(ctx context.Context) (map[uint64]int64, error) {
	var rows []idCount
	err := r.db.WithContext(ctx).
		Model(&entities.Post{}).
		Select("category_id, COUNT(*) AS cnt").
		Where("status = ? AND category_id IS NOT NULL", enums.PostStatusPublished).
		Group("category_id").
		Scan(&rows).Error
	if err != nil {
		r.logger.Error("分类帖子计数查询失败", zap.Error(err))
		return nil, err
	}
	result := make(map[uint64]int64, len(rows))
	for _, row := range rows {
		result[row.CategoryID] = row.Count
	}
	return result, nil
}

// ViewSumsByCategory 实现分类维度的浏览量求和。
func (r *categoryStatsRepository) ViewSumsByCategory(ctx context.Context) (map[uint64]int64, error) {
	var rows []idSum
	err := r.db.WithContext(ctx).
		Model(&entities.Post{}).
		Select("category_id, COALESCE(SUM(view_count), 0) AS total").
		Where("status = ? AND category_id IS NOT NULL", enums.PostStatusPublished).
		Group("category_id").
		Scan(&rows).Error
	if err != nil {
		r.logger.Error("分类浏览量求和查询失败", zap.Error(err))
		return nil, err
	}
	result := make(map[uint64]int64, len(rows))
	for _, row := range rows {
		result[row.CategoryID] = row.Total
	}
	return result, nil
}

// CommentCountsByCategory 实现分类维度的评论计数。
// 评论本身不带分类，需要 JOIN 帖子表取 category_id。
func (r *categoryStatsRepository) CommentCountsByCategory(ctx context.Context) (map[uint64]int64, error) {
	var rows []idCount
	err := r.db.WithContext(ctx).
		Model(&entities.Comment{}).
		Select("posts.category_id AS category_id, COUNT(comments.id) AS cnt").
		Joins("JOIN posts ON posts.id = comments.post_id").
		Where("posts.status = ? AND posts.category_id IS NOT NULL", enums.PostStatusPublished).
		Group("posts.category_id").
		Scan(&rows).Error
	if err != nil {
		r.logger.Error("分类评论计数查询失败", zap.Error(err))
		return nil, err
	}
	result := make(map[uint64]int64, len(rows))
	for _, row := range rows {
		result[row.CategoryID] = row.Count
	}
	return result, nil
}

// LikeSumsByCategory 实现分类维度的点赞数求和。
func (r *categoryStatsRepository) LikeSumsByCategory(ctx context.Context) (map[uint64]int64, error) {
	var rows []idSum
	err := r.db.WithContext(ctx).
		Model(&entities.Post{}).
		Select("category_id, COALESCE(SUM(like_count), 0) AS total").
		Where("status = ? AND category_id IS NOT NULL", enums.PostStatusPublished).
		Group("category_id").
		Scan(&rows).Error
	if err != nil {
		r.logger.Error("分类点赞数求和查询失败", zap.Error(err))
		return nil, err
	}
	result := make(map[uint64]int64, len(rows))
	for _, row := range rows {
		result[row.CategoryID] = row.Total
	}
	return result, nil
}
