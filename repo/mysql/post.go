package mysql

import (
	"context"
	"errors"
	"fmt"

	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Xushengqwer/blog_service/models/dto"
	"github.com/Xushengqwer/blog_service/models/entities"
	"github.com/Xushengqwer/blog_service/models/enums"
)

// PostRepository 定义了帖子数据在 MySQL 中的持久化操作接口。
// 接口的设计旨在将数据访问逻辑与业务逻辑（服务层）解耦。
type PostRepository interface {
	// CreatePost 持久化一个新的帖子记录。
	// - 这是帖子生命周期的起点，对应作者发布或存草稿的操作。
	CreatePost(ctx context.Context, db *gorm.DB, post *entities.Post) error

	// GetPostByID 根据单个 ID 检索帖子信息。
	// - 如果未找到帖子，返回 commonerrors.ErrRepoNotFound 错误。
	GetPostByID(ctx context.Context, id uint64) (*entities.Post, error)

	// SavePost 保存帖子实体的全部字段，对应覆盖式更新。
	SavePost(ctx context.Context, post *entities.Post) error

	// DeletePost 对指定帖子执行硬删除。
	// - 级联清理（评论、点赞）在服务层的同一事务中完成。
	DeletePost(ctx context.Context, db *gorm.DB, id uint64) error

	// ListPosts 分页查询帖子列表，支持多种条件组合筛选。
	// - 可见性约束（匿名仅 published、非管理员仅看自己）由服务层在 query 上收紧后传入。
	// - 排序规则: 创建时间降序，再按 ID 降序保证稳定。
	// - 返回: 帖子列表, 符合条件的总记录数 (真实 COUNT), 错误。
	ListPosts(ctx context.Context, query *dto.PostListQuery) ([]*entities.Post, int64, error)

	// CountPostsByStatus 返回 status -> 帖子数 的映射。
	CountPostsByStatus(ctx context.Context) (map[enums.PostStatus]int64, error)

	// AggregatePostTotals 返回全站帖子总数、浏览量总和与点赞数总和。
	AggregatePostTotals(ctx context.Context) (totalPosts, totalViews, totalLikes int64, err error)

	// PluckPublishedTags 拉取全部已发布帖子的 tags 列原始 JSON 文本。
	// - 标签频次的聚合在服务层内存中完成。
	PluckPublishedTags(ctx context.Context) ([]string, error)

	// SetFeaturedImage 更新指定帖子的题图 URL。
	SetFeaturedImage(ctx context.Context, postID uint64, imageURL string) error
}

// postRepository 是 PostRepository 接口针对 MySQL 的具体实现。
type postRepository struct {
	db     *gorm.DB
	logger *core.ZapLogger
}

// NewPostRepository 是 postRepository 的构造函数。
func NewPostRepository(db *gorm.DB, logger *core.ZapLogger) PostRepository {
	return &postRepository{
		db:     db,
		logger: logger,
	}
}

// CreatePost 实现帖子的数据库插入操作。
// 使用传入的 db 对象（可以是事务 tx）执行数据库操作。
func (r *postRepository) CreatePost(ctx context.Context, db *gorm.DB, post *entities.Post) error {
	if err := db.WithContext(ctx).Create(post).Error; err != nil {
		return err
	}
	return nil
}

// GetPostByID 实现根据单个 ID 获取帖子。
func (r *postRepository) GetPostByID(ctx context.Context, id uint64) (*entities.Post, error) {
	var post entities.Post
	err := r.db.WithContext(ctx).First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, commonerrors.ErrRepoNotFound
		}
		r.logger.Error("根据 ID 获取帖子数据库查询失败", zap.Uint64("postID", id), zap.Error(err))
		return nil, err
	}
	return &post, nil
}

// SavePost 实现帖子实体的整体保存。
func (r *postRepository) SavePost(ctx context.Context, post *entities.Post) error {
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		r.logger.Error("更新帖子数据库操作失败", zap.Error(err), zap.Uint64("postID", post.ID))
		return err
	}
	return nil
}

// DeletePost 实现帖子的硬删除。
// db 参数是执行此操作的数据库句柄 (可以是普通连接，也可以是事务 tx)。
func (r *postRepository) DeletePost(ctx context.Context, db *gorm.DB, id uint64) error {
	result := db.WithContext(ctx).Delete(&entities.Post{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return commonerrors.ErrRepoNotFound
	}
	return nil
}

// ListPosts 实现帖子列表的条件筛选与分页查询。
func (r *postRepository) ListPosts(ctx context.Context, query *dto.PostListQuery) ([]*entities.Post, int64, error) {
	var posts []*entities.Post
	var totalCount int64

	// applyFilters 将同一组筛选条件应用到列表查询和计数查询上。
	applyFilters := func(db *gorm.DB) *gorm.DB {
		if query.Status != nil {
			db = db.Where("status = ?", *query.Status)
		}
		if query.CategoryID != nil {
			db = db.Where("category_id = ?", *query.CategoryID)
		}
		if query.AuthorID != nil {
			db = db.Where("author_id = ?", *query.AuthorID)
		}
		if query.Tag != "" {
			// tags 列存储为 JSON 数组文本，按带引号的标签做包含匹配
			db = db.Where("tags LIKE ?", "%\""+query.Tag+"\"%")
		}
		if query.Search != "" {
			db = db.Where("title LIKE ?", "%"+query.Search+"%")
		}
		return db
	}

	countQuery := applyFilters(r.db.WithContext(ctx).Model(&entities.Post{}))
	if err := countQuery.Count(&totalCount).Error; err != nil {
		r.logger.Error("获取帖子列表：计数查询失败", zap.Error(err), zap.Any("query", query))
		return nil, 0, fmt.Errorf("计数帖子失败: %w", err)
	}

	if totalCount == 0 {
		return posts, 0, nil
	}

	offset := (query.Page - 1) * query.PageSize
	listQuery := applyFilters(r.db.WithContext(ctx).Model(&entities.Post{})).
		Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(query.PageSize)

	if err := listQuery.Find(&posts).Error; err != nil {
		r.logger.Error("获取帖子列表：列表查询失败", zap.Error(err), zap.Any("query", query))
		return nil, 0, fmt.Errorf("查询帖子列表失败: %w", err)
	}

	return posts, totalCount, nil
}

// CountPostsByStatus 实现按状态的帖子计数。
func (r *postRepository) CountPostsByStatus(ctx context.Context) (map[enums.PostStatus]int64, error) {
	type statusCount struct {
		Status enums.PostStatus `gorm:"column:status"`
		Count  int64            `gorm:"column:cnt"`
	}
	var rows []statusCount
	err := r.db.WithContext(ctx).
		Model(&entities.Post{}).
		Select("status, COUNT(*) AS cnt").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		r.logger.Error("按状态统计帖子数查询失败", zap.Error(err))
		return nil, err
	}
	result := make(map[enums.PostStatus]int64, len(rows))
	for _, row := range rows {
		result[row.Status] = row.Count
	}
	return result, nil
}

// AggregatePostTotals 实现全站帖子聚合统计。
func (r *postRepository) AggregatePostTotals(ctx context.Context) (int64, int64, int64, error) {
	type totals struct {
		TotalPosts int64 `gorm:"column:total_posts"`
		TotalViews int64 `gorm:"column:total_views"`
		TotalLikes int64 `gorm:"column:total_likes"`
	}
	var row totals
	err := r.db.WithContext(ctx).
		Model(&entities.Post{}).
		Select("COUNT(*) AS total_posts, COALESCE(SUM(view_count), 0) AS total_views, COALESCE(SUM(like_count), 0) AS total_likes").
		Scan(&row).Error
	if err != nil {
		r.logger.Error("帖子聚合统计查询失败", zap.Error(err))
		return 0, 0, 0, err
	}
	return row.TotalPosts, row.TotalViews, row.TotalLikes, nil
}

// PluckPublishedTags 实现已发布帖子 tags 列的原始文本拉取。
func (r *postRepository) PluckPublishedTags(ctx context.Context) ([]string, error) {
	var rawTags []string
	err := r.db.WithContext(ctx).
		Model(&entities.Post{}).
		Where("status = ? AND tags IS NOT NULL AND tags != ''", enums.PostStatusPublished).
		Pluck("tags", &rawTags).Error
	if err != nil {
		r.logger.Error("拉取帖子标签列查询失败", zap.Error(err))
		return nil, err
	}
	return rawTags, nil
}

// SetFeaturedImage 实现帖子题图 URL 的更新。
func (r *postRepository) SetFeaturedImage(ctx context.Context, postID uint64, imageURL string) error {
	result := r.db.WithContext(ctx).
		Model(&entities.Post{}).
		Where("id = ?", postID).
		Update("featured_image", imageURL)
	if result.Error != nil {
		r.logger.Error("更新帖子题图数据库操作失败", zap.Error(result.Error), zap.Uint64("postID", postID))
		return result.Error
	}
	if result.RowsAffected == 0 {
		return commonerrors.ErrRepoNotFound
	}
	return nil
}
