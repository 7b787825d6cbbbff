package mysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Xushengqwer/blog_service/models/entities"
)

// AuthorCommentCount 承载按作者聚合的评论计数结果行。
type AuthorCommentCount struct {
	AuthorID uint64 `gorm:"column:author_id"`
	Count    int64  `gorm:"column:cnt"`
}

// CommentRepository 定义了评论数据在 MySQL 中的持久化操作接口。
// 点赞计数的增减必须与 comment_likes 表的写入处于同一事务，
// 因此计数方法接受外部传入的 db 句柄。
type CommentRepository interface {
	// CreateComment 持久化一条新的评论记录。
	CreateComment(ctx context.Context, comment *entities.Comment) error

	// GetCommentByID 根据主键检索评论。
	// - 未找到时返回 commonerrors.ErrRepoNotFound。
	GetCommentByID(ctx context.Context, id uint64) (*entities.Comment, error)

	// SaveComment 保存评论实体的全部字段（编辑内容、置位 is_edited）。
	SaveComment(ctx context.Context, comment *entities.Comment) error

	// DeleteComment 对指定评论执行硬删除。
	DeleteComment(ctx context.Context, db *gorm.DB, id uint64) error

	// DeleteReplies 硬删除指定评论的全部直接回复。
	// - 评论树最多两层（根评论 + 回复），删除根评论时连带清理。
	DeleteReplies(ctx context.Context, db *gorm.DB, parentID uint64) error

	// DeleteCommentsByPostID 硬删除指定帖子下的全部评论，删除帖子时级联调用。
	DeleteCommentsByPostID(ctx context.Context, db *gorm.DB, postID uint64) error

	// IncrementLikeCount 将评论的 like_count 原子加一。
	IncrementLikeCount(ctx context.Context, db *gorm.DB, commentID uint64) error

	// DecrementLikeCount 将评论的 like_count 原子减一，下限为 0。
	DecrementLikeCount(ctx context.Context, db *gorm.DB, commentID uint64) error

	// ListRootComments 分页查询帖子的根评论（parent_id IS NULL），按创建时间升序。
	// - 返回: 评论列表, 符合条件的总记录数, 错误。
	ListRootComments(ctx context.Context, postID uint64, offset, limit int) ([]*entities.Comment, int64, error)

	// ListReplies 分页查询指定评论的直接回复，按创建时间升序。
	ListReplies(ctx context.Context, parentID uint64, offset, limit int) ([]*entities.Comment, int64, error)

	// ReplyCounts 返回 commentID -> 直接回复数 的映射，用于列表页的 reply_count 派生字段。
	ReplyCounts(ctx context.Context, commentIDs []uint64) (map[uint64]int64, error)

	// PluckReplyIDs 拉取指定评论全部直接回复的 ID，级联删除点赞记录时使用。
	PluckReplyIDs(ctx context.Context, parentID uint64) ([]uint64, error)

	// AggregateCommentTotals 返回评论总数、根评论数与点赞数总和。
	AggregateCommentTotals(ctx context.Context) (totalComments, totalRoots, totalLikes int64, err error)

	// PluckAllCreatedAt 拉取全部评论的创建时间，小时分布直方图在服务层内存中聚合。
	PluckAllCreatedAt(ctx context.Context) ([]time.Time, error)

	// MostActiveAuthors 返回评论数最多的前 limit 位作者。
	MostActiveAuthors(ctx context.Context, limit int) ([]AuthorCommentCount, error)

	// MostLikedComments 返回点赞数最高的前 limit 条评论，点赞数相同按创建时间升序。
	MostLikedComments(ctx context.Context, limit int) ([]*entities.Comment, error)

	// TopRepliedParents 返回直接回复最多的前 limit 个根评论 ID 及其回复数，
	// 回复数相同按创建时间升序。
	TopRepliedParents(ctx context.Context, limit int) (map[uint64]int64, []uint64, error)

	// GetCommentsByIDs 按主键集合批量检索评论。
	GetCommentsByIDs(ctx context.Context, ids []uint64) ([]*entities.Comment, error)
}

// commentRepository 是 CommentRepository 接口针对 MySQL 的具体实现。
type commentRepository struct {
	db     *gorm.DB
	logger *core.ZapLogger
}

// NewCommentRepository 是 commentRepository 的构造函数。
func NewCommentRepository(db *gorm.DB, logger *core.ZapLogger) CommentRepository {
	return &commentRepository{
		db:     db,
		logger: logger,
	}
}

// CreateComment 实现评论的数据库插入操作。
func (r *commentRepository) CreateComment(ctx context.Context, comment *entities.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		r.logger.Error("创建评论数据库操作失败", zap.Error(err), zap.Uint64("postID", comment.PostID))
		return err
	}
	return nil
}

// GetCommentByID 实现根据主键获取评论。
func (r *commentRepository) GetCommentByID(ctx context.Context, id uint64) (*entities.Comment, error) {
	var comment entities.Comment
	err := r.db.WithContext(ctx).First(&comment, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, commonerrors.ErrRepoNotFound
		}
		r.logger.Error("根据 ID 获取评论数据库查询失败", zap.Uint64("commentID", id), zap.Error(err))
		return nil, err
	}
	return &comment, nil
}

// SaveComment 实现评论实体的整体保存。
func (r *commentRepository) SaveComment(ctx context.Context, comment *entities.Comment) error {
	if err := r.db.WithContext(ctx).Save(comment).Error; err != nil {
		r.logger.Error("更新评论数据库操作失败", zap.Error(err), zap.Uint64("commentID", comment.ID))
		return err
	}
	return nil
}

// DeleteComment 实现评论的硬删除。
func (r *commentRepository) DeleteComment(ctx context.Context, db *gorm.DB, id uint64) error {
	result := db.WithContext(ctx).Delete(&entities.Comment{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return commonerrors.ErrRepoNotFound
	}
	return nil
}

// DeleteReplies 实现直接回复的批量硬删除。
func (r *commentRepository) DeleteReplies(ctx context.Context, db *gorm.DB, parentID uint64) error {
	return db.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Delete(&entities.Comment{}).Error
}

// DeleteCommentsByPostID 实现帖子下全部评论的批量硬删除。
func (r *commentRepository) DeleteCommentsByPostID(ctx context.Context, db *gorm.DB, postID uint64) error {
	return db.WithContext(ctx).
		Where("post_id = ?", postID).
		Delete(&entities.Comment{}).Error
}

// IncrementLikeCount 实现 like_count 的原子自增。
func (r *commentRepository) IncrementLikeCount(ctx context.Context, db *gorm.DB, commentID uint64) error {
	return db.WithContext(ctx).
		Model(&entities.Comment{}).
		Where("id = ?", commentID).
		UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error
}

// DecrementLikeCount 实现 like_count 的原子自减，CASE 表达式保证不会减到负数。
func (r *commentRepository) DecrementLikeCount(ctx context.Context, db *gorm.DB, commentID uint64) error {
	return db.WithContext(ctx).
		Model(&entities.Comment{}).
		Where("id = ?", commentID).
		UpdateColumn("like_count", gorm.Expr("CASE WHEN like_count > 0 THEN like_count - 1 ELSE 0 END")).Error
}

// ListRootComments 实现根评论的分页查询。
func (r *commentRepository) ListRootComments(ctx context.Context, postID uint64, offset, limit int) ([]*entities.Comment, int64, error) {
	var comments []*entities.Comment
	var totalCount int64

	countQuery := r.db.WithContext(ctx).
		Model(&entities.Comment{}).
		Where("post_id = ? AND parent_id IS NULL", postID)
	if err := countQuery.Count(&totalCount).Error; err != nil {
		r.logger.Error("获取根评论列表：计数查询失败", zap.Error(err), zap.Uint64("postID", postID))
		return nil, 0, fmt.Errorf("计数根评论失败: %w", err)
	}

	if totalCount == 0 {
		return comments, 0, nil
	}

	err := r.db.WithContext(ctx).
		Where("post_id = ? AND parent_id IS NULL", postID).
		Order("created_at ASC").Order("id ASC").
		Offset(offset).Limit(limit).
		Find(&comments).Error
	if err != nil {
		r.logger.Error("获取根评论列表：列表查询失败", zap.Error(err), zap.Uint64("postID", postID))
		return nil, 0, fmt.Errorf("查询根评论列表失败: %w", err)
	}

	return comments, totalCount, nil
}

// ListReplies 实现直接回复的分页查询。
func (r *commentRepository) ListReplies(ctx context.Context, parentID uint64, offset, limit int) ([]*entities.Comment, int64, error) {
	var comments []*entities.Comment
	var totalCount int64

	countQuery := r.db.WithContext(ctx).
		Model(&entities.Comment{}).
		Where("parent_id = ?", parentID)
	if err := countQuery.Count(&totalCount).Error; err != nil {
		r.logger.Error("获取回复列表：计数查询失败", zap.Error(err), zap.Uint64("parentID", parentID))
		return nil, 0, fmt.Errorf("计数回复失败: %w", err)
	}

	if totalCount == 0 {
		return comments, 0, nil
	}

	err := r.db.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("created_at ASC").Order("id ASC").
		Offset(offset).Limit(limit).
		Find(&comments).Error
	if err != nil {
		r.logger.Error("获取回复列表：列表查询失败", zap.Error(err), zap.Uint64("parentID", parentID))
		return nil, 0, fmt.Errorf("查询回复列表失败: %w", err)
	}

	return comments, totalCount, nil
}

// ReplyCounts 实现按父评论分组的回复计数。
func (r *commentRepository) ReplyCounts(ctx context.Context, commentIDs []uint64) (map[uint64]int64, error) {
	result := make(map[uint64]int64, len(commentIDs))
	if len(commentIDs) == 0 {
		return result, nil
	}

	type parentCount struct {
		ParentID uint64 `gorm:"column:parent_id"`
		Count    int64  `gorm:"column:cnt"`
	}
	var rows []parentCount
	err := r.db.WithContext(ctx).
		Model(&entities.Comment{}).
		Select("parent_id, COUNT(*) AS cnt").
		Where("parent_id IN ?", commentIDs).
		Group("parent_id").
		Scan(&rows).Error
	if err != nil {
		r.logger.Error("统计回复数查询失败", zap.Error(err))
		return nil, err
	}
	for _, row := range rows {
		result[row.ParentID] = row.Count
	}
	return result, nil
}

// PluckReplyIDs 实现直接回复 ID 的拉取。
func (r *commentRepository) PluckReplyIDs(ctx context.Context, parentID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Model(&entities.Comment{}).
		Where("parent_id = ?", parentID).
		Pluck("id", &ids).Error
	if err != nil {
		r.logger.Error("拉取回复 ID 查询失败", zap.Error(err), zap.Uint64("parentID", parentID))
		return nil, err
	}
	return ids, nil
}

// AggregateCommentTotals 实现评论聚合统计。
func (r *commentRepository) AggregateCommentTotals(ctx context.Context) (int64, int64, int64, error) {
	type totals struct {
		TotalComments int64 `gorm:"column:total_comments"`
		TotalRoots    int64 `gorm:"column:total_roots"`
		TotalLikes    int64 `gorm:"column:total_likes"`
	}
	var row totals
	err := r.db.WithContext(ctx).
		Model(&entities.Comment{}).
		Select("COUNT(*) AS total_comments, " +
			"COALESCE(SUM(CASE WHEN parent_id IS NULL THEN 1 ELSE 0 END), 0) AS total_roots, " +
			"COALESCE(SUM(like_count), 0) AS total_likes").
		Scan(&row).Error
	if err != nil {
		r.logger.Error("评论聚合统计查询失败", zap.Error(err))
		return 0, 0, 0, err
	}
	return row.TotalComments, row.TotalRoots, row.TotalLikes, nil
}

// PluckAllCreatedAt 实现评论创建时间列的全量拉取。
func (r *commentRepository) PluckAllCreatedAt(ctx context.Context) ([]time.Time, error) {
	var createdAts []time.Time
	err := r.db.WithContext(ctx).
		Model(&entities.Comment{}).
		Pluck("created_at", &createdAts).Error
	if err != nil {
		r.logger.Error("拉取评论创建时间列查询失败", zap.Error(err))
		return nil, err
	}
	return createdAts, nil
}

// MostActiveAuthors 实现评论数 Top-N 作者查询。
func (r *commentRepository) MostActiveAuthors(ctx context.Context, limit int) ([]AuthorCommentCount, error) {
	var rows []AuthorCommentCount
	err := r.db.WithContext(ctx).
		Model(&entities.Comment{}).
		Select("author_id, COUNT(*) AS cnt").
		Group("author_id").
		Order("cnt DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		r.logger.Error("统计活跃评论者查询失败", zap.Error(err))
		return nil, err
	}
	return rows, nil
}

// MostLikedComments 实现点赞数 Top-N 评论查询。
func (r *commentRepository) MostLikedComments(ctx context.Context, limit int) ([]*entities.Comment, error) {
	var comments []*entities.Comment
	err := r.db.WithContext(ctx).
		Order("like_count DESC").Order("created_at ASC").
		Limit(limit).
		Find(&comments).Error
	if err != nil {
		r.logger.Error("统计最受欢迎评论查询失败", zap.Error(err))
		return nil, err
	}
	return comments, nil
}

// TopRepliedParents 实现回复数 Top-N 根评论查询。
// 返回 parentID -> 回复数 的映射以及按回复数降序排列的 parentID 切片。
func (r *commentRepository) TopRepliedParents(ctx context.Context, limit int) (map[uint64]int64, []uint64, error) {
	type parentCount struct {
		ParentID uint64 `gorm:"column:parent_id"`
		Count    int64  `gorm:"column:cnt"`
	}
	var rows []parentCount
	// 回复数相同时，创建较早的父评论排在前面
	err := r.db.WithContext(ctx).
		Table("comments AS replies").
		Select("replies.parent_id, COUNT(*) AS cnt").
		Joins("JOIN comments AS parents ON parents.id = replies.parent_id").
		Where("replies.parent_id IS NOT NULL").
		Group("replies.parent_id, parents.created_at").
		Order("cnt DESC").
		Order("parents.created_at ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		r.logger.Error("统计最多回复评论查询失败", zap.Error(err))
		return nil, nil, err
	}

	counts := make(map[uint64]int64, len(rows))
	orderedIDs := make([]uint64, 0, len(rows))
	for _, row := range rows {
		counts[row.ParentID] = row.Count
		orderedIDs = append(orderedIDs, row.ParentID)
	}
	return counts, orderedIDs, nil
}

// GetCommentsByIDs 实现评论的批量主键查询。
func (r *commentRepository) GetCommentsByIDs(ctx context.Context, ids []uint64) ([]*entities.Comment, error) {
	var comments []*entities.Comment
	if len(ids) == 0 {
		return comments, nil
	}
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&comments).Error
	if err != nil {
		r.logger.Error("批量获取评论数据库查询失败", zap.Error(err))
		return nil, err
	}
	return comments, nil
}
