package mysql

import (
	"context"
	"errors"

	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Xushengqwer/blog_service/models/entities"
)

// CommentLikeRepository 定义了评论点赞记录在 MySQL 中的持久化操作接口。
// 写入方法接受外部 db 句柄，以便与 comments.like_count 的增减处于同一事务。
type CommentLikeRepository interface {
	// GetLike 查询指定用户对指定评论的点赞记录。
	// - 未找到时返回 commonerrors.ErrRepoNotFound，服务层据此判断是否已点赞。
	GetLike(ctx context.Context, db *gorm.DB, userID, commentID uint64) (*entities.CommentLike, error)

	// CreateLike 插入一条点赞记录，唯一索引兜底防止并发重复点赞。
	CreateLike(ctx context.Context, db *gorm.DB, like *entities.CommentLike) error

	// DeleteLike 删除指定用户对指定评论的点赞记录。
	// - 未删除任何行时返回 commonerrors.ErrRepoNotFound。
	DeleteLike(ctx context.Context, db *gorm.DB, userID, commentID uint64) error

	// DeleteLikesByCommentIDs 批量删除指定评论集合的全部点赞记录，删除评论时级联调用。
	DeleteLikesByCommentIDs(ctx context.Context, db *gorm.DB, commentIDs []uint64) error

	// DeleteLikesByPostID 删除指定帖子下全部评论的点赞记录，删除帖子时级联调用。
	DeleteLikesByPostID(ctx context.Context, db *gorm.DB, postID uint64) error
}

// commentLikeRepository 是 CommentLikeRepository 接口针对 MySQL 的具体实现。
type commentLikeRepository struct {
	db     *gorm.DB
	logger *core.ZapLogger
}

// NewCommentLikeRepository 是 commentLikeRepository 的构造函数。
func NewCommentLikeRepository(db *gorm.DB, logger *core.ZapLogger) CommentLikeRepository {
	return &commentLikeRepository{
		db:     db,
		logger: logger,
	}
}

// GetLike 实现点赞记录的查询。
func (r *commentLikeRepository) GetLike(ctx context.Context, db *gorm.DB, userID, commentID uint64) (*entities.CommentLike, error) {
	var like entities.CommentLike
	err := db.WithContext(ctx).
		Where("user_id = ? AND comment_id = ?", userID, commentID).
		First(&like).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, commonerrors.ErrRepoNotFound
		}
		r.logger.Error("查询评论点赞记录失败", zap.Error(err),
			zap.Uint64("userID", userID), zap.Uint64("commentID", commentID))
		return nil, err
	}
	return &like, nil
}

// CreateLike 实现点赞记录的插入。
func (r *commentLikeRepository) CreateLike(ctx context.Context, db *gorm.DB, like *entities.CommentLike) error {
	if err := db.WithContext(ctx).Create(like).Error; err != nil {
		r.logger.Error("创建评论点赞记录失败", zap.Error(err),
			zap.Uint64("userID", like.UserID), zap.Uint64("commentID", like.CommentID))
		return err
	}
	return nil
}

// DeleteLike 实现点赞记录的删除。
func (r *commentLikeRepository) DeleteLike(ctx context.Context, db *gorm.DB, userID, commentID uint64) error {
	result := db.WithContext(ctx).
		Where("user_id = ? AND comment_id = ?", userID, commentID).
		Delete(&entities.CommentLike{})
	if result.Error != nil {
		r.logger.Error("删除评论点赞记录失败", zap.Error(result.Error),
			zap.Uint64("userID", userID), zap.Uint64("commentID", commentID))
		return result.Error
	}
	if result.RowsAffected == 0 {
		return commonerrors.ErrRepoNotFound
	}
	return nil
}

// DeleteLikesByCommentIDs 实现点赞记录按评论集合的批量删除。
func (r *commentLikeRepository) DeleteLikesByCommentIDs(ctx context.Context, db *gorm.DB, commentIDs []uint64) error {
	if len(commentIDs) == 0 {
		return nil
	}
	return db.WithContext(ctx).
		Where("comment_id IN ?", commentIDs).
		Delete(&entities.CommentLike{}).Error
}

// DeleteLikesByPostID 实现按帖子维度的点赞记录级联删除，子查询定位帖子下的全部评论。
func (r *commentLikeRepository) DeleteLikesByPostID(ctx context.Context, db *gorm.DB, postID uint64) error {
	subQuery := db.WithContext(ctx).
		Model(&entities.Comment{}).
		Select("id").
		Where("post_id = ?", postID)
	return db.WithContext(ctx).
		Where("comment_id IN (?)", subQuery).
		Delete(&entities.CommentLike{}).Error
}
