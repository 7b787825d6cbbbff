package service

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
	"github.com/Xushengqwer/blog_service/models/vo"
	"github.com/Xushengqwer/blog_service/myErrors"
	"github.com/Xushengqwer/blog_service/repo/mysql"
)

// CommentService 定义了评论线程的业务逻辑接口。
//
// 评论树是两层结构：根评论挂在帖子上，回复挂在评论上。
// like_count 与 comment_likes 行的增删始终在同一事务内配对执行，
// 计数下限为 0（对既有漂移保持防御）。
type CommentService interface {
	// CreateComment 在帖子下发表评论或回复。
	// - 帖子不存在返回 ErrPostNotFound，帖子关闭评论返回 ErrCommentsDisabled。
	// - 回复时父评论不存在返回 ErrParentCommentNotFound，
	//   父评论属于其他帖子返回 ErrParentPostMismatch。
	CreateComment(ctx context.Context, actor *entities.User, postID uint64, req *dto.CreateCommentRequest) (*vo.CommentVO, error)

	// EditComment 编辑评论内容（作者或管理员），is_edited 置位后不再回退。
	EditComment(ctx context.Context, actor *entities.User, id uint64, req *dto.UpdateCommentRequest) (*vo.CommentVO, error)

	// DeleteComment 硬删除评论（作者或管理员）。
	// - 级联策略: 直接回复与全部相关点赞记录在同一事务中一并删除，
	//   避免悬挂的 parent_id 引用。
	DeleteComment(ctx context.Context, actor *entities.User, id uint64) error

	// LikeComment 点赞评论。重复点赞返回 ErrAlreadyLiked。
	LikeComment(ctx context.Context, actor *entities.User, commentID uint64) error

	// UnlikeComment 取消点赞。未点赞返回 ErrNotLiked。
	UnlikeComment(ctx context.Context, actor *entities.User, commentID uint64) error

	// GetCommentByID 获取单条评论，附带读取时计算的 reply_count。
	GetCommentByID(ctx context.Context, id uint64) (*vo.CommentVO, error)

	// ListComments 分页列出评论。
	// - query.ParentID 缺省时返回帖子的根评论，否则返回该评论的回复。
	// - 每条评论都带有读取时计算的 reply_count。
	ListComments(ctx context.Context, postID uint64, query *dto.CommentListQuery) (*vo.CommentListVO, error)

	// GetCommentStats 返回评论统计总览。
	GetCommentStats(ctx context.Context, limit int) (*vo.CommentStatsVO, error)
}

// commentService 是 CommentService 接口的具体实现。
type commentService struct {
	db              *gorm.DB
	commentRepo     mysql.CommentRepository
	commentLikeRepo mysql.CommentLikeRepository
	postRepo        mysql.PostRepository
	logger          *core.ZapLogger
}

// NewCommentService 是 commentService 的构造函数。
func NewCommentService(db *gorm.DB, commentRepo mysql.CommentRepository, commentLikeRepo mysql.CommentLikeRepository, postRepo mysql.PostRepository, logger *core.ZapLogger) CommentService {
	return &commentService{
		db:              db,
		commentRepo:     commentRepo,
		commentLikeRepo: commentLikeRepo,
		postRepo:        postRepo,
		logger:          logger,
	}
}

// CreateComment 实现评论创建流程。
func (s *commentService) CreateComment(ctx context.Context, actor *entities.User, postID uint64, req *dto.CreateCommentRequest) (*vo.CommentVO, error) {
	if actor == nil {
		return nil, myErrors.ErrUnauthenticated
	}

	post, err := s.postRepo.GetPostByID(ctx, postID)
	if err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			return nil, myErrors.ErrPostNotFound
		}
		return nil, fmt.Errorf("获取帖子失败: %w", err)
	}
	if !post.AllowComments {
		return nil, myErrors.ErrCommentsDisabled
	}

	if req.ParentID != nil {
		parent, err := s.commentRepo.GetCommentByID(ctx, *req.ParentID)
		if err != nil {
			if errors.Is(err, commonerrors.ErrRepoNotFound) {
				return nil, myErrors.ErrParentCommentNotFound
			}
			return nil, fmt.Errorf("获取父评论失败: %w", err)
		}
		if parent.PostID != postID {
			return nil, myErrors.ErrParentPostMismatch
		}
	}

	comment := &entities.Comment{
		Content:  req.Content,
		AuthorID: actor.ID,
		PostID:   postID,
		ParentID: req.ParentID,
	}
	if err := s.commentRepo.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("创建评论失败: %w", err)
	}

	s.logger.Info("评论创建成功",
		zap.Uint64("commentID", comment.ID),
		zap.Uint64("postID", postID),
		zap.Uint64("authorID", actor.ID),
	)
	return vo.MapCommentToVO(comment, 0), nil
}

// EditComment 实现评论编辑流程。
func (s *commentService) EditComment(ctx context.Context, actor *entities.User, id uint64, req *dto.UpdateCommentRequest) (*vo.CommentVO, error) {
	comment, err := s.commentRepo.GetCommentByID(ctx, id)
	if err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			return nil, myErrors.ErrNotFound
		}
		return nil, fmt.Errorf("获取评论失败: %w", err)
	}

	if err := AuthorizeOwnerOrAdmin(actor, comment.AuthorID); err != nil {
		return nil, err
	}

	comment.Content = req.Content
	comment.IsEdited = true
	if err := s.commentRepo.SaveComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("保存评论失败: %w", err)
	}

	replyCounts, err := s.commentRepo.ReplyCounts(ctx, []uint64{comment.ID})
	if err != nil {
		return nil, err
	}

	s.logger.Info("评论编辑成功", zap.Uint64("commentID", comment.ID))
	return vo.MapCommentToVO(comment, replyCounts[comment.ID]), nil
}

// DeleteComment 实现评论与其回复、点赞的级联删除。
func (s *commentService) DeleteComment(ctx context.Context, actor *entities.User, id uint64) error {
	comment, err := s.commentRepo.GetCommentByID(ctx, id)
	if err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			return myErrors.ErrNotFound
		}
		return fmt.Errorf("获取评论失败: %w", err)
	}

	if err := AuthorizeOwnerOrAdmin(actor, comment.AuthorID); err != nil {
		return err
	}

	replyIDs, err := s.commentRepo.PluckReplyIDs(ctx, id)
	if err != nil {
		return fmt.Errorf("收集回复失败: %w", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.commentLikeRepo.DeleteLikesByCommentIDs(ctx, tx, append(replyIDs, id)); err != nil {
			return err
		}
		if err := s.commentRepo.DeleteReplies(ctx, tx, id); err != nil {
			return err
		}
		return s.commentRepo.DeleteComment(ctx, tx, id)
	})
	if err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			return myErrors.ErrNotFound
		}
		return fmt.Errorf("删除评论失败: %w", err)
	}

	s.logger.Info("评论删除成功", zap.Uint64("commentID", id), zap.Int("cascadedReplies", len(replyIDs)))
	return nil
}

// LikeComment 实现点赞：点赞行插入与计数自增在同一事务中完成。
func (s *commentService) LikeComment(ctx context.Context, actor *entities.User, commentID uint64) error {
	if actor == nil {
		return myErrors.ErrUnauthenticated
	}

	if _, err := s.commentRepo.GetCommentByID(ctx, commentID); err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			return myErrors.ErrNotFound
		}
		return fmt.Errorf("获取评论失败: %w", err)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.commentLikeRepo.GetLike(ctx, tx, actor.ID, commentID); err == nil {
			return myErrors.ErrAlreadyLiked
		} else if !errors.Is(err, commonerrors.ErrRepoNotFound) {
			return err
		}

		like := &entities.CommentLike{UserID: actor.ID, CommentID: commentID}
		if err := s.commentLikeRepo.CreateLike(ctx, tx, like); err != nil {
			// 并发点赞可能双双通过前置检查，唯一索引兜底
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return myErrors.ErrAlreadyLiked
			}
			return err
		}
		return s.commentRepo.IncrementLikeCount(ctx, tx, commentID)
	})
	if err != nil {
		if errors.Is(err, myErrors.ErrAlreadyLiked) {
			return err
		}
		return fmt.Errorf("点赞评论失败: %w", err)
	}

	s.logger.Info("评论点赞成功", zap.Uint64("commentID", commentID), zap.Uint64("userID", actor.ID))
	return nil
}

// UnlikeComment 实现取消点赞：点赞行删除与计数自减在同一事务中完成，计数不会降到负数。
func (s *commentService) UnlikeComment(ctx context.Context, actor *entities.User, commentID uint64) error {
	if actor == nil {
		return myErrors.ErrUnauthenticated
	}

	if _, err := s.commentRepo.GetCommentByID(ctx, commentID); err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			return myErrors.ErrNotFound
		}
		return fmt.Errorf("获取评论失败: %w", err)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.commentLikeRepo.DeleteLike(ctx, tx, actor.ID, commentID); err != nil {
			if errors.Is(err, commonerrors.ErrRepoNotFound) {
				return myErrors.ErrNotLiked
			}
			return err
		}
		return s.commentRepo.DecrementLikeCount(ctx, tx, commentID)
	})
	if err != nil {
		if errors.Is(err, myErrors.ErrNotLiked) {
			return err
		}
		return fmt.Errorf("取消点赞失败: %w", err)
	}

	s.logger.Info("取消点赞成功", zap.Uint64("commentID", commentID), zap.Uint64("userID", actor.ID))
	return nil
}

// GetCommentByID 实现单条评论的查询。
func (s *commentService) GetCommentByID(ctx context.Context, id uint64) (*vo.CommentVO, error) {
	comment, err := s.commentRepo.GetCommentByID(ctx, id)
	if err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			return nil, myErrors.ErrNotFound
		}
		return nil, fmt.Errorf("获取评论失败: %w", err)
	}

	replyCounts, err := s.commentRepo.ReplyCounts(ctx, []uint64{comment.ID})
	if err != nil {
		return nil, err
	}
	return vo.MapCommentToVO(comment, replyCounts[comment.ID]), nil
}

// ListComments 实现评论的分页列表查询。
func (s *commentService) ListComments(ctx context.Context, postID uint64, query *dto.CommentListQuery) (*vo.CommentListVO, error) {
	if _, err := s.postRepo.GetPostByID(ctx, postID); err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			return nil, myErrors.ErrPostNotFound
		}
		return nil, fmt.Errorf("获取帖子失败: %w", err)
	}

	offset := (query.Page - 1) * query.PageSize

	var (
		comments []*entities.Comment
		total    int64
		err      error
	)
	if query.ParentID == nil {
		comments, total, err = s.commentRepo.ListRootComments(ctx, postID, offset, query.PageSize)
	} else {
		parent, perr := s.commentRepo.GetCommentByID(ctx, *query.ParentID)
		if perr != nil {
			if errors.Is(perr, commonerrors.ErrRepoNotFound) {
				return nil, myErrors.ErrParentCommentNotFound
			}
			return nil, fmt.Errorf("获取父评论失败: %w", perr)
		}
		if parent.PostID != postID {
			return nil, myErrors.ErrParentPostMismatch
		}
		comments, total, err = s.commentRepo.ListReplies(ctx, *query.ParentID, offset, query.PageSize)
	}
	if err != nil {
		return nil, err
	}

	ids := make([]uint64, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.ID)
	}
	replyCounts, err := s.commentRepo.ReplyCounts(ctx, ids)
	if err != nil {
		return nil, err
	}

	return &vo.CommentListVO{
		Comments: vo.MapCommentsToVOs(comments, replyCounts),
		Total:    total,
	}, nil
}

// GetCommentStats 实现评论统计总览。
// 小时分布直方图在内存中聚合（整列拉取 created_at 后按小时计数），
// 24 个桶全部存在，没有评论的小时为 0。
func (s *commentService) GetCommentStats(ctx context.Context, limit int) (*vo.CommentStatsVO, error) {
	if limit <= 0 {
		limit = 10
	}

	totalComments, totalRoots, totalLikes, err := s.commentRepo.AggregateCommentTotals(ctx)
	if err != nil {
		return nil, err
	}

	createdAts, err := s.commentRepo.PluckAllCreatedAt(ctx)
	if err != nil {
		return nil, err
	}
	byHour := make(map[int]int64, 24)
	for h := 0; h < 24; h++ {
		byHour[h] = 0
	}
	for _, t := range createdAts {
		byHour[t.Hour()]++
	}

	activeRows, err := s.commentRepo.MostActiveAuthors(ctx, limit)
	if err != nil {
		return nil, err
	}
	mostActive := make([]vo.CommenterCountVO, 0, len(activeRows))
	for _, row := range activeRows {
		mostActive = append(mostActive, vo.CommenterCountVO{AuthorID: row.AuthorID, Count: row.Count})
	}

	liked, err := s.commentRepo.MostLikedComments(ctx, limit)
	if err != nil {
		return nil, err
	}
	likedIDs := make([]uint64, 0, len(liked))
	for _, c := range liked {
		likedIDs = append(likedIDs, c.ID)
	}
	likedReplyCounts, err := s.commentRepo.ReplyCounts(ctx, likedIDs)
	if err != nil {
		return nil, err
	}

	repliedCounts, orderedIDs, err := s.commentRepo.TopRepliedParents(ctx, limit)
	if err != nil {
		return nil, err
	}
	repliedEntities, err := s.commentRepo.GetCommentsByIDs(ctx, orderedIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint64]*entities.Comment, len(repliedEntities))
	for _, c := range repliedEntities {
		byID[c.ID] = c
	}
	mostReplied := make([]*vo.CommentVO, 0, len(orderedIDs))
	for _, id := range orderedIDs {
		if c, ok := byID[id]; ok {
			mostReplied = append(mostReplied, vo.MapCommentToVO(c, repliedCounts[id]))
		}
	}

	return &vo.CommentStatsVO{
		TotalComments:        totalComments,
		TotalRootComments:    totalRoots,
		TotalReplies:         totalComments - totalRoots,
		TotalLikes:           totalLikes,
		CommentsByHour:       byHour,
		MostActiveCommenters: mostActive,
		MostLiked:            vo.MapCommentsToVOs(liked, likedReplyCounts),
		MostReplied:          mostReplied,
	}, nil
}
