package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/Xushengqwer/go-common/core"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Xushengqwer/blog_service/constant"
	"github.com/Xushengqwer/blog_service/dependencies"
	"github.com/Xushengqwer/blog_service/models/dto"
	"github.com/Xushengqwer/blog_service/models/entities"
	"github.com/Xushengqwer/blog_service/models/enums"
	"github.com/Xushengqwer/blog_service/models/events"
	"github.com/Xushengqwer/blog_service/models/vo"
	"github.com/Xushengqwer/blog_service/myErrors"
	"github.com/Xushengqwer/blog_service/mq/producer"
	"github.com/Xushengqwer/blog_service/repo/mysql"
	"github.com/Xushengqwer/blog_service/repo/redis"
)

// PostService 定义了帖子核心业务逻辑的接口。
type PostService interface {
	// CreatePost 创建帖子，初始状态只允许 draft 或 published（缺省 draft）。
	// - 指定的分类不存在返回 ErrParentNotFound 的分类版 ErrNotFound。
	// - 创建即发布时发送 PostPublished 事件。
	CreatePost(ctx context.Context, actor *entities.User, req *dto.CreatePostRequest) (*vo.PostVO, error)

	// UpdatePost 覆盖式更新帖子（作者或管理员）。
	// - 状态首次变为 published 时发送 PostPublished 事件。
	UpdatePost(ctx context.Context, actor *entities.User, id uint64, req *dto.UpdatePostRequest) (*vo.PostVO, error)

	// DeletePost 硬删除帖子（作者或管理员）。
	// - 帖子、其全部评论与评论点赞在同一事务中删除。
	// - 删除成功后发送 PostDeleted 事件通知下游清理。
	DeletePost(ctx context.Context, actor *entities.User, id uint64) error

	// GetPostByID 获取单个帖子。
	// - 可见性: 非 published 的帖子仅作者与管理员可见，其余请求返回 ErrNotFound。
	// - 已发布帖子的浏览会异步记入 Redis 计数（Bloom Filter 防刷）。
	// - visitorID 为防刷标识：登录用户 ID 或客户端 IP。
	GetPostByID(ctx context.Context, actor *entities.User, id uint64, visitorID string) (*vo.PostVO, error)

	// ListPosts 分页列出帖子，支持状态/分类/作者/标签/标题搜索的组合过滤。
	// - 可见性收紧: 匿名请求强制 status=published；
	//   非管理员只能按自己的 author_id 过滤，传他人的 author_id 返回
	//   ErrForbidden，缺省时强制 author_id=自己。
	ListPosts(ctx context.Context, actor *entities.User, query *dto.PostListQuery) (*vo.PostListVO, error)

	// UploadFeaturedImage 上传帖子头图到 COS 并更新帖子（作者或管理员）。
	// - 旧头图对象做尽力而为的清理。
	UploadFeaturedImage(ctx context.Context, actor *entities.User, postID uint64, file *multipart.FileHeader) (*vo.PostVO, error)

	// GetPostStats 返回帖子统计总览。
	GetPostStats(ctx context.Context, tagLimit int) (*vo.PostStatsVO, error)
}

// postService 是 PostService 接口的具体实现。
type postService struct {
	db              *gorm.DB
	postRepo        mysql.PostRepository
	categoryRepo    mysql.CategoryRepository
	commentRepo     mysql.CommentRepository
	commentLikeRepo mysql.CommentLikeRepository
	catStatsRepo    mysql.CategoryStatsRepository
	postViewRepo    redis.PostViewRepository
	cosClient       dependencies.COSClientInterface
	kafkaSvc        *producer.KafkaProducer
	logger          *core.ZapLogger
}

// NewPostService 是 postService 的构造函数，通过依赖注入初始化服务实例。
func NewPostService(
	db *gorm.DB,
	postRepo mysql.PostRepository,
	categoryRepo mysql.CategoryRepository,
	commentRepo mysql.CommentRepository,
	commentLikeRepo mysql.CommentLikeRepository,
	catStatsRepo mysql.CategoryStatsRepository,
	postViewRepo redis.PostViewRepository,
	cosClient dependencies.COSClientInterface,
	kafkaSvc *producer.KafkaProducer,
	logger *core.ZapLogger,
) PostService {
	return &postService{
		db:              db,
		postRepo:        postRepo,
		categoryRepo:    categoryRepo,
		commentRepo:     commentRepo,
		commentLikeRepo: commentLikeRepo,
		catStatsRepo:    catStatsRepo,
		postViewRepo:    postViewRepo,
		cosClient:       cosClient,
		kafkaSvc:        kafkaSvc,
		logger:          logger,
	}
}

// validateCategory 校验可选的分类引用。
func (s *postService) validateCategory(ctx context.Context, categoryID *uint64) error {
	if categoryID == nil {
		return nil
	}
	if _, err := s.categoryRepo.GetCategoryByID(ctx, *categoryID); err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			return fmt.Errorf("%w: category %d", myErrors.ErrNotFound, *categoryID)
		}
		return fmt.Errorf("校验分类失败: %w", err)
	}
	return nil
}

// publishEvent 发送帖子发布事件，失败只记日志不影响主流程。
func (s *postService) publishEvent(ctx context.Context, post *entities.Post) {
	if s.kafkaSvc == nil {
		return
	}
	data := events.PostEventData{
		PostID:     post.ID,
		Title:      post.Title,
		AuthorID:   post.AuthorID,
		CategoryID: post.CategoryID,
		Tags:       post.Tags,
	}
	if err := s.kafkaSvc.SendPostPublishedEvent(ctx, data); err != nil {
		s.logger.Warn("发送帖子发布事件失败", zap.Error(err), zap.Uint64("postID", post.ID))
	}
}

// CreatePost 实现帖子创建流程。
func (s *postService) CreatePost(ctx context.Context, actor *entities.User, req *dto.CreatePostRequest) (*vo.PostVO, error) {
	if actor == nil {
		return nil, myErrors.ErrUnauthenticated
	}

	status := req.Status
	if status == "" {
		status = enums.PostStatusDraft
	}
	if status != enums.PostStatusDraft && status != enums.PostStatusPublished {
		return nil, fmt.Errorf("%w: 初始状态只允许 draft 或 published", myErrors.ErrValidation)
	}

	if err := s.validateCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	allowComments := true
	if req.AllowComments != nil {
		allowComments = *req.AllowComments
	}

	post := &entities.Post{
		Title:         req.Title,
		Content:       req.Content,
		Excerpt:       req.Excerpt,
		AuthorID:      actor.ID,
		CategoryID:    req.CategoryID,
		Status:        status,
		Tags:          req.Tags,
		IsFeatured:    req.IsFeatured,
		AllowComments: allowComments,
	}

	if err := s.postRepo.CreatePost(ctx, s.db, post); err != nil {
		return nil, fmt.Errorf("创建帖子失败: %w", err)
	}

	s.logger.Info("帖子创建成功",
		zap.Uint64("postID", post.ID),
		zap.Uint64("authorID", actor.ID),
		zap.String("status", string(post.Status)),
	)

	if post.Status == enums.PostStatusPublished {
		s.publishEvent(ctx, post)
	}
	return vo.MapPostToVO(post), nil
}

// UpdatePost 实现帖子的覆盖式更新流程。
func (s *postService) UpdatePost(ctx context.Context, actor *entities.User, id uint64, req *dto.UpdatePostRequest) (*vo.PostVO, error) {
	post, err := s.postRepo.GetPostByID(ctx, id)
	if err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			return nil, myErrors.ErrNotFound
		}
		return nil, fmt.Errorf("获取帖子失败: %w", err)
	}

	if err := AuthorizeOwnerOrAdmin(actor, post.AuthorID); err != nil {
		return nil, err
	}

	if err := s.validateCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	wasPublished := post.Status == enums.PostStatusPublished

	post.Title = req.Title
	post.Content = req.Content
	post.Excerpt = req.Excerpt
	post.Tags = req.Tags
	post.CategoryID = req.CategoryID
	post.IsFeatured = req.IsFeatured
	post.AllowComments = req.AllowComments
	if req.Status != nil {
		post.Status = *req.Status
	}

	if err := s.postRepo.SavePost(ctx, post); err != nil {
		return nil, fmt.Errorf("保存帖子失败: %w", err)
	}

	s.logger.Info("帖子更新成功", zap.Uint64("postID", post.ID))

	if !wasPublished && post.Status == enums.PostStatusPublished {
		s.publishEvent(ctx, post)
	}
	return vo.MapPostToVO(post), nil
}

// DeletePost 实现帖子及其评论、点赞的级联硬删除。
func (s *postService) DeletePost(ctx context.Context, actor *entities.User, id uint64) error {
	post, err := s.postRepo.GetPostByID(ctx, id)
	if err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			return myErrors.ErrNotFound
		}
		return fmt.Errorf("获取帖子失败: %w", err)
	}

	if err := AuthorizeOwnerOrAdmin(actor, post.AuthorID); err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 先删点赞（依赖评论行定位），再删评论，最后删帖子
		if err := s.commentLikeRepo.DeleteLikesByPostID(ctx, tx, id); err != nil {
			return err
		}
		if err := s.commentRepo.DeleteCommentsByPostID(ctx, tx, id); err != nil {
			return err
		}
		return s.postRepo.DeletePost(ctx, tx, id)
	})
	if err != nil {
		return fmt.Errorf("删除帖子失败: %w", err)
	}

	s.logger.Info("帖子删除成功", zap.Uint64("postID", id))

	if s.kafkaSvc != nil {
		if err := s.kafkaSvc.SendPostDeleteEvent(ctx, id); err != nil {
			s.logger.Warn("发送帖子删除事件失败", zap.Error(err), zap.Uint64("postID", id))
		}
	}
	return nil
}

// GetPostByID 实现单个帖子的查询与浏览计数。
func (s *postService) GetPostByID(ctx context.Context, actor *entities.User, id uint64, visitorID string) (*vo.PostVO, error) {
	post, err := s.postRepo.GetPostByID(ctx, id)
	if err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			return nil, myErrors.ErrNotFound
		}
		return nil, fmt.Errorf("获取帖子失败: %w", err)
	}

	// 非 published 的帖子对外不暴露存在性，统一返回 NotFound
	if post.Status != enums.PostStatusPublished {
		if err := AuthorizeOwnerOrAdmin(actor, post.AuthorID); err != nil {
			return nil, myErrors.ErrNotFound
		}
	}

	// 浏览计数走 Redis，异步且不影响读取主流程
	if post.Status == enums.PostStatusPublished && s.postViewRepo != nil && visitorID != "" {
		go func(postID uint64, visitor string) {
			viewCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := s.postViewRepo.IncrementViewCount(viewCtx, postID, visitor); err != nil {
				s.logger.Warn("异步增加浏览量失败", zap.Error(err), zap.Uint64("postID", postID))
			}
		}(post.ID, visitorID)
	}

	return vo.MapPostToVO(post), nil
}

// ListPosts 实现帖子列表查询，在仓库查询前收紧可见性。
func (s *postService) ListPosts(ctx context.Context, actor *entities.User, query *dto.PostListQuery) (*vo.PostListVO, error) {
	effective := *query

	published := enums.PostStatusPublished
	switch {
	case actor == nil:
		// 匿名只看已发布
		effective.Status = &published
	case actor.Role != enums.RoleAdmin:
		// 普通用户只能按自己的 author_id 过滤，传他人的直接拒绝
		if effective.AuthorID != nil && *effective.AuthorID != actor.ID {
			return nil, myErrors.ErrForbidden
		}
		effective.AuthorID = &actor.ID
	}

	posts, total, err := s.postRepo.ListPosts(ctx, &effective)
	if err != nil {
		return nil, err
	}

	return &vo.PostListVO{
		Posts: vo.MapPostsToVOs(posts),
		Total: total,
	}, nil
}

// UploadFeaturedImage 实现头图上传流程。
func (s *postService) UploadFeaturedImage(ctx context.Context, actor *entities.User, postID uint64, file *multipart.FileHeader) (*vo.PostVO, error) {
	if s.cosClient == nil {
		return nil, fmt.Errorf("对象存储未启用")
	}

	post, err := s.postRepo.GetPostByID(ctx, postID)
	if err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			return nil, myErrors.ErrNotFound
		}
		return nil, fmt.Errorf("获取帖子失败: %w", err)
	}

	if err := AuthorizeOwnerOrAdmin(actor, post.AuthorID); err != nil {
		return nil, err
	}

	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: 头图必须是图片文件", myErrors.ErrValidation)
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("打开上传文件失败: %w", err)
	}
	defer src.Close()

	objectKey := fmt.Sprintf("%s%s%s",
		constant.COSObjectKeyPrefixFeaturedImages,
		uuid.New().String(),
		strings.ToLower(filepath.Ext(file.Filename)),
	)

	publicURL, err := s.cosClient.UploadFile(ctx, objectKey, src, file.Size, contentType)
	if err != nil {
		return nil, fmt.Errorf("上传头图失败: %w", err)
	}

	oldImage := post.FeaturedImage
	if err := s.postRepo.SetFeaturedImage(ctx, postID, publicURL); err != nil {
		return nil, fmt.Errorf("更新帖子头图失败: %w", err)
	}
	post.FeaturedImage = publicURL

	// 旧头图对象尽力清理，失败不影响结果
	if idx := strings.Index(oldImage, constant.COSObjectKeyPrefixFeaturedImages); idx >= 0 {
		oldKey := oldImage[idx:]
		if err := s.cosClient.DeleteObject(ctx, oldKey); err != nil {
			s.logger.Warn("清理旧头图对象失败", zap.Error(err), zap.String("objectKey", oldKey))
		}
	}

	s.logger.Info("帖子头图上传成功", zap.Uint64("postID", postID), zap.String("url", publicURL))
	return vo.MapPostToVO(post), nil
}

// GetPostStats 实现帖子统计总览。
// 标签频次在内存中聚合：tags 列以 JSON 文本整列拉取后逐行解析，
// 避免依赖方言相关的 JSON 函数。
func (s *postService) GetPostStats(ctx context.Context, tagLimit int) (*vo.PostStatsVO, error) {
	if tagLimit <= 0 {
		tagLimit = 10
	}

	totalPosts, totalViews, totalLikes, err := s.postRepo.AggregatePostTotals(ctx)
	if err != nil {
		return nil, err
	}

	totalComments, _, _, err := s.commentRepo.AggregateCommentTotals(ctx)
	if err != nil {
		return nil, err
	}

	byStatus, err := s.postRepo.CountPostsByStatus(ctx)
	if err != nil {
		return nil, err
	}

	byCategory, err := s.catStatsRepo.PostCountsByCategory(ctx)
	if err != nil {
		return nil, err
	}

	rawTags, err := s.postRepo.PluckPublishedTags(ctx)
	if err != nil {
		return nil, err
	}

	tagCounts := make(map[string]int64)
	for _, raw := range rawTags {
		var tags []string
		if err := json.Unmarshal([]byte(raw), &tags); err != nil {
			s.logger.Warn("解析帖子标签 JSON 失败，已跳过该行", zap.Error(err))
			continue
		}
		for _, tag := range tags {
			if tag != "" {
				tagCounts[tag]++
			}
		}
	}

	popular := make([]vo.TagCountVO, 0, len(tagCounts))
	for tag, count := range tagCounts {
		popular = append(popular, vo.TagCountVO{Tag: tag, Count: count})
	}
	sort.Slice(popular, func(i, j int) bool {
		if popular[i].Count != popular[j].Count {
			return popular[i].Count > popular[j].Count
		}
		return popular[i].Tag < popular[j].Tag
	})
	if len(popular) > tagLimit {
		popular = popular[:tagLimit]
	}

	return &vo.PostStatsVO{
		TotalPosts:      totalPosts,
		TotalViews:      totalViews,
		TotalLikes:      totalLikes,
		TotalComments:   totalComments,
		PostsByStatus:   byStatus,
		PostsByCategory: byCategory,
		PopularTags:     popular,
	}, nil
}
