package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Xushengqwer/go-common/core"
	"github.com/brianvoe/gofakeit/v6"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Xushengqwer/blog_service/models/dto"
	"github.com/Xushengqwer/blog_service/models/entities"
	"github.com/Xushengqwer/blog_service/models/enums"
	"github.com/Xushengqwer/blog_service/myErrors"
	"github.com/Xushengqwer/blog_service/repo/mysql"
	"github.com/Xushengqwer/blog_service/service"
)

// Seeder 通过服务层填充测试数据：用户 -> 分类树 -> 帖子 -> 评论与点赞。
// 走服务层而不是直接写表，这样填充出的数据天然满足业务校验。
type Seeder struct {
	db         *gorm.DB
	userRepo   mysql.UserRepository
	authSvc    service.AuthService
	categories service.CategoryService
	posts      service.PostService
	comments   service.CommentService
	logger     *core.ZapLogger
}

// Seed 按顺序执行各阶段填充。
func (s *Seeder) Seed(ctx context.Context, numUsers, numPosts, numComments int) error {
	users, admin, err := s.seedUsers(ctx, numUsers)
	if err != nil {
		return fmt.Errorf("填充用户失败: %w", err)
	}

	categoryIDs, err := s.seedCategories(ctx, admin)
	if err != nil {
		return fmt.Errorf("填充分类失败: %w", err)
	}

	postIDs, err := s.seedPosts(ctx, users, categoryIDs, numPosts)
	if err != nil {
		return fmt.Errorf("填充帖子失败: %w", err)
	}

	if err := s.seedComments(ctx, users, postIDs, numComments); err != nil {
		return fmt.Errorf("填充评论失败: %w", err)
	}

	s.logger.Info("测试数据填充完毕 (通过服务层)。")
	return nil
}

// seedUsers 注册 numUsers 个用户，并把第一个用户提升为管理员。
// 角色提升没有对应的服务接口（注册永远是普通用户），这里直接更新数据库。
func (s *Seeder) seedUsers(ctx context.Context, numUsers int) ([]*entities.User, *entities.User, error) {
	users := make([]*entities.User, 0, numUsers)
	for i := 0; i < numUsers; i++ {
		req := &dto.RegisterRequest{
			Email:    fmt.Sprintf("seed_%d_%s", i, gofakeit.Email()),
			Username: fmt.Sprintf("%s_%d", gofakeit.Username(), i),
			Password: "Seeder@12345678",
			FullName: gofakeit.Name(),
		}
		userVO, err := s.authSvc.Register(ctx, req)
		if err != nil {
			return nil, nil, err
		}
		user, err := s.userRepo.GetUserByID(ctx, userVO.ID)
		if err != nil {
			return nil, nil, err
		}
		users = append(users, user)
	}

	admin := users[0]
	if err := s.db.WithContext(ctx).Model(&entities.User{}).
		Where("id = ?", admin.ID).
		Update("role", enums.RoleAdmin).Error; err != nil {
		return nil, nil, err
	}
	admin.Role = enums.RoleAdmin

	s.logger.Info("用户填充完成", zap.Int("数量", len(users)), zap.Uint64("管理员ID", admin.ID))
	return users, admin, nil
}

// seedCategories 以管理员身份创建一棵两层分类树，返回全部分类 ID。
func (s *Seeder) seedCategories(ctx context.Context, admin *entities.User) ([]uint64, error) {
	var ids []uint64
	numRoots := 4
	for i := 0; i < numRoots; i++ {
		rootReq := &dto.CreateCategoryRequest{
			Name:        gofakeit.BookGenre(),
			Slug:        seedSlug(i),
			Description: gofakeit.Sentence(8),
			Order:       i,
		}
		rootVO, err := s.categories.CreateCategory(ctx, admin, rootReq)
		if err != nil {
			return nil, err
		}
		ids = append(ids, rootVO.ID)

		numChildren := gofakeit.Number(1, 3)
		for j := 0; j < numChildren; j++ {
			childReq := &dto.CreateCategoryRequest{
				Name:        gofakeit.Noun(),
				Slug:        fmt.Sprintf("%s-%d", seedSlug(i), j),
				Description: gofakeit.Sentence(6),
				ParentID:    &rootVO.ID,
				Order:       j,
			}
			childVO, err := s.categories.CreateCategory(ctx, admin, childReq)
			if err != nil {
				return nil, err
			}
			ids = append(ids, childVO.ID)
		}
	}

	s.logger.Info("分类填充完成", zap.Int("数量", len(ids)))
	return ids, nil
}

// seedPosts 并发创建帖子，大部分直接发布，少量保留为草稿。
func (s *Seeder) seedPosts(ctx context.Context, users []*entities.User, categoryIDs []uint64, numPosts int) ([]uint64, error) {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		postIDs []uint64
	)
	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	for i := 0; i < numPosts; i++ {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(itemIndex int) {
			defer wg.Done()
			defer func() { <-semaphore }()

			author := users[gofakeit.Number(0, len(users)-1)]
			status := enums.PostStatusPublished
			if gofakeit.Number(1, 10) <= 2 {
				status = enums.PostStatusDraft
			}

			createReq := &dto.CreatePostRequest{
				Title:   gofakeit.Sentence(gofakeit.Number(5, 12)),
				Content: gofakeit.Paragraph(3, 5, 20, "\n\n"),
				Excerpt: gofakeit.Sentence(15),
				Tags:    seedTags(),
				Status:  status,
			}
			if len(categoryIDs) > 0 && gofakeit.Bool() {
				categoryID := categoryIDs[gofakeit.Number(0, len(categoryIDs)-1)]
				createReq.CategoryID = &categoryID
			}

			postVO, err := s.posts.CreatePost(ctx, author, createReq)
			if err != nil {
				s.logger.Error(fmt.Sprintf("创建帖子 %d/%d 失败", itemIndex+1, numPosts),
					zap.Error(err),
					zap.String("title", createReq.Title),
					zap.Uint64("author_id", author.ID))
				return
			}

			// 草稿对其他用户不可见，评论阶段只用已发布的帖子。
			if postVO.Status == enums.PostStatusPublished {
				mu.Lock()
				postIDs = append(postIDs, postVO.ID)
				mu.Unlock()
			}
		}(i)
	}

	wg.Wait()
	s.logger.Info("帖子填充完成", zap.Int("已发布", len(postIDs)), zap.Int("总数", numPosts))
	return postIDs, nil
}

// seedComments 在已发布帖子下生成根评论、回复和点赞。
func (s *Seeder) seedComments(ctx context.Context, users []*entities.User, postIDs []uint64, numComments int) error {
	if len(postIDs) == 0 || numComments == 0 {
		return nil
	}

	// postID -> 已创建的根评论 ID，用于随机挂回复
	rootComments := make(map[uint64][]uint64)

	for i := 0; i < numComments; i++ {
		commenter := users[gofakeit.Number(0, len(users)-1)]
		postID := postIDs[gofakeit.Number(0, len(postIDs)-1)]

		req := &dto.CreateCommentRequest{
			Content: gofakeit.Sentence(gofakeit.Number(5, 25)),
		}
		// 约三分之一的评论作为回复挂到该帖子的某条根评论下。
		if roots := rootComments[postID]; len(roots) > 0 && gofakeit.Number(1, 3) == 1 {
			parentID := roots[gofakeit.Number(0, len(roots)-1)]
			req.ParentID = &parentID
		}

		commentVO, err := s.comments.CreateComment(ctx, commenter, postID, req)
		if err != nil {
			s.logger.Error(fmt.Sprintf("创建评论 %d/%d 失败", i+1, numComments),
				zap.Error(err), zap.Uint64("post_id", postID))
			continue
		}
		if commentVO.ParentID == nil {
			rootComments[postID] = append(rootComments[postID], commentVO.ID)
		}

		// 随机点赞，重复点赞直接忽略。
		if gofakeit.Bool() {
			liker := users[gofakeit.Number(0, len(users)-1)]
			if err := s.comments.LikeComment(ctx, liker, commentVO.ID); err != nil &&
				!errors.Is(err, myErrors.ErrAlreadyLiked) {
				s.logger.Warn("点赞评论失败", zap.Error(err), zap.Uint64("comment_id", commentVO.ID))
			}
		}
	}

	s.logger.Info("评论填充完成", zap.Int("数量", numComments))
	return nil
}

// seedSlug 生成符合 slug 格式（小写字母数字 + 连字符）的唯一值。
func seedSlug(index int) string {
	word := strings.ToLower(gofakeit.Word())
	return fmt.Sprintf("%s-%d-%s", word, index, strings.ToLower(gofakeit.LetterN(4)))
}

func seedTags() []string {
	n := gofakeit.Number(0, 4)
	tags := make([]string, 0, n)
	for i := 0; i < n; i++ {
		tags = append(tags, strings.ToLower(gofakeit.Word()))
	}
	return tags
}
