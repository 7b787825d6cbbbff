package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"

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

// slugPattern 小写字母数字段，用单个连字符连接。
var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// CategoryService 定义了分类树的业务逻辑接口。
//
// 树形遍历（祖先、后代、深度统计）不依赖递归 SQL：
// 先全量拉取分类构建内存中的 id -> 节点映射和父 -> 子索引，
// 再用带 visited 集合的迭代遍历，保证脏数据中的环不会造成死循环。
type CategoryService interface {
	// CreateCategory 创建分类（管理员专属）。
	// - slug 不符合格式返回 ErrValidation，已被占用返回 ErrDuplicateSlug。
	// - 指定的父分类不存在返回 ErrParentNotFound。
	CreateCategory(ctx context.Context, actor *entities.User, req *dto.CreateCategoryRequest) (*vo.CategoryVO, error)

	// UpdateCategory 部分更新分类（管理员专属）。
	// - 变更父分类时，新父分类不能是自身或自身的后代，否则返回 ErrCyclicParent。
	UpdateCategory(ctx context.Context, actor *entities.User, id uint64, req *dto.UpdateCategoryRequest) (*vo.CategoryVO, error)

	// DeleteCategory 删除分类（管理员专属）。
	// - 仍有子分类时返回 ErrHasChildren。
	// - 删除与关联帖子的 category_id 置空在同一事务内完成。
	DeleteCategory(ctx context.Context, actor *entities.User, id uint64) error

	// GetCategoryByID 获取单个分类，附带其关联的已发布帖子数。
	GetCategoryByID(ctx context.Context, id uint64) (*vo.CategoryVO, error)

	// ListCategories 分页列出分类。
	// - ParentID 缺省时返回根分类，否则返回该父分类的直接子分类。
	// - 排序: order 升序，创建时间升序；总数为真实 COUNT。
	ListCategories(ctx context.Context, query *dto.CategoryListQuery) (*vo.CategoryListVO, error)

	// GetAncestors 返回指定分类的祖先链，从最近的父级到根，不含自身。
	GetAncestors(ctx context.Context, id uint64) ([]*vo.CategoryVO, error)

	// GetDescendants 返回指定分类的全部后代（任意深度），不含自身。
	GetDescendants(ctx context.Context, id uint64) ([]*vo.CategoryVO, error)

	// GetCategoryStats 返回分类统计总览：总数、深度分布与最活跃分类。
	GetCategoryStats(ctx context.Context, limit int) (*vo.CategoryStatsVO, error)
}

// categoryService 是 CategoryService 接口的具体实现。
type categoryService struct {
	db           *gorm.DB
	categoryRepo mysql.CategoryRepository
	statsRepo    mysql.CategoryStatsRepository
	logger       *core.ZapLogger
}

// NewCategoryService 是 categoryService 的构造函数。
func NewCategoryService(db *gorm.DB, categoryRepo mysql.CategoryRepository, statsRepo mysql.CategoryStatsRepository, logger *core.ZapLogger) CategoryService {
	return &categoryService{
		db:           db,
		categoryRepo: categoryRepo,
		statsRepo:    statsRepo,
		logger:       logger,
	}
}

// categoryArena 全量分类的内存索引，树形遍历的工作结构。
type categoryArena struct {
	nodes    map[uint64]*entities.Category
	children map[uint64][]*entities.Category // parentID -> 直接子分类
	roots    []*entities.Category
}

// loadArena 拉取全部分类并建立索引。
func (s *categoryService) loadArena(ctx context.Context) (*categoryArena, error) {
	all, err := s.categoryRepo.ListAllCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("加载分类树失败: %w", err)
	}

	arena := &categoryArena{
		nodes:    make(map[uint64]*entities.Category, len(all)),
		children: make(map[uint64][]*entities.Category),
	}
	for _, c := range all {
		arena.nodes[c.ID] = c
	}
	for _, c := range all {
		if c.ParentID == nil {
			arena.roots = append(arena.roots, c)
			continue
		}
		if _, ok := arena.nodes[*c.ParentID]; ok {
			arena.children[*c.ParentID] = append(arena.children[*c.ParentID], c)
		} else {
			// 父节点缺失的孤儿当作根处理，遍历不中断
			arena.roots = append(arena.roots, c)
		}
	}
	return arena, nil
}

// descendantIDs 带 visited 集合的迭代 DFS，收集全部后代 ID（不含起点）。
func (a *categoryArena) descendantIDs(rootID uint64) []uint64 {
	var result []uint64
	visited := map[uint64]bool{rootID: true}
	stack := make([]uint64, 0, len(a.children[rootID]))
	for _, c := range a.children[rootID] {
		stack = append(stack, c.ID)
	}

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[id] {
			continue
		}
		visited[id] = true
		result = append(result, id)
		for _, c := range a.children[id] {
			stack = append(stack, c.ID)
		}
	}
	return result
}

// ancestors 沿 ParentID 向上收集祖先链，从最近的父级到根。
// visited 集合保证脏数据中的父环不会造成死循环。
func (a *categoryArena) ancestors(id uint64) []*entities.Category {
	var result []*entities.Category
	visited := map[uint64]bool{id: true}

	node := a.nodes[id]
	for node != nil && node.ParentID != nil {
		parent, ok := a.nodes[*node.ParentID]
		if !ok || visited[parent.ID] {
			break
		}
		visited[parent.ID] = true
		result = append(result, parent)
		node = parent
	}
	return result
}

// depthStats 迭代 BFS 统计每个深度的分类数，根为 0，对多根森林安全。
func (a *categoryArena) depthStats() map[int]int64 {
	stats := make(map[int]int64)
	visited := make(map[uint64]bool)

	type queueItem struct {
		id    uint64
		depth int
	}
	queue := make([]queueItem, 0, len(a.roots))
	for _, r := range a.roots {
		queue = append(queue, queueItem{id: r.ID, depth: 0})
	}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]
		if visited[item.id] {
			continue
		}
		visited[item.id] = true
		stats[item.depth]++
		for _, c := range a.children[item.id] {
			queue = append(queue, queueItem{id: c.ID, depth: item.depth + 1})
		}
	}
	return stats
}

// CreateCategory 实现分类创建流程。
func (s *categoryService) CreateCategory(ctx context.Context, actor *entities.User, req *dto.CreateCategoryRequest) (*vo.CategoryVO, error) {
	if err := AuthorizeAdmin(actor); err != nil {
		return nil, err
	}

	if !slugPattern.MatchString(req.Slug) {
		return nil, fmt.Errorf("%w: slug 仅允许小写字母数字与连字符", myErrors.ErrValidation)
	}

	// slug 唯一性预检，并发竞态由唯一索引兜底
	if _, err := s.categoryRepo.GetCategoryBySlug(ctx, req.Slug); err == nil {
		return nil, myErrors.ErrDuplicateSlug
	} else if !errors.Is(err, commonerrors.ErrRepoNotFound) {
		return nil, fmt.Errorf("校验 slug 失败: %w", err)
	}

	if req.ParentID != nil {
		if _, err := s.categoryRepo.GetCategoryByID(ctx, *req.ParentID); err != nil {
			if errors.Is(err, commonerrors.ErrRepoNotFound) {
				return nil, myErrors.ErrParentNotFound
			}
			return nil, fmt.Errorf("校验父分类失败: %w", err)
		}
	}

	category := &entities.Category{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		ParentID:    req.ParentID,
		Order:       req.Order,
	}
	if err := s.categoryRepo.CreateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("创建分类失败: %w", err)
	}

	s.logger.Info("分类创建成功", zap.Uint64("categoryID", category.ID), zap.String("slug", category.Slug))
	return vo.MapCategoryToVO(category, 0), nil
}

// UpdateCategory 实现分类的部分更新流程。
func (s *categoryService) UpdateCategory(ctx context.Context, actor *entities.User, id uint64, req *dto.UpdateCategoryRequest) (*vo.CategoryVO, error) {
	if err := AuthorizeAdmin(actor); err != nil {
		return nil, err
	}

	category, err := s.categoryRepo.GetCategoryByID(ctx, id)
	if err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			return nil, myErrors.ErrNotFound
		}
		return nil, fmt.Errorf("获取分类失败: %w", err)
	}

	if req.Slug != nil && *req.Slug != category.Slug {
		if !slugPattern.MatchString(*req.Slug) {
			return nil, fmt.Errorf("%w: slug 仅允许小写字母数字与连字符", myErrors.ErrValidation)
		}
		if _, err := s.categoryRepo.GetCategoryBySlug(ctx, *req.Slug); err == nil {
			return nil, myErrors.ErrDuplicateSlug
		} else if !errors.Is(err, commonerrors.ErrRepoNotFound) {
			return nil, fmt.Errorf("校验 slug 失败: %w", err)
		}
		category.Slug = *req.Slug
	}

	// 父分类变更需要做环检测：新父分类不能是自身或自身的后代
	if req.ParentID != nil && (category.ParentID == nil || *req.ParentID != *category.ParentID) {
		newParentID := *req.ParentID
		if newParentID == id {
			return nil, myErrors.ErrCyclicParent
		}
		if _, err := s.categoryRepo.GetCategoryByID(ctx, newParentID); err != nil {
			if errors.Is(err, commonerrors.ErrRepoNotFound) {
				return nil, myErrors.ErrParentNotFound
			}
			return nil, fmt.Errorf("校验父分类失败: %w", err)
		}

		arena, err := s.loadArena(ctx)
		if err != nil {
			return nil, err
		}
		for _, descID := range arena.descendantIDs(id) {
			if descID == newParentID {
				return nil, myErrors.ErrCyclicParent
			}
		}
		category.ParentID = req.ParentID
	}

	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	if req.Order != nil {
		category.Order = *req.Order
	}

	if err := s.categoryRepo.SaveCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("保存分类失败: %w", err)
	}

	s.logger.Info("分类更新成功", zap.Uint64("categoryID", category.ID))
	postCounts, err := s.statsRepo.PostCountsByCategory(ctx)
	if err != nil {
		return nil, err
	}
	return vo.MapCategoryToVO(category, postCounts[category.ID]), nil
}

// DeleteCategory 实现分类删除流程。
func (s *categoryService) DeleteCategory(ctx context.Context, actor *entities.User, id uint64) error {
	if err := AuthorizeAdmin(actor); err != nil {
		return err
	}

	if _, err := s.categoryRepo.GetCategoryByID(ctx, id); err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			return myErrors.ErrNotFound
		}
		return fmt.Errorf("获取分类失败: %w", err)
	}

	childCount, err := s.categoryRepo.CountChildren(ctx, id)
	if err != nil {
		return fmt.Errorf("统计子分类失败: %w", err)
	}
	if childCount > 0 {
		return myErrors.ErrHasChildren
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.categoryRepo.ClearPostCategory(ctx, tx, id); err != nil {
			return err
		}
		return s.categoryRepo.DeleteCategory(ctx, tx, id)
	})
	if err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			return myErrors.ErrNotFound
		}
		return fmt.Errorf("删除分类失败: %w", err)
	}

	s.logger.Info("分类删除成功", zap.Uint64("categoryID", id))
	return nil
}

// GetCategoryByID 实现单个分类的查询。
func (s *categoryService) GetCategoryByID(ctx context.Context, id uint64) (*vo.CategoryVO, error) {
	category, err := s.categoryRepo.GetCategoryByID(ctx, id)
	if err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			return nil, myErrors.ErrNotFound
		}
		return nil, fmt.Errorf("获取分类失败: %w", err)
	}

	postCounts, err := s.statsRepo.PostCountsByCategory(ctx)
	if err != nil {
		return nil, err
	}
	return vo.MapCategoryToVO(category, postCounts[category.ID]), nil
}

// ListCategories 实现分类的分页列表查询。
func (s *categoryService) ListCategories(ctx context.Context, query *dto.CategoryListQuery) (*vo.CategoryListVO, error) {
	offset := (query.Page - 1) * query.PageSize

	var (
		categories []*entities.Category
		total      int64
		err        error
	)
	if query.ParentID == nil {
		categories, total, err = s.categoryRepo.ListRootCategories(ctx, offset, query.PageSize)
	} else {
		// 父分类必须存在，否则与"空子列表"不可区分
		if _, err := s.categoryRepo.GetCategoryByID(ctx, *query.ParentID); err != nil {
			if errors.Is(err, commonerrors.ErrRepoNotFound) {
				return nil, myErrors.ErrNotFound
			}
			return nil, fmt.Errorf("校验父分类失败: %w", err)
		}
		categories, total, err = s.categoryRepo.ListChildCategories(ctx, *query.ParentID, offset, query.PageSize)
	}
	if err != nil {
		return nil, err
	}

	postCounts, err := s.statsRepo.PostCountsByCategory(ctx)
	if err != nil {
		return nil, err
	}

	return &vo.CategoryListVO{
		Categories: vo.MapCategoriesToVOs(categories, postCounts),
		Total:      total,
	}, nil
}

// GetAncestors 实现祖先链查询，顺序为最近的父级在前。
func (s *categoryService) GetAncestors(ctx context.Context, id uint64) ([]*vo.CategoryVO, error) {
	arena, err := s.loadArena(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := arena.nodes[id]; !ok {
		return nil, myErrors.ErrNotFound
	}

	postCounts, err := s.statsRepo.PostCountsByCategory(ctx)
	if err != nil {
		return nil, err
	}
	return vo.MapCategoriesToVOs(arena.ancestors(id), postCounts), nil
}

// GetDescendants 实现后代集合查询。
func (s *categoryService) GetDescendants(ctx context.Context, id uint64) ([]*vo.CategoryVO, error) {
	arena, err := s.loadArena(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := arena.nodes[id]; !ok {
		return nil, myErrors.ErrNotFound
	}

	postCounts, err := s.statsRepo.PostCountsByCategory(ctx)
	if err != nil {
		return nil, err
	}

	descendants := make([]*entities.Category, 0)
	for _, descID := range arena.descendantIDs(id) {
		descendants = append(descendants, arena.nodes[descID])
	}
	return vo.MapCategoriesToVOs(descendants, postCounts), nil
}

// GetCategoryStats 实现分类统计总览。
func (s *categoryService) GetCategoryStats(ctx context.Context, limit int) (*vo.CategoryStatsVO, error) {
	if limit <= 0 {
		limit = 10
	}

	arena, err := s.loadArena(ctx)
	if err != nil {
		return nil, err
	}

	postCounts, err := s.statsRepo.PostCountsByCategory(ctx)
	if err != nil {
		return nil, err
	}
	viewSums, err := s.statsRepo.ViewSumsByCategory(ctx)
	if err != nil {
		return nil, err
	}
	commentCounts, err := s.statsRepo.CommentCountsByCategory(ctx)
	if err != nil {
		return nil, err
	}
	likeSums, err := s.statsRepo.LikeSumsByCategory(ctx)
	if err != nil {
		return nil, err
	}

	var totalPosts, totalViews int64
	for _, c := range postCounts {
		totalPosts += c
	}
	for _, v := range viewSums {
		totalViews += v
	}

	// 活跃度排序：帖子数降序，浏览量降序打平
	activities := make([]*vo.CategoryActivityVO, 0, len(arena.nodes))
	for id, node := range arena.nodes {
		activities = append(activities, &vo.CategoryActivityVO{
			Category: vo.MapCategoryToVO(node, postCounts[id]),
			Posts:    postCounts[id],
			Views:    viewSums[id],
			Comments: commentCounts[id],
			Likes:    likeSums[id],
		})
	}
	sort.Slice(activities, func(i, j int) bool {
		if activities[i].Posts != activities[j].Posts {
			return activities[i].Posts > activities[j].Posts
		}
		if activities[i].Views != activities[j].Views {
			return activities[i].Views > activities[j].Views
		}
		return activities[i].Category.ID < activities[j].Category.ID
	})
	if len(activities) > limit {
		activities = activities[:limit]
	}

	return &vo.CategoryStatsVO{
		TotalCategories:   int64(len(arena.nodes)),
		TotalPosts:        totalPosts,
		TotalViews:        totalViews,
		CategoriesByDepth: arena.depthStats(),
		MostActive:        activities,
	}, nil
}
