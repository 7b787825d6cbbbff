package mysql

import (
	"context"
	"errors"
	"fmt"

	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Xushengqwer/blog_service/models/entities"
)

// CategoryRepository 定义了分类数据在 MySQL 中的持久化操作接口。
// 树形关系（父子、环检测）由服务层在全量数据上处理，仓库层只负责平面的存取。
type CategoryRepository interface {
	// CreateCategory 持久化一个新的分类记录。
	CreateCategory(ctx context.Context, category *entities.Category) error

	// GetCategoryByID 根据主键检索分类。
	// - 未找到时返回 commonerrors.ErrRepoNotFound。
	GetCategoryByID(ctx context.Context, id uint64) (*entities.Category, error)

	// GetCategoryBySlug 根据 slug 检索分类，用于创建/更新时的唯一性预检。
	// - 未找到时返回 commonerrors.ErrRepoNotFound。
	GetCategoryBySlug(ctx context.Context, slug string) (*entities.Category, error)

	// SaveCategory 保存分类实体的全部字段。
	SaveCategory(ctx context.Context, category *entities.Category) error

	// DeleteCategory 对指定分类执行硬删除。
	// - 删除的前置校验（是否存在子分类）由服务层完成。
	DeleteCategory(ctx context.Context, db *gorm.DB, id uint64) error

	// ListRootCategories 分页查询顶级分类（parent_id IS NULL）。
	// - 排序规则: sort_order 升序，再按创建时间升序。
	// - 返回: 分类列表, 符合条件的总记录数, 错误。
	ListRootCategories(ctx context.Context, offset, limit int) ([]*entities.Category, int64, error)

	// ListChildCategories 分页查询指定父分类的直接子分类。
	// - 排序规则与 ListRootCategories 相同。
	ListChildCategories(ctx context.Context, parentID uint64, offset, limit int) ([]*entities.Category, int64, error)

	// ListAllCategories 拉取全部分类，供服务层构建内存中的分类树。
	ListAllCategories(ctx context.Context) ([]*entities.Category, error)

	// CountChildren 统计指定分类的直接子分类数，用于删除前的校验。
	CountChildren(ctx context.Context, parentID uint64) (int64, error)

	// ClearPostCategory 将指定分类下所有帖子的 category_id 置空。
	// - 在删除分类的事务中调用，保证帖子不会悬挂在已删除的分类上。
	ClearPostCategory(ctx context.Context, db *gorm.DB, categoryID uint64) error
}

// categoryRepository 是 CategoryRepository 接口针对 MySQL 的具体实现。
type categoryRepository struct {
	db     *gorm.DB
	logger *core.ZapLogger
}

// NewCategoryRepository 是 categoryRepository 的构造函数。
func NewCategoryRepository(db *gorm.DB, logger *core.ZapLogger) CategoryRepository {
	return &categoryRepository{
		db:     db,
		logger: logger,
	}
}

// CreateCategory 实现分类的数据库插入操作。
func (r *categoryRepository) CreateCategory(ctx context.Context, category *entities.Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		r.logger.Error("创建分类数据库操作失败", zap.Error(err), zap.String("slug", category.Slug))
		return err
	}
	return nil
}

// GetCategoryByID 实现根据主键获取分类。
func (r *categoryRepository) GetCategoryByID(ctx context.Context, id uint64) (*entities.Category, error) {
	var category entities.Category
	err := r.db.WithContext(ctx).First(&category, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, commonerrors.ErrRepoNotFound
		}
		r.logger.Error("根据 ID 获取分类数据库查询失败", zap.Uint64("categoryID", id), zap.Error(err))
		return nil, err
	}
	return &category, nil
}

// GetCategoryBySlug 实现根据 slug 获取分类。
func (r *categoryRepository) GetCategoryBySlug(ctx context.Context, slug string) (*entities.Category, error) {
	var category entities.Category
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, commonerrors.ErrRepoNotFound
		}
		r.logger.Error("根据 slug 获取分类数据库查询失败", zap.String("slug", slug), zap.Error(err))
		return nil, err
	}
	return &category, nil
}

// SaveCategory 实现分类实体的整体保存。
func (r *categoryRepository) SaveCategory(ctx context.Context, category *entities.Category) error {
	if err := r.db.WithContext(ctx).Save(category).Error; err != nil {
		r.logger.Error("更新分类数据库操作失败", zap.Error(err), zap.Uint64("categoryID", category.ID))
		return err
	}
	return nil
}

// DeleteCategory 实现分类的硬删除。
// db 参数是执行此操作的数据库句柄 (可以是普通连接，也可以是事务 tx)。
func (r *categoryRepository) DeleteCategory(ctx context.Context, db *gorm.DB, id uint64) error {
	result := db.WithContext(ctx).Delete(&entities.Category{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return commonerrors.ErrRepoNotFound
	}
	return nil
}

// ListRootCategories 实现顶级分类的分页查询。
func (r *categoryRepository) ListRootCategories(ctx context.Context, offset, limit int) ([]*entities.Category, int64, error) {
	var categories []*entities.Category
	var totalCount int64

	countQuery := r.db.WithContext(ctx).Model(&entities.Category{}).Where("parent_id IS NULL")
	if err := countQuery.Count(&totalCount).Error; err != nil {
		r.logger.Error("获取顶级分类列表：计数查询失败", zap.Error(err))
		return nil, 0, fmt.Errorf("计数顶级分类失败: %w", err)
	}

	if totalCount == 0 {
		return categories, 0, nil
	}

	err := r.db.WithContext(ctx).
		Where("parent_id IS NULL").
		Order("sort_order ASC").Order("created_at ASC").
		Offset(offset).Limit(limit).
		Find(&categories).Error
	if err != nil {
		r.logger.Error("获取顶级分类列表：列表查询失败", zap.Error(err))
		return nil, 0, fmt.Errorf("查询顶级分类列表失败: %w", err)
	}

	return categories, totalCount, nil
}

// ListChildCategories 实现直接子分类的分页查询。
func (r *categoryRepository) ListChildCategories(ctx context.Context, parentID uint64, offset, limit int) ([]*entities.Category, int64, error) {
	var categories []*entities.Category
	var totalCount int64

	countQuery := r.db.WithContext(ctx).Model(&entities.Category{}).Where("parent_id = ?", parentID)
	if err := countQuery.Count(&totalCount).Error; err != nil {
		r.logger.Error("获取子分类列表：计数查询失败", zap.Error(err), zap.Uint64("parentID", parentID))
		return nil, 0, fmt.Errorf("计数子分类失败: %w", err)
	}

	if totalCount == 0 {
		return categories, 0, nil
	}

	err := r.db.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("sort_order ASC").Order("created_at ASC").
		Offset(offset).Limit(limit).
		Find(&categories).Error
	if err != nil {
		r.logger.Error("获取子分类列表：列表查询失败", zap.Error(err), zap.Uint64("parentID", parentID))
		return nil, 0, fmt.Errorf("查询子分类列表失败: %w", err)
	}

	return categories, totalCount, nil
}

// ListAllCategories 实现全量分类查询。
func (r *categoryRepository) ListAllCategories(ctx context.Context) ([]*entities.Category, error) {
	var categories []*entities.Category
	err := r.db.WithContext(ctx).
		Order("sort_order ASC").Order("created_at ASC").
		Find(&categories).Error
	if err != nil {
		r.logger.Error("获取全量分类数据库查询失败", zap.Error(err))
		return nil, err
	}
	return categories, nil
}

// CountChildren 实现直接子分类计数。
func (r *categoryRepository) CountChildren(ctx context.Context, parentID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.Category{}).
		Where("parent_id = ?", parentID).
		Count(&count).Error
	if err != nil {
		r.logger.Error("统计子分类数数据库查询失败", zap.Error(err), zap.Uint64("parentID", parentID))
		return 0, err
	}
	return count, nil
}

// ClearPostCategory 实现帖子分类关联的批量置空。
func (r *categoryRepository) ClearPostCategory(ctx context.Context, db *gorm.DB, categoryID uint64) error {
	err := db.WithContext(ctx).
		Model(&entities.Post{}).
		Where("category_id = ?", categoryID).
		Update("category_id", nil).Error
	if err != nil {
		r.logger.Error("清空帖子分类关联失败", zap.Error(err), zap.Uint64("categoryID", categoryID))
		return err
	}
	return nil
}
