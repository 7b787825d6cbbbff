package vo

import (
	"time"

	"github.com/Xushengqwer/blog_service/models/entities"
)

// CategoryVO 分类响应数据
// - PostCount 是读取时计算的派生字段（关联帖子数），不在实体上持久化
type CategoryVO struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	ParentID    *uint64   `json:"parent_id"`
	Order       int       `json:"order"`
	PostCount   int64     `json:"post_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CategoryListVO 分类分页列表响应
type CategoryListVO struct {
	Categories []*CategoryVO `json:"categories"` // 当前页的分类列表
	Total      int64         `json:"total"`      // 符合条件的总记录数（真实 COUNT）
}

// CategoryActivityVO 单个分类的活跃度统计包
type CategoryActivityVO struct {
	Category *CategoryVO `json:"category"`
	Posts    int64       `json:"posts"`
	Views    int64       `json:"views"`
	Comments int64       `json:"comments"`
	Likes    int64       `json:"likes"`
}

// CategoryStatsVO 分类统计总览
type CategoryStatsVO struct {
	TotalCategories   int64                 `json:"total_categories"`
	TotalPosts        int64                 `json:"total_posts"`
	TotalViews        int64                 `json:"total_views"`
	CategoriesByDepth map[int]int64         `json:"categories_by_depth"` // 深度 -> 该深度的分类数，根为 0
	MostActive        []*CategoryActivityVO `json:"most_active_categories"`
}

// MapCategoryToVO 将分类实体转换为响应 VO，postCount 由调用方提供。
func MapCategoryToVO(c *entities.Category, postCount int64) *CategoryVO {
	if c == nil {
		return nil
	}
	return &CategoryVO{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		ParentID:    c.ParentID,
		Order:       c.Order,
		PostCount:   postCount,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// MapCategoriesToVOs 批量转换，postCounts 缺失的分类计为 0。
func MapCategoriesToVOs(categories []*entities.Category, postCounts map[uint64]int64) []*CategoryVO {
	vos := make([]*CategoryVO, 0, len(categories))
	for _, c := range categories {
		if c == nil {
			continue
		}
		vos = append(vos, MapCategoryToVO(c, postCounts[c.ID]))
	}
	return vos
}
