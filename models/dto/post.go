package dto

import "github.com/Xushengqwer/blog_service/models/enums"

// CreatePostRequest 创建帖子请求
// - status 只允许 draft 或 published（archived 不是合法的初始状态，服务层校验）
type CreatePostRequest struct {
	Title         string           `json:"title" binding:"required,max=255"`
	Content       string           `json:"content" binding:"required"`
	Excerpt       string           `json:"excerpt" binding:"omitempty,max=500"`
	Tags          []string         `json:"tags" binding:"omitempty,max=20,dive,max=50"`
	CategoryID    *uint64          `json:"category_id" binding:"omitempty"`
	Status        enums.PostStatus `json:"status" binding:"omitempty,oneof=draft published"`
	IsFeatured    bool             `json:"is_featured"`
	AllowComments *bool            `json:"allow_comments"` // 缺省为 true
}

// UpdatePostRequest 更新帖子请求，全字段覆盖式更新（与创建保持同构）
type UpdatePostRequest struct {
	Title         string            `json:"title" binding:"required,max=255"`
	Content       string            `json:"content" binding:"required"`
	Excerpt       string            `json:"excerpt" binding:"omitempty,max=500"`
	Tags          []string          `json:"tags" binding:"omitempty,max=20,dive,max=50"`
	CategoryID    *uint64           `json:"category_id" binding:"omitempty"`
	Status        *enums.PostStatus `json:"status" binding:"omitempty,oneof=draft published archived"` // nil 表示状态不变
	IsFeatured    bool              `json:"is_featured"`
	AllowComments bool              `json:"allow_comments"`
}

// PostListQuery 帖子列表查询参数
// - 过滤条件可组合；可见性约束（未登录仅 published、非管理员仅看自己）由服务层收紧
type PostListQuery struct {
	Page       int               `form:"page,default=1" binding:"omitempty,gte=1"`
	PageSize   int               `form:"page_size,default=10" binding:"omitempty,gte=1,lte=100"`
	Status     *enums.PostStatus `form:"status" binding:"omitempty,oneof=draft published archived"`
	CategoryID *uint64           `form:"category_id" binding:"omitempty"`
	AuthorID   *uint64           `form:"author_id" binding:"omitempty"`
	Tag        string            `form:"tag" binding:"omitempty,max=50"`
	Search     string            `form:"search" binding:"omitempty,max=255"` // 标题模糊搜索
}
