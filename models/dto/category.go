package dto

// CreateCategoryRequest 创建分类请求
// - slug 的格式校验（小写字母数字 + 连字符）在服务层完成
type CreateCategoryRequest struct {
	Name        string  `json:"name" binding:"required,max=100"`          // 分类名，必填
	Slug        string  `json:"slug" binding:"required,max=100"`          // slug，必填，全局唯一
	Description string  `json:"description" binding:"omitempty,max=500"`  // 描述，可选
	ParentID    *uint64 `json:"parent_id" binding:"omitempty"`            // 父分类 ID，可选
	Order       int     `json:"order" binding:"omitempty"`                // 同级排序键
}

// UpdateCategoryRequest 更新分类请求，全部字段可选（nil 表示不更新）
type UpdateCategoryRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=100"`
	Slug        *string `json:"slug" binding:"omitempty,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
	ParentID    *uint64 `json:"parent_id" binding:"omitempty"`
	Order       *int    `json:"order" binding:"omitempty"`
}

// CategoryListQuery 分类列表查询参数
// - parent_id 缺省时返回根分类，否则返回该父分类的子分类
type CategoryListQuery struct {
	Page     int     `form:"page,default=1" binding:"omitempty,gte=1"`
	PageSize int     `form:"page_size,default=10" binding:"omitempty,gte=1,lte=100"`
	ParentID *uint64 `form:"parent_id" binding:"omitempty"`
}
