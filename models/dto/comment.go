package dto

// CreateCommentRequest 发表评论请求
// - parent_id 非空时为回复，父评论必须属于同一帖子
type CreateCommentRequest struct {
	Content  string  `json:"content" binding:"required,min=1,max=1000"`
	ParentID *uint64 `json:"parent_id" binding:"omitempty"`
}

// UpdateCommentRequest 编辑评论请求
type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required,min=1,max=1000"`
}

// CommentListQuery 评论列表查询参数
// - parent_id 缺省时返回帖子的根评论，否则返回该评论的回复
type CommentListQuery struct {
	Page     int     `form:"page,default=1" binding:"omitempty,gte=1"`
	PageSize int     `form:"page_size,default=10" binding:"omitempty,gte=1,lte=100"`
	ParentID *uint64 `form:"parent_id" binding:"omitempty"`
}

// StatsLimitQuery 统计类接口通用的 Top-N 限制
type StatsLimitQuery struct {
	Limit int `form:"limit,default=10" binding:"omitempty,gte=1,lte=100"`
}
