package vo

// --- 用于成功响应且包含具体 Data 的包装器 ---

// UserResponseWrapper 对应 response.APIResponse[vo.UserVO]
type UserResponseWrapper struct {
	Code    int    `json:"code" example:"0"`
	Message string `json:"message,omitempty" example:"success"`
	Data    UserVO `json:"data"`
}

// TokenResponseWrapper 对应 response.APIResponse[vo.TokenVO]
type TokenResponseWrapper struct {
	Code    int     `json:"code" example:"0"`
	Message string  `json:"message,omitempty" example:"success"`
	Data    TokenVO `json:"data"`
}

// CategoryResponseWrapper 对应 response.APIResponse[vo.CategoryVO]
type CategoryResponseWrapper struct {
	Code    int        `json:"code" example:"0"`
	Message string     `json:"message,omitempty" example:"success"`
	Data    CategoryVO `json:"data"`
}

// CategoryListResponseWrapper 对应 response.APIResponse[vo.CategoryListVO]
type CategoryListResponseWrapper struct {
	Code    int            `json:"code" example:"0"`
	Message string         `json:"message,omitempty" example:"success"`
	Data    CategoryListVO `json:"data"`
}

// CategoryStatsResponseWrapper 对应 response.APIResponse[vo.CategoryStatsVO]
type CategoryStatsResponseWrapper struct {
	Code    int             `json:"code" example:"0"`
	Message string          `json:"message,omitempty" example:"success"`
	Data    CategoryStatsVO `json:"data"`
}

// PostResponseWrapper 对应 response.APIResponse[vo.PostVO]
type PostResponseWrapper struct {
	Code    int    `json:"code" example:"0"`
	Message string `json:"message,omitempty" example:"success"`
	Data    PostVO `json:"data"`
}

// PostListResponseWrapper 对应 response.APIResponse[vo.PostListVO]
type PostListResponseWrapper struct {
	Code    int        `json:"code" example:"0"`
	Message string     `json:"message,omitempty" example:"success"`
	Data    PostListVO `json:"data"`
}

// PostStatsResponseWrapper 对应 response.APIResponse[vo.PostStatsVO]
type PostStatsResponseWrapper struct {
	Code    int         `json:"code" example:"0"`
	Message string      `json:"message,omitempty" example:"success"`
	Data    PostStatsVO `json:"data"`
}

// CommentResponseWrapper 对应 response.APIResponse[vo.CommentVO]
type CommentResponseWrapper struct {
	Code    int       `json:"code" example:"0"`
	Message string    `json:"message,omitempty" example:"success"`
	Data    CommentVO `json:"data"`
}

// CommentListResponseWrapper 对应 response.APIResponse[vo.CommentListVO]
type CommentListResponseWrapper struct {
	Code    int           `json:"code" example:"0"`
	Message string        `json:"message,omitempty" example:"success"`
	Data    CommentListVO `json:"data"`
}

// CommentStatsResponseWrapper 对应 response.APIResponse[vo.CommentStatsVO]
type CommentStatsResponseWrapper struct {
	Code    int            `json:"code" example:"0"`
	Message string         `json:"message,omitempty" example:"success"`
	Data    CommentStatsVO `json:"data"`
}

// --- 用于错误响应 或 简单成功响应（只有 Code 和 Message） ---

// BaseResponseWrapper 代表一个只包含 Code 和 Message 的响应。
// 适用于错误情况（RespondError 返回时 Data 为 nil 且 omitempty）
// 或某些成功操作（如 DELETE）可能也只返回 Code 和 Message。
type BaseResponseWrapper struct {
	Code    int    `json:"code" example:"0"`          // 成功时为 0, 错误时为具体错误码
	Message string `json:"message" example:"success"` // 成功或错误消息
}
