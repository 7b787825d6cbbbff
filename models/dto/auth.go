package dto

// RegisterRequest 用户注册请求
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`            // 邮箱，必填
	Username string `json:"username" binding:"required,min=3,max=50"`          // 用户名，必填
	Password string `json:"password" binding:"required,min=8,max=72"`          // 明文密码，入库前做 bcrypt 哈希
	FullName string `json:"full_name" binding:"omitempty,max=100"`             // 姓名，可选
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=72"`
}
