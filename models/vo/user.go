package vo

import (
	"time"

	"github.com/Xushengqwer/blog_service/models/entities"
	"github.com/Xushengqwer/blog_service/models/enums"
)

// UserVO 用户信息响应（不含密码哈希）
type UserVO struct {
	ID         uint64         `json:"id"`
	Email      string         `json:"email"`
	Username   string         `json:"username"`
	Role       enums.UserRole `json:"role"`
	FullName   string         `json:"full_name,omitempty"`
	Bio        string         `json:"bio,omitempty"`
	AvatarURL  string         `json:"avatar_url,omitempty"`
	IsActive   bool           `json:"is_active"`
	IsVerified bool           `json:"is_verified"`
	CreatedAt  time.Time      `json:"created_at"`
}

// TokenVO 登录/注册成功后的访问令牌
type TokenVO struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"` // 恒为 "bearer"
	ExpiresAt   time.Time `json:"expires_at"`
}

// MapUserToVO 将用户实体转换为响应 VO。
func MapUserToVO(u *entities.User) *UserVO {
	if u == nil {
		return nil
	}
	return &UserVO{
		ID:         u.ID,
		Email:      u.Email,
		Username:   u.Username,
		Role:       u.Role,
		FullName:   u.FullName,
		Bio:        u.Bio,
		AvatarURL:  u.AvatarURL,
		IsActive:   u.IsActive,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
	}
}
