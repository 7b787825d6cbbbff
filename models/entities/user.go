package entities

import "github.com/Xushengqwer/blog_service/models/enums"

// User 用户实体
// - 使用场景: 注册/登录、角色鉴权，以及帖子/评论的作者归属 (author_id 引用)
// - 表名: users
type User struct {
	BaseModel

	// 邮箱，登录凭证，全表唯一
	Email string `gorm:"type:varchar(255);not null;uniqueIndex"`

	// 用户名，展示用，同样全表唯一
	Username string `gorm:"type:varchar(50);not null;uniqueIndex"`

	// bcrypt 哈希后的密码，永远不持久化明文
	HashedPassword string `gorm:"type:varchar(255);not null"`

	// 角色，admin / user，参与所有写操作的鉴权
	Role enums.UserRole `gorm:"type:varchar(16);not null;default:user"`

	// 以下为可选的个人资料字段
	FullName  string `gorm:"type:varchar(100)"`
	Bio       string `gorm:"type:varchar(500)"`
	AvatarURL string `gorm:"type:varchar(255)"`

	// 账号是否可用。被停用的账号无法通过认证中间件。
	IsActive bool `gorm:"not null;default:true"`

	// 邮箱是否已验证
	IsVerified bool `gorm:"not null;default:false"`
}
