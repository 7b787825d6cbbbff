package enums

// UserRole 用户角色枚举。
// - 该服务自己承担认证与授权，角色在签发 JWT 时写入 claims。
type UserRole string

const (
	// RoleAdmin 管理员，可管理分类、任意帖子与任意评论
	RoleAdmin UserRole = "admin"
	// RoleUser 普通用户，只能操作自己的资源
	RoleUser UserRole = "user"
)

// Valid 校验角色枚举值是否合法。
func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}
