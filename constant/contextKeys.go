package constant

// gin.Context 中传递已认证用户的 Key。
// 由认证中间件写入，控制器读取。
const (
	// ContextKeyActor 已认证用户实体 (*entities.User)
	ContextKeyActor = "auth_actor"
)
