package middleware

import (
	"net/http"
	"strings"

	"github.com/Xushengqwer/go-common/core"
	"github.com/Xushengqwer/go-common/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Xushengqwer/blog_service/constant"
	"github.com/Xushengqwer/blog_service/models/entities"
	"github.com/Xushengqwer/blog_service/repo/mysql"
	"github.com/Xushengqwer/blog_service/service"
)

// extractBearerToken 从 Authorization 头中取出 Bearer 令牌，没有则返回空串。
func extractBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// resolveActor 解析令牌并从数据库加载当前用户。
// 角色与状态以数据库为准：令牌有效但账号被停用时同样拒绝。
func resolveActor(c *gin.Context, authSvc service.AuthService, userRepo mysql.UserRepository) (*entities.User, bool) {
	token := extractBearerToken(c)
	if token == "" {
		return nil, false
	}

	userID, err := authSvc.ParseToken(token)
	if err != nil {
		return nil, false
	}

	user, err := userRepo.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		return nil, false
	}
	if !user.IsActive {
		return nil, false
	}
	return user, true
}

// RequireAuth 强制认证：请求必须携带有效令牌且账号可用，
// 否则返回 401。通过后把 *entities.User 写入 gin 上下文。
func RequireAuth(authSvc service.AuthService, userRepo mysql.UserRepository, logger *core.ZapLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := resolveActor(c, authSvc, userRepo)
		if !ok {
			logger.Debug("认证失败，拒绝请求", zap.String("path", c.Request.URL.Path))
			response.RespondError(c, http.StatusUnauthorized, response.ErrCodeClientUnauthorized, "身份认证失败或账号不可用")
			c.Abort()
			return
		}
		c.Set(constant.ContextKeyActor, actor)
		c.Next()
	}
}

// OptionalAuth 可选认证：令牌有效时写入用户，缺失或无效时放行为匿名请求。
// 公开读取接口使用，服务层据是否有 actor 收紧可见性。
func OptionalAuth(authSvc service.AuthService, userRepo mysql.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if actor, ok := resolveActor(c, authSvc, userRepo); ok {
			c.Set(constant.ContextKeyActor, actor)
		}
		c.Next()
	}
}

// ActorFromContext 读取认证中间件写入的当前用户，匿名请求返回 nil。
func ActorFromContext(c *gin.Context) *entities.User {
	value, exists := c.Get(constant.ContextKeyActor)
	if !exists {
		return nil
	}
	actor, ok := value.(*entities.User)
	if !ok {
		return nil
	}
	return actor
}
