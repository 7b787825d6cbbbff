package controller

import (
	"net/http"

	"github.com/Xushengqwer/go-common/response"
	"github.com/gin-gonic/gin"

	"github.com/Xushengqwer/blog_service/middleware"
	"github.com/Xushengqwer/blog_service/models/dto"
	"github.com/Xushengqwer/blog_service/models/vo"
	"github.com/Xushengqwer/blog_service/service"
)

// AuthController 认证相关接口的控制器。
type AuthController struct {
	authService service.AuthService
	requireAuth gin.HandlerFunc
}

// NewAuthController 构造函数，requireAuth 为强制认证中间件。
func NewAuthController(authService service.AuthService, requireAuth gin.HandlerFunc) *AuthController {
	return &AuthController{
		authService: authService,
		requireAuth: requireAuth,
	}
}

// Register 用户注册
// @Summary      注册新用户
// @Description  使用邮箱、用户名和密码注册，新用户角色为普通用户。
// @Tags         auth (认证)
// @Accept       json
// @Produce      json
// @Param        request body dto.RegisterRequest true "注册信息"
// @Success      200 {object} vo.UserResponseWrapper "注册成功"
// @Failure      400 {object} vo.BaseResponseWrapper "参数无效或邮箱/用户名已被占用"
// @Failure      500 {object} vo.BaseResponseWrapper "服务器内部错误"
// @Router       /api/v1/blog/auth/register [post]
func (ctrl *AuthController) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "无效的请求体: "+err.Error())
		return
	}

	userVO, err := ctrl.authService.Register(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess(c, userVO, "注册成功")
}

// Login 用户登录
// @Summary      登录并签发访问令牌
// @Description  校验邮箱与密码，成功后返回 Bearer 访问令牌。
// @Tags         auth (认证)
// @Accept       json
// @Produce      json
// @Param        request body dto.LoginRequest true "登录凭证"
// @Success      200 {object} vo.TokenResponseWrapper "登录成功"
// @Failure      400 {object} vo.BaseResponseWrapper "参数无效"
// @Failure      401 {object} vo.BaseResponseWrapper "邮箱或密码错误"
// @Failure      403 {object} vo.BaseResponseWrapper "账号已被停用"
// @Router       /api/v1/blog/auth/login [post]
func (ctrl *AuthController) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "无效的请求体: "+err.Error())
		return
	}

	tokenVO, err := ctrl.authService.Login(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess(c, tokenVO, "登录成功")
}

// Me 获取当前用户信息
// @Summary      获取当前登录用户
// @Tags         auth (认证)
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} vo.UserResponseWrapper "当前用户信息"
// @Failure      401 {object} vo.BaseResponseWrapper "未认证"
// @Router       /api/v1/blog/auth/me [get]
func (ctrl *AuthController) Me(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	if actor == nil {
		response.RespondError(c, http.StatusUnauthorized, response.ErrCodeClientUnauthorized, "未认证")
		return
	}
	response.RespondSuccess(c, vo.MapUserToVO(actor), "获取成功")
}

// ChangePassword 修改密码
// @Summary      修改当前用户密码
// @Description  需要先验证旧密码，新密码即时生效。
// @Tags         auth (认证)
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.ChangePasswordRequest true "旧密码与新密码"
// @Success      200 {object} vo.BaseResponseWrapper "修改成功"
// @Failure      400 {object} vo.BaseResponseWrapper "参数无效"
// @Failure      401 {object} vo.BaseResponseWrapper "旧密码错误或未认证"
// @Router       /api/v1/blog/auth/password [put]
func (ctrl *AuthController) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "无效的请求体: "+err.Error())
		return
	}

	actor := middleware.ActorFromContext(c)
	if err := ctrl.authService.ChangePassword(c.Request.Context(), actor, &req); err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess[any](c, nil, "密码修改成功")
}

// RegisterRoutes 注册 AuthController 的路由
func (ctrl *AuthController) RegisterRoutes(group *gin.RouterGroup) {
	authGroup := group.Group("/auth")
	{
		authGroup.POST("/register", ctrl.Register)
		authGroup.POST("/login", ctrl.Login)
		authGroup.GET("/me", ctrl.requireAuth, ctrl.Me)
		authGroup.PUT("/password", ctrl.requireAuth, ctrl.ChangePassword)
	}
}
