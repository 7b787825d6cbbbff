package controller

import (
	"net/http"
	"strconv"

	"github.com/Xushengqwer/go-common/response"
	"github.com/gin-gonic/gin"

	"github.com/Xushengqwer/blog_service/middleware"
	"github.com/Xushengqwer/blog_service/models/dto"
	"github.com/Xushengqwer/blog_service/service"
)

// PostController 帖子相关接口的控制器。
type PostController struct {
	postService  service.PostService
	requireAuth  gin.HandlerFunc
	optionalAuth gin.HandlerFunc
}

// NewPostController 构造函数。
func NewPostController(postService service.PostService, requireAuth, optionalAuth gin.HandlerFunc) *PostController {
	return &PostController{
		postService:  postService,
		requireAuth:  requireAuth,
		optionalAuth: optionalAuth,
	}
}

// visitorID 浏览计数的防刷标识：登录用户用 ID，匿名用客户端 IP。
func visitorID(c *gin.Context) string {
	if actor := middleware.ActorFromContext(c); actor != nil {
		return "u:" + strconv.FormatUint(actor.ID, 10)
	}
	return "ip:" + c.ClientIP()
}

// CreatePost 创建帖子
// @Summary      创建帖子
// @Description  初始状态只允许 draft 或 published，缺省 draft；创建即发布时会向下游发出发布事件。
// @Tags         posts (帖子)
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreatePostRequest true "帖子内容"
// @Success      200 {object} vo.PostResponseWrapper "创建成功"
// @Failure      400 {object} vo.BaseResponseWrapper "参数无效"
// @Failure      401 {object} vo.BaseResponseWrapper "未认证"
// @Failure      404 {object} vo.BaseResponseWrapper "指定的分类不存在"
// @Router       /api/v1/blog/posts [post]
func (ctrl *PostController) CreatePost(c *gin.Context) {
	var req dto.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "无效的请求体: "+err.Error())
		return
	}

	postVO, err := ctrl.postService.CreatePost(c.Request.Context(), middleware.ActorFromContext(c), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess(c, postVO, "帖子创建成功")
}

// UpdatePost 更新帖子
// @Summary      更新帖子 (作者或管理员)
// @Description  覆盖式更新；状态首次变为 published 时会向下游发出发布事件。
// @Tags         posts (帖子)
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        post_id path uint64 true "帖子 ID"
// @Param        request body dto.UpdatePostRequest true "帖子内容"
// @Success      200 {object} vo.PostResponseWrapper "更新成功"
// @Failure      403 {object} vo.BaseResponseWrapper "无权操作该帖子"
// @Failure      404 {object} vo.BaseResponseWrapper "帖子不存在"
// @Router       /api/v1/blog/posts/{post_id} [put]
func (ctrl *PostController) UpdatePost(c *gin.Context) {
	id, ok := parseUintParam(c, "post_id")
	if !ok {
		return
	}

	var req dto.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "无效的请求体: "+err.Error())
		return
	}

	postVO, err := ctrl.postService.UpdatePost(c.Request.Context(), middleware.ActorFromContext(c), id, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess(c, postVO, "帖子更新成功")
}

// DeletePost 删除帖子
// @Summary      删除帖子 (作者或管理员)
// @Description  硬删除，帖子下的评论与点赞在同一事务中级联删除。
// @Tags         posts (帖子)
// @Produce      json
// @Security     BearerAuth
// @Param        post_id path uint64 true "帖子 ID"
// @Success      200 {object} vo.BaseResponseWrapper "删除成功"
// @Failure      403 {object} vo.BaseResponseWrapper "无权操作该帖子"
// @Failure      404 {object} vo.BaseResponseWrapper "帖子不存在"
// @Router       /api/v1/blog/posts/{post_id} [delete]
func (ctrl *PostController) DeletePost(c *gin.Context) {
	id, ok := parseUintParam(c, "post_id")
	if !ok {
		return
	}

	if err := ctrl.postService.DeletePost(c.Request.Context(), middleware.ActorFromContext(c), id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess[any](c, nil, "帖子删除成功")
}

// GetPost 获取帖子详情
// @Summary      获取帖子详情
// @Description  非 published 的帖子仅作者与管理员可见；已发布帖子的浏览会异步计数（Bloom Filter 防刷）。
// @Tags         posts (帖子)
// @Produce      json
// @Param        post_id path uint64 true "帖子 ID"
// @Success      200 {object} vo.PostResponseWrapper "帖子详情"
// @Failure      404 {object} vo.BaseResponseWrapper "帖子不存在或不可见"
// @Router       /api/v1/blog/posts/{post_id} [get]
func (ctrl *PostController) GetPost(c *gin.Context) {
	id, ok := parseUintParam(c, "post_id")
	if !ok {
		return
	}

	postVO, err := ctrl.postService.GetPostByID(c.Request.Context(), middleware.ActorFromContext(c), id, visitorID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess(c, postVO, "获取成功")
}

// ListPosts 帖子列表
// @Summary      分页列出帖子
// @Description  支持状态/分类/作者/标签/标题搜索组合过滤；匿名请求只能看到已发布帖子，非管理员只能按自己的 author_id 过滤。
// @Tags         posts (帖子)
// @Produce      json
// @Param        page query int false "页码 (从1开始)" default(1)
// @Param        page_size query int false "每页数量" default(10)
// @Param        status query string false "状态过滤" Enums(draft,published,archived)
// @Param        category_id query uint64 false "分类过滤"
// @Param        author_id query uint64 false "作者过滤"
// @Param        tag query string false "标签过滤"
// @Param        search query string false "标题模糊搜索"
// @Success      200 {object} vo.PostListResponseWrapper "帖子列表与真实总数"
// @Failure      400 {object} vo.BaseResponseWrapper "无效的查询参数"
// @Failure      403 {object} vo.BaseResponseWrapper "非管理员按他人 author_id 过滤"
// @Router       /api/v1/blog/posts [get]
func (ctrl *PostController) ListPosts(c *gin.Context) {
	var query dto.PostListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "无效的查询参数: "+err.Error())
		return
	}

	listVO, err := ctrl.postService.ListPosts(c.Request.Context(), middleware.ActorFromContext(c), &query)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess(c, listVO, "获取成功")
}

// UploadFeaturedImage 上传头图
// @Summary      上传帖子头图 (作者或管理员)
// @Description  图片上传至对象存储，帖子记录其公开访问 URL；旧头图对象会尽力清理。
// @Tags         posts (帖子)
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        post_id path uint64 true "帖子 ID"
// @Param        image formData file true "图片文件"
// @Success      200 {object} vo.PostResponseWrapper "上传成功"
// @Failure      400 {object} vo.BaseResponseWrapper "不是图片文件"
// @Failure      403 {object} vo.BaseResponseWrapper "无权操作该帖子"
// @Failure      404 {object} vo.BaseResponseWrapper "帖子不存在"
// @Router       /api/v1/blog/posts/{post_id}/featured-image [post]
func (ctrl *PostController) UploadFeaturedImage(c *gin.Context) {
	id, ok := parseUintParam(c, "post_id")
	if !ok {
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "未找到上传的图片文件: "+err.Error())
		return
	}

	postVO, err := ctrl.postService.UploadFeaturedImage(c.Request.Context(), middleware.ActorFromContext(c), id, file)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess(c, postVO, "头图上传成功")
}

// GetPostStats 帖子统计总览
// @Summary      帖子统计总览
// @Description  总量、按状态/分类分布与热门标签（标签频次取自已发布帖子）。
// @Tags         posts (帖子)
// @Produce      json
// @Param        limit query int false "热门标签数量上限" default(10)
// @Success      200 {object} vo.PostStatsResponseWrapper "统计数据"
// @Failure      500 {object} vo.BaseResponseWrapper "服务器内部错误"
// @Router       /api/v1/blog/posts/stats/overview [get]
func (ctrl *PostController) GetPostStats(c *gin.Context) {
	var query dto.StatsLimitQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "无效的查询参数: "+err.Error())
		return
	}

	statsVO, err := ctrl.postService.GetPostStats(c.Request.Context(), query.Limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess(c, statsVO, "获取成功")
}

// RegisterRoutes 注册 PostController 的路由
func (ctrl *PostController) RegisterRoutes(group *gin.RouterGroup) {
	postGroup := group.Group("/posts")
	{
		postGroup.GET("", ctrl.optionalAuth, ctrl.ListPosts)
		postGroup.GET("/stats/overview", ctrl.GetPostStats)
		postGroup.GET("/:post_id", ctrl.optionalAuth, ctrl.GetPost)

		postGroup.POST("", ctrl.requireAuth, ctrl.CreatePost)
		postGroup.PUT("/:post_id", ctrl.requireAuth, ctrl.UpdatePost)
		postGroup.DELETE("/:post_id", ctrl.requireAuth, ctrl.DeletePost)
		postGroup.POST("/:post_id/featured-image", ctrl.requireAuth, ctrl.UploadFeaturedImage)
	}
}
