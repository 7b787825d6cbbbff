package controller

import (
	"net/http"

	"github.com/Xushengqwer/go-common/response"
	"github.com/gin-gonic/gin"

	"github.com/Xushengqwer/blog_service/middleware"
	"github.com/Xushengqwer/blog_service/models/dto"
	"github.com/Xushengqwer/blog_service/service"
)

// CommentController 评论与点赞相关接口的控制器。
type CommentController struct {
	commentService service.CommentService
	requireAuth    gin.HandlerFunc
}

// NewCommentController 构造函数。
func NewCommentController(commentService service.CommentService, requireAuth gin.HandlerFunc) *CommentController {
	return &CommentController{
		commentService: commentService,
		requireAuth:    requireAuth,
	}
}

// CreateComment 发表评论
// @Summary      发表评论或回复
// @Description  parent_id 非空时为回复，父评论必须属于同一帖子；帖子关闭评论时拒绝。
// @Tags         comments (评论)
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        post_id path uint64 true "帖子 ID"
// @Param        request body dto.CreateCommentRequest true "评论内容"
// @Success      200 {object} vo.CommentResponseWrapper "发表成功"
// @Failure      400 {object} vo.BaseResponseWrapper "父评论属于其他帖子"
// @Failure      403 {object} vo.BaseResponseWrapper "帖子已关闭评论"
// @Failure      404 {object} vo.BaseResponseWrapper "帖子或父评论不存在"
// @Router       /api/v1/blog/posts/{post_id}/comments [post]
func (ctrl *CommentController) CreateComment(c *gin.Context) {
	postID, ok := parseUintParam(c, "post_id")
	if !ok {
		return
	}

	var req dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "无效的请求体: "+err.Error())
		return
	}

	commentVO, err := ctrl.commentService.CreateComment(c.Request.Context(), middleware.ActorFromContext(c), postID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess(c, commentVO, "评论发表成功")
}

// ListComments 评论列表
// @Summary      分页列出评论
// @Description  parent_id 缺省时返回帖子的根评论，否则返回该评论的回复；每条评论带读取时计算的 reply_count。
// @Tags         comments (评论)
// @Produce      json
// @Param        post_id path uint64 true "帖子 ID"
// @Param        page query int false "页码 (从1开始)" default(1)
// @Param        page_size query int false "每页数量" default(10)
// @Param        parent_id query uint64 false "父评论 ID（取回复时传）"
// @Success      200 {object} vo.CommentListResponseWrapper "评论列表与真实总数"
// @Failure      404 {object} vo.BaseResponseWrapper "帖子或父评论不存在"
// @Router       /api/v1/blog/posts/{post_id}/comments [get]
func (ctrl *CommentController) ListComments(c *gin.Context) {
	postID, ok := parseUintParam(c, "post_id")
	if !ok {
		return
	}

	var query dto.CommentListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "无效的查询参数: "+err.Error())
		return
	}

	listVO, err := ctrl.commentService.ListComments(c.Request.Context(), postID, &query)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess(c, listVO, "获取成功")
}

// EditComment 编辑评论
// @Summary      编辑评论 (作者或管理员)
// @Description  is_edited 置位后不再回退。
// @Tags         comments (评论)
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        comment_id path uint64 true "评论 ID"
// @Param        request body dto.UpdateCommentRequest true "新的评论内容"
// @Success      200 {object} vo.CommentResponseWrapper "编辑成功"
// @Failure      403 {object} vo.BaseResponseWrapper "无权操作该评论"
// @Failure      404 {object} vo.BaseResponseWrapper "评论不存在"
// @Router       /api/v1/blog/comments/{comment_id} [put]
func (ctrl *CommentController) EditComment(c *gin.Context) {
	id, ok := parseUintParam(c, "comment_id")
	if !ok {
		return
	}

	var req dto.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "无效的请求体: "+err.Error())
		return
	}

	commentVO, err := ctrl.commentService.EditComment(c.Request.Context(), middleware.ActorFromContext(c), id, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess(c, commentVO, "评论编辑成功")
}

// GetComment 获取单条评论
// @Summary      获取单条评论
// @Description  返回评论详情，附带读取时计算的 reply_count。
// @Tags         comments (评论)
// @Produce      json
// @Param        comment_id path uint64 true "评论 ID"
// @Success      200 {object} vo.CommentResponseWrapper "评论详情"
// @Failure      404 {object} vo.BaseResponseWrapper "评论不存在"
// @Router       /api/v1/blog/comments/{comment_id} [get]
func (ctrl *CommentController) GetComment(c *gin.Context) {
	id, ok := parseUintParam(c, "comment_id")
	if !ok {
		return
	}

	commentVO, err := ctrl.commentService.GetCommentByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess(c, commentVO, "获取成功")
}

// DeleteComment 删除评论
// @Summary      删除评论 (作者或管理员)
// @Description  直接回复与相关点赞记录级联删除。
// @Tags         comments (评论)
// @Produce      json
// @Security     BearerAuth
// @Param        comment_id path uint64 true "评论 ID"
// @Success      200 {object} vo.BaseResponseWrapper "删除成功"
// @Failure      403 {object} vo.BaseResponseWrapper "无权操作该评论"
// @Failure      404 {object} vo.BaseResponseWrapper "评论不存在"
// @Router       /api/v1/blog/comments/{comment_id} [delete]
func (ctrl *CommentController) DeleteComment(c *gin.Context) {
	id, ok := parseUintParam(c, "comment_id")
	if !ok {
		return
	}

	if err := ctrl.commentService.DeleteComment(c.Request.Context(), middleware.ActorFromContext(c), id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess[any](c, nil, "评论删除成功")
}

// LikeComment 点赞评论
// @Summary      点赞评论
// @Description  点赞行插入与计数自增在同一事务内配对；重复点赞被拒绝。
// @Tags         comments (评论)
// @Produce      json
// @Security     BearerAuth
// @Param        comment_id path uint64 true "评论 ID"
// @Success      200 {object} vo.BaseResponseWrapper "点赞成功"
// @Failure      400 {object} vo.BaseResponseWrapper "已点过赞"
// @Failure      404 {object} vo.BaseResponseWrapper "评论不存在"
// @Router       /api/v1/blog/comments/{comment_id}/like [post]
func (ctrl *CommentController) LikeComment(c *gin.Context) {
	id, ok := parseUintParam(c, "comment_id")
	if !ok {
		return
	}

	if err := ctrl.commentService.LikeComment(c.Request.Context(), middleware.ActorFromContext(c), id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess[any](c, nil, "点赞成功")
}

// UnlikeComment 取消点赞
// @Summary      取消点赞
// @Description  点赞行删除与计数自减在同一事务内配对，计数不会降到负数。
// @Tags         comments (评论)
// @Produce      json
// @Security     BearerAuth
// @Param        comment_id path uint64 true "评论 ID"
// @Success      200 {object} vo.BaseResponseWrapper "取消成功"
// @Failure      400 {object} vo.BaseResponseWrapper "尚未点赞"
// @Failure      404 {object} vo.BaseResponseWrapper "评论不存在"
// @Router       /api/v1/blog/comments/{comment_id}/like [delete]
func (ctrl *CommentController) UnlikeComment(c *gin.Context) {
	id, ok := parseUintParam(c, "comment_id")
	if !ok {
		return
	}

	if err := ctrl.commentService.UnlikeComment(c.Request.Context(), middleware.ActorFromContext(c), id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess[any](c, nil, "取消点赞成功")
}

// GetCommentStats 评论统计总览
// @Summary      评论统计总览
// @Description  总量、24 小时分布直方图、最活跃评论者与最受欢迎/最多回复的评论。
// @Tags         comments (评论)
// @Produce      json
// @Param        limit query int false "Top-N 数量上限" default(10)
// @Success      200 {object} vo.CommentStatsResponseWrapper "统计数据"
// @Failure      500 {object} vo.BaseResponseWrapper "服务器内部错误"
// @Router       /api/v1/blog/comments/stats/overview [get]
func (ctrl *CommentController) GetCommentStats(c *gin.Context) {
	var query dto.StatsLimitQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "无效的查询参数: "+err.Error())
		return
	}

	statsVO, err := ctrl.commentService.GetCommentStats(c.Request.Context(), query.Limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess(c, statsVO, "获取成功")
}

// RegisterRoutes 注册 CommentController 的路由
func (ctrl *CommentController) RegisterRoutes(group *gin.RouterGroup) {
	// 帖子维度：发表与列表
	postComments := group.Group("/posts/:post_id/comments")
	{
		postComments.GET("", ctrl.ListComments)
		postComments.POST("", ctrl.requireAuth, ctrl.CreateComment)
	}

	// 评论维度：编辑、删除、点赞与统计
	commentGroup := group.Group("/comments")
	{
		commentGroup.GET("/stats/overview", ctrl.GetCommentStats)
		commentGroup.GET("/:comment_id", ctrl.GetComment)
		commentGroup.PUT("/:comment_id", ctrl.requireAuth, ctrl.EditComment)
		commentGroup.DELETE("/:comment_id", ctrl.requireAuth, ctrl.DeleteComment)
		commentGroup.POST("/:comment_id/like", ctrl.requireAuth, ctrl.LikeComment)
		commentGroup.DELETE("/:comment_id/like", ctrl.requireAuth, ctrl.UnlikeComment)
	}
}
