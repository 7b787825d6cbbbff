package controller

import (
	"net/http"

	"github.com/Xushengqwer/go-common/response"
	"github.com/gin-gonic/gin"

	"github.com/Xushengqwer/blog_service/middleware"
	"github.com/Xushengqwer/blog_service/models/dto"
	"github.com/Xushengqwer/blog_service/service"
)

// CategoryController 分类树相关接口的控制器。
// 读取接口公开，增删改仅管理员（服务层鉴权）。
type CategoryController struct {
	categoryService service.CategoryService
	requireAuth     gin.HandlerFunc
}

// NewCategoryController 构造函数。
func NewCategoryController(categoryService service.CategoryService, requireAuth gin.HandlerFunc) *CategoryController {
	return &CategoryController{
		categoryService: categoryService,
		requireAuth:     requireAuth,
	}
}

// CreateCategory 创建分类
// @Summary      创建分类 (管理员)
// @Tags         categories (分类)
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateCategoryRequest true "分类信息"
// @Success      200 {object} vo.CategoryResponseWrapper "创建成功"
// @Failure      400 {object} vo.BaseResponseWrapper "slug 格式无效或已被占用"
// @Failure      403 {object} vo.BaseResponseWrapper "需要管理员权限"
// @Failure      404 {object} vo.BaseResponseWrapper "父分类不存在"
// @Router       /api/v1/blog/categories [post]
func (ctrl *CategoryController) CreateCategory(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "无效的请求体: "+err.Error())
		return
	}

	categoryVO, err := ctrl.categoryService.CreateCategory(c.Request.Context(), middleware.ActorFromContext(c), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess(c, categoryVO, "分类创建成功")
}

// UpdateCategory 更新分类
// @Summary      更新分类 (管理员)
// @Description  部分更新；变更父分类时会做环检测，新父分类不能是自身或其后代。
// @Tags         categories (分类)
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        category_id path uint64 true "分类 ID"
// @Param        request body dto.UpdateCategoryRequest true "要更新的字段"
// @Success      200 {object} vo.CategoryResponseWrapper "更新成功"
// @Failure      400 {object} vo.BaseResponseWrapper "环状父子关系或 slug 冲突"
// @Failure      403 {object} vo.BaseResponseWrapper "需要管理员权限"
// @Failure      404 {object} vo.BaseResponseWrapper "分类或父分类不存在"
// @Router       /api/v1/blog/categories/{category_id} [put]
func (ctrl *CategoryController) UpdateCategory(c *gin.Context) {
	id, ok := parseUintParam(c, "category_id")
	if !ok {
		return
	}

	var req dto.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "无效的请求体: "+err.Error())
		return
	}

	categoryVO, err := ctrl.categoryService.UpdateCategory(c.Request.Context(), middleware.ActorFromContext(c), id, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess(c, categoryVO, "分类更新成功")
}

// DeleteCategory 删除分类
// @Summary      删除分类 (管理员)
// @Description  仍有子分类时拒绝删除；关联帖子的分类引用会被置空。
// @Tags         categories (分类)
// @Produce      json
// @Security     BearerAuth
// @Param        category_id path uint64 true "分类 ID"
// @Success      200 {object} vo.BaseResponseWrapper "删除成功"
// @Failure      400 {object} vo.BaseResponseWrapper "仍有子分类"
// @Failure      403 {object} vo.BaseResponseWrapper "需要管理员权限"
// @Failure      404 {object} vo.BaseResponseWrapper "分类不存在"
// @Router       /api/v1/blog/categories/{category_id} [delete]
func (ctrl *CategoryController) DeleteCategory(c *gin.Context) {
	id, ok := parseUintParam(c, "category_id")
	if !ok {
		return
	}

	if err := ctrl.categoryService.DeleteCategory(c.Request.Context(), middleware.ActorFromContext(c), id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess[any](c, nil, "分类删除成功")
}

// GetCategory 获取单个分类
// @Summary      获取分类详情
// @Tags         categories (分类)
// @Produce      json
// @Param        category_id path uint64 true "分类 ID"
// @Success      200 {object} vo.CategoryResponseWrapper "分类详情（含关联帖子数）"
// @Failure      404 {object} vo.BaseResponseWrapper "分类不存在"
// @Router       /api/v1/blog/categories/{category_id} [get]
func (ctrl *CategoryController) GetCategory(c *gin.Context) {
	id, ok := parseUintParam(c, "category_id")
	if !ok {
		return
	}

	categoryVO, err := ctrl.categoryService.GetCategoryByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess(c, categoryVO, "获取成功")
}

// ListCategories 分类列表
// @Summary      分页列出分类
// @Description  parent_id 缺省时返回根分类，否则返回该父分类的直接子分类；按 order 升序、创建时间升序。
// @Tags         categories (分类)
// @Produce      json
// @Param        page query int false "页码 (从1开始)" default(1)
// @Param        page_size query int false "每页数量" default(10)
// @Param        parent_id query uint64 false "父分类 ID"
// @Success      200 {object} vo.CategoryListResponseWrapper "分类列表与真实总数"
// @Failure      400 {object} vo.BaseResponseWrapper "无效的查询参数"
// @Failure      404 {object} vo.BaseResponseWrapper "父分类不存在"
// @Router       /api/v1/blog/categories [get]
func (ctrl *CategoryController) ListCategories(c *gin.Context) {
	var query dto.CategoryListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "无效的查询参数: "+err.Error())
		return
	}

	listVO, err := ctrl.categoryService.ListCategories(c.Request.Context(), &query)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess(c, listVO, "获取成功")
}

// GetAncestors 祖先链
// @Summary      获取分类的祖先链
// @Description  从最近的父级到根，不含该分类自身。
// @Tags         categories (分类)
// @Produce      json
// @Param        category_id path uint64 true "分类 ID"
// @Success      200 {object} vo.CategoryListResponseWrapper "祖先列表"
// @Failure      404 {object} vo.BaseResponseWrapper "分类不存在"
// @Router       /api/v1/blog/categories/{category_id}/ancestors [get]
func (ctrl *CategoryController) GetAncestors(c *gin.Context) {
	id, ok := parseUintParam(c, "category_id")
	if !ok {
		return
	}

	ancestors, err := ctrl.categoryService.GetAncestors(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess(c, ancestors, "获取成功")
}

// GetDescendants 后代集合
// @Summary      获取分类的全部后代
// @Tags         categories (分类)
// @Produce      json
// @Param        category_id path uint64 true "分类 ID"
// @Success      200 {object} vo.CategoryListResponseWrapper "后代列表"
// @Failure      404 {object} vo.BaseResponseWrapper "分类不存在"
// @Router       /api/v1/blog/categories/{category_id}/descendants [get]
func (ctrl *CategoryController) GetDescendants(c *gin.Context) {
	id, ok := parseUintParam(c, "category_id")
	if !ok {
		return
	}

	descendants, err := ctrl.categoryService.GetDescendants(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess(c, descendants, "获取成功")
}

// GetCategoryStats 分类统计总览
// @Summary      分类统计总览
// @Description  总数、深度分布与最活跃分类（按帖子数降序、浏览量打平）。
// @Tags         categories (分类)
// @Produce      json
// @Param        limit query int false "最活跃分类的数量上限" default(10)
// @Success      200 {object} vo.CategoryStatsResponseWrapper "统计数据"
// @Failure      500 {object} vo.BaseResponseWrapper "服务器内部错误"
// @Router       /api/v1/blog/categories/stats/overview [get]
func (ctrl *CategoryController) GetCategoryStats(c *gin.Context) {
	var query dto.StatsLimitQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "无效的查询参数: "+err.Error())
		return
	}

	statsVO, err := ctrl.categoryService.GetCategoryStats(c.Request.Context(), query.Limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondSuccess(c, statsVO, "获取成功")
}

// RegisterRoutes 注册 CategoryController 的路由
func (ctrl *CategoryController) RegisterRoutes(group *gin.RouterGroup) {
	categoryGroup := group.Group("/categories")
	{
		categoryGroup.GET("", ctrl.ListCategories)
		categoryGroup.GET("/stats/overview", ctrl.GetCategoryStats)
		categoryGroup.GET("/:category_id", ctrl.GetCategory)
		categoryGroup.GET("/:category_id/ancestors", ctrl.GetAncestors)
		categoryGroup.GET("/:category_id/descendants", ctrl.GetDescendants)

		categoryGroup.POST("", ctrl.requireAuth, ctrl.CreateCategory)
		categoryGroup.PUT("/:category_id", ctrl.requireAuth, ctrl.UpdateCategory)
		categoryGroup.DELETE("/:category_id", ctrl.requireAuth, ctrl.DeleteCategory)
	}
}
