package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Xushengqwer/go-common/response"
	"github.com/gin-gonic/gin"

	"github.com/Xushengqwer/blog_service/myErrors"
)

// respondServiceError 把服务层的领域错误统一映射为 HTTP 状态码。
// 未识别的错误一律按服务器内部错误返回，不向客户端透出细节以外的信息。
func respondServiceError(c *gin.Context, err error) {
	switch {
	// 400: 客户端可修复的输入问题
	case errors.Is(err, myErrors.ErrValidation),
		errors.Is(err, myErrors.ErrDuplicateSlug),
		errors.Is(err, myErrors.ErrCyclicParent),
		errors.Is(err, myErrors.ErrHasChildren),
		errors.Is(err, myErrors.ErrParentPostMismatch),
		errors.Is(err, myErrors.ErrAlreadyLiked),
		errors.Is(err, myErrors.ErrNotLiked),
		errors.Is(err, myErrors.ErrEmailTaken),
		errors.Is(err, myErrors.ErrUsernameTaken):
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, err.Error())

	// 401: 身份凭证问题
	case errors.Is(err, myErrors.ErrUnauthenticated),
		errors.Is(err, myErrors.ErrInvalidCredentials):
		response.RespondError(c, http.StatusUnauthorized, response.ErrCodeClientUnauthorized, err.Error())

	// 403: 身份有效但被拒绝
	case errors.Is(err, myErrors.ErrForbidden),
		errors.Is(err, myErrors.ErrInactiveUser),
		errors.Is(err, myErrors.ErrCommentsDisabled):
		response.RespondError(c, http.StatusForbidden, response.ErrCodeClientUnauthorized, err.Error())

	// 404: 目标资源不存在
	case errors.Is(err, myErrors.ErrNotFound),
		errors.Is(err, myErrors.ErrPostNotFound),
		errors.Is(err, myErrors.ErrParentNotFound),
		errors.Is(err, myErrors.ErrParentCommentNotFound):
		response.RespondError(c, http.StatusNotFound, response.ErrCodeClientResourceNotFound, err.Error())

	default:
		response.RespondError(c, http.StatusInternalServerError, response.ErrCodeServerInternal, "服务器内部错误")
	}
}

// parseUintParam 解析路径参数中的数字 ID，失败时返回 false 并已写入 400 响应。
func parseUintParam(c *gin.Context, name string) (uint64, bool) {
	value, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "无效的 "+name+" 格式")
		return 0, false
	}
	return value, true
}
