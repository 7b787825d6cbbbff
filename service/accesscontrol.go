package service

import (
	"github.com/Xushengqwer/blog_service/models/entities"
	"github.com/Xushengqwer/blog_service/models/enums"
	"github.com/Xushengqwer/blog_service/myErrors"
)

// 授权规则集中在这里，服务层在执行写操作前调用。
// 规则只有两条:
//   - 管理员可以操作任何资源；
//   - 普通用户只能操作自己拥有的资源（帖子、评论）。
// 分类的增删改是管理员专属操作。

// IsAdmin 判断操作者是否为管理员。
func IsAdmin(actor *entities.User) bool {
	return actor != nil && actor.Role == enums.RoleAdmin
}

// AuthorizeOwnerOrAdmin 校验操作者是否为资源拥有者或管理员。
// 未通过时返回 myErrors.ErrForbidden。
func AuthorizeOwnerOrAdmin(actor *entities.User, ownerID uint64) error {
	if actor == nil {
		return myErrors.ErrUnauthenticated
	}
	if actor.Role == enums.RoleAdmin || actor.ID == ownerID {
		return nil
	}
	return myErrors.ErrForbidden
}

// AuthorizeAdmin 校验操作者是否为管理员，分类管理等后台操作使用。
func AuthorizeAdmin(actor *entities.User) error {
	if actor == nil {
		return myErrors.ErrUnauthenticated
	}
	if actor.Role != enums.RoleAdmin {
		return myErrors.ErrForbidden
	}
	return nil
}
