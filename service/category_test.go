package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Xushengqwer/blog_service/models/dto"
	"github.com/Xushengqwer/blog_service/models/entities"
	"github.com/Xushengqwer/blog_service/models/enums"
	"github.com/Xushengqwer/blog_service/models/vo"
	"github.com/Xushengqwer/blog_service/myErrors"
)

func createCategory(t *testing.T, svc CategoryService, admin *entities.User, slug string, parentID *uint64) *vo.CategoryVO {
	t.Helper()
	created, err := svc.CreateCategory(context.Background(), admin, &dto.CreateCategoryRequest{
		Name:     "cat " + slug,
		Slug:     slug,
		ParentID: parentID,
	})
	require.NoError(t, err)
	return created
}

func TestCategoryService_CreateCategory(t *testing.T) {
	db := newTestDB(t)
	svc := newCategorySvc(t, db)
	ctx := context.Background()
	admin := seedUser(t, db, enums.RoleAdmin)
	user := seedUser(t, db, enums.RoleUser)

	// 仅管理员可以创建
	_, err := svc.CreateCategory(ctx, user, &dto.CreateCategoryRequest{Name: "x", Slug: "x"})
	assert.ErrorIs(t, err, myErrors.ErrForbidden)
	_, err = svc.CreateCategory(ctx, nil, &dto.CreateCategoryRequest{Name: "x", Slug: "x"})
	assert.ErrorIs(t, err, myErrors.ErrUnauthenticated)

	// slug 格式
	_, err = svc.CreateCategory(ctx, admin, &dto.CreateCategoryRequest{Name: "x", Slug: "Bad Slug!"})
	assert.ErrorIs(t, err, myErrors.ErrValidation)

	created := createCategory(t, svc, admin, "tech", nil)
	assert.Equal(t, "tech", created.Slug)
	assert.Nil(t, created.ParentID)

	// slug 重复
	_, err = svc.CreateCategory(ctx, admin, &dto.CreateCategoryRequest{Name: "y", Slug: "tech"})
	assert.ErrorIs(t, err, myErrors.ErrDuplicateSlug)

	// 父分类必须存在
	missing := uint64(9999)
	_, err = svc.CreateCategory(ctx, admin, &dto.CreateCategoryRequest{Name: "z", Slug: "sub", ParentID: &missing})
	assert.ErrorIs(t, err, myErrors.ErrParentNotFound)
}

func TestCategoryService_UpdateCategory_CyclicParent(t *testing.T) {
	db := newTestDB(t)
	svc := newCategorySvc(t, db)
	ctx := context.Background()
	admin := seedUser(t, db, enums.RoleAdmin)

	root := createCategory(t, svc, admin, "root", nil)
	child := createCategory(t, svc, admin, "child", &root.ID)
	grandchild := createCategory(t, svc, admin, "grandchild", &child.ID)

	// 自己不能当自己的父分类
	_, err := svc.UpdateCategory(ctx, admin, root.ID, &dto.UpdateCategoryRequest{ParentID: &root.ID})
	assert.ErrorIs(t, err, myErrors.ErrCyclicParent)

	// 后代（任意深度）不能当父分类
	_, err = svc.UpdateCategory(ctx, admin, root.ID, &dto.UpdateCategoryRequest{ParentID: &child.ID})
	assert.ErrorIs(t, err, myErrors.ErrCyclicParent)
	_, err = svc.UpdateCategory(ctx, admin, root.ID, &dto.UpdateCategoryRequest{ParentID: &grandchild.ID})
	assert.ErrorIs(t, err, myErrors.ErrCyclicParent)

	// 同级挪动是合法的
	sibling := createCategory(t, svc, admin, "sibling", nil)
	updated, err := svc.UpdateCategory(ctx, admin, child.ID, &dto.UpdateCategoryRequest{ParentID: &sibling.ID})
	require.NoError(t, err)
	require.NotNil(t, updated.ParentID)
	assert.Equal(t, sibling.ID, *updated.ParentID)
}

func TestCategoryService_DeleteCategory(t *testing.T) {
	db := newTestDB(t)
	svc := newCategorySvc(t, db)
	ctx := context.Background()
	admin := seedUser(t, db, enums.RoleAdmin)
	author := seedUser(t, db, enums.RoleUser)

	root := createCategory(t, svc, admin, "parent", nil)
	child := createCategory(t, svc, admin, "leaf", &root.ID)

	// 有子分类时拒绝删除
	assert.ErrorIs(t, svc.DeleteCategory(ctx, admin, root.ID), myErrors.ErrHasChildren)

	// 挂一篇帖子到叶子分类上
	post := seedPost(t, db, author.ID, enums.PostStatusPublished)
	require.NoError(t, db.Model(post).Update("category_id", child.ID).Error)

	require.NoError(t, svc.DeleteCategory(ctx, admin, child.ID))

	// 帖子保留，分类引用被置空
	var reloaded entities.Post
	require.NoError(t, db.First(&reloaded, post.ID).Error)
	assert.Nil(t, reloaded.CategoryID)

	// 子分类没了之后父分类可删
	require.NoError(t, svc.DeleteCategory(ctx, admin, root.ID))
	assert.ErrorIs(t, svc.DeleteCategory(ctx, admin, root.ID), myErrors.ErrNotFound)
}

func TestCategoryService_TreeQueries(t *testing.T) {
	db := newTestDB(t)
	svc := newCategorySvc(t, db)
	ctx := context.Background()
	admin := seedUser(t, db, enums.RoleAdmin)

	// root -> a -> b, root -> c
	root := createCategory(t, svc, admin, "root", nil)
	a := createCategory(t, svc, admin, "a", &root.ID)
	b := createCategory(t, svc, admin, "b", &a.ID)
	c := createCategory(t, svc, admin, "c", &root.ID)

	// 祖先链从最近的父级到根
	ancestors, err := svc.GetAncestors(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, ancestors, 2)
	assert.Equal(t, a.ID, ancestors[0].ID)
	assert.Equal(t, root.ID, ancestors[1].ID)

	// 全部后代，任意深度
	descendants, err := svc.GetDescendants(ctx, root.ID)
	require.NoError(t, err)
	ids := make(map[uint64]bool)
	for _, d := range descendants {
		ids[d.ID] = true
	}
	assert.Len(t, ids, 3)
	assert.True(t, ids[a.ID] && ids[b.ID] && ids[c.ID])

	// 叶子没有后代
	descendants, err = svc.GetDescendants(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, descendants)

	// 不存在的节点
	_, err = svc.GetAncestors(ctx, 9999)
	assert.ErrorIs(t, err, myErrors.ErrNotFound)
	_, err = svc.GetDescendants(ctx, 9999)
	assert.ErrorIs(t, err, myErrors.ErrNotFound)
}

func TestCategoryService_ListCategories(t *testing.T) {
	db := newTestDB(t)
	svc := newCategorySvc(t, db)
	ctx := context.Background()
	admin := seedUser(t, db, enums.RoleAdmin)

	root1 := createCategory(t, svc, admin, "root1", nil)
	createCategory(t, svc, admin, "root2", nil)
	createCategory(t, svc, admin, "child1", &root1.ID)

	// 缺省返回根分类
	list, err := svc.ListCategories(ctx, &dto.CategoryListQuery{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, list.Total)
	assert.Len(t, list.Categories, 2)

	// 指定父分类返回子分类
	list, err = svc.ListCategories(ctx, &dto.CategoryListQuery{Page: 1, PageSize: 10, ParentID: &root1.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, list.Total)

	// 不存在的父分类与空子列表要能区分
	missing := uint64(9999)
	_, err = svc.ListCategories(ctx, &dto.CategoryListQuery{Page: 1, PageSize: 10, ParentID: &missing})
	assert.ErrorIs(t, err, myErrors.ErrNotFound)
}

func TestCategoryService_GetCategoryStats(t *testing.T) {
	db := newTestDB(t)
	svc := newCategorySvc(t, db)
	ctx := context.Background()
	admin := seedUser(t, db, enums.RoleAdmin)
	author := seedUser(t, db, enums.RoleUser)

	root := createCategory(t, svc, admin, "root", nil)
	child := createCategory(t, svc, admin, "child", &root.ID)
	createCategory(t, svc, admin, "grandchild", &child.ID)

	// child 下两篇已发布帖子，root 下一篇草稿（草稿不计入活跃度）
	for i := 0; i < 2; i++ {
		p := seedPost(t, db, author.ID, enums.PostStatusPublished)
		require.NoError(t, db.Model(p).Updates(map[string]interface{}{"category_id": child.ID, "view_count": 5}).Error)
	}
	draft := seedPost(t, db, author.ID, enums.PostStatusDraft)
	require.NoError(t, db.Model(draft).Update("category_id", root.ID).Error)

	stats, err := svc.GetCategoryStats(ctx, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.TotalCategories)
	assert.EqualValues(t, 2, stats.TotalPosts)
	assert.EqualValues(t, 10, stats.TotalViews)

	// 深度分布：根 0，child 1，grandchild 2
	assert.EqualValues(t, 1, stats.CategoriesByDepth[0])
	assert.EqualValues(t, 1, stats.CategoriesByDepth[1])
	assert.EqualValues(t, 1, stats.CategoriesByDepth[2])

	// 活跃度排序：child 在最前
	require.NotEmpty(t, stats.MostActive)
	assert.Equal(t, child.ID, stats.MostActive[0].Category.ID)
	assert.EqualValues(t, 2, stats.MostActive[0].Posts)
}
