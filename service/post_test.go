package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Xushengqwer/blog_service/models/dto"
	"github.com/Xushengqwer/blog_service/models/entities"
	"github.com/Xushengqwer/blog_service/models/enums"
	"github.com/Xushengqwer/blog_service/myErrors"
)

func TestPostService_CreatePost(t *testing.T) {
	db := newTestDB(t)
	svc := newPostSvc(t, db)
	ctx := context.Background()
	author := seedUser(t, db, enums.RoleUser)

	// 匿名不能发帖
	_, err := svc.CreatePost(ctx, nil, &dto.CreatePostRequest{Title: "t", Content: "c"})
	assert.ErrorIs(t, err, myErrors.ErrUnauthenticated)

	// 缺省状态是 draft，allow_comments 缺省为 true
	created, err := svc.CreatePost(ctx, author, &dto.CreatePostRequest{Title: "hello", Content: "world"})
	require.NoError(t, err)
	assert.Equal(t, enums.PostStatusDraft, created.Status)
	assert.True(t, created.AllowComments)
	assert.Equal(t, author.ID, created.AuthorID)
	assert.NotNil(t, created.Tags)

	// archived 不是合法的初始状态
	_, err = svc.CreatePost(ctx, author, &dto.CreatePostRequest{
		Title: "t", Content: "c", Status: enums.PostStatusArchived,
	})
	assert.ErrorIs(t, err, myErrors.ErrValidation)

	// 引用不存在的分类
	missing := uint64(9999)
	_, err = svc.CreatePost(ctx, author, &dto.CreatePostRequest{
		Title: "t", Content: "c", CategoryID: &missing,
	})
	assert.ErrorIs(t, err, myErrors.ErrNotFound)
}

func TestPostService_GetPostByID_Visibility(t *testing.T) {
	db := newTestDB(t)
	svc := newPostSvc(t, db)
	ctx := context.Background()
	author := seedUser(t, db, enums.RoleUser)
	other := seedUser(t, db, enums.RoleUser)
	admin := seedUser(t, db, enums.RoleAdmin)

	draft := seedPost(t, db, author.ID, enums.PostStatusDraft)
	published := seedPost(t, db, author.ID, enums.PostStatusPublished)

	// 草稿：存在性不对外暴露
	_, err := svc.GetPostByID(ctx, nil, draft.ID, "")
	assert.ErrorIs(t, err, myErrors.ErrNotFound)
	_, err = svc.GetPostByID(ctx, other, draft.ID, "")
	assert.ErrorIs(t, err, myErrors.ErrNotFound)

	// 作者与管理员可见
	got, err := svc.GetPostByID(ctx, author, draft.ID, "")
	require.NoError(t, err)
	assert.Equal(t, draft.ID, got.ID)
	_, err = svc.GetPostByID(ctx, admin, draft.ID, "")
	assert.NoError(t, err)

	// 已发布对所有人可见
	_, err = svc.GetPostByID(ctx, nil, published.ID, "ip:127.0.0.1")
	assert.NoError(t, err)

	_, err = svc.GetPostByID(ctx, nil, 9999, "")
	assert.ErrorIs(t, err, myErrors.ErrNotFound)
}

func TestPostService_ListPosts_VisibilityTightening(t *testing.T) {
	db := newTestDB(t)
	svc := newPostSvc(t, db)
	ctx := context.Background()
	alice := seedUser(t, db, enums.RoleUser)
	bob := seedUser(t, db, enums.RoleUser)
	admin := seedUser(t, db, enums.RoleAdmin)

	seedPost(t, db, alice.ID, enums.PostStatusPublished)
	seedPost(t, db, alice.ID, enums.PostStatusDraft)
	seedPost(t, db, bob.ID, enums.PostStatusDraft)

	// 匿名只看已发布
	list, err := svc.ListPosts(ctx, nil, &dto.PostListQuery{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, list.Total)
	assert.Equal(t, enums.PostStatusPublished, list.Posts[0].Status)

	// 普通用户看非 published 状态时只能看自己的
	draft := enums.PostStatusDraft
	list, err = svc.ListPosts(ctx, alice, &dto.PostListQuery{Page: 1, PageSize: 10, Status: &draft})
	require.NoError(t, err)
	assert.EqualValues(t, 1, list.Total)
	assert.Equal(t, alice.ID, list.Posts[0].AuthorID)

	// 普通用户不带状态过滤时，结果也收敛到自己的帖子
	list, err = svc.ListPosts(ctx, alice, &dto.PostListQuery{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, list.Total)

	// 管理员不受限
	list, err = svc.ListPosts(ctx, admin, &dto.PostListQuery{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 3, list.Total)
}

func TestPostService_ListPosts_CrossAuthorFilterForbidden(t *testing.T) {
	db := newTestDB(t)
	svc := newPostSvc(t, db)
	ctx := context.Background()
	alice := seedUser(t, db, enums.RoleUser)
	bob := seedUser(t, db, enums.RoleUser)
	admin := seedUser(t, db, enums.RoleAdmin)

	seedPost(t, db, bob.ID, enums.PostStatusPublished)

	// 普通用户按他人 author_id 过滤，无论是否带状态条件都拒绝
	published := enums.PostStatusPublished
	_, err := svc.ListPosts(ctx, alice, &dto.PostListQuery{Page: 1, PageSize: 10, AuthorID: &bob.ID, Status: &published})
	assert.ErrorIs(t, err, myErrors.ErrForbidden)

	_, err = svc.ListPosts(ctx, alice, &dto.PostListQuery{Page: 1, PageSize: 10, AuthorID: &bob.ID})
	assert.ErrorIs(t, err, myErrors.ErrForbidden)

	// 按自己的 author_id 过滤正常
	list, err := svc.ListPosts(ctx, alice, &dto.PostListQuery{Page: 1, PageSize: 10, AuthorID: &alice.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 0, list.Total)

	// 管理员可以按任意作者过滤
	list, err = svc.ListPosts(ctx, admin, &dto.PostListQuery{Page: 1, PageSize: 10, AuthorID: &bob.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, list.Total)
}

func TestPostService_ListPosts_FiltersAndTotal(t *testing.T) {
	db := newTestDB(t)
	svc := newPostSvc(t, db)
	ctx := context.Background()
	author := seedUser(t, db, enums.RoleUser)

	for i := 0; i < 3; i++ {
		p := seedPost(t, db, author.ID, enums.PostStatusPublished)
		require.NoError(t, db.Model(p).Update("tags", `["golang","web"]`).Error)
	}
	seedPost(t, db, author.ID, enums.PostStatusPublished)

	// 标签过滤
	list, err := svc.ListPosts(ctx, nil, &dto.PostListQuery{Page: 1, PageSize: 10, Tag: "golang"})
	require.NoError(t, err)
	assert.EqualValues(t, 3, list.Total)

	// 分页截断不影响真实总数
	list, err = svc.ListPosts(ctx, nil, &dto.PostListQuery{Page: 1, PageSize: 2, Tag: "golang"})
	require.NoError(t, err)
	assert.EqualValues(t, 3, list.Total)
	assert.Len(t, list.Posts, 2)
}

func TestPostService_UpdatePost(t *testing.T) {
	db := newTestDB(t)
	svc := newPostSvc(t, db)
	ctx := context.Background()
	author := seedUser(t, db, enums.RoleUser)
	other := seedUser(t, db, enums.RoleUser)

	post := seedPost(t, db, author.ID, enums.PostStatusDraft)

	req := &dto.UpdatePostRequest{Title: "new title", Content: "new content", AllowComments: true}

	// 非作者非管理员被拒绝
	_, err := svc.UpdatePost(ctx, other, post.ID, req)
	assert.ErrorIs(t, err, myErrors.ErrForbidden)

	// Status 为 nil 时状态不变
	updated, err := svc.UpdatePost(ctx, author, post.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "new title", updated.Title)
	assert.Equal(t, enums.PostStatusDraft, updated.Status)

	published := enums.PostStatusPublished
	req.Status = &published
	updated, err = svc.UpdatePost(ctx, author, post.ID, req)
	require.NoError(t, err)
	assert.Equal(t, enums.PostStatusPublished, updated.Status)

	_, err = svc.UpdatePost(ctx, author, 9999, req)
	assert.ErrorIs(t, err, myErrors.ErrNotFound)
}

func TestPostService_DeletePost_Cascade(t *testing.T) {
	db := newTestDB(t)
	svc := newPostSvc(t, db)
	ctx := context.Background()
	author := seedUser(t, db, enums.RoleUser)
	commenter := seedUser(t, db, enums.RoleUser)

	post := seedPost(t, db, author.ID, enums.PostStatusPublished)
	root := seedComment(t, db, commenter.ID, post.ID, nil)
	reply := seedComment(t, db, commenter.ID, post.ID, &root.ID)
	require.NoError(t, db.Create(&entities.CommentLike{UserID: author.ID, CommentID: reply.ID}).Error)

	// 非作者被拒绝
	assert.ErrorIs(t, svc.DeletePost(ctx, commenter, post.ID), myErrors.ErrForbidden)

	require.NoError(t, svc.DeletePost(ctx, author, post.ID))

	var postCount, commentCount, likeCount int64
	require.NoError(t, db.Model(&entities.Post{}).Where("id = ?", post.ID).Count(&postCount).Error)
	require.NoError(t, db.Model(&entities.Comment{}).Where("post_id = ?", post.ID).Count(&commentCount).Error)
	require.NoError(t, db.Model(&entities.CommentLike{}).Count(&likeCount).Error)
	assert.Zero(t, postCount)
	assert.Zero(t, commentCount)
	assert.Zero(t, likeCount)
}

func TestPostService_GetPostStats(t *testing.T) {
	db := newTestDB(t)
	svc := newPostSvc(t, db)
	ctx := context.Background()
	author := seedUser(t, db, enums.RoleUser)

	p1 := seedPost(t, db, author.ID, enums.PostStatusPublished)
	require.NoError(t, db.Model(p1).Updates(map[string]interface{}{
		"tags": `["golang","web"]`, "view_count": 7, "like_count": 2,
	}).Error)
	p2 := seedPost(t, db, author.ID, enums.PostStatusPublished)
	require.NoError(t, db.Model(p2).Update("tags", `["golang"]`).Error)
	seedPost(t, db, author.ID, enums.PostStatusDraft)

	seedComment(t, db, author.ID, p1.ID, nil)

	stats, err := svc.GetPostStats(ctx, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.TotalPosts)
	assert.EqualValues(t, 7, stats.TotalViews)
	assert.EqualValues(t, 2, stats.TotalLikes)
	assert.EqualValues(t, 1, stats.TotalComments)
	assert.EqualValues(t, 2, stats.PostsByStatus[enums.PostStatusPublished])
	assert.EqualValues(t, 1, stats.PostsByStatus[enums.PostStatusDraft])

	// golang 出现两次排最前
	require.NotEmpty(t, stats.PopularTags)
	assert.Equal(t, "golang", stats.PopularTags[0].Tag)
	assert.EqualValues(t, 2, stats.PopularTags[0].Count)
}
