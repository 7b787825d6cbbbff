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

func TestCommentService_CreateComment(t *testing.T) {
	db := newTestDB(t)
	svc := newCommentSvc(t, db)
	ctx := context.Background()
	author := seedUser(t, db, enums.RoleUser)
	commenter := seedUser(t, db, enums.RoleUser)

	post := seedPost(t, db, author.ID, enums.PostStatusPublished)
	otherPost := seedPost(t, db, author.ID, enums.PostStatusPublished)

	// 匿名不能评论
	_, err := svc.CreateComment(ctx, nil, post.ID, &dto.CreateCommentRequest{Content: "hi"})
	assert.ErrorIs(t, err, myErrors.ErrUnauthenticated)

	// 帖子必须存在
	_, err = svc.CreateComment(ctx, commenter, 9999, &dto.CreateCommentRequest{Content: "hi"})
	assert.ErrorIs(t, err, myErrors.ErrPostNotFound)

	root, err := svc.CreateComment(ctx, commenter, post.ID, &dto.CreateCommentRequest{Content: "root"})
	require.NoError(t, err)
	assert.Nil(t, root.ParentID)
	assert.False(t, root.IsEdited)

	// 回复
	reply, err := svc.CreateComment(ctx, commenter, post.ID, &dto.CreateCommentRequest{Content: "reply", ParentID: &root.ID})
	require.NoError(t, err)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, root.ID, *reply.ParentID)

	// 父评论不存在
	missing := uint64(9999)
	_, err = svc.CreateComment(ctx, commenter, post.ID, &dto.CreateCommentRequest{Content: "x", ParentID: &missing})
	assert.ErrorIs(t, err, myErrors.ErrParentCommentNotFound)

	// 父评论属于另一个帖子
	_, err = svc.CreateComment(ctx, commenter, otherPost.ID, &dto.CreateCommentRequest{Content: "x", ParentID: &root.ID})
	assert.ErrorIs(t, err, myErrors.ErrParentPostMismatch)
}

func TestCommentService_CreateComment_CommentsDisabled(t *testing.T) {
	db := newTestDB(t)
	svc := newCommentSvc(t, db)
	ctx := context.Background()
	author := seedUser(t, db, enums.RoleUser)
	commenter := seedUser(t, db, enums.RoleUser)

	post := seedPost(t, db, author.ID, enums.PostStatusPublished)
	require.NoError(t, db.Model(post).Update("allow_comments", false).Error)

	_, err := svc.CreateComment(ctx, commenter, post.ID, &dto.CreateCommentRequest{Content: "hi"})
	assert.ErrorIs(t, err, myErrors.ErrCommentsDisabled)
}

func TestCommentService_GetCommentByID(t *testing.T) {
	db := newTestDB(t)
	svc := newCommentSvc(t, db)
	ctx := context.Background()
	author := seedUser(t, db, enums.RoleUser)
	post := seedPost(t, db, author.ID, enums.PostStatusPublished)
	root := seedComment(t, db, author.ID, post.ID, nil)
	seedComment(t, db, author.ID, post.ID, &root.ID)
	seedComment(t, db, author.ID, post.ID, &root.ID)

	got, err := svc.GetCommentByID(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, root.ID, got.ID)
	assert.EqualValues(t, 2, got.ReplyCount)

	_, err = svc.GetCommentByID(ctx, 9999)
	assert.ErrorIs(t, err, myErrors.ErrNotFound)
}

func TestCommentService_EditComment(t *testing.T) {
	db := newTestDB(t)
	svc := newCommentSvc(t, db)
	ctx := context.Background()
	author := seedUser(t, db, enums.RoleUser)
	other := seedUser(t, db, enums.RoleUser)
	admin := seedUser(t, db, enums.RoleAdmin)

	post := seedPost(t, db, author.ID, enums.PostStatusPublished)
	comment := seedComment(t, db, author.ID, post.ID, nil)

	_, err := svc.EditComment(ctx, other, comment.ID, &dto.UpdateCommentRequest{Content: "hacked"})
	assert.ErrorIs(t, err, myErrors.ErrForbidden)

	edited, err := svc.EditComment(ctx, author, comment.ID, &dto.UpdateCommentRequest{Content: "edited"})
	require.NoError(t, err)
	assert.Equal(t, "edited", edited.Content)
	assert.True(t, edited.IsEdited)

	// 管理员也可以编辑，is_edited 一经置位不回退
	edited, err = svc.EditComment(ctx, admin, comment.ID, &dto.UpdateCommentRequest{Content: "moderated"})
	require.NoError(t, err)
	assert.True(t, edited.IsEdited)
}

func TestCommentService_LikeUnlike(t *testing.T) {
	db := newTestDB(t)
	svc := newCommentSvc(t, db)
	ctx := context.Background()
	author := seedUser(t, db, enums.RoleUser)
	liker := seedUser(t, db, enums.RoleUser)

	post := seedPost(t, db, author.ID, enums.PostStatusPublished)
	comment := seedComment(t, db, author.ID, post.ID, nil)

	likeCount := func() int64 {
		var c entities.Comment
		require.NoError(t, db.First(&c, comment.ID).Error)
		return c.LikeCount
	}

	require.NoError(t, svc.LikeComment(ctx, liker, comment.ID))
	assert.EqualValues(t, 1, likeCount())

	// 重复点赞被拒绝，计数不动
	assert.ErrorIs(t, svc.LikeComment(ctx, liker, comment.ID), myErrors.ErrAlreadyLiked)
	assert.EqualValues(t, 1, likeCount())

	require.NoError(t, svc.UnlikeComment(ctx, liker, comment.ID))
	assert.EqualValues(t, 0, likeCount())

	// 未点赞状态下取消点赞
	assert.ErrorIs(t, svc.UnlikeComment(ctx, liker, comment.ID), myErrors.ErrNotLiked)
	assert.EqualValues(t, 0, likeCount())

	assert.ErrorIs(t, svc.LikeComment(ctx, liker, 9999), myErrors.ErrNotFound)
}

func TestCommentService_DeleteComment_Cascade(t *testing.T) {
	db := newTestDB(t)
	svc := newCommentSvc(t, db)
	ctx := context.Background()
	author := seedUser(t, db, enums.RoleUser)
	liker := seedUser(t, db, enums.RoleUser)

	post := seedPost(t, db, author.ID, enums.PostStatusPublished)
	root := seedComment(t, db, author.ID, post.ID, nil)
	reply1 := seedComment(t, db, author.ID, post.ID, &root.ID)
	seedComment(t, db, author.ID, post.ID, &root.ID)
	unrelated := seedComment(t, db, author.ID, post.ID, nil)

	require.NoError(t, svc.LikeComment(ctx, liker, root.ID))
	require.NoError(t, svc.LikeComment(ctx, liker, reply1.ID))
	require.NoError(t, svc.LikeComment(ctx, liker, unrelated.ID))

	// 非作者被拒绝
	assert.ErrorIs(t, svc.DeleteComment(ctx, liker, root.ID), myErrors.ErrForbidden)

	require.NoError(t, svc.DeleteComment(ctx, author, root.ID))

	// 根评论与直接回复都没了，无关评论不受影响
	var remaining []entities.Comment
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, unrelated.ID, remaining[0].ID)

	// 被级联删除的评论的点赞记录一并清理
	var likes []entities.CommentLike
	require.NoError(t, db.Find(&likes).Error)
	require.Len(t, likes, 1)
	assert.Equal(t, unrelated.ID, likes[0].CommentID)
}

func TestCommentService_ListComments(t *testing.T) {
	db := newTestDB(t)
	svc := newCommentSvc(t, db)
	ctx := context.Background()
	author := seedUser(t, db, enums.RoleUser)

	post := seedPost(t, db, author.ID, enums.PostStatusPublished)
	root1 := seedComment(t, db, author.ID, post.ID, nil)
	root2 := seedComment(t, db, author.ID, post.ID, nil)
	seedComment(t, db, author.ID, post.ID, &root1.ID)
	seedComment(t, db, author.ID, post.ID, &root1.ID)

	// 根评论列表带 reply_count
	list, err := svc.ListComments(ctx, post.ID, &dto.CommentListQuery{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, list.Total)
	byID := make(map[uint64]int64)
	for _, c := range list.Comments {
		byID[c.ID] = c.ReplyCount
	}
	assert.EqualValues(t, 2, byID[root1.ID])
	assert.EqualValues(t, 0, byID[root2.ID])

	// 回复列表
	list, err = svc.ListComments(ctx, post.ID, &dto.CommentListQuery{Page: 1, PageSize: 10, ParentID: &root1.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, list.Total)

	// 帖子必须存在
	_, err = svc.ListComments(ctx, 9999, &dto.CommentListQuery{Page: 1, PageSize: 10})
	assert.ErrorIs(t, err, myErrors.ErrPostNotFound)

	// 父评论属于其他帖子
	otherPost := seedPost(t, db, author.ID, enums.PostStatusPublished)
	_, err = svc.ListComments(ctx, otherPost.ID, &dto.CommentListQuery{Page: 1, PageSize: 10, ParentID: &root1.ID})
	assert.ErrorIs(t, err, myErrors.ErrParentPostMismatch)
}

func TestCommentService_GetCommentStats(t *testing.T) {
	db := newTestDB(t)
	svc := newCommentSvc(t, db)
	ctx := context.Background()
	author := seedUser(t, db, enums.RoleUser)
	active := seedUser(t, db, enums.RoleUser)
	liker := seedUser(t, db, enums.RoleUser)

	post := seedPost(t, db, author.ID, enums.PostStatusPublished)
	root1 := seedComment(t, db, active.ID, post.ID, nil)
	root2 := seedComment(t, db, active.ID, post.ID, nil)
	seedComment(t, db, active.ID, post.ID, &root1.ID)
	seedComment(t, db, author.ID, post.ID, &root1.ID)

	require.NoError(t, svc.LikeComment(ctx, liker, root2.ID))

	stats, err := svc.GetCommentStats(ctx, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 4, stats.TotalComments)
	assert.EqualValues(t, 2, stats.TotalRootComments)
	assert.EqualValues(t, 2, stats.TotalReplies)
	assert.EqualValues(t, 1, stats.TotalLikes)

	// 24 个小时桶全部存在，计数合计等于评论总数
	require.Len(t, stats.CommentsByHour, 24)
	var hourSum int64
	for _, c := range stats.CommentsByHour {
		hourSum += c
	}
	assert.EqualValues(t, 4, hourSum)

	// 最活跃评论者按评论数降序
	require.NotEmpty(t, stats.MostActiveCommenters)
	assert.Equal(t, active.ID, stats.MostActiveCommenters[0].AuthorID)
	assert.EqualValues(t, 3, stats.MostActiveCommenters[0].Count)

	// 点赞最多的评论排最前
	require.NotEmpty(t, stats.MostLiked)
	assert.Equal(t, root2.ID, stats.MostLiked[0].ID)

	// 被回复最多的评论
	require.NotEmpty(t, stats.MostReplied)
	assert.Equal(t, root1.ID, stats.MostReplied[0].ID)
	assert.EqualValues(t, 2, stats.MostReplied[0].ReplyCount)
}
