package mysql

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Xushengqwer/blog_service/models/entities"
)

func seedCommentFixture(t *testing.T, db *gorm.DB) (postID uint64, authorID uint64) {
	t.Helper()
	user := &entities.User{
		Email:          "repo_test@example.com",
		Username:       "repo_tester",
		HashedPassword: "irrelevant",
		IsActive:       true,
	}
	require.NoError(t, db.Create(user).Error)
	post := &entities.Post{
		Title:         "fixture",
		Content:       "content",
		AuthorID:      user.ID,
		AllowComments: true,
	}
	require.NoError(t, db.Create(post).Error)
	return post.ID, user.ID
}

func TestCommentRepository_LikeCountClampsAtZero(t *testing.T) {
	db := newTestDB(t)
	repo := NewCommentRepository(db, newTestLogger(t))
	ctx := context.Background()

	postID, authorID := seedCommentFixture(t, db)
	comment := &entities.Comment{Content: "hello", AuthorID: authorID, PostID: postID}
	require.NoError(t, repo.CreateComment(ctx, comment))

	// 计数为 0 时减一不得变负
	require.NoError(t, repo.DecrementLikeCount(ctx, db, comment.ID))
	got, err := repo.GetCommentByID(ctx, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.LikeCount)

	require.NoError(t, repo.IncrementLikeCount(ctx, db, comment.ID))
	require.NoError(t, repo.IncrementLikeCount(ctx, db, comment.ID))
	require.NoError(t, repo.DecrementLikeCount(ctx, db, comment.ID))
	got, err = repo.GetCommentByID(ctx, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.LikeCount)
}

func TestCommentRepository_ListOrderingAndCounts(t *testing.T) {
	db := newTestDB(t)
	repo := NewCommentRepository(db, newTestLogger(t))
	ctx := context.Background()

	postID, authorID := seedCommentFixture(t, db)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// 故意乱序插入根评论，列表必须按创建时间升序返回
	newComment := func(content string, offsetMin int, parentID *uint64) *entities.Comment {
		c := &entities.Comment{Content: content, AuthorID: authorID, PostID: postID, ParentID: parentID}
		c.CreatedAt = base.Add(time.Duration(offsetMin) * time.Minute)
		require.NoError(t, db.Create(c).Error)
		return c
	}
	third := newComment("third", 30, nil)
	first := newComment("first", 10, nil)
	second := newComment("second", 20, nil)

	roots, total, err := repo.ListRootComments(ctx, postID, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, roots, 3)
	assert.Equal(t, first.ID, roots[0].ID)
	assert.Equal(t, second.ID, roots[1].ID)
	assert.Equal(t, third.ID, roots[2].ID)

	// 分页不影响总数
	page, total, err := repo.ListRootComments(ctx, postID, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page, 1)
	assert.Equal(t, second.ID, page[0].ID)

	// 回复列表只含指定父评论的直接回复，同样升序
	replyB := newComment("reply b", 50, &first.ID)
	replyA := newComment("reply a", 40, &first.ID)
	newComment("other reply", 45, &second.ID)

	replies, total, err := repo.ListReplies(ctx, first.ID, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, replies, 2)
	assert.Equal(t, replyA.ID, replies[0].ID)
	assert.Equal(t, replyB.ID, replies[1].ID)

	// 回复不计入根评论列表
	_, total, err = repo.ListRootComments(ctx, postID, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	counts, err := repo.ReplyCounts(ctx, []uint64{first.ID, second.ID, third.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[first.ID])
	assert.Equal(t, int64(1), counts[second.ID])
	assert.Zero(t, counts[third.ID])
}

func TestCommentLikeRepository_DuplicateLikeTranslated(t *testing.T) {
	db := newTestDB(t)
	commentRepo := NewCommentRepository(db, newTestLogger(t))
	likeRepo := NewCommentLikeRepository(db, newTestLogger(t))
	ctx := context.Background()

	postID, authorID := seedCommentFixture(t, db)
	comment := &entities.Comment{Content: "hello", AuthorID: authorID, PostID: postID}
	require.NoError(t, commentRepo.CreateComment(ctx, comment))

	require.NoError(t, likeRepo.CreateLike(ctx, db, &entities.CommentLike{UserID: authorID, CommentID: comment.ID}))

	// 唯一索引冲突必须翻译成 gorm.ErrDuplicatedKey，服务层据此返回"已点赞"
	err := likeRepo.CreateLike(ctx, db, &entities.CommentLike{UserID: authorID, CommentID: comment.ID})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestCommentRepository_TopRepliedParentsTiebreak(t *testing.T) {
	db := newTestDB(t)
	repo := NewCommentRepository(db, newTestLogger(t))
	ctx := context.Background()

	postID, authorID := seedCommentFixture(t, db)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	newComment := func(content string, offsetMin int, parentID *uint64) *entities.Comment {
		c := &entities.Comment{Content: content, AuthorID: authorID, PostID: postID, ParentID: parentID}
		c.CreatedAt = base.Add(time.Duration(offsetMin) * time.Minute)
		require.NoError(t, db.Create(c).Error)
		return c
	}

	// later 先插入且创建时间更晚，回复数并列时 earlier 必须排在前面
	later := newComment("later root", 20, nil)
	earlier := newComment("earlier root", 10, nil)
	busiest := newComment("busiest root", 30, nil)
	newComment("r1", 40, &later.ID)
	newComment("r2", 41, &earlier.ID)
	newComment("r3", 42, &busiest.ID)
	newComment("r4", 43, &busiest.ID)

	counts, orderedIDs, err := repo.TopRepliedParents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, orderedIDs, 3)
	assert.Equal(t, busiest.ID, orderedIDs[0])
	assert.Equal(t, earlier.ID, orderedIDs[1])
	assert.Equal(t, later.ID, orderedIDs[2])
	assert.Equal(t, int64(2), counts[busiest.ID])
	assert.Equal(t, int64(1), counts[earlier.ID])
}
