package entities

// CommentLike 评论点赞关系实体
// - 表名: comment_likes
// - (user_id, comment_id) 联合唯一：一个用户对一条评论至多点赞一次，
//   行存在即表示当前点赞中。
type CommentLike struct {
	BaseModel

	UserID    uint64 `gorm:"not null;uniqueIndex:uk_comment_likes_user_comment"`
	CommentID uint64 `gorm:"not null;uniqueIndex:uk_comment_likes_user_comment;index"`
}
