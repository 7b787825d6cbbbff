package entities

// Comment 评论实体，按帖子组织、支持一层回复
// - 表名: comments
// - ParentID 为 nil 表示根评论；为回复时，父评论必须属于同一帖子
//   （ParentPostMismatch 由服务层校验）。
// - LikeCount 由 comment_likes 行派生维护：插入/删除点赞行与计数增减
//   在同一事务内完成，计数下限为 0。
// - reply_count 是读取时计算的派生字段，不在此持久化。
type Comment struct {
	BaseModel

	// 评论内容，1~1000 字符（DTO 层校验）
	Content string `gorm:"type:varchar(1000);not null"`

	// 作者 ID，引用 users.id
	AuthorID uint64 `gorm:"not null;index"`

	// 所属帖子 ID，引用 posts.id
	PostID uint64 `gorm:"not null;index"`

	// 父评论 ID，可为 NULL，自引用 comments.id
	ParentID *uint64 `gorm:"index"`

	// 是否被编辑过。一经编辑不再回退。
	IsEdited bool `gorm:"not null;default:false"`

	// 点赞数，非负
	LikeCount int64 `gorm:"not null;default:0"`
}
