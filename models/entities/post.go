package entities

import "github.com/Xushengqwer/blog_service/models/enums"

// Post 博客帖子实体
// - 表名: posts
// - 生命周期: draft -> published -> archived，archived 为列表层面的终态
// - ViewCount 的实时增量走 Redis 计数，由定时任务批量回写本列
type Post struct {
	BaseModel

	// 标题，必填
	Title string `gorm:"type:varchar(255);not null"`

	// 正文，长文本
	Content string `gorm:"type:text;not null"`

	// 摘要，可选，列表页展示用
	Excerpt string `gorm:"type:varchar(500)"`

	// 头图 URL，可选。通过上传接口写入 COS 后保存其公开访问地址。
	FeaturedImage string `gorm:"type:varchar(1023)"`

	// 作者 ID，引用 users.id
	AuthorID uint64 `gorm:"not null;index"`

	// 所属分类 ID，可为 NULL；分类删除时由存储层置空
	CategoryID *uint64 `gorm:"index"`

	// 状态，draft / published / archived
	Status enums.PostStatus `gorm:"type:varchar(16);not null;default:draft;index"`

	// 标签，有序字符串列表，序列化为 JSON 存储
	Tags []string `gorm:"serializer:json"`

	// 浏览量与点赞量，均不允许为负
	ViewCount int64 `gorm:"not null;default:0"`
	LikeCount int64 `gorm:"not null;default:0"`

	// 是否置顶推荐
	IsFeatured bool `gorm:"not null;default:false"`

	// 是否允许评论。为 false 时评论服务拒绝新评论 (CommentsDisabled)。
	AllowComments bool `gorm:"not null;default:true"`
}
