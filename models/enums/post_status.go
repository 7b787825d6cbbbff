package enums

// PostStatus 帖子生命周期状态。
// - draft: 草稿，仅作者与管理员可见
// - published: 已发布，公开可见
// - archived: 已归档，列表层面视为终态，但不做物理删除
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
	PostStatusArchived  PostStatus = "archived"
)

// Valid 校验状态枚举值是否合法。
func (s PostStatus) Valid() bool {
	switch s {
	case PostStatusDraft, PostStatusPublished, PostStatusArchived:
		return true
	}
	return false
}
