package vo

import (
	"time"

	"github.com/Xushengqwer/blog_service/models/entities"
	"github.com/Xushengqwer/blog_service/models/enums"
)

// PostVO 帖子响应数据
type PostVO struct {
	ID            uint64           `json:"id"`
	Title         string           `json:"title"`
	Content       string           `json:"content"`
	Excerpt       string           `json:"excerpt,omitempty"`
	FeaturedImage string           `json:"featured_image,omitempty"`
	AuthorID      uint64           `json:"author_id"`
	CategoryID    *uint64          `json:"category_id"`
	Status        enums.PostStatus `json:"status"`
	Tags          []string         `json:"tags"`
	ViewCount     int64            `json:"view_count"`
	LikeCount     int64            `json:"like_count"`
	IsFeatured    bool             `json:"is_featured"`
	AllowComments bool             `json:"allow_comments"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// PostListVO 帖子分页列表响应
type PostListVO struct {
	Posts []*PostVO `json:"posts"` // 当前页的帖子列表
	Total int64     `json:"total"` // 符合条件的总记录数（真实 COUNT）
}

// TagCountVO 标签及其出现次数
type TagCountVO struct {
	Tag   string `json:"tag"`
	Count int64  `json:"count"`
}

// PostStatsVO 帖子统计总览
type PostStatsVO struct {
	TotalPosts      int64                      `json:"total_posts"`
	TotalViews      int64                      `json:"total_views"`
	TotalLikes      int64                      `json:"total_likes"`
	TotalComments   int64                      `json:"total_comments"`
	PostsByStatus   map[enums.PostStatus]int64 `json:"posts_by_status"`
	PostsByCategory map[uint64]int64           `json:"posts_by_category"`
	PopularTags     []TagCountVO               `json:"popular_tags"`
}

// MapPostToVO 将帖子实体转换为响应 VO。
func MapPostToVO(p *entities.Post) *PostVO {
	if p == nil {
		return nil
	}
	tags := p.Tags
	if tags == nil {
		tags = []string{} // 返回空数组而不是 null，便于前端处理
	}
	return &PostVO{
		ID:            p.ID,
		Title:         p.Title,
		Content:       p.Content,
		Excerpt:       p.Excerpt,
		FeaturedImage: p.FeaturedImage,
		AuthorID:      p.AuthorID,
		CategoryID:    p.CategoryID,
		Status:        p.Status,
		Tags:          tags,
		ViewCount:     p.ViewCount,
		LikeCount:     p.LikeCount,
		IsFeatured:    p.IsFeatured,
		AllowComments: p.AllowComments,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// MapPostsToVOs 批量转换帖子实体。
func MapPostsToVOs(posts []*entities.Post) []*PostVO {
	vos := make([]*PostVO, 0, len(posts))
	for _, p := range posts {
		if p == nil {
			continue
		}
		vos = append(vos, MapPostToVO(p))
	}
	return vos
}
