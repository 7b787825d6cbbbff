package vo

import (
	"time"

	"github.com/Xushengqwer/blog_service/models/entities"
)

// CommentVO 评论响应数据
type CommentVO struct {
	ID         uint64    `json:"id"`
	Content    string    `json:"content"`
	AuthorID   uint64    `json:"author_id"`
	PostID     uint64    `json:"post_id"`
	ParentID   *uint64   `json:"parent_id"`
	IsEdited   bool      `json:"is_edited"`
	LikeCount  int64     `json:"like_count"`
	ReplyCount int64     `json:"reply_count"` // 派生字段：直接回复数
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CommentListVO 评论分页列表响应
type CommentListVO struct {
	Comments []*CommentVO `json:"comments"`
	Total    int64        `json:"total"`
}

// CommenterCountVO 评论者及其评论数
type CommenterCountVO struct {
	AuthorID uint64 `json:"author_id"`
	Count    int64  `json:"count"`
}

// CommentStatsVO 评论统计总览
type CommentStatsVO struct {
	TotalComments        int64              `json:"total_comments"`
	TotalRootComments    int64              `json:"total_root_comments"`
	TotalReplies         int64              `json:"total_replies"`
	TotalLikes           int64              `json:"total_likes"`
	CommentsByHour       map[int]int64      `json:"comments_by_hour"` // 0-23 全部小时都有键
	MostActiveCommenters []CommenterCountVO `json:"most_active_commenters"`
	MostLiked            []*CommentVO       `json:"most_liked"`
	MostReplied          []*CommentVO       `json:"most_replied"`
}

// MapCommentToVO 将评论实体转换为响应 VO，reply_count 由调用方提供。
func MapCommentToVO(c *entities.Comment, replyCount int64) *CommentVO {
	if c == nil {
		return nil
	}
	return &CommentVO{
		ID:         c.ID,
		Content:    c.Content,
		AuthorID:   c.AuthorID,
		PostID:     c.PostID,
		ParentID:   c.ParentID,
		IsEdited:   c.IsEdited,
		LikeCount:  c.LikeCount,
		ReplyCount: replyCount,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

// MapCommentsToVOs 批量转换评论实体，回复数从 replyCounts 映射中取（缺省为 0）。
func MapCommentsToVOs(comments []*entities.Comment, replyCounts map[uint64]int64) []*CommentVO {
	vos := make([]*CommentVO, 0, len(comments))
	for _, c := range comments {
		if c == nil {
			continue
		}
		vos = append(vos, MapCommentToVO(c, replyCounts[c.ID]))
	}
	return vos
}
