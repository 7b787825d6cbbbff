package events

import "time"

// PostEventData 帖子事件的核心载荷，发布与删除事件共用的字段子集。
type PostEventData struct {
	PostID     uint64   `json:"post_id"`
	Title      string   `json:"title"`
	AuthorID   uint64   `json:"author_id"`
	CategoryID *uint64  `json:"category_id,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// PostPublishedEvent 帖子发布事件，在帖子状态首次变为 published 时发出。
type PostPublishedEvent struct {
	EventID   string        `json:"event_id"`
	Timestamp time.Time     `json:"timestamp"`
	Post      PostEventData `json:"post"`
}

// PostDeletedEvent 帖子删除事件，下游据此清理缓存与索引。
type PostDeletedEvent struct {
	EventID   string    `json:"event_id"`
	Timestamp time.Time `json:"timestamp"`
	PostID    uint64    `json:"post_id"`
}
