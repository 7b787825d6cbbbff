package constant

import "time"

// Redis Key 相关常量
const (
	// PostViewCountPrefix 帖子浏览量计数器的 Key 前缀。
	// 示例 Key: "blog_post_view_count:123"，类型 String，值为增量计数。
	PostViewCountPrefix = "blog_post_view_count:"

	// PostViewBloomPrefix 帖子浏览防刷 Bloom Filter 的 Key 前缀。
	// 每个帖子一个过滤器，记录 TTL 窗口内浏览过的用户。
	PostViewBloomPrefix = "blog_post_view_bloom:"

	// PostsRankKey 全局帖子浏览量排行榜 (ZSet)，成员为帖子 ID，分数为浏览量。
	PostsRankKey = "blog_post_rank"
)

// Bloom Filter 默认参数
const (
	BloomFilterDefaultSize      int64   = 100000
	BloomFilterDefaultErrorRate float64 = 0.01
	// BloomViewTTL 防刷窗口：同一用户在该窗口内的重复浏览只计一次。
	BloomViewTTL time.Duration = 12 * time.Hour
)
