package constant

// 服务标识，用于追踪与日志。
const (
	ServiceName    = "blog_service"
	ServiceVersion = "1.0.0"
)

// SyncViewCountInterval 浏览量回写 MySQL 的 cron 表达式（分钟级精度）。
const SyncViewCountInterval = "*/5 * * * *"

// COSObjectKeyPrefixFeaturedImages 帖子头图在 COS 中的对象键前缀。
const COSObjectKeyPrefixFeaturedImages = "blog/featured/"
