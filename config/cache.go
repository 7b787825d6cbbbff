package config

// RedisConfig Redis 连接配置，目前仅用于帖子浏览量计数与排行。
type RedisConfig struct {
	Address  string `mapstructure:"address" json:"address" yaml:"address"`
	Password string `mapstructure:"password" json:"password" yaml:"password"`
	DB       int    `mapstructure:"db" json:"db" yaml:"db"`
	// PoolSize 连接池大小，0 表示使用 go-redis 默认值
	PoolSize int `mapstructure:"pool_size" json:"pool_size" yaml:"pool_size"`
}

// ViewSyncConfig 浏览量从 Redis 批量回写 MySQL 的任务配置。
type ViewSyncConfig struct {
	// BatchSize 单条批量 UPDATE 语句覆盖的帖子数量
	BatchSize int `mapstructure:"batchSize" json:"batchSize" yaml:"batchSize"`

	// ConcurrencyLevel 并发执行批次更新的 worker 数
	ConcurrencyLevel int `mapstructure:"concurrencyLevel" json:"concurrencyLevel" yaml:"concurrencyLevel"`

	// ScanBatchSize SCAN 浏览量 Key 时传给 COUNT 参数的建议值
	ScanBatchSize int64 `mapstructure:"scanBatchSize" json:"scanBatchSize" yaml:"scanBatchSize"`
}
