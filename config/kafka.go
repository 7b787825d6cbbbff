package config

// KafkaConfig Kafka 生产者配置。Brokers 为空时不初始化生产者，事件静默跳过。
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers" json:"brokers" yaml:"brokers"`
	Topics  Topics   `mapstructure:"topics" json:"topics" yaml:"topics"`
}

// Topics 本服务对外发布的主题。
type Topics struct {
	PostPublished string `mapstructure:"postPublished" yaml:"postPublished"` // 帖子发布主题，供搜索/信息流消费
	PostDeleted   string `mapstructure:"postDeleted" yaml:"postDeleted"`     // 帖子删除主题
}
