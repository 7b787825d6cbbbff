package config

// COSConfig 腾讯云对象存储配置，用于帖子头图上传。
type COSConfig struct {
	SecretID   string `mapstructure:"secret_id" json:"secret_id" yaml:"secret_id"`
	SecretKey  string `mapstructure:"secret_key" json:"secret_key" yaml:"secret_key"`
	BucketName string `mapstructure:"bucket_name" json:"bucket_name" yaml:"bucket_name"`
	AppID      string `mapstructure:"app_id" json:"app_id" yaml:"app_id"`
	Region     string `mapstructure:"region" json:"region" yaml:"region"`
	// BaseURL 公开访问的基础 URL（CDN 或自定义域名），为空时使用标准存储桶 URL
	BaseURL string `mapstructure:"base_url" json:"base_url" yaml:"base_url"`
}
