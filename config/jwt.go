package config

// JWTConfig 访问令牌签发与校验配置。
type JWTConfig struct {
	// SecretKey HS256 签名密钥，必填
	SecretKey string `mapstructure:"secret_key" json:"secret_key" yaml:"secret_key"`
	// Issuer 写入 iss claim
	Issuer string `mapstructure:"issuer" json:"issuer" yaml:"issuer"`
	// ExpireMinutes 令牌有效期（分钟），0 时取默认 60
	ExpireMinutes int `mapstructure:"expire_minutes" json:"expire_minutes" yaml:"expire_minutes"`
}
