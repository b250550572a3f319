package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Log         LogConfig         `mapstructure:"log"`
	JWT         JWTConfig         `mapstructure:"jwt"`
	RateLimit   RateLimitConfig   `mapstructure:"ratelimit"`
	Sentry      SentryConfig      `mapstructure:"sentry"`
	Tracing     TracingConfig     `mapstructure:"tracing"`
	Notifier    NotifierConfig    `mapstructure:"notifier"`
	SocialProof SocialProofConfig `mapstructure:"social_proof"`
	Cache       CacheConfig       `mapstructure:"cache"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port" validate:"required,min=1,max=65535"`
	Mode         string        `mapstructure:"mode" validate:"oneof=debug release test"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// SecureCookies marks session cookies Secure; disable only for local http.
	SecureCookies bool `mapstructure:"secure_cookies"`
	// TrustedProxies 允许设置 X-Forwarded-For 的反向代理（IP 或 CIDR），为空时只认对端地址
	TrustedProxies []string `mapstructure:"trusted_proxies" validate:"dive,cidr|ip"`
}

type DatabaseConfig struct {
	Driver       string `mapstructure:"driver" validate:"oneof=sqlite postgres"`
	DSN          string `mapstructure:"dsn" validate:"required"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"min=0"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"min=0"`
	LogLevel     string `mapstructure:"log_level" validate:"oneof=silent error warn info"`
}

// RedisConfig 为空地址时退化为进程内限流
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"min=0"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret" validate:"required,min=16"`
	ExpireHours int    `mapstructure:"expire_hours" validate:"min=1"`
}

// RateLimitConfig 全局 API 节流（与下单限流无关，下单限流参数来自站点设置）
type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps" validate:"gt=0"`
	Burst int     `mapstructure:"burst" validate:"min=1"`
}

type SentryConfig struct {
	DSN         string `mapstructure:"dsn"`
	Environment string `mapstructure:"environment"`
}

type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Endpoint    string  `mapstructure:"endpoint" validate:"required_if=Enabled true"`
	ServiceName string  `mapstructure:"service_name"`
	SampleRatio float64 `mapstructure:"sample_ratio" validate:"min=0,max=1"`
}

type NotifierConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	BatchSize    int           `mapstructure:"batch_size" validate:"min=1"`
	// ClaimLease 认领后超过该时长未完成的事件会被重新认领
	ClaimLease time.Duration `mapstructure:"claim_lease"`
}

type SocialProofConfig struct {
	RecentWindow int `mapstructure:"recent_window" validate:"min=1"`
}

// CacheConfig 前台目录缓存，仅在配置 Redis 时生效
type CacheConfig struct {
	CampaignTTL time.Duration `mapstructure:"campaign_ttl"`
	AddressTTL  time.Duration `mapstructure:"address_ttl"`
}

// Load 加载配置：config.yaml + APP_ 前缀环境变量
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 校验配置字段
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.secure_cookies", false)
	v.SetDefault("server.trusted_proxies", []string{})

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "shop.db")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.log_level", "warn")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("jwt.secret", "change-me-in-production-please")
	v.SetDefault("jwt.expire_hours", 12)

	v.SetDefault("ratelimit.rps", 50)
	v.SetDefault("ratelimit.burst", 100)

	v.SetDefault("sentry.environment", "development")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "campaign-shop")
	v.SetDefault("tracing.sample_ratio", 1.0)

	v.SetDefault("notifier.poll_interval", 2*time.Second)
	v.SetDefault("notifier.batch_size", 100)
	v.SetDefault("notifier.claim_lease", time.Minute)

	v.SetDefault("social_proof.recent_window", 20)

	v.SetDefault("cache.campaign_ttl", 30*time.Second)
	v.SetDefault("cache.address_ttl", 24*time.Hour)
}
