package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置（config.yaml + FLARE_ 前缀环境变量覆盖）
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Sentry     SentryConfig     `mapstructure:"sentry"`
	Trace      TraceConfig      `mapstructure:"trace"`
	Search     SearchConfig     `mapstructure:"search"`
	Conversion ConversionConfig `mapstructure:"conversion"`
	Post       PostConfig       `mapstructure:"post"`
	Queue      QueueConfig      `mapstructure:"queue"`
}

type ServerConfig struct {
	Addr      string  `mapstructure:"addr"`
	Mode      string  `mapstructure:"mode"` // debug / release
	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // sqlite / postgres
	DSN    string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type SentryConfig struct {
	DSN string `mapstructure:"dsn"`
}

type TraceConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// SearchConfig 搜索配置（driver: database / meilisearch）
type SearchConfig struct {
	Driver          string `mapstructure:"driver"`
	DefaultRadiusKm int    `mapstructure:"default_radius_km"`
	PostLimit       int    `mapstructure:"post_limit"`
	EventLimit      int    `mapstructure:"event_limit"`
	MeiliHost       string `mapstructure:"meili_host"`
	MeiliKey        string `mapstructure:"meili_key"`
}

// ConversionConfig 转化阈值（soft: 提示建议; hard: 自动转化，需大于 soft）
type ConversionConfig struct {
	SoftThreshold int `mapstructure:"soft_threshold"`
	HardThreshold int `mapstructure:"hard_threshold"`
}

type PostConfig struct {
	DefaultTTLHours int `mapstructure:"default_ttl_hours"`
}

type QueueConfig struct {
	Workers      int           `mapstructure:"workers"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	MaxAttempts  int           `mapstructure:"max_attempts"`
}

// Load 读取配置：默认值 < config.yaml < 环境变量
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	setDefaults(v)

	v.SetEnvPrefix("FLARE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// 配置文件可选，仅在存在但解析失败时报错
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.rate_limit", 50)
	v.SetDefault("server.rate_burst", 100)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "flare.db")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("jwt.secret", "dev-secret-change-me")
	v.SetDefault("jwt.ttl", 24*time.Hour)

	v.SetDefault("trace.enabled", false)
	v.SetDefault("trace.endpoint", "localhost:4318")

	v.SetDefault("search.driver", "database")
	v.SetDefault("search.default_radius_km", 25)
	v.SetDefault("search.post_limit", 50)
	v.SetDefault("search.event_limit", 50)
	v.SetDefault("search.meili_host", "http://localhost:7700")

	v.SetDefault("conversion.soft_threshold", 5)
	v.SetDefault("conversion.hard_threshold", 10)

	v.SetDefault("post.default_ttl_hours", 48)

	v.SetDefault("queue.workers", 4)
	v.SetDefault("queue.poll_interval", 200*time.Millisecond)
	v.SetDefault("queue.max_attempts", 3)
}

func (c *Config) validate() error {
	if c.Conversion.SoftThreshold < 1 {
		return fmt.Errorf("conversion.soft_threshold must be >= 1, got %d", c.Conversion.SoftThreshold)
	}
	if c.Conversion.HardThreshold <= c.Conversion.SoftThreshold {
		return fmt.Errorf("conversion.hard_threshold (%d) must be greater than soft_threshold (%d)",
			c.Conversion.HardThreshold, c.Conversion.SoftThreshold)
	}
	return nil
}
