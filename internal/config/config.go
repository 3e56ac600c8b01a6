package config

import (
	"log/slog"
	"time"
)

// Config 汇总应用的全部配置。
type Config struct {
	HTTP      HTTPConfig      `mapstructure:"http"`
	Log       LogConfig       `mapstructure:"log"`
	DB        DBConfig        `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Events    EventsConfig    `mapstructure:"events"`
	Jobs      JobsConfig      `mapstructure:"jobs"`
}

// HTTPConfig 定义 HTTP 服务配置。
type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	BodyLimit       int64         `mapstructure:"body_limit"`
	RateLimit       int           `mapstructure:"rate_limit"`
	RateWindow      time.Duration `mapstructure:"rate_window"`
	SlowThreshold   time.Duration `mapstructure:"slow_threshold"`
}

// LogConfig 定义日志配置。
type LogConfig struct {
	Level     string `mapstructure:"level"`
	Format    string `mapstructure:"format"`
	AddSource bool   `mapstructure:"add_source"`
}

// DBConfig 定义数据库配置。Driver 为 sqlite 时使用 Path，为 postgres 时使用 DSN。
type DBConfig struct {
	Driver         string        `mapstructure:"driver"`
	Path           string        `mapstructure:"path"`
	DSN            string        `mapstructure:"dsn"`
	MaxConns       int32         `mapstructure:"max_conns"`
	ConnectRetries uint64        `mapstructure:"connect_retries"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// AuthConfig 定义认证配置。
type AuthConfig struct {
	SigningKey  string        `mapstructure:"signing_key"`
	TokenTTL    time.Duration `mapstructure:"token_ttl"`
	Issuer      string        `mapstructure:"issuer"`
	Audience    string        `mapstructure:"audience"`
	Leeway      time.Duration `mapstructure:"leeway"`
	BcryptCost  int           `mapstructure:"bcrypt_cost"`
	LoginLimit  int           `mapstructure:"login_limit"`
	LoginWindow time.Duration `mapstructure:"login_window"`
}

// MetricsConfig 定义 Prometheus 指标配置。
type MetricsConfig struct {
	Enabled   bool      `mapstructure:"enabled"`
	Namespace string    `mapstructure:"namespace"`
	Subsystem string    `mapstructure:"subsystem"`
	Token     string    `mapstructure:"token"`
	Buckets   []float64 `mapstructure:"buckets"`
}

// AnalyticsConfig 定义排行榜的聚合方式与缓存时间。
type AnalyticsConfig struct {
	GroupBy  string        `mapstructure:"group_by"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// EventsConfig 定义状态变更事件的推送渠道。
type EventsConfig struct {
	WebSocket bool           `mapstructure:"websocket"`
	RabbitMQ  RabbitMQConfig `mapstructure:"rabbitmq"`
}

// RabbitMQConfig 定义消息队列连接。
type RabbitMQConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

// JobsConfig 定义后台任务的 cron 表达式。空字符串表示禁用。
type JobsConfig struct {
	AnalyticsWarm    string        `mapstructure:"analytics_warm"`
	HistoryPrune     string        `mapstructure:"history_prune"`
	HistoryRetention time.Duration `mapstructure:"history_retention"`
	Timeout          time.Duration `mapstructure:"timeout"`
}

func (c LogConfig) SlogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
