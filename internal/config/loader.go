package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load reads config.yaml from the default search paths.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile reads the given file, or searches "." and /etc/orderdesk when path is empty.
// Environment variables prefixed with ORDERDESK_ override both.
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/orderdesk/")
	}

	v.SetEnvPrefix("ORDERDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("database.dsn", "ORDERDESK_DATABASE_DSN", "DATABASE_URL"); err != nil {
		return nil, fmt.Errorf("bind env database.dsn: %w", err)
	}
	if err := v.BindEnv("events.rabbitmq.url", "ORDERDESK_EVENTS_RABBITMQ_URL", "RABBITMQ_URL"); err != nil {
		return nil, fmt.Errorf("bind env events.rabbitmq.url: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// 找不到配置文件时只依赖默认值与环境变量。
	}

	if err := loadDotEnv(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 检查互相依赖的配置项。
func (c *Config) Validate() error {
	switch strings.ToLower(c.DB.Driver) {
	case "sqlite", "":
		if strings.TrimSpace(c.DB.Path) == "" {
			return fmt.Errorf("database.path is required for sqlite / sqlite 需要 database.path")
		}
	case "postgres", "postgresql", "pgx":
		if strings.TrimSpace(c.DB.DSN) == "" {
			return fmt.Errorf("database.dsn is required for postgres / postgres 需要 database.dsn")
		}
	default:
		return fmt.Errorf("unsupported database.driver %q / 不支持的数据库驱动", c.DB.Driver)
	}
	if c.Events.RabbitMQ.Enabled && strings.TrimSpace(c.Events.RabbitMQ.URL) == "" {
		return fmt.Errorf("events.rabbitmq.url is required when rabbitmq is enabled / 启用 rabbitmq 时必须配置 url")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", "0.0.0.0:8080")
	v.SetDefault("http.shutdown_timeout", "15s")
	v.SetDefault("http.allowed_origins", []string{"*"})
	v.SetDefault("http.body_limit", 1<<20)
	v.SetDefault("http.rate_limit", 120)
	v.SetDefault("http.rate_window", "1m")
	v.SetDefault("http.slow_threshold", "1s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "data/orderdesk.db")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.connect_retries", 5)
	v.SetDefault("database.connect_timeout", "30s")

	v.SetDefault("auth.signing_key", "change-me")
	v.SetDefault("auth.token_ttl", "12h")
	v.SetDefault("auth.issuer", "orderdesk")
	v.SetDefault("auth.audience", "orderdesk-dashboard")
	v.SetDefault("auth.leeway", "30s")
	v.SetDefault("auth.bcrypt_cost", 12)
	v.SetDefault("auth.login_limit", 10)
	v.SetDefault("auth.login_window", "10m")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", "orderdesk")

	v.SetDefault("analytics.group_by", "name")
	v.SetDefault("analytics.cache_ttl", "1m")

	v.SetDefault("events.websocket", true)
	v.SetDefault("events.rabbitmq.enabled", false)
	v.SetDefault("events.rabbitmq.exchange", "orderdesk.orders")

	v.SetDefault("jobs.analytics_warm", "@every 5m")
	v.SetDefault("jobs.history_prune", "@daily")
	v.SetDefault("jobs.history_retention", "2160h")
	v.SetDefault("jobs.timeout", "2m")
}

func loadDotEnv(v *viper.Viper) error {
	candidates := []string{".", "..", "../.."}
	for _, path := range candidates {
		file := filepath.Clean(filepath.Join(path, ".env"))
		if _, err := os.Stat(file); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("stat .env: %w", err)
		}

		envViper := viper.New()
		envViper.SetConfigFile(file)
		envViper.SetConfigType("env")
		if err := envViper.ReadInConfig(); err != nil {
			return fmt.Errorf("read .env: %w", err)
		}
		bindDotEnv(v, envViper)
	}
	return nil
}

// bindDotEnv maps flat .env keys onto the hierarchical config. A key is skipped
// when the matching ORDERDESK_ variable is present in the real environment.
func bindDotEnv(target *viper.Viper, source *viper.Viper) {
	mappings := map[string]string{
		"HTTP_ADDR":        "http.addr",
		"LOG_LEVEL":        "log.level",
		"LOG_FORMAT":       "log.format",
		"DB_DRIVER":        "database.driver",
		"DB_PATH":          "database.path",
		"DATABASE_URL":     "database.dsn",
		"AUTH_SIGNING_KEY": "auth.signing_key",
		"JWT_SECRET":       "auth.signing_key",
		"RABBITMQ_URL":     "events.rabbitmq.url",
		"METRICS_TOKEN":    "metrics.token",
	}

	for oldKey, newKey := range mappings {
		envName := "ORDERDESK_" + strings.ToUpper(strings.ReplaceAll(newKey, ".", "_"))
		if _, ok := os.LookupEnv(envName); ok {
			continue
		}
		if val := source.GetString(oldKey); val != "" {
			target.Set(newKey, val)
		}
	}
}
