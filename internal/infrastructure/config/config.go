package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig        `mapstructure:"app"`
	Server      ServerConfig     `mapstructure:"server"`
	LLM         LLMConfig        `mapstructure:"llm"`
	Suggestion  SuggestionConfig `mapstructure:"suggestion"`
	Database    DatabaseConfig   `mapstructure:"database"`
	Cache       CacheConfig      `mapstructure:"cache"`
	Queue       QueueConfig      `mapstructure:"queue"`
	RateLimit   RateLimitConfig  `mapstructure:"rate_limit"`
	DedupWindow time.Duration    `mapstructure:"dedup_window"`
	LogLevel    string           `mapstructure:"log_level"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
	LogDir  string `mapstructure:"log_dir"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

// LLMConfig 模型供應商設定
type LLMConfig struct {
	Provider       string        `mapstructure:"provider"` // anthropic | openrouter
	APIKey         string        `mapstructure:"api_key"`
	BaseURL        string        `mapstructure:"base_url"`
	Model          string        `mapstructure:"model"`
	FallbackModels []string      `mapstructure:"fallback_models"`
	MaxTokens      int           `mapstructure:"max_tokens"`
	Timeout        time.Duration `mapstructure:"timeout"`
	SystemPrompt   string        `mapstructure:"system_prompt"`
}

// SuggestionConfig 推薦流程設定
type SuggestionConfig struct {
	AttemptTimeout time.Duration `mapstructure:"attempt_timeout"`
	RecentDays     int           `mapstructure:"recent_days"`
	DefaultCount   int           `mapstructure:"default_count"`
	SessionTTL     time.Duration `mapstructure:"session_ttl"`
}

// DatabaseConfig 資料庫設定
type DatabaseConfig struct {
	Driver      string `mapstructure:"driver"` // sqlite3 | postgres | mysql
	DSN         string `mapstructure:"dsn"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

// CacheConfig 推薦記憶設定
type CacheConfig struct {
	Backend         string        `mapstructure:"backend"` // memory | redis | none
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	RememberLimit   int           `mapstructure:"remember_limit"`
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
}

// QueueConfig 上游請求隊列設定
type QueueConfig struct {
	Workers int `mapstructure:"workers"`
	MaxSize int `mapstructure:"max_size"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// 加載 .env 文件（不存在時忽略）
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	// 設定環境變數前綴
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定環境變量
	bindEnv(v, "llm.api_key", "LLM_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY")
	bindEnv(v, "llm.provider", "LLM_PROVIDER")
	bindEnv(v, "llm.model", "LLM_MODEL")
	bindEnv(v, "llm.fallback_models", "LLM_FALLBACK_MODELS")
	bindEnv(v, "llm.base_url", "LLM_BASE_URL")
	bindEnv(v, "llm.max_tokens", "MODEL_MAX_TOKENS")
	bindEnv(v, "database.driver", "DATABASE_DRIVER")
	bindEnv(v, "database.dsn", "DATABASE_DSN", "DATABASE_URL")
	bindEnv(v, "cache.backend", "CACHE_BACKEND")
	bindEnv(v, "cache.redis_addr", "REDIS_ADDR")
	bindEnv(v, "cache.redis_password", "REDIS_PASSWORD")
	bindEnv(v, "server.port", "PORT")
	bindEnv(v, "rate_limit.enabled", "RATE_LIMIT_ENABLED")
	bindEnv(v, "rate_limit.requests", "RATE_LIMIT_REQUESTS")
	bindEnv(v, "rate_limit.window", "RATE_LIMIT_WINDOW")
	bindEnv(v, "dedup_window", "DEDUP_WINDOW")
	bindEnv(v, "log_level", "LOG_LEVEL")

	// 解析設定
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.LLM.FallbackModels = splitList(config.LLM.FallbackModels)
	config.Server.AllowedOrigins = splitList(config.Server.AllowedOrigins)

	// 驗證必要設定
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

func bindEnv(v *viper.Viper, key string, envs ...string) {
	_ = v.BindEnv(append([]string{key}, envs...)...)
}

// splitList 環境變數以逗號分隔時展開成多個元素
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "fridge-recipe")
	v.SetDefault("app.log_dir", "logs")

	// 伺服器設定
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "90s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "80s")
	v.SetDefault("server.max_body_bytes", 1<<20) // 1MB
	v.SetDefault("server.allowed_origins", []string{"*"})

	// LLM 設定
	v.SetDefault("llm.provider", "anthropic")
	v.SetDefault("llm.model", "claude-sonnet-4-20250514")
	v.SetDefault("llm.fallback_models", []string{})
	v.SetDefault("llm.max_tokens", 2048)
	v.SetDefault("llm.timeout", "60s")
	v.SetDefault("llm.system_prompt", "")

	// 推薦設定
	v.SetDefault("suggestion.attempt_timeout", "20s")
	v.SetDefault("suggestion.recent_days", 14)
	v.SetDefault("suggestion.default_count", 3)
	v.SetDefault("suggestion.session_ttl", "30m")

	// 資料庫設定
	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.dsn", "fridge.db")
	v.SetDefault("database.auto_migrate", true)

	// 快取設定
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.max_size", 1000)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_interval", "10m")
	v.SetDefault("cache.remember_limit", 20)
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_db", 0)

	// 隊列設定
	v.SetDefault("queue.workers", 4)
	v.SetDefault("queue.max_size", 100)

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "1m")

	v.SetDefault("dedup_window", "5s")
	v.SetDefault("log_level", "info")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	// 驗證伺服器設定
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	switch config.LLM.Provider {
	case "anthropic", "openrouter":
	default:
		return fmt.Errorf("unsupported llm provider %q", config.LLM.Provider)
	}
	if strings.TrimSpace(config.LLM.Model) == "" {
		return fmt.Errorf("llm model is required")
	}
	if config.LLM.MaxTokens <= 0 {
		return fmt.Errorf("invalid llm max tokens")
	}

	if config.Suggestion.AttemptTimeout <= 0 {
		return fmt.Errorf("invalid suggestion attempt timeout")
	}
	if config.Suggestion.RecentDays <= 0 {
		return fmt.Errorf("invalid suggestion recent days")
	}

	switch config.Database.Driver {
	case "sqlite3", "postgres", "mysql":
	default:
		return fmt.Errorf("unsupported database driver %q", config.Database.Driver)
	}
	if config.Database.DSN == "" {
		return fmt.Errorf("database dsn is required")
	}

	// 驗證快取設定
	switch config.Cache.Backend {
	case "memory":
		if config.Cache.MaxSize <= 0 {
			return fmt.Errorf("invalid cache max size")
		}
		if config.Cache.CleanupInterval <= 0 {
			return fmt.Errorf("invalid cache cleanup interval")
		}
	case "redis":
		if config.Cache.RedisAddr == "" {
			return fmt.Errorf("redis address is required")
		}
	case "none":
	default:
		return fmt.Errorf("unsupported cache backend %q", config.Cache.Backend)
	}
	if config.Cache.Backend != "none" && config.Cache.TTL <= 0 {
		return fmt.Errorf("invalid cache ttl")
	}

	// 驗證隊列設定
	if config.Queue.Workers <= 0 {
		return fmt.Errorf("invalid queue workers")
	}
	if config.Queue.MaxSize <= 0 {
		return fmt.Errorf("invalid queue max size")
	}

	return nil
}
