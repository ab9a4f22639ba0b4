package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config wisefido-fields（自定义字段服务）配置
type Config struct {
	HTTP struct {
		Addr string
	}

	// DBEnabled=false 时回退到内存仓储（本地开发用）
	DBEnabled bool
	Database  DatabaseConfig

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	// Cache 各聚合的 TTL 与单次操作超时
	Cache struct {
		CompanyTTL   time.Duration // company:<id>
		FieldsTTL    time.Duration // custom-fields:active/all:<companyID>
		UserStateTTL time.Duration // user_state:<userID>
		OpTimeout    time.Duration
	}

	// Billing 订阅/套餐查询的外部计费服务（可选；配置后替代 DB 查询）
	Billing struct {
		Enabled bool
		BaseURL string
		APIKey  string
	}

	Log struct {
		Level  string
		Format string
	}
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// Load 从环境变量加载配置
func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	cfg.DBEnabled = getEnv("DB_ENABLED", "true") == "true"
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "fields")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = parseInt(getEnv("REDIS_DB", "0"), 0)

	cfg.Cache.CompanyTTL = parseSeconds(getEnv("CACHE_COMPANY_TTL", "300"), 300)
	cfg.Cache.FieldsTTL = parseSeconds(getEnv("CACHE_FIELDS_TTL", "300"), 300)
	cfg.Cache.UserStateTTL = parseSeconds(getEnv("CACHE_USER_STATE_TTL", "120"), 120)
	cfg.Cache.OpTimeout = parseSeconds(getEnv("CACHE_OP_TIMEOUT", "2"), 2)

	cfg.Billing.Enabled = getEnv("BILLING_ENABLED", "false") == "true"
	cfg.Billing.BaseURL = getEnv("BILLING_BASE_URL", "")
	cfg.Billing.APIKey = getEnv("BILLING_API_KEY", "")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func parseSeconds(s string, def int) time.Duration {
	return time.Duration(parseInt(s, def)) * time.Second
}
