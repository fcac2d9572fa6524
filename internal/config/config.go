package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	App       AppConfig       `mapstructure:"app"`
	Backfill  BackfillConfig  `mapstructure:"backfill"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Log       LogConfig       `mapstructure:"log"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ServerConfig HTTP 服务
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release / test
}

// DatabaseConfig 数据库
type DatabaseConfig struct {
	DSN      string `mapstructure:"dsn"`
	LogLevel string `mapstructure:"log_level"`
}

// JWTConfig 认证令牌
type JWTConfig struct {
	Secret    string        `mapstructure:"secret"`
	Issuer    string        `mapstructure:"issuer"`
	AccessTTL time.Duration `mapstructure:"access_ttl"`
}

// AppConfig 业务配置
type AppConfig struct {
	Timezone string `mapstructure:"timezone"`
}

// BackfillConfig 补单（backup order）配置
type BackfillConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Cron            string        `mapstructure:"cron"`
	DefaultShiftID  int64         `mapstructure:"default_shift_id"`
	RequireFullWeek bool          `mapstructure:"require_full_week"`
	Cooldown        time.Duration `mapstructure:"cooldown"`
}

// RateLimitConfig 下单限流
type RateLimitConfig struct {
	OrderPerMinute int `mapstructure:"order_per_minute"`
	OrderBurst     int `mapstructure:"order_burst"`
}

// CacheConfig 角色缓存
type CacheConfig struct {
	RoleTTL      time.Duration `mapstructure:"role_ttl"`
	RoleCapacity int           `mapstructure:"role_capacity"`
}

// LogConfig 日志
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// TelemetryConfig 链路追踪
type TelemetryConfig struct {
	ServiceName  string `mapstructure:"service_name"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	Insecure     bool   `mapstructure:"insecure"`
}

// Load 加载配置
// 优先级：环境变量（CANTEEN_ 前缀）> 配置文件 > 默认值
// path 为空时在当前目录与 ./config 下查找 config.yaml，找不到不报错
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("CANTEEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return errors.New("database.dsn 不能为空")
	}
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret 不能为空")
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("app.timezone 无效: %w", err)
	}
	return nil
}

// Location 业务时区
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")

	v.SetDefault("database.dsn", "host=localhost user=canteen password=canteen dbname=canteen port=5432 sslmode=disable")
	v.SetDefault("database.log_level", "warn")

	v.SetDefault("jwt.secret", "canteen-secret-key-change-in-production")
	v.SetDefault("jwt.issuer", "canteen-order")
	v.SetDefault("jwt.access_ttl", 12*time.Hour)

	v.SetDefault("app.timezone", "Asia/Jakarta")

	v.SetDefault("backfill.enabled", false)
	// 每周六 12:05（订餐截止后）为下周补单
	v.SetDefault("backfill.cron", "0 5 12 * * SAT")
	v.SetDefault("backfill.default_shift_id", 0)
	v.SetDefault("backfill.require_full_week", false)
	v.SetDefault("backfill.cooldown", 2*time.Minute)

	v.SetDefault("ratelimit.order_per_minute", 10)
	v.SetDefault("ratelimit.order_burst", 3)

	v.SetDefault("cache.role_ttl", 10*time.Minute)
	v.SetDefault("cache.role_capacity", 256)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	v.SetDefault("telemetry.service_name", "canteen-order")
	v.SetDefault("telemetry.otlp_endpoint", "")
	v.SetDefault("telemetry.insecure", true)
}
