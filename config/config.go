// Package config 从环境变量、.env 与可选配置文件读取服务配置。
// 页面几何与排版不属于配置，它们由 layout 包固定。
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix 是环境变量前缀，例如 BYTECV_LISTEN_ADDR。
const EnvPrefix = "BYTECV"

// Config holds application configuration
type Config struct {
	Server  ServerConfig
	Log     LogConfig
	Store   StoreConfig
	Redis   RedisConfig
	Mongo   MongoConfig
	MinIO   MinIOConfig
	Session SessionConfig
}

type ServerConfig struct {
	ListenAddr     string
	RateLimitRPS   float64
	RateLimitBurst int
}

type LogConfig struct {
	Level  string
	Format string
}

// StoreConfig 选择持久化实现：file、redis 或 mongo。
type StoreConfig struct {
	Kind string
	Dir  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type MongoConfig struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

// MinIOConfig 为空 Endpoint 时不启用发布。
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	URLTTL    time.Duration
}

type SessionConfig struct {
	AutosaveDelay time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("store", "file")
	v.SetDefault("store_dir", ".bytecv")
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("mongo_uri", "")
	v.SetDefault("mongo_database", "bytecv")
	v.SetDefault("mongo_collection", "resumes")
	v.SetDefault("mongo_timeout", "10s")
	v.SetDefault("autosave_delay", "2s")
	v.SetDefault("rate_limit_rps", 20)
	v.SetDefault("rate_limit_burst", 40)
	v.SetDefault("minio_endpoint", "")
	v.SetDefault("minio_access_key", "")
	v.SetDefault("minio_secret_key", "")
	v.SetDefault("minio_bucket", "bytecv-exports")
	v.SetDefault("minio_use_ssl", false)
	v.SetDefault("export_url_ttl", "15m")
}

// Load 读取配置。path 为空时只使用默认值、.env 与环境变量；否则额外读取该文件（yaml/json/toml）。
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("读取配置文件 %s 失败: %w", path, err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			ListenAddr:     v.GetString("listen_addr"),
			RateLimitRPS:   v.GetFloat64("rate_limit_rps"),
			RateLimitBurst: v.GetInt("rate_limit_burst"),
		},
		Log: LogConfig{
			Level:  v.GetString("log_level"),
			Format: v.GetString("log_format"),
		},
		Store: StoreConfig{
			Kind: strings.ToLower(strings.TrimSpace(v.GetString("store"))),
			Dir:  v.GetString("store_dir"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis_addr"),
			Password: v.GetString("redis_password"),
			DB:       v.GetInt("redis_db"),
		},
		Mongo: MongoConfig{
			URI:        v.GetString("mongo_uri"),
			Database:   v.GetString("mongo_database"),
			Collection: v.GetString("mongo_collection"),
			Timeout:    v.GetDuration("mongo_timeout"),
		},
		MinIO: MinIOConfig{
			Endpoint:  v.GetString("minio_endpoint"),
			AccessKey: v.GetString("minio_access_key"),
			SecretKey: v.GetString("minio_secret_key"),
			Bucket:    v.GetString("minio_bucket"),
			UseSSL:    v.GetBool("minio_use_ssl"),
			URLTTL:    v.GetDuration("export_url_ttl"),
		},
		Session: SessionConfig{
			AutosaveDelay: v.GetDuration("autosave_delay"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 检查互相依赖的配置项。
func (c *Config) Validate() error {
	switch c.Store.Kind {
	case "file":
		if c.Store.Dir == "" {
			return fmt.Errorf("store=file 需要 store_dir")
		}
	case "redis":
		if c.Redis.Addr == "" {
			return fmt.Errorf("store=redis 需要 redis_addr")
		}
	case "mongo":
		if c.Mongo.URI == "" {
			return fmt.Errorf("store=mongo 需要 mongo_uri")
		}
	default:
		return fmt.Errorf("未知的 store 类型 %q", c.Store.Kind)
	}
	if c.Server.RateLimitRPS <= 0 || c.Server.RateLimitBurst <= 0 {
		return fmt.Errorf("rate_limit_rps 与 rate_limit_burst 必须为正数")
	}
	return nil
}
