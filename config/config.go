package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用程序配置结构体
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Queue     QueueConfig     `mapstructure:"queue"`
	Log       LogConfig       `mapstructure:"log"`
	Extractor ExtractorConfig `mapstructure:"extractor"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host         string        `mapstructure:"host"`          // 服务器主机
	Port         int           `mapstructure:"port"`          // 服务器端口
	Mode         string        `mapstructure:"mode"`          // 运行模式：debug 或 release
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`  // 读取超时
	WriteTimeout time.Duration `mapstructure:"write_timeout"` // 写入超时
	MaxUploadMB  int           `mapstructure:"max_upload_mb"` // 上传文件大小上限
}

// Addr 监听地址
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StorageConfig 存储配置
type StorageConfig struct {
	Type      string `mapstructure:"type"`     // 存储类型：local 或 minio
	Path      string `mapstructure:"path"`     // 本地存储路径
	Bucket    string `mapstructure:"bucket"`   // MinIO桶名称
	Endpoint  string `mapstructure:"endpoint"` // MinIO端点
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"` // 是否使用SSL
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Type string `mapstructure:"type"` // 数据库类型，目前仅支持sqlite
	DSN  string `mapstructure:"dsn"`  // 数据源名称
}

// CacheConfig 缓存配置
type CacheConfig struct {
	Enable    bool   `mapstructure:"enable"`    // 是否启用缓存
	Type      string `mapstructure:"type"`      // 缓存类型：memory 或 redis
	Address   string `mapstructure:"address"`   // Redis地址
	Password  string `mapstructure:"password"`  // Redis密码
	DB        int    `mapstructure:"db"`        // Redis数据库
	TTL       int    `mapstructure:"ttl"`       // 缓存TTL（秒）
	Namespace string `mapstructure:"namespace"` // 键前缀
}

// QueueConfig 任务队列配置
type QueueConfig struct {
	Enable        bool   `mapstructure:"enable"`         // 是否启用任务队列
	Type          string `mapstructure:"type"`           // 队列类型，目前仅支持redis
	RedisAddr     string `mapstructure:"redis_addr"`     // Redis地址
	RedisPassword string `mapstructure:"redis_password"` // Redis密码
	RedisDB       int    `mapstructure:"redis_db"`       // Redis数据库编号
	Concurrency   int    `mapstructure:"concurrency"`    // 任务处理并发数
	RetryLimit    int    `mapstructure:"retry_limit"`    // 任务最大重试次数
	RetryDelay    int    `mapstructure:"retry_delay"`    // 重试延迟(秒)
	TaskTimeout   int    `mapstructure:"task_timeout"`   // 单个任务超时(秒)
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`        // 日志级别
	File       string `mapstructure:"file"`         // 日志文件，为空时只输出到标准输出
	MaxSizeMB  int    `mapstructure:"max_size_mb"`  // 单个日志文件大小上限
	MaxBackups int    `mapstructure:"max_backups"`  // 保留的旧日志文件数
	MaxAgeDays int    `mapstructure:"max_age_days"` // 旧日志保留天数
	Compress   bool   `mapstructure:"compress"`     // 是否压缩旧日志
}

// ExtractorConfig 题目抽取配置
type ExtractorConfig struct {
	ExportIndent   int `mapstructure:"export_indent"`   // 导出JSON缩进空格数
	ProcessTimeout int `mapstructure:"process_timeout"` // 同步处理超时(秒)
}

// Load 从文件和环境变量加载配置
func Load(configPath string) (*Config, error) {
	// 设置默认配置路径
	if configPath == "" {
		configPath = "config.yaml"
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			log.Printf("Warning: Config file not found at %s, using defaults", configPath)
			// 写出默认配置文件
			if err := os.MkdirAll(filepath.Dir(configPath), 0755); err == nil {
				if err := v.WriteConfigAs(configPath); err != nil {
					log.Printf("Warning: Could not write default config to %s: %v", configPath, err)
				}
			}
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		log.Printf("Using config file: %s", v.ConfigFileUsed())
	}

	return decode(v)
}

// Default 只使用默认值和环境变量的配置
func Default() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	return decode(v)
}

// decode 应用环境变量覆盖后解析到结构体
func decode(v *viper.Viper) (*Config, error) {
	var config Config

	// 支持环境变量覆盖，例如 SERVER_PORT、QUEUE_REDIS_ADDR
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return processEnvironmentVariables(&config), nil
}

// processEnvironmentVariables 展开密钥类配置中的${VAR}
func processEnvironmentVariables(cfg *Config) *Config {
	for _, field := range []*string{
		&cfg.Storage.AccessKey,
		&cfg.Storage.SecretKey,
		&cfg.Cache.Password,
		&cfg.Queue.RedisPassword,
	} {
		*field = expandEnv(*field)
	}
	return cfg
}

// expandEnv 整个值为${VAR}且环境变量非空时替换
func expandEnv(value string) string {
	if !strings.HasPrefix(value, "${") || !strings.HasSuffix(value, "}") {
		return value
	}
	if envVal := os.Getenv(value[2 : len(value)-1]); envVal != "" {
		return envVal
	}
	return value
}

// setDefaults 设置配置的默认值
func setDefaults(v *viper.Viper) {
	// 服务器默认配置
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.max_upload_mb", 50)

	// 存储默认配置
	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.path", "./data/files")
	v.SetDefault("storage.bucket", "question-bank")
	v.SetDefault("storage.use_ssl", false)

	// 数据库默认配置
	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.dsn", "data/questions.db")

	// 缓存默认配置
	v.SetDefault("cache.enable", true)
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.ttl", 86400) // 1天
	v.SetDefault("cache.namespace", "qbank")

	// 队列默认配置
	v.SetDefault("queue.enable", false)
	v.SetDefault("queue.type", "redis")
	v.SetDefault("queue.redis_addr", "localhost:6379")
	v.SetDefault("queue.redis_db", 0)
	v.SetDefault("queue.concurrency", 4)
	v.SetDefault("queue.retry_limit", 3)
	v.SetDefault("queue.retry_delay", 30)
	v.SetDefault("queue.task_timeout", 600)

	// 日志默认配置
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)

	// 抽取默认配置
	v.SetDefault("extractor.export_indent", 4)
	v.SetDefault("extractor.process_timeout", 300)
}
