package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	JWT      JWTConfig
	Database DatabaseConfig
	Log      LogConfig
	Activity ActivityConfig
	Archive  ArchiveConfig
}

type AppConfig struct {
	Name         string
	Env          string `validate:"oneof=dev test prod"`
	Host         string
	Port         int `validate:"min=1,max=65535"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
	IdleTimeout  int `mapstructure:"idle_timeout"`
	// 允许跨域的来源，为空时允许所有来源
	AllowOrigins []string `mapstructure:"allow_origins"`
}

type JWTConfig struct {
	SecretKey string `mapstructure:"secret_key" validate:"required"`
	ExpiresIn int    `mapstructure:"expires_in"`
	Issuer    string
}

type DatabaseConfig struct {
	Driver          string `validate:"oneof=postgres"`
	Host            string
	Port            int
	Username        string
	Password        string
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string `mapstructure:"migrations_dir"`
}

type LogConfig struct {
	Level      string
	Format     string
	Output     string `validate:"omitempty,oneof=stdout file both"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"` // 单个日志文件最大MB
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // 天
	Compress   bool
}

// ActivityConfig 操作日志（审计）配置
type ActivityConfig struct {
	Actions        []string `mapstructure:"actions"`
	LogGetRequests bool     `mapstructure:"log_get_requests"`
	ExcludePaths   []string `mapstructure:"exclude_paths"`
	Workers        int      `mapstructure:"workers" validate:"min=1"`
	QueueSize      int      `mapstructure:"queue_size" validate:"min=1"`
	MaxBodyBytes   int64    `mapstructure:"max_body_bytes" validate:"min=0"`
	RetentionDays  int      `mapstructure:"retention_days" validate:"min=0"`
}

// ArchiveConfig 日志清理前的归档存储配置
type ArchiveConfig struct {
	Enabled         bool
	Type            string `validate:"omitempty,oneof=aws_s3 aliyun_oss"`
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
}

var globalConfig *Config

// 默认审计配置：仅记录写操作，排除健康检查和日志查询接口本身
var (
	DefaultActivityActions      = []string{"POST", "PUT", "PATCH", "DELETE"}
	DefaultActivityExcludePaths = []string{"/api/health", "/api/activity-logs"}
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "bluemoon")
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.read_timeout", 15)
	v.SetDefault("app.write_timeout", 15)
	v.SetDefault("app.idle_timeout", 60)

	// 没有默认值的键也需要注册，否则 Unmarshal 读不到对应的环境变量
	for _, key := range []string{
		"jwt.secret_key",
		"database.username", "database.password", "database.dbname",
		"log.file_path",
		"archive.type", "archive.bucket", "archive.prefix",
		"archive.region", "archive.endpoint", "archive.access_key_id", "archive.access_key_secret",
	} {
		v.SetDefault(key, "")
	}
	v.SetDefault("archive.enabled", false)
	v.SetDefault("log.compress", false)

	v.SetDefault("jwt.expires_in", 3600)
	v.SetDefault("jwt.issuer", "bluemoon")

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.conn_max_lifetime", 3600)
	v.SetDefault("database.migrations_dir", "migrations")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age", 30)

	v.SetDefault("activity.actions", DefaultActivityActions)
	v.SetDefault("activity.log_get_requests", false)
	v.SetDefault("activity.exclude_paths", DefaultActivityExcludePaths)
	v.SetDefault("activity.workers", 4)
	v.SetDefault("activity.queue_size", 1024)
	v.SetDefault("activity.max_body_bytes", 64*1024)
	v.SetDefault("activity.retention_days", 90)
}

// LoadConfigWithEnv 根据环境加载配置文件
// 先读取 app.yaml，再合并 app.<env>.yaml；环境变量 BLUEMOON_* 优先级最高
// configPath 可以是目录，也可以是具体的配置文件
func LoadConfigWithEnv(configPath string, env string) (*Config, error) {
	// .env 文件可选
	_ = godotenv.Load()

	if env == "" {
		env = os.Getenv("BLUEMOON_APP_ENV")
	}
	if env == "" {
		env = "dev"
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("BLUEMOON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configFile, err := resolveConfigFile(configPath)
	if err != nil {
		return nil, err
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("读取基本配置文件失败: %w", err)
		}

		envConfigFile := filepath.Join(filepath.Dir(configFile), fmt.Sprintf("app.%s.yaml", env))
		if fileExists(envConfigFile) {
			envViper := viper.New()
			envViper.SetConfigFile(envConfigFile)
			if err := envViper.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("读取环境配置文件失败: %w", err)
			}
			if err := v.MergeConfigMap(envViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("合并环境配置失败: %w", err)
			}
		}
	}

	v.Set("app.env", env)

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	if err := Validate(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Validate 校验配置
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("配置校验失败: %w", err)
	}
	if cfg.Archive.Enabled && (cfg.Archive.Type == "" || cfg.Archive.Bucket == "") {
		return errors.New("配置校验失败: 启用归档时必须指定 archive.type 和 archive.bucket")
	}
	return nil
}

// resolveConfigFile 查找配置文件，找不到时返回空字符串（仅使用默认值和环境变量）
func resolveConfigFile(configPath string) (string, error) {
	candidates := []string{configPath, "./configs", "../configs", "../../configs"}
	for _, path := range candidates {
		if path == "" {
			continue
		}
		if isDir(path) {
			file := filepath.Join(path, "app.yaml")
			if fileExists(file) {
				return file, nil
			}
			continue
		}
		if fileExists(path) {
			return path, nil
		}
		if path == configPath {
			return "", fmt.Errorf("配置文件不存在: %s", path)
		}
	}
	return "", nil
}

// 检查是否是目录
func isDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// 检查文件是否存在
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// GetConfig 获取全局配置
func GetConfig() *Config {
	return globalConfig
}

// SetConfig 替换全局配置，主要用于测试
func SetConfig(cfg *Config) {
	globalConfig = cfg
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.Username, c.Password, c.DBName, c.SSLMode)
}

// GetMigrateURL 获取 golang-migrate 使用的连接地址
func (c *DatabaseConfig) GetMigrateURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Username, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// GetConnMaxLifetime 获取数据库连接最大生命周期
func (c *DatabaseConfig) GetConnMaxLifetime() time.Duration {
	return time.Duration(c.ConnMaxLifetime) * time.Second
}

// GetJWTExpiration 获取 JWT 过期时间
func (c *JWTConfig) GetJWTExpiration() time.Duration {
	return time.Duration(c.ExpiresIn) * time.Second
}

// GetRetention 获取操作日志保留时长，0 表示不自动清理
func (c *ActivityConfig) GetRetention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

func (c *AppConfig) GetReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeout) * time.Second
}

func (c *AppConfig) GetWriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeout) * time.Second
}

func (c *AppConfig) GetIdleTimeout() time.Duration {
	return time.Duration(c.IdleTimeout) * time.Second
}
