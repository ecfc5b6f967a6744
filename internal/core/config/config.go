package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host              string   `mapstructure:"host"`
	Port              int      `mapstructure:"port"`
	ReadTimeoutSec    int      `mapstructure:"read_timeout_sec"`
	WriteTimeoutSec   int      `mapstructure:"write_timeout_sec"`
	IdleTimeoutSec    int      `mapstructure:"idle_timeout_sec"`
	RequestTimeoutSec int      `mapstructure:"request_timeout_sec"`
	MaxInFlight       int64    `mapstructure:"max_in_flight"`
	MaxBodyBytes      int64    `mapstructure:"max_body_bytes"`
	CORSOrigins       []string `mapstructure:"cors_origins"` // 为空则允许所有来源
}

type App struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	HTTP HTTP   `mapstructure:"http"`
}

type FileLog struct {
	Enable     bool   `mapstructure:"enable"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

type Log struct {
	Level string  `mapstructure:"level"`
	JSON  bool    `mapstructure:"json"`
	File  FileLog `mapstructure:"file"`
}

type JWT struct {
	Secret            string `mapstructure:"secret"`
	Issuer            string `mapstructure:"issuer"`
	AccessTokenTTLMin int    `mapstructure:"access_token_ttl_min"`
	LeewaySec         int    `mapstructure:"leeway_sec"`
}

type Redis struct {
	Addr           string `mapstructure:"addr"`
	Password       string `mapstructure:"password"`
	DB             int    `mapstructure:"db"`
	IdentityTTLSec int    `mapstructure:"identity_ttl_sec"`
}

type DB struct {
	Driver             string `mapstructure:"driver"`
	DSN                string `mapstructure:"dsn"`
	Username           string `mapstructure:"username"`
	Password           string `mapstructure:"password"`
	MaxOpenConns       int    `mapstructure:"max_open_conns"`
	MaxIdleConns       int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMin int    `mapstructure:"conn_max_lifetime_min"`
	AutoMigrate        bool   `mapstructure:"auto_migrate"`
	LogLevel           string `mapstructure:"log_level"`
}

type Config struct {
	App   App   `mapstructure:"app"`
	Log   Log   `mapstructure:"log"`
	JWT   JWT   `mapstructure:"jwt"`
	DB    DB    `mapstructure:"db"`
	Redis Redis `mapstructure:"redis"`
}

const DefaultPath = "./configs/config.local.yaml"

// 所有 key 都有默认值，APP_ 前缀的环境变量才能覆盖（viper AutomaticEnv 只认识已知 key）
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "NeonTask")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 3001)
	v.SetDefault("app.http.read_timeout_sec", 5)
	v.SetDefault("app.http.write_timeout_sec", 10)
	v.SetDefault("app.http.idle_timeout_sec", 60)
	v.SetDefault("app.http.request_timeout_sec", 10)
	v.SetDefault("app.http.max_in_flight", 300)
	v.SetDefault("app.http.max_body_bytes", 1<<20)
	v.SetDefault("app.http.cors_origins", []string{})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.file.enable", false)
	v.SetDefault("log.file.filename", "logs/neontask.log")
	v.SetDefault("log.file.max_size_mb", 100)
	v.SetDefault("log.file.max_backups", 7)
	v.SetDefault("log.file.max_age_days", 30)
	v.SetDefault("log.file.compress", true)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "neontask")
	v.SetDefault("jwt.access_token_ttl_min", 7*24*60)
	v.SetDefault("jwt.leeway_sec", 60)

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "neontask.db")
	v.SetDefault("db.username", "")
	v.SetDefault("db.password", "")
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime_min", 30)
	v.SetDefault("db.auto_migrate", true)
	v.SetDefault("db.log_level", "warn")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.identity_ttl_sec", 300)
}

// Load 读取 YAML（文件不存在时只用默认值 + 环境变量）
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = DefaultPath
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat config: %w", err)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return errors.New("config: jwt.secret is required (APP_JWT_SECRET)")
	}
	if c.JWT.AccessTokenTTLMin <= 0 {
		return errors.New("config: jwt.access_token_ttl_min must be positive")
	}
	switch c.DB.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("config: unsupported db.driver %q", c.DB.Driver)
	}
	return nil
}
