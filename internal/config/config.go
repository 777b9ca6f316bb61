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

const envPrefix = "CHARFORGE"

// Configはアプリ全体の設定
type Config struct {
	Env string // dev/prod

	Server       ServerConfig
	Database     DatabaseConfig
	JWT          JWTConfig
	Log          LogConfig
	SMTP         SMTPConfig
	Notification NotificationConfig
	Redis        RedisConfig
	Paging       PagingConfig
	App          AppConfig
	Contact      ContactConfig
}

type ServerConfig struct {
	Port string // サーバーポート（8080）
}

type DatabaseConfig struct {
	URL      string // 指定があれば最優先
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN はpostgresの接続文字列
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

type JWTConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
}

// 通知の送り方
const (
	NotificationModeSMTP  = "smtp"
	NotificationModeRedis = "redis"
	NotificationModeLog   = "log"
)

type NotificationConfig struct {
	Mode string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string // 通知キューのキー
}

type PagingConfig struct {
	MaxPage  int
	PageSize int
}

type AppConfig struct {
	BaseURL string // メール本文のリンク先
}

type ContactConfig struct {
	Inbox string // 問い合わせの送信先
}

func (c Config) IsDevelopment() bool {
	return c.Env == "" || c.Env == "dev"
}

// Load は .env → config.yaml（任意）→ 環境変数 の順で読む。後のものが優先。
// 環境変数は CHARFORGE_ 接頭辞、キーの "." は "_"（例: CHARFORGE_DATABASE_HOST）。
func Load() (Config, error) {
	// .envは無くてもよい
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigType("yaml")
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")
	v.SetDefault("server.port", "8080")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "charforge")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("jwt.access_ttl", "15m")
	v.SetDefault("jwt.refresh_ttl", "720h")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.from_name", "Charforge")
	v.SetDefault("notification.mode", NotificationModeLog)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.channel", "charforge:notifications")
	v.SetDefault("paging.max_page", 1000)
	v.SetDefault("paging.page_size", 20)
	v.SetDefault("app.base_url", "http://localhost:3000")
}

func fromViper(v *viper.Viper) Config {
	return Config{
		Env: v.GetString("env"),
		Server: ServerConfig{
			Port: v.GetString("server.port"),
		},
		Database: DatabaseConfig{
			URL:      v.GetString("database.url"),
			Host:     v.GetString("database.host"),
			Port:     v.GetInt("database.port"),
			User:     v.GetString("database.user"),
			Password: v.GetString("database.password"),
			Name:     v.GetString("database.name"),
			SSLMode:  v.GetString("database.sslmode"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("jwt.secret"),
			AccessTTL:  v.GetDuration("jwt.access_ttl"),
			RefreshTTL: v.GetDuration("jwt.refresh_ttl"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		SMTP: SMTPConfig{
			Host:     v.GetString("smtp.host"),
			Port:     v.GetInt("smtp.port"),
			User:     v.GetString("smtp.user"),
			Password: v.GetString("smtp.password"),
			From:     v.GetString("smtp.from"),
			FromName: v.GetString("smtp.from_name"),
		},
		Notification: NotificationConfig{
			Mode: strings.ToLower(v.GetString("notification.mode")),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			Channel:  v.GetString("redis.channel"),
		},
		Paging: PagingConfig{
			MaxPage:  v.GetInt("paging.max_page"),
			PageSize: v.GetInt("paging.page_size"),
		},
		App: AppConfig{
			BaseURL: v.GetString("app.base_url"),
		},
		Contact: ContactConfig{
			Inbox: v.GetString("contact.inbox"),
		},
	}
}

// 必須チェック
func (c Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.URL == "" && (c.Database.Host == "" || c.Database.Name == "") {
		return fmt.Errorf("database.url or database.host/name is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required")
	}
	if c.Paging.MaxPage < 1 || c.Paging.PageSize < 1 {
		return fmt.Errorf("paging.max_page and paging.page_size must be positive")
	}

	switch c.Notification.Mode {
	case NotificationModeLog:
	case NotificationModeSMTP, NotificationModeRedis:
		// redisモードでもワーカーはSMTPで配送する
		if c.SMTP.Host == "" || c.SMTP.From == "" {
			return fmt.Errorf("smtp.host and smtp.from are required for notification.mode=%s", c.Notification.Mode)
		}
		if c.Notification.Mode == NotificationModeRedis && c.Redis.Addr == "" {
			return fmt.Errorf("redis.addr is required for notification.mode=redis")
		}
	default:
		return fmt.Errorf("notification.mode must be one of smtp, redis, log")
	}
	if c.Contact.Inbox == "" && c.Notification.Mode != NotificationModeLog {
		return fmt.Errorf("contact.inbox is required")
	}
	return nil
}
