package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 作業ディレクトリの .env / config.yaml を拾わないようにする
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("CONFIG_PATH", "")
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)
	t.Setenv("CHARFORGE_JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, 720*time.Hour, cfg.JWT.RefreshTTL)
	assert.Equal(t, NotificationModeLog, cfg.Notification.Mode)
	assert.Equal(t, 1000, cfg.Paging.MaxPage)
	assert.Equal(t, 20, cfg.Paging.PageSize)
	assert.Equal(t, "host=localhost port=5432 user=postgres password= dbname=charforge sslmode=disable", cfg.Database.DSN())
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "charforge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
env: prod
server:
  port: "9000"
jwt:
  secret: from-file
database:
  url: postgres://app@db/charforge
`), 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("CHARFORGE_SERVER_PORT", "9100")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.Server.Port)
	assert.Equal(t, "from-file", cfg.JWT.Secret)
	assert.Equal(t, "postgres://app@db/charforge", cfg.Database.DSN())
	assert.False(t, cfg.IsDevelopment())
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Server:       ServerConfig{Port: "8080"},
			Database:     DatabaseConfig{Host: "localhost", Name: "charforge"},
			JWT:          JWTConfig{Secret: "s3cret"},
			Paging:       PagingConfig{MaxPage: 1000, PageSize: 20},
			Notification: NotificationConfig{Mode: NotificationModeLog},
			Redis:        RedisConfig{Addr: "localhost:6379"},
		}
	}

	cases := map[string]func(c *Config){
		"missing secret":    func(c *Config) { c.JWT.Secret = "" },
		"zero page size":    func(c *Config) { c.Paging.PageSize = 0 },
		"unknown mode":      func(c *Config) { c.Notification.Mode = "pigeon" },
		"smtp without host": func(c *Config) { c.Notification.Mode = NotificationModeSMTP },
		"redis without inbox": func(c *Config) {
			c.Notification.Mode = NotificationModeRedis
			c.SMTP = SMTPConfig{Host: "mail", From: "no-reply@x"}
		},
		"redis without addr": func(c *Config) {
			c.Notification.Mode = NotificationModeRedis
			c.SMTP = SMTPConfig{Host: "mail", From: "no-reply@x"}
			c.Contact.Inbox = "support@x"
			c.Redis.Addr = ""
		},
		"no database location": func(c *Config) { c.Database = DatabaseConfig{} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := base()
			mutate(&c)
			assert.Error(t, c.Validate())
		})
	}

	assert.NoError(t, base().Validate())
}
