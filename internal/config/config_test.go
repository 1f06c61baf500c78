package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(overrides map[string]any) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for k, val := range overrides {
		v.Set(k, val)
	}
	return v
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(newViper(map[string]any{"jwt_secret": "0123456789abcdef"}))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 7*24*time.Hour, cfg.RetentionWindow)
	assert.Equal(t, "0 * * * *", cfg.SweepCron)
	assert.Equal(t, 60*time.Second, cfg.LiveResyncInterval)
	assert.Equal(t, 2000, cfg.MaxMessageLength)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	_, err := load(newViper(nil))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "JWTSecret")
}

func TestLoad_ParsesStringValues(t *testing.T) {
	cfg, err := load(newViper(map[string]any{
		"jwt_secret":       "0123456789abcdef",
		"retention_window": "48h",
		"cors_origins":     "https://a.example, https://b.example",
	}))
	require.NoError(t, err)

	assert.Equal(t, 48*time.Hour, cfg.RetentionWindow)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoad_RejectsUnknownLogFormat(t *testing.T) {
	_, err := load(newViper(map[string]any{"jwt_secret": "0123456789abcdef", "log_format": "xml"}))
	assert.Error(t, err)
}

func TestLoad_TelegramNeedsChatID(t *testing.T) {
	_, err := load(newViper(map[string]any{"jwt_secret": "0123456789abcdef", "telegram_bot_token": "123:abc"}))
	assert.Error(t, err)

	cfg, err := load(newViper(map[string]any{
		"jwt_secret":             "0123456789abcdef",
		"telegram_bot_token":     "123:abc",
		"telegram_alert_chat_id": "-1001234",
	}))
	require.NoError(t, err)
	assert.Equal(t, int64(-1001234), cfg.TelegramAlertChatID)
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBHost: "db", DBUser: "u", DBPassword: "p", DBName: "n", DBPort: "5432", DBSSLMode: "disable"}
	assert.Equal(t, "host=db user=u password=p dbname=n port=5432 sslmode=disable", cfg.DSN())
}
