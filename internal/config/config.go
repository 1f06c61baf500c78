package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config містить налаштування сервера та CLI, зчитані з оточення (і .env, якщо він є).
type Config struct {
	HTTPAddr string `mapstructure:"http_addr" validate:"required"`

	DBHost     string `mapstructure:"db_host" validate:"required"`
	DBPort     string `mapstructure:"db_port" validate:"required,numeric"`
	DBUser     string `mapstructure:"db_user" validate:"required"`
	DBPassword string `mapstructure:"db_password"`
	DBName     string `mapstructure:"db_name" validate:"required"`
	DBSSLMode  string `mapstructure:"db_sslmode" validate:"oneof=disable allow prefer require verify-ca verify-full"`

	// Якщо RedisAddr порожній, події доставляються лише в межах процесу.
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db" validate:"gte=0"`

	JWTSecret string        `mapstructure:"jwt_secret" validate:"required,min=16"`
	JWTTTL    time.Duration `mapstructure:"jwt_ttl" validate:"gt=0"`

	RetentionWindow    time.Duration `mapstructure:"retention_window" validate:"gt=0"`
	SweepCron          string        `mapstructure:"sweep_cron" validate:"required"`
	LiveResyncInterval time.Duration `mapstructure:"live_resync_interval" validate:"gt=0"`
	MaxMessageLength   int           `mapstructure:"max_message_length" validate:"gt=0"`

	// Якщо MaintenanceToken порожній, ендпоінт очищення вимкнено.
	MaintenanceToken string   `mapstructure:"maintenance_token"`
	CORSOrigins      []string `mapstructure:"cors_origins"`

	// Якщо TelegramBotToken порожній, сповіщення про екстрені скарги вимкнено.
	TelegramBotToken    string `mapstructure:"telegram_bot_token"`
	TelegramAlertChatID int64  `mapstructure:"telegram_alert_chat_id" validate:"required_with=TelegramBotToken"`

	LogLevel  string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" validate:"oneof=text json"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_user", "user")
	v.SetDefault("db_password", "")
	v.SetDefault("db_name", "complaintdesk")
	v.SetDefault("db_sslmode", "disable")
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("jwt_secret", "")
	v.SetDefault("jwt_ttl", DefaultJWTTTL)
	v.SetDefault("retention_window", DefaultRetentionWindow)
	v.SetDefault("sweep_cron", DefaultSweepCron)
	v.SetDefault("live_resync_interval", DefaultLiveResyncInterval)
	v.SetDefault("max_message_length", DefaultMaxMessageLength)
	v.SetDefault("maintenance_token", "")
	v.SetDefault("cors_origins", []string{"http://localhost:5173"})
	v.SetDefault("telegram_bot_token", "")
	v.SetDefault("telegram_alert_chat_id", 0)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
}

// Load reads .env (optional) and the process environment, then validates the result.
func Load() (*Config, error) {
	// .env is optional; its absence is not an error
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.CORSOrigins = splitOrigins(cfg.CORSOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// DSN builds the PostgreSQL connection string in key=value form.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}

// MigrationURL builds the postgres:// URL form used for logging the migration target.
func (c *Config) MigrationURL() string {
	return fmt.Sprintf("postgres://%s@%s:%s/%s?sslmode=%s", c.DBUser, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// splitOrigins accepts both a list and a single comma separated value.
func splitOrigins(in []string) []string {
	var out []string
	for _, item := range in {
		for _, o := range strings.Split(item, ",") {
			if o = strings.TrimSpace(o); o != "" {
				out = append(out, o)
			}
		}
	}
	return out
}
