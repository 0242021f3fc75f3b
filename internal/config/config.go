package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	DBDriver     string
	DBHost       string
	DBPort       string
	DBUser       string
	DBPassword   string
	DBName       string
	DBSQLitePath string

	RedisHost     string
	RedisPort     string
	SessionStore  string
	SessionSecret string

	GinMode    string
	ServerAddr string

	OpenAIAPIKey string

	JWTSecret string
	JWTTTL    time.Duration

	// OpsNotificationEmail receives every new deadline extension request.
	OpsNotificationEmail string
	SMTPHost             string
	SMTPPort             string
	SMTPUsername         string
	SMTPPassword         string
	SMTPFrom             string
	NotifyQueueSize      int

	PermissionsFile string
	LogDevelopment  bool
}

var defaults = map[string]any{
	"DB_DRIVER":              "mysql",
	"DB_HOST":                "localhost",
	"DB_PORT":                "3306",
	"DB_USER":                "taskuser",
	"DB_PASSWORD":            "taskpassword",
	"DB_NAME":                "task_management",
	"DB_SQLITE_PATH":         "taskmanager.db",
	"REDIS_HOST":             "localhost",
	"REDIS_PORT":             "6379",
	"SESSION_STORE":          "redis",
	"SESSION_SECRET":         "default-secret-key-change-me",
	"GIN_MODE":               "debug",
	"SERVER_ADDR":            ":8080",
	"OPENAI_API_KEY":         "",
	"JWT_SECRET":             "default-jwt-secret-change-me",
	"JWT_TTL":                "24h",
	"OPS_NOTIFICATION_EMAIL": "",
	"SMTP_HOST":              "",
	"SMTP_PORT":              "587",
	"SMTP_USERNAME":          "",
	"SMTP_PASSWORD":          "",
	"SMTP_FROM":              "noreply@taskmanager.local",
	"NOTIFY_QUEUE_SIZE":      100,
	"PERMISSIONS_FILE":       "",
	"LOG_DEVELOPMENT":        true,
}

// Load reads configuration from defaults, an optional config file named by
// CONFIG_FILE, and environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if path := v.GetString("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DBDriver:             v.GetString("DB_DRIVER"),
		DBHost:               v.GetString("DB_HOST"),
		DBPort:               v.GetString("DB_PORT"),
		DBUser:               v.GetString("DB_USER"),
		DBPassword:           v.GetString("DB_PASSWORD"),
		DBName:               v.GetString("DB_NAME"),
		DBSQLitePath:         v.GetString("DB_SQLITE_PATH"),
		RedisHost:            v.GetString("REDIS_HOST"),
		RedisPort:            v.GetString("REDIS_PORT"),
		SessionStore:         v.GetString("SESSION_STORE"),
		SessionSecret:        v.GetString("SESSION_SECRET"),
		GinMode:              v.GetString("GIN_MODE"),
		ServerAddr:           v.GetString("SERVER_ADDR"),
		OpenAIAPIKey:         v.GetString("OPENAI_API_KEY"),
		JWTSecret:            v.GetString("JWT_SECRET"),
		JWTTTL:               v.GetDuration("JWT_TTL"),
		OpsNotificationEmail: v.GetString("OPS_NOTIFICATION_EMAIL"),
		SMTPHost:             v.GetString("SMTP_HOST"),
		SMTPPort:             v.GetString("SMTP_PORT"),
		SMTPUsername:         v.GetString("SMTP_USERNAME"),
		SMTPPassword:         v.GetString("SMTP_PASSWORD"),
		SMTPFrom:             v.GetString("SMTP_FROM"),
		NotifyQueueSize:      v.GetInt("NOTIFY_QUEUE_SIZE"),
		PermissionsFile:      v.GetString("PERMISSIONS_FILE"),
		LogDevelopment:       v.GetBool("LOG_DEVELOPMENT"),
	}

	switch cfg.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	switch cfg.SessionStore {
	case "redis", "cookie":
	default:
		return nil, fmt.Errorf("unsupported SESSION_STORE %q", cfg.SessionStore)
	}
	if cfg.JWTTTL <= 0 {
		return nil, fmt.Errorf("JWT_TTL must be positive")
	}
	if cfg.NotifyQueueSize <= 0 {
		cfg.NotifyQueueSize = 1
	}

	return cfg, nil
}
