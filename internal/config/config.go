package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

var Module = fx.Module("config",
	fx.Provide(Load),
	fx.Provide(NewReminderSettingsHolder),
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	OTLPEndpoint string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	Auth    AuthConfig
	Uploads UploadConfig
	Email   EmailConfig
	Redis   RedisConfig

	CORSOrigins []string

	SettingsPath string
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration

	CRMUser    DefaultUser
	GemBidUser DefaultUser

	LoginRate  float64
	LoginBurst int
}

// DefaultUser is seeded into its namespace on startup.
type DefaultUser struct {
	Email    string
	Password string
	Name     string
}

type UploadConfig struct {
	CRMDir    string
	GemBidDir string
}

type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	From         string
	To           []string
}

// Enabled reports whether an SMTP relay is configured.
func (c EmailConfig) Enabled() bool {
	return strings.TrimSpace(c.SMTPHost) != "" && strings.TrimSpace(c.SMTPPassword) != ""
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether a redis address is configured.
func (c RedisConfig) Enabled() bool {
	return strings.TrimSpace(c.Addr) != ""
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:      getenv("APP_SERVICE", "crm"),
		AppVersion:   getenv("APP_VERSION", "0.1.0"),
		Environment:  getenv("ENVIRONMENT", "development"),
		HTTPAddr:     getenv("HTTP_ADDR", ":8080"),
		OTLPEndpoint: getenv("OTLP_ENDPOINT", "localhost:4317"),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "crm"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     int(getenvInt64("DATABASE_MAX_IDLE_CONN", 5)),
		DBMaxOpenConn:     int(getenvInt64("DATABASE_MAX_OPEN_CONN", 20)),
		DBConnMaxLifetime: int(getenvInt64("DATABASE_CONN_MAX_LIFETIME", 300)),
		DBConnMaxIdleTime: int(getenvInt64("DATABASE_CONN_MAX_IDLE_TIME", 60)),

		Auth: AuthConfig{
			JWTSecret: strings.TrimSpace(getenv("JWT_SECRET", "change-me")),
			TokenTTL:  time.Duration(getenvInt64("ACCESS_TOKEN_EXPIRE_MINUTES", 30)) * time.Minute,
			CRMUser: DefaultUser{
				Email:    strings.TrimSpace(getenv("CRM_USER_EMAIL", "")),
				Password: getenv("CRM_USER_PASSWORD", ""),
				Name:     getenv("CRM_USER_NAME", "CRM Admin"),
			},
			GemBidUser: DefaultUser{
				Email:    strings.TrimSpace(getenv("GEM_BID_USER_EMAIL", "")),
				Password: getenv("GEM_BID_USER_PASSWORD", ""),
				Name:     getenv("GEM_BID_USER_NAME", "Bid Admin"),
			},
			LoginRate:  getenvFloat("LOGIN_RATE_PER_SECOND", 0.2),
			LoginBurst: int(getenvInt64("LOGIN_BURST", 5)),
		},

		Uploads: UploadConfig{
			CRMDir:    getenv("UPLOAD_DIR", "uploads"),
			GemBidDir: getenv("GEM_BID_UPLOAD_DIR", "gem_uploads"),
		},

		Email: EmailConfig{
			SMTPHost:     strings.TrimSpace(getenv("SMTP_HOST", "smtp.gmail.com")),
			SMTPPort:     int(getenvInt64("SMTP_PORT", 587)),
			SMTPUsername: strings.TrimSpace(getenv("SMTP_USER", "")),
			SMTPPassword: getenv("SMTP_PASSWORD", ""),
			From:         strings.TrimSpace(getenv("EMAIL_FROM", "")),
			To:           splitList(getenv("EMAIL_TO", "")),
		},

		Redis: RedisConfig{
			Addr:     strings.TrimSpace(getenv("REDIS_ADDR", "")),
			Password: getenv("REDIS_PASSWORD", ""),
			DB:       int(getenvInt64("REDIS_DB", 0)),
		},

		CORSOrigins:  splitList(getenv("CORS_ORIGINS", "*")),
		SettingsPath: getenv("SETTINGS_PATH", "."),
	}

	return cfg
}

// IsProduction reports whether the service runs in production.
func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
