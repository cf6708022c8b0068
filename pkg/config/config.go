package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Relay drivers.
const (
	RelayDriverHTTP   = "http"
	RelayDriverSheets = "sheets"
)

// Mirror drivers.
const (
	MirrorDriverPostgres = "postgres"
	MirrorDriverMemory   = "memory"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Relay     RelayConfig
	Mirror    MirrorConfig
	Forms     FormsConfig
	Auth      AuthConfig
	Mail      MailConfig
	Exports   ExportsConfig
	Dashboard DashboardConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level        string
	Format       string
	RollbarToken string
}

// RelayConfig selects where accepted submissions are delivered.
type RelayConfig struct {
	Driver              string
	Endpoint            string
	Timeout             time.Duration
	SheetsCredentials   string
	SheetsSpreadsheetID string
	SheetsSheetName     string
}

// MirrorConfig selects the document store backing the admin dashboard.
type MirrorConfig struct {
	Driver string
}

// FormsConfig tunes public form handling.
type FormsConfig struct {
	DraftTTL        time.Duration
	CVMaxBytes      int64
	ConfirmationURL string
}

// AuthConfig throttles admin sign-in.
type AuthConfig struct {
	MaxAttempts int
	Window      time.Duration
}

// MailConfig enables copy-to-submitter mails.
type MailConfig struct {
	SendGridAPIKey string
	FromName       string
	FromAddress    string
}

// ExportsConfig controls stored exports and their signed links.
type ExportsConfig struct {
	StorageDir      string
	SignedURLSecret string
	SignedURLTTL    time.Duration
}

// DashboardConfig tunes analytics derived by the dashboard.
type DashboardConfig struct {
	TrendDays int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 12*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:        v.GetString("LOG_LEVEL"),
		Format:       v.GetString("LOG_FORMAT"),
		RollbarToken: v.GetString("ROLLBAR_TOKEN"),
	}

	cfg.Relay = RelayConfig{
		Driver:              strings.ToLower(v.GetString("RELAY_DRIVER")),
		Endpoint:            v.GetString("RELAY_ENDPOINT"),
		Timeout:             parseDuration(v.GetString("RELAY_TIMEOUT"), 15*time.Second),
		SheetsCredentials:   v.GetString("SHEETS_CREDENTIALS_FILE"),
		SheetsSpreadsheetID: v.GetString("SHEETS_SPREADSHEET_ID"),
		SheetsSheetName:     v.GetString("SHEETS_SHEET_NAME"),
	}

	cfg.Mirror = MirrorConfig{Driver: strings.ToLower(v.GetString("MIRROR_DRIVER"))}

	cvMax := v.GetInt64("CV_MAX_BYTES")
	if cvMax <= 0 {
		cvMax = 5 * 1024 * 1024
	}
	cfg.Forms = FormsConfig{
		DraftTTL:        parseDuration(v.GetString("DRAFT_TTL"), 2*time.Hour),
		CVMaxBytes:      cvMax,
		ConfirmationURL: v.GetString("CONFIRMATION_URL"),
	}

	cfg.Auth = AuthConfig{
		MaxAttempts: v.GetInt("LOGIN_MAX_ATTEMPTS"),
		Window:      parseDuration(v.GetString("LOGIN_WINDOW"), 15*time.Minute),
	}

	cfg.Mail = MailConfig{
		SendGridAPIKey: v.GetString("SENDGRID_API_KEY"),
		FromName:       v.GetString("MAIL_FROM_NAME"),
		FromAddress:    v.GetString("MAIL_FROM_ADDRESS"),
	}

	cfg.Exports = ExportsConfig{
		StorageDir:      v.GetString("EXPORTS_STORAGE_DIR"),
		SignedURLSecret: v.GetString("EXPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("EXPORTS_SIGNED_URL_TTL"), time.Hour),
	}

	cfg.Dashboard = DashboardConfig{TrendDays: v.GetInt("DASHBOARD_TREND_DAYS")}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "tkm_site")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "12h")
	v.SetDefault("JWT_ISSUER", "tkm-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("ROLLBAR_TOKEN", "")

	v.SetDefault("RELAY_DRIVER", RelayDriverHTTP)
	v.SetDefault("RELAY_ENDPOINT", "https://formspree.io/f/mgokvayk")
	v.SetDefault("RELAY_TIMEOUT", "15s")
	v.SetDefault("SHEETS_CREDENTIALS_FILE", "./credentials/credentials.json")
	v.SetDefault("SHEETS_SPREADSHEET_ID", "")
	v.SetDefault("SHEETS_SHEET_NAME", "Sheet1")

	v.SetDefault("MIRROR_DRIVER", MirrorDriverPostgres)

	v.SetDefault("DRAFT_TTL", "2h")
	v.SetDefault("CV_MAX_BYTES", 5*1024*1024)
	v.SetDefault("CONFIRMATION_URL", "/thanks.html")

	v.SetDefault("LOGIN_MAX_ATTEMPTS", 5)
	v.SetDefault("LOGIN_WINDOW", "15m")

	v.SetDefault("SENDGRID_API_KEY", "")
	v.SetDefault("MAIL_FROM_NAME", "TKMProject")
	v.SetDefault("MAIL_FROM_ADDRESS", "info@tkmproject.org")

	v.SetDefault("EXPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("EXPORTS_SIGNED_URL_SECRET", "dev_exports_secret")
	v.SetDefault("EXPORTS_SIGNED_URL_TTL", "1h")

	v.SetDefault("DASHBOARD_TREND_DAYS", 7)
}

func isMissingFile(err error) bool {
	return strings.Contains(err.Error(), "no such file")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
