package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Plaid    PlaidConfig
	Sync     SyncConfig
	Logger   LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	SecretKey  string
	Expiration time.Duration
	RefreshExp time.Duration
}

type PlaidConfig struct {
	ClientID    string
	Secret      string
	Environment string // sandbox, development or production
	WebhookURL  string
	RedirectURI string
	AppName     string
}

type SyncConfig struct {
	// Cron spec for the background sync of all linked users.
	// Empty disables the scheduler.
	Schedule       string
	RequestTimeout time.Duration
	// Rate limits applied to the manual sync endpoint.
	ManualMinInterval time.Duration
	ManualPerHour     int
}

func Load() (*Config, error) {
	// Try to load .env file from current directory or project root
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}
	// If no .env file was found, environment variables are used directly
	// (useful for Docker/K8s)

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "30"))
	jwtExp, _ := strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "24"))
	refreshExp, _ := strconv.Atoi(getEnv("JWT_REFRESH_EXPIRATION_HOURS", "168"))
	syncTimeout, _ := strconv.Atoi(getEnv("SYNC_REQUEST_TIMEOUT", "60"))
	manualInterval, _ := strconv.Atoi(getEnv("SYNC_MANUAL_MIN_INTERVAL", "60"))
	manualPerHour, _ := strconv.Atoi(getEnv("SYNC_MANUAL_PER_HOUR", "10"))

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "swipespend"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey:  getEnv("JWT_SECRET_KEY", "your-secret-key-change-in-production"),
			Expiration: time.Duration(jwtExp) * time.Hour,
			RefreshExp: time.Duration(refreshExp) * time.Hour,
		},
		Plaid: PlaidConfig{
			ClientID:    getEnv("PLAID_CLIENT_ID", ""),
			Secret:      getEnv("PLAID_SECRET", ""),
			Environment: getEnv("PLAID_ENV", "sandbox"),
			WebhookURL:  getEnv("PLAID_WEBHOOK_URL", ""),
			RedirectURI: getEnv("PLAID_REDIRECT_URI", ""),
			AppName:     getEnv("APP_NAME", "SwipeSpend"),
		},
		Sync: SyncConfig{
			Schedule:          getEnv("SYNC_SCHEDULE", "@hourly"),
			RequestTimeout:    time.Duration(syncTimeout) * time.Second,
			ManualMinInterval: time.Duration(manualInterval) * time.Second,
			ManualPerHour:     manualPerHour,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
