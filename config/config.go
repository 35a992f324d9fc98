package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Firebase     FirebaseConfig
	Local        LocalConfig
	CloudStorage CloudStorageConfig
	AutoArchive  AutoArchiveConfig
	App          AppConfig
}

type ServerConfig struct {
	Port        string
	CORSOrigins []string
}

// DatabaseConfig describes the hosted Postgres store. An empty Host disables it
// and the daemon runs against the device store only.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	DSN      string
	// MaxConns caps the pgx pool used by the profile repository.
	MaxConns       int
	ConnectTimeout time.Duration
}

func (d DatabaseConfig) Enabled() bool {
	return d.Host != "" || d.DSN != ""
}

type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	AuthChannel string
}

func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

type FirebaseConfig struct {
	CredentialsPath string
}

type LocalConfig struct {
	DataDir  string
	DeviceID string
}

type CloudStorageConfig struct {
	SiteURL             string
	GoogleClientID      string
	GoogleClientSecret  string
	DropboxClientID     string
	DropboxClientSecret string
	OneDriveClientID    string
	OneDriveSecret      string
	UploadsPerMinute    int
}

type AutoArchiveConfig struct {
	AfterDays int
	Schedule  string
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			CORSOrigins: getEnvAsList("CORS_ORIGINS", []string{"http://localhost:3000"}),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", ""),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "sanctuary"),
			DSN:      getEnv("DB_DSN", ""),

			MaxConns:       getEnvAsInt("DB_MAX_CONNS", 5),
			ConnectTimeout: getEnvAsDuration("DB_CONNECT_TIMEOUT", 5*time.Second),
		},
		Redis: RedisConfig{
			Addr:        getEnv("REDIS_ADDR", ""),
			Password:    getEnv("REDIS_PASSWORD", ""),
			DB:          getEnvAsInt("REDIS_DB", 0),
			AuthChannel: getEnv("AUTH_CHANNEL", "sanctuary:auth"),
		},
		Firebase: FirebaseConfig{
			CredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		},
		Local: LocalConfig{
			DataDir:  getEnv("LOCAL_DATA_DIR", "data"),
			DeviceID: getEnv("DEVICE_ID", hostname()),
		},
		CloudStorage: CloudStorageConfig{
			SiteURL:             getEnv("SITE_URL", "http://localhost:3000"),
			GoogleClientID:      getEnv("GOOGLE_CLIENT_ID", ""),
			GoogleClientSecret:  getEnv("GOOGLE_CLIENT_SECRET", ""),
			DropboxClientID:     getEnv("DROPBOX_CLIENT_ID", ""),
			DropboxClientSecret: getEnv("DROPBOX_CLIENT_SECRET", ""),
			OneDriveClientID:    getEnv("ONEDRIVE_CLIENT_ID", ""),
			OneDriveSecret:      getEnv("ONEDRIVE_CLIENT_SECRET", ""),
			UploadsPerMinute:    getEnvAsInt("CLOUD_UPLOADS_PER_MINUTE", 6),
		},
		AutoArchive: AutoArchiveConfig{
			AfterDays: getEnvAsInt("AUTO_ARCHIVE_AFTER_DAYS", 90),
			Schedule:  getEnv("AUTO_ARCHIVE_SCHEDULE", "@daily"),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Local.DataDir == "" {
		return fmt.Errorf("LOCAL_DATA_DIR is required")
	}

	if c.AutoArchive.AfterDays <= 0 {
		return fmt.Errorf("AUTO_ARCHIVE_AFTER_DAYS must be positive")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ShutdownTimeout bounds graceful HTTP shutdown.
func ShutdownTimeout() time.Duration {
	return getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil || h == "" {
		return "local-device"
	}
	return h
}
