package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the process configuration. Values come from environment
// variables with defaults; the event facts live in Event.
type Config struct {
	Port          string
	PublicURL     string
	DataDir       string
	GuestsPath    string
	StoreBackend  string
	EventConfig   string
	AdminPassword string
	SessionTTL    time.Duration
	CORSOrigins   []string
	LogLevel      string
	LogFormat     string

	WhatsAppDataDir  string
	WhatsAppNotifyTo string

	Backup BackupConfig
}

// BackupConfig describes the S3-compatible bucket used by the backup command.
type BackupConfig struct {
	Bucket    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Prefix    string
}

// Enabled reports whether enough settings are present to attempt an upload.
func (b BackupConfig) Enabled() bool {
	return b.Bucket != "" && b.AccessKey != "" && b.SecretKey != ""
}

// LoadConfig loads configuration from environment variables or defaults
func LoadConfig() *Config {
	dataDir := getEnv("DATA_DIR", "data")
	return &Config{
		Port:          getEnv("PORT", "8080"),
		PublicURL:     strings.TrimRight(getEnv("PUBLIC_URL", "http://localhost:8080"), "/"),
		DataDir:       dataDir,
		GuestsPath:    getEnv("GUESTS_PATH", "guests.csv"),
		StoreBackend:  getEnv("STORE_BACKEND", "csv"),
		EventConfig:   getEnv("EVENT_CONFIG", ""),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		SessionTTL:    getDuration("SESSION_TTL", 12*time.Hour),
		CORSOrigins:   splitList(getEnv("CORS_ORIGINS", "")),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "json"),

		WhatsAppDataDir:  getEnv("WHATSAPP_DATA_DIR", filepath.Join(dataDir, "whatsapp")),
		WhatsAppNotifyTo: getEnv("WHATSAPP_NOTIFY_TO", ""),

		Backup: BackupConfig{
			Bucket:    getEnv("BACKUP_BUCKET_NAME", ""),
			Endpoint:  getEnv("BACKUP_ENDPOINT_URL", ""),
			Region:    getEnv("BACKUP_REGION", "auto"),
			AccessKey: getEnv("BACKUP_ACCESS_KEY_ID", ""),
			SecretKey: getEnv("BACKUP_SECRET_ACCESS_KEY", ""),
			Prefix:    getEnv("BACKUP_PREFIX", "wedding-site"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
