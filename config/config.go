package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	BackendFile     = "file"
	BackendXLSX     = "xlsx"
	BackendS3       = "s3"
	BackendPostgres = "postgres"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	ServerPort     int
	StorageBackend string

	DatabaseURL string
	DataFile    string
	XLSXPath    string

	S3Bucket          string
	S3Key             string
	S3Endpoint        string
	S3Region          string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3PublicBaseURL   string

	RosterFile string

	JWTSecretKey       string
	EditorPasswordHash string

	LogLevel    slog.Level
	CORSOrigins []string
}

// Load загружает конфигурацию из переменных окружения.
// .env подхватывается, если он есть.
func Load() (*Config, error) {
	return load(true)
}

// LoadStorage работает как Load, но для офлайн-утилит: данные редактора не обязательны.
func LoadStorage() (*Config, error) {
	return load(false)
}

func load(requireAuth bool) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		StorageBackend:     strings.ToLower(getEnv("STORAGE_BACKEND", BackendFile)),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		DataFile:           getEnv("DATA_FILE", "tournament_data.json"),
		XLSXPath:           getEnv("XLSX_PATH", "tournament.xlsx"),
		S3Bucket:           os.Getenv("S3_BUCKET"),
		S3Key:              getEnv("S3_KEY", "tournament_data.json"),
		S3Endpoint:         os.Getenv("S3_ENDPOINT"),
		S3Region:           os.Getenv("S3_REGION"),
		S3AccessKeyID:      os.Getenv("S3_ACCESS_KEY_ID"),
		S3SecretAccessKey:  os.Getenv("S3_SECRET_ACCESS_KEY"),
		S3PublicBaseURL:    os.Getenv("S3_PUBLIC_BASE_URL"),
		RosterFile:         os.Getenv("ROSTER_FILE"),
		JWTSecretKey:       os.Getenv("JWT_SECRET_KEY"),
		EditorPasswordHash: os.Getenv("EDITOR_PASSWORD_HASH"),
		CORSOrigins:        splitList(getEnv("CORS_ORIGINS", "*")),
	}

	if requireAuth {
		if cfg.JWTSecretKey == "" {
			return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
		}
		if cfg.EditorPasswordHash == "" {
			return nil, fmt.Errorf("EDITOR_PASSWORD_HASH environment variable is not set")
		}
	}

	port, err := strconv.Atoi(getEnv("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}
	cfg.ServerPort = port

	level, err := ParseLogLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	if err := cfg.validateBackend(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validateBackend() error {
	switch c.StorageBackend {
	case BackendFile, BackendXLSX:
		return nil
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL environment variable is required for the %s backend", BackendPostgres)
		}
		return nil
	case BackendS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET environment variable is required for the %s backend", BackendS3)
		}
		return nil
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}
}

// ParseLogLevel понимает debug, info, warn и error. Пустая строка = info.
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q: %w", s, err)
	}
	return level, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
