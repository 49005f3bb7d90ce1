package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"voicenotes/internal/app/security"
)

// Config holds everything the service reads from the environment.
type Config struct {
	Server  ServerConfig
	Upload  UploadConfig
	OpenAI  OpenAIConfig
	DB      DBConfig
	Redis   RedisConfig
	Archive ArchiveConfig
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Port string
	Mode string // gin mode: debug, release or test
}

// UploadConfig controls the upload validation pipeline.
type UploadConfig struct {
	MaxUploadSize   int64
	TempDir         string
	HeuristicPolicy security.HeuristicPolicy
}

// OpenAIConfig holds the API credentials and model selection.
type OpenAIConfig struct {
	APIKey    string
	ChatModel string
}

// DBConfig selects and configures the note store backend.
type DBConfig struct {
	Driver     string // sqlite or postgres
	SQLitePath string
	PostgresDSN string
}

// RedisConfig configures the background job queue. An empty Addr disables it.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// ArchiveConfig configures optional object-storage archival of accepted
// uploads. Disabled unless an endpoint is set.
type ArchiveConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// LoadEnv loads environment variables from a .env file if one exists.
// Missing files are fine; variables may be set system-wide.
func LoadEnv() error {
	envPaths := []string{
		".env",
		".env.local",
		"../.env",
		"../../.env",
	}

	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return fmt.Errorf("error loading %s file: %w", envPath, err)
			}
			break
		}
	}

	return nil
}

// Load reads and validates the full service configuration. It fails fast on
// malformed values so misconfiguration surfaces at startup, not mid-request.
func Load() (*Config, error) {
	if err := LoadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("VN_PORT", "8080"),
			Mode: getEnv("VN_GIN_MODE", "release"),
		},
		Upload: UploadConfig{
			MaxUploadSize: security.DefaultMaxUploadSize,
			TempDir:       os.Getenv("VN_TEMP_DIR"),
		},
		OpenAI: OpenAIConfig{
			APIKey:    strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
			ChatModel: os.Getenv("VN_CHAT_MODEL"),
		},
		DB: DBConfig{
			Driver:      getEnv("VN_DB_DRIVER", "sqlite"),
			SQLitePath:  getEnv("VN_SQLITE_PATH", "voicenotes.db"),
			PostgresDSN: os.Getenv("VN_POSTGRES_DSN"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("VN_REDIS_ADDR"),
			Password: os.Getenv("VN_REDIS_PASSWORD"),
		},
		Archive: ArchiveConfig{
			Endpoint:  os.Getenv("VN_ARCHIVE_ENDPOINT"),
			AccessKey: os.Getenv("VN_ARCHIVE_ACCESS_KEY"),
			SecretKey: os.Getenv("VN_ARCHIVE_SECRET_KEY"),
			Bucket:    getEnv("VN_ARCHIVE_BUCKET", "voicenotes-audio"),
		},
	}

	if raw := os.Getenv("VN_MAX_UPLOAD_SIZE"); raw != "" {
		size, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || size <= 0 {
			return nil, fmt.Errorf("invalid VN_MAX_UPLOAD_SIZE %q: must be a positive byte count", raw)
		}
		cfg.Upload.MaxUploadSize = size
	}

	switch policy := getEnv("VN_HEURISTIC_POLICY", "warn"); policy {
	case "warn":
		cfg.Upload.HeuristicPolicy = security.HeuristicWarn
	case "reject":
		cfg.Upload.HeuristicPolicy = security.HeuristicReject
	default:
		return nil, fmt.Errorf("invalid VN_HEURISTIC_POLICY %q: must be warn or reject", policy)
	}

	if raw := os.Getenv("VN_REDIS_DB"); raw != "" {
		db, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid VN_REDIS_DB %q: %w", raw, err)
		}
		cfg.Redis.DB = db
	}

	if raw := os.Getenv("VN_ARCHIVE_USE_SSL"); raw != "" {
		useSSL, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid VN_ARCHIVE_USE_SSL %q: %w", raw, err)
		}
		cfg.Archive.UseSSL = useSSL
	}

	if err := validateAPIKey(cfg.OpenAI.APIKey); err != nil {
		return nil, err
	}

	switch cfg.DB.Driver {
	case "sqlite":
	case "postgres":
		if cfg.DB.PostgresDSN == "" {
			return nil, fmt.Errorf("VN_DB_DRIVER is postgres but VN_POSTGRES_DSN is not set")
		}
	default:
		return nil, fmt.Errorf("invalid VN_DB_DRIVER %q: must be sqlite or postgres", cfg.DB.Driver)
	}

	return cfg, nil
}

// validateAPIKey applies basic format checks so a truncated or mispasted key
// fails at startup instead of on the first upstream call.
func validateAPIKey(key string) error {
	if key == "" {
		return nil
	}
	if !strings.HasPrefix(key, "sk-") {
		return fmt.Errorf("invalid OPENAI_API_KEY format: must start with 'sk-'")
	}
	if len(key) < 20 {
		return fmt.Errorf("invalid OPENAI_API_KEY format: too short")
	}
	return nil
}

// RequireAPIKey fails fast for operations that need the OpenAI key.
func RequireAPIKey(cfg *Config) error {
	if cfg.OpenAI.APIKey == "" {
		return fmt.Errorf("this operation requires OPENAI_API_KEY in environment or .env file")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
