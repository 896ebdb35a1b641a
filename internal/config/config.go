package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Provider exposes the configuration values needed by the application's
// components. Tests can supply their own implementation.
type Provider interface {
	GetDBURL() string
	GetDBNs() string
	GetDBDb() string
	GetDBUser() string
	GetDBPass() string
	GetDBQueryTimeout() time.Duration
	GetDBExecuteTimeout() time.Duration
	GetStoreBackend() string

	GetJWTSecret() string
	GetJWTTTL() time.Duration

	GetPort() string
	GetCORSOrigins() []string
	GetMaxUploadBytes() int64

	GetAssetBackend() string
	GetGCSBucket() string
	GetGCSCDNDomain() string
	GetStorageEmulatorHost() string
	GetAssetLocalDir() string
	GetAssetPublicBaseURL() string
}

// Store backends.
const (
	StoreBackendSurreal = "surreal"
	StoreBackendMemory  = "memory"
)

// Asset backends.
const (
	AssetBackendGCS   = "gcs"
	AssetBackendLocal = "local"
)

// Config holds all configuration for the application.
type Config struct {
	DBUrl            string
	DBNs             string
	DBDb             string
	DBUser           string
	DBPass           string
	DBQueryTimeout   time.Duration
	DBExecuteTimeout time.Duration
	StoreBackend     string

	JWTSecret string
	JWTTTL    time.Duration

	Port           string
	CORSOrigins    []string
	MaxUploadBytes int64

	AssetBackend        string
	GCSBucket           string
	GCSCDNDomain        string
	StorageEmulatorHost string
	AssetLocalDir       string
	AssetPublicBaseURL  string
}

var _ Provider = (*Config)(nil)

// New loads configuration from the environment and exits the process when a
// required variable is missing.
func New() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg, err := Load()
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}

// Load builds a Config from environment variables without touching .env files.
func Load() (*Config, error) {
	cfg := &Config{
		DBUrl:        os.Getenv("SURREAL_URL"),
		DBUser:       os.Getenv("SURREAL_USER"),
		DBPass:       os.Getenv("SURREAL_PASS"),
		DBNs:         os.Getenv("SURREAL_NS"),
		DBDb:         os.Getenv("SURREAL_DB"),
		StoreBackend: envOr("STORE_BACKEND", StoreBackendSurreal),

		JWTSecret: os.Getenv("JWT_SECRET"),

		Port:        envOr("PORT", "5000"),
		CORSOrigins: splitList(envOr("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")),

		AssetBackend:        envOr("ASSET_BACKEND", AssetBackendLocal),
		GCSBucket:           os.Getenv("GCS_BUCKET"),
		GCSCDNDomain:        os.Getenv("GCS_CDN_DOMAIN"),
		StorageEmulatorHost: os.Getenv("STORAGE_EMULATOR_HOST"),
		AssetLocalDir:       envOr("ASSET_LOCAL_DIR", "uploads"),
		AssetPublicBaseURL:  envOr("ASSET_PUBLIC_BASE_URL", "http://localhost:5000/uploads"),
	}

	var errs []error
	var err error
	if cfg.DBQueryTimeout, err = durationEnv("DB_QUERY_TIMEOUT", 5*time.Second); err != nil {
		errs = append(errs, err)
	}
	if cfg.DBExecuteTimeout, err = durationEnv("DB_EXECUTE_TIMEOUT", 10*time.Second); err != nil {
		errs = append(errs, err)
	}
	if cfg.JWTTTL, err = durationEnv("JWT_TTL", 7*24*time.Hour); err != nil {
		errs = append(errs, err)
	}
	if cfg.MaxUploadBytes, err = int64Env("MAX_UPLOAD_BYTES", 10<<20); err != nil {
		errs = append(errs, err)
	}

	switch cfg.StoreBackend {
	case StoreBackendSurreal:
		if cfg.DBUrl == "" || cfg.DBNs == "" || cfg.DBDb == "" {
			errs = append(errs, errors.New("required environment variables SURREAL_URL, SURREAL_NS, or SURREAL_DB are not set"))
		}
	case StoreBackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend))
	}

	if cfg.JWTSecret == "" {
		errs = append(errs, errors.New("required environment variable JWT_SECRET is not set"))
	}

	switch cfg.AssetBackend {
	case AssetBackendGCS:
		if cfg.GCSBucket == "" {
			errs = append(errs, errors.New("ASSET_BACKEND=gcs requires GCS_BUCKET"))
		}
	case AssetBackendLocal:
	default:
		errs = append(errs, fmt.Errorf("unknown ASSET_BACKEND %q", cfg.AssetBackend))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, raw)
	}
	return d, nil
}

func int64Env(key string, fallback int64) (int64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, raw)
	}
	return n, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) GetDBURL() string { return c.DBUrl }
func (c *Config) GetDBNs() string { return c.DBNs }
func (c *Config) GetDBDb() string { return c.DBDb }
func (c *Config) GetDBUser() string { return c.DBUser }
func (c *Config) GetDBPass() string { return c.DBPass }
func (c *Config) GetDBQueryTimeout() time.Duration { return c.DBQueryTimeout }
func (c *Config) GetDBExecuteTimeout() time.Duration { return c.DBExecuteTimeout }
func (c *Config) GetStoreBackend() string { return c.StoreBackend }
func (c *Config) GetJWTSecret() string { return c.JWTSecret }
func (c *Config) GetJWTTTL() time.Duration { return c.JWTTTL }
func (c *Config) GetPort() string { return c.Port }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetMaxUploadBytes() int64 { return c.MaxUploadBytes }
func (c *Config) GetAssetBackend() string { return c.AssetBackend }
func (c *Config) GetGCSBucket() string { return c.GCSBucket }
func (c *Config) GetGCSCDNDomain() string { return c.GCSCDNDomain }
func (c *Config) GetStorageEmulatorHost() string { return c.StorageEmulatorHost }
func (c *Config) GetAssetLocalDir() string { return c.AssetLocalDir }
func (c *Config) GetAssetPublicBaseURL() string { return c.AssetPublicBaseURL }
