package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	OTLPEndpoint  string
	Observability ObservabilityConfig

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBPath            string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	SnowflakeNode int64

	Store StoreConfig
	Files FilesConfig

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// StoreConfig describes the single restaurant location.
type StoreConfig struct {
	Name     string
	Timezone string
}

// FilesConfig locates the flat files the ledger and catalog read or append.
type FilesConfig struct {
	DataDir            string
	ImagesDir          string
	MenuSource         string
	MenuImportRequired bool
	JournalPath        string
	SalesMirrorPath    string
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	dataDir := getenv("DATA_DIR", "data")

	cfg := Config{
		AppName:           getenv("APP_SERVICE", "dinepos"),
		AppVersion:        getenv("APP_VERSION", "0.1.0"),
		Environment:       getenv("ENVIRONMENT", "development"),
		HTTPAddr:          getenv("HTTP_ADDR", ":8080"),
		OTLPEndpoint:      getenv("OTLP_ENDPOINT", "localhost:4317"),
		DBType:            strings.ToLower(getenv("DATABASE_TYPE", "sqlite")),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "dinepos"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBPath:            getenv("DATABASE_PATH", filepath.Join("db", "restaurant.db")),
		DBMaxIdleConn:     int(getenvInt64("DATABASE_MAX_IDLE_CONN", 2)),
		DBMaxOpenConn:     int(getenvInt64("DATABASE_MAX_OPEN_CONN", 4)),
		DBConnMaxLifetime: int(getenvInt64("DATABASE_CONN_MAX_LIFETIME", 300)),
		DBConnMaxIdleTime: int(getenvInt64("DATABASE_CONN_MAX_IDLE_TIME", 60)),
		SnowflakeNode:     getenvInt64("SNOWFLAKE_NODE", 1),
		Store: StoreConfig{
			Name:     getenv("STORE_NAME", "Restaurant"),
			Timezone: strings.TrimSpace(getenv("STORE_TIMEZONE", "Local")),
		},
		Files: FilesConfig{
			DataDir:            dataDir,
			ImagesDir:          getenv("IMAGES_DIR", filepath.Join(dataDir, "images")),
			MenuSource:         getenv("MENU_SOURCE", filepath.Join(dataDir, "menu.csv")),
			MenuImportRequired: getenvBool("MENU_IMPORT_REQUIRED", false),
			JournalPath:        getenv("JOURNAL_PATH", filepath.Join(dataDir, "sample_bills.json")),
			SalesMirrorPath:    getenv("SALES_MIRROR_PATH", filepath.Join(dataDir, "sales_report.csv")),
		},
		RedisAddr:     strings.TrimSpace(getenv("REDIS_ADDR", "")),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       int(getenvInt64("REDIS_DB", 0)),
	}
	cfg.Observability = loadObservability(cfg)

	return cfg
}

// Location resolves the store time zone used for report day boundaries.
// Unknown names fall back to the process local zone.
func (c Config) Location() *time.Location {
	name := strings.TrimSpace(c.Store.Timezone)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.Local
	}
	return loc
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
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
