// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/fahimtalukderraj-lang/salesapp/internal/utils"
)

// CategoryDefault is one store category offered to the entry form,
// with its default profit margin as a fraction (0.10 = 10%).
type CategoryDefault struct {
	Name      string  `json:"name"`
	ProfitPct float64 `json:"profit_pct"`
}

// Config holds application configuration
type Config struct {
	Host      string
	Port      int
	DevMode   bool
	LogLevel  string
	LogPretty bool

	DataDir string // Base directory for the database, backups and staging
	DBFile  string // Database filename inside DataDir

	BackupEnabled       bool
	BackupSchedule      string // cron spec with seconds field
	BackupRetentionDays int
	MaintenanceSchedule string

	// S3-compatible backup target; empty endpoint or bucket disables upload
	S3Endpoint        string
	S3Region          string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Bucket          string

	DefaultCategories []CategoryDefault
	DefaultGasGrades  []string
}

// defaultProfitPct is applied when a category pair carries no usable fraction.
const defaultProfitPct = 0.10

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Host:      getEnv("HOST", ""),
		Port:      getEnvAsInt("PORT", 8080),
		DevMode:   getEnvAsBool("DEV_MODE", false),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogPretty: getEnvAsBool("LOG_PRETTY", false),

		DataDir: getEnv("DATA_DIR", "./data"),
		DBFile:  getEnv("DB_FILE", "daily_sales.db"),

		BackupEnabled:       getEnvAsBool("BACKUP_ENABLED", true),
		BackupSchedule:      getEnv("BACKUP_SCHEDULE", "0 30 2 * * *"), // 02:30 daily
		BackupRetentionDays: getEnvAsInt("BACKUP_RETENTION_DAYS", 30),
		MaintenanceSchedule: getEnv("MAINTENANCE_SCHEDULE", "0 0 3 * * 0"), // Sunday 03:00

		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		S3Region:          getEnv("S3_REGION", "auto"),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3Bucket:          getEnv("S3_BUCKET", ""),

		DefaultCategories: parseCategoryList(getEnv("DEFAULT_CATEGORIES", defaultCategoriesSpec)),
		DefaultGasGrades:  utils.ParseCSV(getEnv("DEFAULT_GAS_GRADES", defaultGasGradesSpec)),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.DataDir == "" {
		return fmt.Errorf("DATA_DIR is required")
	}
	if c.DBFile == "" {
		return fmt.Errorf("DB_FILE is required")
	}
	if c.BackupRetentionDays < 0 {
		return fmt.Errorf("BACKUP_RETENTION_DAYS must not be negative, got %d", c.BackupRetentionDays)
	}
	return nil
}

// DatabasePath returns the full path of the SQLite database file.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, c.DBFile)
}

// BackupDir returns where finished backup archives are kept.
func (c *Config) BackupDir() string {
	return filepath.Join(c.DataDir, "backups")
}

// StagingDir returns the scratch directory used while building a backup.
func (c *Config) StagingDir() string {
	return filepath.Join(c.DataDir, "backup-staging")
}

// S3Configured reports whether an upload target is fully specified.
func (c *Config) S3Configured() bool {
	return c.S3Endpoint != "" && c.S3Bucket != ""
}

const (
	defaultCategoriesSpec = "CIGARETTE:0.10,TOBACCO:0.10,GROCERY:0.10,BEER:0.10,DELI:0.10,OTHERS:0.10,INSIDE SALES:0.10,LOTTERY:0.10"
	defaultGasGradesSpec  = "REGULAR,MIDGRADE,PREMIUM,DIESEL"
)

// parseCategoryList parses "NAME:fraction,NAME:fraction,..." pairs.
// A pair without a parseable fraction falls back to the 0.10 default.
func parseCategoryList(spec string) []CategoryDefault {
	var categories []CategoryDefault

	for _, part := range utils.ParseCSV(spec) {
		name := part
		pct := defaultProfitPct

		if idx := strings.LastIndex(part, ":"); idx >= 0 {
			name = strings.TrimSpace(part[:idx])
			if parsed, err := strconv.ParseFloat(strings.TrimSpace(part[idx+1:]), 64); err == nil && parsed >= 0 {
				pct = parsed
			}
		}
		if name == "" {
			continue
		}

		categories = append(categories, CategoryDefault{Name: name, ProfitPct: pct})
	}

	return categories
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
