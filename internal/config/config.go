package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type DatabaseDriver string

const (
	DriverSQLite   DatabaseDriver = "sqlite"
	DriverPostgres DatabaseDriver = "postgres"
)

type (
	Config struct {
		HTTP
		Database
		Covers
		Export
		Audit
		Global
		Tasks
		Demo
	}

	HTTP struct {
		Port int32
		Host string
	}
	Database struct {
		Driver   DatabaseDriver
		Path     string // SQLite file, also used to derive the task queue database
		DSN      string // Postgres connection string
		LogLevel string // gorm logger level: silent, error, warn, info
	}
	Covers struct {
		Dir          string
		MaxBytes     int64
		FetchTimeout time.Duration
		FetchRate    float64 // fetches per second
		FetchBurst   int
	}
	Export struct {
		Dir      string
		Enabled  bool
		Schedule string // Cron format: "0 * * * *" = hourly
	}
	Audit struct {
		Enabled       bool
		RetentionDays int    // Days to keep audit events (default: 30)
		Schedule      string // Cron format for the retention cleanup
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Tasks struct {
		Enabled           bool
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
	Demo struct {
		Enabled   bool // Read-only API, sample data on an empty catalog
		SeedBooks int
		Seed      int64 // Random seed for sample data, 0 = time based
	}
)

// NewConfig reads configuration from the environment. A .env file in the
// working directory is loaded first when present; real environment
// variables take precedence over it.
func NewConfig() *Config {
	if err := godotenv.Load(); err == nil {
		log.Printf("Loaded environment from .env")
	}
	return newConfig(viper.New())
}

func newConfig(v *viper.Viper) *Config {
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)

	v.SetDefault("database_driver", string(DriverSQLite))
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_dsn", "")
	v.SetDefault("database_log_level", "warn")

	v.SetDefault("covers_dir", DefaultCoversDir)
	v.SetDefault("covers_max_bytes", 10<<20)
	v.SetDefault("covers_fetch_timeout", "30s")
	v.SetDefault("covers_fetch_rate", 1.0)
	v.SetDefault("covers_fetch_burst", 3)

	v.SetDefault("export_dir", "./export")
	v.SetDefault("export_enabled", false)
	v.SetDefault("export_schedule", "0 * * * *") // Hourly at :00

	v.SetDefault("audit_enabled", true)
	v.SetDefault("audit_retention_days", 30)
	v.SetDefault("audit_schedule", "30 3 * * *") // Daily at 03:30

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "5m")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	// Demo mode defaults
	v.SetDefault("demo_mode", false)
	v.SetDefault("demo_seed_books", 20)
	v.SetDefault("demo_seed", 0)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Database: Database{
			Driver:   DatabaseDriver(v.GetString("DATABASE_DRIVER")),
			Path:     v.GetString("DATABASE_PATH"),
			DSN:      v.GetString("DATABASE_DSN"),
			LogLevel: v.GetString("DATABASE_LOG_LEVEL"),
		},
		Covers: Covers{
			Dir:          v.GetString("COVERS_DIR"),
			MaxBytes:     v.GetInt64("COVERS_MAX_BYTES"),
			FetchTimeout: v.GetDuration("COVERS_FETCH_TIMEOUT"),
			FetchRate:    v.GetFloat64("COVERS_FETCH_RATE"),
			FetchBurst:   v.GetInt("COVERS_FETCH_BURST"),
		},
		Export: Export{
			Dir:      v.GetString("EXPORT_DIR"),
			Enabled:  v.GetBool("EXPORT_ENABLED"),
			Schedule: v.GetString("EXPORT_SCHEDULE"),
		},
		Audit: Audit{
			Enabled:       v.GetBool("AUDIT_ENABLED"),
			RetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
			Schedule:      v.GetString("AUDIT_SCHEDULE"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Demo: Demo{
			Enabled:   v.GetBool("DEMO_MODE"),
			SeedBooks: v.GetInt("DEMO_SEED_BOOKS"),
			Seed:      v.GetInt64("DEMO_SEED"),
		},
	}
}
