package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server ServerConfig
	Ledger LedgerConfig
	Backup BackupConfig
	Drive  DriveConfig
	Mongo  MongoConfig
	Notify NotifyConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port     string
	LogLevel string
}

// LedgerConfig locates the workbook that backs the daily ledger.
type LedgerConfig struct {
	Path     string
	Timezone string
}

// BackupConfig holds scheduler-related settings for the nightly job.
type BackupConfig struct {
	CronSchedule string
}

// DriveConfig contains credentials for the Google Drive backup upload.
// The integration is off when no credentials file is configured.
type DriveConfig struct {
	CredentialsPath string
	FolderID        string
}

// Enabled reports whether the Drive backup should be wired at startup.
func (c DriveConfig) Enabled() bool { return c.CredentialsPath != "" }

// MongoConfig holds settings for the optional daily summary archive.
type MongoConfig struct {
	URI    string
	DBName string
}

// Enabled reports whether the summary archive should be wired at startup.
func (c MongoConfig) Enabled() bool { return c.URI != "" }

// NotifyConfig configures the outbound change-notification webhook.
type NotifyConfig struct {
	WebhookURL string
}

// Enabled reports whether change notifications should be sent.
func (c NotifyConfig) Enabled() bool { return c.WebhookURL != "" }

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:     getenvWithDefault("APP_PORT", "8080"),
			LogLevel: getenvWithDefault("LOG_LEVEL", "info"),
		},
		Ledger: LedgerConfig{
			Path:     getenvWithDefault("LEDGER_FILE", "daily_log.xlsx"),
			Timezone: getenvWithDefault("TIMEZONE", "America/Argentina/Buenos_Aires"),
		},
		Backup: BackupConfig{
			CronSchedule: getenvWithDefault("BACKUP_CRON_SCHEDULE", "0 22 * * *"),
		},
		Drive: DriveConfig{
			CredentialsPath: os.Getenv("GOOGLE_DRIVE_CREDENTIALS_PATH"),
			FolderID:        os.Getenv("GOOGLE_DRIVE_FOLDER_ID"),
		},
		Mongo: MongoConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "balanza"),
		},
		Notify: NotifyConfig{
			WebhookURL: os.Getenv("NOTIFY_WEBHOOK_URL"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated. The
// Drive, Mongo and webhook integrations are optional; when configured they
// must be complete.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.Ledger.Path == "" {
		return errors.New("LEDGER_FILE must be provided")
	}

	if c.Ledger.Timezone == "" {
		return errors.New("TIMEZONE must not be empty")
	}

	if c.Backup.CronSchedule == "" {
		return errors.New("BACKUP_CRON_SCHEDULE must be provided")
	}

	if c.Drive.Enabled() && c.Drive.FolderID == "" {
		return errors.New("GOOGLE_DRIVE_FOLDER_ID must be provided when Drive credentials are set")
	}

	if c.Mongo.Enabled() && c.Mongo.DBName == "" {
		return errors.New("MONGODB_DB_NAME must be provided when MONGODB_URI is set")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
