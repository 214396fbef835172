package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Airtable AirtableConfig `mapstructure:"airtable"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Lark     LarkConfig     `mapstructure:"lark"`
	Ingest   IngestConfig   `mapstructure:"ingest"`
	Export   ExportConfig   `mapstructure:"export"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds the local sqlite configuration. The database carries
// the activity log, the duplicate-file index and export history; the record
// of truth stays in the tabular store.
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
}

// AirtableConfig holds tabular store API configuration
type AirtableConfig struct {
	APIKey       string        `mapstructure:"api_key"`
	BaseID       string        `mapstructure:"base_id"`
	InvoiceTable string        `mapstructure:"invoice_table"`
	BaseURL      string        `mapstructure:"base_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxRetries   int           `mapstructure:"max_retries"`
}

// OpenAIConfig holds OpenAI API configuration
type OpenAIConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Temperature float32       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// LarkConfig holds the reviewer notification channel configuration.
// Notifications are optional; with an empty app ID the channel is disabled.
type LarkConfig struct {
	AppID          string `mapstructure:"app_id"`
	AppSecret      string `mapstructure:"app_secret"`
	ReviewerOpenID string `mapstructure:"reviewer_open_id"`
}

// IngestConfig holds inbox scanning configuration
type IngestConfig struct {
	InboxDir      string        `mapstructure:"inbox_dir"`
	ArchiveDir    string        `mapstructure:"archive_dir"`
	QuarantineDir string        `mapstructure:"quarantine_dir"`
	ScanInterval  time.Duration `mapstructure:"scan_interval"`
	SyncInterval  time.Duration `mapstructure:"sync_interval"`
}

// ExportConfig holds XLSX export configuration
type ExportConfig struct {
	OutputDir string `mapstructure:"output_dir"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)

	viper.SetDefault("database.path", "data/apdesk.db")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	viper.SetDefault("database.migrations_dir", "migrations")

	viper.SetDefault("airtable.base_url", "https://api.airtable.com/v0")
	viper.SetDefault("airtable.invoice_table", "Invoices")
	viper.SetDefault("airtable.timeout", 30*time.Second)
	viper.SetDefault("airtable.max_retries", 3)

	viper.SetDefault("openai.model", "gpt-4o")
	viper.SetDefault("openai.temperature", 0.1)
	viper.SetDefault("openai.max_tokens", 4096)
	viper.SetDefault("openai.timeout", 60*time.Second)

	viper.SetDefault("ingest.inbox_dir", "data/inbox")
	viper.SetDefault("ingest.archive_dir", "data/archive")
	viper.SetDefault("ingest.quarantine_dir", "data/quarantine")
	viper.SetDefault("ingest.scan_interval", 30*time.Second)
	viper.SetDefault("ingest.sync_interval", 2*time.Minute)

	viper.SetDefault("export.output_dir", "data/exports")

	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars() {
	// Sensitive credentials from environment
	viper.BindEnv("airtable.api_key", "AIRTABLE_API_KEY")
	viper.BindEnv("airtable.base_id", "AIRTABLE_BASE_ID")
	viper.BindEnv("openai.api_key", "OPENAI_API_KEY")
	viper.BindEnv("lark.app_id", "LARK_APP_ID")
	viper.BindEnv("lark.app_secret", "LARK_APP_SECRET")
	viper.BindEnv("lark.reviewer_open_id", "LARK_REVIEWER_OPEN_ID")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Airtable.APIKey == "" {
		return fmt.Errorf("airtable.api_key is required")
	}
	if c.Airtable.BaseID == "" {
		return fmt.Errorf("airtable.base_id is required")
	}
	if c.Airtable.InvoiceTable == "" {
		return fmt.Errorf("airtable.invoice_table is required")
	}

	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("openai.api_key is required")
	}

	// Lark is optional, but an app ID without a secret is a misconfiguration.
	if c.Lark.AppID != "" && c.Lark.AppSecret == "" {
		return fmt.Errorf("lark.app_secret is required when lark.app_id is set")
	}

	if c.Ingest.InboxDir == "" {
		return fmt.Errorf("ingest.inbox_dir is required")
	}

	return nil
}
