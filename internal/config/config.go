package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

const (
	BackendNotion = "notion"
	BackendSheets = "sheets"
	BackendMemory = "memory"
)

type Config struct {
	// HTTP Server
	Port           string
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int

	// Backend selection
	DataBackend string

	// Hosted database
	NotionAPIKey      string
	NotionDatabaseID  string // as configured; see DatabaseID for the dashed form
	NotionAPIURL      string
	NotionVersion     string
	NotionHTTPTimeout time.Duration

	// Google Sheets (backend or worker mirror)
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Memory backend
	MemorySeedFile string

	// Snapshot storage
	SQLiteDBPath string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Worker
	SnapshotRefreshSchedule string

	// Dashboard client
	GatewayURL string

	// Logging
	LogLevel  string
	LogFormat string
}

func Load() *Config {
	cfg := &Config{
		Port:           getEnv("PORT", "8081"),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 10),

		DataBackend: getEnv("DATA_BACKEND", BackendNotion),

		NotionAPIKey:      getEnv("NOTION_API_KEY", ""),
		NotionDatabaseID:  getEnv("NOTION_DATABASE_ID", ""),
		NotionAPIURL:      getEnv("NOTION_API_URL", "https://api.notion.com/v1"),
		NotionVersion:     getEnv("NOTION_VERSION", "2022-06-28"),
		NotionHTTPTimeout: getEnvDuration("NOTION_HTTP_TIMEOUT", 0),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Sales"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),

		MemorySeedFile: getEnv("MEMORY_SEED_FILE", ""),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/salesdash.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "salesdash"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "sale_events"),

		SnapshotRefreshSchedule: getEnv("SNAPSHOT_REFRESH_SCHEDULE", "@every 15m"),

		GatewayURL: getEnv("GATEWAY_URL", "http://localhost:8081"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	return cfg
}

// DatabaseID returns the configured database id in dashed form, or the raw
// value when it cannot be normalized.
func (c *Config) DatabaseID() string {
	id, err := FormatDatabaseID(c.NotionDatabaseID)
	if err != nil {
		return strings.TrimSpace(c.NotionDatabaseID)
	}
	return id
}

// FormatDatabaseID accepts a 32-character hex id or a dashed UUID and returns
// the lowercase dashed form.
func FormatDatabaseID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) != 32 && len(raw) != 36 {
		return "", fmt.Errorf("invalid database id '%s': must be 32 hex characters or a dashed UUID", raw)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid database id '%s': %v", raw, err)
	}
	return id.String(), nil
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate data backend
	validBackends := []string{BackendNotion, BackendSheets, BackendMemory}
	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == BackendNotion {
		if strings.TrimSpace(c.NotionAPIKey) == "" {
			errors = append(errors, "NOTION_API_KEY is required when using notion backend")
		}
		if strings.TrimSpace(c.NotionDatabaseID) == "" {
			errors = append(errors, "NOTION_DATABASE_ID is required when using notion backend")
		} else if _, err := FormatDatabaseID(c.NotionDatabaseID); err != nil {
			errors = append(errors, err.Error())
		}
		if u, err := url.Parse(c.NotionAPIURL); err != nil || u.Scheme == "" || u.Host == "" {
			errors = append(errors, fmt.Sprintf("invalid NOTION_API_URL '%s'", c.NotionAPIURL))
		}
		if c.NotionHTTPTimeout < 0 {
			errors = append(errors, fmt.Sprintf("invalid NOTION_HTTP_TIMEOUT %v: must not be negative", c.NotionHTTPTimeout))
		}
	}

	if c.DataBackend == BackendSheets {
		errors = append(errors, c.validateSheets("sheets backend")...)
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	// Validate CORS allow-list
	for _, origin := range c.AllowedOrigins {
		if origin == "*" {
			continue
		}
		if u, err := url.Parse(origin); err != nil || u.Scheme == "" || u.Host == "" {
			errors = append(errors, fmt.Sprintf("invalid allowed origin '%s'", origin))
		}
	}

	if c.RateLimitRPS <= 0 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %v: must be positive", c.RateLimitRPS))
	}
	if c.RateLimitBurst < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit burst %d: must be at least 1", c.RateLimitBurst))
	}

	if c.SQLiteDBPath != "" {
		// Check if directory exists or can be created
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if _, err := cron.ParseStandard(c.SnapshotRefreshSchedule); err != nil {
		errors = append(errors, fmt.Sprintf("invalid snapshot refresh schedule '%s': %v", c.SnapshotRefreshSchedule, err))
	}

	errors = append(errors, c.validateLogging()...)

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// ValidateClient checks only what the dashboard CLI needs: the gateway URL,
// the snapshot path and logging settings.
func (c *Config) ValidateClient() error {
	var errors []string
	if u, err := url.Parse(c.GatewayURL); err != nil || u.Scheme == "" || u.Host == "" {
		errors = append(errors, fmt.Sprintf("invalid GATEWAY_URL '%s'", c.GatewayURL))
	}
	if strings.TrimSpace(c.SQLiteDBPath) == "" {
		errors = append(errors, "SQLITE_DB_PATH cannot be empty")
	}
	errors = append(errors, c.validateLogging()...)
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func (c *Config) validateLogging() []string {
	var errors []string
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, strings.ToLower(c.LogLevel)) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}
	if !slices.Contains([]string{"text", "json"}, strings.ToLower(c.LogFormat)) {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be text or json", c.LogFormat))
	}
	return errors
}

// MirrorEnabled reports whether sales should also be copied into Google Sheets.
func (c *Config) MirrorEnabled() bool {
	return c.DataBackend != BackendSheets && strings.TrimSpace(c.GoogleSpreadsheetID) != ""
}

// ValidateMirror checks the Sheets settings used by the worker mirror.
func (c *Config) ValidateMirror() error {
	if errs := c.validateSheets("sheets mirror"); len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func (c *Config) validateSheets(use string) []string {
	var errors []string
	if c.GoogleSpreadsheetID == "" {
		errors = append(errors, "Google Spreadsheet ID is required when using "+use)
	}
	hasJSON := c.GoogleServiceAccountJSON != ""
	hasFile := c.GoogleServiceAccountFile != ""
	if !hasJSON && !hasFile && os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" {
		errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided for "+use)
	}
	if hasFile {
		if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
		}
	}
	return errors
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList splits a comma-separated value, dropping blanks.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
