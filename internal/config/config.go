package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/pmurley/sheetfill/internal/models"
)

type Config struct {
	DiscordToken    string
	SheetURL        string
	GoogleAPIKey    string
	CredentialsFile string
	SheetRange      string
	CacheDuration   time.Duration
	CommandPrefix   string
	LogLevel        string

	OutputDir       string // "-" disables saving artifacts locally
	OutputPrefix    string
	OutputSheetName string // worksheet name inside the xlsx, empty keeps "Sheet1"
	Layout          models.Layout
	Location        *time.Location

	MonitorChannelID string
	MonitorInterval  time.Duration
}

func Load() (*Config, error) {
	cacheDuration := time.Duration(0)
	if d := os.Getenv("CACHE_DURATION_MINUTES"); d != "" {
		minutes, err := strconv.Atoi(d)
		if err != nil {
			return nil, fmt.Errorf("invalid CACHE_DURATION_MINUTES %q: %w", d, err)
		}
		cacheDuration = time.Duration(minutes) * time.Minute
	}

	monitorInterval := 10 * time.Minute
	if d := os.Getenv("MONITOR_INTERVAL_MINUTES"); d != "" {
		minutes, err := strconv.Atoi(d)
		if err != nil || minutes < 1 {
			return nil, fmt.Errorf("invalid MONITOR_INTERVAL_MINUTES %q", d)
		}
		monitorInterval = time.Duration(minutes) * time.Minute
	}

	layout := models.DefaultLayout()

	key, err := models.ParseColumn(getEnvOrDefault("KEY_COLUMN", "A"))
	if err != nil {
		return nil, fmt.Errorf("invalid KEY_COLUMN: %w", err)
	}
	layout.Schema.KeyColumn = key

	phone, err := models.ParseColumn(getEnvOrDefault("PHONE_COLUMN", "F"))
	if err != nil {
		return nil, fmt.Errorf("invalid PHONE_COLUMN: %w", err)
	}
	layout.Schema.PhoneColumn = phone

	if layout.SkipRows, err = getIntOrDefault("SKIP_ROWS", layout.SkipRows); err != nil {
		return nil, err
	}

	if layout.HeaderRows, err = getIntOrDefault("HEADER_ROWS", layout.HeaderRows); err != nil {
		return nil, err
	}

	location := time.Local
	if tz := os.Getenv("TIMEZONE"); tz != "" {
		if location, err = time.LoadLocation(tz); err != nil {
			return nil, fmt.Errorf("invalid TIMEZONE %q: %w", tz, err)
		}
	}

	return &Config{
		DiscordToken:     os.Getenv("DISCORD_TOKEN"),
		SheetURL:         strings.TrimSpace(os.Getenv("SHEET_URL")),
		GoogleAPIKey:     os.Getenv("GOOGLE_API_KEY"),
		CredentialsFile:  os.Getenv("GOOGLE_CREDENTIALS_FILE"),
		SheetRange:       os.Getenv("SHEET_RANGE"),
		CacheDuration:    cacheDuration,
		CommandPrefix:    getEnvOrDefault("COMMAND_PREFIX", "!"),
		LogLevel:         getEnvOrDefault("LOG_LEVEL", "info"),
		OutputDir:        getEnvOrDefault("OUTPUT_DIR", "./data"),
		OutputPrefix:     getEnvOrDefault("OUTPUT_PREFIX", "filled_sheet"),
		OutputSheetName:  strings.TrimSpace(os.Getenv("OUTPUT_SHEET_NAME")),
		Layout:           layout,
		Location:         location,
		MonitorChannelID: os.Getenv("MONITOR_CHANNEL_ID"),
		MonitorInterval:  monitorInterval,
	}, nil
}

// Validate checks the settings every entry point needs. The bot additionally
// calls ValidateBot.
func (c *Config) Validate() error {
	if c.Layout.SkipRows < 0 || c.Layout.HeaderRows < 0 {
		return fmt.Errorf("SKIP_ROWS and HEADER_ROWS must not be negative")
	}

	if c.Layout.Schema.KeyColumn == c.Layout.Schema.PhoneColumn {
		return fmt.Errorf("KEY_COLUMN and PHONE_COLUMN must be different columns")
	}

	if strings.ContainsAny(c.OutputPrefix, `/\`) || c.OutputPrefix == "" {
		return fmt.Errorf("invalid OUTPUT_PREFIX %q", c.OutputPrefix)
	}

	if len(c.OutputSheetName) > 31 || strings.ContainsAny(c.OutputSheetName, `[]:*?/\`) {
		return fmt.Errorf("invalid OUTPUT_SHEET_NAME %q", c.OutputSheetName)
	}

	return nil
}

func (c *Config) ValidateBot() error {
	if c.DiscordToken == "" {
		return fmt.Errorf("DISCORD_TOKEN environment variable is required")
	}

	if c.MonitorChannelID != "" && c.SheetURL == "" {
		return fmt.Errorf("MONITOR_CHANNEL_ID requires SHEET_URL")
	}

	return c.Validate()
}

// SaveArtifacts reports whether converted files are also written to OutputDir
func (c *Config) SaveArtifacts() bool {
	return c.OutputDir != "" && c.OutputDir != "-"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q", key, value)
	}

	return n, nil
}
