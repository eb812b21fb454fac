// Package config provides configuration loading and validation for the CLI
// and the HTTP server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jonathan/resume-studio/internal/subscription"
)

// Config represents the configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or CLI flags.
type Config struct {
	// Templates and export
	DefaultTemplate      string  `json:"default_template,omitempty"`       // Template used for new sessions
	ExportStrategy       string  `json:"export_strategy,omitempty"`        // "vector", "raster" or empty for the template's preference
	ExportTimeoutSeconds int     `json:"export_timeout_seconds,omitempty"` // Per-export deadline
	RasterAttempts       int     `json:"raster_attempts,omitempty"`        // Capture attempts before a raster export fails
	ChromePath           string  `json:"chrome_path,omitempty"`            // Browser binary for raster capture
	DeviceScale          float64 `json:"device_scale,omitempty"`           // Raster capture pixel ratio
	UseBrowser           bool    `json:"use_browser,omitempty"`            // Enable raster export through a headless browser

	// Collaborators
	DatabaseURL           string `json:"database_url,omitempty"`            // PostgreSQL connection URL
	APIKey                string `json:"api_key,omitempty"`                 // Gemini API key for text enhancement
	EnhanceTimeoutSeconds int    `json:"enhance_timeout_seconds,omitempty"` // Per-enhancement deadline

	// Export archive; at most one of ArchiveDir and S3Bucket
	ArchiveDir string `json:"archive_dir,omitempty"`
	S3Bucket   string `json:"s3_bucket,omitempty"`
	S3Region   string `json:"s3_region,omitempty"`
	S3Prefix   string `json:"s3_prefix,omitempty"`
	S3KMSKeyID string `json:"s3_kms_key_id,omitempty"`

	// Plan quotas; zero keeps the default
	FreeResumes      int `json:"free_resumes,omitempty"`
	FreeCoverLetters int `json:"free_cover_letters,omitempty"`
	ProResumes       int `json:"pro_resumes,omitempty"`
	ProCoverLetters  int `json:"pro_cover_letters,omitempty"`

	// Server
	Port               int  `json:"port,omitempty"`
	SessionIdleMinutes int  `json:"session_idle_minutes,omitempty"`
	Verbose            bool `json:"verbose,omitempty"`
}

// Defaults returns the built-in configuration
func Defaults() Config {
	return Config{
		DefaultTemplate:       "modern",
		ExportTimeoutSeconds:  60,
		RasterAttempts:        3,
		DeviceScale:           2,
		EnhanceTimeoutSeconds: 30,
		FreeResumes:           2,
		FreeCoverLetters:      3,
		ProResumes:            50,
		ProCoverLetters:       50,
		Port:                  8080,
		SessionIdleMinutes:    120,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	switch c.ExportStrategy {
	case "", "vector", "raster":
	default:
		return fmt.Errorf("config error: 'export_strategy' must be \"vector\" or \"raster\", got %q", c.ExportStrategy)
	}

	if c.ArchiveDir != "" && c.S3Bucket != "" {
		return fmt.Errorf("config error: 'archive_dir' and 's3_bucket' are mutually exclusive")
	}

	for name, v := range map[string]int{
		"export_timeout_seconds":  c.ExportTimeoutSeconds,
		"raster_attempts":         c.RasterAttempts,
		"enhance_timeout_seconds": c.EnhanceTimeoutSeconds,
		"free_resumes":            c.FreeResumes,
		"free_cover_letters":      c.FreeCoverLetters,
		"pro_resumes":             c.ProResumes,
		"pro_cover_letters":       c.ProCoverLetters,
		"session_idle_minutes":    c.SessionIdleMinutes,
	} {
		if v < 0 {
			return fmt.Errorf("config error: '%s' must be non-negative", name)
		}
	}
	if c.DeviceScale < 0 {
		return fmt.Errorf("config error: 'device_scale' must be non-negative")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}

	if c.ChromePath != "" {
		if _, err := os.Stat(c.ChromePath); os.IsNotExist(err) {
			return fmt.Errorf("config error: chrome binary not found: %s", c.ChromePath)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	mergeString(&result.DefaultTemplate, defaults.DefaultTemplate)
	mergeString(&result.ExportStrategy, defaults.ExportStrategy)
	mergeString(&result.ChromePath, defaults.ChromePath)
	mergeString(&result.DatabaseURL, defaults.DatabaseURL)
	mergeString(&result.APIKey, defaults.APIKey)
	mergeString(&result.ArchiveDir, defaults.ArchiveDir)
	mergeString(&result.S3Bucket, defaults.S3Bucket)
	mergeString(&result.S3Region, defaults.S3Region)
	mergeString(&result.S3Prefix, defaults.S3Prefix)
	mergeString(&result.S3KMSKeyID, defaults.S3KMSKeyID)

	// Int fields: use default if zero
	mergeInt(&result.ExportTimeoutSeconds, defaults.ExportTimeoutSeconds)
	mergeInt(&result.RasterAttempts, defaults.RasterAttempts)
	mergeInt(&result.EnhanceTimeoutSeconds, defaults.EnhanceTimeoutSeconds)
	mergeInt(&result.FreeResumes, defaults.FreeResumes)
	mergeInt(&result.FreeCoverLetters, defaults.FreeCoverLetters)
	mergeInt(&result.ProResumes, defaults.ProResumes)
	mergeInt(&result.ProCoverLetters, defaults.ProCoverLetters)
	mergeInt(&result.Port, defaults.Port)
	mergeInt(&result.SessionIdleMinutes, defaults.SessionIdleMinutes)

	if result.DeviceScale == 0 {
		result.DeviceScale = defaults.DeviceScale
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// ApplyEnv fills the collaborator settings that are still empty from the
// environment: DATABASE_URL, GEMINI_API_KEY, CHROME_PATH, ARCHIVE_DIR and S3_BUCKET.
func (c *Config) ApplyEnv() {
	mergeString(&c.DatabaseURL, os.Getenv("DATABASE_URL"))
	mergeString(&c.APIKey, os.Getenv("GEMINI_API_KEY"))
	mergeString(&c.ChromePath, os.Getenv("CHROME_PATH"))
	if c.S3Bucket == "" {
		mergeString(&c.ArchiveDir, os.Getenv("ARCHIVE_DIR"))
	}
	if c.ArchiveDir == "" {
		mergeString(&c.S3Bucket, os.Getenv("S3_BUCKET"))
		mergeString(&c.S3Region, os.Getenv("AWS_REGION"))
	}
}

// ExportTimeout returns the per-export deadline
func (c *Config) ExportTimeout() time.Duration {
	return time.Duration(c.ExportTimeoutSeconds) * time.Second
}

// EnhanceTimeout returns the per-enhancement deadline
func (c *Config) EnhanceTimeout() time.Duration {
	return time.Duration(c.EnhanceTimeoutSeconds) * time.Second
}

// SessionIdle returns how long an unused session is kept
func (c *Config) SessionIdle() time.Duration {
	return time.Duration(c.SessionIdleMinutes) * time.Minute
}

// Quotas returns the plan quotas, starting from the defaults
func (c *Config) Quotas() subscription.Quotas {
	q := subscription.DefaultQuotas()
	free, pro := q[subscription.TierFree], q[subscription.TierPro]
	overrideInt(&free.Resumes, c.FreeResumes)
	overrideInt(&free.CoverLetters, c.FreeCoverLetters)
	overrideInt(&pro.Resumes, c.ProResumes)
	overrideInt(&pro.CoverLetters, c.ProCoverLetters)
	q[subscription.TierFree], q[subscription.TierPro] = free, pro
	return q
}

func mergeString(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

func mergeInt(dst *int, v int) {
	if *dst == 0 {
		*dst = v
	}
}

func overrideInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}
