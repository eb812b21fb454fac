package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-studio/internal/subscription"
	"github.com/jonathan/resume-studio/internal/types"
)

func TestLoadConfig_ValidJSON(t *testing.T) {
	content := `{
		"default_template": "creative",
		"export_strategy": "raster",
		"export_timeout_seconds": 20,
		"free_resumes": 5,
		"archive_dir": "/tmp/exports",
		"verbose": true
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "creative", cfg.DefaultTemplate)
	assert.Equal(t, "raster", cfg.ExportStrategy)
	assert.Equal(t, 20*time.Second, cfg.ExportTimeout())
	assert.Equal(t, 5, cfg.FreeResumes)
	assert.Equal(t, "/tmp/exports", cfg.ArchiveDir)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(`{ invalid json }`), 0644))

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"defaults", Defaults(), ""},
		{"empty", Config{}, ""},
		{"unknown strategy", Config{ExportStrategy: "bitmap"}, "export_strategy"},
		{"two archives", Config{ArchiveDir: "/tmp/a", S3Bucket: "b"}, "mutually exclusive"},
		{"negative attempts", Config{RasterAttempts: -1}, "raster_attempts"},
		{"negative quota", Config{FreeCoverLetters: -2}, "free_cover_letters"},
		{"negative scale", Config{DeviceScale: -1}, "device_scale"},
		{"bad port", Config{Port: 70000}, "port"},
		{"missing chrome", Config{ChromePath: "/nonexistent/chrome"}, "chrome binary not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	partial := Config{
		DefaultTemplate: "elegant",
		RasterAttempts:  5,
	}

	merged := partial.MergeWithDefaults(Defaults())

	// Custom values should be preserved
	assert.Equal(t, "elegant", merged.DefaultTemplate)
	assert.Equal(t, 5, merged.RasterAttempts)

	// Default values should fill in empty fields
	assert.Equal(t, 60, merged.ExportTimeoutSeconds)
	assert.Equal(t, 2.0, merged.DeviceScale)
	assert.Equal(t, 8080, merged.Port)
	assert.Equal(t, 2*time.Hour, merged.SessionIdle())
	assert.Equal(t, 30*time.Second, merged.EnhanceTimeout())
}

func TestMergeWithDefaults_EmptyDefaults(t *testing.T) {
	cfg := Config{DefaultTemplate: "creative"}

	merged := cfg.MergeWithDefaults(Config{})

	assert.Equal(t, "creative", merged.DefaultTemplate)
	assert.Zero(t, merged.Port)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("CHROME_PATH", "")
	t.Setenv("ARCHIVE_DIR", "")
	t.Setenv("S3_BUCKET", "env-bucket")
	t.Setenv("AWS_REGION", "eu-west-1")

	cfg := Config{APIKey: "file-key"}
	cfg.ApplyEnv()

	assert.Equal(t, "postgres://env", cfg.DatabaseURL)
	assert.Equal(t, "file-key", cfg.APIKey, "file values win over the environment")
	assert.Equal(t, "env-bucket", cfg.S3Bucket)
	assert.Equal(t, "eu-west-1", cfg.S3Region)
}

func TestApplyEnv_ArchiveDirBlocksBucket(t *testing.T) {
	t.Setenv("S3_BUCKET", "env-bucket")

	cfg := Config{ArchiveDir: "/tmp/exports"}
	cfg.ApplyEnv()

	assert.Empty(t, cfg.S3Bucket)
	assert.NoError(t, cfg.Validate())
}

func TestQuotas(t *testing.T) {
	cfg := Config{FreeResumes: 4}
	q := cfg.Quotas()

	assert.Equal(t, 4, q.Limit(types.KindResume, subscription.TierFree))
	assert.Equal(t, 3, q.Limit(types.KindCoverLetter, subscription.TierFree))
	assert.Equal(t, 50, q.Limit(types.KindResume, subscription.TierPro))
	assert.Equal(t, subscription.Unlimited, q.Limit(types.KindResume, subscription.TierEnterprise))
}
