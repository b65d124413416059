package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  port: 9090
  host: "0.0.0.0"

klaviyo:
  api_key: "pk_test"
  list_id: "AbC123"
  base_url: "http://klaviyo.local/api"
  timeout_seconds: 3

lead:
  campaign: "Spring Launch"

assets:
  type: "s3"
  s3_bucket: "landing-assets"
  s3_prefix: "site/"

pages:
  server_side_sections: true
  sections:
    - id: hero
      file: sections/hero.html
    - id: footer
      file: sections/footer.html

logging:
  level: debug
  redact_pii: false
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)

	assert.Equal(t, "pk_test", cfg.Klaviyo.APIKey)
	assert.Equal(t, "AbC123", cfg.Klaviyo.ListID)
	assert.Equal(t, "http://klaviyo.local/api", cfg.Klaviyo.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Klaviyo.Timeout())
	assert.Equal(t, "2024-10-15", cfg.Klaviyo.Revision)

	assert.Equal(t, "Spring Launch", cfg.Lead.Campaign)
	assert.Equal(t, "Landing Page Formation", cfg.Lead.LeadSource)

	assert.Equal(t, "s3", cfg.Assets.Type)
	assert.Equal(t, "landing-assets", cfg.Assets.S3Bucket)
	assert.Equal(t, "site/", cfg.Assets.S3Prefix)

	assert.True(t, cfg.Pages.ServerSideSections)
	require.Len(t, cfg.Pages.Sections, 2)
	assert.Equal(t, Section{ID: "hero", File: "sections/hero.html"}, cfg.Pages.Sections[0])

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Redact())
}

func TestLoadDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("{}"), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout())
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout())
	assert.Equal(t, 120*time.Second, cfg.Server.IdleTimeout())

	assert.Empty(t, cfg.Klaviyo.APIKey)
	assert.Equal(t, "SnLai2", cfg.Klaviyo.ListID)
	assert.Equal(t, "https://a.klaviyo.com/api", cfg.Klaviyo.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Klaviyo.Timeout())
	assert.Equal(t, 5*time.Second, cfg.Klaviyo.EventTimeout())

	assert.Equal(t, "Lead Captured", cfg.Lead.MetricName)
	assert.Equal(t, "exit_intent_modal", cfg.Lead.EventSource)

	assert.Equal(t, "local", cfg.Assets.Type)
	assert.Equal(t, "./web", cfg.Assets.LocalPath)
	assert.Equal(t, "index.html", cfg.Assets.IndexDocument)

	assert.False(t, cfg.Pages.ServerSideSections)
	assert.Equal(t, DefaultSections, cfg.Pages.Sections)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Redact())
}

func TestLoadFileNotFound(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestLoadInvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("server: [unclosed"), 0644))

	_, err := Load(configPath)
	assert.Error(t, err)
}

func TestLoadFromEnv(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("klaviyo:\n  api_key: file-key\n"), 0644))

	t.Setenv("KLAVIYO_PRIVATE_KEY", "env-key")
	t.Setenv("KLAVIYO_LIST_ID", "EnvList")
	t.Setenv("PORT", "8088")
	t.Setenv("ASSETS_PATH", "/srv/www")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := LoadFromEnv(configPath)
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.Klaviyo.APIKey)
	assert.Equal(t, "EnvList", cfg.Klaviyo.ListID)
	assert.Equal(t, 8088, cfg.Server.Port)
	assert.Equal(t, "/srv/www", cfg.Assets.LocalPath)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestServerAddr(t *testing.T) {
	t.Setenv("SERVER_HOST", "")
	t.Setenv("ECS_CONTAINER_METADATA_URI", "")
	t.Setenv("AWS_EXECUTION_ENV", "")

	c := ServerConfig{Host: "127.0.0.1", Port: 4000}
	assert.Equal(t, "127.0.0.1:4000", c.Addr())

	t.Setenv("SERVER_HOST", "0.0.0.0")
	assert.Equal(t, "0.0.0.0:4000", c.Addr())
}

func TestGetAWSProfile(t *testing.T) {
	t.Setenv("ECS_CONTAINER_METADATA_URI", "")
	t.Setenv("AWS_EXECUTION_ENV", "")
	t.Setenv("AWS_PROFILE_OVERRIDE", "")

	c := AssetsConfig{AWSProfile: "marketing"}
	assert.Equal(t, "marketing", c.GetAWSProfile())

	t.Setenv("AWS_PROFILE_OVERRIDE", "iam")
	assert.Equal(t, "", c.GetAWSProfile())
}
