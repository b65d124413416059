package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the landing page server
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Klaviyo KlaviyoConfig `yaml:"klaviyo"`
	Lead    LeadConfig    `yaml:"lead"`
	Assets  AssetsConfig  `yaml:"assets"`
	Pages   PagesConfig   `yaml:"pages"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port                int    `yaml:"port"`
	Host                string `yaml:"host"`
	ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `yaml:"write_timeout_seconds"`
	IdleTimeoutSeconds  int    `yaml:"idle_timeout_seconds"`
}

// GetHost returns the server host, with container detection
func (c ServerConfig) GetHost() string {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	return c.Host
}

// Addr returns host:port for http.Server
func (c ServerConfig) Addr() string {
	return c.GetHost() + ":" + strconv.Itoa(c.Port)
}

func (c ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSeconds) * time.Second
}

func (c ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutSeconds) * time.Second
}

func (c ServerConfig) IdleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutSeconds) * time.Second
}

// KlaviyoConfig holds Klaviyo API configuration
type KlaviyoConfig struct {
	APIKey              string `yaml:"api_key"`
	ListID              string `yaml:"list_id"`
	BaseURL             string `yaml:"base_url"`
	Revision            string `yaml:"revision"`
	TimeoutSeconds      int    `yaml:"timeout_seconds"`
	EventTimeoutSeconds int    `yaml:"event_timeout_seconds"`
}

// Timeout returns the per-call timeout as a duration
func (c KlaviyoConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// EventTimeout bounds the detached capture-event call
func (c KlaviyoConfig) EventTimeout() time.Duration {
	return time.Duration(c.EventTimeoutSeconds) * time.Second
}

// LeadConfig holds the descriptive properties stamped on every captured lead
type LeadConfig struct {
	LeadSource    string `yaml:"lead_source"`
	Campaign      string `yaml:"campaign"`
	FormType      string `yaml:"form_type"`
	EventSource   string `yaml:"event_source"`
	EventCampaign string `yaml:"event_campaign"`
	MetricName    string `yaml:"metric_name"`
}

// AssetsConfig selects where static files are served from
type AssetsConfig struct {
	Type          string `yaml:"type"` // "local" or "s3"
	LocalPath     string `yaml:"local_path"`
	S3Bucket      string `yaml:"s3_bucket"`
	S3Prefix      string `yaml:"s3_prefix"`
	AWSRegion     string `yaml:"aws_region"`
	AWSProfile    string `yaml:"aws_profile"` // Empty string uses default credential chain (IAM role on ECS)
	IndexDocument string `yaml:"index_document"`
}

// GetAWSProfile returns the AWS profile, with environment variable override
func (c AssetsConfig) GetAWSProfile() string {
	if envProfile := os.Getenv("AWS_PROFILE_OVERRIDE"); envProfile != "" {
		if envProfile == "none" || envProfile == "iam" {
			return ""
		}
		return envProfile
	}
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return ""
	}
	return c.AWSProfile
}

// Section is one page fragment injected into the placeholder with the same id
type Section struct {
	ID   string `yaml:"id" json:"id"`
	File string `yaml:"file" json:"file"`
}

// PagesConfig holds the section manifest
type PagesConfig struct {
	ServerSideSections bool      `yaml:"server_side_sections"`
	Sections           []Section `yaml:"sections"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level     string `yaml:"level"`
	RedactPII *bool  `yaml:"redact_pii"`
}

// Redact reports whether PII redaction is on (default true)
func (c LoggingConfig) Redact() bool {
	return c.RedactPII == nil || *c.RedactPII
}

// DefaultSections is the landing page's section order
var DefaultSections = []Section{
	{ID: "top-bar", File: "includes/top-bar.html"},
	{ID: "hero", File: "sections/hero.html"},
	{ID: "avant-apres", File: "sections/avant-apres.html"},
	{ID: "comment-ca-marche", File: "sections/comment-ca-marche.html"},
	{ID: "modules", File: "sections/modules.html"},
	{ID: "pour-qui", File: "sections/pour-qui.html"},
	{ID: "temoignages", File: "sections/temoignages.html"},
	{ID: "tarifs", File: "sections/tarifs.html"},
	{ID: "faq", File: "sections/faq.html"},
	{ID: "apropos", File: "sections/apropos.html"},
	{ID: "final-cta", File: "sections/final-cta.html"},
	{ID: "footer", File: "sections/footer.html"},
}

// Load reads and parses the configuration file. A missing file yields
// the defaults.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3000
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.ReadTimeoutSeconds == 0 {
		cfg.Server.ReadTimeoutSeconds = 5
	}
	if cfg.Server.WriteTimeoutSeconds == 0 {
		cfg.Server.WriteTimeoutSeconds = 30
	}
	if cfg.Server.IdleTimeoutSeconds == 0 {
		cfg.Server.IdleTimeoutSeconds = 120
	}

	if cfg.Klaviyo.ListID == "" {
		cfg.Klaviyo.ListID = "SnLai2"
	}
	if cfg.Klaviyo.BaseURL == "" {
		cfg.Klaviyo.BaseURL = "https://a.klaviyo.com/api"
	}
	if cfg.Klaviyo.Revision == "" {
		cfg.Klaviyo.Revision = "2024-10-15"
	}
	if cfg.Klaviyo.TimeoutSeconds == 0 {
		cfg.Klaviyo.TimeoutSeconds = 10
	}
	if cfg.Klaviyo.EventTimeoutSeconds == 0 {
		cfg.Klaviyo.EventTimeoutSeconds = 5
	}

	if cfg.Lead.LeadSource == "" {
		cfg.Lead.LeadSource = "Landing Page Formation"
	}
	if cfg.Lead.Campaign == "" {
		cfg.Lead.Campaign = "Professeur Particulier 5000€"
	}
	if cfg.Lead.FormType == "" {
		cfg.Lead.FormType = "Exit Intent Modal"
	}
	if cfg.Lead.EventSource == "" {
		cfg.Lead.EventSource = "exit_intent_modal"
	}
	if cfg.Lead.EventCampaign == "" {
		cfg.Lead.EventCampaign = "professeur_particulier_5000"
	}
	if cfg.Lead.MetricName == "" {
		cfg.Lead.MetricName = "Lead Captured"
	}

	if cfg.Assets.Type == "" {
		cfg.Assets.Type = "local"
	}
	if cfg.Assets.LocalPath == "" {
		cfg.Assets.LocalPath = "./web"
	}
	if cfg.Assets.AWSRegion == "" {
		cfg.Assets.AWSRegion = "us-west-2"
	}
	if cfg.Assets.IndexDocument == "" {
		cfg.Assets.IndexDocument = "index.html"
	}

	if len(cfg.Pages.Sections) == 0 {
		cfg.Pages.Sections = append([]Section(nil), DefaultSections...)
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// It loads a .env file (if present) before reading env vars, so the
// Klaviyo key can live in .env locally and in real env vars in production.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("KLAVIYO_PRIVATE_KEY"); v != "" {
		cfg.Klaviyo.APIKey = v
	}
	if v := os.Getenv("KLAVIYO_LIST_ID"); v != "" {
		cfg.Klaviyo.ListID = v
	}
	if v := os.Getenv("KLAVIYO_BASE_URL"); v != "" {
		cfg.Klaviyo.BaseURL = v
	}
	if v := os.Getenv("ASSETS_TYPE"); v != "" {
		cfg.Assets.Type = v
	}
	if v := os.Getenv("ASSETS_PATH"); v != "" {
		cfg.Assets.LocalPath = v
	}
	if v := os.Getenv("ASSETS_S3_BUCKET"); v != "" {
		cfg.Assets.S3Bucket = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	return cfg, nil
}
