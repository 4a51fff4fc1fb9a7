package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds everything an extraction run needs. Values come from an
// optional YAML file, overridden by CLI flags; the API key additionally falls
// back to the FRESHKB_API_KEY environment variable.
type Config struct {
	Domain  string `yaml:"domain"`
	APIKey  string `yaml:"api_key"`
	BaseDir string `yaml:"base_dir"`

	ExportName string `yaml:"export_name,omitempty"`
	LogFile    string `yaml:"log_file"`
	LogLevel   string `yaml:"log_level,omitempty"`
	Catalog    string `yaml:"catalog,omitempty"`

	SavePDF      bool `yaml:"save_pdf"`
	SaveHTML     bool `yaml:"save_html"`
	SaveText     bool `yaml:"save_text"`
	SaveMarkdown bool `yaml:"save_markdown"`
	Attachments  bool `yaml:"attachments"`

	RequestTimeout string `yaml:"request_timeout,omitempty"`
}

// Default returns a config with the same defaults the original tool shipped.
func Default() Config {
	return Config{
		BaseDir:        "knowledge_base",
		LogFile:        "kb_extraction.log",
		SavePDF:        true,
		SaveHTML:       true,
		SaveText:       true,
		SaveMarkdown:   true,
		Attachments:    true,
		RequestTimeout: "30s",
	}
}

// Load reads a YAML config file over the defaults. An empty path returns the
// defaults untouched.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// ResolveAPIKey applies the environment fallback for the secret.
func (c *Config) ResolveAPIKey() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	return os.Getenv("FRESHKB_API_KEY")
}

// Timeout parses RequestTimeout, falling back to 30s on bad input.
func (c *Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// Validate checks that the fields a run cannot proceed without are present.
func (c *Config) Validate() error {
	if c.Domain == "" {
		return fmt.Errorf("domain is required (--domain or config file)")
	}
	if c.ResolveAPIKey() == "" {
		return fmt.Errorf("API key is required (--api-key, config file, or FRESHKB_API_KEY)")
	}
	return nil
}
