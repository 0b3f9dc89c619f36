// Package config provides configuration management for wtx.
package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/open-cli-collective/wtx/pkg/render"
	"github.com/open-cli-collective/wtx/pkg/wikitext"
)

// DateLayout is the layout of dump_date.
const DateLayout = "2006-01-02"

// Config holds the wtx configuration.
type Config struct {
	APIURL    string `yaml:"api_url,omitempty"`
	UserAgent string `yaml:"user_agent,omitempty"`
	Username  string `yaml:"username,omitempty"`
	Password  string `yaml:"password,omitempty"`

	// Markers is a comma-separated marker list, "all" or "none". Empty
	// keeps every marker.
	Markers                  string `yaml:"markers,omitempty"`
	NoTemplates              bool   `yaml:"no_templates,omitempty"`
	ExtractCitations         bool   `yaml:"extract_citations,omitempty"`
	PreserveUnknownTemplates bool   `yaml:"preserve_unknown_templates,omitempty"`
	DumpDate                 string `yaml:"dump_date,omitempty"`

	Workers      int    `yaml:"workers,omitempty"`
	OutputFormat string `yaml:"output_format,omitempty"`
}

// engineFormats are output formats handled without the renderer: the
// cleaned text itself and the classified elements as JSON.
var engineFormats = []string{"clean", "json"}

// FormatNames lists every output format accepted by clean and fetch.
func FormatNames() []string {
	names := append(render.FormatNames(), engineFormats...)
	sort.Strings(names)
	return names
}

// ValidFormat reports whether name is an accepted output format.
func ValidFormat(name string) bool {
	for _, f := range FormatNames() {
		if f == name {
			return true
		}
	}
	return false
}

// Validate checks that every set field holds a usable value.
func (c *Config) Validate() error {
	if c.APIURL != "" {
		u, err := url.Parse(c.APIURL)
		if err != nil || u.Host == "" {
			return fmt.Errorf("api_url is not a valid URL: %q", c.APIURL)
		}
		if u.Scheme != "https" && u.Scheme != "http" {
			return errors.New("api_url must use http or https")
		}
	}
	if c.Markers != "" {
		if _, err := wikitext.ParseMarkers(c.Markers); err != nil {
			return err
		}
	}
	if c.DumpDate != "" {
		if _, err := time.Parse(DateLayout, c.DumpDate); err != nil {
			return fmt.Errorf("dump_date must be YYYY-MM-DD: %q", c.DumpDate)
		}
	}
	if c.Workers < 0 {
		return errors.New("workers must not be negative")
	}
	if c.OutputFormat != "" && !ValidFormat(c.OutputFormat) {
		return fmt.Errorf("invalid output_format %q (valid: %s)", c.OutputFormat, strings.Join(FormatNames(), ", "))
	}
	return nil
}

// RequireAPI checks that a wiki endpoint is configured.
func (c *Config) RequireAPI() error {
	if c.APIURL == "" {
		return errors.New("api_url is required (run 'wtx init' or set WTX_API_URL)")
	}
	return c.Validate()
}

// NormalizeURL points a bare wiki URL at its api.php endpoint.
func (c *Config) NormalizeURL() {
	if c.APIURL == "" {
		return
	}
	c.APIURL = strings.TrimSuffix(c.APIURL, "/")
	if !strings.HasSuffix(c.APIURL, "api.php") {
		c.APIURL = c.APIURL + "/w/api.php"
	}
}

// ToOptions converts the engine settings to wikitext options.
func (c *Config) ToOptions() (wikitext.Options, error) {
	opts := wikitext.DefaultOptions()
	opts.ExpandTemplates = !c.NoTemplates
	opts.ExtractCitations = c.ExtractCitations
	opts.PreserveUnknownTemplates = c.PreserveUnknownTemplates

	if c.Markers != "" {
		markers, err := wikitext.ParseMarkers(c.Markers)
		if err != nil {
			return opts, err
		}
		opts.Markers = markers
	}
	if c.DumpDate != "" {
		date, err := time.Parse(DateLayout, c.DumpDate)
		if err != nil {
			return opts, fmt.Errorf("failed to parse dump_date: %w", err)
		}
		opts.DumpDate = date
	}
	return opts, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables override existing values only if set and non-empty.
// Precedence: WTX_* → MEDIAWIKI_* → existing config value
func (c *Config) LoadFromEnv() {
	if v := getEnvWithFallback("WTX_API_URL", "MEDIAWIKI_API_URL"); v != "" {
		c.APIURL = v
	}
	if v := getEnvWithFallback("WTX_USER_AGENT", "MEDIAWIKI_USER_AGENT"); v != "" {
		c.UserAgent = v
	}
	if v := os.Getenv("WTX_USERNAME"); v != "" {
		c.Username = v
	}
	if v := os.Getenv("WTX_PASSWORD"); v != "" {
		c.Password = v
	}
	if v := os.Getenv("WTX_MARKERS"); v != "" {
		c.Markers = v
	}
	if v := os.Getenv("WTX_DUMP_DATE"); v != "" {
		c.DumpDate = v
	}
	if v := os.Getenv("WTX_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("WARN: ignoring WTX_WORKERS=%q: not a number", v)
		} else {
			c.Workers = n
		}
	}
}

// getEnvWithFallback returns the value of the primary env var, or the fallback if primary is empty.
func getEnvWithFallback(primary, fallback string) string {
	if v := os.Getenv(primary); v != "" {
		return v
	}
	return os.Getenv(fallback)
}

// DefaultConfigPath returns the default configuration file path.
func DefaultConfigPath() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "wtx", "config.yml")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".wtx", "config.yml")
	}

	return filepath.Join(home, ".config", "wtx", "config.yml")
}

// Save writes the configuration to the specified path.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// The file may hold a password.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Load reads the configuration from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// LoadWithEnv loads configuration from file and overrides with environment variables.
// A missing file yields an empty config; a malformed one is an error.
func LoadWithEnv(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		cfg = &Config{}
	}

	cfg.LoadFromEnv()
	return cfg, nil
}
