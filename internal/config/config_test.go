package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-cli-collective/wtx/pkg/wikitext"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
		errMsg  string
	}{
		{
			name:    "empty config",
			config:  Config{},
			wantErr: false,
		},
		{
			name: "full config",
			config: Config{
				APIURL:       "https://en.wikipedia.org/w/api.php",
				Markers:      "math,code",
				DumpDate:     "2024-06-15",
				Workers:      4,
				OutputFormat: "markdown",
			},
			wantErr: false,
		},
		{
			name:    "invalid URL scheme",
			config:  Config{APIURL: "ftp://en.wikipedia.org/w/api.php"},
			wantErr: true,
			errMsg:  "api_url must use http or https",
		},
		{
			name:    "URL without host",
			config:  Config{APIURL: "api.php"},
			wantErr: true,
			errMsg:  "api_url is not a valid URL",
		},
		{
			name:    "unknown marker",
			config:  Config{Markers: "math,bogus"},
			wantErr: true,
			errMsg:  "bogus",
		},
		{
			name:    "bad dump date",
			config:  Config{DumpDate: "15/06/2024"},
			wantErr: true,
			errMsg:  "dump_date must be YYYY-MM-DD",
		},
		{
			name:    "negative workers",
			config:  Config{Workers: -1},
			wantErr: true,
			errMsg:  "workers must not be negative",
		},
		{
			name:    "unknown output format",
			config:  Config{OutputFormat: "pdf"},
			wantErr: true,
			errMsg:  "invalid output_format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_RequireAPI(t *testing.T) {
	cfg := Config{}
	err := cfg.RequireAPI()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_url is required")

	cfg.APIURL = "https://en.wikipedia.org/w/api.php"
	assert.NoError(t, cfg.RequireAPI())
}

func TestFormatNames(t *testing.T) {
	assert.Equal(t, []string{"clean", "html", "json", "markdown", "text"}, FormatNames())
	assert.True(t, ValidFormat("json"))
	assert.False(t, ValidFormat("JSON"))
}

func TestConfig_NormalizeURL(t *testing.T) {
	tests := []struct {
		name     string
		inputURL string
		expected string
	}{
		{
			name:     "already an endpoint",
			inputURL: "https://en.wikipedia.org/w/api.php",
			expected: "https://en.wikipedia.org/w/api.php",
		},
		{
			name:     "bare wiki URL",
			inputURL: "https://en.wikipedia.org",
			expected: "https://en.wikipedia.org/w/api.php",
		},
		{
			name:     "trailing slash",
			inputURL: "https://en.wikipedia.org/",
			expected: "https://en.wikipedia.org/w/api.php",
		},
		{
			name:     "custom script path",
			inputURL: "https://wiki.example.com/api.php",
			expected: "https://wiki.example.com/api.php",
		},
		{
			name:     "empty stays empty",
			inputURL: "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{APIURL: tt.inputURL}
			cfg.NormalizeURL()
			assert.Equal(t, tt.expected, cfg.APIURL)
		})
	}
}

func TestConfig_ToOptions(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := Config{}
		opts, err := cfg.ToOptions()
		require.NoError(t, err)
		assert.True(t, opts.ExpandTemplates)
		assert.False(t, opts.ExtractCitations)
		assert.Equal(t, wikitext.AllMarkers, opts.Markers)
		assert.True(t, opts.DumpDate.IsZero())
	})

	t.Run("all settings", func(t *testing.T) {
		cfg := Config{
			Markers:                  "none",
			NoTemplates:              true,
			ExtractCitations:         true,
			PreserveUnknownTemplates: true,
			DumpDate:                 "2024-06-15",
		}
		opts, err := cfg.ToOptions()
		require.NoError(t, err)
		assert.False(t, opts.ExpandTemplates)
		assert.True(t, opts.ExtractCitations)
		assert.True(t, opts.PreserveUnknownTemplates)
		assert.Equal(t, wikitext.NoMarkers, opts.Markers)
		assert.Equal(t, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), opts.DumpDate)
	})

	t.Run("bad markers", func(t *testing.T) {
		cfg := Config{Markers: "nope"}
		_, err := cfg.ToOptions()
		require.Error(t, err)
	})
}

func TestConfig_LoadFromEnv(t *testing.T) {
	t.Run("loads all env vars", func(t *testing.T) {
		t.Setenv("WTX_API_URL", "https://de.wikipedia.org/w/api.php")
		t.Setenv("WTX_USER_AGENT", "env-agent/1.0")
		t.Setenv("WTX_USERNAME", "env-user")
		t.Setenv("WTX_PASSWORD", "env-pass")
		t.Setenv("WTX_MARKERS", "math")
		t.Setenv("WTX_DUMP_DATE", "2020-01-01")
		t.Setenv("WTX_WORKERS", "8")

		cfg := &Config{}
		cfg.LoadFromEnv()

		assert.Equal(t, "https://de.wikipedia.org/w/api.php", cfg.APIURL)
		assert.Equal(t, "env-agent/1.0", cfg.UserAgent)
		assert.Equal(t, "env-user", cfg.Username)
		assert.Equal(t, "env-pass", cfg.Password)
		assert.Equal(t, "math", cfg.Markers)
		assert.Equal(t, "2020-01-01", cfg.DumpDate)
		assert.Equal(t, 8, cfg.Workers)
	})

	t.Run("env vars override existing values", func(t *testing.T) {
		t.Setenv("WTX_API_URL", "https://override.example.org/w/api.php")
		t.Setenv("WTX_MARKERS", "")
		t.Setenv("WTX_WORKERS", "many")

		cfg := &Config{
			APIURL:  "https://original.example.org/w/api.php",
			Markers: "code",
			Workers: 2,
		}
		cfg.LoadFromEnv()

		assert.Equal(t, "https://override.example.org/w/api.php", cfg.APIURL)
		// Empty and unparsable values do not override
		assert.Equal(t, "code", cfg.Markers)
		assert.Equal(t, 2, cfg.Workers)
	})

	t.Run("MEDIAWIKI_* used when WTX_* not set", func(t *testing.T) {
		t.Setenv("WTX_API_URL", "")
		t.Setenv("WTX_USER_AGENT", "")
		t.Setenv("MEDIAWIKI_API_URL", "https://shared.example.org/w/api.php")
		t.Setenv("MEDIAWIKI_USER_AGENT", "shared-agent")

		cfg := &Config{}
		cfg.LoadFromEnv()

		assert.Equal(t, "https://shared.example.org/w/api.php", cfg.APIURL)
		assert.Equal(t, "shared-agent", cfg.UserAgent)
	})

	t.Run("WTX_* takes precedence over MEDIAWIKI_*", func(t *testing.T) {
		t.Setenv("WTX_API_URL", "https://wtx.example.org/w/api.php")
		t.Setenv("MEDIAWIKI_API_URL", "https://shared.example.org/w/api.php")

		cfg := &Config{}
		cfg.LoadFromEnv()

		assert.Equal(t, "https://wtx.example.org/w/api.php", cfg.APIURL)
	})
}

func TestDefaultConfigPath(t *testing.T) {
	t.Run("home directory", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		path := DefaultConfigPath()

		home, err := os.UserHomeDir()
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(path, home))
		assert.Contains(t, path, "wtx")
		assert.Equal(t, ".yml", filepath.Ext(path))
	})

	t.Run("XDG_CONFIG_HOME", func(t *testing.T) {
		dir := t.TempDir()
		t.Setenv("XDG_CONFIG_HOME", dir)
		assert.Equal(t, filepath.Join(dir, "wtx", "config.yml"), DefaultConfigPath())
	})
}

func TestConfig_Save_and_Load(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "config.yml")

	original := Config{
		APIURL:           "https://en.wikipedia.org/w/api.php",
		UserAgent:        "wtx-test/1.0",
		Markers:          "math,code",
		ExtractCitations: true,
		DumpDate:         "2024-06-15",
		Workers:          3,
		OutputFormat:     "json",
	}

	err := original.Save(configPath)
	require.NoError(t, err)

	info, err := os.Stat(configPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, original, *loaded)
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yml")
	require.Error(t, err)
}

func TestLoadWithEnv(t *testing.T) {
	t.Setenv("WTX_API_URL", "")
	t.Setenv("MEDIAWIKI_API_URL", "")

	t.Run("missing file gives empty config", func(t *testing.T) {
		cfg, err := LoadWithEnv(filepath.Join(t.TempDir(), "none.yml"))
		require.NoError(t, err)
		assert.Empty(t, cfg.APIURL)
	})

	t.Run("malformed file is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yml")
		require.NoError(t, os.WriteFile(path, []byte("workers: [1, 2\n"), 0600))
		_, err := LoadWithEnv(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse config file")
	})
}

func TestGetEnvWithFallback(t *testing.T) {
	t.Run("returns primary when set", func(t *testing.T) {
		t.Setenv("TEST_PRIMARY", "primary-value")
		t.Setenv("TEST_FALLBACK", "fallback-value")
		assert.Equal(t, "primary-value", getEnvWithFallback("TEST_PRIMARY", "TEST_FALLBACK"))
	})

	t.Run("returns fallback when primary empty", func(t *testing.T) {
		t.Setenv("TEST_PRIMARY", "")
		t.Setenv("TEST_FALLBACK", "fallback-value")
		assert.Equal(t, "fallback-value", getEnvWithFallback("TEST_PRIMARY", "TEST_FALLBACK"))
	})

	t.Run("returns empty when both empty", func(t *testing.T) {
		t.Setenv("TEST_PRIMARY", "")
		t.Setenv("TEST_FALLBACK", "")
		assert.Equal(t, "", getEnvWithFallback("TEST_PRIMARY", "TEST_FALLBACK"))
	})
}
