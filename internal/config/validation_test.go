package config

import (
	"strings"
	"testing"
)

// validConfig returns a configuration that passes validation.
func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Jira.URL = "https://jira.example.com"
	cfg.Jira.User = "alice"
	cfg.Jira.Password = "secret"
	return cfg
}

func TestValidate_OK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("Validate() failed on valid config: %v", err)
	}
}

func TestValidate_CookieInsteadOfCredentials(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Jira.URL = "https://jira.example.com"
	cfg.Jira.Cookie = "ABC123"

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() should accept cookie-only auth: %v", err)
	}
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{
			name:      "missing url",
			mutate:    func(c *Config) { c.Jira.URL = "" },
			wantField: "jira.url",
		},
		{
			name:      "url without scheme",
			mutate:    func(c *Config) { c.Jira.URL = "jira.example.com" },
			wantField: "jira.url",
		},
		{
			name:      "missing user without cookie",
			mutate:    func(c *Config) { c.Jira.User = "" },
			wantField: "jira.user",
		},
		{
			name:      "missing password without cookie",
			mutate:    func(c *Config) { c.Jira.Password = "" },
			wantField: "jira.password",
		},
		{
			name:      "negative max depth",
			mutate:    func(c *Config) { c.Traversal.MaxDepth = -1 },
			wantField: "traversal.max_depth",
		},
		{
			name:      "negative retries",
			mutate:    func(c *Config) { c.Traversal.Retries = -2 },
			wantField: "traversal.retries",
		},
		{
			name:      "missing output file",
			mutate:    func(c *Config) { c.Output.File = "" },
			wantField: "output.file",
		},
		{
			name: "missing chart url in render mode",
			mutate: func(c *Config) {
				c.Output.Local = false
				c.Output.ChartURL = ""
			},
			wantField: "output.chart_url",
		},
		{
			name:      "bad log level",
			mutate:    func(c *Config) { c.Logging.Level = "loud" },
			wantField: "logging.level",
		},
		{
			name:      "bad log format",
			mutate:    func(c *Config) { c.Logging.Format = "xml" },
			wantField: "logging.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() should have failed")
			}
			if !strings.Contains(err.Error(), tt.wantField) {
				t.Errorf("error %q does not name field %q", err.Error(), tt.wantField)
			}
		})
	}
}

func TestValidate_LocalModeNeedsNoChartURL(t *testing.T) {
	cfg := validConfig()
	cfg.Output.Local = true
	cfg.Output.ChartURL = ""

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
}

func TestValidationErrors_Message(t *testing.T) {
	errs := ValidationErrors{
		{Field: "jira.url", Message: "server URL is required"},
		{Field: "output.file", Message: "output file path is required"},
	}

	msg := errs.Error()
	if !strings.Contains(msg, "validation failed") {
		t.Errorf("message = %q", msg)
	}
	if !strings.Contains(msg, "jira.url: server URL is required") {
		t.Errorf("message missing first error: %q", msg)
	}

	if (ValidationErrors{}).Error() != "" {
		t.Error("empty ValidationErrors should render empty message")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Traversal.MaxDepth != 3 {
		t.Errorf("default max_depth = %d", cfg.Traversal.MaxDepth)
	}
	if !cfg.Traversal.TraverseSubtasks || !cfg.Traversal.TraverseClosed || !cfg.Traversal.TraverseOtherProjects {
		t.Errorf("traversal defaults = %+v", cfg.Traversal)
	}
	if cfg.Output.File != "issue_graph.png" || cfg.Output.NodeShape != "box" {
		t.Errorf("output defaults = %+v", cfg.Output)
	}
	if cfg.Output.ChartURL == "" {
		t.Error("default chart_url is empty")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("logging defaults = %+v", cfg.Logging)
	}
}
