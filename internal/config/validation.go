package config

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// Validate checks the configuration for required fields and valid values.
func (c *Config) Validate() error {
	var errors ValidationErrors

	if err := c.validateJira(); err != nil {
		errors = append(errors, err...)
	}

	if err := c.validateTraversal(); err != nil {
		errors = append(errors, err...)
	}

	if err := c.validateOutput(); err != nil {
		errors = append(errors, err...)
	}

	if err := c.validateLogging(); err != nil {
		errors = append(errors, err...)
	}

	if len(errors) > 0 {
		return errors
	}
	return nil
}

func (c *Config) validateJira() ValidationErrors {
	var errors ValidationErrors

	if c.Jira.URL == "" {
		errors = append(errors, ValidationError{
			Field:   "jira.url",
			Message: "server URL is required",
		})
	} else if u, err := url.Parse(c.Jira.URL); err != nil || u.Scheme == "" || u.Host == "" {
		errors = append(errors, ValidationError{
			Field:   "jira.url",
			Message: "server URL must include a scheme and host (e.g. https://jira.example.com)",
		})
	}

	// Either a session cookie or basic credentials must be present.
	if c.Jira.Cookie == "" {
		if c.Jira.User == "" {
			errors = append(errors, ValidationError{
				Field:   "jira.user",
				Message: "user is required when no session cookie is configured",
			})
		}
		if c.Jira.Password == "" {
			errors = append(errors, ValidationError{
				Field:   "jira.password",
				Message: "password is required when no session cookie is configured",
			})
		}
	}

	return errors
}

func (c *Config) validateTraversal() ValidationErrors {
	var errors ValidationErrors

	if c.Traversal.MaxDepth < 0 {
		errors = append(errors, ValidationError{
			Field:   "traversal.max_depth",
			Message: "max_depth cannot be negative",
		})
	}

	if c.Traversal.Retries < 0 {
		errors = append(errors, ValidationError{
			Field:   "traversal.retries",
			Message: "retries cannot be negative",
		})
	}

	return errors
}

func (c *Config) validateOutput() ValidationErrors {
	var errors ValidationErrors

	if c.Output.File == "" {
		errors = append(errors, ValidationError{
			Field:   "output.file",
			Message: "output file path is required",
		})
	}

	if !c.Output.Local && c.Output.ChartURL == "" {
		errors = append(errors, ValidationError{
			Field:   "output.chart_url",
			Message: "chart_url is required unless local output is enabled",
		})
	}

	return errors
}

func (c *Config) validateLogging() ValidationErrors {
	var errors ValidationErrors

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "": true}
	if !validLevels[c.Logging.Level] {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Message: "level must be one of: debug, info, warn, error",
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "": true}
	if !validFormats[c.Logging.Format] {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Message: "format must be 'json' or 'text'",
		})
	}

	return errors
}
