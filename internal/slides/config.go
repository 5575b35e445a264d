// Package slides renders Singapore shipping labels into a Google Slides
// deck, one slide per order, from a template presentation.
package slides

import (
	"fmt"
	"regexp"
	"time"
)

// Config holds the configuration for the label renderer.
type Config struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	ServiceAccountPath string
	TemplateID         string // presentation copied for each run; blank builds labels from scratch
	PresentationTitle  string
	ShareWithLink      bool
	RetryAttempts      int
	RetryDelay         time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		PresentationTitle: "Shipping Labels",
		ShareWithLink:     true,
		RetryAttempts:     3,
		RetryDelay:        time.Second,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	hasOAuth := c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
	hasServiceAccount := c.ServiceAccountPath != ""

	if !hasOAuth && !hasServiceAccount {
		return fmt.Errorf("no authentication method configured")
	}
	if hasOAuth && hasServiceAccount {
		return fmt.Errorf("multiple authentication methods configured; use either OAuth2 or service account")
	}

	if c.RetryAttempts < 0 {
		return fmt.Errorf("retry attempts cannot be negative")
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("retry delay cannot be negative")
	}

	return nil
}

// templateURLRegex matches the presentation ID segment of a Slides URL.
var (
	templateURLRegex = regexp.MustCompile(`/presentation/d/([a-zA-Z0-9_-]+)`)
	bareIDRegex      = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// TemplateIDFromURL extracts the presentation ID from a Google Slides URL.
// Bare IDs pass through unchanged so config accepts either form.
func TemplateIDFromURL(raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("empty template URL")
	}
	if match := templateURLRegex.FindStringSubmatch(raw); match != nil {
		return match[1], nil
	}
	if bareIDRegex.MatchString(raw) {
		return raw, nil
	}
	return "", fmt.Errorf("no presentation ID found in %q", raw)
}
