package config

import (
	"os"

	"github.com/spf13/viper"

	"github.com/eczema-mitten/mittenpost/internal/slides"
)

// LoadSlidesConfig loads Google Slides configuration from Viper and
// environment variables. It follows this precedence:
// 1. Viper configuration (from config file or MITTENPOST_ env vars)
// 2. Direct environment variables (GOOGLE_SLIDES_*, GOOGLE_CREDENTIALS_PATH)
// 3. Default values
func LoadSlidesConfig() (*slides.Config, error) {
	config := slides.DefaultConfig()

	// Load from Viper first
	if v := viper.GetString("slides.service_account_path"); v != "" {
		config.ServiceAccountPath = ExpandPath(v)
	}
	if v := viper.GetString("slides.client_id"); v != "" {
		config.ClientID = v
	}
	if v := viper.GetString("slides.client_secret"); v != "" {
		config.ClientSecret = v
	}
	if v := viper.GetString("slides.refresh_token"); v != "" {
		config.RefreshToken = v
	}
	if v := viper.GetString("slides.template_url"); v != "" {
		id, err := slides.TemplateIDFromURL(v)
		if err != nil {
			return nil, err
		}
		config.TemplateID = id
	}
	if v := viper.GetString("slides.presentation_title"); v != "" {
		config.PresentationTitle = v
	}
	if viper.IsSet("slides.share_with_link") {
		config.ShareWithLink = viper.GetBool("slides.share_with_link")
	}

	// Override with direct environment variables if not set
	if config.ServiceAccountPath == "" {
		if v := os.Getenv("GOOGLE_CREDENTIALS_PATH"); v != "" {
			config.ServiceAccountPath = ExpandPath(v)
		}
	}
	if config.ClientID == "" {
		config.ClientID = os.Getenv("GOOGLE_SLIDES_CLIENT_ID")
	}
	if config.ClientSecret == "" {
		config.ClientSecret = os.Getenv("GOOGLE_SLIDES_CLIENT_SECRET")
	}
	if config.RefreshToken == "" {
		config.RefreshToken = os.Getenv("GOOGLE_SLIDES_REFRESH_TOKEN")
	}
	if config.TemplateID == "" {
		if v := os.Getenv("SLIDES_TEMPLATE_URL"); v != "" {
			id, err := slides.TemplateIDFromURL(v)
			if err != nil {
				return nil, err
			}
			config.TemplateID = id
		}
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}
