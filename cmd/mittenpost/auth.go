package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eczema-mitten/mittenpost/internal/slides"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with external services",
		Long:  `Authenticate with external services like Google Slides.`,
	}

	cmd.AddCommand(authGoogleCmd())

	return cmd
}

func authGoogleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "google",
		Short: "Authenticate with Google Slides and Drive",
		Long: `Set up OAuth2 authentication for Google Slides and Drive.

This command will:
1. Open your browser to authenticate with Google
2. Save the refresh token for future use
3. Update your config file with the token

You'll need to run this once before rendering shipping labels, unless you use
a service account (slides.service_account_path).`,
		RunE: runAuthGoogle,
	}

	cmd.Flags().String("client-id", "", "OAuth2 Client ID (overrides config)")
	cmd.Flags().String("client-secret", "", "OAuth2 Client Secret (overrides config)")

	return cmd
}

func runAuthGoogle(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	// Get OAuth2 config
	clientID := viper.GetString("slides.client_id")
	clientSecret := viper.GetString("slides.client_secret")

	// Override with flags if provided
	if flagID, _ := cmd.Flags().GetString("client-id"); flagID != "" {
		clientID = flagID
	}
	if flagSecret, _ := cmd.Flags().GetString("client-secret"); flagSecret != "" {
		clientSecret = flagSecret
	}

	// Check for environment variables as fallback
	if clientID == "" {
		clientID = os.Getenv("GOOGLE_SLIDES_CLIENT_ID")
	}
	if clientSecret == "" {
		clientSecret = os.Getenv("GOOGLE_SLIDES_CLIENT_SECRET")
	}

	if clientID == "" || clientSecret == "" {
		return fmt.Errorf("OAuth2 credentials not found. Please set slides.client_id and slides.client_secret in config or use --client-id and --client-secret flags")
	}

	// Determine token file location
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".config")
	}
	tokenFile := filepath.Join(configDir, "mittenpost", "slides-token.json")

	slog.Info("Starting Google authentication", "token_file", tokenFile)

	// Perform OAuth2 flow
	config := slides.OAuth2Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenFile:    tokenFile,
	}

	token, err := slides.AuthenticateOAuth2Interactive(ctx, config)
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	// Update config file with refresh token
	viper.Set("slides.refresh_token", token.RefreshToken)

	if err := saveConfig(); err != nil {
		slog.Warn("Failed to update config file with refresh token", "error", err)
		slog.Info("Please add this to your config.yaml manually:")
		slog.Info(fmt.Sprintf("slides:\n  refresh_token: \"%s\"", token.RefreshToken))
	} else {
		slog.Info("Updated config file with refresh token")
		slog.Info("✅ Authentication successful!")
	}

	slog.Info("🏷️  Google Slides is now configured and ready to use.")
	slog.Info("Run 'mittenpost convert' or 'mittenpost labels' to render shipping labels.")

	return nil
}

func saveConfig() error {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		configFile = filepath.Join(home, ".config", "mittenpost", "config.yaml")
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(configFile), 0750); err != nil {
		return err
	}

	return viper.WriteConfigAs(configFile)
}
