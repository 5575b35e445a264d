package slides

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		errMsg  string
		config  Config
		wantErr bool
	}{
		{
			name: "valid oauth config",
			config: Config{
				ClientID:     "test-client",
				ClientSecret: "test-secret",
				RefreshToken: "test-token",
			},
			wantErr: false,
		},
		{
			name: "valid service account config",
			config: Config{
				ServiceAccountPath: "/path/to/key.json",
			},
			wantErr: false,
		},
		{
			name:    "missing auth",
			config:  Config{TemplateID: "abc123"},
			wantErr: true,
			errMsg:  "no authentication method configured",
		},
		{
			name: "partial oauth credentials",
			config: Config{
				ClientID:     "test-client",
				RefreshToken: "test-token",
			},
			wantErr: true,
			errMsg:  "no authentication method configured",
		},
		{
			name: "multiple auth methods",
			config: Config{
				ClientID:           "test-client",
				ClientSecret:       "test-secret",
				RefreshToken:       "test-token",
				ServiceAccountPath: "/path/to/key.json",
			},
			wantErr: true,
			errMsg:  "multiple authentication methods",
		},
		{
			name: "negative retry delay",
			config: Config{
				ServiceAccountPath: "/path/to/key.json",
				RetryDelay:         -time.Second,
			},
			wantErr: true,
			errMsg:  "retry delay cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	assert.True(t, config.ShareWithLink)
	assert.Equal(t, 3, config.RetryAttempts)
	assert.Equal(t, time.Second, config.RetryDelay)
	assert.Equal(t, "Shipping Labels", config.PresentationTitle)
}

func TestTemplateIDFromURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "edit url",
			input: "https://docs.google.com/presentation/d/1AbC_dEf-123/edit#slide=id.p",
			want:  "1AbC_dEf-123",
		},
		{
			name:  "bare id",
			input: "1AbC_dEf-123",
			want:  "1AbC_dEf-123",
		},
		{
			name:  "sharing url",
			input: "https://docs.google.com/presentation/d/xyz789/view?usp=sharing",
			want:  "xyz789",
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
		{
			name:    "unrelated url",
			input:   "https://example.com/some/path?x=1",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TemplateIDFromURL(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
