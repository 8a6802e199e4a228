package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateHTTPSRequirement(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		wantErr bool
	}{
		{name: "https", baseURL: "https://triage-eval.example.com"},
		{name: "localhost http", baseURL: "http://localhost:8080"},
		{name: "ipv4 loopback http", baseURL: "http://127.0.0.1:8080"},
		{name: "other ipv4 loopback http", baseURL: "http://127.0.0.2:8080"},
		{name: "ipv6 loopback http", baseURL: "http://[::1]:8080"},
		{name: "remote http", baseURL: "http://example.com", wantErr: true},
		{name: "private network http", baseURL: "http://10.0.0.5:8080", wantErr: true},
		{name: "empty", baseURL: "", wantErr: true},
		{name: "ftp scheme", baseURL: "ftp://example.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateHTTPSRequirement(tt.baseURL)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOAuthConfigValidate(t *testing.T) {
	valid := OAuthConfig{
		BaseURL:         "https://triage-eval.example.com",
		DexIssuerURL:    "https://dex.example.com",
		DexClientID:     "triage-eval",
		DexClientSecret: "secret",
	}

	tests := []struct {
		name    string
		mutate  func(*OAuthConfig)
		wantErr string
	}{
		{name: "valid", mutate: func(*OAuthConfig) {}},
		{name: "explicit dex", mutate: func(c *OAuthConfig) { c.Provider = OAuthProviderDex }},
		{name: "unknown provider", mutate: func(c *OAuthConfig) { c.Provider = "okta" }, wantErr: "unsupported OAuth provider"},
		{name: "insecure base URL", mutate: func(c *OAuthConfig) { c.BaseURL = "http://example.com" }, wantErr: "requires HTTPS"},
		{name: "missing issuer", mutate: func(c *OAuthConfig) { c.DexIssuerURL = "" }, wantErr: "dex issuer URL is required"},
		{name: "missing client", mutate: func(c *OAuthConfig) { c.DexClientID = "" }, wantErr: "dex client ID is required"},
		{name: "missing secret", mutate: func(c *OAuthConfig) { c.DexClientSecret = "" }, wantErr: "dex client secret is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
