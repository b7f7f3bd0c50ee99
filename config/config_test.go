package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() Config {
	return Config{
		JWTSecret:      "secret",
		EncryptionKey:  "0123456789abcdef0123456789abcdef",
		EmailHashSalt:  "salt",
		MailerProvider: "mock",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"ok", func(*Config) {}, ""},
		{"missing jwt secret", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET"},
		{"short encryption key", func(c *Config) { c.EncryptionKey = "short" }, "ENCRYPTION_KEY"},
		{"missing salt", func(c *Config) { c.EmailHashSalt = "" }, "EMAIL_HASH_SALT"},
		{"smtp without host", func(c *Config) { c.MailerProvider = "smtp" }, "SMTP_HOST"},
		{"csrf without secrets", func(c *Config) { c.CSRFEnabled = true }, "CSRF_SECRET"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(&c)

			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
