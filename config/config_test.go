package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestApplyDefaults_MemoryDriver(t *testing.T) {
	cfg := &Config{Storage: &StorageConfig{Driver: StorageDriverMemory}}

	require.NoError(t, cfg.applyDefaults())

	assert.Equal(t, defaultMaxRequestBodySize, cfg.HTTP.MaxRequestBodySize)
	assert.Equal(t, bcrypt.DefaultCost, cfg.Auth.BcryptCost)
	assert.Equal(t, 24*time.Hour, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, time.Hour, cfg.PasswordReset.TokenTTL)
	assert.Equal(t, "http://localhost:3000", cfg.PasswordReset.BaseURL)
	assert.Equal(t, "JobConnect password reset requested", cfg.PasswordReset.Subject)
	assert.Equal(t, uint64(3), cfg.Notification.MaxRetries)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, 587, cfg.Mail.SMTPPort)
}

func TestApplyDefaults_TrimsResetBaseURL(t *testing.T) {
	cfg := &Config{
		Storage:       &StorageConfig{Driver: StorageDriverMemory},
		PasswordReset: &PasswordResetConfig{BaseURL: "https://jobs.example.com/"},
	}

	require.NoError(t, cfg.applyDefaults())
	assert.Equal(t, "https://jobs.example.com", cfg.PasswordReset.BaseURL)
}

func TestApplyDefaults_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr string
	}{
		{
			name:    "postgres driver without postgres section",
			cfg:     &Config{},
			wantErr: "postgres section is required",
		},
		{
			name:    "unknown driver",
			cfg:     &Config{Storage: &StorageConfig{Driver: "sqlite"}},
			wantErr: "unknown storage driver",
		},
		{
			name: "bcrypt cost out of range",
			cfg: &Config{
				Storage: &StorageConfig{Driver: StorageDriverMemory},
				Auth:    &AuthConfig{BcryptCost: 40},
			},
			wantErr: "auth.bcryptCost",
		},
		{
			name: "smtp host without sender",
			cfg: &Config{
				Storage: &StorageConfig{Driver: StorageDriverMemory},
				Mail:    &MailConfig{SMTPHost: "smtp.example.com"},
			},
			wantErr: "mail.from",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.applyDefaults()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadWithEnv_EnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	yamlBody := []byte(`
env:
  serviceName: jobconnect
http:
  port: 8080
secretKey:
  access: from-file
passwordReset:
  tokenTTL: 30m
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.yaml"), yamlBody, 0o600))

	t.Setenv("SECRETKEY_ACCESS", "from-env")
	t.Setenv("HTTP_PORT", "9090")

	wd, err := os.Getwd()
	require.NoError(t, err)
	rel, err := filepath.Rel(wd, dir)
	require.NoError(t, err)

	cfg, err := LoadWithEnv[Config]("test", rel)
	require.NoError(t, err)

	assert.Equal(t, "jobconnect", cfg.Env.ServiceName)
	assert.Equal(t, "from-env", cfg.SecretKey.Access)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, 30*time.Minute, cfg.PasswordReset.TokenTTL)
}

func TestLoadWithEnv_MissingFile(t *testing.T) {
	_, err := LoadWithEnv[Config]("does-not-exist", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found in any search path")
}
