package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// inEmptyDir runs the test from a directory without config.yaml or .env.
func inEmptyDir(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	inEmptyDir(t)
	t.Setenv("JWT_SECRET", "")

	_, err := Load("")
	assert.EqualError(t, err, "JWT_SECRET must be set")
}

func TestLoad_Defaults(t *testing.T) {
	inEmptyDir(t)
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, 168*time.Hour, cfg.JWT.ExpiresIn)
	assert.Equal(t, "startup_village", cfg.Mongo.Database)
	assert.Equal(t, StorageLocal, cfg.Storage.Driver)
	assert.Equal(t, int64(5<<20), cfg.Upload.MaxImageSize)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, 100, cfg.RateLimit.Max)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.AllowedOrigins)
	assert.False(t, cfg.IsProduction())
	assert.False(t, cfg.SMTP.Enabled())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	inEmptyDir(t)
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "8080")
	t.Setenv("ENV", "Production")
	t.Setenv("MONGO_URI", "mongodb://db:27017")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("RATE_LIMIT_MAX", "5")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "mongodb://db:27017", cfg.Mongo.URI)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 5, cfg.RateLimit.Max)
}

func TestLoad_ConfigFile(t *testing.T) {
	inEmptyDir(t)
	t.Setenv("JWT_SECRET", "s3cret")
	path := filepath.Join(t.TempDir(), "village.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: \"9000\"\nstorage:\n  driver: minio\n"), 0o600))

	_, err := Load(path)
	assert.ErrorContains(t, err, "MINIO_ENDPOINT")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			JWT:       JWTConfig{Secret: "x", ExpiresIn: time.Hour},
			Mongo:     MongoConfig{URI: "mongodb://localhost", Database: "db"},
			Storage:   StorageConfig{Driver: StorageLocal},
			Upload:    UploadConfig{Dir: "uploads", MaxImageSize: 1, MaxDocumentSize: 1},
			RateLimit: RateLimitConfig{Window: time.Minute, Max: 1},
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"blank secret", func(c *Config) { c.JWT.Secret = "  " }, "JWT_SECRET"},
		{"zero expiry", func(c *Config) { c.JWT.ExpiresIn = 0 }, "JWT_EXPIRES_IN"},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "ftp" }, "unknown STORAGE_DRIVER"},
		{"no upload dir", func(c *Config) { c.Upload.Dir = "" }, "UPLOAD_DIR"},
		{"zero rate limit", func(c *Config) { c.RateLimit.Max = 0 }, "RATE_LIMIT_MAX"},
		{"admin email only", func(c *Config) { c.Admin.Email = "root@example.com" }, "ADMIN_EMAIL and ADMIN_PASSWORD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.ErrorContains(t, c.Validate(), tt.want)
		})
	}
}
