package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var managedKeys = []string{
	"PORT", "ENV", "CORS_ALLOW_ORIGINS", "DATABASE_URL", "DOCUMENT_STORE", "BOLT_PATH",
	"TEXT_ARCHIVE", "LOCAL_STORE_DIR", "S3_BUCKET", "MAX_UPLOAD_MB", "JWT_SECRET", "JWT_TTL",
	"ALLOW_GUESTS", "SUMMARIZER_API_KEY", "SUMMARIZER_MODEL", "SUMMARIZER_TIMEOUT_SECONDS",
	"SUMMARIZER_KEY_IN_QUERY", "CONFIG_FILE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range managedKeys {
		t.Setenv(k, "")
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)
	cfg := fromSources(fileConfig{})

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSAllowOrigin)
	assert.Equal(t, "", cfg.DocumentStore)
	assert.Equal(t, "none", cfg.TextArchive)
	assert.Equal(t, 10, cfg.MaxUploadMB)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes())
	assert.Equal(t, time.Hour, cfg.JWTTTL)
	assert.True(t, cfg.AllowGuests)
	assert.Equal(t, 60*time.Second, cfg.Summarizer.Timeout)
	assert.Equal(t, DevJWTSecret, cfg.EffectiveJWTSecret())
	assert.NoError(t, cfg.Validate())
}

func TestYAMLFileWithEnvOverride(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "9090"
env: staging
cors_allow_origins: ["https://app.example", "https://admin.example"]
document_store: bolt
bolt_path: /tmp/docs.db
max_upload_mb: 25
allow_guests: false
jwt:
  secret: from-file
  ttl: 30m
summarizer:
  api_key: file-key
  model: gemini-file
  timeout_seconds: 15
  key_in_query: true
`), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "7070")
	t.Setenv("SUMMARIZER_MODEL", "gemini-env")

	cfg := Load()
	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, "staging", cfg.Env)
	assert.Equal(t, []string{"https://app.example", "https://admin.example"}, cfg.CORSAllowOrigin)
	assert.Equal(t, "bolt", cfg.DocumentStore)
	assert.Equal(t, "/tmp/docs.db", cfg.BoltPath)
	assert.Equal(t, 25, cfg.MaxUploadMB)
	assert.False(t, cfg.AllowGuests)
	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, 30*time.Minute, cfg.JWTTTL)
	assert.Equal(t, "file-key", cfg.Summarizer.APIKey)
	assert.Equal(t, "gemini-env", cfg.Summarizer.Model)
	assert.Equal(t, 15*time.Second, cfg.Summarizer.Timeout)
	assert.True(t, cfg.Summarizer.KeyInQuery)
}

func TestProductionValidation(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENV", "prod")
	cfg := fromSources(fileConfig{})

	assert.Equal(t, "production", cfg.Env)
	assert.False(t, cfg.AllowGuests)
	assert.Equal(t, "", cfg.EffectiveJWTSecret())

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestArchiveRequiresBucket(t *testing.T) {
	clearEnv(t)
	t.Setenv("TEXT_ARCHIVE", "S3")
	cfg := fromSources(fileConfig{})
	assert.Equal(t, "s3", cfg.TextArchive)
	assert.ErrorContains(t, cfg.Validate(), "S3_BUCKET")
}

func TestLoadFileErrors(t *testing.T) {
	_, err := loadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: [unterminated"), 0o600))
	_, err = loadFile(path)
	assert.ErrorContains(t, err, "parse config file")
}

func TestParseEnvLine(t *testing.T) {
	cases := []struct {
		line, key, val string
		ok             bool
	}{
		{line: "PORT=9000", key: "PORT", val: "9000", ok: true},
		{line: "  export ENV = staging ", key: "ENV", val: "staging", ok: true},
		{line: `JWT_SECRET="a b=c"`, key: "JWT_SECRET", val: "a b=c", ok: true},
		{line: "S3_BUCKET='docs'", key: "S3_BUCKET", val: "docs", ok: true},
		{line: "# comment"},
		{line: "   "},
		{line: "NO_VALUE"},
		{line: "=orphan"},
	}
	for _, tc := range cases {
		key, val, ok := parseEnvLine(tc.line)
		assert.Equal(t, tc.ok, ok, tc.line)
		assert.Equal(t, tc.key, key, tc.line)
		assert.Equal(t, tc.val, val, tc.line)
	}
}

func TestEnvFileDoesNotOverrideEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "7000")
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PORT=9000\nENV=staging\n"), 0o600))

	loadEnvFiles(filepath.Join(t.TempDir(), "missing.env"), path)

	assert.Equal(t, "7000", os.Getenv("PORT"))
	assert.Equal(t, "staging", os.Getenv("ENV"))
}
