package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DevJWTSecret signs tokens outside production when JWT_SECRET is unset.
const DevJWTSecret = "dev-secret"

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string

	DatabaseURL   string
	DocumentStore string
	BoltPath      string

	TextArchive   string
	LocalStoreDir string
	AWSRegion     string
	S3Bucket      string
	S3Prefix      string
	SSEKMSKeyID   string

	MaxUploadMB int
	JWTSecret   string
	JWTTTL      time.Duration
	AllowGuests bool

	Summarizer SummarizerConfig

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	UIRedirectURL      string
}

// SummarizerConfig configures the external summarization service.
type SummarizerConfig struct {
	APIKey     string
	Model      string
	BaseURL    string
	Timeout    time.Duration
	KeyInQuery bool
}

// Load reads configuration from an optional YAML file (CONFIG_FILE) overlaid by
// environment variables, with defaults for everything else.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	var file fileConfig
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		loaded, err := loadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config: ignoring %s: %v\n", path, err)
		} else {
			file = loaded
		}
	}
	return fromSources(file)
}

func fromSources(f fileConfig) Config {
	env := normalizeEnv(pick("ENV", f.Env, "dev"))

	return Config{
		Port:            pick("PORT", f.Port, "8080"),
		Env:             env,
		CORSAllowOrigin: splitAndTrim(pick("CORS_ALLOW_ORIGINS", strings.Join(f.CORSAllowOrigins, ","), "http://localhost:5173")),

		DatabaseURL:   pick("DATABASE_URL", f.DatabaseURL, ""),
		DocumentStore: normalizeDocumentStore(pick("DOCUMENT_STORE", f.DocumentStore, "")),
		BoltPath:      pick("BOLT_PATH", f.BoltPath, "./data/documents.db"),

		TextArchive:   normalizeArchive(pick("TEXT_ARCHIVE", f.TextArchive, "none")),
		LocalStoreDir: pick("LOCAL_STORE_DIR", f.LocalStoreDir, "./data"),
		AWSRegion:     pick("AWS_REGION", f.AWS.Region, ""),
		S3Bucket:      pick("S3_BUCKET", f.AWS.S3Bucket, ""),
		S3Prefix:      pick("S3_PREFIX", f.AWS.S3Prefix, ""),
		SSEKMSKeyID:   pick("SSE_KMS_KEY_ID", f.AWS.SSEKMSKeyID, ""),

		MaxUploadMB: pickInt("MAX_UPLOAD_MB", f.MaxUploadMB, 10),
		JWTSecret:   pick("JWT_SECRET", f.JWT.Secret, ""),
		JWTTTL:      pickDuration("JWT_TTL", f.JWT.TTL, time.Hour),
		AllowGuests: pickBool("ALLOW_GUESTS", f.AllowGuests, env != "production"),

		Summarizer: SummarizerConfig{
			APIKey:     pick("SUMMARIZER_API_KEY", f.Summarizer.APIKey, ""),
			Model:      pick("SUMMARIZER_MODEL", f.Summarizer.Model, ""),
			BaseURL:    pick("SUMMARIZER_BASE_URL", f.Summarizer.BaseURL, ""),
			Timeout:    time.Duration(pickInt("SUMMARIZER_TIMEOUT_SECONDS", f.Summarizer.TimeoutSeconds, 60)) * time.Second,
			KeyInQuery: pickBool("SUMMARIZER_KEY_IN_QUERY", f.Summarizer.KeyInQuery, false),
		},

		GoogleClientID:     pick("GOOGLE_CLIENT_ID", f.Google.ClientID, ""),
		GoogleClientSecret: pick("GOOGLE_CLIENT_SECRET", f.Google.ClientSecret, ""),
		GoogleRedirectURL:  pick("GOOGLE_REDIRECT_URL", f.Google.RedirectURL, ""),
		UIRedirectURL:      pick("UI_REDIRECT_URL", f.UIRedirectURL, ""),
	}
}

// Validate reports settings that make the process unsafe to start.
func (c Config) Validate() error {
	var errs []error
	if c.Env == "production" {
		if strings.TrimSpace(c.JWTSecret) == "" {
			errs = append(errs, errors.New("JWT_SECRET is required in production"))
		}
		if strings.TrimSpace(c.DatabaseURL) == "" && c.DocumentStore != "bolt" {
			errs = append(errs, errors.New("DATABASE_URL is required in production"))
		}
	}
	if c.TextArchive == "s3" && strings.TrimSpace(c.S3Bucket) == "" {
		errs = append(errs, errors.New("TEXT_ARCHIVE=s3 requires S3_BUCKET"))
	}
	if c.MaxUploadMB <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_MB must be positive"))
	}
	return errors.Join(errs...)
}

// MaxUploadBytes returns the upload cap in bytes.
func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// EffectiveJWTSecret falls back to DevJWTSecret outside production.
func (c Config) EffectiveJWTSecret() string {
	if s := strings.TrimSpace(c.JWTSecret); s != "" {
		return s
	}
	if c.Env == "production" {
		return ""
	}
	return DevJWTSecret
}

func pick(key, fileVal, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if strings.TrimSpace(fileVal) != "" {
		return fileVal
	}
	return def
}

func pickInt(key string, fileVal, def int) int {
	if raw := strings.TrimSpace(os.Getenv(key)); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			return parsed
		}
	}
	if fileVal != 0 {
		return fileVal
	}
	return def
}

func pickBool(key string, fileVal *bool, def bool) bool {
	if raw := strings.TrimSpace(os.Getenv(key)); raw != "" {
		if parsed, err := strconv.ParseBool(raw); err == nil {
			return parsed
		}
	}
	if fileVal != nil {
		return *fileVal
	}
	return def
}

func pickDuration(key, fileVal string, def time.Duration) time.Duration {
	for _, raw := range []string{os.Getenv(key), fileVal} {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			return d
		}
	}
	return def
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

// normalizeDocumentStore returns "" when the store should follow DATABASE_URL.
func normalizeDocumentStore(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "memory":
		return "memory"
	case "postgres", "pg":
		return "postgres"
	case "bolt", "bbolt":
		return "bolt"
	default:
		return ""
	}
}

func normalizeArchive(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "local":
		return "local"
	case "s3":
		return "s3"
	default:
		return "none"
	}
}
