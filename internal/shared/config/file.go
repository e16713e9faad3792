package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the YAML layout of CONFIG_FILE. Environment variables win over it.
type fileConfig struct {
	Port             string   `yaml:"port"`
	Env              string   `yaml:"env"`
	CORSAllowOrigins []string `yaml:"cors_allow_origins"`
	DatabaseURL      string   `yaml:"database_url"`
	DocumentStore    string   `yaml:"document_store"`
	BoltPath         string   `yaml:"bolt_path"`
	TextArchive      string   `yaml:"text_archive"`
	LocalStoreDir    string   `yaml:"local_store_dir"`
	MaxUploadMB      int      `yaml:"max_upload_mb"`
	AllowGuests      *bool    `yaml:"allow_guests"`
	UIRedirectURL    string   `yaml:"ui_redirect_url"`

	AWS struct {
		Region      string `yaml:"region"`
		S3Bucket    string `yaml:"s3_bucket"`
		S3Prefix    string `yaml:"s3_prefix"`
		SSEKMSKeyID string `yaml:"sse_kms_key_id"`
	} `yaml:"aws"`

	JWT struct {
		Secret string `yaml:"secret"`
		TTL    string `yaml:"ttl"`
	} `yaml:"jwt"`

	Summarizer struct {
		APIKey         string `yaml:"api_key"`
		Model          string `yaml:"model"`
		BaseURL        string `yaml:"base_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		KeyInQuery     *bool  `yaml:"key_in_query"`
	} `yaml:"summarizer"`

	Google struct {
		ClientID     string `yaml:"client_id"`
		ClientSecret string `yaml:"client_secret"`
		RedirectURL  string `yaml:"redirect_url"`
	} `yaml:"google"`
}

func loadFile(path string) (fileConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, fmt.Errorf("read config file: %w", err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return fileConfig{}, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}
