package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is used when CONFIG_FILE is not set.
const DefaultConfigPath = "config.yml"

type fileConfig struct {
	Port                  string         `yaml:"port"`
	Env                   string         `yaml:"env"`
	LogLevel              string         `yaml:"log_level"`
	CORSAllowOrigins      []string       `yaml:"cors_allow_origins"`
	ComparisonQuotaPolicy string         `yaml:"comparison_quota_policy"`
	Plans                 map[string]int `yaml:"plans"`
	Database              struct {
		URL           string `yaml:"url"`
		RunMigrations bool   `yaml:"run_migrations"`
	} `yaml:"database"`
	Storage struct {
		Type     string `yaml:"type"`
		LocalDir string `yaml:"local_dir"`
		Region   string `yaml:"region"`
		Bucket   string `yaml:"bucket"`
		Prefix   string `yaml:"prefix"`
		KMSKeyID string `yaml:"kms_key_id"`
	} `yaml:"storage"`
	AI struct {
		Provider string `yaml:"provider"`
		Model    string `yaml:"model"`
		APIKey   string `yaml:"api_key"`
		BaseURL  string `yaml:"base_url"`
		Timeout  string `yaml:"timeout"`
	} `yaml:"ai"`
}

// loadFile reads the YAML config at path. A missing file is not an error.
func loadFile(path string) (fileConfig, error) {
	var cfg fileConfig
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
