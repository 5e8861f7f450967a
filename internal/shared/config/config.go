package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"
)

const (
	defaultAITimeout = 45 * time.Second
	minAITimeout     = 30 * time.Second
	maxAITimeout     = 60 * time.Second
)

// Config holds application configuration.
type Config struct {
	Port                  string
	Env                   string
	LogLevel              string
	CORSAllowOrigin       []string
	ObjectStoreType       string
	LocalStoreDir         string
	AWSRegion             string
	S3Bucket              string
	S3Prefix              string
	SSEKMSKeyID           string
	DatabaseURL           string
	RunMigrations         bool
	AIProvider            string
	AIModel               string
	AIAPIKey              string
	AIBaseURL             string
	AITimeout             time.Duration
	ComparisonQuotaPolicy string
	// PlanLimits overrides the built-in plan table; -1 means unlimited.
	PlanLimits map[string]int
}

// Load reads configuration from an optional YAML file and environment variables.
// Environment variables win over file values.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	path := getEnv("CONFIG_FILE", DefaultConfigPath)
	file, err := loadFile(path)
	if err != nil {
		log.Printf("config: ignoring %s: %v", path, err)
		file = fileConfig{}
	}
	return fromSources(file)
}

func fromSources(file fileConfig) Config {
	env := normalizeEnv(getEnv("ENV", file.Env))
	dbURL := getEnv("DATABASE_URL", file.Database.URL)

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	origins := strings.Join(file.CORSAllowOrigins, ",")
	if origins == "" {
		origins = "http://localhost:3000"
	}

	return Config{
		Port:                  getEnv("PORT", firstNonEmpty(file.Port, "8080")),
		Env:                   env,
		LogLevel:              getEnv("LOG_LEVEL", file.LogLevel),
		CORSAllowOrigin:       splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", origins)),
		ObjectStoreType:       normalizeStoreType(getEnv("OBJECT_STORE", firstNonEmpty(file.Storage.Type, "local"))),
		LocalStoreDir:         getEnv("LOCAL_STORE_DIR", firstNonEmpty(file.Storage.LocalDir, "./data")),
		AWSRegion:             getEnv("AWS_REGION", file.Storage.Region),
		S3Bucket:              getEnv("S3_BUCKET", file.Storage.Bucket),
		S3Prefix:              getEnv("S3_PREFIX", file.Storage.Prefix),
		SSEKMSKeyID:           getEnv("SSE_KMS_KEY_ID", file.Storage.KMSKeyID),
		DatabaseURL:           dbURL,
		RunMigrations:         parseBool(getEnv("RUN_MIGRATIONS", ""), file.Database.RunMigrations),
		AIProvider:            normalizeProvider(getEnv("AI_PROVIDER", file.AI.Provider)),
		AIModel:               getEnv("AI_MODEL", file.AI.Model),
		AIAPIKey:              getEnv("AI_API_KEY", file.AI.APIKey),
		AIBaseURL:             getEnv("AI_BASE_URL", file.AI.BaseURL),
		AITimeout:             parseAITimeout(getEnv("AI_TIMEOUT", file.AI.Timeout)),
		ComparisonQuotaPolicy: strings.ToLower(strings.TrimSpace(getEnv("COMPARISON_QUOTA_POLICY", file.ComparisonQuotaPolicy))),
		PlanLimits:            file.Plans,
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
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

func parseBool(raw string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

// parseAITimeout clamps the AI deadline into [30s, 60s].
func parseAITimeout(raw string) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return defaultAITimeout
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		var secs int
		if _, scanErr := fmt.Sscanf(raw, "%d", &secs); scanErr != nil || secs <= 0 {
			log.Printf("config: invalid AI_TIMEOUT %q, using %s", raw, defaultAITimeout)
			return defaultAITimeout
		}
		d = time.Duration(secs) * time.Second
	}
	if d < minAITimeout {
		return minAITimeout
	}
	if d > maxAITimeout {
		return maxAITimeout
	}
	return d
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "gemini", "google":
		return "gemini"
	case "openai":
		return "openai"
	case "anthropic", "claude":
		return "anthropic"
	default:
		return "none"
	}
}
