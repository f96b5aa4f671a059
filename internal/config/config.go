package config

import (
	"os"
	"strconv"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// MeiliConfig points at the Meilisearch instance that backs policy retrieval.
// An empty URL disables indexing.
type MeiliConfig struct {
	URL    string
	APIKey string
	Index  string
}

// RedisConfig holds the Redis connection used for sessions and staged uploads.
// An empty URL selects the in-memory store.
type RedisConfig struct {
	URL string
}

// SessionConfig controls session and staged-upload lifetimes.
type SessionConfig struct {
	CookieName    string
	TTL           time.Duration
	StagingTTL    time.Duration
	SweepInterval time.Duration
}

// ExtractConfig configures the text extraction collaborator.
type ExtractConfig struct {
	// TikaURL is the base URL of an Apache Tika compatible server used for non-text content.
	TikaURL  string
	Timeout  time.Duration
	MaxBytes int64
}

// SummarizerConfig configures the OpenAI-compatible change summarizer.
// An empty BaseURL disables it and every summary uses the templated fallback.
type SummarizerConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// DiffConfig tunes the text diff engine.
type DiffConfig struct {
	MinChars     int
	MaxChanges   int
	ExcerptChars int
	TitleChars   int
	Timeout      time.Duration
}

// MatchConfig holds the match scorer weights, floors and tier cutoffs.
type MatchConfig struct {
	SupersedesWeight     int
	DocumentNumberWeight int
	FilenameWeight       int
	TitleWeight          int
	FilenameFloor        int
	TitleFloor           int
	HighCutoff           int
	MediumCutoff         int
	LowCutoff            int
	Limit                int
}

// DigestConfig holds the archive window for period digests.
type DigestConfig struct {
	RetentionMonths int
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string
	Pretty bool
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost       string
	Port          string
	Timezone      string
	StorageDriver string
	Database      DatabaseConfig
	MinIO         MinIOConfig
	Meili         MeiliConfig
	Redis         RedisConfig
	Session       SessionConfig
	Extract       ExtractConfig
	Summarizer    SummarizerConfig
	Diff          DiffConfig
	Match         MatchConfig
	Digest        DigestConfig
	Log           LogConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:       getEnv("APP_HOST", "localhost:8080"),
		Port:          getEnv("PORT", "8080"),
		Timezone:      getEnv("APP_TZ", "UTC"),
		StorageDriver: getEnv("STORAGE_DRIVER", "postgres"),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Meili: MeiliConfig{
			URL:    getEnv("MEILI_URL", ""),
			APIKey: getEnv("MEILI_API_KEY", ""),
			Index:  getEnv("MEILI_INDEX", "policy_content"),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		Session: SessionConfig{
			CookieName:    getEnv("SESSION_COOKIE", "policytrack_sid"),
			TTL:           getEnvDuration("SESSION_TTL", 24*time.Hour),
			StagingTTL:    getEnvDuration("STAGING_TTL", 30*time.Minute),
			SweepInterval: getEnvDuration("SESSION_SWEEP_INTERVAL", time.Minute),
		},
		Extract: ExtractConfig{
			TikaURL:  getEnv("TIKA_URL", ""),
			Timeout:  getEnvDuration("EXTRACT_TIMEOUT", 30*time.Second),
			MaxBytes: int64(getEnvInt("EXTRACT_MAX_BYTES", 20<<20)),
		},
		Summarizer: SummarizerConfig{
			BaseURL: getEnv("SUMMARIZER_BASE_URL", ""),
			APIKey:  getEnv("SUMMARIZER_API_KEY", ""),
			Model:   getEnv("SUMMARIZER_MODEL", "gpt-4o-mini"),
			Timeout: getEnvDuration("SUMMARIZER_TIMEOUT", 20*time.Second),
		},
		Diff: DiffConfig{
			MinChars:     getEnvInt("DIFF_MIN_CHARS", 10),
			MaxChanges:   getEnvInt("DIFF_MAX_CHANGES", 15),
			ExcerptChars: getEnvInt("DIFF_EXCERPT_CHARS", 500),
			TitleChars:   getEnvInt("DIFF_TITLE_CHARS", 60),
			Timeout:      getEnvDuration("DIFF_TIMEOUT", 5*time.Second),
		},
		Match: MatchConfig{
			SupersedesWeight:     getEnvInt("MATCH_SUPERSEDES_WEIGHT", 60),
			DocumentNumberWeight: getEnvInt("MATCH_DOCUMENT_NUMBER_WEIGHT", 50),
			FilenameWeight:       getEnvInt("MATCH_FILENAME_WEIGHT", 40),
			TitleWeight:          getEnvInt("MATCH_TITLE_WEIGHT", 30),
			FilenameFloor:        getEnvInt("MATCH_FILENAME_FLOOR", 8),
			TitleFloor:           getEnvInt("MATCH_TITLE_FLOOR", 6),
			HighCutoff:           getEnvInt("MATCH_HIGH_CUTOFF", 70),
			MediumCutoff:         getEnvInt("MATCH_MEDIUM_CUTOFF", 40),
			LowCutoff:            getEnvInt("MATCH_LOW_CUTOFF", 20),
			Limit:                getEnvInt("MATCH_LIMIT", 3),
		},
		Digest: DigestConfig{
			RetentionMonths: getEnvInt("DIGEST_RETENTION_MONTHS", 12),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: getEnvBool("LOG_PRETTY", false),
		},
	}
}

// Location resolves the configured timezone, falling back to UTC. It only affects
// log timestamps; all period math is done in UTC.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}
