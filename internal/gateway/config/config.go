package config

import (
	"flag"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	Env      string
	LogLevel slog.Level

	// DatabaseURL selects Postgres persistence; empty means in-memory.
	DatabaseURL string

	// EncryptionSecret derives the key that unlocks stored repository
	// credentials. Must match the secret the credential service used.
	EncryptionSecret string

	GitHub   GitHubConfig
	Snapshot SnapshotConfig
}

type GitHubConfig struct {
	// BaseURL overrides the API endpoint (GitHub Enterprise, tests).
	BaseURL          string
	FetchConcurrency int
	Extensions       []string
}

type SnapshotConfig struct {
	Enabled   bool
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port := flag.String("port", ":8080", "server port")
	flag.Parse()

	if envPort := os.Getenv("PORT"); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			*port = envPort
		} else {
			*port = ":" + envPort
		}
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	return &Config{
		Port:             *port,
		Env:              env,
		LogLevel:         parseLogLevel(os.Getenv("LOG_LEVEL")),
		DatabaseURL:      strings.TrimSpace(os.Getenv("DATABASE_URL")),
		EncryptionSecret: firstNonEmpty(strings.TrimSpace(os.Getenv("ENCRYPTION_SECRET")), "default-secret-key-change-me-32"),
		GitHub:           loadGitHubConfig(),
		Snapshot:         loadSnapshotConfig(env),
	}, nil
}

func loadGitHubConfig() GitHubConfig {
	concurrency := 0
	if raw := strings.TrimSpace(os.Getenv("GITHUB_FETCH_CONCURRENCY")); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			concurrency = v
		}
	}
	var exts []string
	if raw := strings.TrimSpace(os.Getenv("ANALYSIS_FILE_EXTENSIONS")); raw != "" {
		for _, e := range strings.Split(raw, ",") {
			if e = strings.TrimSpace(e); e != "" {
				exts = append(exts, e)
			}
		}
	}
	return GitHubConfig{
		BaseURL:          strings.TrimSpace(os.Getenv("GITHUB_API_BASE_URL")),
		FetchConcurrency: concurrency,
		Extensions:       exts,
	}
}

func loadSnapshotConfig(env string) SnapshotConfig {
	endpoint := resolveSnapshotEndpoint(env)
	return SnapshotConfig{
		Enabled:   endpoint != "",
		Endpoint:  endpoint,
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("SNAPSHOT_S3_REGION")), "us-east-1"),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("SNAPSHOT_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("SNAPSHOT_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("SNAPSHOT_S3_BUCKET")), "codegate-snapshots"),
		UseSSL:    resolveSnapshotUseSSL(env),
	}
}

func resolveSnapshotEndpoint(env string) string {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return strings.TrimSpace(os.Getenv("SNAPSHOT_MINIO_ENDPOINT"))
	}
	return strings.TrimSpace(os.Getenv("SNAPSHOT_S3_ENDPOINT"))
}

func resolveSnapshotUseSSL(env string) bool {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return false
	}
	raw := strings.TrimSpace(os.Getenv("SNAPSHOT_S3_USE_SSL"))
	if raw == "" {
		return true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return true
	}
	return v
}

func parseLogLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
