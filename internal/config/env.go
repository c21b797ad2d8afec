package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL  string
	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string
	BucketName   string
	SslCertPath  string
	AIAPIKey     string
	GenModel     string
	EmbedModel   string
	EmbedDim     int
	Port         string

	// Summarization pipeline knobs.
	ChunkTokens     int // approximate tokens per map-phase chunk
	MaxInputBytes   int // absolute ingestible size cap after normalization
	SummaryMinWords int
	SummaryMaxWords int

	// Artifact generation knobs.
	DefaultArtifactCount int
	MaxArtifactCount     int
	MinViableArtifacts   int

	// Upstream call policy.
	UpstreamTimeoutSecs int
	MaxRetries          int
}

// LoadConfig loads the environment variables and return config
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		AwsAccessKey: getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey: getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:    getEnv("AWS_REGION", "us-east-2"),
		BucketName:   getEnv("BUCKET_NAME", "summarly-sources"),
		SslCertPath:  getEnv("SSL_CERT_PATH", ""),
		AIAPIKey:     getEnv("GEMINI_API_KEY", ""),
		GenModel:     getEnv("GEN_MODEL", "gemini-1.5-flash"),
		EmbedModel:   getEnv("EMBED_MODEL", "text-embedding-004"),
		EmbedDim:     getEnvInt("EMBED_DIM", 768),
		Port:         getEnv("PORT", "8080"),

		ChunkTokens:     getEnvInt("CHUNK_TOKENS", 3000),
		MaxInputBytes:   getEnvInt("MAX_INPUT_BYTES", 4<<20),
		SummaryMinWords: getEnvInt("SUMMARY_MIN_WORDS", 150),
		SummaryMaxWords: getEnvInt("SUMMARY_MAX_WORDS", 500),

		DefaultArtifactCount: getEnvInt("DEFAULT_ARTIFACT_COUNT", 10),
		MaxArtifactCount:     getEnvInt("MAX_ARTIFACT_COUNT", 25),
		MinViableArtifacts:   getEnvInt("MIN_VIABLE_ARTIFACTS", 3),

		UpstreamTimeoutSecs: getEnvInt("UPSTREAM_TIMEOUT_SECS", 60),
		MaxRetries:          getEnvInt("MAX_RETRIES", 2),
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	return cfg
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}
