package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// TestCaseDir is the judge's test-data root. Each problem's cases are
	// materialized into a subdirectory named by its test-case-set id.
	TestCaseDir string

	Database DatabaseConfig
	JudgeAPI JudgeAPIConfig
	Storage  StorageConfig
	Minio    MinioConfig
	GCS      GCSConfig
	Events   EventsConfig
	RabbitMQ RabbitMQConfig
	PubSub   PubSubConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	UseSSL   bool
}

// JudgeAPIConfig holds the remote admin API endpoint and the session-scoped
// credential used to authenticate once per batch.
type JudgeAPIConfig struct {
	BaseURL  string
	Username string
	Password string
}

// StorageConfig selects the optional object-storage backend used to archive
// packaged test-data bundles. An empty backend disables archival.
type StorageConfig struct {
	Backend string // "", "minio" or "gcs"
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type GCSConfig struct {
	ProjectID       string
	Bucket          string
	CredentialsFile string
}

// EventsConfig selects the optional broker used to publish problem.imported
// events. An empty backend disables publishing.
type EventsConfig struct {
	Backend string // "", "rabbitmq" or "pubsub"
	Channel string
}

type RabbitMQConfig struct {
	URL             string
	QueueDurable    bool
	QueueAutoDelete bool
}

type PubSubConfig struct {
	ProjectID       string
	CredentialsFile string
}

func LoadConfig() Config {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	return Config{
		TestCaseDir: getEnv("TEST_CASE_DIR", "/data/test_case"),
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "judge"),
			Password: getEnv("DB_PASSWORD", "password"),
			DBName:   getEnv("DB_NAME", "judge_db"),
			UseSSL:   getEnvBool("DB_USE_SSL", false),
		},
		JudgeAPI: JudgeAPIConfig{
			BaseURL:  getEnv("JUDGE_API_URL", "http://localhost:8000"),
			Username: getEnv("JUDGE_API_USERNAME", "root"),
			Password: getEnv("JUDGE_API_PASSWORD", ""),
		},
		Storage: StorageConfig{
			Backend: getEnv("BUNDLE_STORAGE_BACKEND", ""),
		},
		Minio: MinioConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "fps-bundles"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		GCS: GCSConfig{
			ProjectID:       getEnv("GCS_PROJECT_ID", ""),
			Bucket:          getEnv("GCS_BUCKET", ""),
			CredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),
		},
		Events: EventsConfig{
			Backend: getEnv("EVENTS_BACKEND", ""),
			Channel: getEnv("EVENTS_CHANNEL", "problem.imported"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:             getEnv("RABBITMQ_URL", ""),
			QueueDurable:    getEnvBool("RABBITMQ_QUEUE_DURABLE", true),
			QueueAutoDelete: getEnvBool("RABBITMQ_QUEUE_AUTO_DELETE", false),
		},
		PubSub: PubSubConfig{
			ProjectID:       getEnv("PUBSUB_PROJECT_ID", ""),
			CredentialsFile: getEnv("PUBSUB_CREDENTIALS_FILE", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int
		fmt.Sscanf(valueStr, "%d", &value)
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.ParseBool(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}
