package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	ServerAddr string
	JWTSecret  string

	// Assistant backend endpoints, one per chat mode.
	SchedulingAgentURL string
	DocumentQAAgentURL string

	// Optional .properties file overriding the chat seed texts.
	PresetsFile string

	// Snapshot store backend: file | minio | postgres.
	StoreBackend string
	StorePath    string

	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
}

// fileConfig is the optional YAML overlay. Only non-empty fields
// override the environment values.
type fileConfig struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Assistant struct {
		SchedulingURL string `yaml:"scheduling_url"`
		DocumentQAURL string `yaml:"document_qa_url"`
	} `yaml:"assistant"`
	Store struct {
		Backend string `yaml:"backend"`
		Path    string `yaml:"path"`
	} `yaml:"store"`
}

// LoadConfig reads .env (when present), then the environment, then the
// optional YAML file named by CONFIG_FILE. A missing YAML file is fine;
// an unparsable one is an error.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8000"),
		JWTSecret:  getEnv("JWT_SECRET", ""),

		SchedulingAgentURL: getEnv("SCHEDULING_AGENT_URL", "http://localhost:8000/agent-chat"),
		DocumentQAAgentURL: getEnv("DOCUMENT_QA_AGENT_URL", "http://localhost:8000/rag-chat"),

		PresetsFile: getEnv("CHAT_PRESETS_FILE", ""),

		StoreBackend: getEnv("STORE_BACKEND", "file"),
		StorePath:    getEnv("STORE_PATH", "./data/chat_snapshot.json"),

		DBUser:     getEnv("DB_USER", ""),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBHost:     getEnv("DB_HOST", ""),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBName:     getEnv("DB_NAME", ""),

		MinIOEndpoint:  getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinIOBucket:    getEnv("MINIO_BUCKET", "nexus-chat"),
	}

	if err := applyFile(&cfg, getEnv("CONFIG_FILE", "config.yaml")); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	override(&cfg.ServerAddr, fc.Server.Addr)
	override(&cfg.SchedulingAgentURL, fc.Assistant.SchedulingURL)
	override(&cfg.DocumentQAAgentURL, fc.Assistant.DocumentQAURL)
	override(&cfg.StoreBackend, fc.Store.Backend)
	override(&cfg.StorePath, fc.Store.Path)
	return nil
}

func override(dst *string, val string) {
	if val != "" {
		*dst = val
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return fallback
}
