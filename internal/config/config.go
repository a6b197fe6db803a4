package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host        string   `yaml:"host"`
		Port        int      `yaml:"port"`
		Env         string   `yaml:"env"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"server"`

	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`

	JWT struct {
		Secret string `yaml:"secret"`
		TTL    int    `yaml:"ttl"` // минуты
	} `yaml:"jwt"`

	Storage struct {
		Type           string `yaml:"type"`            // s3, local, memory
		Region         string `yaml:"region"`          // For S3
		Endpoint       string `yaml:"endpoint"`        // S3-compatible endpoint (Hetzner, R2, MinIO)
		AccessKey      string `yaml:"access_key"`      // For S3
		SecretKey      string `yaml:"secret_key"`      // For S3
		PublicBucket   string `yaml:"public_bucket"`   // Bucket for public files
		PrivateBucket  string `yaml:"private_bucket"`  // Bucket for private files
		PublicEndpoint string `yaml:"public_endpoint"` // Base of deterministic public URLs
		BasePath       string `yaml:"base_path"`       // For local storage
		BaseURL        string `yaml:"base_url"`        // For local storage
	} `yaml:"storage"`

	Files FileConfig `yaml:"files"`
}

var AppConfig *Config

// LoadConfig загружает конфигурацию в AppConfig.
// Порядок: .env -> YAML (CONFIG_PATH, по умолчанию config/config.yaml) -> переменные окружения.
func LoadConfig() {
	cfg, err := Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	AppConfig = cfg
}

// Load читает конфигурацию из файла и окружения.
// Отсутствие YAML-файла не ошибка: тогда все берется из окружения.
func Load(configPath string) (*Config, error) {
	// .env опционален
	_ = godotenv.Load()

	var cfg Config

	if configPath == "" {
		configPath = "config/config.yaml"
	}

	f, err := os.Open(configPath)
	switch {
	case err == nil:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file at %s: %w", configPath, err)
		}
	case os.IsNotExist(err):
		log.Printf("Config file %s not found, using environment only", configPath)
	default:
		return nil, fmt.Errorf("failed to open config file at %s: %w", configPath, err)
	}

	applyEnv(&cfg)
	cfg.Files.applyDefaults()
	applyDefaults(&cfg)

	return &cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Database.DSN, "DATABASE_URL")
	setString(&cfg.Server.Env, "SERVER_ENV")
	setString(&cfg.Server.Host, "SERVER_HOST")
	setInt(&cfg.Server.Port, "SERVER_PORT")
	setString(&cfg.JWT.Secret, "JWT_SECRET")
	setInt(&cfg.JWT.TTL, "JWT_TTL")

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.Server.CORSOrigins = strings.Split(origins, ",")
	}

	setString(&cfg.Storage.Type, "STORAGE_TYPE")
	setString(&cfg.Storage.Region, "STORAGE_REGION")
	setString(&cfg.Storage.Endpoint, "STORAGE_ENDPOINT")
	setString(&cfg.Storage.AccessKey, "STORAGE_ACCESS_KEY")
	setString(&cfg.Storage.SecretKey, "STORAGE_SECRET_KEY")
	setString(&cfg.Storage.PublicBucket, "STORAGE_PUBLIC_BUCKET")
	setString(&cfg.Storage.PrivateBucket, "STORAGE_PRIVATE_BUCKET")
	setString(&cfg.Storage.PublicEndpoint, "STORAGE_PUBLIC_ENDPOINT")
	setString(&cfg.Storage.BasePath, "STORAGE_BASE_PATH")
	setString(&cfg.Storage.BaseURL, "STORAGE_BASE_URL")
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Env == "" {
		cfg.Server.Env = "development"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.JWT.TTL == 0 {
		cfg.JWT.TTL = 60
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = []string{"*"}
	}
	if cfg.Storage.Type == "" {
		cfg.Storage.Type = "local"
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "auto"
	}
	if cfg.Storage.PublicEndpoint == "" {
		cfg.Storage.PublicEndpoint = cfg.Storage.Endpoint
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}
