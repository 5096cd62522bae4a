package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config описывает конфигурацию сервера. Все поля имеют значения по
// умолчанию, так что бинарь запускается и вовсе без файла конфигурации.
type Config struct {
	// ListenAddr - адрес HTTP-сервера, например ":8080".
	ListenAddr string `yaml:"listen_addr"`
	// DatabaseURL - DSN PostgreSQL; нужен только для -storage=postgres.
	DatabaseURL string `yaml:"database_url"`
	// UploadsDir - каталог для загруженных изображений.
	UploadsDir string `yaml:"uploads_dir"`
	// UploadsBaseURL - публичный префикс, под которым раздается UploadsDir.
	UploadsBaseURL string `yaml:"uploads_base_url"`
	// MaxUploadBytes - серверный лимит размера загрузки.
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`
	// DevMode включает подробности ошибок в ответах. В продакшене
	// наружу уходит только общее сообщение.
	DevMode bool `yaml:"dev_mode"`
}

// Default возвращает конфигурацию по умолчанию.
func Default() *Config {
	return &Config{
		ListenAddr:     ":8080",
		UploadsDir:     "public/uploads",
		UploadsBaseURL: "/uploads",
		MaxUploadBytes: 5 << 20, // 5 MB
	}
}

// Load читает yaml-файл поверх значений по умолчанию и применяет
// переопределения из окружения (PORT, DATABASE_URL).
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.ListenAddr = ":" + port
	}
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		cfg.DatabaseURL = dsn
	}

	if cfg.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("max_upload_bytes must be positive, got %d", cfg.MaxUploadBytes)
	}
	return cfg, nil
}
