package config

import (
	"github.com/shareit/service-booking/pkg/config"
)

// ServiceConfig holds all configuration for the sharing service.
type ServiceConfig struct {
	Port          string
	AppEnv        string
	MigrationsDir string
	DBConfig      config.DatabaseConfig
	KafkaConfig   config.KafkaConfig
	RedisConfig   config.RedisConfig
}

// Load reads configuration from SHAREIT_* environment variables and config.yaml.
func Load() (*ServiceConfig, error) {
	v, err := config.Load("SHAREIT")
	if err != nil {
		return nil, err
	}
	v.SetDefault("DB_NAME", "shareit")
	v.SetDefault("MIGRATIONS_DIR", "migrations")

	return &ServiceConfig{
		Port:          config.GetServicePort(v, "SERVICE_PORT"),
		AppEnv:        config.GetAppEnv(v),
		MigrationsDir: v.GetString("MIGRATIONS_DIR"),
		DBConfig:      config.LoadDatabaseConfig(v, "DB_NAME"),
		KafkaConfig:   config.LoadKafkaConfig(v),
		RedisConfig:   config.LoadRedisConfig(v),
	}, nil
}
