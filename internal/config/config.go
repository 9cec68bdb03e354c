package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel        string        `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort        string        `yaml:"http-port" env:"HTTP_PORT" env-default:"5000"`
	SocketPort      string        `yaml:"socket-port" env:"SOCKET_PORT" env-default:"5001"`
	ShutdownTimeout time.Duration `yaml:"shutdown-timeout" env-default:"10s"`
	Redis           Redis         `yaml:"redis"`
	Storage         Storage       `yaml:"storage"`
	Publisher       Publisher     `yaml:"publisher"`
}

type Redis struct {
	Host     string        `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port     string        `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD" env-default:""`
	DB       int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	GameTTL  time.Duration `yaml:"game-ttl" env-default:"24h"`
}

// Storage selects the SQL database holding the move log.
type Storage struct {
	Driver       string        `yaml:"driver" env:"STORAGE_DRIVER" env-default:"sqlite"`
	DSN          string        `yaml:"dsn" env:"STORAGE_DSN" env-default:"connect4.db"`
	WriteTimeout time.Duration `yaml:"write-timeout" env-default:"3s"`
}

type Publisher struct {
	Enabled         bool          `yaml:"enabled" env:"PUBLISHER_ENABLED" env-default:"true"`
	Topic           string        `yaml:"topic" env:"PUBLISHER_TOPIC" env-default:"game-moves"`
	MaxLen          int64         `yaml:"max-len" env-default:"10000"`
	QueueSize       int           `yaml:"queue-size" env-default:"256"`
	MaxRetries      uint64        `yaml:"max-retries" env-default:"3"`
	InitialInterval time.Duration `yaml:"initial-interval" env-default:"100ms"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

// SlogLevel parses LogLevel ("debug", "info", "warn", "error", optionally with an offset like "info+2").
func (that *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(that.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log-level %q: %w", that.LogLevel, err)
	}

	return level, nil
}
