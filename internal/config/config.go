package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel     string        `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	LogFormat    string        `yaml:"log-format" env:"LOG_FORMAT" env-default:"text"`
	HTTPPort     string        `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SecretsPath  string        `yaml:"secrets-path" env:"AI_ARENA_SECRETS"`
	AgentTimeout time.Duration `yaml:"agent-timeout" env:"AGENT_TIMEOUT" env-default:"0s"`
	Storage      Storage       `yaml:"storage"`
	Export       Export        `yaml:"export"`
}

type Storage struct {
	Driver     string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"memory"`
	Redis      Redis  `yaml:"redis"`
	SQLitePath string `yaml:"sqlite-path" env:"SQLITE_PATH" env-default:"ai_arena.db"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

type Export struct {
	GCSBucket          string `yaml:"gcs-bucket" env:"GCS_BUCKET"`
	GCSEndpoint        string `yaml:"gcs-endpoint" env:"GCS_ENDPOINT"`
	GCSCredentialsFile string `yaml:"gcs-credentials-file" env:"GOOGLE_APPLICATION_CREDENTIALS"`
}

// Load reads path when it exists and the environment otherwise. Environment
// variables override the file.
func Load(path string) (*Config, error) {
	config := &Config{}

	_, err := os.Stat(path)
	switch {
	case err == nil:
		if err = cleanenv.ReadConfig(path, config); err != nil {
			return nil, fmt.Errorf("unable to load config file: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
		if err = cleanenv.ReadEnv(config); err != nil {
			return nil, fmt.Errorf("unable to load config from environment: %w", err)
		}
	default:
		return nil, fmt.Errorf("unable to stat config file: %w", err)
	}

	return config, nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
