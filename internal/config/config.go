package config

import (
	"os"

	"github.com/go-yaml/yaml"
)

type Config struct {
	Site         Site         `yaml:"site"`
	Server       Server       `yaml:"server"`
	Localization Localization `yaml:"localization"`
	APIKeys      []APIKey     `yaml:"apiKeys"`
}

type Site struct {
	FQDN string `yaml:"fqdn"`
}

type Server struct {
	Listen        string `yaml:"listen"`
	PostgresDsn   string `yaml:"postgresDsn"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisDB       int    `yaml:"redisDB"`
	MemcachedAddr string `yaml:"memcachedAddr"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
}

type Localization struct {
	Locales        []string `yaml:"locales"`
	DefaultLocale  string   `yaml:"defaultLocale"`
	FallbackLocale string   `yaml:"fallbackLocale"`
}

// APIKey grants a principal to callers presenting the matching key.
// Hash is a bcrypt hash of the raw key.
type APIKey struct {
	Principal string   `yaml:"principal"`
	Hash      string   `yaml:"hash"`
	Roles     []string `yaml:"roles"`
}

func Load(path string) (Config, error) {

	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, err
	}

	if config.Server.Listen == "" {
		config.Server.Listen = ":8000"
	}

	return config, nil
}
