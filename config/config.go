package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type Config struct {
	Mode         string `mapstructure:"mode"`
	Repositories struct {
		Mongo MongoConfig `mapstructure:"mongo"`
	} `mapstructure:"repositories"`
	JWT    JWTConfig    `mapstructure:"jwt"`
	Upload UploadConfig `mapstructure:"upload"`
	Server struct {
		HTTPPort string        `mapstructure:"HTTPPort"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
}

type MongoConfig struct {
	URI string `mapstructure:"uri"`
	DB  string `mapstructure:"db"`
}

type JWTConfig struct {
	SecretKey  string        `mapstructure:"secretKey"`
	Issuer     string        `mapstructure:"issuer"`
	Audience   string        `mapstructure:"audience"`
	Expiration time.Duration `mapstructure:"expiration"`
}

// UploadConfig holds the S3-compatible image store settings. PublicBaseURL
// is the externally reachable prefix objects are served from.
type UploadConfig struct {
	Endpoint      string `mapstructure:"endpoint"`
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	AccessKey     string `mapstructure:"accessKey"`
	SecretKey     string `mapstructure:"secretKey"`
	PublicBaseURL string `mapstructure:"publicBaseURL"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	// Add file-based config paths
	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	// Try to load file-based config
	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %s", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %s", err)
	}

	applyEnvOverrides(&config)
	return config, nil
}

// applyEnvOverrides lets secrets and deployment-specific values come from
// the environment (loaded from .env by the caller) instead of the YAML file.
func applyEnvOverrides(cfg *Config) {
	setIfPresent := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setIfPresent(&cfg.Mode, "APP_ENV")
	setIfPresent(&cfg.Server.HTTPPort, "HTTP_PORT")
	setIfPresent(&cfg.Repositories.Mongo.URI, "MONGO_URI")
	setIfPresent(&cfg.Repositories.Mongo.DB, "MONGO_DB")
	setIfPresent(&cfg.JWT.SecretKey, "JWT_SECRET")
	setIfPresent(&cfg.Upload.Endpoint, "S3_ENDPOINT")
	setIfPresent(&cfg.Upload.Region, "S3_REGION")
	setIfPresent(&cfg.Upload.Bucket, "S3_BUCKET")
	setIfPresent(&cfg.Upload.AccessKey, "S3_ACCESS_KEY")
	setIfPresent(&cfg.Upload.SecretKey, "S3_SECRET_KEY")
	setIfPresent(&cfg.Upload.PublicBaseURL, "S3_PUBLIC_BASE_URL")
}
