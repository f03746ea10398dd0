package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	APIURL            string        `mapstructure:"API_URL"`
	HealthURL         string        `mapstructure:"HEALTH_URL"`
	Env               string        `mapstructure:"ENV"`
	LogLevel          string        `mapstructure:"LOG_LEVEL"`
	HTTPTimeout       time.Duration `mapstructure:"HTTP_TIMEOUT"`
	MaxRequestsPerMin int           `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// LoginEncoding selects how credentials are posted: "form" or "json".
	LoginEncoding string `mapstructure:"LOGIN_ENCODING"`
	Language      string `mapstructure:"LANGUAGE"`

	// Session persistence.
	SessionBackend string        `mapstructure:"SESSION_BACKEND"`
	SessionFile    string        `mapstructure:"SESSION_FILE"`
	SessionTTL     time.Duration `mapstructure:"SESSION_TTL"`

	// Redis configuration, used when SESSION_BACKEND=redis.
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB int    `mapstructure:"REDIS_SESSION_DB"`
}

var AppConfig Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("API_URL", "http://localhost:8000/api/v1")
	v.SetDefault("HEALTH_URL", "http://localhost:8000/health")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("HTTP_TIMEOUT", "0s")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 120)
	v.SetDefault("LOGIN_ENCODING", "form")
	v.SetDefault("LANGUAGE", "pt")
	v.SetDefault("SESSION_BACKEND", "file")
	v.SetDefault("SESSION_FILE", "")
	v.SetDefault("SESSION_TTL", "0s")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_SESSION_DB", 3)
}

// LoadConfig looks for config.yaml in the current and "config" directory,
// then overlays environment variables.
func LoadConfig() {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := v.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

// Defaults returns the configuration with only default values applied.
func Defaults() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("Failed to load default config: %v", err)
	}
	return cfg
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
