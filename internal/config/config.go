package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Mongo     MongoConfig
	JWT       JWTConfig
	Reset     ResetConfig
	Password  PasswordConfig
	SMTP      SMTPConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

type ServerConfig struct {
	Port        string
	Host        string
	Environment string
	FrontendURL string
}

type MongoConfig struct {
	URI      string
	Database string
}

type JWTConfig struct {
	Secret            string
	ExpiresDays       int
	CookieExpiresDays int
}

type ResetConfig struct {
	TokenTTLMinutes int
}

type PasswordConfig struct {
	BcryptCost int
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type RateLimitConfig struct {
	GeneralRPS   float64 // Requests per second for general endpoints
	GeneralBurst int     // Burst size for general endpoints
	AuthRPS      float64 // Requests per second for authentication endpoints
	AuthBurst    int     // Burst size for authentication endpoints
}

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AddConfigPath(".")
	if homeDir, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(homeDir)
	}
	viper.AutomaticEnv()

	viper.SetDefault("JWT_EXPIRES_DAYS", 7)
	viper.SetDefault("JWT_COOKIE_EXPIRES_DAYS", 7)
	viper.SetDefault("RESET_TOKEN_TTL_MINUTES", 10)
	viper.SetDefault("BCRYPT_COST", 12)
	viper.SetDefault("RATE_LIMIT_GENERAL_RPS", 100.0)
	viper.SetDefault("RATE_LIMIT_GENERAL_BURST", 200)
	viper.SetDefault("RATE_LIMIT_AUTH_RPS", 5.0)
	viper.SetDefault("RATE_LIMIT_AUTH_BURST", 10)

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		log.Printf("Warning: config file not found: %v. Falling back to environment variables only.", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port:        viper.GetString("SERVER_PORT"),
			Host:        viper.GetString("SERVER_HOST"),
			Environment: viper.GetString("ENVIRONMENT"),
			FrontendURL: viper.GetString("FRONTEND_URL"),
		},
		Mongo: MongoConfig{
			URI:      viper.GetString("MONGO_URI"),
			Database: viper.GetString("MONGO_DB"),
		},
		JWT: JWTConfig{
			Secret:            viper.GetString("JWT_SECRET"),
			ExpiresDays:       viper.GetInt("JWT_EXPIRES_DAYS"),
			CookieExpiresDays: viper.GetInt("JWT_COOKIE_EXPIRES_DAYS"),
		},
		Reset: ResetConfig{
			TokenTTLMinutes: viper.GetInt("RESET_TOKEN_TTL_MINUTES"),
		},
		Password: PasswordConfig{
			BcryptCost: viper.GetInt("BCRYPT_COST"),
		},
		SMTP: SMTPConfig{
			Host:     viper.GetString("SMTP_HOST"),
			Port:     viper.GetInt("SMTP_PORT"),
			User:     viper.GetString("SMTP_USER"),
			Password: viper.GetString("SMTP_PASSWORD"),
			From:     viper.GetString("SMTP_FROM"),
		},
		RateLimit: RateLimitConfig{
			GeneralRPS:   viper.GetFloat64("RATE_LIMIT_GENERAL_RPS"),
			GeneralBurst: viper.GetInt("RATE_LIMIT_GENERAL_BURST"),
			AuthRPS:      viper.GetFloat64("RATE_LIMIT_AUTH_RPS"),
			AuthBurst:    viper.GetInt("RATE_LIMIT_AUTH_BURST"),
		},
		CORS: CORSConfig{
			AllowedOrigins:   viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods:   viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders:   viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
			ExposedHeaders:   viper.GetStringSlice("CORS_EXPOSED_HEADERS"),
			AllowCredentials: viper.GetBool("CORS_ALLOW_CREDENTIALS"),
			MaxAge:           viper.GetInt("CORS_MAX_AGE"),
		},
	}

	return config, nil
}

// ResetTokenTTL returns the reset-token validity window as a duration.
func (c *ResetConfig) ResetTokenTTL() time.Duration {
	return time.Duration(c.TokenTTLMinutes) * time.Minute
}
