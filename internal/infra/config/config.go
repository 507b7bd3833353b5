package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTPAddress   string
	GRPCAddress   string
	HTTPSCertFile string
	HTTPSKeyFile  string
	LogLevel      string
	LogFormat     string

	DatabaseURL string

	RedisAddress  string
	RedisPassword string
	RedisDB       int

	JWTSecret         string
	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	AccessTokenTTL    time.Duration
	RefreshTokenTTL   time.Duration
	TokenLeeway       time.Duration
	Issuer            string
	Audience          string
	PasswordPepper    string

	AllowedOrigins   []string
	AllowCredentials bool

	RateLimit      int
	RateLimitBurst int

	S3Endpoint      string
	S3Region        string
	S3Bucket        string
	S3AccessKey     string
	S3SecretKey     string
	S3PublicBaseURL string
}

func (c *Config) TLSEnabled() bool {
	return c.HTTPSCertFile != "" && c.HTTPSKeyFile != ""
}

func (c *Config) S3Enabled() bool {
	return c.S3Bucket != ""
}

// Load reads configuration from the environment, optionally layered on top of
// a config.{json,yaml} in the working directory.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDRESS", ":8000")
	v.SetDefault("GRPC_ADDRESS", ":50051")
	v.SetDefault("ACCESS_TOKEN_TTL", "5m")
	v.SetDefault("REFRESH_TOKEN_TTL", "720h")
	v.SetDefault("JWT_LEEWAY", "0s")
	v.SetDefault("JWT_ISSUER", "social-service")
	v.SetDefault("JWT_AUDIENCE", "social-api")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("RATE_LIMIT", 50)
	v.SetDefault("RATE_LIMIT_BURST", 100)
	v.SetDefault("S3_REGION", "us-east-1")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		HTTPAddress:       v.GetString("HTTP_ADDRESS"),
		GRPCAddress:       v.GetString("GRPC_ADDRESS"),
		HTTPSCertFile:     v.GetString("HTTPS_CERT_FILE"),
		HTTPSKeyFile:      v.GetString("HTTPS_KEY_FILE"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		LogFormat:         v.GetString("LOG_FORMAT"),
		DatabaseURL:       v.GetString("DATABASE_URL"),
		RedisAddress:      v.GetString("REDIS_ADDRESS"),
		RedisPassword:     v.GetString("REDIS_PASSWORD"),
		RedisDB:           v.GetInt("REDIS_DB"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		JWTPrivateKeyPath: v.GetString("JWT_PRIVATE_KEY_PATH"),
		JWTPublicKeyPath:  v.GetString("JWT_PUBLIC_KEY_PATH"),
		AccessTokenTTL:    v.GetDuration("ACCESS_TOKEN_TTL"),
		RefreshTokenTTL:   v.GetDuration("REFRESH_TOKEN_TTL"),
		TokenLeeway:       v.GetDuration("JWT_LEEWAY"),
		Issuer:            v.GetString("JWT_ISSUER"),
		Audience:          v.GetString("JWT_AUDIENCE"),
		PasswordPepper:    v.GetString("PASSWORD_PEPPER"),
		AllowedOrigins:    v.GetStringSlice("ALLOWED_ORIGINS"),
		AllowCredentials:  v.GetBool("ALLOW_CREDENTIALS"),
		RateLimit:         v.GetInt("RATE_LIMIT"),
		RateLimitBurst:    v.GetInt("RATE_LIMIT_BURST"),
		S3Endpoint:        v.GetString("S3_ENDPOINT"),
		S3Region:          v.GetString("S3_REGION"),
		S3Bucket:          v.GetString("S3_BUCKET"),
		S3AccessKey:       v.GetString("S3_ACCESS_KEY"),
		S3SecretKey:       v.GetString("S3_SECRET_KEY"),
		S3PublicBaseURL:   v.GetString("S3_PUBLIC_BASE_URL"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	hasKeyPair := c.JWTPrivateKeyPath != "" && c.JWTPublicKeyPath != ""
	if c.JWTSecret == "" && !hasKeyPair {
		return errors.New("JWT_SECRET or JWT_PRIVATE_KEY_PATH/JWT_PUBLIC_KEY_PATH is required")
	}
	if c.AccessTokenTTL <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_TTL must be positive, got %s", c.AccessTokenTTL)
	}
	if c.RefreshTokenTTL < 0 {
		return fmt.Errorf("REFRESH_TOKEN_TTL must not be negative, got %s", c.RefreshTokenTTL)
	}
	if c.RefreshTokenTTL > 0 && c.AccessTokenTTL > c.RefreshTokenTTL {
		return fmt.Errorf("ACCESS_TOKEN_TTL (%s) must not exceed REFRESH_TOKEN_TTL (%s)", c.AccessTokenTTL, c.RefreshTokenTTL)
	}
	return nil
}
