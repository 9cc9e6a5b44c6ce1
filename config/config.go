package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	DatabaseURL        string
	Port               string
	GoEnv              string
	Auth0Domain        string
	Auth0Audience      string
	AWSRegion          string
	AWSS3Bucket        string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	LogLevel           string
	PostalCodeAPIURL   string
	CORSAllowedOrigins []string
	UploadDir          string
}

// ClientConfig holds the settings of the operator CLI
type ClientConfig struct {
	OrderAPIURL     string
	OrderAPIToken   string
	BalanceDebounce time.Duration
	GoEnv           string
	LogLevel        string
}

var (
	configMu       sync.RWMutex
	configInstance *Config
)

// loadEnvFiles loads .env.<GO_ENV> and falls back to .env. Variables already
// set in the process environment win.
func loadEnvFiles() {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	envFile := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(envFile); err != nil {
		if err := godotenv.Load(); err != nil {
			// In production the variables are set directly, so missing files are fine
			log.Printf("No .env file found, using system environment variables")
		}
	} else {
		log.Printf("Loaded configuration from %s", envFile)
	}
}

// Load loads the server configuration from environment variables and keeps
// it for GetConfig. The .env file is picked by GO_ENV.
func Load() (*Config, error) {
	loadEnvFiles()

	config := &Config{
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		Port:               getEnv("PORT", "8080"),
		GoEnv:              getEnv("GO_ENV", "development"),
		Auth0Domain:        getEnv("AUTH0_DOMAIN", ""),
		Auth0Audience:      getEnv("AUTH0_AUDIENCE", ""),
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSS3Bucket:        getEnv("AWS_S3_BUCKET", ""),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		PostalCodeAPIURL:   getEnv("POSTAL_CODE_API_URL", "https://viacep.com.br/ws"),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		UploadDir:          getEnv("UPLOAD_DIR", "./uploads"),
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	SetConfig(config)
	return config, nil
}

// LoadClient loads the CLI configuration
func LoadClient() (*ClientConfig, error) {
	loadEnvFiles()

	debounce, err := time.ParseDuration(getEnv("BALANCE_DEBOUNCE", "400ms"))
	if err != nil {
		return nil, fmt.Errorf("BALANCE_DEBOUNCE is not a duration: %w", err)
	}

	cfg := &ClientConfig{
		OrderAPIURL:     strings.TrimRight(getEnv("ORDER_API_URL", "http://localhost:8080/api/v1"), "/"),
		OrderAPIToken:   getEnv("ORDER_API_TOKEN", ""),
		BalanceDebounce: debounce,
		GoEnv:           getEnv("GO_ENV", "development"),
		LogLevel:        getEnv("LOG_LEVEL", "warn"),
	}
	if cfg.OrderAPIURL == "" {
		return nil, fmt.Errorf("ORDER_API_URL is required")
	}
	return cfg, nil
}

// Validate checks that all required configuration values are set
func (c *Config) Validate() error {
	if c.IsProduction() && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.IsProduction() && (c.Auth0Domain == "" || c.Auth0Audience == "") {
		return fmt.Errorf("AUTH0_DOMAIN and AUTH0_AUDIENCE are required")
	}
	return nil
}

// GetConfig returns the configuration stored by the last Load or SetConfig
func GetConfig() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return configInstance
}

// SetConfig sets the configuration instance (primarily for testing)
func SetConfig(cfg *Config) {
	configMu.Lock()
	defer configMu.Unlock()
	configInstance = cfg
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsTest returns true if the application is running in test mode
func (c *Config) IsTest() bool {
	return c.GoEnv == "test"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// UsesS3 reports whether uploaded photos go to S3 instead of the local disk
func (c *Config) UsesS3() bool {
	return c.AWSS3Bucket != ""
}

// GetDatabaseURL returns the database URL
func (c *Config) GetDatabaseURL() string {
	return c.DatabaseURL
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
