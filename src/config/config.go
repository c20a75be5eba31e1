package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"coin-market-api/src/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const envPrefix = "COINMARKET_"

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new MConfig instance from YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Unmarshal data into the models struct
	modelConfig := Defaults()
	if err := yaml.Unmarshal(data, modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: modelConfig}

	// 3. Environment wins over the file
	if err := config.ApplyEnv(); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	// 4. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// Defaults returns the configuration used for keys missing from the file
func Defaults() *models.MConfig {
	return &models.MConfig{
		Name:        "coin-market-api",
		Host:        "0.0.0.0",
		Port:        8000,
		LogLevel:    "INFO",
		GrpcHost:    "0.0.0.0",
		GrpcPort:    50051,
		CorsOrigins: []string{"*"},
		Logging: models.MLoggingConfig{
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 7,
		},
		Market: models.MMarketConfig{
			SampleDataPath:    "data/sample.json",
			VsCurrency:        "usd",
			MaxHistoricalDays: 365,
			DefaultSymbols:    []string{"bitcoin", "ethereum", "binancecoin", "ripple", "cardano"},
			DefaultSymbol:     "bitcoin",
			DefaultInterval:   "daily",
		},
		Realtime: models.MRealtimeConfig{
			PriceUpdateIntervalSeconds: 1,
			UpdateIntervalSeconds:      2,
			ErrorPauseSeconds:          5,
			DefaultPushEnabled:         true,
			MaxChangePercent:           0.5,
			SeedPrices: map[string]float64{
				"bitcoin":  65000,
				"ethereum": 3500,
			},
		},
	}
}

// -----------------------------------------------------------------------------

// LoadDotEnv loads a .env file into the process environment if it exists
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load env file '%s': %w", path, err)
	}
	return nil
}

// -----------------------------------------------------------------------------

// ApplyEnv overrides selected keys from COINMARKET_* variables
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(envPrefix + "HOST"); v != "" {
		c.Host = v
	}
	if v := os.Getenv(envPrefix + "PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sPORT '%s': %w", envPrefix, v, err)
		}
		c.Port = port
	}
	if v := os.Getenv(envPrefix + "GRPC_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sGRPC_PORT '%s': %w", envPrefix, v, err)
		}
		c.GrpcPort = port
	}
	if v := os.Getenv(envPrefix + "LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(envPrefix + "LOG_FILE"); v != "" {
		c.Logging.File = v
	}
	if v := os.Getenv(envPrefix + "SAMPLE_DATA"); v != "" {
		c.Market.SampleDataPath = v
	}
	if v := os.Getenv(envPrefix + "CORS_ORIGINS"); v != "" {
		c.CorsOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv(envPrefix + "DEFAULT_PUSH"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %sDEFAULT_PUSH '%s': %w", envPrefix, v, err)
		}
		c.Realtime.DefaultPushEnabled = enabled
	}
	return nil
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	// Server
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}
	if c.GrpcPort < 0 || c.GrpcPort > 65535 {
		return fmt.Errorf("invalid grpc port number: %d", c.GrpcPort)
	}
	if c.GrpcPort != 0 && c.GrpcPort == c.Port {
		return fmt.Errorf("grpc port %d collides with the http port", c.GrpcPort)
	}

	// Market
	if c.Market.SampleDataPath == "" {
		return fmt.Errorf("sample data path cannot be empty")
	}
	if c.Market.VsCurrency == "" {
		return fmt.Errorf("vs currency cannot be empty")
	}
	if c.Market.MaxHistoricalDays <= 0 {
		return fmt.Errorf("max historical days must be greater than 0")
	}
	if len(c.Market.DefaultSymbols) == 0 {
		return fmt.Errorf("at least one default symbol must be configured")
	}
	for i, sym := range c.Market.DefaultSymbols {
		if sym == "" {
			return fmt.Errorf("default symbol %d cannot be empty", i)
		}
	}
	if c.Market.DefaultSymbol == "" {
		return fmt.Errorf("default symbol cannot be empty")
	}

	// Realtime
	if c.Realtime.PriceUpdateIntervalSeconds <= 0 {
		return fmt.Errorf("price update interval must be greater than 0")
	}
	if c.Realtime.UpdateIntervalSeconds <= 0 {
		return fmt.Errorf("update interval must be greater than 0")
	}
	if c.Realtime.ErrorPauseSeconds <= 0 {
		return fmt.Errorf("error pause must be greater than 0")
	}
	if c.Realtime.MaxChangePercent <= 0 || c.Realtime.MaxChangePercent >= 100 {
		return fmt.Errorf("max change percent must be in (0, 100), got %v", c.Realtime.MaxChangePercent)
	}
	for coin, price := range c.Realtime.SeedPrices {
		if price <= 0 {
			return fmt.Errorf("seed price for '%s' must be positive", coin)
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
