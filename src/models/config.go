package models

// MConfig Structure
type MConfig struct {
	Name        string          `yaml:"name"`
	Host        string          `yaml:"host"`
	Port        int             `yaml:"port"`
	LogLevel    string          `yaml:"log_level"`
	GrpcHost    string          `yaml:"grpc_host"`
	GrpcPort    int             `yaml:"grpc_port"`
	CorsOrigins []string        `yaml:"cors_origins"`
	Logging     MLoggingConfig  `yaml:"logging"`
	Market      MMarketConfig   `yaml:"market"`
	Realtime    MRealtimeConfig `yaml:"realtime"`
}

type MLoggingConfig struct {
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	JSON       bool   `yaml:"json"`
}

type MMarketConfig struct {
	SampleDataPath    string   `yaml:"sample_data_path"`
	VsCurrency        string   `yaml:"vs_currency"`
	MaxHistoricalDays int      `yaml:"max_historical_days"`
	DefaultSymbols    []string `yaml:"default_symbols"`
	DefaultSymbol     string   `yaml:"default_symbol"`
	DefaultInterval   string   `yaml:"default_interval"`
}

type MRealtimeConfig struct {
	PriceUpdateIntervalSeconds int                `yaml:"price_update_interval_seconds"`
	UpdateIntervalSeconds      int                `yaml:"update_interval_seconds"`
	ErrorPauseSeconds          int                `yaml:"error_pause_seconds"`
	DefaultPushEnabled         bool               `yaml:"default_push_enabled"`
	MaxChangePercent           float64            `yaml:"max_change_percent"`
	SeedPrices                 map[string]float64 `yaml:"seed_prices"`
}
