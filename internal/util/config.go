package util

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Analysis AnalysisConfig `toml:"analysis"`
	Provider ProviderConfig `toml:"provider"`
	Storage  StorageConfig  `toml:"storage"`
}

type ServerConfig struct {
	Port int `toml:"port"`
}

type AnalysisConfig struct {
	RiskFreeRate       float64 `toml:"riskFreeRate"`
	UseTreasuryRate    bool    `toml:"useTreasuryRate"`
	TradingDays        int     `toml:"tradingDays"`
	HistoryDays        int     `toml:"historyDays"`
	MonteCarloCount    int     `toml:"monteCarloCount"`
	InterpolationCount int     `toml:"interpolationCount"`
}

type ProviderConfig struct {
	// DataServiceURL points the analysis routes at a remote data
	// service. Empty means fetch from yahoo in-process.
	DataServiceURL   string   `toml:"dataServiceUrl"`
	TreasuryURL      string   `toml:"treasuryUrl"`
	RetryAttempts    int      `toml:"retryAttempts"`
	RetryBackoffMs   int      `toml:"retryBackoffMs"`
	RequestTimeoutMs int      `toml:"requestTimeoutMs"`
	Assets           []string `toml:"assets"`
}

type StorageConfig struct {
	// SqlitePath enables the adjusted price cache when set
	SqlitePath string `toml:"sqlitePath"`
}

func (p ProviderConfig) RetryBackoff() time.Duration {
	return time.Duration(p.RetryBackoffMs) * time.Millisecond
}

func (p ProviderConfig) RequestTimeout() time.Duration {
	return time.Duration(p.RequestTimeoutMs) * time.Millisecond
}

func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 3009,
		},
		Analysis: AnalysisConfig{
			RiskFreeRate:       0.02,
			TradingDays:        252,
			HistoryDays:        30,
			MonteCarloCount:    10000,
			InterpolationCount: 10,
		},
		Provider: ProviderConfig{
			TreasuryURL:      "https://www.ustreasuryyieldcurve.com",
			RetryAttempts:    3,
			RetryBackoffMs:   1000,
			RequestTimeoutMs: 10000,
			Assets:           []string{"AAPL", "MSFT", "GOOGL", "TSLA"},
		},
	}
}

func configFile() string {
	if path := os.Getenv("PORTFOLIO_CONFIG"); path != "" {
		return path
	}
	switch strings.ToLower(os.Getenv("PORTFOLIO_ENV")) {
	case "dev":
		return "config-dev.toml"
	case "test":
		return "config-test.toml"
	}
	return "config.toml"
}

// LoadConfig layers defaults, then the env-specific toml file, then
// env var overrides. A missing file is not an error.
func LoadConfig() (*Config, error) {
	return LoadConfigFromFile(configFile())
}

func LoadConfigFromFile(path string) (*Config, error) {
	config := NewDefaultConfig()

	f, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("could not open %s: %w", path, err)
	}
	if err == nil {
		if err := toml.Unmarshal(f, config); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(config); err != nil {
		return nil, err
	}

	return config, nil
}

func applyEnvOverrides(config *Config) error {
	if port := os.Getenv("PORTFOLIO_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid PORTFOLIO_PORT %q: %w", port, err)
		}
		config.Server.Port = p
	}
	if url := os.Getenv("DATA_SERVICE_URL"); url != "" {
		config.Provider.DataServiceURL = url
	}
	if path := os.Getenv("PORTFOLIO_SQLITE_PATH"); path != "" {
		config.Storage.SqlitePath = path
	}
	if rate := os.Getenv("PORTFOLIO_RISK_FREE_RATE"); rate != "" {
		r, err := strconv.ParseFloat(rate, 64)
		if err != nil {
			return fmt.Errorf("invalid PORTFOLIO_RISK_FREE_RATE %q: %w", rate, err)
		}
		config.Analysis.RiskFreeRate = r
	}
	return nil
}
