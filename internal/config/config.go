package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// DefaultDataFile is the workbook looked up next to the binary when nothing else is configured.
const DefaultDataFile = "base_tratada_powerbi.xlsx"

// Config holds all salesdash configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Columns    ColumnsConfig    `toml:"columns"`
	Currency   CurrencyConfig   `toml:"currency"`
	Simulator  SimulatorConfig  `toml:"simulator"`
	Goals      GoalsConfig      `toml:"goals"`
	Appearance AppearanceConfig `toml:"appearance"`
	TUI        TUIConfig        `toml:"tui"`
	Server     ServerConfig     `toml:"server"`
}

// GeneralConfig holds the data source location.
type GeneralConfig struct {
	DataFile string `toml:"data_file"`
	Sheet    string `toml:"sheet,omitempty"`
}

// ColumnsConfig names the spreadsheet headers salesdash reads.
// Matching ignores case, accents and surrounding whitespace.
type ColumnsConfig struct {
	Month     string   `toml:"month"`
	Revenue   string   `toml:"revenue"`
	Customers string   `toml:"customers"`
	Channels  []string `toml:"channels,omitempty"` // empty = auto-detect INVEST* headers
}

// CurrencyConfig describes how money is written in the sheet and shown on screen.
type CurrencyConfig struct {
	Code     string `toml:"code"`
	Symbol   string `toml:"symbol,omitempty"`
	Thousand string `toml:"thousand,omitempty"`
	Decimal  string `toml:"decimal,omitempty"`
}

// SimulatorConfig holds what-if defaults.
type SimulatorConfig struct {
	DefaultInvestment float64 `toml:"default_investment"`
}

// GoalsConfig holds optional monthly targets.
type GoalsConfig struct {
	MonthlyRevenue *float64 `toml:"monthly_revenue,omitempty"`
	MaxCAC         *float64 `toml:"max_cac,omitempty"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// TUIConfig holds dashboard behaviour toggles.
type TUIConfig struct {
	AutoReload bool `toml:"auto_reload"`
}

// ServerConfig holds settings for the local HTTP view.
type ServerConfig struct {
	Addr            string `toml:"addr"`
	IntervalSeconds int    `toml:"interval_seconds"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			DataFile: DefaultDataFile,
		},
		Columns: ColumnsConfig{
			Month:     "MÊS",
			Revenue:   "VENDAS",
			Customers: "QUANTIDADE DE CLIENTES",
		},
		Currency: CurrencyConfig{
			Code: "BRL",
		},
		Simulator: SimulatorConfig{
			DefaultInvestment: 10000,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		TUI: TUIConfig{
			AutoReload: true,
		},
		Server: ServerConfig{
			Addr:            "127.0.0.1:8765",
			IntervalSeconds: 30,
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "salesdash")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "salesdash")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads the config at path, returning defaults if it doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // user-owned config path
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

// SaveTo writes the config to path, creating parent directories.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // user-owned config path
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// GetDataFile returns the workbook path from env var or config, in that order.
func GetDataFile(cfg Config) string {
	if path := os.Getenv("SALESDASH_FILE"); path != "" {
		return path
	}
	if cfg.General.DataFile != "" {
		return cfg.General.DataFile
	}
	return DefaultDataFile
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}
