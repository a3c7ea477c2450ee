package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLookupCurrency_NormalizesCode(t *testing.T) {
	p, ok := LookupCurrency(" brl ")
	if !ok {
		t.Fatal("LookupCurrency returned !ok for BRL")
	}
	if p.Symbol != "R$" || p.Thousand != "." || p.Decimal != "," {
		t.Fatalf("BRL profile = %+v", p)
	}
}

func TestLookupCurrency_UnknownFallsBackToBRL(t *testing.T) {
	p, ok := LookupCurrency("XYZ")
	if ok {
		t.Fatal("LookupCurrency returned ok for unknown code")
	}
	if p.Code != "BRL" {
		t.Fatalf("fallback code = %q, want BRL", p.Code)
	}
}

func TestResolveCurrency_AppliesOverrides(t *testing.T) {
	p := ResolveCurrency(CurrencyConfig{Code: "usd", Symbol: "US$"})
	if p.Code != "USD" {
		t.Fatalf("Code = %q, want USD", p.Code)
	}
	if p.Symbol != "US$" {
		t.Fatalf("Symbol = %q, want US$", p.Symbol)
	}
	if p.Thousand != "," || p.Decimal != "." {
		t.Fatalf("separators = %q %q, want , .", p.Thousand, p.Decimal)
	}
}

func TestLoadFrom_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Columns.Revenue != "VENDAS" {
		t.Fatalf("Revenue column = %q, want VENDAS", cfg.Columns.Revenue)
	}
	if cfg.General.DataFile != DefaultDataFile {
		t.Fatalf("DataFile = %q, want %q", cfg.General.DataFile, DefaultDataFile)
	}
}

func TestSaveTo_RoundTripsGoals(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	cfg := DefaultConfig()
	target := 50000.0
	cfg.Goals.MonthlyRevenue = &target
	cfg.Columns.Channels = []string{"INVESTIMENTO META", "INVESTIMENTO GOOGLE"}

	if err := SaveTo(path, cfg); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if got.Goals.MonthlyRevenue == nil || *got.Goals.MonthlyRevenue != target {
		t.Fatalf("MonthlyRevenue = %v, want %v", got.Goals.MonthlyRevenue, target)
	}
	if len(got.Columns.Channels) != 2 {
		t.Fatalf("Channels = %v", got.Columns.Channels)
	}
}

func TestLoadFrom_MalformedIsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[general\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestGetDataFile_EnvWins(t *testing.T) {
	t.Setenv("SALESDASH_FILE", "/tmp/other.xlsx")
	if got := GetDataFile(DefaultConfig()); got != "/tmp/other.xlsx" {
		t.Fatalf("GetDataFile = %q", got)
	}
}
