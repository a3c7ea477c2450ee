package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/theirongolddev/salesdash/internal/model"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "cache", "sheets.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestSaveAndLoadSheet(t *testing.T) {
	c := openTestCache(t)

	entry := SheetEntry{
		Path:       "/data/base.xlsx",
		OptionsKey: "k1",
		Sheet:      "Plan1",
		File:       FileInfo{MtimeNs: 42, SizeBytes: 1024},
		Channels:   []string{"INVESTIMENTO META", "INVESTIMENTO GOOGLE"},
		Rows: []model.Row{
			{Month: "Jan", MonthID: 1, Revenue: 1000, Customers: 10, Line: 2,
				Investments: map[string]float64{"INVESTIMENTO META": 100, "INVESTIMENTO GOOGLE": 50}},
			{Month: "Fev", MonthID: 2, Revenue: 2000, Customers: 25, Line: 3,
				Investments: map[string]float64{"INVESTIMENTO META": 300}},
		},
		Cleaned:  4,
		Failures: 1,
	}
	if err := c.SaveSheet(entry); err != nil {
		t.Fatalf("SaveSheet: %v", err)
	}

	fi, ok, err := c.GetTrackedFile(entry.Path, "k1")
	if err != nil || !ok {
		t.Fatalf("GetTrackedFile = %v, %v, %v", fi, ok, err)
	}
	if fi.MtimeNs != 42 || fi.SizeBytes != 1024 {
		t.Errorf("tracked = %+v", fi)
	}

	got, err := c.LoadSheet(entry.Path, "k1")
	if err != nil {
		t.Fatalf("LoadSheet: %v", err)
	}
	if got.Sheet != "Plan1" || got.Cleaned != 4 || got.Failures != 1 {
		t.Errorf("metadata = %+v", got)
	}
	if len(got.Channels) != 2 || got.Channels[0] != "INVESTIMENTO META" {
		t.Errorf("Channels = %v", got.Channels)
	}
	if len(got.Rows) != 2 {
		t.Fatalf("Rows = %d, want 2", len(got.Rows))
	}
	if got.Rows[1].Month != "Fev" || got.Rows[1].Revenue != 2000 {
		t.Errorf("Rows[1] = %+v", got.Rows[1])
	}
	if got.Rows[0].Investments["INVESTIMENTO GOOGLE"] != 50 {
		t.Errorf("Rows[0] google = %v", got.Rows[0].Investments["INVESTIMENTO GOOGLE"])
	}
}

func TestSaveSheet_Replaces(t *testing.T) {
	c := openTestCache(t)
	e := SheetEntry{Path: "/a.xlsx", OptionsKey: "k", Rows: []model.Row{{Month: "Jan", MonthID: 1}}}
	if err := c.SaveSheet(e); err != nil {
		t.Fatal(err)
	}
	e.Rows = nil
	e.File.MtimeNs = 7
	if err := c.SaveSheet(e); err != nil {
		t.Fatal(err)
	}

	got, err := c.LoadSheet("/a.xlsx", "k")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Rows) != 0 {
		t.Errorf("Rows = %d, want 0 after replace", len(got.Rows))
	}
	n, _ := c.SheetCount()
	if n != 1 {
		t.Errorf("SheetCount = %d, want 1", n)
	}
}

func TestLoadSheet_NotCached(t *testing.T) {
	c := openTestCache(t)
	if _, err := c.LoadSheet("/missing.xlsx", "k"); !errors.Is(err, ErrNotCached) {
		t.Fatalf("err = %v, want ErrNotCached", err)
	}
	_, ok, err := c.GetTrackedFile("/missing.xlsx", "k")
	if err != nil || ok {
		t.Fatalf("GetTrackedFile = %v, %v", ok, err)
	}
}

func TestDeleteSheet(t *testing.T) {
	c := openTestCache(t)
	_ = c.SaveSheet(SheetEntry{Path: "/a.xlsx", OptionsKey: "k1"})
	_ = c.SaveSheet(SheetEntry{Path: "/a.xlsx", OptionsKey: "k2"})
	if err := c.DeleteSheet("/a.xlsx"); err != nil {
		t.Fatal(err)
	}
	n, _ := c.SheetCount()
	if n != 0 {
		t.Errorf("SheetCount = %d, want 0", n)
	}
}
