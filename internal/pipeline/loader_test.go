package pipeline

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/theirongolddev/salesdash/internal/source"
	"github.com/theirongolddev/salesdash/internal/store"
)

func writeFixture(t *testing.T, dir string) string {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	rows := [][]interface{}{
		{"MÊS", "VENDAS", "QUANTIDADE DE CLIENTES", "INVESTIMENTO META", "INVESTIMENTO GOOGLE"},
		{"Março", "R$ 3.000,00", 30, "R$ 1.000,00", "R$ 500,00"},
		{"Janeiro", "R$ 1.000,00", 10, "R$ 200,00", "R$ 300,00"},
		{"Fevereiro", "R$ 2.000,00", 20, "R$ 400,00", "R$ 100,00"},
	}
	for i, r := range rows {
		ref, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", ref, &r))
	}
	path := filepath.Join(dir, "base.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func defaultOptions() Options {
	return Options{Source: source.DefaultOptions()}
}

func TestLoad(t *testing.T) {
	path := writeFixture(t, t.TempDir())

	var calls int
	res, err := Load(path, defaultOptions(), func(cur, total int) {
		calls++
		assert.Equal(t, 2, total)
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	assert.Equal(t, []string{"Janeiro", "Fevereiro", "Março"}, res.Months())
	assert.Equal(t, []string{"INVESTIMENTO META", "INVESTIMENTO GOOGLE"}, res.Channels)
	assert.Equal(t, "Meta", res.ChannelLabels()["INVESTIMENTO META"])
	assert.Equal(t, 9, res.CleanedCells)
	assert.Zero(t, res.ParseFailures)

	s := Aggregate(res.Rows, res.Channels)
	assert.InDelta(t, 6000.0, s.Revenue, 1e-9)
	assert.InDelta(t, 2500.0, s.Investment, 1e-9)
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "base_tratada_powerbi.xlsx"), defaultOptions(), nil)
	assert.ErrorIs(t, err, source.ErrFileNotFound)
}

func TestLoadWithCache_HitAndInvalidate(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir)

	cache, err := store.Open(filepath.Join(dir, "cache.db"))
	require.NoError(t, err)
	defer func() { _ = cache.Close() }()

	first, err := LoadWithCache(path, defaultOptions(), cache, nil)
	require.NoError(t, err)
	assert.False(t, first.CacheHit)

	second, err := LoadWithCache(path, defaultOptions(), cache, nil)
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Equal(t, first.Rows, second.Rows)
	assert.Equal(t, first.Channels, second.Channels)
	assert.Equal(t, "Sheet1", second.Sheet)

	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, later, later))
	third, err := LoadWithCache(path, defaultOptions(), cache, nil)
	require.NoError(t, err)
	assert.False(t, third.CacheHit)

	opts := defaultOptions()
	opts.Source.Channels = []string{"INVESTIMENTO META"}
	fourth, err := LoadWithCache(path, opts, cache, nil)
	require.NoError(t, err)
	assert.False(t, fourth.CacheHit, "different options must not share cached rows")
	assert.Equal(t, []string{"INVESTIMENTO META"}, fourth.Channels)
}

func TestLoadWithCache_FileNotFound(t *testing.T) {
	dir := t.TempDir()
	cache, err := store.Open(filepath.Join(dir, "cache.db"))
	require.NoError(t, err)
	defer func() { _ = cache.Close() }()

	_, err = LoadWithCache(filepath.Join(dir, "missing.xlsx"), defaultOptions(), cache, nil)
	assert.ErrorIs(t, err, source.ErrFileNotFound)
}

func TestLoadWithCache_WriteFailureIsReported(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir)
	dbPath := filepath.Join(dir, "cache.db")

	cache, err := store.Open(dbPath)
	require.NoError(t, err)
	defer func() { _ = cache.Close() }()

	// A second connection makes every insert into the cache fail.
	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	_, err = db.Exec(`CREATE TRIGGER reject_sheets BEFORE INSERT ON sheets
		BEGIN SELECT RAISE(ABORT, 'cache is read-only'); END`)
	require.NoError(t, err)

	res, err := LoadWithCache(path, defaultOptions(), cache, nil)
	require.NoError(t, err, "a cache write failure must not fail the load")
	assert.False(t, res.CacheHit)
	assert.Len(t, res.Rows, 3)
	require.Error(t, res.CacheErr)
	assert.Contains(t, res.CacheErr.Error(), "cache is read-only")
}

func TestOptionsKey_StableAndOptionSensitive(t *testing.T) {
	a := OptionsKey(defaultOptions())
	assert.NotEmpty(t, a)
	assert.Equal(t, a, OptionsKey(defaultOptions()))

	opts := defaultOptions()
	opts.Sheet = "Dados"
	assert.NotEqual(t, a, OptionsKey(opts))
}

func BenchmarkAggregate(b *testing.B) {
	rows := sampleRows()
	for i := 0; i < 8; i++ {
		rows = append(rows, rows...)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Aggregate(rows, both)
		_ = AggregateChannels(rows, both)
	}
}
