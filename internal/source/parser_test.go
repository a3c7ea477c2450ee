package source

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/theirongolddev/salesdash/internal/model"
)

func sampleSheet() RawSheet {
	return RawSheet{
		Headers: []string{"MÊS", "VENDAS", "QUANTIDADE DE CLIENTES", "INVESTIMENTO META", "INVESTIMENTO GOOGLE", "OBS"},
		Records: [][]string{
			{"Março", "R$ 3.000,00", "30", "R$ 1.000,00", "500", "x"},
			{"Janeiro", "R$ 1.000,00", "10", "R$ 200,00", "300"},
			{"Total", "R$ 9,99", "", "", "", ""},
			{"Fevereiro", "abc", "20", "R$ 100,00", "100", ""},
		},
	}
}

func TestParse_CleansAndSorts(t *testing.T) {
	res, err := Parse(sampleSheet(), DefaultOptions())
	require.NoError(t, err)

	var order []string
	for _, r := range res.Rows {
		order = append(order, r.Month)
	}
	if diff := cmp.Diff([]string{"Janeiro", "Fevereiro", "Março", "Total"}, order); diff != "" {
		t.Errorf("row order (-want +got):\n%s", diff)
	}

	jan := res.Rows[0]
	assert.Equal(t, 1, jan.MonthID)
	assert.InDelta(t, 1000.0, jan.Revenue, 1e-9)
	assert.InDelta(t, 10.0, jan.Customers, 1e-9)
	assert.InDelta(t, 200.0, jan.Investments["INVESTIMENTO META"], 1e-9)
	assert.InDelta(t, 300.0, jan.Investments["INVESTIMENTO GOOGLE"], 1e-9)

	assert.Zero(t, res.Rows[1].Revenue, "unparseable revenue coerces to zero")
	assert.Equal(t, 0, res.Rows[3].MonthID)

	assert.Equal(t, []string{"INVESTIMENTO META", "INVESTIMENTO GOOGLE"}, res.Channels)
	assert.Equal(t, 1, res.Failures())
}

func TestParse_ColumnTypeDetection(t *testing.T) {
	res, err := Parse(sampleSheet(), DefaultOptions())
	require.NoError(t, err)

	byHeader := map[string]ColumnReport{}
	for _, rep := range res.Reports {
		byHeader[rep.Header] = rep
	}
	assert.False(t, byHeader["VENDAS"].Numeric)
	assert.Equal(t, 4, byHeader["VENDAS"].Cleaned)
	assert.True(t, byHeader["QUANTIDADE DE CLIENTES"].Numeric)
	assert.True(t, byHeader["INVESTIMENTO GOOGLE"].Numeric)
	assert.False(t, byHeader["INVESTIMENTO META"].Numeric)
	assert.Equal(t, 3, byHeader["INVESTIMENTO META"].Cleaned)
}

func TestParse_MissingRevenueColumn(t *testing.T) {
	raw := RawSheet{Headers: []string{"MÊS", "CLIENTES"}, Records: [][]string{{"Jan", "1"}}}
	_, err := Parse(raw, DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingColumn))
}

func TestParse_ConfiguredChannelMissing(t *testing.T) {
	opts := DefaultOptions()
	opts.Channels = []string{"INVESTIMENTO TV"}
	_, err := Parse(sampleSheet(), opts)
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestParse_WithoutCustomersColumn(t *testing.T) {
	raw := RawSheet{
		Headers: []string{"Mes", "Vendas"},
		Records: [][]string{{"jan", "100"}},
	}
	res, err := Parse(raw, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, -1, res.Columns.Customers)
	assert.Zero(t, res.Rows[0].Customers)
	assert.Empty(t, res.Channels)
}

func TestSortChronological_UnknownLastStable(t *testing.T) {
	rows := []model.Row{
		{Month: "x", MonthID: 0},
		{Month: "mar", MonthID: 3},
		{Month: "y", MonthID: 0},
		{Month: "jan", MonthID: 1},
	}
	SortChronological(rows)
	var got []string
	for _, r := range rows {
		got = append(got, r.Month)
	}
	if diff := cmp.Diff([]string{"jan", "mar", "x", "y"}, got); diff != "" {
		t.Errorf("order (-want +got):\n%s", diff)
	}
}

func writeWorkbook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	rows := [][]interface{}{
		{"MÊS", "VENDAS", "QUANTIDADE DE CLIENTES", "INVESTIMENTO META"},
		{"Fev", "R$ 2.000,00", 20, 400.5},
		{"Jan", "R$ 1.500,00", 15, 250.25},
	}
	for i, r := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cellRef, &r))
	}

	path := filepath.Join(t.TempDir(), "base.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestReadSheet_Workbook(t *testing.T) {
	path := writeWorkbook(t)

	raw, err := ReadSheet(path, "")
	require.NoError(t, err)
	assert.Equal(t, "Sheet1", raw.Sheet)
	assert.Len(t, raw.Records, 2)
	assert.Equal(t, []int{2, 3}, raw.Lines)

	res, err := Parse(raw, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "Jan", res.Rows[0].Month)
	assert.InDelta(t, 1500.0, res.Rows[0].Revenue, 1e-9)
	assert.InDelta(t, 15.0, res.Rows[0].Customers, 1e-9)
	assert.InDelta(t, 250.25, res.Rows[0].Investments["INVESTIMENTO META"], 1e-9)
	assert.Equal(t, 3, res.Rows[0].Line)
}

func TestReadSheet_UnknownSheet(t *testing.T) {
	path := writeWorkbook(t)
	_, err := ReadSheet(path, "Dados")
	assert.ErrorIs(t, err, ErrSheetNotFound)
}

func TestReadSheet_FileNotFound(t *testing.T) {
	_, err := ReadSheet(filepath.Join(t.TempDir(), "missing.xlsx"), "")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestReadSheet_UnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))
	_, err := ReadSheet(path, "")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestReadSheet_SemicolonCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "base.csv")
	data := "\xef\xbb\xbfMÊS;VENDAS;QUANTIDADE DE CLIENTES;INVESTIMENTO META\n" +
		"Jan;R$ 1.000,50;5;R$ 100,00\n" +
		";;;\n" +
		"Fev;R$ 2.000,00;8;R$ 300,00\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	raw, err := ReadSheet(path, "ignored")
	require.NoError(t, err)
	assert.Equal(t, "MÊS", raw.Headers[0])
	assert.Equal(t, []int{2, 4}, raw.Lines)

	res, err := Parse(raw, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	assert.InDelta(t, 1000.5, res.Rows[0].Revenue, 1e-9)
	assert.InDelta(t, 300.0, res.Rows[1].Investments["INVESTIMENTO META"], 1e-9)
}

func TestReadSheet_TextCellsAreCleaned(t *testing.T) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	// VENDAS holds BRL amounts typed as text without the symbol; META mixes
	// a numeric cell with a text one.
	rows := [][]interface{}{
		{"MÊS", "VENDAS", "QUANTIDADE DE CLIENTES", "INVESTIMENTO META"},
		{"Jan", "1.500", 15, 250.5},
		{"Fev", "12.000", 20, "R$ 1.000,00"},
	}
	for i, r := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cellRef, &r))
	}
	path := filepath.Join(t.TempDir(), "text.xlsx")
	require.NoError(t, f.SaveAs(path))

	raw, err := ReadSheet(path, "")
	require.NoError(t, err)
	require.Len(t, raw.Text, 2)
	assert.True(t, raw.IsText(0, 1))
	assert.False(t, raw.IsText(0, 2))

	res, err := Parse(raw, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	assert.InDelta(t, 1500.0, res.Rows[0].Revenue, 1e-9)
	assert.InDelta(t, 12000.0, res.Rows[1].Revenue, 1e-9)
	assert.InDelta(t, 250.5, res.Rows[0].Investments["INVESTIMENTO META"], 1e-9)
	assert.InDelta(t, 1000.0, res.Rows[1].Investments["INVESTIMENTO META"], 1e-9)

	byHeader := map[string]ColumnReport{}
	for _, rep := range res.Reports {
		byHeader[rep.Header] = rep
	}
	assert.False(t, byHeader["VENDAS"].Numeric)
	assert.Equal(t, 2, byHeader["VENDAS"].Cleaned)
	assert.True(t, byHeader["QUANTIDADE DE CLIENTES"].Numeric)
	assert.Equal(t, 1, byHeader["INVESTIMENTO META"].Cleaned)
	assert.Zero(t, res.Failures())
}
