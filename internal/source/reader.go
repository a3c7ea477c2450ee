package source

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadSheet loads the header row and records of a workbook sheet or CSV file.
// An empty sheet name selects the first sheet of a workbook; it is ignored for CSV.
func ReadSheet(path, sheet string) (RawSheet, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RawSheet{}, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return RawSheet{}, fmt.Errorf("stat %s: %w", path, err)
	}

	var (
		rows [][]string
		text [][]bool
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		rows, text, sheet, err = readWorkbook(path, sheet)
	case ".csv", ".txt":
		rows, err = readCSV(path)
		sheet = ""
	default:
		return RawSheet{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return RawSheet{}, err
	}

	return splitHeader(path, sheet, rows, text)
}

// SheetNames lists the sheets of a workbook, or nil for CSV input.
func SheetNames(path string) ([]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return nil, nil
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer func() { _ = f.Close() }()
	return f.GetSheetList(), nil
}

// readWorkbook returns the raw cell values of a sheet and, for each cell,
// whether it is stored as a string.
func readWorkbook(path, sheet string) ([][]string, [][]bool, string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, "", fmt.Errorf("opening workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, "", ErrEmptySheet
	}
	if sheet == "" {
		sheet = sheets[0]
	} else if !slices.Contains(sheets, sheet) {
		return nil, nil, "", fmt.Errorf("%w: %q (have %s)", ErrSheetNotFound, sheet, strings.Join(sheets, ", "))
	}

	// Raw values keep numeric cells as plain numbers instead of their
	// display format.
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, "", fmt.Errorf("reading sheet %q: %w", sheet, err)
	}

	text := make([][]bool, len(rows))
	for i, row := range rows {
		text[i] = make([]bool, len(row))
		for j, v := range row {
			if v == "" {
				continue
			}
			ref, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return nil, nil, "", err
			}
			typ, err := f.GetCellType(sheet, ref)
			if err != nil {
				return nil, nil, "", fmt.Errorf("reading cell %s: %w", ref, err)
			}
			text[i][j] = typ == excelize.CellTypeSharedString || typ == excelize.CellTypeInlineString
		}
	}
	return rows, text, sheet, nil
}

func readCSV(path string) ([][]string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-supplied data file
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = sniffDelimiter(data)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing csv: %w", err)
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

// sniffDelimiter picks ';' when the header line has more semicolons than
// commas, as spreadsheet exports in comma-decimal locales do.
func sniffDelimiter(data []byte) rune {
	sc := bufio.NewScanner(bytes.NewReader(data))
	if !sc.Scan() {
		return ','
	}
	line := sc.Text()
	if strings.Count(line, ";") > strings.Count(line, ",") {
		return ';'
	}
	return ','
}

func splitHeader(path, sheet string, rows [][]string, text [][]bool) (RawSheet, error) {
	raw := RawSheet{Path: path, Sheet: sheet}

	start := -1
	for i, row := range rows {
		if !isBlank(row) {
			start = i
			break
		}
	}
	if start < 0 {
		return raw, fmt.Errorf("%w: %s", ErrEmptySheet, path)
	}

	raw.Headers = make([]string, len(rows[start]))
	for i, h := range rows[start] {
		raw.Headers[i] = strings.TrimSpace(h)
	}

	for i := start + 1; i < len(rows); i++ {
		if isBlank(rows[i]) {
			continue
		}
		raw.Records = append(raw.Records, rows[i])
		raw.Lines = append(raw.Lines, i+1)
		if text != nil {
			raw.Text = append(raw.Text, text[i])
		}
	}
	return raw, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
