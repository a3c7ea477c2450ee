package source

import "errors"

var (
	// ErrFileNotFound is returned when the workbook path does not exist.
	ErrFileNotFound = errors.New("data file not found")
	// ErrUnsupportedFormat is returned for extensions other than xlsx/xlsm/csv.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrSheetNotFound is returned when the configured sheet is not in the workbook.
	ErrSheetNotFound = errors.New("sheet not found")
	// ErrEmptySheet is returned when the sheet has no header row.
	ErrEmptySheet = errors.New("sheet is empty")
	// ErrMissingColumn is returned when a required header is absent.
	ErrMissingColumn = errors.New("missing required column")
)

// RawSheet is a sheet as read from disk: the header row plus untyped records.
type RawSheet struct {
	Path    string
	Sheet   string
	Headers []string
	Records [][]string
	Lines   []int // 1-based sheet line of each record
	// Text flags workbook cells stored as strings, aligned with Records.
	// Nil for CSV input, where no cell carries a type.
	Text [][]bool
}

// IsText reports whether record i, column idx was a string cell in the workbook.
func (r RawSheet) IsText(i, idx int) bool {
	if i >= len(r.Text) || idx < 0 || idx >= len(r.Text[i]) {
		return false
	}
	return r.Text[i][idx]
}

// Options controls how a RawSheet is turned into rows.
type Options struct {
	MonthColumn     string
	RevenueColumn   string
	CustomersColumn string
	Channels        []string // empty = auto-detect INVEST* headers
	Cleaner         Cleaner
}

// DefaultOptions matches the Portuguese marketing workbook layout.
func DefaultOptions() Options {
	return Options{
		MonthColumn:     "MÊS",
		RevenueColumn:   "VENDAS",
		CustomersColumn: "QUANTIDADE DE CLIENTES",
		Cleaner:         DefaultCleaner,
	}
}

// Columns records where each configured field was found in the header row.
type Columns struct {
	Month     int
	Revenue   int
	Customers int // -1 when the sheet has no customers column
	Channels  []ChannelColumn
}

// ChannelColumn is one investment column.
type ChannelColumn struct {
	Header string
	Label  string
	Index  int
}

// ColumnReport describes how one value column was interpreted.
type ColumnReport struct {
	Header   string
	Numeric  bool // no text cells (workbooks) or every cell a plain number (CSV)
	Cleaned  int  // cells passed through the currency cleaner
	Failures int  // cells that could not be parsed and became 0
}
