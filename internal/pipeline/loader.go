package pipeline

import (
	"fmt"

	"github.com/theirongolddev/salesdash/internal/model"
	"github.com/theirongolddev/salesdash/internal/source"
)

// Options selects the sheet and column layout to load.
type Options struct {
	Sheet  string
	Source source.Options
}

// LoadResult holds the output of the full data loading pipeline.
type LoadResult struct {
	Path          string
	Sheet         string
	Rows          []model.Row
	Channels      []string // investment column headers in sheet order
	CleanedCells  int
	ParseFailures int
}

// ChannelLabels maps each channel header to its short display name.
func (r *LoadResult) ChannelLabels() map[string]string {
	labels := make(map[string]string, len(r.Channels))
	for _, ch := range r.Channels {
		labels[ch] = source.ChannelLabel(ch)
	}
	return labels
}

// Months returns the distinct month labels in chronological order.
func (r *LoadResult) Months() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, row := range r.Rows {
		key := monthKey(row)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, row.Month)
	}
	return out
}

// ProgressFunc is called during loading to report progress.
// current is the number of stages completed so far, total is the stage count.
type ProgressFunc func(current, total int)

const loadStages = 2

// Load reads and cleans the workbook at path.
func Load(path string, opts Options, progressFn ProgressFunc) (*LoadResult, error) {
	raw, err := source.ReadSheet(path, opts.Sheet)
	if err != nil {
		return nil, err
	}
	if progressFn != nil {
		progressFn(1, loadStages)
	}

	parsed, err := source.Parse(raw, opts.Source)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if progressFn != nil {
		progressFn(2, loadStages)
	}

	return &LoadResult{
		Path:          path,
		Sheet:         raw.Sheet,
		Rows:          parsed.Rows,
		Channels:      parsed.Channels,
		CleanedCells:  parsed.Cleaned(),
		ParseFailures: parsed.Failures(),
	}, nil
}
