// Package cmd implements the salesdash CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/theirongolddev/salesdash/internal/cli"
	"github.com/theirongolddev/salesdash/internal/config"
	"github.com/theirongolddev/salesdash/internal/pipeline"
	"github.com/theirongolddev/salesdash/internal/source"
	"github.com/theirongolddev/salesdash/internal/store"
)

var (
	flagFile     string
	flagSheet    string
	flagMonths   []string
	flagFrom     string
	flagTo       string
	flagChannels []string
	flagNoCache  bool
	flagQuiet    bool
	flagVerbose  bool
)

var (
	cfg    = config.DefaultConfig()
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "salesdash",
	Short: "Sales and marketing KPI dashboard for spreadsheets",
	Long: `Load a monthly sales workbook, clean its currency columns and explore
revenue, ROAS, CAC and profit by month and marketing channel.`,
	SilenceUsage:      true,
	PersistentPreRunE: initRuntime,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		_ = logger.Sync()
	},
	RunE: runSummary,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagFile, "file", "f", "", "Workbook to load (.xlsx or .csv)")
	pf.StringVar(&flagSheet, "sheet", "", "Sheet name (default: first sheet)")
	pf.StringSliceVarP(&flagMonths, "months", "m", nil, "Only these months, e.g. jan,fev,mar (default: all)")
	pf.StringVar(&flagFrom, "from", "", "First month of the range (name or 1-12)")
	pf.StringVar(&flagTo, "to", "", "Last month of the range (name or 1-12)")
	pf.StringSliceVarP(&flagChannels, "channels", "c", nil, "Investment channels to count (default: all)")
	pf.BoolVar(&flagNoCache, "no-cache", false, "Skip SQLite cache, reparse the workbook")
	pf.BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging to stderr")
}

// initRuntime loads .env and the config file, then builds the logger.
func initRuntime(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load()

	loaded, err := config.Load()
	if err != nil {
		return err
	}
	cfg = loaded
	cli.SetCurrency(config.ResolveCurrency(cfg.Currency))

	// The dashboard owns the terminal; log lines would tear the screen.
	if cmd == tuiCmd {
		return nil
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	switch {
	case flagVerbose:
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	case cmd == serveCmd:
		// Long-running: keep reload lifecycle lines.
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	l, err := zcfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger = l
	return nil
}

// dataPath resolves the workbook: --file, then SALESDASH_FILE or config,
// looked up in the working directory first and next to the binary second.
func dataPath() string {
	if flagFile != "" {
		return flagFile
	}
	path := config.GetDataFile(cfg)
	if filepath.IsAbs(path) {
		return path
	}
	if _, err := os.Stat(path); err == nil {
		return path
	}
	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), path)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return path
}

func loadOptions() pipeline.Options {
	opts := pipeline.OptionsFromConfig(cfg)
	if flagSheet != "" {
		opts.Sheet = flagSheet
	}
	return opts
}

// loadData is the shared data loading path used by all commands.
// Uses SQLite cache when available for fast subsequent runs.
func loadData() (*pipeline.LoadResult, error) {
	path := dataPath()
	opts := loadOptions()
	log := logger.With(zap.String("file", path), zap.String("sheet", opts.Sheet))

	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Reading %s...\n", filepath.Base(path))
	}

	progressFn := func(current, total int) {
		if flagQuiet {
			return
		}
		fmt.Fprintf(os.Stderr, "\r  Loading [%d/%d]", current, total)
	}

	result, err := loadWithOptionalCache(path, opts, progressFn, log)
	if err != nil {
		if errors.Is(err, source.ErrFileNotFound) {
			return nil, fmt.Errorf("file %q not found: check it is next to the binary or pass --file", path)
		}
		return nil, err
	}

	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "\r  Loaded %s rows, %d channels    \n",
			cli.FormatNumber(int64(len(result.Rows))), len(result.Channels))
		if result.ParseFailures > 0 {
			fmt.Fprintf(os.Stderr, "  %d cells could not be parsed and were counted as 0\n", result.ParseFailures)
		}
	}
	log.Debug("workbook loaded",
		zap.Int("rows", len(result.Rows)),
		zap.Strings("channels", result.Channels),
		zap.Int("cleaned_cells", result.CleanedCells),
		zap.Int("parse_failures", result.ParseFailures),
	)
	return result, nil
}

func loadWithOptionalCache(path string, opts pipeline.Options, progressFn pipeline.ProgressFunc, log *zap.Logger) (*pipeline.LoadResult, error) {
	if !flagNoCache {
		cache, err := store.Open(pipeline.CachePath())
		if err != nil {
			log.Warn("cache unavailable, doing full parse", zap.Error(err))
		} else {
			defer func() { _ = cache.Close() }()

			cr, err := pipeline.LoadWithCache(path, opts, cache, progressFn)
			if err == nil {
				log.Debug("cache lookup", zap.Bool("hit", cr.CacheHit))
				if cr.CacheErr != nil {
					log.Warn("cache not updated", zap.Error(cr.CacheErr))
				}
				return &cr.LoadResult, nil
			}
			if errors.Is(err, source.ErrFileNotFound) {
				return nil, err
			}
			log.Warn("cache error, falling back to full parse", zap.Error(err))
		}
	}
	return pipeline.Load(path, opts, progressFn)
}

// buildQuery turns the filter flags into a pipeline query.
func buildQuery() (pipeline.Query, error) {
	from, err := pipeline.ParseBound(flagFrom)
	if err != nil {
		return pipeline.Query{}, err
	}
	to, err := pipeline.ParseBound(flagTo)
	if err != nil {
		return pipeline.Query{}, err
	}
	return pipeline.Query{
		Months:   pipeline.SplitList(flagMonths...),
		From:     from,
		To:       to,
		Channels: pipeline.SplitList(flagChannels...),
	}, nil
}

// loadView loads the workbook and applies the filter flags.
func loadView() (*pipeline.LoadResult, pipeline.View, error) {
	result, err := loadData()
	if err != nil {
		return nil, pipeline.View{}, err
	}
	q, err := buildQuery()
	if err != nil {
		return nil, pipeline.View{}, err
	}
	view, err := pipeline.Apply(result, q)
	if err != nil {
		return nil, pipeline.View{}, err
	}
	return result, view, nil
}

// rangeLabel describes the active month filter for titles.
func rangeLabel(q pipeline.Query) string {
	switch {
	case len(q.Months) > 0:
		return fmt.Sprintf("%d months selected", len(q.Months))
	case q.From != 0 || q.To != 0:
		from, to := q.From, q.To
		if from == 0 {
			from = 1
		}
		if to == 0 {
			to = 12
		}
		return source.MonthLabel(from) + "-" + source.MonthLabel(to)
	default:
		return "All months"
	}
}
