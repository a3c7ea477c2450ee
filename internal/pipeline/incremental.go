package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mitchellh/hashstructure/v2"

	"github.com/theirongolddev/salesdash/internal/source"
	"github.com/theirongolddev/salesdash/internal/store"
)

// CachedLoadResult extends LoadResult with cache metadata.
type CachedLoadResult struct {
	LoadResult
	CacheHit bool
	// CacheErr is set when fresh rows could not be written back. The load
	// itself still succeeded.
	CacheErr error
}

// parserVersion is folded into OptionsKey; bump it when parsing changes
// what the same file yields so stale cached rows are dropped.
const parserVersion = 2

// OptionsKey fingerprints the options that affect parsing, so a config
// change invalidates cached rows for the same file.
func OptionsKey(opts Options) string {
	keyed := struct {
		Version int
		Options Options
	}{parserVersion, opts}
	h, err := hashstructure.Hash(keyed, hashstructure.FormatV2, nil)
	if err != nil {
		return ""
	}
	return strconv.FormatUint(h, 16)
}

// LoadWithCache returns cached rows when the file's mtime and size are
// unchanged, and otherwise parses the workbook and refreshes the cache.
func LoadWithCache(path string, opts Options, cache *store.Cache, progressFn ProgressFunc) (*CachedLoadResult, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", source.ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	current := store.FileInfo{MtimeNs: info.ModTime().UnixNano(), SizeBytes: info.Size()}
	key := OptionsKey(opts)

	tracked, ok, err := cache.GetTrackedFile(abs, key)
	if err != nil {
		return nil, fmt.Errorf("reading cache: %w", err)
	}
	if ok && tracked == current {
		entry, err := cache.LoadSheet(abs, key)
		if err == nil {
			if progressFn != nil {
				progressFn(loadStages, loadStages)
			}
			return &CachedLoadResult{
				LoadResult: LoadResult{
					Path:          path,
					Sheet:         entry.Sheet,
					Rows:          entry.Rows,
					Channels:      entry.Channels,
					CleanedCells:  entry.Cleaned,
					ParseFailures: entry.Failures,
				},
				CacheHit: true,
			}, nil
		}
		if !errors.Is(err, store.ErrNotCached) {
			return nil, fmt.Errorf("loading cached rows: %w", err)
		}
	}

	result, err := Load(path, opts, progressFn)
	if err != nil {
		return nil, err
	}

	saveErr := cache.SaveSheet(store.SheetEntry{
		Path:       abs,
		OptionsKey: key,
		Sheet:      result.Sheet,
		File:       current,
		Channels:   result.Channels,
		Rows:       result.Rows,
		Cleaned:    result.CleanedCells,
		Failures:   result.ParseFailures,
	})

	out := &CachedLoadResult{LoadResult: *result}
	if saveErr != nil {
		out.CacheErr = fmt.Errorf("writing cache: %w", saveErr)
	}
	return out, nil
}

// CacheDir returns the platform-appropriate cache directory.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "salesdash")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "salesdash")
}

// CachePath returns the full path to the cache database.
func CachePath() string {
	return filepath.Join(CacheDir(), "sheets.db")
}
