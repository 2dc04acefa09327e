package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/source"
	"github.com/theirongolddev/runway/internal/store"
)

// CachedLoadResult extends LoadResult with cache metadata.
type CachedLoadResult struct {
	LoadResult
	CacheHits int
	Reparsed  int
	Removed   int
}

// LoadWithCache discovers statement files, diffs them against the cache,
// parses only changed files and returns the combined result set. Files that
// disappeared from disk are dropped from the cache.
func LoadWithCache(ctx context.Context, dataDir string, cache *store.Cache, opts LoadOptions) (*CachedLoadResult, error) {
	files, err := source.ScanDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dataDir, err)
	}

	tracked, err := cache.GetTrackedFiles()
	if err != nil {
		return nil, fmt.Errorf("reading cache: %w", err)
	}

	result := &CachedLoadResult{
		LoadResult: LoadResult{
			TotalFiles:   len(files),
			AccountCount: source.CountAccounts(files),
		},
	}

	// Diff: partition into changed and unchanged
	var toReparse []source.DiscoveredFile
	unchanged := make(map[string]struct{})
	present := make(map[string]struct{}, len(files))

	for _, f := range files {
		present[f.Path] = struct{}{}
		info, err := os.Stat(f.Path)
		if err != nil {
			continue
		}
		cached, ok := tracked[f.Path]
		if ok && cached.MtimeNs == info.ModTime().UnixNano() && cached.SizeBytes == info.Size() {
			unchanged[f.Path] = struct{}{}
		} else {
			toReparse = append(toReparse, f)
		}
	}

	for path := range tracked {
		if _, ok := present[path]; ok {
			continue
		}
		if err := cache.DeleteFile(path); err != nil {
			return nil, fmt.Errorf("pruning %s: %w", path, err)
		}
		result.Removed++
	}

	result.CacheHits = len(unchanged)
	result.Reparsed = len(toReparse)

	var all []model.Transaction
	if len(unchanged) > 0 {
		cached, err := cache.LoadAllTransactions()
		if err != nil {
			return nil, fmt.Errorf("loading cached transactions: %w", err)
		}
		for _, t := range cached {
			if _, ok := unchanged[t.FilePath]; ok {
				all = append(all, t)
			}
		}
		result.ParsedFiles += len(unchanged)
	}

	if len(toReparse) > 0 {
		results, err := parseFiles(ctx, toReparse, opts, result.CacheHits, result.TotalFiles)
		if err != nil {
			return nil, err
		}

		for i, pr := range results {
			path := toReparse[i].Path
			if pr.Err != nil {
				result.FileErrors++
				opts.logger().Warn("statement unreadable", zap.String("path", path), zap.Error(pr.Err))
				continue
			}
			result.ParsedFiles++
			result.ParseErrors += pr.ParseErrors
			all = append(all, pr.Transactions...)

			info, err := os.Stat(path)
			if err != nil {
				continue
			}
			if err := cache.SaveFile(path, pr.Transactions, info.ModTime().UnixNano(), info.Size()); err != nil {
				opts.logger().Warn("cache write failed", zap.String("path", path), zap.Error(err))
			}
		}
	}

	result.Transactions, result.Duplicates = dedupe(all)
	opts.logger().Debug("statements loaded",
		zap.Int("cache_hits", result.CacheHits),
		zap.Int("reparsed", result.Reparsed),
		zap.Int("removed", result.Removed),
		zap.Int("transactions", len(result.Transactions)),
	)
	return result, nil
}

// CacheDir returns the platform-appropriate cache directory.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "runway")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "runway")
}

// CachePath returns the full path to the cache database.
func CachePath() string {
	return filepath.Join(CacheDir(), "transactions.db")
}
