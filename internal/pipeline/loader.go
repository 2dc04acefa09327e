package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/source"
)

// LoadResult holds the output of the full data loading pipeline.
type LoadResult struct {
	Transactions []model.Transaction
	TotalFiles   int
	ParsedFiles  int
	ParseErrors  int
	FileErrors   int
	Duplicates   int
	AccountCount int
}

// ProgressFunc is called during loading to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// LoadOptions configures a load.
type LoadOptions struct {
	Location *time.Location
	Logger   *zap.Logger
	Progress ProgressFunc
}

func (o LoadOptions) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// Load discovers and parses every statement file under dataDir using a
// bounded worker pool.
func Load(ctx context.Context, dataDir string, opts LoadOptions) (*LoadResult, error) {
	files, err := source.ScanDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dataDir, err)
	}

	result := &LoadResult{
		TotalFiles:   len(files),
		AccountCount: source.CountAccounts(files),
	}
	if len(files) == 0 {
		return result, nil
	}

	results, err := parseFiles(ctx, files, opts, 0, len(files))
	if err != nil {
		return nil, err
	}

	var all []model.Transaction
	for i, pr := range results {
		if pr.Err != nil {
			result.FileErrors++
			opts.logger().Warn("statement unreadable", zap.String("path", files[i].Path), zap.Error(pr.Err))
			continue
		}
		result.ParsedFiles++
		result.ParseErrors += pr.ParseErrors
		all = append(all, pr.Transactions...)
	}

	result.Transactions, result.Duplicates = dedupe(all)
	opts.logger().Debug("statements loaded",
		zap.Int("files", result.ParsedFiles),
		zap.Int("transactions", len(result.Transactions)),
		zap.Int("duplicates", result.Duplicates),
	)
	return result, nil
}

// parseFiles parses files concurrently. Progress is reported as offset plus
// files completed, out of total.
func parseFiles(ctx context.Context, files []source.DiscoveredFile, opts LoadOptions, offset, total int) ([]source.ParseResult, error) {
	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}

	results := make([]source.ParseResult, len(files))
	var processed atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(numWorkers)
	for i := range files {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = source.ParseFile(files[i], opts.Location)
			n := processed.Add(1)
			if opts.Progress != nil {
				opts.Progress(offset+int(n), total)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// dedupe drops transactions whose id was already seen, keeping the first,
// and returns the rest ordered by time.
func dedupe(txs []model.Transaction) ([]model.Transaction, int) {
	seen := make(map[string]struct{}, len(txs))
	out := txs[:0]
	dups := 0
	for _, t := range txs {
		if t.ID != "" {
			if _, ok := seen[t.ID]; ok {
				dups++
				continue
			}
			seen[t.ID] = struct{}{}
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OccurredAt.Before(out[j].OccurredAt)
	})
	return out, dups
}
