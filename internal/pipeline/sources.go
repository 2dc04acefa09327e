package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/store"
)

// TransactionSource supplies the full transaction history for one business.
// *store.Dashboard satisfies it.
type TransactionSource interface {
	Transactions(ctx context.Context) ([]model.Transaction, error)
}

// DirSource loads transactions from a statement directory, using the SQLite
// cache when enabled and falling back to a full parse if the cache fails.
type DirSource struct {
	Dir       string
	UseCache  bool
	CachePath string
	Options   LoadOptions
}

// Transactions implements TransactionSource.
func (d DirSource) Transactions(ctx context.Context) ([]model.Transaction, error) {
	if d.UseCache {
		path := d.CachePath
		if path == "" {
			path = CachePath()
		}
		cache, err := store.Open(path)
		if err == nil {
			defer func() { _ = cache.Close() }()
			cr, loadErr := LoadWithCache(ctx, d.Dir, cache, d.Options)
			if loadErr == nil {
				return cr.Transactions, nil
			}
			d.Options.logger().Warn("cached load failed, reparsing", zap.Error(loadErr))
		} else {
			d.Options.logger().Warn("cache unavailable", zap.Error(err))
		}
	}

	result, err := Load(ctx, d.Dir, d.Options)
	if err != nil {
		return nil, err
	}
	return result.Transactions, nil
}
