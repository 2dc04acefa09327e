package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/config"
	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/observability"
	"github.com/theirongolddev/runway/internal/pipeline"
	"github.com/theirongolddev/runway/internal/store"
)

var (
	flagDays      int
	flagCategory  string
	flagNoCache   bool
	flagDataDir   string
	flagQuiet     bool
	flagAt        string
	flagThreshold int64
	flagLogLevel  string
	flagNoColor   bool
)

// Set in PersistentPreRunE.
var flagThresholdSet bool

// Set in PersistentPreRunE.
var (
	appCfg config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:               "runway",
	Short:             "Cash-flow runway for M-Pesa businesses",
	Long:              "Project how many days your balance lasts at the current burn rate, with daily, category and monthly views.",
	SilenceUsage:      true,
	PersistentPreRunE: initRuntime,
	RunE:              runSummary,
}

// Execute is the main entry point called from main.go.
func Execute() {
	defer func() { _ = logger.Sync() }()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().IntVarP(&flagDays, "days", "n", 0, "Time window in days (default from config, 30)")
	rootCmd.PersistentFlags().StringVarP(&flagCategory, "category", "c", "", "Filter to category (substring match)")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Skip SQLite cache, reparse everything")
	rootCmd.PersistentFlags().StringVarP(&flagDataDir, "data-dir", "d", "", "Statement directory (default from config)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().StringVar(&flagAt, "at", "", "Reference date YYYY-MM-DD (default today)")
	rootCmd.PersistentFlags().Int64Var(&flagThreshold, "threshold", 0, "Low-balance threshold in shillings (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
}

func initRuntime(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	appCfg = cfg

	if flagDays <= 0 {
		flagDays = cfg.General.DefaultDays
	}
	if flagDays <= 0 {
		flagDays = 30
	}
	if flagDataDir == "" {
		flagDataDir = cfg.DataDir()
	}
	flagThresholdSet = cmd.Flags().Changed("threshold")
	if flagThresholdSet && flagThreshold < 0 {
		return fmt.Errorf("--threshold must be non-negative, got %d", flagThreshold)
	}
	if cfg.Business.Currency != "" {
		cli.Currency = cfg.Business.Currency
	}

	level := flagLogLevel
	if level == "" {
		level = cfg.Log.Level
		if flagQuiet {
			level = "warn"
		}
	}
	l, err := observability.NewLogger(level)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	logger = l

	if flagNoColor || os.Getenv("NO_COLOR") != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	return nil
}

// dataset is everything a command needs after loading.
type dataset struct {
	Transactions []model.Transaction
	Balance      int64
	Threshold    int64
	Location     *time.Location
	Ref          time.Time
	FileErrors   int
	Label        string

	categories map[string]model.Category
}

func (d *dataset) category(id string) model.Category {
	if c, ok := d.categories[id]; ok && c.Name != "" {
		return c
	}
	return appCfg.Category(id)
}

// filtered applies --category. The balance and projection always use the
// full history.
func (d *dataset) filtered() []model.Transaction {
	if flagCategory == "" {
		return d.Transactions
	}
	return pipeline.FilterByCategory(d.Transactions, flagCategory)
}

// window is the --days range ending at the close of the reference day.
func (d *dataset) window() model.DateRange {
	end := time.Date(d.Ref.Year(), d.Ref.Month(), d.Ref.Day(), 23, 59, 59, 0, d.Location)
	start := time.Date(d.Ref.Year(), d.Ref.Month(), d.Ref.Day()-(flagDays-1), 0, 0, 0, 0, d.Location)
	return pipeline.PeriodRange(pipeline.PeriodCustom, d.Ref, start, end)
}

// referenceTime resolves --at. A date means the last instant of that day,
// so all of its transactions count.
func referenceTime(loc *time.Location) (time.Time, error) {
	if flagAt == "" {
		return time.Now().In(loc), nil
	}
	t, err := time.ParseInLocation("2006-01-02", flagAt, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("--at: expected YYYY-MM-DD, got %q", flagAt)
	}
	return t.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
}

// loadData is the shared data loading path used by all commands. The
// dashboard database wins when configured; otherwise statements are read
// from the data dir through the SQLite cache.
func loadData(ctx context.Context) (*dataset, error) {
	loc, err := appCfg.Location()
	if err != nil {
		return nil, err
	}
	ref, err := referenceTime(loc)
	if err != nil {
		return nil, err
	}

	ds := &dataset{
		Location:  loc,
		Ref:       ref,
		Threshold: appCfg.Business.LowBalanceThreshold,
	}

	if appCfg.Database.URL != "" {
		if err := loadDashboard(ctx, ds); err != nil {
			return nil, err
		}
	} else {
		if err := loadStatements(ctx, ds); err != nil {
			return nil, err
		}
	}

	if flagAt != "" {
		ds.Transactions = pipeline.AsOf(ds.Transactions, ref)
	}
	if err := pipeline.ValidateTransactions(ds.Transactions); err != nil {
		return nil, err
	}
	if flagThresholdSet {
		ds.Threshold = flagThreshold
	}
	ds.Balance = appCfg.Business.OpeningBalance + pipeline.Balance(ds.Transactions)
	return ds, nil
}

func loadDashboard(ctx context.Context, ds *dataset) error {
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Reading dashboard database...\n")
	}
	db, err := store.OpenDashboard(ctx, appCfg.Database.URL, appCfg.Database.UserID)
	if err != nil {
		return err
	}
	defer db.Close()

	txs, err := db.Transactions(ctx)
	if err != nil {
		return err
	}
	settings, ok, err := db.Settings(ctx)
	if err != nil {
		return err
	}
	if ok {
		ds.Threshold = settings.Threshold
	}
	cats, err := db.Categories(ctx)
	if err != nil {
		logger.Warn("dashboard categories unavailable", zap.Error(err))
	}

	ds.Transactions = txs
	ds.categories = cats
	ds.Label = "dashboard"
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Loaded %s transactions\n", cli.FormatNumber(int64(len(txs))))
	}
	return nil
}

func loadStatements(ctx context.Context, ds *dataset) error {
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Scanning statements...\n")
	}

	opts := pipeline.LoadOptions{
		Location: ds.Location,
		Logger:   logger,
		Progress: func(current, total int) {
			if flagQuiet {
				return
			}
			if current%10 == 0 || current == total {
				fmt.Fprintf(os.Stderr, "\r  Parsing %s", cli.RenderProgressBar(current, total, 24))
			}
		},
	}
	ds.Label = flagDataDir

	// Try cached load unless --no-cache
	if !flagNoCache {
		cache, err := store.Open(pipeline.CachePath())
		if err != nil {
			logger.Warn("cache unavailable, doing full parse", zap.Error(err))
		} else {
			defer func() { _ = cache.Close() }()

			cr, err := pipeline.LoadWithCache(ctx, flagDataDir, cache, opts)
			if err != nil {
				logger.Warn("cache error, falling back to full parse", zap.Error(err))
			} else {
				if !flagQuiet && cr.TotalFiles > 0 {
					if cr.Reparsed == 0 {
						fmt.Fprintf(os.Stderr, "\r  Loaded %s transactions from cache (%d accounts)    \n",
							cli.FormatNumber(int64(len(cr.Transactions))),
							cr.AccountCount,
						)
					} else {
						fmt.Fprintf(os.Stderr, "\r  %s cached + %d reparsed (%d accounts)    \n",
							cli.FormatNumber(int64(cr.CacheHits)),
							cr.Reparsed,
							cr.AccountCount,
						)
					}
				}
				ds.Transactions = cr.Transactions
				ds.FileErrors = cr.FileErrors
				return nil
			}
		}
	}

	result, err := pipeline.Load(ctx, flagDataDir, opts)
	if err != nil {
		return err
	}
	if !flagQuiet && result.TotalFiles > 0 {
		fmt.Fprintf(os.Stderr, "\r  Parsed %s files, %s transactions (%d accounts)    \n",
			cli.FormatNumber(int64(result.ParsedFiles)),
			cli.FormatNumber(int64(len(result.Transactions))),
			result.AccountCount,
		)
	}
	ds.Transactions = result.Transactions
	ds.FileErrors = result.FileErrors
	return nil
}

func printNoData() {
	fmt.Println("\n  No transactions found.")
	fmt.Printf("  Drop M-Pesa statements (CSV, PDF or JSONL) into %s\n", flagDataDir)
	fmt.Println("  or set [database] url in the config. Run `runway setup` to configure.")
}

func printFileErrors(ds *dataset) {
	if ds.FileErrors > 0 {
		fmt.Fprintf(os.Stderr, "\n  %d files could not be parsed\n", ds.FileErrors)
	}
}
